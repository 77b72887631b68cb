package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sdrasco/freedact/internal/entity"
	"github.com/sdrasco/freedact/internal/logger"
)

// Availability is the probe result for an optional statistical backend.
// Unavailable is a value, not an error: the heuristic detectors stand
// alone when the sidecar is absent.
type Availability struct {
	Available bool
	Reason    string
}

// NERClient talks to an external NER sidecar over HTTP. The sidecar
// accepts {"text": ...} and returns a JSON array of {start, end, label,
// score} records with byte offsets into the submitted text.
type NERClient struct {
	url     string
	client  *http.Client
	log     *logger.Logger
	timeout time.Duration
}

// NewNER builds a client for the sidecar at url. A nil log is replaced
// with the silent logger.
func NewNER(url string, log *logger.Logger) *NERClient {
	if log == nil {
		log = logger.Nop()
	}
	return &NERClient{
		url:     url,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log,
		timeout: 10 * time.Second,
	}
}

// Probe checks the sidecar's health endpoint. All failures map to
// Unavailable with a reason; none of them are errors.
func (c *NERClient) Probe(ctx context.Context) Availability {
	if c.url == "" {
		return Availability{Available: false, Reason: "no NER endpoint configured"}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"/healthz", nil)
	if err != nil {
		return Availability{Available: false, Reason: err.Error()}
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return Availability{Available: false, Reason: err.Error()}
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close
	if resp.StatusCode != http.StatusOK {
		return Availability{Available: false, Reason: fmt.Sprintf("health endpoint returned %d", resp.StatusCode)}
	}
	return Availability{Available: true}
}

func (c *NERClient) Name() string { return "ner" }

type nerWireSpan struct {
	Start int     `json:"start"`
	End   int     `json:"end"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// nerLabelMap translates common tagset names into pipeline labels.
// Unmapped labels are dropped, not guessed at.
var nerLabelMap = map[string]entity.Label{
	"PER":      entity.LabelPerson,
	"PERSON":   entity.LabelPerson,
	"ORG":      entity.LabelOrg,
	"GPE":      entity.LabelGPE,
	"LOC":      entity.LabelLOC,
	"LOCATION": entity.LabelLOC,
	"DATE":     entity.LabelDateGeneric,
}

func (c *NERClient) Detect(text string, _ *Context) ([]entity.Span, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("ner: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/v1/entities", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ner: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ner: request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ner: sidecar returned %d", resp.StatusCode)
	}

	var wire []nerWireSpan
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("ner: decode response: %w", err)
	}

	var spans []entity.Span
	for _, w := range wire {
		label, ok := nerLabelMap[w.Label]
		if !ok {
			c.log.Debugf("skip", "unmapped NER label %q", w.Label)
			continue
		}
		if w.Start < 0 || w.End > len(text) || w.End <= w.Start {
			c.log.Debugf("skip", "NER span out of range [%d, %d)", w.Start, w.End)
			continue
		}
		s, ok := span(text, w.Start, w.End, label, "ner", clampConf(w.Score), nil)
		if ok {
			spans = append(spans, s)
		}
	}
	return spans, nil
}

func clampConf(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
