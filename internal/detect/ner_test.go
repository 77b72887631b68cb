package detect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sdrasco/freedact/internal/entity"
)

func TestNERProbe(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()

	if got := NewNER(healthy.URL, nil).Probe(context.Background()); !got.Available {
		t.Errorf("healthy sidecar reported unavailable: %q", got.Reason)
	}

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	if got := NewNER(broken.URL, nil).Probe(context.Background()); got.Available || got.Reason == "" {
		t.Errorf("broken sidecar: available=%v reason=%q", got.Available, got.Reason)
	}

	if got := NewNER("", nil).Probe(context.Background()); got.Available {
		t.Error("empty endpoint reported available")
	}
}

func TestNERDetectMapsAndFilters(t *testing.T) {
	text := "Contact Jane Roe at Initech."
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/entities" {
			http.NotFound(w, r)
			return
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["text"] != text {
			t.Errorf("submitted text = %q", req["text"])
		}
		//nolint:errcheck // test handler write
		json.NewEncoder(w).Encode([]nerWireSpan{
			{Start: 8, End: 16, Label: "PER", Score: 0.88},
			{Start: 20, End: 27, Label: "ORG", Score: 1.7},
			{Start: 0, End: 7, Label: "MISC", Score: 0.99},
			{Start: 0, End: 9999, Label: "PER", Score: 0.99},
		})
	}))
	defer srv.Close()

	spans, err := NewNER(srv.URL, nil).Detect(text, NewContext("doc-1", text))
	if err != nil {
		t.Fatalf("Detect() error: %v", err)
	}
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2: %v", len(spans), textsOf(spans))
	}
	if spans[0].Text != "Jane Roe" || spans[0].Label != entity.LabelPerson {
		t.Errorf("span 0 = %q %q", spans[0].Text, spans[0].Label)
	}
	if spans[1].Text != "Initech" || spans[1].Label != entity.LabelOrg {
		t.Errorf("span 1 = %q %q", spans[1].Text, spans[1].Label)
	}
	if spans[1].Confidence != 1.0 {
		t.Errorf("score not clamped: %v", spans[1].Confidence)
	}
}

func TestNERDetectErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NewNER(srv.URL, nil).Detect("any text", nil); err == nil {
		t.Fatal("expected an error from a failing sidecar")
	}
}
