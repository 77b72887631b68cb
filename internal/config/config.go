// Package config resolves the engine configuration from three layers:
// compiled defaults, an optional JSON file, and FREEDACT_* environment
// variables, applied in that order. Unknown JSON keys are rejected so a
// typo in a policy file fails loudly instead of silently keeping the
// default. The seed secret is deliberately not a field here; it is read
// from the environment on demand so no marshaled Config can leak it.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/sdrasco/freedact/internal/entity"
	"github.com/sdrasco/freedact/internal/seed"
)

// Role alias policies for redact.role_aliases.
const (
	RolesKeep    = "keep_roles"
	RolesReplace = "replace"
)

// DefaultSecretEnv is the environment variable consulted for the seed
// secret unless pseudonyms.secret_env names a different one.
const DefaultSecretEnv = "FREEDACT_SEED_SECRET"

// Redact selects which entity classes are rewritten.
type Redact struct {
	// PersonNames replaces person names with surrogate names. Off, they
	// are still detected but skipped with a recorded reason.
	PersonNames bool `json:"person_names"`
	// GenericDates redacts dates that are not birth dates. Off, only
	// DOBs are rewritten and the verifier exempts generic dates.
	GenericDates bool `json:"generic_dates"`
	// RoleAliases is RolesKeep or RolesReplace. Keeping roles leaves
	// defined terms like "Buyer" verbatim so documents stay readable.
	RoleAliases string `json:"role_aliases"`
}

// Pseudonyms controls surrogate derivation.
type Pseudonyms struct {
	// CrossDocConsistency maps the same input to the same surrogate
	// across documents instead of per document.
	CrossDocConsistency bool `json:"cross_doc_consistency"`
	// SecretEnv names the environment variable holding the seed secret.
	SecretEnv string `json:"secret_env"`
	// IDLength is the stable identifier length in base-32 characters.
	IDLength int `json:"id_length"`
}

// Detectors toggles the optional recognizers. The rule-based core is
// always on.
type Detectors struct {
	NER         bool   `json:"ner"`
	NEREndpoint string `json:"ner_endpoint"`
	Coref       bool   `json:"coref"`
}

// Verification configures the post-redaction rescan.
type Verification struct {
	// MinConfidence drops rescan hits below this confidence before they
	// are counted.
	MinConfidence float64 `json:"min_confidence"`
	// FailOnResidual makes a non-clean verification an error for callers
	// that honor it (CLI exit code, HTTP status).
	FailOnResidual bool `json:"fail_on_residual"`
}

// Config holds the full engine configuration.
type Config struct {
	LogLevel     string       `json:"log_level"`
	Redact       Redact       `json:"redact"`
	Pseudonyms   Pseudonyms   `json:"pseudonyms"`
	Detectors    Detectors    `json:"detectors"`
	Verification Verification `json:"verification"`
	// Precedence orders labels for overlap resolution, strongest first.
	Precedence []string `json:"precedence"`
	// StorePath is the pseudonym ledger database file. Empty keeps the
	// ledger in memory.
	StorePath string `json:"store_path"`
}

// defaultPrecedence ranks structured, high-certainty labels above the
// fuzzier name and place labels.
var defaultPrecedence = []string{
	"ACCOUNT_ID", "EMAIL", "PHONE", "ADDRESS_BLOCK", "ALIAS_LABEL",
	"PERSON", "ORG", "BANK_ORG", "GPE", "LOC", "DOB", "DATE_GENERIC",
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Redact: Redact{
			PersonNames:  true,
			GenericDates: false,
			RoleAliases:  RolesKeep,
		},
		Pseudonyms: Pseudonyms{
			CrossDocConsistency: false,
			SecretEnv:           DefaultSecretEnv,
			IDLength:            seed.DefaultIDLength,
		},
		Detectors: Detectors{
			NER:         false,
			NEREndpoint: "",
			Coref:       true,
		},
		Verification: Verification{
			MinConfidence:  0.5,
			FailOnResidual: true,
		},
		Precedence: append([]string(nil), defaultPrecedence...),
		StorePath:  "",
	}
}

// Load builds the configuration. path names an optional JSON file; the
// empty string skips the file layer. Environment overrides apply on top
// of whatever the file set. The returned error covers unreadable or
// malformed files and validation failures.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}
	loadEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func loadEnv(cfg *Config) {
	envString("FREEDACT_LOG_LEVEL", &cfg.LogLevel)
	envBool("FREEDACT_REDACT_PERSON_NAMES", &cfg.Redact.PersonNames)
	envBool("FREEDACT_REDACT_GENERIC_DATES", &cfg.Redact.GenericDates)
	envString("FREEDACT_ROLE_ALIASES", &cfg.Redact.RoleAliases)
	envBool("FREEDACT_CROSS_DOC", &cfg.Pseudonyms.CrossDocConsistency)
	envInt("FREEDACT_ID_LENGTH", &cfg.Pseudonyms.IDLength)
	envBool("FREEDACT_NER", &cfg.Detectors.NER)
	envString("FREEDACT_NER_ENDPOINT", &cfg.Detectors.NEREndpoint)
	envBool("FREEDACT_COREF", &cfg.Detectors.Coref)
	envFloat("FREEDACT_MIN_CONFIDENCE", &cfg.Verification.MinConfidence)
	envBool("FREEDACT_FAIL_ON_RESIDUAL", &cfg.Verification.FailOnResidual)
	envString("FREEDACT_STORE_PATH", &cfg.StorePath)
}

func envString(name string, dst *string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func envBool(name string, dst *bool) {
	if v := os.Getenv(name); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func envInt(name string, dst *int) {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envFloat(name string, dst *float64) {
	if v := os.Getenv(name); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

// ValidationError reports one rejected field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Validate checks field ranges and enumerations. All failures are
// collected, not just the first, so one pass fixes a whole bad file.
func (c *Config) Validate() error {
	var errs []error
	if c.Redact.RoleAliases != RolesKeep && c.Redact.RoleAliases != RolesReplace {
		errs = append(errs, &ValidationError{
			Field:  "redact.role_aliases",
			Reason: fmt.Sprintf("must be %q or %q", RolesKeep, RolesReplace),
		})
	}
	if n := c.Pseudonyms.IDLength; n < seed.MinIDLength || n > seed.MaxIDLength {
		errs = append(errs, &ValidationError{
			Field:  "pseudonyms.id_length",
			Reason: fmt.Sprintf("must be in [%d, %d]", seed.MinIDLength, seed.MaxIDLength),
		})
	}
	if c.Pseudonyms.SecretEnv == "" {
		errs = append(errs, &ValidationError{
			Field:  "pseudonyms.secret_env",
			Reason: "must name an environment variable",
		})
	}
	if mc := c.Verification.MinConfidence; mc < 0 || mc > 1 {
		errs = append(errs, &ValidationError{
			Field:  "verification.min_confidence",
			Reason: "must be in [0, 1]",
		})
	}
	for _, name := range c.Precedence {
		if !entity.Label(name).Known() {
			errs = append(errs, &ValidationError{
				Field:  "precedence",
				Reason: fmt.Sprintf("unknown label %q", name),
			})
		}
	}
	return errors.Join(errs...)
}

// PrecedenceLabels converts the configured order for the resolver.
func (c *Config) PrecedenceLabels() []entity.Label {
	out := make([]entity.Label, len(c.Precedence))
	for i, name := range c.Precedence {
		out[i] = entity.Label(name)
	}
	return out
}

// Secret reads the seed secret from the configured environment variable
// at call time. It is never stored on the Config, so plans, audits, and
// status snapshots cannot embed it. An empty return means derivation
// runs unkeyed.
func (c *Config) Secret() []byte {
	name := c.Pseudonyms.SecretEnv
	if name == "" {
		name = DefaultSecretEnv
	}
	if v := os.Getenv(name); v != "" {
		return []byte(v)
	}
	return nil
}
