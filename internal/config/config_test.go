package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sdrasco/freedact/internal/entity"
	"github.com/sdrasco/freedact/internal/seed"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel: got %s", cfg.LogLevel)
	}
	if !cfg.Redact.PersonNames {
		t.Error("Redact.PersonNames should default to true")
	}
	if cfg.Redact.GenericDates {
		t.Error("Redact.GenericDates should default to false")
	}
	if cfg.Redact.RoleAliases != RolesKeep {
		t.Errorf("Redact.RoleAliases: got %s, want %s", cfg.Redact.RoleAliases, RolesKeep)
	}
	if cfg.Pseudonyms.CrossDocConsistency {
		t.Error("Pseudonyms.CrossDocConsistency should default to false")
	}
	if cfg.Pseudonyms.SecretEnv != DefaultSecretEnv {
		t.Errorf("Pseudonyms.SecretEnv: got %s", cfg.Pseudonyms.SecretEnv)
	}
	if cfg.Pseudonyms.IDLength != seed.DefaultIDLength {
		t.Errorf("Pseudonyms.IDLength: got %d, want %d", cfg.Pseudonyms.IDLength, seed.DefaultIDLength)
	}
	if cfg.Detectors.NER {
		t.Error("Detectors.NER should default to false")
	}
	if !cfg.Detectors.Coref {
		t.Error("Detectors.Coref should default to true")
	}
	if cfg.Verification.MinConfidence != 0.5 {
		t.Errorf("Verification.MinConfidence: got %f, want 0.5", cfg.Verification.MinConfidence)
	}
	if !cfg.Verification.FailOnResidual {
		t.Error("Verification.FailOnResidual should default to true")
	}
	if len(cfg.Precedence) != len(entity.AllLabels)-1 {
		t.Errorf("Precedence: got %d labels, want %d", len(cfg.Precedence), len(entity.AllLabels)-1)
	}
	if cfg.Precedence[0] != "ACCOUNT_ID" {
		t.Errorf("Precedence[0]: got %s, want ACCOUNT_ID", cfg.Precedence[0])
	}
	if cfg.StorePath != "" {
		t.Errorf("StorePath: got %q, want empty", cfg.StorePath)
	}
}

func TestDefaultsValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

func TestLoadEnv_LogLevel(t *testing.T) {
	t.Setenv("FREEDACT_LOG_LEVEL", "debug")
	cfg := Default()
	loadEnv(cfg)
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: got %s", cfg.LogLevel)
	}
}

func TestLoadEnv_DisablePersonNames(t *testing.T) {
	t.Setenv("FREEDACT_REDACT_PERSON_NAMES", "false")
	cfg := Default()
	loadEnv(cfg)
	if cfg.Redact.PersonNames {
		t.Error("Redact.PersonNames should be false")
	}
}

func TestLoadEnv_GenericDates(t *testing.T) {
	t.Setenv("FREEDACT_REDACT_GENERIC_DATES", "true")
	cfg := Default()
	loadEnv(cfg)
	if !cfg.Redact.GenericDates {
		t.Error("Redact.GenericDates should be true")
	}
}

func TestLoadEnv_RoleAliases(t *testing.T) {
	t.Setenv("FREEDACT_ROLE_ALIASES", RolesReplace)
	cfg := Default()
	loadEnv(cfg)
	if cfg.Redact.RoleAliases != RolesReplace {
		t.Errorf("Redact.RoleAliases: got %s, want %s", cfg.Redact.RoleAliases, RolesReplace)
	}
}

func TestLoadEnv_CrossDoc(t *testing.T) {
	t.Setenv("FREEDACT_CROSS_DOC", "true")
	cfg := Default()
	loadEnv(cfg)
	if !cfg.Pseudonyms.CrossDocConsistency {
		t.Error("Pseudonyms.CrossDocConsistency should be true")
	}
}

func TestLoadEnv_IDLength(t *testing.T) {
	t.Setenv("FREEDACT_ID_LENGTH", "32")
	cfg := Default()
	loadEnv(cfg)
	if cfg.Pseudonyms.IDLength != 32 {
		t.Errorf("Pseudonyms.IDLength: got %d, want 32", cfg.Pseudonyms.IDLength)
	}
}

func TestLoadEnv_MinConfidence(t *testing.T) {
	t.Setenv("FREEDACT_MIN_CONFIDENCE", "0.8")
	cfg := Default()
	loadEnv(cfg)
	if cfg.Verification.MinConfidence != 0.8 {
		t.Errorf("Verification.MinConfidence: got %f, want 0.8", cfg.Verification.MinConfidence)
	}
}

func TestLoadEnv_FailOnResidual(t *testing.T) {
	t.Setenv("FREEDACT_FAIL_ON_RESIDUAL", "false")
	cfg := Default()
	loadEnv(cfg)
	if cfg.Verification.FailOnResidual {
		t.Error("Verification.FailOnResidual should be false")
	}
}

func TestLoadEnv_NEREndpoint(t *testing.T) {
	t.Setenv("FREEDACT_NER", "true")
	t.Setenv("FREEDACT_NER_ENDPOINT", "http://localhost:9090/ner")
	cfg := Default()
	loadEnv(cfg)
	if !cfg.Detectors.NER {
		t.Error("Detectors.NER should be true")
	}
	if cfg.Detectors.NEREndpoint != "http://localhost:9090/ner" {
		t.Errorf("Detectors.NEREndpoint: got %s", cfg.Detectors.NEREndpoint)
	}
}

func TestLoadEnv_StorePath(t *testing.T) {
	t.Setenv("FREEDACT_STORE_PATH", "/var/lib/freedact/ledger.db")
	cfg := Default()
	loadEnv(cfg)
	if cfg.StorePath != "/var/lib/freedact/ledger.db" {
		t.Errorf("StorePath: got %s", cfg.StorePath)
	}
}

func TestLoadEnv_InvalidInt_Ignored(t *testing.T) {
	t.Setenv("FREEDACT_ID_LENGTH", "not-a-number")
	cfg := Default()
	loadEnv(cfg)
	if cfg.Pseudonyms.IDLength != seed.DefaultIDLength {
		t.Errorf("Pseudonyms.IDLength: got %d, want %d (invalid env should be ignored)",
			cfg.Pseudonyms.IDLength, seed.DefaultIDLength)
	}
}

func TestLoadEnv_InvalidBool_Ignored(t *testing.T) {
	t.Setenv("FREEDACT_COREF", "maybe")
	cfg := Default()
	loadEnv(cfg)
	if !cfg.Detectors.Coref {
		t.Error("Detectors.Coref should keep its default on an invalid value")
	}
}

func TestLoadFile_ValidJSON(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "config-*.json")
	if err != nil {
		t.Fatal(err)
	}

	data, marshalErr := json.Marshal(map[string]any{
		"redact": map[string]any{
			"generic_dates": true,
			"role_aliases":  RolesReplace,
		},
		"verification": map[string]any{
			"min_confidence": 0.75,
		},
	})
	if marshalErr != nil {
		t.Fatal(marshalErr)
	}
	if _, err := f.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := loadFile(cfg, f.Name()); err != nil {
		t.Fatalf("loadFile: %v", err)
	}

	if !cfg.Redact.GenericDates {
		t.Error("Redact.GenericDates should be true after file load")
	}
	if cfg.Redact.RoleAliases != RolesReplace {
		t.Errorf("Redact.RoleAliases: got %s, want %s", cfg.Redact.RoleAliases, RolesReplace)
	}
	if cfg.Verification.MinConfidence != 0.75 {
		t.Errorf("Verification.MinConfidence: got %f, want 0.75", cfg.Verification.MinConfidence)
	}
	// Keys absent from the file keep their defaults.
	if !cfg.Redact.PersonNames {
		t.Error("Redact.PersonNames should keep its default")
	}
	if !cfg.Verification.FailOnResidual {
		t.Error("Verification.FailOnResidual should keep its default")
	}
}

func TestLoadFile_UnknownKey_Fails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"redact":{"person_nams":false}}`), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	err := loadFile(cfg, path)
	if err == nil {
		t.Fatal("loadFile should reject unknown keys")
	}
	if !strings.Contains(err.Error(), "person_nams") {
		t.Errorf("error should name the unknown key, got: %v", err)
	}
}

func TestLoadFile_Missing_Fails(t *testing.T) {
	cfg := Default()
	if err := loadFile(cfg, "/nonexistent/path/config.json"); err == nil {
		t.Error("loadFile should fail on a missing explicit path")
	}
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"log_level":"warn"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FREEDACT_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: got %s, want debug (env wins over file)", cfg.LogLevel)
	}
}

func TestValidate_RoleAliases(t *testing.T) {
	cfg := Default()
	cfg.Redact.RoleAliases = "keep_some"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "role_aliases") {
		t.Errorf("error should name the field, got: %v", err)
	}
}

func TestValidate_IDLengthRange(t *testing.T) {
	for _, n := range []int{4, 99} {
		cfg := Default()
		cfg.Pseudonyms.IDLength = n
		if cfg.Validate() == nil {
			t.Errorf("id_length %d should fail validation", n)
		}
	}
}

func TestValidate_MinConfidenceRange(t *testing.T) {
	for _, mc := range []float64{-0.1, 1.5} {
		cfg := Default()
		cfg.Verification.MinConfidence = mc
		if cfg.Validate() == nil {
			t.Errorf("min_confidence %f should fail validation", mc)
		}
	}
}

func TestValidate_UnknownPrecedenceLabel(t *testing.T) {
	cfg := Default()
	cfg.Precedence = append(cfg.Precedence, "PASSPORT")
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "PASSPORT") {
		t.Errorf("error should name the unknown label, got: %v", err)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Redact.RoleAliases = "bogus"
	cfg.Verification.MinConfidence = 2.0
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	msg := err.Error()
	if !strings.Contains(msg, "role_aliases") || !strings.Contains(msg, "min_confidence") {
		t.Errorf("both failures should be reported, got: %v", err)
	}

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Error("joined error should unwrap to *ValidationError")
	}
}

func TestPrecedenceLabels(t *testing.T) {
	cfg := Default()
	labels := cfg.PrecedenceLabels()
	if len(labels) != len(cfg.Precedence) {
		t.Fatalf("got %d labels, want %d", len(labels), len(cfg.Precedence))
	}
	if labels[0] != entity.LabelAccountID {
		t.Errorf("labels[0]: got %s, want %s", labels[0], entity.LabelAccountID)
	}
	for _, l := range labels {
		if !l.Known() {
			t.Errorf("label %q should be known", l)
		}
	}
}

func TestSecret_DefaultEnv(t *testing.T) {
	t.Setenv(DefaultSecretEnv, "orchard-vole-basalt")
	cfg := Default()
	if got := string(cfg.Secret()); got != "orchard-vole-basalt" {
		t.Errorf("Secret: got %q", got)
	}
}

func TestSecret_CustomEnv(t *testing.T) {
	t.Setenv("MY_REDACTION_SEED", "copper-lantern")
	cfg := Default()
	cfg.Pseudonyms.SecretEnv = "MY_REDACTION_SEED"
	if got := string(cfg.Secret()); got != "copper-lantern" {
		t.Errorf("Secret: got %q", got)
	}
}

func TestSecret_Unset(t *testing.T) {
	t.Setenv(DefaultSecretEnv, "")
	cfg := Default()
	if got := cfg.Secret(); got != nil {
		t.Errorf("Secret: got %q, want nil", got)
	}
}

// TestSecretNeverMarshaled guards the artifact-safety contract: the seed
// secret value must not survive a round trip through any serialized form
// of the configuration.
func TestSecretNeverMarshaled(t *testing.T) {
	t.Setenv(DefaultSecretEnv, "juniper-fathom-9931")
	cfg := Default()

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "juniper-fathom-9931") {
		t.Error("marshaled config must not contain the seed secret")
	}
}
