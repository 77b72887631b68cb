package seed

import (
	"strings"
	"testing"
)

// TestStableIDDeterminism verifies identical (secret, scope, kind, key)
// inputs always derive the same identifier.
func TestStableIDDeterminism(t *testing.T) {
	d := New([]byte("unit-test-secret"), false)
	scope := d.Scope("Some document body.")

	a := d.StableID("PERSON", "John Doe", scope, 20)
	b := d.StableID("PERSON", "John Doe", scope, 20)
	if a != b {
		t.Errorf("same inputs derived different ids: %q vs %q", a, b)
	}
	if len(a) != 20 {
		t.Errorf("id length = %d, want 20", len(a))
	}
}

// TestStableIDCanonicalization verifies whitespace and case differences in
// the key do not change the derived identifier.
func TestStableIDCanonicalization(t *testing.T) {
	d := New([]byte("unit-test-secret"), false)
	scope := d.Scope("doc")

	a := d.StableID("PERSON", "  John   DOE ", scope, 0)
	b := d.StableID("PERSON", "john doe", scope, 0)
	if a != b {
		t.Errorf("canonicalization failed: %q vs %q", a, b)
	}
}

// TestStableIDDistinctKeys verifies different keys derive different ids.
func TestStableIDDistinctKeys(t *testing.T) {
	d := New([]byte("unit-test-secret"), false)
	scope := d.Scope("doc")

	if d.StableID("PERSON", "John Doe", scope, 0) == d.StableID("PERSON", "Jane Doe", scope, 0) {
		t.Error("distinct keys derived the same id")
	}
	if d.StableID("PERSON", "John Doe", scope, 0) == d.StableID("ORG", "John Doe", scope, 0) {
		t.Error("distinct kinds derived the same id")
	}
}

// TestStableIDLengthClamp verifies length clamping to [8, 52] and the
// default of 20.
func TestStableIDLengthClamp(t *testing.T) {
	d := New(nil, false)
	scope := d.Scope("doc")

	if got := len(d.StableID("PERSON", "k", scope, 0)); got != DefaultIDLength {
		t.Errorf("default length = %d, want %d", got, DefaultIDLength)
	}
	if got := len(d.StableID("PERSON", "k", scope, 3)); got != MinIDLength {
		t.Errorf("clamped-low length = %d, want %d", got, MinIDLength)
	}
	if got := len(d.StableID("PERSON", "k", scope, 99)); got != MaxIDLength {
		t.Errorf("clamped-high length = %d, want %d", got, MaxIDLength)
	}
}

// TestStableIDAlphabet verifies the rendered id uses only the lowercase
// base-32 alphabet.
func TestStableIDAlphabet(t *testing.T) {
	d := New([]byte("s"), false)
	id := d.StableID("EMAIL", "alice@example.com", d.Scope("doc"), 52)
	for _, r := range id {
		if !strings.ContainsRune("abcdefghijklmnopqrstuvwxyz234567", r) {
			t.Fatalf("id %q contains non-base32 rune %q", id, r)
		}
	}
}

// TestRNGDeterminism verifies two independently derived streams for the
// same inputs produce the same first draws.
func TestRNGDeterminism(t *testing.T) {
	d := New([]byte("unit-test-secret"), false)
	scope := d.Scope("doc")

	r1 := d.RNG("PERSON", "John Doe", scope)
	r2 := d.RNG("PERSON", "John Doe", scope)
	for i := 0; i < 32; i++ {
		a, b := r1.Intn(1_000_000), r2.Intn(1_000_000)
		if a != b {
			t.Fatalf("draw %d diverged: %d vs %d", i, a, b)
		}
	}
}

// TestRNGDistinctKeys verifies different keys give independent streams.
func TestRNGDistinctKeys(t *testing.T) {
	d := New([]byte("unit-test-secret"), false)
	scope := d.Scope("doc")

	r1 := d.RNG("PERSON", "John Doe", scope)
	r2 := d.RNG("PERSON", "Jane Roe", scope)
	same := true
	for i := 0; i < 8; i++ {
		if r1.Intn(1_000_000) != r2.Intn(1_000_000) {
			same = false
			break
		}
	}
	if same {
		t.Error("streams for distinct keys are identical")
	}
}

// TestScopeSeparation verifies per-document scopes differ across documents
// while the cross-document scope is stable.
func TestScopeSeparation(t *testing.T) {
	perDoc := New([]byte("s"), false)
	if string(perDoc.Scope("doc one")) == string(perDoc.Scope("doc two")) {
		t.Error("per-document scopes must differ for different content")
	}

	global := New([]byte("s"), true)
	if string(global.Scope("doc one")) != string(global.Scope("doc two")) {
		t.Error("cross-document scope must not depend on content")
	}
}

// TestUnkeyedFallback verifies derivation works without a secret and
// reports the degraded mode.
func TestUnkeyedFallback(t *testing.T) {
	d := New(nil, false)
	if d.SecretPresent() {
		t.Error("SecretPresent must be false without a secret")
	}
	scope := d.Scope("doc")
	if d.StableID("PERSON", "k", scope, 0) != d.StableID("PERSON", "k", scope, 0) {
		t.Error("unkeyed derivation must still be deterministic")
	}

	keyed := New([]byte("s"), false)
	if d.StableID("PERSON", "k", scope, 0) == keyed.StableID("PERSON", "k", keyed.Scope("doc"), 0) {
		t.Error("keyed and unkeyed derivation should not coincide")
	}
}

// TestDocHashB32 verifies the audit rendering of the document digest.
func TestDocHashB32(t *testing.T) {
	h := DocHashB32("hello")
	if h != DocHashB32("hello") {
		t.Error("digest rendering must be stable")
	}
	if h == DocHashB32("hello!") {
		t.Error("different content must digest differently")
	}
	// 32 bytes → 52 unpadded base-32 characters.
	if len(h) != 52 {
		t.Errorf("digest length = %d, want 52", len(h))
	}
	if strings.ToLower(h) != h {
		t.Errorf("digest %q not lowercase", h)
	}
}
