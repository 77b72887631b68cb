// Package seed derives everything deterministic in the pipeline: stable
// entity identifiers, per-entity random streams, and the document scope
// that separates (or deliberately shares) pseudonyms across documents.
//
// All derivation is keyed by (secret, scope, kind, key). With a configured
// secret the keyed hash is HMAC-SHA256; without one it degrades to plain
// SHA-256, which is permitted for non-sensitive use and surfaced in the
// audit summary so operators can tell the two modes apart. The secret is
// never written into any derived value or artifact.
//
// Namespace constants separate the derivation domains so an identifier can
// never collide with an RNG seed for the same inputs.
package seed

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base32"
	"encoding/binary"
	"math/rand"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/unicode/norm"
)

// Derivation namespaces. Changing any of these changes every derived
// identifier, so they are versioned.
const (
	nsDocSeed = "freedact/v1/doc-seed"
	nsEntity  = "freedact/v1/entity"
	nsRNG     = "freedact/v1/rng"
)

// Stable identifier length bounds (base-32 characters).
const (
	MinIDLength     = 8
	MaxIDLength     = 52
	DefaultIDLength = 20
)

// crossDocPayload is the fixed scope payload when cross-document
// consistency is enabled: every document shares one scope.
const crossDocPayload = "GLOBAL"

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// Deriver performs keyed derivation for one configuration. It is safe for
// concurrent use: all state is read-only after construction.
type Deriver struct {
	secret   []byte
	crossDoc bool
}

// New returns a Deriver. secret may be nil or empty, selecting the unkeyed
// fallback. crossDoc selects the shared global scope instead of the
// per-document scope.
func New(secret []byte, crossDoc bool) *Deriver {
	if len(secret) == 0 {
		secret = nil
	}
	return &Deriver{secret: secret, crossDoc: crossDoc}
}

// SecretPresent reports whether keyed derivation is in effect.
func (d *Deriver) SecretPresent() bool { return d.secret != nil }

// CrossDoc reports whether the shared global scope is in effect.
func (d *Deriver) CrossDoc() bool { return d.crossDoc }

// DocHash returns the BLAKE2b-256 digest of the document text.
func DocHash(text string) []byte {
	sum := blake2b.Sum256([]byte(text))
	return sum[:]
}

// DocHashB32 renders the document digest in lowercase unpadded base-32,
// the form used in audit summaries.
func DocHashB32(text string) string {
	return strings.ToLower(b32.EncodeToString(DocHash(text)))
}

// Scope derives the scope digest for a document. Per-document scope binds
// to the document's content digest; cross-document scope is a fixed keyed
// constant shared by every document under the same secret.
func (d *Deriver) Scope(docText string) []byte {
	if d.crossDoc {
		return d.keyed(nsDocSeed, []byte(crossDocPayload))
	}
	return d.keyed(nsDocSeed, DocHash(docText))
}

// CanonicalizeKey normalizes an entity key before derivation: surrounding
// whitespace stripped, interior runs collapsed to single spaces, lowered,
// NFC-normalized. "  John   DOE " and "john doe" derive identically.
func CanonicalizeKey(key string) string {
	key = strings.Join(strings.Fields(strings.TrimSpace(key)), " ")
	key = strings.ToLower(key)
	return norm.NFC.String(key)
}

// StableID derives the opaque identifier for (kind, key) under scope.
// length is clamped to [MinIDLength, MaxIDLength]; pass 0 for the default.
// The identifier is lowercase unpadded base-32, URL- and filename-safe.
func (d *Deriver) StableID(kind, key string, scope []byte, length int) string {
	if length <= 0 {
		length = DefaultIDLength
	}
	if length < MinIDLength {
		length = MinIDLength
	}
	if length > MaxIDLength {
		length = MaxIDLength
	}
	digest := d.keyed(nsEntity, []byte(kind), scope, []byte(CanonicalizeKey(key)))
	id := strings.ToLower(b32.EncodeToString(digest))
	return id[:length]
}

// RNG returns a reproducible random stream for (kind, key) under scope.
// Two derivations with identical inputs produce identical streams.
func (d *Deriver) RNG(kind, key string, scope []byte) *rand.Rand {
	digest := d.keyed(nsRNG, []byte(kind), scope, []byte(CanonicalizeKey(key)))
	seed := int64(binary.BigEndian.Uint64(digest[:8]))
	return rand.New(rand.NewSource(seed))
}

// keyed hashes namespace ++ parts with HMAC-SHA256 under the secret, or
// plain SHA-256 when no secret is configured.
func (d *Deriver) keyed(namespace string, parts ...[]byte) []byte {
	if d.secret != nil {
		mac := hmac.New(sha256.New, d.secret)
		mac.Write([]byte(namespace))
		for _, p := range parts {
			mac.Write(p)
		}
		return mac.Sum(nil)
	}
	h := sha256.New()
	h.Write([]byte(namespace))
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}
