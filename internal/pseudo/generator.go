package pseudo

import (
	"encoding/hex"
	"fmt"
	"math/rand"
	"strings"

	"github.com/sdrasco/freedact/internal/entity"
	"github.com/sdrasco/freedact/internal/seed"
	"github.com/sdrasco/freedact/internal/store"
)

// Retry budgets for the ensure-different loop. Exhaustion is not an
// error: the last candidate is accepted so the pipeline always makes
// forward progress.
const (
	nameAttempts    = 3
	numberAttempts  = 3
	addressAttempts = 5
)

// Generator synthesizes surrogates for one document scope. All draws are
// keyed by (kind, key) through the deriver, so the same entity always maps
// to the same surrogate. An optional ledger persists base draws across
// runs; OnLedger, when set, observes ledger effectiveness per kind.
type Generator struct {
	deriver *seed.Deriver
	scope   []byte
	ledger  store.Ledger
	ledgerP string // precomputed ledger key prefix for this scope

	OnLedger func(kind string, hit bool)
}

// NewGenerator returns a Generator for the given derivation scope.
func NewGenerator(d *seed.Deriver, scope []byte) *Generator {
	return &Generator{deriver: d, scope: scope, ledgerP: hex.EncodeToString(scope[:8])}
}

// SetLedger attaches a persistent pseudonym ledger. Pass nil to detach.
func (g *Generator) SetLedger(l store.Ledger) { g.ledger = l }

// Token derives the opaque stable identifier for (kind, key), used for
// cluster ids and placeholder values.
func (g *Generator) Token(kind, key string, length int) string {
	return g.deriver.StableID(kind, key, g.scope, length)
}

// RNG exposes the seeded stream for (kind, key); the plan builder uses it
// for shape-preservation tie-breaks.
func (g *Generator) RNG(kind, key string) *rand.Rand {
	return g.deriver.RNG(kind, key, g.scope)
}

// Placeholder is the fallback replacement for labels with no dedicated
// synthesizer: KIND_<token>.
func (g *Generator) Placeholder(kind, key string) string {
	return fmt.Sprintf("%s_%s", strings.ToUpper(kind), g.Token(kind, key, 12))
}

// ensureDifferent runs gen with the seeded stream for (kind, key),
// retrying with salted keys (key:1, key:2, …) while the candidate still
// equals the source under canonical comparison. The last candidate is
// accepted when attempts are exhausted.
func (g *Generator) ensureDifferent(kind, key, source string, attempts int, gen func(rng *rand.Rand) string) string {
	want := seed.CanonicalizeKey(source)
	var candidate string
	for i := 0; i < attempts; i++ {
		salted := key
		if i > 0 {
			salted = fmt.Sprintf("%s:%d", key, i)
		}
		candidate = gen(g.deriver.RNG(kind, salted, g.scope))
		if seed.CanonicalizeKey(candidate) != want {
			return candidate
		}
	}
	return candidate
}

// remembered consults the ledger for (kind, key) before computing, and
// records the computed value for future runs. Values stored are base
// candidates, before shape preservation.
func (g *Generator) remembered(kind, key string, compute func() string) string {
	if g.ledger == nil {
		return compute()
	}
	lk := g.ledgerP + "/" + kind + "/" + seed.CanonicalizeKey(key)
	if v, ok := g.ledger.Get(lk); ok {
		if g.OnLedger != nil {
			g.OnLedger(kind, true)
		}
		return v
	}
	if g.OnLedger != nil {
		g.OnLedger(kind, false)
	}
	v := compute()
	g.ledger.Set(lk, v)
	return v
}

// ForAccount dispatches to the synthesizer matching an account subtype.
func (g *Generator) ForAccount(subtype, source, key string) string {
	switch subtype {
	case entity.SubtypeCard:
		return g.CardLike(source, key)
	case entity.SubtypeIBAN:
		return g.IBANLike(source, key)
	case entity.SubtypeSwiftBIC:
		return g.SwiftBICLike(source, key)
	case entity.SubtypeRouting:
		return g.RoutingLike(source, key)
	case entity.SubtypeSSN:
		return g.SSNLike(source, key)
	case entity.SubtypeEIN:
		return g.EINLike(source, key)
	default:
		return g.DigitsLike(source, key)
	}
}
