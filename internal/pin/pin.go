package pin

import (
	"errors"
	"math/rand/v2"
	"strings"

	"github.com/pindrop/pindrop/internal/store"
)

// DefaultLength is the pin label length used in production.
const DefaultLength = 4

// maxAttempts bounds collision retries within one Issue call. With a
// 36^4 label space per namespace, exhausting the budget means the namespace
// is effectively full (or something is hammering it); we fail fast rather
// than loop.
const maxAttempts = 10

// charset is the pin alphabet: uppercase alphanumerics only, sampled
// uniformly. Sampling uppercase directly keeps the distribution flat instead
// of upcasing a mixed-case draw, which would double the weight of letters.
const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ErrExhausted is returned when no free pin was found within the attempt
// budget for a namespace.
var ErrExhausted = errors.New("pin: no free pin within attempt budget")

// Slots is the slice of the store the generator needs: an existence check
// and a best-effort insert.
type Slots interface {
	Exists(key string) bool
	Insert(key, pin string)
}

// Generator mints pins that are unique within a namespace at the moment of
// creation.
//
// The Exists check and the Insert are two separate store calls, not one
// atomic operation: two concurrent Issue calls for the same namespace can
// both pass the check before either inserts, in which case the later insert
// wins. With a four-character alphanumeric space this collision is vanishingly
// rare and self-correcting (the retry budget covers it), so the guarantee is
// deliberately best-effort rather than bought with a lock that would couple
// the generator to the store's writer path across calls.
type Generator struct {
	slots  Slots
	length int
	intN   func(n int) int // injectable for deterministic tests
}

// NewGenerator creates a Generator over slots producing labels of the given
// length. A non-positive length falls back to DefaultLength.
func NewGenerator(slots Slots, length int) *Generator {
	if length <= 0 {
		length = DefaultLength
	}
	return &Generator{slots: slots, length: length, intN: rand.IntN}
}

// Issue mints a fresh pin in namespace and inserts a waiting entry for it.
// It returns ErrExhausted if every attempt collided with a live pin.
func (g *Generator) Issue(namespace string) (string, error) {
	for i := 0; i < maxAttempts; i++ {
		p := g.random()
		key := store.Key(namespace, p)
		if g.slots.Exists(key) {
			continue
		}
		g.slots.Insert(key, p)
		return p, nil
	}
	return "", ErrExhausted
}

func (g *Generator) random() string {
	var b strings.Builder
	b.Grow(g.length)
	for i := 0; i < g.length; i++ {
		b.WriteByte(charset[g.intN(len(charset))])
	}
	return b.String()
}
