// Package tracking generates display tracking numbers for shipping labels.
//
// A tracking number is the fixed prefix [Prefix] followed by [Digits] random
// decimal digits, e.g. "SHP004815162342". Numbers are not registered anywhere
// and uniqueness across sessions is not guaranteed; the digit run only makes
// visual collisions within a session unlikely.
package tracking

import (
	"math/rand/v2"
	"regexp"
	"strings"
	"sync"
)

const (
	// Prefix is the alphabetic carrier prefix of every tracking number.
	Prefix = "SHP"

	// Digits is the length of the random digit run after the prefix.
	Digits = 12
)

// Pattern matches a well-formed tracking number.
var Pattern = regexp.MustCompile(`^` + Prefix + `[0-9]{12}$`)

// Valid reports whether s is a well-formed tracking number.
func Valid(s string) bool {
	return Pattern.MatchString(s)
}

// Generator produces tracking numbers. The zero value draws from the
// process-wide random source; use NewGenerator to supply a seeded one.
// It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator returns a generator drawing digits from rng. A nil rng uses the
// process-wide source.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Next returns a new tracking number. It never fails.
func (g *Generator) Next() string {
	var b strings.Builder
	b.Grow(len(Prefix) + Digits)
	b.WriteString(Prefix)

	if g == nil || g.rng == nil {
		for range Digits {
			b.WriteByte(byte('0' + rand.IntN(10)))
		}
		return b.String()
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for range Digits {
		b.WriteByte(byte('0' + g.rng.IntN(10)))
	}
	return b.String()
}

var defaultGenerator = &Generator{}

// Generate returns a new tracking number from the process-wide generator.
func Generate() string {
	return defaultGenerator.Next()
}
