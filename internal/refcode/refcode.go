// Package refcode generates human-readable submission reference codes
// of the form BOT-XXXXX-XXXXX.
package refcode

import (
	"crypto/rand"
	"io"
	"math/big"
	"strings"
)

// Alphabet excludes glyphs that are easy to confuse when read aloud or
// copied by hand (0/O, 1/I).
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	Prefix        = "BOT"
	segmentLength = 5
	segments      = 2
)

type Generator interface {
	Generate() (string, error)
}

// RandomGenerator draws every symbol independently and uniformly from
// Alphabet using the configured entropy source.
type RandomGenerator struct {
	source io.Reader
}

func NewGenerator() *RandomGenerator {
	return &RandomGenerator{source: rand.Reader}
}

// NewGeneratorWithSource is used by tests to get deterministic codes.
func NewGeneratorWithSource(source io.Reader) *RandomGenerator {
	return &RandomGenerator{source: source}
}

func (g *RandomGenerator) Generate() (string, error) {
	max := big.NewInt(int64(len(Alphabet)))

	var b strings.Builder
	b.Grow(len(Prefix) + segments*(segmentLength+1))
	b.WriteString(Prefix)
	for s := 0; s < segments; s++ {
		b.WriteByte('-')
		for i := 0; i < segmentLength; i++ {
			n, err := rand.Int(g.source, max)
			if err != nil {
				return "", err
			}
			b.WriteByte(Alphabet[n.Int64()])
		}
	}
	return b.String(), nil
}

// IsValid reports whether code has the reference code shape.
func IsValid(code string) bool {
	parts := strings.Split(code, "-")
	if len(parts) != segments+1 || parts[0] != Prefix {
		return false
	}
	for _, part := range parts[1:] {
		if len(part) != segmentLength {
			return false
		}
		for i := 0; i < len(part); i++ {
			if strings.IndexByte(Alphabet, part[i]) < 0 {
				return false
			}
		}
	}
	return true
}
