// Package redemption generates the human-shareable codes handed out once an
// order is paid.
package redemption

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"
)

// DefaultPrefix matches the storefront's historical code prefix.
const DefaultPrefix = "FCL"

// Generator produces codes of the form <PREFIX>-<YYYYMMDD>-<8 uppercase hex>.
// The date component is the UTC generation date. Four random bytes give ~32
// bits of entropy per day; collisions are possible but vanishingly unlikely
// at this order volume, and no store-level uniqueness check is performed.
type Generator struct {
	prefix string
	now    func() time.Time
	rand   io.Reader
}

// Option configures the generator.
type Option func(*Generator)

// WithPrefix overrides the code prefix.
func WithPrefix(prefix string) Option {
	return func(g *Generator) {
		if trimmed := strings.TrimSpace(prefix); trimmed != "" {
			g.prefix = strings.ToUpper(trimmed)
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithRand overrides the random source for deterministic testing.
func WithRand(r io.Reader) Option {
	return func(g *Generator) {
		if r != nil {
			g.rand = r
		}
	}
}

// NewGenerator builds a generator backed by crypto/rand.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		prefix: DefaultPrefix,
		now:    time.Now,
		rand:   rand.Reader,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Generate returns a fresh redemption code.
func (g *Generator) Generate() (string, error) {
	var random [4]byte
	if _, err := io.ReadFull(g.rand, random[:]); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	datestamp := g.now().UTC().Format("20060102")
	return fmt.Sprintf("%s-%s-%s", g.prefix, datestamp, strings.ToUpper(hex.EncodeToString(random[:]))), nil
}
