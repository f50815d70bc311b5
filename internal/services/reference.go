package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultReferencePrefix marks references in logs and reconciliation exports.
const DefaultReferencePrefix = "KDI"

// ReferenceGenerator produces the payment references that correlate an order
// with the gateway's transaction record. The format is stable because
// references are persisted, shown to customers, and matched against gateway
// callbacks.
type ReferenceGenerator struct {
	prefix string
}

// NewReferenceGenerator creates a generator with the given prefix, falling
// back to DefaultReferencePrefix.
func NewReferenceGenerator(prefix string) *ReferenceGenerator {
	if prefix == "" {
		prefix = DefaultReferencePrefix
	}
	return &ReferenceGenerator{prefix: prefix}
}

// Generate returns "<prefix>-<UTC timestamp>-<12 hex chars>". The random block
// is taken from a v4 UUID (crypto-random), so concurrent checkouts need no
// shared counter and cannot realistically collide.
func (g *ReferenceGenerator) Generate() string {
	ts := time.Now().UTC().Format("20060102150405")
	random := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	return fmt.Sprintf("%s-%s-%s", g.prefix, ts, random)
}
