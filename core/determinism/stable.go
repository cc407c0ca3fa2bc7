// Package determinism provides primitives for reproducible valuations.
package determinism

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"inventory-valuation/core/types"
)

// ContentHash is a SHA-256 digest
type ContentHash [32]byte

// ComputeHash computes a content hash
func ComputeHash(data []byte) ContentHash {
	return sha256.Sum256(data)
}

// Hex returns the hex encoding
func (h ContentHash) Hex() string {
	return hex.EncodeToString(h[:])
}

// Short returns the first 12 hex characters
func (h ContentHash) Short() string {
	return h.Hex()[:12]
}

// canonicalInputs fixes field order and normalises decimals so equal figures hash equally
type canonicalInputs struct {
	Currency string            `json:"currency"`
	Basis    string            `json:"basis"`
	Fields   map[string]string `json:"fields"`
}

// InputsHash fingerprints the figures a valuation was computed from.
// 1.50 and 1.5 hash identically.
func InputsHash(in types.Inputs, currency types.Currency) ContentHash {
	c := canonicalInputs{
		Currency: currency.String(),
		Basis:    in.ActivityBasis.String(),
		Fields:   make(map[string]string),
	}
	for _, f := range in.Fields() {
		c.Fields[f.Key] = f.Value.String()
	}

	// json.Marshal sorts map keys
	data, _ := json.Marshal(c)
	return ComputeHash(data)
}

// SortedKeys returns map keys in sorted order
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
