package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/catherinevee/migrateguard/internal/model"
)

// canonicalForm is a JSON-stable view of a Resolved config: map iteration
// order in Go is randomized, so checks are flattened into a sorted slice
// before hashing to satisfy spec §8 property 8 (fingerprint stability under
// cosmetic reordering).
type canonicalForm struct {
	Global GlobalConfig    `json:"global"`
	Checks []canonicalCheck `json:"checks"`
}

type canonicalCheck struct {
	ID      string                 `json:"id"`
	Enabled bool                   `json:"enabled"`
	Params  map[string]interface{} `json:"params"`
}

// computeFingerprint hashes the canonical form of a resolved config before
// its own fingerprint field is set.
func computeFingerprint(r *Resolved) string {
	ids := make([]string, 0, len(r.checks))
	for id := range r.checks {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	form := canonicalForm{Global: r.GlobalFlags}
	for _, id := range ids {
		cfg := r.checks[model.CheckID(id)]
		form.Checks = append(form.Checks, canonicalCheck{
			ID:      id,
			Enabled: cfg.Enabled,
			Params:  cfg.Params,
		})
	}

	// json.Marshal sorts map keys alphabetically, so Params nested maps
	// canonicalize for free.
	encoded, err := json.Marshal(form)
	if err != nil {
		// Marshaling a value built entirely from strings, bools, and
		// JSON-compatible params cannot fail in practice.
		encoded = []byte(err.Error())
	}

	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])
}
