// Package dedupe finds and removes duplicate records over a set of key columns.
package dedupe

import (
	"fmt"
	"strings"

	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/model"
)

// MissingPolicy decides how records with missing key fields take part in
// duplicate comparison.
type MissingPolicy string

const (
	// ExcludeAny drops a record from comparison when any key field is missing.
	ExcludeAny MissingPolicy = "exclude-any"
	// ExcludePrimary drops a record when the first key column is missing.
	// Other missing fields compare equal to each other.
	ExcludePrimary MissingPolicy = "exclude-primary"
	// AsEmpty compares a missing field equal to another missing field.
	AsEmpty MissingPolicy = "as-empty"
)

// Policies lists the accepted policy names.
func Policies() []MissingPolicy {
	return []MissingPolicy{ExcludeAny, ExcludePrimary, AsEmpty}
}

// ParsePolicy parses a policy name. An empty name selects ExcludeAny.
func ParsePolicy(name string) (MissingPolicy, error) {
	switch MissingPolicy(strings.ToLower(strings.TrimSpace(name))) {
	case "", ExcludeAny:
		return ExcludeAny, nil
	case ExcludePrimary:
		return ExcludePrimary, nil
	case AsEmpty:
		return AsEmpty, nil
	default:
		return "", fmt.Errorf("%w: unknown missing-value policy %q (want one of %v)", common.ErrInvalidConfig, name, Policies())
	}
}

// eligible reports whether r takes part in comparison over key.
func (p MissingPolicy) eligible(r model.Record, key []string) bool {
	if len(key) == 0 {
		return false
	}
	switch p {
	case AsEmpty:
		return true
	case ExcludePrimary:
		return !r.Get(key[0]).IsEmpty()
	default:
		for _, c := range key {
			if r.Get(c).IsEmpty() {
				return false
			}
		}
		return true
	}
}
