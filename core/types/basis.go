// Package types - Activity basis for overhead absorption
package types

import (
	"strings"

	"inventory-valuation/internal/errors"
)

// ActivityBasis identifies the activity overheads are absorbed over
type ActivityBasis string

const (
	BasisMachineHours      ActivityBasis = "machine_hours"
	BasisDirectLabourHours ActivityBasis = "direct_labour_hours"
	BasisUnitsProduced     ActivityBasis = "units_produced"
)

// DefaultBasis is used when no basis is configured
const DefaultBasis = BasisMachineHours

// AllBases returns every supported basis in display order
func AllBases() []ActivityBasis {
	return []ActivityBasis{BasisMachineHours, BasisDirectLabourHours, BasisUnitsProduced}
}

// ParseActivityBasis accepts the identifier or the display label in any case,
// with spaces, hyphens or underscores as separators.
func ParseActivityBasis(s string) (ActivityBasis, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	if norm == "" {
		return DefaultBasis, nil
	}

	b := ActivityBasis(norm)
	if !b.IsValid() {
		return "", errors.Newf(errors.TypeInput, "unknown activity basis %q", s).
			WithContext("allowed", AllBases())
	}
	return b, nil
}

// String returns the string representation
func (b ActivityBasis) String() string {
	return string(b)
}

// IsValid checks if the basis is one of the supported bases
func (b ActivityBasis) IsValid() bool {
	switch b {
	case BasisMachineHours, BasisDirectLabourHours, BasisUnitsProduced:
		return true
	default:
		return false
	}
}

// Label returns the display label
func (b ActivityBasis) Label() string {
	switch b {
	case BasisMachineHours:
		return "Machine Hours"
	case BasisDirectLabourHours:
		return "Direct Labour Hours"
	case BasisUnitsProduced:
		return "Units Produced"
	default:
		return string(b)
	}
}

// Unit returns the singular unit an OAR is quoted per, e.g. "machine hour"
func (b ActivityBasis) Unit() string {
	switch b {
	case BasisMachineHours:
		return "machine hour"
	case BasisDirectLabourHours:
		return "direct labour hour"
	case BasisUnitsProduced:
		return "unit"
	default:
		return strings.ReplaceAll(string(b), "_", " ")
	}
}

// Justification returns the sentence supporting the basis as systematic and rational
func (b ActivityBasis) Justification() string {
	return "The use of " + b.Label() + " as the absorption basis is considered 'systematic and rational' " +
		"as it is a primary driver of the overhead costs in the production process."
}
