package enums

import (
	"fmt"
	"strings"
)

// LicenseTier identifies the license purchased with an order item.
type LicenseTier string

const (
	LicenseTierBasic     LicenseTier = "basic"
	LicenseTierPremium   LicenseTier = "premium"
	LicenseTierExclusive LicenseTier = "exclusive"
)

var validLicenseTiers = []LicenseTier{
	LicenseTierBasic,
	LicenseTierPremium,
	LicenseTierExclusive,
}

func (t LicenseTier) String() string {
	return string(t)
}

// IsValid reports whether the value is a known LicenseTier.
func (t LicenseTier) IsValid() bool {
	for _, candidate := range validLicenseTiers {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsExclusive reports whether the tier removes the beat from further sale.
func (t LicenseTier) IsExclusive() bool {
	return t == LicenseTierExclusive
}

// ParseLicenseTier converts raw input into a LicenseTier. Storefront clients
// historically send "Exclusive License" for the exclusive tier, so that alias
// is accepted.
func ParseLicenseTier(value string) (LicenseTier, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "exclusive license" {
		return LicenseTierExclusive, nil
	}
	for _, candidate := range validLicenseTiers {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid license tier %q", value)
}
