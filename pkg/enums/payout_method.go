package enums

import "fmt"

// PayoutMethod is the channel a seller withdraws earnings through.
type PayoutMethod string

const (
	PayoutMethodBank   PayoutMethod = "bank"
	PayoutMethodPaypal PayoutMethod = "paypal"
	PayoutMethodKhalti PayoutMethod = "khalti"
)

var validPayoutMethods = []PayoutMethod{
	PayoutMethodBank,
	PayoutMethodPaypal,
	PayoutMethodKhalti,
}

func (m PayoutMethod) String() string {
	return string(m)
}

// IsValid reports whether the value is a known PayoutMethod.
func (m PayoutMethod) IsValid() bool {
	for _, candidate := range validPayoutMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParsePayoutMethod converts raw input into a PayoutMethod.
func ParsePayoutMethod(value string) (PayoutMethod, error) {
	for _, candidate := range validPayoutMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payout method %q", value)
}
