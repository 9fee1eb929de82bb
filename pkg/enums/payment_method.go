package enums

import "fmt"

// PaymentMethod is the instrument a buyer paid an order with.
type PaymentMethod string

const (
	PaymentMethodKhalti PaymentMethod = "khalti"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodManual PaymentMethod = "manual"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodKhalti,
	PaymentMethodCard,
	PaymentMethodManual,
}

func (m PaymentMethod) String() string {
	return string(m)
}

// IsValid reports whether the value is a known PaymentMethod.
func (m PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// RequiresGatewayVerification reports whether orders paid with this method
// must pass gateway lookup before being persisted. Manual orders are recorded
// by back office staff after funds already cleared.
func (m PaymentMethod) RequiresGatewayVerification() bool {
	return m == PaymentMethodKhalti || m == PaymentMethodCard
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
