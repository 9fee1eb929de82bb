package enums

import "fmt"

// WalletTransactionType tags a ledger entry with its money-movement meaning.
type WalletTransactionType string

const (
	WalletTransactionTypeSale       WalletTransactionType = "sale"
	WalletTransactionTypeWithdrawal WalletTransactionType = "withdrawal"
	WalletTransactionTypeRefund     WalletTransactionType = "refund"
	WalletTransactionTypeAdjustment WalletTransactionType = "adjustment"
)

var validWalletTransactionTypes = []WalletTransactionType{
	WalletTransactionTypeSale,
	WalletTransactionTypeWithdrawal,
	WalletTransactionTypeRefund,
	WalletTransactionTypeAdjustment,
}

func (t WalletTransactionType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known WalletTransactionType.
func (t WalletTransactionType) IsValid() bool {
	for _, candidate := range validWalletTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseWalletTransactionType converts raw input into a WalletTransactionType.
func ParseWalletTransactionType(value string) (WalletTransactionType, error) {
	for _, candidate := range validWalletTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wallet transaction type %q", value)
}
