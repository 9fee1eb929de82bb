package enums

// WalletTransactionStatus is the only mutable field of a ledger entry.
type WalletTransactionStatus string

const (
	WalletTransactionStatusPending   WalletTransactionStatus = "pending"
	WalletTransactionStatusCompleted WalletTransactionStatus = "completed"
	WalletTransactionStatusFailed    WalletTransactionStatus = "failed"
)

var validWalletTransactionStatuses = []WalletTransactionStatus{
	WalletTransactionStatusPending,
	WalletTransactionStatusCompleted,
	WalletTransactionStatusFailed,
}

func (s WalletTransactionStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known WalletTransactionStatus.
func (s WalletTransactionStatus) IsValid() bool {
	for _, candidate := range validWalletTransactionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}
