package enums

// NotificationKind labels in-app notifications emitted by the pipeline.
type NotificationKind string

const (
	NotificationKindSaleCredited        NotificationKind = "sale_credited"
	NotificationKindWithdrawalRequested NotificationKind = "withdrawal_requested"
	NotificationKindWithdrawalSettled   NotificationKind = "withdrawal_settled"
)

func (k NotificationKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known NotificationKind.
func (k NotificationKind) IsValid() bool {
	switch k {
	case NotificationKindSaleCredited, NotificationKindWithdrawalRequested, NotificationKindWithdrawalSettled:
		return true
	default:
		return false
	}
}
