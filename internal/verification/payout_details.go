package verification

import (
	"strings"

	"github.com/beatbazaar/beatbazaar-backend/pkg/db/models"
	"github.com/beatbazaar/beatbazaar-backend/pkg/enums"
)

// MissingPayoutFields reports which details the chosen payout method still
// needs. An empty slice means the record can receive a payout that way.
func MissingPayoutFields(record *models.VerificationRecord, method enums.PayoutMethod) []string {
	if record == nil {
		switch method {
		case enums.PayoutMethodBank:
			return []string{"bank_name", "account_name", "account_number"}
		case enums.PayoutMethodPaypal:
			return []string{"paypal_email"}
		case enums.PayoutMethodKhalti:
			return []string{"khalti_id"}
		default:
			return []string{"payout_method"}
		}
	}

	var missing []string
	switch method {
	case enums.PayoutMethodBank:
		if blank(record.BankName) {
			missing = append(missing, "bank_name")
		}
		if blank(record.AccountName) {
			missing = append(missing, "account_name")
		}
		if blank(record.AccountNumber) {
			missing = append(missing, "account_number")
		}
	case enums.PayoutMethodPaypal:
		if blank(record.PaypalEmail) {
			missing = append(missing, "paypal_email")
		}
	case enums.PayoutMethodKhalti:
		if blank(record.KhaltiID) {
			missing = append(missing, "khalti_id")
		}
	default:
		missing = append(missing, "payout_method")
	}
	return missing
}

func blank(value *string) bool {
	return value == nil || strings.TrimSpace(*value) == ""
}
