package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/beatbazaar/beatbazaar-backend/pkg/enums"
	pkgerrors "github.com/beatbazaar/beatbazaar-backend/pkg/errors"
	"github.com/beatbazaar/beatbazaar-backend/pkg/metrics"
)

// Lookup is the gateway's answer for one payment reference.
type Lookup struct {
	Found                 bool
	Completed             bool
	State                 string
	AmountCents           int64
	ExternalTransactionID string
}

// Provider fetches the gateway record for a payment reference. A nil error
// with Found=false means the gateway answered but has no such payment;
// transport failures come back as errors.
type Provider interface {
	Name() string
	LookupPayment(ctx context.Context, ref string) (*Lookup, error)
}

// Verifier confirms a payment with its gateway before anything about the
// order is persisted. It never writes; it only answers yes or no.
type Verifier interface {
	Verify(ctx context.Context, method enums.PaymentMethod, ref string, expectedAmountCents int64) (*Lookup, error)
}

type verifier struct {
	providers map[enums.PaymentMethod]Provider
	metrics   *metrics.PipelineMetrics
}

// NewVerifier wires the verifier with one provider per gateway-backed
// payment method.
func NewVerifier(providers map[enums.PaymentMethod]Provider, m *metrics.PipelineMetrics) (Verifier, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("at least one payment provider required")
	}
	return &verifier{providers: providers, metrics: m}, nil
}

func (v *verifier) Verify(ctx context.Context, method enums.PaymentMethod, ref string, expectedAmountCents int64) (*Lookup, error) {
	if !method.RequiresGatewayVerification() {
		// Manual payments are recorded by an admin and carry no gateway ref.
		return &Lookup{Found: true, Completed: true, State: "manual", AmountCents: expectedAmountCents}, nil
	}

	provider, ok := v.providers[method]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("no gateway configured for payment method %q", method))
	}

	start := time.Now()
	lookup, err := provider.LookupPayment(ctx, ref)
	v.metrics.ObserveGatewayLookup(provider.Name(), time.Since(start))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment gateway lookup failed").
			WithDetails(map[string]any{"provider": provider.Name()})
	}

	if !lookup.Found {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment not found at gateway").
			WithDetails(map[string]any{"payment_ref": ref})
	}
	if !lookup.Completed {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment not completed").
			WithDetails(map[string]any{"state": lookup.State})
	}
	if lookup.AmountCents != expectedAmountCents {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount does not match order total").
			WithDetails(map[string]any{
				"paid_cents":     lookup.AmountCents,
				"expected_cents": expectedAmountCents,
			})
	}
	return lookup, nil
}
