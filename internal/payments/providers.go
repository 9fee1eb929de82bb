package payments

import (
	"context"
	"errors"
	"fmt"

	stripesdk "github.com/stripe/stripe-go/v72"

	"github.com/beatbazaar/beatbazaar-backend/pkg/khalti"
	"github.com/beatbazaar/beatbazaar-backend/pkg/stripe"
)

// KhaltiProvider adapts the Khalti lookup client to the provider surface.
type KhaltiProvider struct {
	client *khalti.Client
}

func NewKhaltiProvider(client *khalti.Client) (*KhaltiProvider, error) {
	if client == nil {
		return nil, fmt.Errorf("khalti client required")
	}
	return &KhaltiProvider{client: client}, nil
}

func (p *KhaltiProvider) Name() string { return "khalti" }

func (p *KhaltiProvider) LookupPayment(ctx context.Context, ref string) (*Lookup, error) {
	res, err := p.client.LookupPayment(ctx, ref)
	if err != nil {
		var apiErr *khalti.APIError
		if errors.As(err, &apiErr) && apiErr.NotFound() {
			return &Lookup{Found: false}, nil
		}
		return nil, err
	}
	return &Lookup{
		Found:                 true,
		Completed:             res.Completed(),
		State:                 res.Status,
		AmountCents:           res.TotalAmount,
		ExternalTransactionID: res.TransactionID,
	}, nil
}

// StripeProvider adapts the Stripe payment intent API to the provider surface.
type StripeProvider struct {
	client *stripe.Client
}

func NewStripeProvider(client *stripe.Client) (*StripeProvider, error) {
	if client == nil {
		return nil, fmt.Errorf("stripe client required")
	}
	return &StripeProvider{client: client}, nil
}

func (p *StripeProvider) Name() string { return "stripe" }

func (p *StripeProvider) LookupPayment(ctx context.Context, ref string) (*Lookup, error) {
	intent, err := p.client.GetPaymentIntent(ctx, ref)
	if err != nil {
		var stripeErr *stripesdk.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripesdk.ErrorCodeResourceMissing {
			return &Lookup{Found: false}, nil
		}
		return nil, err
	}
	return &Lookup{
		Found:                 true,
		Completed:             intent.Status == stripesdk.PaymentIntentStatusSucceeded,
		State:                 string(intent.Status),
		AmountCents:           intent.Amount,
		ExternalTransactionID: intent.ID,
	}, nil
}
