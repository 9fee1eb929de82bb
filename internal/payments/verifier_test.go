package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/beatbazaar/beatbazaar-backend/pkg/enums"
	pkgerrors "github.com/beatbazaar/beatbazaar-backend/pkg/errors"
)

type fakeProvider struct {
	lookup *Lookup
	err    error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) LookupPayment(ctx context.Context, ref string) (*Lookup, error) {
	return f.lookup, f.err
}

func newTestVerifier(t *testing.T, provider Provider) Verifier {
	t.Helper()
	v, err := NewVerifier(map[enums.PaymentMethod]Provider{enums.PaymentMethodKhalti: provider}, nil)
	if err != nil {
		t.Fatalf("unexpected verifier error: %v", err)
	}
	return v
}

func TestVerifierAcceptsCompletedPayment(t *testing.T) {
	v := newTestVerifier(t, &fakeProvider{lookup: &Lookup{
		Found:                 true,
		Completed:             true,
		State:                 "Completed",
		AmountCents:           10000,
		ExternalTransactionID: "txn-1",
	}})

	lookup, err := v.Verify(context.Background(), enums.PaymentMethodKhalti, "pidx-1", 10000)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if lookup.ExternalTransactionID != "txn-1" {
		t.Fatalf("expected external txn id, got %q", lookup.ExternalTransactionID)
	}
}

func TestVerifierRejectsPendingPayment(t *testing.T) {
	v := newTestVerifier(t, &fakeProvider{lookup: &Lookup{
		Found:       true,
		Completed:   false,
		State:       "Pending",
		AmountCents: 10000,
	}})

	_, err := v.Verify(context.Background(), enums.PaymentMethodKhalti, "pidx-1", 10000)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestVerifierRejectsUnknownPayment(t *testing.T) {
	v := newTestVerifier(t, &fakeProvider{lookup: &Lookup{Found: false}})

	_, err := v.Verify(context.Background(), enums.PaymentMethodKhalti, "pidx-unknown", 10000)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestVerifierRejectsAmountMismatch(t *testing.T) {
	v := newTestVerifier(t, &fakeProvider{lookup: &Lookup{
		Found:       true,
		Completed:   true,
		State:       "Completed",
		AmountCents: 9000,
	}})

	_, err := v.Verify(context.Background(), enums.PaymentMethodKhalti, "pidx-1", 10000)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestVerifierMapsTransportFailure(t *testing.T) {
	v := newTestVerifier(t, &fakeProvider{err: errors.New("connection reset")})

	_, err := v.Verify(context.Background(), enums.PaymentMethodKhalti, "pidx-1", 10000)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestVerifierSkipsManualPayments(t *testing.T) {
	v := newTestVerifier(t, &fakeProvider{err: errors.New("should not be called")})

	lookup, err := v.Verify(context.Background(), enums.PaymentMethodManual, "", 10000)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !lookup.Completed {
		t.Fatal("manual payments should be treated as completed")
	}
}

func TestVerifierRejectsUnconfiguredMethod(t *testing.T) {
	v := newTestVerifier(t, &fakeProvider{lookup: &Lookup{Found: true, Completed: true}})

	_, err := v.Verify(context.Background(), enums.PaymentMethodCard, "pi_123", 10000)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
