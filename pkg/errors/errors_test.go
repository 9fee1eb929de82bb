package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataFor(t *testing.T) {
	if got := MetadataFor(CodeConflict).HTTPStatus; got != http.StatusConflict {
		t.Fatalf("conflict status = %d", got)
	}
	if got := MetadataFor(CodeStateConflict).HTTPStatus; got != http.StatusUnprocessableEntity {
		t.Fatalf("state conflict status = %d", got)
	}
	if got := MetadataFor(Code("bogus")).HTTPStatus; got != http.StatusInternalServerError {
		t.Fatalf("unknown code should fall back to internal, got %d", got)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("socket closed")
	err := Wrap(CodeDependency, cause, "gateway lookup")

	if !stdErrors.Is(err, cause) {
		t.Fatal("wrapped cause should be reachable via errors.Is")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("code = %s", err.Code())
	}
	if err.Error() != "DEPENDENCY_ERROR: gateway lookup" {
		t.Fatalf("error string = %q", err.Error())
	}
}

func TestAsThroughChain(t *testing.T) {
	inner := New(CodeValidation, "amount must be positive").WithDetails(map[string]string{"amount": "must be greater than 0"})
	outer := fmt.Errorf("request withdrawal: %w", inner)

	typed := As(outer)
	if typed == nil {
		t.Fatal("expected coded error in chain")
	}
	if typed.Code() != CodeValidation {
		t.Fatalf("code = %s", typed.Code())
	}
	if typed.Details() == nil {
		t.Fatal("details should survive wrapping")
	}

	if As(stdErrors.New("plain")) != nil {
		t.Fatal("plain error should not match")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	err := Wrap(CodeDependency, stdErrors.New("timeout"), "verify payment")
	d := Dump(err)
	if d.Code != CodeDependency {
		t.Fatalf("dump code = %s", d.Code)
	}
	if len(d.Chain) < 2 {
		t.Fatalf("expected full chain, got %v", d.Chain)
	}
}
