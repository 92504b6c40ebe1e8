package model

import (
	"errors"
	"testing"

	"paychangu-gateway/internal/domain"
)

func TestResult_Accessors(t *testing.T) {
	r := Result{
		Success: true,
		Data: map[string]any{
			"checkout_url": "https://pay.example/abc",
			"status":       "pending",
			"transaction":  map[string]any{"ref_id": "PC-1"},
		},
	}
	if r.Err() != nil {
		t.Fatalf("successful result should have no error")
	}
	if r.CheckoutURL() != "https://pay.example/abc" || r.TransactionStatus() != "pending" || r.PayoutRefID() != "PC-1" {
		t.Fatalf("unexpected accessors on %+v", r)
	}

	var empty Result
	if empty.CheckoutURL() != "" || empty.TransactionStatus() != "" || empty.PayoutRefID() != "" {
		t.Fatalf("accessors must tolerate missing data")
	}
}

func TestResult_Err(t *testing.T) {
	r := Result{StatusCode: 500, Error: "insufficient funds"}
	var rerr *domain.RemoteError
	if !errors.As(r.Err(), &rerr) || rerr.Message != "insufficient funds" || rerr.StatusCode != 500 {
		t.Fatalf("Err() = %v", r.Err())
	}
}

func TestResult_ErrKeepsLocalCause(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		target error
	}{
		{"validation", &domain.ValidationError{Field: "amount", Reason: "must be greater than 0"}, domain.ErrValidation},
		{"operator", &domain.OperatorError{Number: "0771234567"}, domain.ErrUnrecognizedOperator},
		{"network", &domain.NetworkError{Op: "create_payment", Err: errors.New("dial tcp: refused")}, domain.ErrNetwork},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := Failed(tc.err)
			if r.Success || r.Error != tc.err.Error() {
				t.Fatalf("unexpected result %+v", r)
			}
			if !errors.Is(r.Err(), tc.target) {
				t.Fatalf("Err() = %v, want %v", r.Err(), tc.target)
			}
			if errors.Is(r.Err(), domain.ErrRemote) {
				t.Fatalf("local failure must not be reported as remote")
			}
		})
	}
}
