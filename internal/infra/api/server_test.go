//go:build !integration

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"paychangu-gateway/internal/domain"
	"paychangu-gateway/internal/domain/model"
	"paychangu-gateway/internal/infra/adapters/payment"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// newTestLogger creates a silent logger for tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// failingGateway embeds the noop gateway and overrides calls with fixed failures.
type failingGateway struct {
	*payment.NoopPaymentGateway
	result model.Result
	err    error
}

func (f *failingGateway) CreatePayment(ctx context.Context, req model.PaymentRequest) (model.Result, error) {
	return f.result, f.err
}

func (f *failingGateway) ListBanks(ctx context.Context, currency string) ([]model.Bank, error) {
	return nil, f.err
}

func (f *failingGateway) VerifyPayout(ctx context.Context, refID string) (model.Result, error) {
	panic("boom")
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeResult(t *testing.T, rr *httptest.ResponseRecorder) model.Result {
	t.Helper()
	var res model.Result
	if err := json.NewDecoder(bytes.NewReader(rr.Body.Bytes())).Decode(&res); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return res
}

const paymentBody = `{"amount":1000,"email":"user@email.com","first_name":"John","last_name":"Doe","callback_url":"https://m.example/cb","return_url":"https://m.example/ret"}`

func TestRelay_PaymentFlow(t *testing.T) {
	t.Parallel()
	h := NewServer(payment.NewNoopPaymentGateway(), "", time.Second, newTestLogger()).Routes()

	rr := do(t, h, http.MethodPost, "/v1/payments", paymentBody)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	created := decodeResult(t, rr)
	if !created.Success || created.Reference == "" || created.CheckoutURL() == "" {
		t.Fatalf("unexpected create result %+v", created)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatalf("trace id should be echoed")
	}

	rr = do(t, h, http.MethodGet, "/v1/payments/"+created.Reference, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	verified := decodeResult(t, rr)
	if verified.Data["tx_ref"] != created.Reference || verified.TransactionStatus() != "pending" {
		t.Fatalf("unexpected verify result %+v", verified)
	}

	rr = do(t, h, http.MethodGet, "/v1/payments/unknown", "")
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("unknown reference should be a remote failure (502), got %d", rr.Code)
	}
}

func TestRelay_Payouts(t *testing.T) {
	t.Parallel()
	h := NewServer(payment.NewNoopPaymentGateway(), "", time.Second, newTestLogger()).Routes()

	rr := do(t, h, http.MethodPost, "/v1/payouts/mobile", `{"amount":500,"mobile_number":"0881234567"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	res := decodeResult(t, rr)
	tx, _ := res.Data["transaction"].(map[string]any)
	if tx["operator"] != payment.TNMMpamba {
		t.Fatalf("operator = %v", tx["operator"])
	}

	rr = do(t, h, http.MethodGet, "/v1/payouts/"+res.PayoutRefID(), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("verify payout: expected 200, got %d", rr.Code)
	}

	rr = do(t, h, http.MethodPost, "/v1/payouts/mobile", `{"amount":500,"mobile_number":"0771234567"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown operator: expected 400, got %d", rr.Code)
	}

	rr = do(t, h, http.MethodPost, "/v1/payouts/bank", `{"amount":-1,"bank_uuid":"b","account_name":"a","account_number":"1"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("negative amount: expected 400, got %d", rr.Code)
	}

	rr = do(t, h, http.MethodPost, "/v1/payouts/bank", `{"amount":10,"bank_uuid":"b","account_name":"a","account_number":"1","extra":true}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown field: expected 400, got %d", rr.Code)
	}

	rr = do(t, h, http.MethodGet, "/v1/banks?currency=MWK", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "noop-bank-1") {
		t.Fatalf("banks: %d %s", rr.Code, rr.Body.String())
	}
}

func TestRelay_ErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		gw     *failingGateway
		status int
		errMsg string
	}{
		{
			name:   "remote rejection",
			gw:     &failingGateway{result: model.Result{StatusCode: 500, Error: "insufficient funds"}},
			status: http.StatusBadGateway,
			errMsg: "insufficient funds",
		},
		{
			name:   "network failure",
			gw:     &failingGateway{result: model.Result{Error: "gateway unreachable"}, err: &domain.NetworkError{Op: "create_payment", Err: context.DeadlineExceeded}},
			status: http.StatusBadGateway,
			errMsg: "gateway unreachable",
		},
		{
			name:   "validation",
			gw:     &failingGateway{result: model.Result{Error: "invalid argument: amount must be greater than 0"}, err: &domain.ValidationError{Field: "amount", Reason: "must be greater than 0"}},
			status: http.StatusBadRequest,
			errMsg: "invalid argument: amount must be greater than 0",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tc.gw.NoopPaymentGateway = payment.NewNoopPaymentGateway()
			h := NewServer(tc.gw, "", time.Second, newTestLogger()).Routes()
			rr := do(t, h, http.MethodPost, "/v1/payments", paymentBody)
			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rr.Code)
			}
			res := decodeResult(t, rr)
			if res.Success || res.Error != tc.errMsg {
				t.Fatalf("unexpected body %+v", res)
			}
		})
	}

	t.Run("banks remote error", func(t *testing.T) {
		t.Parallel()
		gw := &failingGateway{NoopPaymentGateway: payment.NewNoopPaymentGateway(), err: &domain.RemoteError{StatusCode: 401, Message: "Invalid API key"}}
		rr := do(t, NewServer(gw, "", time.Second, newTestLogger()).Routes(), http.MethodGet, "/v1/banks", "")
		if rr.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", rr.Code)
		}
	})

	t.Run("panic is recovered", func(t *testing.T) {
		t.Parallel()
		gw := &failingGateway{NoopPaymentGateway: payment.NewNoopPaymentGateway()}
		rr := do(t, NewServer(gw, "", time.Second, newTestLogger()).Routes(), http.MethodGet, "/v1/payouts/x", "")
		if rr.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rr.Code)
		}
	})
}

func TestAdminKey(t *testing.T) {
	t.Parallel()
	h := NewServer(payment.NewNoopPaymentGateway(), "relay-secret", time.Second, newTestLogger()).Routes()

	t.Run("no credentials -> 401", func(t *testing.T) {
		if rr := do(t, h, http.MethodGet, "/v1/banks", ""); rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})
	t.Run("wrong scheme -> 401", func(t *testing.T) {
		if rr := do(t, h, http.MethodGet, "/v1/banks", "", "Authorization", "Basic relay-secret"); rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})
	t.Run("wrong static key -> 403", func(t *testing.T) {
		if rr := do(t, h, http.MethodGet, "/v1/banks", "", "X-Admin-Key", "nope"); rr.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rr.Code)
		}
	})
	t.Run("raw key as bearer -> 401", func(t *testing.T) {
		if rr := do(t, h, http.MethodGet, "/v1/banks", "", "Authorization", "Bearer relay-secret"); rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})
	t.Run("valid token -> 200", func(t *testing.T) {
		tok, err := MintAdminToken("relay-secret", time.Minute)
		if err != nil {
			t.Fatal(err)
		}
		if rr := do(t, h, http.MethodGet, "/v1/banks", "", "Authorization", "Bearer "+tok); rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
	})
	t.Run("expired token -> 401", func(t *testing.T) {
		tok, err := MintAdminToken("relay-secret", -time.Minute)
		if err != nil {
			t.Fatal(err)
		}
		if rr := do(t, h, http.MethodGet, "/v1/banks", "", "Authorization", "Bearer "+tok); rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})
	t.Run("token signed with another key -> 401", func(t *testing.T) {
		tok, err := MintAdminToken("other-secret", time.Minute)
		if err != nil {
			t.Fatal(err)
		}
		if rr := do(t, h, http.MethodGet, "/v1/banks", "", "Authorization", "Bearer "+tok); rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})
	t.Run("token without admin role -> 401", func(t *testing.T) {
		claims := AdminClaims{
			Role:             "viewer",
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))},
		}
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("relay-secret"))
		if err != nil {
			t.Fatal(err)
		}
		if rr := do(t, h, http.MethodGet, "/v1/banks", "", "Authorization", "Bearer "+tok); rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})
	t.Run("token without expiry -> 401", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{Role: "admin"}).SignedString([]byte("relay-secret"))
		if err != nil {
			t.Fatal(err)
		}
		if rr := do(t, h, http.MethodGet, "/v1/banks", "", "Authorization", "Bearer "+tok); rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})
	t.Run("timeout applies behind the guard", func(t *testing.T) {
		tok, _ := MintAdminToken("relay-secret", time.Minute)
		rr := do(t, h, http.MethodPost, "/v1/payments", paymentBody, "Authorization", "Bearer "+tok)
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
		}
	})
	t.Run("header key -> 200", func(t *testing.T) {
		if rr := do(t, h, http.MethodGet, "/v1/banks", "", "X-Admin-Key", "relay-secret"); rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})
	t.Run("health and metrics stay open", func(t *testing.T) {
		if rr := do(t, h, http.MethodGet, "/health", ""); rr.Code != http.StatusOK {
			t.Fatalf("health: expected 200, got %d", rr.Code)
		}
		if rr := do(t, h, http.MethodGet, "/metrics", ""); rr.Code != http.StatusOK {
			t.Fatalf("metrics: expected 200, got %d", rr.Code)
		}
	})
}

func TestMintAdminToken_EmptyKey(t *testing.T) {
	if _, err := MintAdminToken("", time.Minute); err == nil {
		t.Fatalf("expected an error for an empty key")
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mw("first"), mw("second"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if strings.Join(order, ",") != "first,second,handler" {
		t.Fatalf("unexpected order %v", order)
	}
}
