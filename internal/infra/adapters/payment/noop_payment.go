package payment

import (
	"context"
	"fmt"
	"sync"

	"paychangu-gateway/internal/domain/model"
	"paychangu-gateway/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopPaymentGateway)(nil)

// NoopPaymentGateway is a simple in-memory gateway to use in tests and dry runs.
// Requests are validated like the PayChangu gateway. Payments are reported as
// pending until verified, payouts as successful.
type NoopPaymentGateway struct {
	mu        sync.Mutex
	seq       int64
	payments  map[string]float64 // tx_ref -> amount
	payouts   map[string]float64 // ref_id -> amount
	operators OperatorTable
}

func NewNoopPaymentGateway() *NoopPaymentGateway {
	return &NoopPaymentGateway{
		payments:  make(map[string]float64),
		payouts:   make(map[string]float64),
		operators: DefaultOperators(),
	}
}

func (g *NoopPaymentGateway) Name() string { return "noop" }

func (g *NoopPaymentGateway) next() string {
	g.seq++
	return fmt.Sprintf("noop-%d", g.seq)
}

func (g *NoopPaymentGateway) CreatePayment(ctx context.Context, req model.PaymentRequest) (model.Result, error) {
	if err := validateRequest(req); err != nil {
		return model.Failed(err), err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	ref := req.TxRef
	if ref == "" {
		ref = g.next()
	}
	g.payments[ref] = req.Amount
	return model.Result{
		Success:    true,
		StatusCode: 201,
		Status:     "success",
		Reference:  ref,
		Data:       map[string]any{"checkout_url": "https://example.test/pay/" + ref, "tx_ref": ref},
	}, nil
}

func (g *NoopPaymentGateway) VerifyPayment(ctx context.Context, txRef string) (model.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	amount, ok := g.payments[txRef]
	if !ok {
		return model.Result{StatusCode: 404, Status: "failed", Reference: txRef, Error: "noop: transaction not found"}, nil
	}
	return model.Result{
		Success:    true,
		StatusCode: 200,
		Status:     "success",
		Reference:  txRef,
		Data:       map[string]any{"tx_ref": txRef, "status": "pending", "amount": amount},
	}, nil
}

func (g *NoopPaymentGateway) ListBanks(ctx context.Context, currency string) ([]model.Bank, error) {
	return []model.Bank{{UUID: "noop-bank-1", Name: "Noop Bank"}}, nil
}

func (g *NoopPaymentGateway) CreateMobilePayout(ctx context.Context, req model.MobilePayoutRequest) (model.Result, error) {
	if err := validateRequest(req); err != nil {
		return model.Failed(err), err
	}
	op, err := g.operators.Detect(req.MobileNumber)
	if err != nil {
		return model.Failed(err), err
	}
	return g.payout(req.Amount, req.ChargeID, map[string]any{"operator": op.Name}), nil
}

func (g *NoopPaymentGateway) CreateBankPayout(ctx context.Context, req model.BankPayoutRequest) (model.Result, error) {
	if err := validateRequest(req); err != nil {
		return model.Failed(err), err
	}
	return g.payout(req.Amount, req.ChargeID, map[string]any{"bank_uuid": req.BankUUID}), nil
}

func (g *NoopPaymentGateway) payout(amount float64, chargeID string, extra map[string]any) model.Result {
	g.mu.Lock()
	defer g.mu.Unlock()
	ref := g.next()
	if chargeID == "" {
		chargeID = "charge-" + ref
	}
	g.payouts[ref] = amount
	tx := map[string]any{"ref_id": ref, "status": "pending", "amount": amount}
	for k, v := range extra {
		tx[k] = v
	}
	return model.Result{
		Success:    true,
		StatusCode: 200,
		Status:     "success",
		Reference:  chargeID,
		Data:       map[string]any{"transaction": tx},
	}
}

func (g *NoopPaymentGateway) VerifyPayout(ctx context.Context, refID string) (model.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	amount, ok := g.payouts[refID]
	if !ok {
		return model.Result{StatusCode: 404, Status: "failed", Reference: refID, Error: "noop: payout not found"}, nil
	}
	return model.Result{
		Success:    true,
		StatusCode: 200,
		Status:     "success",
		Reference:  refID,
		Data:       map[string]any{"ref_id": refID, "status": "success", "amount": amount},
	}, nil
}
