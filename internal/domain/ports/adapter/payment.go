package adapter

import (
	"context"

	"paychangu-gateway/internal/domain/model"
)

// PaymentGateway is the hex port for the PayChangu API.
//
// Every method issues at most one HTTP call. Local failures (validation,
// unknown operator) and transport failures come back as the error value and
// are mirrored in the returned Result; a remote rejection is reported only
// through the Result (Success=false, Error=remote message).
type PaymentGateway interface {
	Name() string

	// CreatePayment opens a checkout session; Result.Data carries checkout_url.
	CreatePayment(ctx context.Context, req model.PaymentRequest) (model.Result, error)
	// VerifyPayment looks up a payment by its tx_ref.
	VerifyPayment(ctx context.Context, txRef string) (model.Result, error)

	// ListBanks returns the banks payouts can be sent to for a currency.
	ListBanks(ctx context.Context, currency string) ([]model.Bank, error)
	CreateMobilePayout(ctx context.Context, req model.MobilePayoutRequest) (model.Result, error)
	CreateBankPayout(ctx context.Context, req model.BankPayoutRequest) (model.Result, error)
	// VerifyPayout looks up a payout by the gateway ref_id.
	VerifyPayout(ctx context.Context, refID string) (model.Result, error)
}
