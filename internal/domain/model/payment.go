package model

import "paychangu-gateway/internal/domain"

type PayoutChannel string

const (
	PayoutChannelMobile PayoutChannel = "mobile_money"
	PayoutChannelBank   PayoutChannel = "bank_transfer"
)

// PaymentRequest opens a hosted checkout session.
type PaymentRequest struct {
	Amount      float64 `json:"amount" validate:"finite,gt=0"`
	Currency    string  `json:"currency,omitempty"` // defaults to the gateway currency (MWK)
	Email       string  `json:"email" validate:"required"`
	FirstName   string  `json:"first_name" validate:"required"`
	LastName    string  `json:"last_name" validate:"required"`
	CallbackURL string  `json:"callback_url" validate:"required"`
	ReturnURL   string  `json:"return_url" validate:"required"`
	TxRef       string  `json:"tx_ref,omitempty"`
	Description string  `json:"description,omitempty"`
}

// MobilePayoutRequest disburses to an Airtel Money / TNM Mpamba wallet.
type MobilePayoutRequest struct {
	Amount       float64 `json:"amount" validate:"finite,gt=0"`
	MobileNumber string  `json:"mobile_number" validate:"required"`
	ChargeID     string  `json:"charge_id,omitempty"`
}

// BankPayoutRequest disburses to a bank account. BankUUID comes from the supported-banks listing.
type BankPayoutRequest struct {
	Amount        float64 `json:"amount" validate:"finite,gt=0"`
	BankUUID      string  `json:"bank_uuid" validate:"required"`
	AccountName   string  `json:"account_name" validate:"required"`
	AccountNumber string  `json:"account_number" validate:"required"`
	ChargeID      string  `json:"charge_id,omitempty"`
}

// Bank is one entry of the supported payout banks.
type Bank struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// Operator is a mobile money operator as classified by the gateway.
type Operator struct {
	Name  string `json:"name" yaml:"name"`
	RefID string `json:"ref_id" yaml:"ref_id"`
}

// Result is the uniform envelope returned by every gateway call.
// Data is the remote "data" object passed through as-is.
type Result struct {
	Success    bool           `json:"success"`
	StatusCode int            `json:"status_code,omitempty"`
	Status     string         `json:"status,omitempty"`
	Message    string         `json:"message,omitempty"`
	Reference  string         `json:"reference,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	Error      string         `json:"error,omitempty"`

	err error // local or transport cause, nil for remote rejections
}

// Failed wraps an error raised before or instead of a remote answer.
func Failed(err error) Result {
	return Result{Error: err.Error(), err: err}
}

// Err returns nil for successful results. Failures built with Failed keep
// their original error; anything else is a *domain.RemoteError.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	if r.err != nil {
		return r.err
	}
	return &domain.RemoteError{StatusCode: r.StatusCode, Message: r.Error}
}

// CheckoutURL is the hosted payment page, when present.
func (r Result) CheckoutURL() string {
	s, _ := r.Data["checkout_url"].(string)
	return s
}

// TransactionStatus is data.status of a verification response (pending/success/failed...).
func (r Result) TransactionStatus() string {
	s, _ := r.Data["status"].(string)
	return s
}

// PayoutRefID is data.transaction.ref_id of a payout response; VerifyPayout expects it.
func (r Result) PayoutRefID() string {
	tx, _ := r.Data["transaction"].(map[string]any)
	s, _ := tx["ref_id"].(string)
	return s
}
