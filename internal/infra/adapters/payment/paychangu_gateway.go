// File: internal/infra/adapters/payment/paychangu_gateway.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"paychangu-gateway/internal/config"
	"paychangu-gateway/internal/domain"
	"paychangu-gateway/internal/domain/model"
	"paychangu-gateway/internal/domain/ports/adapter"
	"paychangu-gateway/internal/infra/logging"
	"paychangu-gateway/internal/infra/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

var _ adapter.PaymentGateway = (*PayChanguGateway)(nil)

const (
	pathPayment       = "/payment"
	pathVerifyPayment = "/payment/verify/"
	pathBanks         = "/direct-charge/payouts/supported-banks"
	pathPayout        = "/direct-charge/payouts/initialize"
	pathVerifyPayout  = "/direct-charge/payouts/verify/"

	maxResponseBytes = 1 << 20
)

// Operation names, used for metrics labels, logs and generic failure messages.
const (
	OpCreatePayment = "create_payment"
	OpVerifyPayment = "verify_payment"
	OpListBanks     = "list_banks"
	OpMobilePayout  = "mobile_payout"
	OpBankPayout    = "bank_payout"
	OpVerifyPayout  = "verify_payout"
)

var genericFailure = map[string]string{
	OpCreatePayment: "payment creation failed",
	OpVerifyPayment: "payment verification failed",
	OpListBanks:     "bank listing failed",
	OpMobilePayout:  "mobile payout failed",
	OpBankPayout:    "bank payout failed",
	OpVerifyPayout:  "payout verification failed",
}

// Options tunes a PayChanguGateway. Zero values fall back to defaults.
type Options struct {
	BaseURL    string
	Timeout    time.Duration // per-request limit; ignored when HTTPClient is set
	Currency   string
	Operators  OperatorTable
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// PayChanguGateway implements adapter.PaymentGateway against the PayChangu REST API.
// All fields are set once by the constructor; methods are safe for concurrent use.
type PayChanguGateway struct {
	apiKey    string
	baseURL   string
	currency  string
	operators OperatorTable
	client    *http.Client
	logger    *zerolog.Logger
}

func NewPayChanguGateway(apiKey string, opts Options) (*PayChanguGateway, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, domain.ErrMissingAPIKey
	}
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = config.DefaultBaseURL
	}
	if u, err := url.Parse(base); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", base)
	}
	g := &PayChanguGateway{
		apiKey:    apiKey,
		baseURL:   base,
		currency:  opts.Currency,
		operators: opts.Operators,
		client:    opts.HTTPClient,
		logger:    opts.Logger,
	}
	if g.currency == "" {
		g.currency = config.DefaultCurrency
	}
	if len(g.operators) == 0 {
		g.operators = DefaultOperators()
	}
	if g.client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = config.DefaultTimeout
		}
		g.client = &http.Client{Timeout: timeout}
	}
	if g.logger == nil {
		g.logger = logging.Nop()
	}
	return g, nil
}

// NewFromConfig builds the gateway from the paychangu config section.
func NewFromConfig(cfg config.PayChanguConfig, logger *zerolog.Logger) (*PayChanguGateway, error) {
	var table OperatorTable
	for _, op := range cfg.Operators {
		table = append(table, OperatorPrefix{Prefix: op.Prefix, Operator: op.Operator, RefID: op.RefID})
	}
	return NewPayChanguGateway(cfg.APIKey, Options{
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout(),
		Currency:  cfg.Currency,
		Operators: table,
		Logger:    logger,
	})
}

func (g *PayChanguGateway) Name() string { return "paychangu" }

// Operators returns the prefix table in use.
func (g *PayChanguGateway) Operators() OperatorTable { return g.operators }

// CreatePayment calls POST /payment and returns the checkout session.
func (g *PayChanguGateway) CreatePayment(ctx context.Context, req model.PaymentRequest) (model.Result, error) {
	if err := validateRequest(req); err != nil {
		metrics.IncPayment("failed")
		return g.rejectLocally(ctx, OpCreatePayment, err)
	}
	currency := req.Currency
	if currency == "" {
		currency = g.currency
	}
	txRef := req.TxRef
	if txRef == "" {
		txRef = newReference(refPrefixPayment)
	}
	payload := map[string]any{
		"amount":       formatAmount(req.Amount),
		"currency":     currency,
		"email":        req.Email,
		"first_name":   req.FirstName,
		"last_name":    req.LastName,
		"callback_url": req.CallbackURL,
		"return_url":   req.ReturnURL,
		"tx_ref":       txRef,
	}
	if req.Description != "" {
		payload["customization"] = map[string]string{
			"title":       "Payment",
			"description": req.Description,
		}
	}

	resp, err := g.do(ctx, OpCreatePayment, http.MethodPost, pathPayment, payload)
	resp.result.Reference = txRef
	if resp.result.Success {
		metrics.IncPayment("initiated")
	} else {
		metrics.IncPayment("failed")
	}
	return resp.result, err
}

// VerifyPayment calls GET /payment/verify/{tx_ref}. The transaction status is
// passed through untouched in Result.Data.
func (g *PayChanguGateway) VerifyPayment(ctx context.Context, txRef string) (model.Result, error) {
	txRef = strings.TrimSpace(txRef)
	if txRef == "" {
		return g.rejectLocally(ctx, OpVerifyPayment, &domain.ValidationError{Field: "tx_ref", Reason: "is required"})
	}
	resp, err := g.do(ctx, OpVerifyPayment, http.MethodGet, pathVerifyPayment+url.PathEscape(txRef), nil)
	resp.result.Reference = txRef
	return resp.result, err
}

// ListBanks calls GET /direct-charge/payouts/supported-banks. An empty currency
// uses the gateway default.
func (g *PayChanguGateway) ListBanks(ctx context.Context, currency string) ([]model.Bank, error) {
	if currency == "" {
		currency = g.currency
	}
	q := url.Values{}
	q.Set("currency", currency)

	resp, err := g.do(ctx, OpListBanks, http.MethodGet, pathBanks+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if !resp.result.Success {
		return nil, resp.result.Err()
	}
	var banks []model.Bank
	if len(resp.data) > 0 && !bytes.Equal(resp.data, []byte("null")) {
		if err := json.Unmarshal(resp.data, &banks); err != nil {
			return nil, &domain.RemoteError{StatusCode: resp.result.StatusCode, Message: "unexpected banks payload: " + err.Error()}
		}
	}
	return banks, nil
}

// CreateMobilePayout detects the operator from the number's prefix and calls
// POST /direct-charge/payouts/initialize. An unknown prefix never reaches the network.
func (g *PayChanguGateway) CreateMobilePayout(ctx context.Context, req model.MobilePayoutRequest) (model.Result, error) {
	channel := string(model.PayoutChannelMobile)
	if err := validateRequest(req); err != nil {
		metrics.IncPayout(channel, "failed")
		return g.rejectLocally(ctx, OpMobilePayout, err)
	}
	op, err := g.operators.Detect(req.MobileNumber)
	if err != nil {
		metrics.IncPayout(channel, "failed")
		return g.rejectLocally(ctx, OpMobilePayout, err)
	}
	chargeID := req.ChargeID
	if chargeID == "" {
		chargeID = newReference(refPrefixMobilePayout)
	}
	payload := map[string]any{
		"payout_method": channel,
		"bank_uuid":     op.RefID,
		"operator":      op.Name,
		"amount":        formatAmount(req.Amount),
		"charge_id":     chargeID,
		"mobile_number": strings.TrimSpace(req.MobileNumber),
	}

	resp, err := g.do(ctx, OpMobilePayout, http.MethodPost, pathPayout, payload)
	resp.result.Reference = chargeID
	g.countPayout(channel, req.Amount, resp.result.Success)
	return resp.result, err
}

// CreateBankPayout calls POST /direct-charge/payouts/initialize with the bank_transfer channel.
func (g *PayChanguGateway) CreateBankPayout(ctx context.Context, req model.BankPayoutRequest) (model.Result, error) {
	channel := string(model.PayoutChannelBank)
	if err := validateRequest(req); err != nil {
		metrics.IncPayout(channel, "failed")
		return g.rejectLocally(ctx, OpBankPayout, err)
	}
	chargeID := req.ChargeID
	if chargeID == "" {
		chargeID = newReference(refPrefixBankPayout)
	}
	payload := map[string]any{
		"payout_method":       channel,
		"bank_uuid":           req.BankUUID,
		"amount":              formatAmount(req.Amount),
		"charge_id":           chargeID,
		"bank_account_name":   req.AccountName,
		"bank_account_number": req.AccountNumber,
	}

	resp, err := g.do(ctx, OpBankPayout, http.MethodPost, pathPayout, payload)
	resp.result.Reference = chargeID
	g.countPayout(channel, req.Amount, resp.result.Success)
	return resp.result, err
}

// VerifyPayout calls GET /direct-charge/payouts/verify/{ref_id}.
func (g *PayChanguGateway) VerifyPayout(ctx context.Context, refID string) (model.Result, error) {
	refID = strings.TrimSpace(refID)
	if refID == "" {
		return g.rejectLocally(ctx, OpVerifyPayout, &domain.ValidationError{Field: "ref_id", Reason: "is required"})
	}
	resp, err := g.do(ctx, OpVerifyPayout, http.MethodGet, pathVerifyPayout+url.PathEscape(refID), nil)
	resp.result.Reference = refID
	return resp.result, err
}

func (g *PayChanguGateway) countPayout(channel string, amount float64, ok bool) {
	if !ok {
		metrics.IncPayout(channel, "failed")
		return
	}
	metrics.IncPayout(channel, "initiated")
	metrics.AddPayoutAmount(channel, amount)
}

// ---- transport ----

type envelope struct {
	Status  string          `json:"status"`
	Message json.RawMessage `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type response struct {
	result model.Result
	data   json.RawMessage
}

// do performs exactly one HTTP call. Transport failures return a *domain.NetworkError;
// any HTTP response, good or bad, returns a nil error and is judged in the Result.
func (g *PayChanguGateway) do(ctx context.Context, op, method, path string, payload any) (response, error) {
	logger := logging.With(ctx, g.logger)
	defer logging.TraceDuration(logger, "PayChangu."+op)()
	start := time.Now()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return g.networkFailure(logger, op, start, fmt.Errorf("encode request: %w", err))
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return g.networkFailure(logger, op, start, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return g.networkFailure(logger, op, start, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return g.networkFailure(logger, op, start, fmt.Errorf("read response: %w", err))
	}

	out := decodeResponse(op, resp.StatusCode, raw)
	result := metrics.ResultOK
	if !out.result.Success {
		result = metrics.ResultRemoteError
		logger.Warn().
			Str("operation", op).
			Int("status_code", resp.StatusCode).
			Str("error", out.result.Error).
			Dur("duration", time.Since(start)).
			Msg("paychangu call rejected")
	} else {
		logger.Debug().
			Str("operation", op).
			Int("status_code", resp.StatusCode).
			Dur("duration", time.Since(start)).
			Msg("paychangu call ok")
	}
	metrics.ObserveGatewayCall(op, result, time.Since(start))
	return out, nil
}

// decodeResponse applies the success rule: 2xx and, if present, status == "success".
func decodeResponse(op string, statusCode int, raw []byte) response {
	out := response{result: model.Result{StatusCode: statusCode}}
	ok2xx := statusCode >= 200 && statusCode < 300

	var env envelope
	parsed := true
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			parsed = false
		}
	}

	out.result.Status = env.Status
	out.result.Message = rawMessage(env.Message)
	out.data = env.Data
	if len(env.Data) > 0 {
		var m map[string]any
		if json.Unmarshal(env.Data, &m) == nil {
			out.result.Data = m
		}
	}

	switch {
	case !parsed && ok2xx:
		out.result.Error = genericFailure[op] + ": response is not valid JSON"
	case !ok2xx, env.Status != "" && !strings.EqualFold(env.Status, "success"):
		out.result.Error = out.result.Message
		if out.result.Error == "" {
			out.result.Error = genericFailure[op]
		}
	default:
		out.result.Success = true
	}
	return out
}

// rawMessage returns string messages verbatim and re-encodes structured ones compactly.
func rawMessage(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func (g *PayChanguGateway) networkFailure(logger *zerolog.Logger, op string, start time.Time, err error) (response, error) {
	nerr := &domain.NetworkError{Op: op, Err: err}
	logger.Warn().Err(err).Str("operation", op).Dur("duration", time.Since(start)).Msg("paychangu call failed")
	metrics.ObserveGatewayCall(op, metrics.ResultNetworkError, time.Since(start))
	return response{result: model.Failed(nerr)}, nerr
}

// rejectLocally reports an input problem without touching the network.
func (g *PayChanguGateway) rejectLocally(ctx context.Context, op string, err error) (model.Result, error) {
	logging.With(ctx, g.logger).Debug().Err(err).Str("operation", op).Msg("paychangu call rejected locally")
	metrics.ObserveGatewayCall(op, metrics.ResultInvalid, 0)
	return model.Failed(err), err
}

// ---- validation ----

// requestValidator is shared by every gateway in this package; validator.Validate
// is safe for concurrent use once its tags are registered.
var requestValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateRequest maps the first validator failure to a *domain.ValidationError.
func validateRequest(s any) error {
	err := requestValidator.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &domain.ValidationError{Reason: err.Error()}
	}
	fe := verrs[0]
	reason := "is invalid"
	switch fe.Tag() {
	case "required":
		reason = "is required"
	case "gt":
		reason = "must be greater than " + fe.Param()
	case "finite":
		reason = "must be a finite number"
	}
	return &domain.ValidationError{Field: fe.Field(), Reason: reason}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
