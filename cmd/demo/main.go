package main

import (
	"context"
	"flag"
	"os"
	"time"

	"paychangu-gateway/internal/config"
	"paychangu-gateway/internal/domain/model"
	"paychangu-gateway/internal/domain/ports/adapter"
	payAdapters "paychangu-gateway/internal/infra/adapters/payment"
	"paychangu-gateway/internal/infra/logging"
)

// Walks through the client end to end: checkout, verification, bank listing
// and a mobile money payout.
func main() {
	apiKey := flag.String("key", os.Getenv(config.APIKeyEnv), "PayChangu secret key (defaults to $"+config.APIKeyEnv+")")
	baseURL := flag.String("base-url", config.DefaultBaseURL, "PayChangu API base URL")
	amount := flag.Float64("amount", 1000, "payment amount (MWK)")
	payoutAmount := flag.Float64("payout-amount", 500, "payout amount (MWK)")
	phone := flag.String("phone", "0881234567", "mobile money number for the payout")
	dryRun := flag.Bool("dry-run", false, "use the in-memory gateway instead of the API")
	flag.Parse()

	logger := logging.New(config.LogConfig{Level: "debug", Format: "console"}, true)

	var gw adapter.PaymentGateway
	if *dryRun {
		gw = payAdapters.NewNoopPaymentGateway()
	} else {
		pc, err := payAdapters.NewPayChanguGateway(*apiKey, payAdapters.Options{BaseURL: *baseURL, Logger: logger})
		if err != nil {
			logger.Fatal().Err(err).Msg("gateway")
		}
		gw = pc
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// 1. Create payment
	payRes, err := gw.CreatePayment(ctx, model.PaymentRequest{
		Amount:      *amount,
		Email:       "customer@example.com",
		FirstName:   "John",
		LastName:    "Doe",
		CallbackURL: "https://yoursite.com/callback",
		ReturnURL:   "https://yoursite.com/return",
		Description: "Test payment",
	})
	if err != nil {
		logger.Error().Err(err).Msg("create payment")
	}
	logger.Info().Interface("result", payRes).Msg("payment result")

	// 2. Verify it
	if payRes.Success {
		verifyRes, err := gw.VerifyPayment(ctx, payRes.Reference)
		if err != nil {
			logger.Error().Err(err).Msg("verify payment")
		}
		logger.Info().Interface("result", verifyRes).Str("transaction_status", verifyRes.TransactionStatus()).Msg("verification result")
	}

	// 3. Banks
	banks, err := gw.ListBanks(ctx, "")
	if err != nil {
		logger.Error().Err(err).Msg("list banks")
	}
	logger.Info().Int("count", len(banks)).Msg("available banks")

	// 4. Mobile payout
	payoutRes, err := gw.CreateMobilePayout(ctx, model.MobilePayoutRequest{Amount: *payoutAmount, MobileNumber: *phone})
	if err != nil {
		logger.Error().Err(err).Msg("mobile payout")
	}
	logger.Info().Interface("result", payoutRes).Msg("payout result")
}
