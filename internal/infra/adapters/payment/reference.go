package payment

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

const (
	refPrefixPayment      = "payment"
	refPrefixMobilePayout = "mobile_payout"
	refPrefixBankPayout   = "bank_payout"
)

// newReference returns "<prefix>_<ulid>", time-ordered and unique per process.
func newReference(prefix string) string {
	return prefix + "_" + strings.ToLower(ulid.Make().String())
}
