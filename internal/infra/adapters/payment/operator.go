package payment

import (
	"strings"

	"paychangu-gateway/internal/domain"
	"paychangu-gateway/internal/domain/model"
)

const (
	AirtelMoney = "Airtel Money"
	TNMMpamba   = "TNM Mpamba"
)

// OperatorPrefix maps the leading digits of a national number (no trunk 0,
// no 265 country code) to an operator.
type OperatorPrefix struct {
	Prefix   string `yaml:"prefix"`
	Operator string `yaml:"operator"`
	RefID    string `yaml:"ref_id"`
}

// OperatorTable is matched in order; the first prefix hit wins.
type OperatorTable []OperatorPrefix

// DefaultOperators is the Malawi numbering plan as classified by PayChangu.
func DefaultOperators() OperatorTable {
	const (
		airtelRef = "e8d5fca0-e5ac-4714-a518-484be9011326"
		tnmRef    = "5e9946ae-76ed-43f5-ad59-63e09096006a"
	)
	return OperatorTable{
		{Prefix: "99", Operator: AirtelMoney, RefID: airtelRef},
		{Prefix: "98", Operator: AirtelMoney, RefID: airtelRef},
		{Prefix: "88", Operator: TNMMpamba, RefID: tnmRef},
		{Prefix: "89", Operator: TNMMpamba, RefID: tnmRef},
	}
}

// Detect classifies a phone number. Non-numeric input is a validation error,
// a well-formed number with no matching prefix is an operator error.
func (t OperatorTable) Detect(phone string) (model.Operator, error) {
	national, err := NormalizeMSISDN(phone)
	if err != nil {
		return model.Operator{}, err
	}
	for _, p := range t {
		if p.Prefix != "" && strings.HasPrefix(national, p.Prefix) {
			return model.Operator{Name: p.Operator, RefID: p.RefID}, nil
		}
	}
	return model.Operator{}, &domain.OperatorError{Number: phone}
}

// NormalizeMSISDN strips formatting, a leading +/00 and the 265 country code
// or trunk 0, and returns the remaining national digits.
func NormalizeMSISDN(phone string) (string, error) {
	s := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(phone))

	s = strings.TrimPrefix(s, "+")
	if strings.HasPrefix(s, "00") {
		s = s[2:]
	}
	if strings.HasPrefix(s, "265") && len(s) > 9 {
		s = s[3:]
	}
	s = strings.TrimPrefix(s, "0")

	if s == "" {
		return "", &domain.ValidationError{Field: "mobile_number", Reason: "is empty"}
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", &domain.ValidationError{Field: "mobile_number", Reason: "must contain digits only"}
		}
	}
	return s, nil
}
