package salary

import (
	"github.com/shopspring/decimal"

	"github.com/warp/salary-engine/money"
)

var (
	// ESIRate is the employee state-insurance contribution rate.
	ESIRate = decimal.RequireFromString("0.0075")

	// ESIGrossThreshold is the highest monthly gross that is still ESI-eligible.
	ESIGrossThreshold = money.NewFromInt(21000, money.Monthly)
)

// EmployeeESI returns the monthly employee ESI contribution. Eligibility is
// all-or-nothing: ESIRate × gross up to and including the threshold, zero above it.
func EmployeeESI(grossMonthly money.Amount) money.Amount {
	gross := grossMonthly.ToMonthly()
	if gross.GreaterThan(ESIGrossThreshold) {
		return gross.Zero()
	}
	return gross.ClampZero().Mul(ESIRate)
}
