package salary

import (
	"github.com/shopspring/decimal"

	"github.com/warp/salary-engine/money"
)

// Share of basic salary that caps the HRA exemption.
var (
	MetroHRAExemptionRate    = decimal.RequireFromString("0.50")
	NonMetroHRAExemptionRate = decimal.RequireFromString("0.40")
)

// HRAExemption is the tax treatment of annual HRA.
type HRAExemption struct {
	Rate    decimal.Decimal
	Exempt  money.Amount // annual
	Taxable money.Amount // annual
}

// ExemptHRA computes exemption = min(hra, basic × rate), rate 50% in a metro
// and 40% elsewhere. The rent-paid leg of the statutory rule is not modelled.
func ExemptHRA(hraAnnual, basicAnnual money.Amount, city string) HRAExemption {
	rate := NonMetroHRAExemptionRate
	if IsMetroCity(city) {
		rate = MetroHRAExemptionRate
	}

	hra := hraAnnual.ToAnnual()
	exempt := hra.Min(basicAnnual.ToAnnual().Mul(rate)).ClampZero()
	return HRAExemption{
		Rate:    rate,
		Exempt:  exempt,
		Taxable: hra.Sub(exempt).ClampZero(),
	}
}
