package salary

import (
	"github.com/shopspring/decimal"

	"github.com/warp/salary-engine/money"
)

// Fixed CTC split. The three shares sum to one.
var (
	BasicShare   = decimal.RequireFromString("0.50")
	HRAShare     = decimal.RequireFromString("0.40")
	SpecialShare = decimal.RequireFromString("0.10")
)

// Allocation is fixed CTC split into salary components, kept at full precision.
type Allocation struct {
	FixedCTC money.Amount // annual

	BasicAnnual   money.Amount
	HRAAnnual     money.Amount
	SpecialAnnual money.Amount

	Basic   money.Amount // monthly
	HRA     money.Amount // monthly
	Special money.Amount // monthly
}

// GrossMonthly is basic + HRA + special allowance per month.
func (a Allocation) GrossMonthly() money.Amount {
	return a.Basic.Add(a.HRA).Add(a.Special)
}

// Allocate removes variable pay and insurance from the annual CTC and splits the
// remainder into Basic, HRA and Special Allowance. Nothing is rounded here.
func Allocate(ctc, variablePay, insurance money.Amount) (Allocation, error) {
	if variablePay.IsNegative() {
		return Allocation{}, invalidInput("variable_pay", variablePay.Value, "must not be negative")
	}
	if insurance.IsNegative() {
		return Allocation{}, invalidInput("insurance", insurance.Value, "must not be negative")
	}

	fixed := ctc.ToAnnual().Sub(variablePay.ToAnnual()).Sub(insurance.ToAnnual())
	if fixed.IsNegative() {
		return Allocation{}, invalidInput("fixed_ctc", fixed.Value, "variable pay and insurance exceed ctc")
	}

	a := Allocation{
		FixedCTC:      fixed,
		BasicAnnual:   fixed.Mul(BasicShare),
		HRAAnnual:     fixed.Mul(HRAShare),
		SpecialAnnual: fixed.Mul(SpecialShare),
	}
	a.Basic = a.BasicAnnual.ToMonthly()
	a.HRA = a.HRAAnnual.ToMonthly()
	a.Special = a.SpecialAnnual.ToMonthly()
	return a, nil
}
