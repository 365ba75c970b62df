package salary

import (
	"github.com/warp/salary-engine/money"
)

// RoundingPlaces is applied to every breakdown figure, once, at the end.
const RoundingPlaces = 2

// SalaryBreakdown is the result of a calculation. CTC, FixedCTC, VariablePay,
// Insurance, AnnualDeductions, HRAExemption and TaxableIncome are annual;
// everything else is monthly.
//
// InHandSalary = GrossSalary - MonthlyDeductions and
// MonthlyDeductions = PF + ESI + ProfessionalTax + IncomeTax.
type SalaryBreakdown struct {
	CTC         money.Amount
	FixedCTC    money.Amount
	VariablePay money.Amount
	Insurance   money.Amount

	BasicSalary      money.Amount
	HRA              money.Amount
	SpecialAllowance money.Amount
	GrossSalary      money.Amount

	PF              money.Amount
	ESI             money.Amount
	ProfessionalTax money.Amount
	IncomeTax       money.Amount

	InHandSalary      money.Amount
	MonthlyDeductions money.Amount
	AnnualDeductions  money.Amount

	HRAExemption  money.Amount
	TaxableIncome money.Amount
}

// Rounded returns a copy with every figure rounded to places.
func (b SalaryBreakdown) Rounded(places int32) SalaryBreakdown {
	return SalaryBreakdown{
		CTC:               b.CTC.Round(places),
		FixedCTC:          b.FixedCTC.Round(places),
		VariablePay:       b.VariablePay.Round(places),
		Insurance:         b.Insurance.Round(places),
		BasicSalary:       b.BasicSalary.Round(places),
		HRA:               b.HRA.Round(places),
		SpecialAllowance:  b.SpecialAllowance.Round(places),
		GrossSalary:       b.GrossSalary.Round(places),
		PF:                b.PF.Round(places),
		ESI:               b.ESI.Round(places),
		ProfessionalTax:   b.ProfessionalTax.Round(places),
		IncomeTax:         b.IncomeTax.Round(places),
		InHandSalary:      b.InHandSalary.Round(places),
		MonthlyDeductions: b.MonthlyDeductions.Round(places),
		AnnualDeductions:  b.AnnualDeductions.Round(places),
		HRAExemption:      b.HRAExemption.Round(places),
		TaxableIncome:     b.TaxableIncome.Round(places),
	}
}
