package sqlite

import (
	"github.com/shopspring/decimal"

	"github.com/warp/salary-engine/money"
	"github.com/warp/salary-engine/salary"
)

// storedBreakdown is the breakdown_json column layout. Values are decimal
// strings; periods are implied by the field.
type storedBreakdown struct {
	CTC               decimal.Decimal `json:"ctc"`
	FixedCTC          decimal.Decimal `json:"fixed_ctc"`
	VariablePay       decimal.Decimal `json:"variable_pay"`
	Insurance         decimal.Decimal `json:"insurance"`
	BasicSalary       decimal.Decimal `json:"basic_salary"`
	HRA               decimal.Decimal `json:"hra"`
	SpecialAllowance  decimal.Decimal `json:"special_allowance"`
	GrossSalary       decimal.Decimal `json:"gross_salary"`
	PF                decimal.Decimal `json:"pf"`
	ESI               decimal.Decimal `json:"esi"`
	ProfessionalTax   decimal.Decimal `json:"professional_tax"`
	IncomeTax         decimal.Decimal `json:"income_tax"`
	InHandSalary      decimal.Decimal `json:"in_hand_salary"`
	MonthlyDeductions decimal.Decimal `json:"monthly_deductions"`
	AnnualDeductions  decimal.Decimal `json:"annual_deductions"`
	HRAExemption      decimal.Decimal `json:"hra_exemption"`
	TaxableIncome     decimal.Decimal `json:"taxable_income"`
}

func toStoredBreakdown(b salary.SalaryBreakdown) storedBreakdown {
	return storedBreakdown{
		CTC:               b.CTC.Value,
		FixedCTC:          b.FixedCTC.Value,
		VariablePay:       b.VariablePay.Value,
		Insurance:         b.Insurance.Value,
		BasicSalary:       b.BasicSalary.Value,
		HRA:               b.HRA.Value,
		SpecialAllowance:  b.SpecialAllowance.Value,
		GrossSalary:       b.GrossSalary.Value,
		PF:                b.PF.Value,
		ESI:               b.ESI.Value,
		ProfessionalTax:   b.ProfessionalTax.Value,
		IncomeTax:         b.IncomeTax.Value,
		InHandSalary:      b.InHandSalary.Value,
		MonthlyDeductions: b.MonthlyDeductions.Value,
		AnnualDeductions:  b.AnnualDeductions.Value,
		HRAExemption:      b.HRAExemption.Value,
		TaxableIncome:     b.TaxableIncome.Value,
	}
}

func (s storedBreakdown) toBreakdown() salary.SalaryBreakdown {
	a := func(d decimal.Decimal) money.Amount { return money.New(d, money.Annual) }
	m := func(d decimal.Decimal) money.Amount { return money.New(d, money.Monthly) }
	return salary.SalaryBreakdown{
		CTC:               a(s.CTC),
		FixedCTC:          a(s.FixedCTC),
		VariablePay:       a(s.VariablePay),
		Insurance:         a(s.Insurance),
		BasicSalary:       m(s.BasicSalary),
		HRA:               m(s.HRA),
		SpecialAllowance:  m(s.SpecialAllowance),
		GrossSalary:       m(s.GrossSalary),
		PF:                m(s.PF),
		ESI:               m(s.ESI),
		ProfessionalTax:   m(s.ProfessionalTax),
		IncomeTax:         m(s.IncomeTax),
		InHandSalary:      m(s.InHandSalary),
		MonthlyDeductions: m(s.MonthlyDeductions),
		AnnualDeductions:  a(s.AnnualDeductions),
		HRAExemption:      a(s.HRAExemption),
		TaxableIncome:     a(s.TaxableIncome),
	}
}
