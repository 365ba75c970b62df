package salary

import (
	"context"

	"go.uber.org/zap"

	"github.com/warp/salary-engine/money"
)

// StandardDeduction is subtracted from annual gross before tax.
var StandardDeduction = money.NewFromInt(50000, money.Annual)

// Calculator runs the CTC-to-take-home pipeline. It holds no mutable state and
// is safe for concurrent use.
type Calculator struct {
	table    CityTaxTable
	fallback FallbackTable
	resolver *ProfessionalTaxResolver
	schedule IncomeTaxSchedule
	logger   *zap.Logger
}

type Option func(*Calculator)

// WithFallbackTable replaces the static city table used when the store has no record.
func WithFallbackTable(t FallbackTable) Option {
	return func(c *Calculator) { c.fallback = t }
}

// WithResolver replaces the whole professional-tax chain.
func WithResolver(r *ProfessionalTaxResolver) Option {
	return func(c *Calculator) { c.resolver = r }
}

func WithSchedule(s IncomeTaxSchedule) Option {
	return func(c *Calculator) { c.schedule = s }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Calculator) { c.logger = l }
}

// NewCalculator creates a calculator reading city tax records from table.
// table may be nil, in which case only the static table and default apply.
func NewCalculator(table CityTaxTable, opts ...Option) *Calculator {
	c := &Calculator{
		table:    table,
		fallback: StandardFallbackTable(),
		schedule: NewRegimeSchedule(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.resolver == nil {
		c.resolver = NewStandardResolver(c.table, c.fallback, c.logger.Named("salary.ptax"))
	}
	return c
}

// Calculate returns the breakdown for req, rounded to RoundingPlaces.
// The only error is *InvalidInputError.
func (c *Calculator) Calculate(ctx context.Context, req CalculationRequest) (SalaryBreakdown, error) {
	b, err := c.calculate(ctx, req)
	if err != nil {
		return SalaryBreakdown{}, err
	}
	return b.Rounded(RoundingPlaces), nil
}

// calculate produces the unrounded breakdown.
func (c *Calculator) calculate(ctx context.Context, req CalculationRequest) (SalaryBreakdown, error) {
	ctc := money.New(req.CTC, money.Annual)
	variablePay := money.New(req.VariablePay, money.Annual)
	insurance := money.New(req.Insurance, money.Annual)

	if !ctc.IsPositive() {
		return SalaryBreakdown{}, invalidInput("ctc", ctc.Value, "must be positive")
	}

	// 1. Components
	alloc, err := Allocate(ctc, variablePay, insurance)
	if err != nil {
		return SalaryBreakdown{}, err
	}
	gross := alloc.GrossMonthly()

	// 2-4. Statutory deductions
	pf := EmployeePF(alloc.Basic)
	esi := EmployeeESI(gross)
	ptax := c.resolver.Resolve(ctx, req.City, gross)
	c.logger.Debug("professional tax resolved",
		zap.String("city", req.City),
		zap.String("source", ptax.Source),
		zap.String("amount", ptax.Amount.Value.String()))

	// 5. HRA exemption
	hra := ExemptHRA(alloc.HRAAnnual, alloc.BasicAnnual, req.City)

	// 6. Taxable income
	taxable := alloc.BasicAnnual.
		Add(hra.Taxable).
		Add(alloc.SpecialAnnual).
		Sub(StandardDeduction).
		Sub(pf.ToAnnual()).
		Sub(esi.ToAnnual()).
		Sub(ptax.Amount.ToAnnual()).
		ClampZero()

	// 7. Income tax
	incomeTax := c.schedule.Tax(taxable).ToMonthly()

	// 8. Aggregate
	deductions := pf.Add(esi).Add(ptax.Amount).Add(incomeTax)

	return SalaryBreakdown{
		CTC:               ctc,
		FixedCTC:          alloc.FixedCTC,
		VariablePay:       variablePay,
		Insurance:         insurance,
		BasicSalary:       alloc.Basic,
		HRA:               alloc.HRA,
		SpecialAllowance:  alloc.Special,
		GrossSalary:       gross,
		PF:                pf,
		ESI:               esi,
		ProfessionalTax:   ptax.Amount,
		IncomeTax:         incomeTax,
		InHandSalary:      gross.Sub(deductions),
		MonthlyDeductions: deductions,
		AnnualDeductions:  deductions.ToAnnual(),
		HRAExemption:      hra.Exempt,
		TaxableIncome:     taxable,
	}, nil
}
