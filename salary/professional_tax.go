/*
professional_tax.go - Monthly professional tax resolution

PURPOSE:
  Resolves the monthly professional tax for a city by asking an ordered chain
  of sources. The first source that answers wins.

STANDARD CHAIN:
  1. StoreSource    - the CityTaxTable (database). Absent record OR error → next
  2. FallbackSource - the static FallbackTable.                 Absent → next
  3. DefaultSource  - a flat ₹200

  Store errors are logged and swallowed; professional tax resolution never
  fails a calculation.

GROSS SALARY:
  Every source receives the monthly gross. No current source uses it; it is
  there for slab-based state regimes.

SEE ALSO:
  - city.go: CityTaxTable and FallbackTable
  - calculator.go: builds the standard chain
*/
package salary

import (
	"context"

	"go.uber.org/zap"

	"github.com/warp/salary-engine/money"
)

// DefaultProfessionalTax applies to cities unknown to both the store and the static table.
var DefaultProfessionalTax = money.NewFromInt(200, money.Monthly)

// TaxSource is one tier of the professional-tax chain.
type TaxSource interface {
	Name() string
	// ProfessionalTax returns ok=false when this source has no answer for city.
	ProfessionalTax(ctx context.Context, city string, grossMonthly money.Amount) (amount money.Amount, ok bool)
}

// =============================================================================
// SOURCES
// =============================================================================

// StoreSource answers from a CityTaxTable.
type StoreSource struct {
	Table  CityTaxTable
	Logger *zap.Logger
}

func (s StoreSource) Name() string { return "store" }

func (s StoreSource) ProfessionalTax(ctx context.Context, city string, _ money.Amount) (money.Amount, bool) {
	if s.Table == nil {
		return money.Zero(money.Monthly), false
	}
	rec, err := s.Table.LookupCity(ctx, city)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("city tax lookup failed, using fallback",
				zap.String("city", city), zap.Error(err))
		}
		return money.Zero(money.Monthly), false
	}
	if rec == nil {
		return money.Zero(money.Monthly), false
	}
	return rec.MonthlyProfessionalTax(), true
}

// FallbackSource answers from a static FallbackTable.
type FallbackSource struct {
	Table FallbackTable
}

func (s FallbackSource) Name() string { return "fallback" }

func (s FallbackSource) ProfessionalTax(_ context.Context, city string, _ money.Amount) (money.Amount, bool) {
	return s.Table.Rate(city)
}

// DefaultSource always answers with the same amount.
type DefaultSource struct {
	Amount money.Amount
}

func (s DefaultSource) Name() string { return "default" }

func (s DefaultSource) ProfessionalTax(context.Context, string, money.Amount) (money.Amount, bool) {
	return s.Amount.ToMonthly(), true
}

// =============================================================================
// RESOLVER
// =============================================================================

// Resolution is the resolved monthly professional tax and the tier that supplied it.
type Resolution struct {
	Amount money.Amount
	Source string
}

// ProfessionalTaxResolver walks its sources in order.
type ProfessionalTaxResolver struct {
	sources []TaxSource
}

func NewProfessionalTaxResolver(sources ...TaxSource) *ProfessionalTaxResolver {
	return &ProfessionalTaxResolver{sources: append([]TaxSource(nil), sources...)}
}

// NewStandardResolver builds store → static table → default.
func NewStandardResolver(table CityTaxTable, fallback FallbackTable, logger *zap.Logger) *ProfessionalTaxResolver {
	return NewProfessionalTaxResolver(
		StoreSource{Table: table, Logger: logger},
		FallbackSource{Table: fallback},
		DefaultSource{Amount: DefaultProfessionalTax},
	)
}

// Resolve returns the first answer in the chain, or DefaultProfessionalTax if
// no source answers.
func (r *ProfessionalTaxResolver) Resolve(ctx context.Context, city string, grossMonthly money.Amount) Resolution {
	for _, src := range r.sources {
		if amount, ok := src.ProfessionalTax(ctx, city, grossMonthly); ok {
			return Resolution{Amount: amount, Source: src.Name()}
		}
	}
	return Resolution{Amount: DefaultProfessionalTax, Source: "default"}
}
