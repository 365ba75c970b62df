package salary

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/salary-engine/money"
)

// TaxSlab taxes income above Above at Rate, on top of Base.
type TaxSlab struct {
	Above decimal.Decimal
	Base  decimal.Decimal
	Rate  decimal.Decimal
}

// IncomeTaxSchedule is a progressive slab list ordered by Above.
type IncomeTaxSchedule []TaxSlab

// NewRegimeSchedule returns the annual slabs:
//
//	≤ 3,00,000               0
//	3,00,001 – 7,00,000      5%
//	7,00,001 – 10,00,000     20,000 + 10%
//	10,00,001 – 12,00,000    50,000 + 15%
//	12,00,001 – 15,00,000    80,000 + 20%
//	> 15,00,000              1,40,000 + 30%
func NewRegimeSchedule() IncomeTaxSchedule {
	slab := func(above, base int64, rate string) TaxSlab {
		return TaxSlab{
			Above: decimal.NewFromInt(above),
			Base:  decimal.NewFromInt(base),
			Rate:  decimal.RequireFromString(rate),
		}
	}
	return IncomeTaxSchedule{
		slab(300000, 0, "0.05"),
		slab(700000, 20000, "0.10"),
		slab(1000000, 50000, "0.15"),
		slab(1200000, 80000, "0.20"),
		slab(1500000, 140000, "0.30"),
	}
}

// Tax returns the annual tax on annual taxable income. Income at or below the
// first slab, or negative, is not taxed. Each slab's upper bound is inclusive.
func (s IncomeTaxSchedule) Tax(taxableAnnual money.Amount) money.Amount {
	income := taxableAnnual.ToAnnual()
	for i := len(s) - 1; i >= 0; i-- {
		slab := s[i]
		if income.Value.GreaterThan(slab.Above) {
			return money.New(slab.Base.Add(income.Value.Sub(slab.Above).Mul(slab.Rate)), money.Annual)
		}
	}
	return money.Zero(money.Annual)
}

// Validate checks that slabs ascend and that every slab's base equals the tax
// owed at its lower bound under the previous slab, so Tax is continuous.
func (s IncomeTaxSchedule) Validate() error {
	for i, slab := range s {
		if slab.Rate.IsNegative() || slab.Base.IsNegative() || slab.Above.IsNegative() {
			return fmt.Errorf("slab %d: negative value", i)
		}
		if i == 0 {
			if !slab.Base.IsZero() {
				return fmt.Errorf("slab 0: base must be zero, got %s", slab.Base)
			}
			continue
		}
		prev := s[i-1]
		if !slab.Above.GreaterThan(prev.Above) {
			return fmt.Errorf("slab %d: threshold %s not above %s", i, slab.Above, prev.Above)
		}
		atBoundary := prev.Base.Add(slab.Above.Sub(prev.Above).Mul(prev.Rate))
		if !atBoundary.Equal(slab.Base) {
			return fmt.Errorf("slab %d: base %s breaks continuity, expected %s", i, slab.Base, atBoundary)
		}
	}
	return nil
}
