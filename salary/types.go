/*
Package salary computes the Indian CTC-to-take-home salary breakdown.

PURPOSE:
  Turns an annual cost-to-company figure into a monthly in-hand salary by
  allocating it into components and applying the statutory deductions:
  EPF, ESI, professional tax and income tax (with HRA exemption).

PIPELINE (calculator.go):
  CalculationRequest
    → Allocate          (allocator.go)     Basic / HRA / Special
    → EmployeePF        (epf.go)           capped provident fund
    → EmployeeESI       (esi.go)           threshold-gated insurance
    → Resolve           (professional_tax.go) store → static table → default
    → ExemptHRA         (hra.go)           metro / non-metro rule
    → Schedule.Tax      (income_tax.go)    progressive slabs
    → SalaryBreakdown   (breakdown.go)     rounded to 2 places, once

DESIGN PRINCIPLES:
  1. Pure: every step is a function of its inputs; the only I/O is one city
     lookup per calculation, behind the CityTaxTable interface
  2. Precision: decimal arithmetic, rounding only on the final breakdown
  3. Named policy: rates, caps and thresholds are exported package values

SEE ALSO:
  - money/amount.go: Amount and Period
  - city.go: CityTaxTable, the only external collaborator
*/
package salary

import (
	"github.com/shopspring/decimal"
)

// CalculationRequest is the input to Calculator.Calculate. All amounts are annual.
type CalculationRequest struct {
	CTC         decimal.Decimal
	City        string
	VariablePay decimal.Decimal
	Insurance   decimal.Decimal
}
