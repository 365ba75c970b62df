package salary

import (
	"github.com/shopspring/decimal"

	"github.com/warp/salary-engine/money"
)

var (
	// EPFRate is the employee provident-fund contribution rate.
	EPFRate = decimal.RequireFromString("0.12")

	// EPFWageCeiling caps the monthly basic salary that EPF is charged on.
	EPFWageCeiling = money.NewFromInt(15000, money.Monthly)
)

// EmployeePF returns the monthly employee EPF contribution:
// EPFRate × min(basic, EPFWageCeiling). At most ₹1,800 per month.
func EmployeePF(basicMonthly money.Amount) money.Amount {
	return basicMonthly.ToMonthly().ClampZero().Min(EPFWageCeiling).Mul(EPFRate)
}
