/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's money.Amount values from the external API contract, which
  speaks plain JSON numbers in rupees with camelCase field names.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Wrappers

TYPES:
  Calculation:
    CalculateSalaryRequest, BreakdownDTO, CalculationDTO

  City tax:
    CityTaxRequest, CityTaxDTO, SeedResponse

  Statistics:
    StatisticsDTO, CityUsageDTO

MONEY:
  Request amounts decode straight into decimal.Decimal, so 1000000.10 is
  never seen as a float. Response amounts are the rounded breakdown values
  converted to float64 for JSON.

VALIDATION:
  Struct tags are checked with go-playground/validator before a request
  reaches the engine. Monetary rules (ctc > 0, fixed CTC >= 0) stay in the
  salary package so the CLI and the API reject the same inputs.

SEE ALSO:
  - handlers.go: Uses these types
  - salary/breakdown.go: SalaryBreakdown
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/salary-engine/salary"
	"github.com/warp/salary-engine/seed"
	"github.com/warp/salary-engine/store/sqlite"
)

// =============================================================================
// CALCULATION
// =============================================================================

// CalculateSalaryRequest is the body of POST /api/salary/calculate.
type CalculateSalaryRequest struct {
	CTC         decimal.Decimal `json:"ctc"`
	City        string          `json:"city" validate:"required,max=100"`
	VariablePay decimal.Decimal `json:"variablePay"`
	Insurance   decimal.Decimal `json:"insurance"`
	UserID      string          `json:"userId,omitempty" validate:"max=100"`
}

func (r CalculateSalaryRequest) toDomain() salary.CalculationRequest {
	return salary.CalculationRequest{
		CTC:         r.CTC,
		City:        r.City,
		VariablePay: r.VariablePay,
		Insurance:   r.Insurance,
	}
}

// BreakdownDTO is a rounded SalaryBreakdown. Monthly figures except ctc,
// fixedCtc, variablePay, insurance, annualDeductions, hraExemption and
// taxableIncome.
type BreakdownDTO struct {
	CTC               float64 `json:"ctc"`
	FixedCTC          float64 `json:"fixedCtc"`
	VariablePay       float64 `json:"variablePay"`
	Insurance         float64 `json:"insurance"`
	BasicSalary       float64 `json:"basicSalary"`
	HRA               float64 `json:"hra"`
	SpecialAllowance  float64 `json:"specialAllowance"`
	GrossSalary       float64 `json:"grossSalary"`
	PF                float64 `json:"pf"`
	ESI               float64 `json:"esi"`
	ProfessionalTax   float64 `json:"professionalTax"`
	IncomeTax         float64 `json:"incomeTax"`
	InHandSalary      float64 `json:"inHandSalary"`
	MonthlyDeductions float64 `json:"monthlyDeductions"`
	AnnualDeductions  float64 `json:"annualDeductions"`
	HRAExemption      float64 `json:"hraExemption"`
	TaxableIncome     float64 `json:"taxableIncome"`
}

func toBreakdownDTO(b salary.SalaryBreakdown) BreakdownDTO {
	b = b.Rounded(salary.RoundingPlaces)
	return BreakdownDTO{
		CTC:               b.CTC.InexactFloat64(),
		FixedCTC:          b.FixedCTC.InexactFloat64(),
		VariablePay:       b.VariablePay.InexactFloat64(),
		Insurance:         b.Insurance.InexactFloat64(),
		BasicSalary:       b.BasicSalary.InexactFloat64(),
		HRA:               b.HRA.InexactFloat64(),
		SpecialAllowance:  b.SpecialAllowance.InexactFloat64(),
		GrossSalary:       b.GrossSalary.InexactFloat64(),
		PF:                b.PF.InexactFloat64(),
		ESI:               b.ESI.InexactFloat64(),
		ProfessionalTax:   b.ProfessionalTax.InexactFloat64(),
		IncomeTax:         b.IncomeTax.InexactFloat64(),
		InHandSalary:      b.InHandSalary.InexactFloat64(),
		MonthlyDeductions: b.MonthlyDeductions.InexactFloat64(),
		AnnualDeductions:  b.AnnualDeductions.InexactFloat64(),
		HRAExemption:      b.HRAExemption.InexactFloat64(),
		TaxableIncome:     b.TaxableIncome.InexactFloat64(),
	}
}

// CalculationDTO is one stored calculation.
type CalculationDTO struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId,omitempty"`
	City      string       `json:"city"`
	CreatedAt string       `json:"createdAt"`
	Breakdown BreakdownDTO `json:"breakdown"`
}

func toCalculationDTO(rec sqlite.CalculationRecord) CalculationDTO {
	return CalculationDTO{
		ID:        rec.ID,
		UserID:    rec.UserID,
		City:      rec.Request.City,
		CreatedAt: rec.CreatedAt.UTC().Format(time.RFC3339),
		Breakdown: toBreakdownDTO(rec.Breakdown),
	}
}

// =============================================================================
// CITY TAX
// =============================================================================

// CityTaxRequest is the body of POST /api/cities and PUT /api/cities/{city}.
// POST requires professionalTax. PUT changes only the fields present; City may
// be omitted there and the URL wins.
type CityTaxRequest struct {
	City            string              `json:"city"`
	State           *string             `json:"state"`
	ProfessionalTax decimal.NullDecimal `json:"professionalTax"`
}

// apply overwrites the fields of rec that the request carries.
func (req CityTaxRequest) apply(rec salary.CityTaxRecord) seed.CityJSON {
	out := seed.CityJSON{
		City:            rec.City,
		State:           rec.State,
		ProfessionalTax: rec.MonthlyProfessionalTax().Value,
	}
	if req.State != nil {
		out.State = *req.State
	}
	if req.ProfessionalTax.Valid {
		out.ProfessionalTax = req.ProfessionalTax.Decimal
	}
	return out
}

// CityTaxDTO represents a city record in API responses.
type CityTaxDTO struct {
	City            string  `json:"city"`
	State           string  `json:"state"`
	ProfessionalTax float64 `json:"professionalTax"`
	IsMetro         bool    `json:"isMetro"`
	UpdatedAt       string  `json:"updatedAt,omitempty"`
}

func toCityTaxDTO(rec salary.CityTaxRecord) CityTaxDTO {
	dto := CityTaxDTO{
		City:            rec.City,
		State:           rec.State,
		ProfessionalTax: rec.MonthlyProfessionalTax().Round(salary.RoundingPlaces).InexactFloat64(),
		IsMetro:         rec.IsMetro(),
	}
	if !rec.UpdatedAt.IsZero() {
		dto.UpdatedAt = rec.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

// SeedResponse reports how many cities a seed wrote.
type SeedResponse struct {
	Seeded int `json:"seeded"`
}

// DeleteResponse reports whether a record was removed.
type DeleteResponse struct {
	Success bool `json:"success"`
}

// =============================================================================
// STATISTICS
// =============================================================================

// StatisticsDTO summarises stored calculations.
type StatisticsDTO struct {
	TotalCalculations int            `json:"totalCalculations"`
	Cities            []CityUsageDTO `json:"cities"`
}

// CityUsageDTO counts calculations for one city.
type CityUsageDTO struct {
	City         string `json:"city"`
	Calculations int    `json:"calculations"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
