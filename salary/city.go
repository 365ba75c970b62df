/*
city.go - City tax data: the engine's only external collaborator

PURPOSE:
  Professional tax is levied per state and looked up by city. Records are
  owned by an external store (SQLite, Redis-cached, or in-memory) and are
  read-only to the engine: one lookup per calculation.

LOOKUP CONTRACT:
  LookupCity returns:
    (record, nil)  - the city has a stored rate
    (nil, nil)     - no record for the city
    (nil, err)     - the store failed
  The engine treats the last two identically (fall back to the static table).
  City names match exactly and case-sensitively.

STATIC DATA:
  FallbackTable is an immutable city → monthly rate map, injected into the
  resolver. StandardFallbackTable() returns the built-in Indian table.

IMPLEMENTATIONS:
  - salary/store/memory.go:  in-memory (tests, CLI)
  - store/sqlite/sqlite.go:  SQLite
  - store/cache/citytax.go:  Redis read-through decorator

SEE ALSO:
  - professional_tax.go: the resolver chain that consumes these
  - hra.go: uses IsMetroCity
*/
package salary

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/salary-engine/money"
)

//go:generate mockgen -source=city.go -destination=mock/city_tax_table_mock.go -package=mock

// CityTaxTable looks up stored professional-tax records by city.
type CityTaxTable interface {
	// LookupCity returns (nil, nil) when the city has no record.
	LookupCity(ctx context.Context, city string) (*CityTaxRecord, error)
}

// CityTaxRecord is a stored professional-tax rate for one city.
type CityTaxRecord struct {
	City            string
	State           string
	ProfessionalTax money.Amount // monthly
	UpdatedAt       time.Time
}

// MonthlyProfessionalTax returns the rate as a monthly amount. Annual rates are
// divided by 12; a rate with no period is taken as monthly.
func (r CityTaxRecord) MonthlyProfessionalTax() money.Amount {
	if r.ProfessionalTax.Period == money.Annual {
		return r.ProfessionalTax.ToMonthly()
	}
	return money.New(r.ProfessionalTax.Value, money.Monthly)
}

// IsMetro is derived from the city name, never stored.
func (r CityTaxRecord) IsMetro() bool {
	return IsMetroCity(r.City)
}

// =============================================================================
// METRO CITIES
// =============================================================================

var metroCities = map[string]struct{}{
	"Mumbai":  {},
	"Delhi":   {},
	"Kolkata": {},
	"Chennai": {},
}

// IsMetroCity reports whether city is one of Mumbai, Delhi, Kolkata or Chennai.
// Matching is exact and case-sensitive.
func IsMetroCity(city string) bool {
	_, ok := metroCities[city]
	return ok
}

// =============================================================================
// STATIC FALLBACK TABLE
// =============================================================================

// FallbackTable is an immutable city → monthly professional tax map.
type FallbackTable struct {
	rates map[string]decimal.Decimal
}

// NewFallbackTable copies rates; later changes to the map do not affect the table.
func NewFallbackTable(rates map[string]decimal.Decimal) FallbackTable {
	cp := make(map[string]decimal.Decimal, len(rates))
	for city, rate := range rates {
		cp[city] = rate
	}
	return FallbackTable{rates: cp}
}

// StandardFallbackTable returns the built-in rates: ₹200 for every listed city
// except Delhi (₹0) and Kolkata (₹110).
func StandardFallbackTable() FallbackTable {
	rates := make(map[string]decimal.Decimal, len(standardCities))
	for _, city := range standardCities {
		rates[city] = decimal.NewFromInt(200)
	}
	rates["Delhi"] = decimal.Zero
	rates["Kolkata"] = decimal.NewFromInt(110)
	return FallbackTable{rates: rates}
}

var standardCities = []string{
	"Mumbai", "Pune", "Delhi", "Bangalore", "Hyderabad", "Chennai",
	"Kolkata", "Ahmedabad", "Jaipur", "Surat", "Lucknow", "Kanpur",
	"Nagpur", "Indore", "Thane", "Bhopal", "Visakhapatnam", "Patna",
	"Vadodara", "Ghaziabad", "Ludhiana", "Agra", "Nashik", "Faridabad",
}

// Rate returns the monthly rate for city, if listed.
func (t FallbackTable) Rate(city string) (money.Amount, bool) {
	rate, ok := t.rates[city]
	if !ok {
		return money.Zero(money.Monthly), false
	}
	return money.New(rate, money.Monthly), true
}

// Cities returns the listed cities in alphabetical order.
func (t FallbackTable) Cities() []string {
	cities := make([]string, 0, len(t.rates))
	for city := range t.rates {
		cities = append(cities, city)
	}
	sort.Strings(cities)
	return cities
}

func (t FallbackTable) Len() int { return len(t.rates) }
