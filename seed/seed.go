/*
Package seed provides JSON to Go conversion for the city tax table.

PURPOSE:
  Converts JSON city definitions into salary.CityTaxRecord values so the
  table the engine reads can be filled without code changes. The server
  seeds its database from either the built-in preset or a file.

JSON SCHEMA:
  [
    {"city": "Mumbai",  "state": "Maharashtra", "professionalTax": 200},
    {"city": "Kolkata", "state": "West Bengal", "professionalTax": "110"}
  ]

  professionalTax is monthly, in rupees. Both numbers and decimal strings
  are accepted.

KEY FEATURES:
  - Validates every entry (city required, no duplicates, rate >= 0)
  - Reports all invalid entries at once, not only the first
  - StandardRecords exposes the built-in FallbackTable as seed data

USAGE:
  records, err := seed.Load("standard")        // built-in preset
  records, err := seed.Load("./cities.json")   // from a file
  store.SaveCityTaxBatch(ctx, records)

SEE ALSO:
  - salary/city.go: FallbackTable presets
  - store/sqlite/sqlite.go: SaveCityTaxBatch
*/
package seed

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/warp/salary-engine/money"
	"github.com/warp/salary-engine/salary"
)

// StandardPreset names the built-in seed in Load.
const StandardPreset = "standard"

// ErrInvalidSeed is returned for seed documents that fail validation.
var ErrInvalidSeed = errors.New("invalid city seed")

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// CityJSON is the JSON representation of one city.
type CityJSON struct {
	City            string          `json:"city" validate:"required,max=100"`
	State           string          `json:"state,omitempty" validate:"max=100"`
	ProfessionalTax decimal.Decimal `json:"professionalTax"`
}

// SeedError lists every problem found in a seed document.
type SeedError struct {
	Problems []string
}

func (e *SeedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidSeed, strings.Join(e.Problems, "; "))
}

func (e *SeedError) Unwrap() error { return ErrInvalidSeed }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// =============================================================================
// PARSING
// =============================================================================

// Parse decodes and validates a JSON seed document.
func Parse(data []byte) ([]salary.CityTaxRecord, error) {
	var cities []CityJSON
	if err := json.Unmarshal(data, &cities); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	return FromJSON(cities)
}

// FromJSON validates decoded entries and converts them to records.
func FromJSON(cities []CityJSON) ([]salary.CityTaxRecord, error) {
	var problems []string
	seen := make(map[string]int, len(cities))
	records := make([]salary.CityTaxRecord, 0, len(cities))

	for i, c := range cities {
		c.City = strings.TrimSpace(c.City)
		if err := validate.Struct(c); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				for _, fe := range verrs {
					problems = append(problems, fmt.Sprintf("entry %d: %s failed %q", i, fe.Field(), fe.Tag()))
				}
				continue
			}
			return nil, err
		}
		if c.ProfessionalTax.IsNegative() {
			problems = append(problems, fmt.Sprintf("entry %d: professionalTax %s is negative", i, c.ProfessionalTax))
			continue
		}
		if prev, dup := seen[c.City]; dup {
			problems = append(problems, fmt.Sprintf("entry %d: %s duplicates entry %d", i, c.City, prev))
			continue
		}
		seen[c.City] = i

		records = append(records, salary.CityTaxRecord{
			City:            c.City,
			State:           strings.TrimSpace(c.State),
			ProfessionalTax: money.New(c.ProfessionalTax, money.Monthly),
		})
	}

	if len(problems) > 0 {
		return nil, &SeedError{Problems: problems}
	}
	return records, nil
}

// LoadFile reads and parses a seed file.
func LoadFile(path string) ([]salary.CityTaxRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Load resolves a seed source: "" means none, StandardPreset the built-in
// table, anything else a file path.
func Load(source string) ([]salary.CityTaxRecord, error) {
	switch source {
	case "":
		return nil, nil
	case StandardPreset:
		return StandardRecords(), nil
	default:
		return LoadFile(source)
	}
}

// ToJSON converts records to their JSON representation.
func ToJSON(records []salary.CityTaxRecord) []CityJSON {
	out := make([]CityJSON, len(records))
	for i, r := range records {
		out[i] = CityJSON{
			City:            r.City,
			State:           r.State,
			ProfessionalTax: r.MonthlyProfessionalTax().Value,
		}
	}
	return out
}

// =============================================================================
// PRESETS
// =============================================================================

// StandardRecords returns the built-in fallback table as seed records,
// ordered by city.
func StandardRecords() []salary.CityTaxRecord {
	return FromFallbackTable(salary.StandardFallbackTable())
}

// FromFallbackTable converts a FallbackTable to seed records.
func FromFallbackTable(table salary.FallbackTable) []salary.CityTaxRecord {
	cities := table.Cities()
	records := make([]salary.CityTaxRecord, 0, len(cities))
	for _, city := range cities {
		rate, _ := table.Rate(city)
		records = append(records, salary.CityTaxRecord{City: city, ProfessionalTax: rate})
	}
	return records
}
