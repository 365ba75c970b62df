/*
salarycalc - One-shot CTC to take-home calculator

PURPOSE:
  Prints the rounded salary breakdown for one CTC as JSON. Uses the built-in
  city table unless -db points at a SQLite database with city records.

USAGE:
  salarycalc -ctc 1000000 -city Delhi
  salarycalc -ctc 1200000 -city Chennai -variable 100000 -insurance 20000
  salarycalc -ctc 900000 -city Pune -db ./salary.db

EXIT CODES:
  0  success
  1  invalid salary input (e.g. ctc <= 0)
  2  usage or setup error
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/warp/salary-engine/salary"
	"github.com/warp/salary-engine/store/sqlite"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// output is the printed document. Amounts are strings with two decimal places.
type output struct {
	CTC               string `json:"ctc"`
	FixedCTC          string `json:"fixedCtc"`
	VariablePay       string `json:"variablePay"`
	Insurance         string `json:"insurance"`
	BasicSalary       string `json:"basicSalary"`
	HRA               string `json:"hra"`
	SpecialAllowance  string `json:"specialAllowance"`
	GrossSalary       string `json:"grossSalary"`
	PF                string `json:"pf"`
	ESI               string `json:"esi"`
	ProfessionalTax   string `json:"professionalTax"`
	IncomeTax         string `json:"incomeTax"`
	InHandSalary      string `json:"inHandSalary"`
	MonthlyDeductions string `json:"monthlyDeductions"`
	AnnualDeductions  string `json:"annualDeductions"`
	HRAExemption      string `json:"hraExemption"`
	TaxableIncome     string `json:"taxableIncome"`
}

func newOutput(b salary.SalaryBreakdown) output {
	f := func(d decimal.Decimal) string { return d.StringFixed(salary.RoundingPlaces) }
	return output{
		CTC:               f(b.CTC.Value),
		FixedCTC:          f(b.FixedCTC.Value),
		VariablePay:       f(b.VariablePay.Value),
		Insurance:         f(b.Insurance.Value),
		BasicSalary:       f(b.BasicSalary.Value),
		HRA:               f(b.HRA.Value),
		SpecialAllowance:  f(b.SpecialAllowance.Value),
		GrossSalary:       f(b.GrossSalary.Value),
		PF:                f(b.PF.Value),
		ESI:               f(b.ESI.Value),
		ProfessionalTax:   f(b.ProfessionalTax.Value),
		IncomeTax:         f(b.IncomeTax.Value),
		InHandSalary:      f(b.InHandSalary.Value),
		MonthlyDeductions: f(b.MonthlyDeductions.Value),
		AnnualDeductions:  f(b.AnnualDeductions.Value),
		HRAExemption:      f(b.HRAExemption.Value),
		TaxableIncome:     f(b.TaxableIncome.Value),
	}
}

func run(args []string, stdout, stderr io.Writer) int {
	fset := flag.NewFlagSet("salarycalc", flag.ContinueOnError)
	fset.SetOutput(stderr)
	ctc := fset.String("ctc", "", "Annual cost to company in rupees (required)")
	city := fset.String("city", "", "City of employment (required)")
	variable := fset.String("variable", "0", "Annual variable pay included in the CTC")
	insurance := fset.String("insurance", "0", "Annual insurance included in the CTC")
	dbPath := fset.String("db", "", "Optional SQLite database with city tax records")
	if err := fset.Parse(args); err != nil {
		return 2
	}

	if *ctc == "" || *city == "" {
		fmt.Fprintln(stderr, "salarycalc: -ctc and -city are required")
		fset.Usage()
		return 2
	}

	req := salary.CalculationRequest{City: *city}
	for _, f := range []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"ctc", *ctc, &req.CTC},
		{"variable", *variable, &req.VariablePay},
		{"insurance", *insurance, &req.Insurance},
	} {
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			fmt.Fprintf(stderr, "salarycalc: -%s: not a number: %q\n", f.name, f.raw)
			return 2
		}
		*f.dst = d
	}

	var table salary.CityTaxTable
	if *dbPath != "" {
		store, err := sqlite.New(*dbPath)
		if err != nil {
			fmt.Fprintf(stderr, "salarycalc: %v\n", err)
			return 2
		}
		defer store.Close()
		table = store
	}

	breakdown, err := salary.NewCalculator(table).Calculate(context.Background(), req)
	if err != nil {
		fmt.Fprintf(stderr, "salarycalc: %v\n", err)
		if errors.Is(err, salary.ErrInvalidInput) {
			return 1
		}
		return 2
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(newOutput(breakdown)); err != nil {
		fmt.Fprintf(stderr, "salarycalc: %v\n", err)
		return 2
	}
	return 0
}
