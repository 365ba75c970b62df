package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/salary-engine/money"
	"github.com/warp/salary-engine/salary"
	"github.com/warp/salary-engine/store/sqlite"
)

func runCLI(t *testing.T, args ...string) (int, output, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)

	var out output
	if code == 0 {
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &out), stdout.String())
	}
	return code, out, stderr.String()
}

func TestRun_Delhi(t *testing.T) {
	code, out, _ := runCLI(t, "-ctc", "1000000", "-city", "Delhi")
	require.Equal(t, 0, code)

	assert.Equal(t, "1000000.00", out.CTC)
	assert.Equal(t, "41666.67", out.BasicSalary)
	assert.Equal(t, "1800.00", out.PF)
	assert.Equal(t, "0.00", out.ESI)
	assert.Equal(t, "0.00", out.ProfessionalTax)
	assert.Equal(t, "1576.67", out.IncomeTax)
	assert.Equal(t, "79956.67", out.InHandSalary)
	assert.Equal(t, "40520.00", out.AnnualDeductions)
}

func TestRun_VariableAndInsurance(t *testing.T) {
	code, out, _ := runCLI(t, "-ctc", "1200000", "-city", "Chennai", "-variable", "100000", "-insurance", "20000")
	require.Equal(t, 0, code)
	assert.Equal(t, "1080000.00", out.FixedCTC)
	assert.Equal(t, "45000.00", out.BasicSalary)
}

func TestRun_Errors(t *testing.T) {
	code, _, stderr := runCLI(t, "-ctc", "0", "-city", "Pune")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "invalid ctc")

	code, _, _ = runCLI(t, "-ctc", "100000", "-city", "Pune", "-variable", "200000")
	assert.Equal(t, 1, code)

	code, _, stderr = runCLI(t, "-city", "Pune")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "required")

	code, _, stderr = runCLI(t, "-ctc", "ten lakh", "-city", "Pune")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "not a number")
}

func TestRun_ReadsCityTableFromDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "salary.db")
	store, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveCityTax(context.Background(), salary.CityTaxRecord{
		City:            "Pune",
		ProfessionalTax: money.NewFromInt(175, money.Monthly),
	}))
	require.NoError(t, store.Close())

	code, out, _ := runCLI(t, "-ctc", "900000", "-city", "Pune", "-db", path)
	require.Equal(t, 0, code)
	assert.Equal(t, "175.00", out.ProfessionalTax)
}
