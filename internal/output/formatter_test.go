package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/finsim/retirement-simulator/internal/domain"
	"github.com/finsim/retirement-simulator/pkg/decimal"
)

func money(v int64) decimal.Money { return decimal.NewMoneyFromInt(v) }

func intp(v int) *int { return &v }

func buildTestResult() *domain.SimulationResult {
	band := func(vals ...int64) []decimal.Money {
		out := make([]decimal.Money, len(vals))
		for i, v := range vals {
			out[i] = money(v)
		}
		return out
	}
	year := func(age int, start, end int64) domain.YearBreakdown {
		return domain.YearBreakdown{
			Age:                  age,
			PortfolioStart:       money(start),
			PortfolioEnd:         money(end),
			EmploymentIncome:     money(0),
			SocialSecurityIncome: money(24000),
			PensionIncome:        money(0),
			DividendIncome:       money(8000),
			AnnuityIncome:        money(0),
			TotalIncome:          money(32000),
			Withdrawal:           money(40000),
			FederalTax:           money(6000),
			StateTax:             money(1500),
			TotalTax:             money(7500),
			IRMAA:                money(0),
			NetIncome:            money(64500),
		}
	}
	return &domain.SimulationResult{
		RunID:        "run-test-1",
		NSimulations: 200,
		Years:        3,
		Seed:         42,
		SuccessRate:  0.92,
		FinalValues: domain.Percentiles{
			P5:  money(120000),
			P25: money(300000),
			P50: money(500000),
			P75: money(800000),
			P95: money(1500000),
		},
		PercentilePaths: domain.PercentileBands{
			P5:  band(500000, 430000, 360000, 120000),
			P25: band(500000, 460000, 420000, 300000),
			P50: band(500000, 490000, 495000, 500000),
			P75: band(500000, 520000, 580000, 800000),
			P95: band(500000, 560000, 700000, 1500000),
		},
		MedianFinalValue:      money(500000),
		MeanFinalValue:        money(610000),
		ProbDepletion10Yr:     0.03,
		InitialWithdrawalRate: 8.0,
		MedianTotalWithdrawn:  money(120000),
		MedianTotalTaxes:      money(22500),
		RepresentativePath: []domain.YearBreakdown{
			year(65, 500000, 490000),
			year(66, 490000, 495000),
		},
	}
}

func TestFormatterRegistry(t *testing.T) {
	for _, name := range []string{"console", "json", "csv", "xlsx"} {
		f := GetFormatterByName(name)
		if f == nil {
			t.Fatalf("formatter %q not registered", name)
		}
		if f.Name() != name {
			t.Fatalf("formatter %q reports name %q", name, f.Name())
		}
	}
	if f := GetFormatterByName("EXCEL"); f == nil || f.Name() != "xlsx" {
		t.Fatalf("alias excel did not resolve to xlsx, got %v", f)
	}
	if f := GetFormatterByName("table"); f == nil || f.Name() != "console" {
		t.Fatalf("alias table did not resolve to console, got %v", f)
	}
	if f := GetFormatterByName("does-not-exist"); f != nil {
		t.Fatalf("unknown format should return nil, got %q", f.Name())
	}
	names := AvailableFormatterNames()
	if len(names) != 4 {
		t.Fatalf("expected 4 formatter names, got %v", names)
	}
	for _, alias := range AvailableFormatAliases() {
		if GetFormatterByName(alias) == nil {
			t.Fatalf("alias %q does not resolve to a formatter", alias)
		}
	}
}

func TestFormatterFuncAdapter(t *testing.T) {
	ff := FormatterFunc{
		ID:  "stub",
		Ext: "dat",
		F: func(res *domain.SimulationResult) ([]byte, error) {
			return []byte(res.RunID), nil
		},
	}
	var f Formatter = ff
	if f.Name() != "stub" || f.Extension() != "dat" {
		t.Fatalf("adapter identity = %s.%s", f.Name(), f.Extension())
	}
	out, err := f.Format(buildTestResult())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "run-test-1" {
		t.Fatalf("adapter output = %q", out)
	}
}

func TestConsoleFormatter(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(buildTestResult())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content := string(out)
	for _, want := range []string{
		"MONTE CARLO RETIREMENT SIMULATION",
		"run-test-1 (seed 42)",
		"200 over 3 years",
		"Success rate:        92.0%",
		"$1,500,000.00",
		"Representative path",
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("console output missing %q:\n%s", want, content)
		}
	}
	if strings.Contains(content, "Median depletion age") {
		t.Fatalf("depletion age line should be absent when age is nil:\n%s", content)
	}
}

func TestConsoleFormatterDepletionAge(t *testing.T) {
	res := buildTestResult()
	res.MedianDepletionAge = intp(78)
	out, err := ConsoleFormatter{}.Format(res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(out), "Median depletion age: 78") {
		t.Fatalf("expected depletion age line:\n%s", out)
	}
}

func TestJSONFormatterRoundTrip(t *testing.T) {
	out, err := JSONFormatter{}.Format(buildTestResult())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["run_id"] != "run-test-1" {
		t.Fatalf("run_id = %v", decoded["run_id"])
	}
	if decoded["success_rate"] != 0.92 {
		t.Fatalf("success_rate = %v", decoded["success_rate"])
	}
}

func TestCSVFormatterStructure(t *testing.T) {
	res := buildTestResult()
	out, err := CSVFormatter{}.Format(res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := csv.NewReader(bytes.NewReader(out))
	r.FieldsPerRecord = -1 // band and path sections have different widths
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	// band header + 4 band rows + path header + 2 path rows
	if len(records) != 8 {
		t.Fatalf("expected 8 records, got %d: %v", len(records), records)
	}
	if records[0][0] != "Year" || records[0][3] != "P50" {
		t.Fatalf("unexpected band header: %v", records[0])
	}
	if records[1][0] != "0" || records[1][1] != "500000.00" {
		t.Fatalf("unexpected first band row: %v", records[1])
	}
	if len(records[5]) != 15 || records[5][0] != "Age" {
		t.Fatalf("unexpected path header: %v", records[5])
	}
	if records[6][0] != "65" || records[6][14] != "490000.00" {
		t.Fatalf("unexpected first path row: %v", records[6])
	}
}

func TestXLSXFormatterRoundTrip(t *testing.T) {
	out, err := XLSXFormatter{}.Format(buildTestResult())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not a readable workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	for _, want := range []string{"Summary", "Percentile Paths", "Representative Path"} {
		found := false
		for _, s := range sheets {
			if s == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("missing sheet %q in %v", want, sheets)
		}
	}

	runID, err := f.GetCellValue("Summary", "B3")
	if err != nil {
		t.Fatalf("read summary cell: %v", err)
	}
	if runID != "run-test-1" {
		t.Fatalf("summary run id = %q", runID)
	}

	rows, err := f.GetRows("Percentile Paths")
	if err != nil {
		t.Fatalf("read band rows: %v", err)
	}
	if len(rows) != 5 { // header + 4 years
		t.Fatalf("expected 5 band rows, got %d", len(rows))
	}
	pathRows, err := f.GetRows("Representative Path")
	if err != nil {
		t.Fatalf("read path rows: %v", err)
	}
	if len(pathRows) != 3 { // header + 2 years
		t.Fatalf("expected 3 path rows, got %d", len(pathRows))
	}
}

func TestWriteFormatted(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer os.Chdir(wd)

	name, err := WriteFormatted(ConsoleFormatter{}, buildTestResult())
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !strings.HasPrefix(name, "simulation_report_") || !strings.HasSuffix(name, ".txt") {
		t.Fatalf("unexpected file name %q", name)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(data), "MONTE CARLO RETIREMENT SIMULATION") {
		t.Fatalf("written file missing header")
	}
}

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		in   decimal.Money
		want string
	}{
		{money(0), "$0.00"},
		{money(999), "$999.00"},
		{money(1000), "$1,000.00"},
		{money(1234567), "$1,234,567.00"},
		{decimal.NewMoney(1234567.891), "$1,234,567.89"},
		{decimal.NewMoney(-50.5), "-$50.50"},
	}
	for _, tc := range cases {
		if got := FormatCurrency(tc.in); got != tc.want {
			t.Errorf("FormatCurrency(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(0.9561); got != "95.6%" {
		t.Errorf("FormatPercent(0.9561) = %q", got)
	}
	if got := FormatPercent(0); got != "0.0%" {
		t.Errorf("FormatPercent(0) = %q", got)
	}
	if got := FormatPercent(1); got != "100.0%" {
		t.Errorf("FormatPercent(1) = %q", got)
	}
}
