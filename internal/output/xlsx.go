package output

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/finsim/retirement-simulator/internal/domain"
)

// XLSXFormatter renders a workbook with a summary sheet, the per-year
// percentile bands, and the representative path.
type XLSXFormatter struct{}

func (x XLSXFormatter) Name() string      { return "xlsx" }
func (x XLSXFormatter) Extension() string { return "xlsx" }

func (x XLSXFormatter) Format(res *domain.SimulationResult) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "Summary"
	bandsSheet := "Percentile Paths"
	pathSheet := "Representative Path"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(bandsSheet)
	f.NewSheet(pathSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Monte Carlo Retirement Simulation")
	_ = f.SetCellValue(summarySheet, "A3", "Run ID")
	_ = f.SetCellValue(summarySheet, "B3", res.RunID)
	_ = f.SetCellValue(summarySheet, "A4", "Seed")
	_ = f.SetCellValue(summarySheet, "B4", res.Seed)
	_ = f.SetCellValue(summarySheet, "A5", "Paths")
	_ = f.SetCellValue(summarySheet, "B5", res.NSimulations)
	_ = f.SetCellValue(summarySheet, "A6", "Years")
	_ = f.SetCellValue(summarySheet, "B6", res.Years)
	_ = f.SetCellValue(summarySheet, "A7", "Success Rate")
	_ = f.SetCellValue(summarySheet, "B7", res.SuccessRate)
	_ = f.SetCellValue(summarySheet, "A8", "Initial Withdrawal Rate (%)")
	_ = f.SetCellValue(summarySheet, "B8", res.InitialWithdrawalRate)
	_ = f.SetCellValue(summarySheet, "A9", "P(Depleted in 10y)")
	_ = f.SetCellValue(summarySheet, "B9", res.ProbDepletion10Yr)
	if res.MedianDepletionAge != nil {
		_ = f.SetCellValue(summarySheet, "A10", "Median Depletion Age")
		_ = f.SetCellValue(summarySheet, "B10", *res.MedianDepletionAge)
	}
	_ = f.SetCellValue(summarySheet, "A12", "Final Value P5")
	_ = f.SetCellValue(summarySheet, "B12", res.FinalValues.P5.Float64())
	_ = f.SetCellValue(summarySheet, "A13", "Final Value P25")
	_ = f.SetCellValue(summarySheet, "B13", res.FinalValues.P25.Float64())
	_ = f.SetCellValue(summarySheet, "A14", "Final Value P50")
	_ = f.SetCellValue(summarySheet, "B14", res.FinalValues.P50.Float64())
	_ = f.SetCellValue(summarySheet, "A15", "Final Value P75")
	_ = f.SetCellValue(summarySheet, "B15", res.FinalValues.P75.Float64())
	_ = f.SetCellValue(summarySheet, "A16", "Final Value P95")
	_ = f.SetCellValue(summarySheet, "B16", res.FinalValues.P95.Float64())
	_ = f.SetCellValue(summarySheet, "A17", "Final Value Mean")
	_ = f.SetCellValue(summarySheet, "B17", res.MeanFinalValue.Float64())
	_ = f.SetCellValue(summarySheet, "A19", "Median Total Withdrawn")
	_ = f.SetCellValue(summarySheet, "B19", res.MedianTotalWithdrawn.Float64())
	_ = f.SetCellValue(summarySheet, "A20", "Median Total Taxes")
	_ = f.SetCellValue(summarySheet, "B20", res.MedianTotalTaxes.Float64())

	_ = f.SetCellValue(bandsSheet, "A1", "Year")
	_ = f.SetCellValue(bandsSheet, "B1", "P5")
	_ = f.SetCellValue(bandsSheet, "C1", "P25")
	_ = f.SetCellValue(bandsSheet, "D1", "P50")
	_ = f.SetCellValue(bandsSheet, "E1", "P75")
	_ = f.SetCellValue(bandsSheet, "F1", "P95")
	bands := res.PercentilePaths
	for year := range bands.P50 {
		row := year + 2
		_ = f.SetCellValue(bandsSheet, fmt.Sprintf("A%d", row), year)
		_ = f.SetCellValue(bandsSheet, fmt.Sprintf("B%d", row), bands.P5[year].Float64())
		_ = f.SetCellValue(bandsSheet, fmt.Sprintf("C%d", row), bands.P25[year].Float64())
		_ = f.SetCellValue(bandsSheet, fmt.Sprintf("D%d", row), bands.P50[year].Float64())
		_ = f.SetCellValue(bandsSheet, fmt.Sprintf("E%d", row), bands.P75[year].Float64())
		_ = f.SetCellValue(bandsSheet, fmt.Sprintf("F%d", row), bands.P95[year].Float64())
	}

	headers := []string{"Age", "Portfolio Start", "Employment", "Social Security", "Pension",
		"Dividends", "Annuity", "Total Income", "Withdrawal", "Federal Tax", "State Tax",
		"Total Tax", "IRMAA", "Net Income", "Portfolio End"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(pathSheet, cell, h)
	}
	for i, y := range res.RepresentativePath {
		row := i + 2
		values := []any{
			y.Age, y.PortfolioStart.Float64(), y.EmploymentIncome.Float64(),
			y.SocialSecurityIncome.Float64(), y.PensionIncome.Float64(),
			y.DividendIncome.Float64(), y.AnnuityIncome.Float64(), y.TotalIncome.Float64(),
			y.Withdrawal.Float64(), y.FederalTax.Float64(), y.StateTax.Float64(),
			y.TotalTax.Float64(), y.IRMAA.Float64(), y.NetIncome.Float64(),
			y.PortfolioEnd.Float64(),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(pathSheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
