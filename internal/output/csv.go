package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/finsim/retirement-simulator/internal/domain"
)

// CSVFormatter exports the year-indexed percentile bands followed by
// the representative path, one row per simulated year.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string      { return "csv" }
func (c CSVFormatter) Extension() string { return "csv" }

func (c CSVFormatter) Format(res *domain.SimulationResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{"Year", "P5", "P25", "P50", "P75", "P95"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	bands := res.PercentilePaths
	for year := range bands.P50 {
		row := []string{
			strconv.Itoa(year),
			bands.P5[year].String(),
			bands.P25[year].String(),
			bands.P50[year].String(),
			bands.P75[year].String(),
			bands.P95[year].String(),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	if len(res.RepresentativePath) > 0 {
		if err := w.Write([]string{}); err != nil {
			return nil, err
		}
		header = []string{
			"Age", "PortfolioStart", "EmploymentIncome", "SocialSecurity",
			"Pension", "Dividends", "Annuity", "TotalIncome", "Withdrawal",
			"FederalTax", "StateTax", "TotalTax", "IRMAA", "NetIncome", "PortfolioEnd",
		}
		if err := w.Write(header); err != nil {
			return nil, err
		}
		for _, y := range res.RepresentativePath {
			row := []string{
				strconv.Itoa(y.Age),
				y.PortfolioStart.String(),
				y.EmploymentIncome.String(),
				y.SocialSecurityIncome.String(),
				y.PensionIncome.String(),
				y.DividendIncome.String(),
				y.AnnuityIncome.String(),
				y.TotalIncome.String(),
				y.Withdrawal.String(),
				y.FederalTax.String(),
				y.StateTax.String(),
				y.TotalTax.String(),
				y.IRMAA.String(),
				y.NetIncome.String(),
				y.PortfolioEnd.String(),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
