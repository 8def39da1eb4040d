package calculation

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/finsim/retirement-simulator/internal/domain"
)

// assetSeries holds one asset class's aligned annual records: a growth
// component (capital gains, taxed as such) and an income component
// (dividends or coupon interest, taxed as income), ordered oldest to
// newest. All values are nominal.
type assetSeries struct {
	years    []int
	price    []float64
	dividend []float64
}

func (s *assetSeries) len() int { return len(s.price) }

// tail returns a view of the most recent n records.
func (s *assetSeries) tail(n int) *assetSeries {
	if n >= s.len() {
		return s
	}
	off := s.len() - n
	return &assetSeries{
		years:    s.years[off:],
		price:    s.price[off:],
		dividend: s.dividend[off:],
	}
}

// totals returns price plus income per year.
func (s *assetSeries) totals() []float64 {
	out := make([]float64, s.len())
	for i := range out {
		out[i] = s.price[i] + s.dividend[i]
	}
	return out
}

// newAssetSeries builds an ordered series from year-keyed growth and
// income tables. The tables are compiled-in constants, so a year
// present in one table but missing from the other is a programming
// error.
func newAssetSeries(price, dividend map[int]float64) *assetSeries {
	years := make([]int, 0, len(price))
	for y := range price {
		years = append(years, y)
	}
	sort.Ints(years)
	s := &assetSeries{
		years:    years,
		price:    make([]float64, len(years)),
		dividend: make([]float64, len(years)),
	}
	for i, y := range years {
		d, ok := dividend[y]
		if !ok {
			panic(fmt.Sprintf("return series missing income entry for year %d", y))
		}
		s.price[i] = price[y]
		s.dividend[i] = d
	}
	return s
}

// newAssetSeriesFromTotals derives the growth component as total
// return minus income, matching how the VT and BND series are
// published.
func newAssetSeriesFromTotals(total, dividend map[int]float64) *assetSeries {
	s := newAssetSeries(total, dividend)
	for i := range s.price {
		s.price[i] -= s.dividend[i]
	}
	return s
}

var (
	// S&P 500 1928-2024, price and dividend components (slickcharts.com).
	sp500Series = newAssetSeries(sp500PriceReturns, sp500DividendYields)

	// 10-year Treasury 1928-2024 (NYU Stern Damodaran dataset). The
	// published figure is a total return; the prevailing coupon yield is
	// carried separately as the income component so bond income lands in
	// the ordinary-income column of the tax model.
	treasurySeries = newAssetSeries(treasuryReturns, treasuryYields)

	// Vanguard Total World Stock 2008-2024 (lazyportfolioetf.com totals,
	// Vanguard dividend yields).
	vtSeries = newAssetSeriesFromTotals(vtTotalReturns, vtDividendYields)

	// Vanguard Total Bond Market 2008-2024 (Yahoo Finance totals,
	// Vanguard dividend yields).
	bndSeries = newAssetSeriesFromTotals(bndTotalReturns, bndDividendYields)
)

func seriesForIndex(idx domain.FundIndex) *assetSeries {
	switch idx {
	case domain.IndexSP500:
		return sp500Series
	case domain.IndexVT:
		return vtSeries
	case domain.IndexTreasury:
		return treasurySeries
	case domain.IndexBND:
		return bndSeries
	default:
		panic(fmt.Sprintf("unknown fund index %q", idx))
	}
}

// alignSeries truncates the longer of a stock/bond pair to the most
// recent common era, so a shared year index always lands in both
// series. Mixing the S&P with BND, for example, restricts both to
// 2008-2024.
func alignSeries(stock, bond *assetSeries) (*assetSeries, *assetSeries) {
	n := stock.len()
	if bond.len() < n {
		n = bond.len()
	}
	return stock.tail(n), bond.tail(n)
}

// HistoricalStats summarizes the embedded return series. Standard
// deviations are population figures, matching how the calibration data
// was published. The stock_*/bond_* keys alias the default VT/BND
// pairing.
func HistoricalStats() map[string]float64 {
	sp500Total := sp500Series.totals()
	vtTotal := vtSeries.totals()
	treasuryTotal := treasurySeries.totals()
	bndTotal := bndSeries.totals()

	return map[string]float64{
		"sp500_price_mean":    stat.Mean(sp500Series.price, nil),
		"sp500_dividend_mean": stat.Mean(sp500Series.dividend, nil),
		"sp500_total_mean":    stat.Mean(sp500Total, nil),
		"sp500_std":           stat.PopStdDev(sp500Total, nil),
		"sp500_min":           floats.Min(sp500Total),
		"sp500_max":           floats.Max(sp500Total),
		"sp500_n_years":       float64(sp500Series.len()),

		"vt_price_mean":    stat.Mean(vtSeries.price, nil),
		"vt_dividend_mean": stat.Mean(vtSeries.dividend, nil),
		"vt_total_mean":    stat.Mean(vtTotal, nil),
		"vt_std":           stat.PopStdDev(vtTotal, nil),
		"vt_n_years":       float64(vtSeries.len()),

		"treasury_mean": stat.Mean(treasuryTotal, nil),
		"treasury_std":  stat.PopStdDev(treasuryTotal, nil),

		"bnd_total_mean": stat.Mean(bndTotal, nil),
		"bnd_std":        stat.PopStdDev(bndTotal, nil),

		"stock_mean": stat.Mean(vtTotal, nil),
		"stock_std":  stat.PopStdDev(vtTotal, nil),
		"bond_mean":  stat.Mean(bndTotal, nil),
		"bond_std":   stat.PopStdDev(bndTotal, nil),
	}
}

// Annual nominal return tables keyed by calendar year. Sources are
// noted on the series variables above; the VT and BND tables store
// total returns, with the growth component derived at startup.

var sp500PriceReturns = map[int]float64{
	1928: 0.3788, 1929: -0.1191, 1930: -0.2848, 1931: -0.4707, 1932: -0.1478,
	1933: 0.4408, 1934: -0.0471, 1935: 0.4137, 1936: 0.2792, 1937: -0.3859,
	1938: 0.2455, 1939: -0.0518, 1940: -0.1509, 1941: -0.1786, 1942: 0.1243,
	1943: 0.1945, 1944: 0.1380, 1945: 0.3072, 1946: -0.1187, 1947: 0.0000,
	1948: -0.0065, 1949: 0.1046, 1950: 0.2168, 1951: 0.1635, 1952: 0.1178,
	1953: -0.0662, 1954: 0.4502, 1955: 0.2640, 1956: 0.0262, 1957: -0.1431,
	1958: 0.3806, 1959: 0.0848, 1960: -0.0297, 1961: 0.2313, 1962: -0.1181,
	1963: 0.1889, 1964: 0.1297, 1965: 0.0906, 1966: -0.1309, 1967: 0.2009,
	1968: 0.0766, 1969: -0.1136, 1970: 0.0010, 1971: 0.1079, 1972: 0.1563,
	1973: -0.1737, 1974: -0.2972, 1975: 0.3155, 1976: 0.1915, 1977: -0.1150,
	1978: 0.0106, 1979: 0.1231, 1980: 0.2577, 1981: -0.0973, 1982: 0.1476,
	1983: 0.1727, 1984: 0.0140, 1985: 0.2633, 1986: 0.1462, 1987: 0.0203,
	1988: 0.1240, 1989: 0.2725, 1990: -0.0656, 1991: 0.2631, 1992: 0.0446,
	1993: 0.0706, 1994: -0.0154, 1995: 0.3411, 1996: 0.2026, 1997: 0.3101,
	1998: 0.2667, 1999: 0.1953, 2000: -0.1014, 2001: -0.1304, 2002: -0.2337,
	2003: 0.2638, 2004: 0.0899, 2005: 0.0300, 2006: 0.1362, 2007: 0.0353,
	2008: -0.3849, 2009: 0.2345, 2010: 0.1278, 2011: 0.0000, 2012: 0.1341,
	2013: 0.2960, 2014: 0.1139, 2015: -0.0073, 2016: 0.0954, 2017: 0.1942,
	2018: -0.0624, 2019: 0.2888, 2020: 0.1626, 2021: 0.2689, 2022: -0.1944,
	2023: 0.2423, 2024: 0.2331,
}

var sp500DividendYields = map[int]float64{
	1928: 0.0573, 1929: 0.0349, 1930: 0.0358, 1931: 0.0373, 1932: 0.0659,
	1933: 0.0991, 1934: 0.0327, 1935: 0.0630, 1936: 0.0600, 1937: 0.0356,
	1938: 0.0657, 1939: 0.0477, 1940: 0.0531, 1941: 0.0627, 1942: 0.0791,
	1943: 0.0645, 1944: 0.0595, 1945: 0.0572, 1946: 0.0380, 1947: 0.0571,
	1948: 0.0615, 1949: 0.0833, 1950: 0.1003, 1951: 0.0767, 1952: 0.0659,
	1953: 0.0563, 1954: 0.0760, 1955: 0.0516, 1956: 0.0394, 1957: 0.0353,
	1958: 0.0530, 1959: 0.0348, 1960: 0.0344, 1961: 0.0376, 1962: 0.0308,
	1963: 0.0391, 1964: 0.0351, 1965: 0.0339, 1966: 0.0303, 1967: 0.0389,
	1968: 0.0340, 1969: 0.0286, 1970: 0.0391, 1971: 0.0352, 1972: 0.0335,
	1973: 0.0271, 1974: 0.0325, 1975: 0.0565, 1976: 0.0469, 1977: 0.0432,
	1978: 0.0550, 1979: 0.0613, 1980: 0.0665, 1981: 0.0482, 1982: 0.0679,
	1983: 0.0529, 1984: 0.0487, 1985: 0.0540, 1986: 0.0405, 1987: 0.0322,
	1988: 0.0421, 1989: 0.0444, 1990: 0.0346, 1991: 0.0416, 1992: 0.0316,
	1993: 0.0302, 1994: 0.0286, 1995: 0.0347, 1996: 0.0270, 1997: 0.0235,
	1998: 0.0191, 1999: 0.0151, 2000: 0.0104, 2001: 0.0115, 2002: 0.0127,
	2003: 0.0230, 2004: 0.0189, 2005: 0.0191, 2006: 0.0217, 2007: 0.0196,
	2008: 0.0149, 2009: 0.0301, 2010: 0.0228, 2011: 0.0211, 2012: 0.0259,
	2013: 0.0279, 2014: 0.0230, 2015: 0.0211, 2016: 0.0242, 2017: 0.0241,
	2018: 0.0186, 2019: 0.0261, 2020: 0.0214, 2021: 0.0182, 2022: 0.0133,
	2023: 0.0206, 2024: 0.0171,
}

var treasuryReturns = map[int]float64{
	1928: 0.0084, 1929: 0.0342, 1930: 0.0466, 1931: -0.0531, 1932: 0.1682,
	1933: -0.0007, 1934: 0.1002, 1935: 0.0498, 1936: 0.0751, 1937: 0.0023,
	1938: 0.0553, 1939: 0.0594, 1940: 0.0609, 1941: 0.0093, 1942: 0.0322,
	1943: 0.0208, 1944: 0.0281, 1945: 0.1073, 1946: -0.0010, 1947: -0.0262,
	1948: 0.0340, 1949: 0.0645, 1950: 0.0006, 1951: -0.0394, 1952: 0.0116,
	1953: 0.0363, 1954: 0.0719, 1955: -0.0129, 1956: -0.0559, 1957: 0.0745,
	1958: -0.0609, 1959: -0.0226, 1960: 0.1378, 1961: 0.0097, 1962: 0.0689,
	1963: 0.0121, 1964: 0.0351, 1965: 0.0071, 1966: 0.0365, 1967: -0.0919,
	1968: -0.0026, 1969: -0.0508, 1970: 0.1210, 1971: 0.1324, 1972: 0.0568,
	1973: -0.0111, 1974: 0.0435, 1975: 0.0919, 1976: 0.1675, 1977: -0.0067,
	1978: -0.0116, 1979: -0.0122, 1980: -0.0395, 1981: 0.0185, 1982: 0.4036,
	1983: 0.0065, 1984: 0.1543, 1985: 0.3097, 1986: 0.2453, 1987: -0.0274,
	1988: 0.0967, 1989: 0.1803, 1990: 0.0621, 1991: 0.1930, 1992: 0.0806,
	1993: 0.1821, 1994: -0.0776, 1995: 0.2352, 1996: 0.0014, 1997: 0.0999,
	1998: 0.1476, 1999: -0.0825, 2000: 0.1666, 2001: 0.0535, 2002: 0.1522,
	2003: 0.0138, 2004: 0.0449, 2005: 0.0287, 2006: 0.0196, 2007: 0.1000,
	2008: 0.2010, 2009: -0.1112, 2010: 0.0841, 2011: 0.1604, 2012: 0.0297,
	2013: -0.0778, 2014: 0.1075, 2015: 0.0155, 2016: 0.0069, 2017: 0.0275,
	2018: -0.0002, 2019: 0.0892, 2020: 0.1126, 2021: -0.0439, 2022: -0.1747,
	2023: 0.0396, 2024: 0.0053,
}

var treasuryYields = map[int]float64{
	1928: 0.0340, 1929: 0.0360, 1930: 0.0329, 1931: 0.0393, 1932: 0.0368,
	1933: 0.0331, 1934: 0.0312, 1935: 0.0279, 1936: 0.0265, 1937: 0.0268,
	1938: 0.0256, 1939: 0.0236, 1940: 0.0221, 1941: 0.0195, 1942: 0.0246,
	1943: 0.0247, 1944: 0.0248, 1945: 0.0237, 1946: 0.0219, 1947: 0.0225,
	1948: 0.0244, 1949: 0.0231, 1950: 0.0232, 1951: 0.0257, 1952: 0.0268,
	1953: 0.0294, 1954: 0.0290, 1955: 0.0284, 1956: 0.0296, 1957: 0.0346,
	1958: 0.0379, 1959: 0.0402, 1960: 0.0469, 1961: 0.0438, 1962: 0.0453,
	1963: 0.0400, 1964: 0.0415, 1965: 0.0413, 1966: 0.0461, 1967: 0.0451,
	1968: 0.0549, 1969: 0.0610, 1970: 0.0791, 1971: 0.0674, 1972: 0.0595,
	1973: 0.0630, 1974: 0.0699, 1975: 0.0799, 1976: 0.0787, 1977: 0.0742,
	1978: 0.0796, 1979: 0.0925, 1980: 0.1080, 1981: 0.1384, 1982: 0.1457,
	1983: 0.1146, 1984: 0.1192, 1985: 0.1162, 1986: 0.0964, 1987: 0.0783,
	1988: 0.0867, 1989: 0.0884, 1990: 0.0855, 1991: 0.0886, 1992: 0.0770,
	1993: 0.0687, 1994: 0.0609, 1995: 0.0757, 1996: 0.0644, 1997: 0.0635,
	1998: 0.0626, 1999: 0.0544, 2000: 0.0603, 2001: 0.0516, 2002: 0.0504,
	2003: 0.0401, 2004: 0.0427, 2005: 0.0422, 2006: 0.0479, 2007: 0.0463,
	2008: 0.0366, 2009: 0.0326, 2010: 0.0322, 2011: 0.0278, 2012: 0.0180,
	2013: 0.0235, 2014: 0.0254, 2015: 0.0214, 2016: 0.0184, 2017: 0.0233,
	2018: 0.0291, 2019: 0.0214, 2020: 0.0089, 2021: 0.0152, 2022: 0.0295,
	2023: 0.0396, 2024: 0.0428,
}

var vtTotalReturns = map[int]float64{
	2008: -0.4231, 2009: 0.3265, 2010: 0.1308, 2011: -0.0750, 2012: 0.1712,
	2013: 0.2295, 2014: 0.0367, 2015: -0.0186, 2016: 0.0851, 2017: 0.2449,
	2018: -0.0976, 2019: 0.2682, 2020: 0.1661, 2021: 0.1827, 2022: -0.1801,
	2023: 0.2203, 2024: 0.1649,
}

var vtDividendYields = map[int]float64{
	2008: 0.0280, 2009: 0.0240, 2010: 0.0210, 2011: 0.0230, 2012: 0.0250,
	2013: 0.0220, 2014: 0.0230, 2015: 0.0250, 2016: 0.0240, 2017: 0.0210,
	2018: 0.0220, 2019: 0.0200, 2020: 0.0180, 2021: 0.0160, 2022: 0.0190,
	2023: 0.0180, 2024: 0.0195,
}

var bndTotalReturns = map[int]float64{
	2008: 0.0686, 2009: 0.0363, 2010: 0.0620, 2011: 0.0792, 2012: 0.0389,
	2013: -0.0210, 2014: 0.0582, 2015: 0.0056, 2016: 0.0253, 2017: 0.0357,
	2018: -0.0011, 2019: 0.0884, 2020: 0.0771, 2021: -0.0186, 2022: -0.1311,
	2023: 0.0566, 2024: 0.0138,
}

var bndDividendYields = map[int]float64{
	2008: 0.0450, 2009: 0.0380, 2010: 0.0350, 2011: 0.0320, 2012: 0.0280,
	2013: 0.0260, 2014: 0.0250, 2015: 0.0240, 2016: 0.0250, 2017: 0.0260,
	2018: 0.0290, 2019: 0.0280, 2020: 0.0220, 2021: 0.0180, 2022: 0.0250,
	2023: 0.0340, 2024: 0.0386,
}
