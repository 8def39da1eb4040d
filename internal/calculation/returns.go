package calculation

import (
	"math"
	"math/rand"

	"github.com/finsim/retirement-simulator/internal/domain"
)

// YearReturn is one simulated year's market outcome, split into growth
// and income components per asset class.
type YearReturn struct {
	StockPrice    float64
	StockDividend float64
	BondPrice     float64
	BondDividend  float64
}

// Blend collapses the pair into single price and dividend rates at the
// given stock allocation.
func (yr YearReturn) Blend(stockAllocation float64) (price, dividend float64) {
	bond := 1 - stockAllocation
	price = stockAllocation*yr.StockPrice + bond*yr.BondPrice
	dividend = stockAllocation*yr.StockDividend + bond*yr.BondDividend
	return price, dividend
}

// Total is the combined return of the year at the given allocation.
func (yr YearReturn) Total(stockAllocation float64) float64 {
	price, dividend := yr.Blend(stockAllocation)
	return price + dividend
}

// ReturnSampler draws a full path of annual stock and bond returns
// using the configured model. The three history-based models draw the
// stock and bond record for the same historical year, preserving
// cross-asset correlation. A single sampler is shared by all paths;
// every mutable bit of state lives in the per-path RNG stream.
type ReturnSampler struct {
	model     domain.ReturnModel
	blockSize int

	stock *assetSeries
	bond  *assetSeries

	// Gaussian-model parameters. Price means are total expectations
	// net of the constant dividend component.
	stockMean, stockVol, stockDiv float64
	bondMean, bondVol, bondDiv    float64
}

// NewReturnSampler builds a sampler from a defaulted, validated input.
func NewReturnSampler(in *domain.SimulationInput) *ReturnSampler {
	stock, bond := alignSeries(seriesForIndex(in.StockIndex), seriesForIndex(in.BondIndex))
	return &ReturnSampler{
		model:     in.ReturnModel,
		blockSize: in.BlockSize,
		stock:     stock,
		bond:      bond,
		stockMean: *in.ExpectedReturn - *in.DividendYield,
		stockVol:  *in.ReturnVolatility,
		stockDiv:  *in.DividendYield,
		bondMean:  *in.BondReturn - *in.BondDividendYield,
		bondVol:   *in.BondVolatility,
		bondDiv:   *in.BondDividendYield,
	}
}

// SamplePath draws the whole horizon for one path.
func (rs *ReturnSampler) SamplePath(rng *rand.Rand, years int) []YearReturn {
	out := make([]YearReturn, years)
	switch rs.model {
	case domain.ReturnModelBootstrap:
		rs.sampleBootstrap(rng, out)
	case domain.ReturnModelBlockBootstrap:
		rs.sampleBlockBootstrap(rng, out)
	case domain.ReturnModelHistorical:
		rs.sampleHistorical(rng, out)
	default:
		rs.sampleNormal(rng, out)
	}
	return out
}

func (rs *ReturnSampler) recordAt(idx int) YearReturn {
	return YearReturn{
		StockPrice:    rs.stock.price[idx],
		StockDividend: rs.stock.dividend[idx],
		BondPrice:     rs.bond.price[idx],
		BondDividend:  rs.bond.dividend[idx],
	}
}

// sampleBootstrap resamples single historical years independently.
func (rs *ReturnSampler) sampleBootstrap(rng *rand.Rand, out []YearReturn) {
	n := rs.stock.len()
	for y := range out {
		out[y] = rs.recordAt(rng.Intn(n))
	}
}

// sampleBlockBootstrap stitches contiguous historical blocks together,
// keeping the serial correlation of multi-year market regimes.
func (rs *ReturnSampler) sampleBlockBootstrap(rng *rand.Rand, out []YearReturn) {
	n := rs.stock.len()
	block := rs.blockSize
	if block > n {
		block = n
	}
	for y := 0; y < len(out); {
		start := rng.Intn(n - block + 1)
		for b := 0; b < block && y < len(out); b++ {
			out[y] = rs.recordAt(start + b)
			y++
		}
	}
}

// sampleHistorical replays the historical record in sequence from a
// random starting year, wrapping around at the end of the series.
func (rs *ReturnSampler) sampleHistorical(rng *rand.Rand, out []YearReturn) {
	n := rs.stock.len()
	start := rng.Intn(n)
	for y := range out {
		out[y] = rs.recordAt((start + y) % n)
	}
}

func (rs *ReturnSampler) sampleNormal(rng *rand.Rand, out []YearReturn) {
	for y := range out {
		out[y] = YearReturn{
			StockPrice:    gaussianReturn(rng, rs.stockMean, rs.stockVol),
			StockDividend: rs.stockDiv,
			BondPrice:     gaussianReturn(rng, rs.bondMean, rs.bondVol),
			BondDividend:  rs.bondDiv,
		}
	}
}

// gaussianReturn draws from N(mean, stdDev) using the Box-Muller
// transform, capped at +/- 3 standard deviations.
func gaussianReturn(rng *rand.Rand, mean, stdDev float64) float64 {
	u1 := rng.Float64()
	u2 := rng.Float64()
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	if z > 3 {
		z = 3
	} else if z < -3 {
		z = -3
	}
	return mean + z*stdDev
}
