package taxsvc

import (
	"sort"

	"github.com/finsim/retirement-simulator/pkg/decimal"
)

// stateProfile is the flat-rate model of a state's income tax at
// retirement-relevant income levels. exemptRetirement states (PA, IL,
// MS) tax wages but not pensions or retirement-account withdrawals;
// taxesSS states include the federally taxable share of Social
// Security in the base. Everyone else taxes ordinary income, gains,
// and dividends at the flat rate with Social Security excluded.
type stateProfile struct {
	rate             float64
	exemptRetirement bool
	taxesSS          bool
}

var stateProfiles = map[string]stateProfile{
	"AL": {rate: 0.050},
	"AK": {},
	"AZ": {rate: 0.025},
	"AR": {rate: 0.044},
	"CA": {rate: 0.060},
	"CO": {rate: 0.044, taxesSS: true},
	"CT": {rate: 0.050, taxesSS: true},
	"DE": {rate: 0.056},
	"DC": {rate: 0.060},
	"FL": {},
	"GA": {rate: 0.0539},
	"HI": {rate: 0.072},
	"ID": {rate: 0.058},
	"IL": {rate: 0.0495, exemptRetirement: true},
	"IN": {rate: 0.0305},
	"IA": {rate: 0.038},
	"KS": {rate: 0.054},
	"KY": {rate: 0.040},
	"LA": {rate: 0.030},
	"ME": {rate: 0.0675},
	"MD": {rate: 0.0475},
	"MA": {rate: 0.050},
	"MI": {rate: 0.0425},
	"MN": {rate: 0.068, taxesSS: true},
	"MS": {rate: 0.044, exemptRetirement: true},
	"MO": {rate: 0.047},
	"MT": {rate: 0.059, taxesSS: true},
	"NE": {rate: 0.052},
	"NV": {},
	"NH": {},
	"NJ": {rate: 0.055},
	"NM": {rate: 0.049, taxesSS: true},
	"NY": {rate: 0.0585},
	"NC": {rate: 0.0425},
	"ND": {rate: 0.0195},
	"OH": {rate: 0.035},
	"OK": {rate: 0.0475},
	"OR": {rate: 0.079},
	"PA": {rate: 0.0307, exemptRetirement: true},
	"RI": {rate: 0.0475, taxesSS: true},
	"SC": {rate: 0.062},
	"SD": {},
	"TN": {},
	"TX": {},
	"UT": {rate: 0.0455, taxesSS: true},
	"VT": {rate: 0.0735, taxesSS: true},
	"VA": {rate: 0.0575},
	"WA": {},
	"WV": {rate: 0.0482, taxesSS: true},
	"WI": {rate: 0.053},
	"WY": {},
}

// ValidState reports whether the two-letter code is a supported
// jurisdiction.
func ValidState(code string) bool {
	_, ok := stateProfiles[code]
	return ok
}

// NoTaxStates returns the jurisdictions with no income tax, sorted.
// The state comparison engine uses this as its default candidate list.
func NoTaxStates() []string {
	var out []string
	for code, p := range stateProfiles {
		if p.rate == 0 {
			out = append(out, code)
		}
	}
	sort.Strings(out)
	return out
}

// stateTax applies the flat-rate model to one request. taxableSS is
// the federally taxable share of the Social Security benefit, already
// computed by the worksheet.
func stateTax(req Request, taxableSS decimal.Money) decimal.Money {
	profile, ok := stateProfiles[req.State]
	if !ok || profile.rate == 0 {
		return decimal.Zero()
	}
	base := decimal.Sum(req.OrdinaryIncome, req.CapitalGains, req.Dividends)
	if profile.exemptRetirement {
		base = req.EmploymentIncome
	}
	if profile.taxesSS {
		base = base.Add(taxableSS)
	}
	return base.MulFloat(profile.rate).FloorZero()
}
