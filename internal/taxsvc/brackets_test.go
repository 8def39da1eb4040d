package taxsvc

import (
	"testing"

	"github.com/finsim/retirement-simulator/internal/domain"
	"github.com/finsim/retirement-simulator/pkg/decimal"
)

func dollars(v int64) decimal.Money {
	return decimal.NewMoneyFromInt(v)
}

func TestStandardDeduction(t *testing.T) {
	cases := []struct {
		name   string
		status domain.FilingStatus
		age    int
		want   int64
	}{
		{"single under 65", domain.FilingSingle, 60, 15000},
		{"single senior", domain.FilingSingle, 65, 17000},
		{"joint under 65", domain.FilingMarriedJoint, 64, 30000},
		{"joint seniors", domain.FilingMarriedJoint, 70, 33200},
	}
	for _, tc := range cases {
		got := standardDeduction(tc.status, tc.age)
		if !got.Equal(dollars(tc.want)) {
			t.Errorf("%s: deduction = %s, want %d", tc.name, got, tc.want)
		}
	}
}

func TestOrdinaryTax(t *testing.T) {
	cases := []struct {
		name    string
		status  domain.FilingStatus
		taxable int64
		want    string
	}{
		{"zero", domain.FilingSingle, 0, "0.00"},
		{"inside first bracket", domain.FilingSingle, 10000, "1000.00"},
		{"single three brackets", domain.FilingSingle, 50000, "5914.00"},
		{"joint three brackets", domain.FilingMarriedJoint, 100000, "11828.00"},
	}
	for _, tc := range cases {
		got := ordinaryTax(tc.status, dollars(tc.taxable))
		if got.String() != tc.want {
			t.Errorf("%s: tax = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestTaxableSocialSecurity(t *testing.T) {
	cases := []struct {
		name    string
		status  domain.FilingStatus
		benefit int64
		other   int64
		want    string
	}{
		{"below first threshold", domain.FilingSingle, 20000, 10000, "0.00"},
		{"between thresholds", domain.FilingSingle, 20000, 20000, "2500.00"},
		{"above second threshold capped", domain.FilingSingle, 20000, 40000, "17000.00"},
		{"joint between thresholds", domain.FilingMarriedJoint, 30000, 20000, "1500.00"},
		{"no benefit", domain.FilingMarriedJoint, 0, 90000, "0.00"},
	}
	for _, tc := range cases {
		got := taxableSocialSecurity(tc.status, dollars(tc.benefit), dollars(tc.other))
		if got.String() != tc.want {
			t.Errorf("%s: taxable SS = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestCapitalGainsTax(t *testing.T) {
	cases := []struct {
		name         string
		status       domain.FilingStatus
		ordinary     int64
		preferential int64
		want         string
	}{
		{"all in zero band", domain.FilingSingle, 0, 40000, "0.00"},
		{"all at fifteen", domain.FilingSingle, 50000, 10000, "1500.00"},
		{"straddles zero band", domain.FilingSingle, 20000, 40000, "1747.50"},
		{"all at twenty", domain.FilingMarriedJoint, 700000, 10000, "2000.00"},
		{"no preferential income", domain.FilingSingle, 50000, 0, "0.00"},
	}
	for _, tc := range cases {
		got := capitalGainsTax(tc.status, dollars(tc.ordinary), dollars(tc.preferential))
		if got.String() != tc.want {
			t.Errorf("%s: gains tax = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestFederalTaxRetireeComposition(t *testing.T) {
	req := Request{
		FilingStatus:   domain.FilingSingle,
		Age:            70,
		OrdinaryIncome: dollars(30000),
		CapitalGains:   dollars(10000),
		Dividends:      dollars(2000),
		SocialSecurity: dollars(24000),
	}
	other := decimal.Sum(req.OrdinaryIncome, req.CapitalGains, req.Dividends)
	taxableSS := taxableSocialSecurity(req.FilingStatus, req.SocialSecurity, other)
	if taxableSS.String() != "20400.00" {
		t.Fatalf("taxable SS = %s, want 20400.00", taxableSS)
	}

	// Ordinary base 50400 less the 17000 senior deduction leaves 33400
	// in the brackets; the 12000 of gains and dividends all fit in the
	// capital-gains zero band above it.
	got := federalTax(req, taxableSS)
	if got.String() != "3769.50" {
		t.Errorf("federal tax = %s, want 3769.50", got)
	}
}

func TestFederalTaxDeductionSheltersGains(t *testing.T) {
	req := Request{
		FilingStatus: domain.FilingSingle,
		Age:          70,
		CapitalGains: dollars(600000),
	}
	// No ordinary income: the whole 17000 deduction shifts the gains
	// stack down before the 0/15/20 bands apply.
	got := federalTax(req, decimal.Zero())
	want := dollars(533400 - 48350).MulFloat(0.15).
		Add(dollars(600000 - 17000 - 533400).MulFloat(0.20))
	if !got.Equal(want) {
		t.Errorf("federal tax = %s, want %s", got, want)
	}
}

func TestFederalTaxZeroIncome(t *testing.T) {
	got := federalTax(Request{FilingStatus: domain.FilingMarriedJoint, Age: 66}, decimal.Zero())
	if !got.IsZero() {
		t.Errorf("federal tax on zero income = %s, want 0", got)
	}
}
