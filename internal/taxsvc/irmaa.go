package taxsvc

import (
	"github.com/finsim/retirement-simulator/internal/domain"
	"github.com/finsim/retirement-simulator/pkg/decimal"
)

const medicareAge = 65

// 2025 IRMAA tiers, keyed on MAGI from two years prior. The engine
// supplies the previous simulated year's MAGI as the closest proxy.
// The surcharge is per enrollee per month on top of the base Part B
// premium.
type irmaaTier struct {
	singleFloor int64
	jointFloor  int64
	monthly     float64
}

var irmaaTiers = []irmaaTier{
	{106000, 212000, 74.00},
	{133000, 266000, 185.00},
	{167000, 334000, 295.90},
	{200000, 400000, 406.90},
	{500000, 750000, 443.90},
}

// irmaaSurcharge returns the annual Medicare premium surcharge implied
// by prior-year MAGI: the highest tier whose floor the MAGI exceeds,
// annualized, doubled for a joint household's two enrollees. Zero
// before Medicare age.
func irmaaSurcharge(req Request) decimal.Money {
	if req.Age < medicareAge {
		return decimal.Zero()
	}
	joint := req.FilingStatus == domain.FilingMarriedJoint

	monthly := 0.0
	for _, tier := range irmaaTiers {
		floor := tier.singleFloor
		if joint {
			floor = tier.jointFloor
		}
		if !req.PriorYearMAGI.GreaterThan(decimal.NewMoneyFromInt(floor)) {
			break
		}
		monthly = tier.monthly
	}
	if monthly == 0 {
		return decimal.Zero()
	}
	enrollees := 1.0
	if joint {
		enrollees = 2.0
	}
	return decimal.NewMoney(monthly).MulFloat(12 * enrollees)
}
