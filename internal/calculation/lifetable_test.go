package calculation

import (
	"math"
	"testing"

	"github.com/finsim/retirement-simulator/internal/domain"
)

func TestLifeTableCalibration(t *testing.T) {
	table := NewLifeTable()

	tests := []struct {
		gender   domain.Gender
		wantLE65 float64
		wantP85  float64
	}{
		{domain.GenderMale, 18.2, 0.45},
		{domain.GenderFemale, 20.8, 0.58},
	}
	for _, tt := range tests {
		le := LifeExpectancy(table, tt.gender, 65)
		if math.Abs(le-tt.wantLE65) > 0.05 {
			t.Errorf("%s life expectancy at 65 = %.3f, want %.1f", tt.gender, le, tt.wantLE65)
		}
		curve := SurvivalCurve(table, tt.gender, 65, 85)
		if p85 := curve[20]; math.Abs(p85-tt.wantP85) > 0.005 {
			t.Errorf("%s survival to 85 = %.4f, want %.2f", tt.gender, p85, tt.wantP85)
		}
	}
}

func TestDeathProbabilityMonotone(t *testing.T) {
	table := NewLifeTable()
	for _, gender := range []domain.Gender{domain.GenderMale, domain.GenderFemale} {
		prev := 0.0
		for age := 62; age <= 110; age++ {
			q := table.DeathProbability(gender, age)
			if q < prev {
				t.Fatalf("%s q(%d) = %v dropped below q(%d) = %v", gender, age, q, age-1, prev)
			}
			prev = q
		}
	}
}

func TestDeathProbabilityOutsideTable(t *testing.T) {
	table := NewLifeTable()

	// Past the table end the final entry applies.
	if got, want := table.DeathProbability(domain.GenderMale, 117), table.DeathProbability(domain.GenderMale, 110); got != want {
		t.Errorf("q(117) = %v, want final table entry %v", got, want)
	}

	// Below the table rates decay but stay above the floor.
	q50 := table.DeathProbability(domain.GenderFemale, 50)
	q62 := table.DeathProbability(domain.GenderFemale, 62)
	if q50 >= q62 {
		t.Errorf("q(50) = %v should be below q(62) = %v", q50, q62)
	}
	if q50 < underTableFloor {
		t.Errorf("q(50) = %v fell below the floor %v", q50, underTableFloor)
	}
	if got := table.DeathProbability(domain.GenderMale, 20); got != underTableFloor {
		t.Errorf("q(20) = %v, want floor %v", got, underTableFloor)
	}
}

func TestSampleAliveYears(t *testing.T) {
	table := NewLifeTable()

	a := SampleAliveYears(table, NewPathRNG(5, 3).Stream(StreamMortality), domain.GenderMale, 65, 45)
	b := SampleAliveYears(table, NewPathRNG(5, 3).Stream(StreamMortality), domain.GenderMale, 65, 45)
	if len(a) != 46 {
		t.Fatalf("mask length = %d, want years+1 = 46", len(a))
	}
	if !a[0] {
		t.Fatal("element 0 must be alive")
	}
	for y := range a {
		if a[y] != b[y] {
			t.Fatalf("year %d differs across identical seeds", y)
		}
	}
	// No resurrection.
	dead := false
	for _, alive := range a {
		if dead && alive {
			t.Fatal("mask flipped back to alive")
		}
		if !alive {
			dead = true
		}
	}
}

func TestSampleAliveYearsDeathRate(t *testing.T) {
	// With 45 years of male mortality from 65, most paths should see a
	// death; survival to 110 is well under 1%.
	table := NewLifeTable()
	deaths := 0
	const paths = 2000
	for i := 0; i < paths; i++ {
		mask := SampleAliveYears(table, NewPathRNG(99, i).Stream(StreamMortality), domain.GenderMale, 65, 45)
		if mask.DeathYear() != nil {
			deaths++
		}
	}
	if rate := float64(deaths) / paths; rate < 0.95 {
		t.Errorf("death rate over 45 years = %.3f, want nearly all paths", rate)
	}
}

func TestAliveMaskDeathYear(t *testing.T) {
	m := AliveMask{true, true, false, false}
	year := m.DeathYear()
	if year == nil || *year != 2 {
		t.Errorf("DeathYear = %v, want 2", year)
	}
	alive := AliveMask{true, true, true}
	if alive.DeathYear() != nil {
		t.Error("DeathYear on surviving mask should be nil")
	}
}

func TestSampleHouseholdEitherAlive(t *testing.T) {
	table := NewLifeTable()
	in := &domain.SimulationInput{
		CurrentAge: 80,
		MaxAge:     110,
		Gender:     domain.GenderMale,
		Spouse:     &domain.Spouse{CurrentAge: 78},
	}
	in.ApplyDefaults()

	hh := SampleHousehold(table, NewPathRNG(7, 0), in)
	if hh.Spouse == nil {
		t.Fatal("spouse mask missing")
	}
	for y := range hh.Either {
		want := hh.Primary[y] || hh.Spouse[y]
		if hh.Either[y] != want {
			t.Fatalf("year %d: either = %v, want primary||spouse = %v", y, hh.Either[y], want)
		}
	}
}

func TestSampleHouseholdSpouseStreamIsolated(t *testing.T) {
	// The primary's draws must be identical with and without a spouse.
	table := NewLifeTable()
	solo := &domain.SimulationInput{CurrentAge: 70, MaxAge: 100, Gender: domain.GenderFemale}
	solo.ApplyDefaults()
	married := solo.Clone()
	married.Spouse = &domain.Spouse{CurrentAge: 71, Gender: domain.GenderMale}
	married.ApplyDefaults()

	a := SampleHousehold(table, NewPathRNG(13, 4), solo)
	b := SampleHousehold(table, NewPathRNG(13, 4), married)
	for y := range a.Primary {
		if a.Primary[y] != b.Primary[y] {
			t.Fatalf("year %d: primary mask changed when a spouse was added", y)
		}
	}
}

func TestSampleHouseholdMortalityDisabled(t *testing.T) {
	table := NewLifeTable()
	off := false
	in := &domain.SimulationInput{CurrentAge: 90, MaxAge: 110, IncludeMortality: &off}
	in.ApplyDefaults()

	hh := SampleHousehold(table, NewPathRNG(1, 0), in)
	for y, alive := range hh.Either {
		if !alive {
			t.Fatalf("year %d not alive with mortality disabled", y)
		}
	}
	if hh.Either.DeathYear() != nil {
		t.Error("no death year expected with mortality disabled")
	}
}

func TestSurvivalCurveShape(t *testing.T) {
	table := NewLifeTable()
	curve := SurvivalCurve(table, domain.GenderMale, 65, 100)
	if len(curve) != 36 {
		t.Fatalf("curve length = %d, want 36", len(curve))
	}
	if curve[0] != 1 {
		t.Errorf("curve[0] = %v, want 1", curve[0])
	}
	for i := 1; i < len(curve); i++ {
		if curve[i] > curve[i-1] {
			t.Fatalf("survival increased at index %d", i)
		}
		if curve[i] <= 0 || curve[i] > 1 {
			t.Fatalf("curve[%d] = %v out of range", i, curve[i])
		}
	}
}

func TestBuildMortalityProfile(t *testing.T) {
	table := NewLifeTable()
	profile := BuildMortalityProfile(table, domain.GenderFemale, 65, 100)

	if profile.StartAge != 65 || profile.EndAge != 100 {
		t.Fatalf("profile range = %d-%d, want 65-100", profile.StartAge, profile.EndAge)
	}
	if len(profile.DeathRates) != 36 || len(profile.SurvivalCurve) != 36 {
		t.Fatalf("series lengths = %d, %d, want 36", len(profile.DeathRates), len(profile.SurvivalCurve))
	}
	if profile.DeathRates[0] != table.DeathProbability(domain.GenderFemale, 65) {
		t.Error("first rate should be q(65)")
	}
}
