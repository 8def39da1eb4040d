// Package dateutil holds the age and calendar arithmetic shared by the
// simulation engine. Paths are indexed by whole years of age, so
// everything here works on integer ages and birth years rather than
// time.Time values.
package dateutil

// BirthYear derives the birth year from an age as of a given calendar
// year.
func BirthYear(age, asOfYear int) int {
	return asOfYear - age
}

// TaxYear maps a simulated year index onto the calendar year used for
// tax bracket selection.
func TaxYear(startYear, yearIndex int) int {
	return startYear + yearIndex
}

// FullRetirementAgeMonths returns the Social Security Full Retirement
// Age in total months for a birth year. Everyone born 1960 or later has
// an FRA of 67; earlier cohorts phase in from 65 in two-month steps.
func FullRetirementAgeMonths(birthYear int) int {
	switch {
	case birthYear <= 1937:
		return 65 * 12
	case birthYear >= 1938 && birthYear <= 1942:
		return 65*12 + 2*(birthYear-1937)
	case birthYear >= 1943 && birthYear <= 1954:
		return 66 * 12
	case birthYear >= 1955 && birthYear <= 1959:
		return 66*12 + 2*(birthYear-1954)
	default: // 1960 and later
		return 67 * 12
	}
}

// FullRetirementAge returns the FRA in whole years and leftover months.
func FullRetirementAge(birthYear int) (years, months int) {
	total := FullRetirementAgeMonths(birthYear)
	return total / 12, total % 12
}

// MonthsFromFRA returns the signed number of months between a whole-year
// claiming age and the FRA for the given birth year. Negative means
// claiming early, positive means delaying.
func MonthsFromFRA(claimAge, birthYear int) int {
	return claimAge*12 - FullRetirementAgeMonths(birthYear)
}

// IsMedicareEligible reports whether someone of the given age is
// Medicare-eligible. IRMAA surcharges only apply from this age.
func IsMedicareEligible(age int) bool {
	return age >= 65
}
