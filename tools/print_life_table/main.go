package main

import (
	"fmt"
	"os"
	"strconv"

	calc "github.com/finsim/retirement-simulator/internal/calculation"
	"github.com/finsim/retirement-simulator/internal/domain"
)

func main() {
	gender := domain.GenderMale
	startAge, endAge := 62, 110
	if len(os.Args) > 1 {
		switch domain.Gender(os.Args[1]) {
		case domain.GenderMale:
			gender = domain.GenderMale
		case domain.GenderFemale:
			gender = domain.GenderFemale
		default:
			fmt.Println("usage: print_life_table [male|female] [start-age] [end-age]")
			return
		}
	}
	if len(os.Args) > 2 {
		startAge = mustAtoi(os.Args[2])
	}
	if len(os.Args) > 3 {
		endAge = mustAtoi(os.Args[3])
	}

	table := calc.NewLifeTable()
	profile := calc.BuildMortalityProfile(table, gender, startAge, endAge)

	fmt.Printf("Bundled period life table, %s, ages %d-%d\n\n", gender, startAge, endAge)
	fmt.Printf("%-5s %10s %12s %14s\n", "Age", "q(x)", "Survival", "Life Expect.")
	for i, q := range profile.DeathRates {
		age := startAge + i
		fmt.Printf("%-5d %10.5f %11.1f%% %14.1f\n",
			age, q, profile.SurvivalCurve[i]*100, calc.LifeExpectancy(table, gender, age))
	}

	fmt.Printf("\nLife expectancy at 65: %.1f years\n", calc.LifeExpectancy(table, gender, 65))
	fmt.Printf("P(survive 65 to 85):   %.1f%%\n", survivalBetween(table, gender, 65, 85)*100)
}

func survivalBetween(table calc.LifeTable, gender domain.Gender, from, to int) float64 {
	curve := calc.SurvivalCurve(table, gender, from, to)
	return curve[len(curve)-1]
}

func mustAtoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		panic(err)
	}
	return n
}
