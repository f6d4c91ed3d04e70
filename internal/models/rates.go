package models

// BaseRates is the per participant per day price of each program type.
var BaseRates = map[ProgramType]float64{
	ProgramDayVisit:    50,
	ProgramRetreat:     150,
	ProgramYogaClass:   20,
	ProgramPrivateYoga: 100,
	ProgramTreatment:   80,
	ProgramCustom:      120,
}

// FallbackRate prices program types missing from BaseRates.
const FallbackRate = 100

func BaseRate(t ProgramType) float64 {
	if rate, ok := BaseRates[t]; ok {
		return rate
	}
	return FallbackRate
}
