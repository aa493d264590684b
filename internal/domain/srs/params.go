package srs

// Params defines the constants of the memory model.
type Params struct {
	// Interval after the first and second consecutive correct answers.
	FirstInterval  int
	SecondInterval int

	// IntervalGrowth multiplies the interval from the third correct answer on.
	IntervalGrowth float64

	// StrengthGain is added on a correct answer, StrengthPenalty removed on a
	// wrong one.
	StrengthGain    int
	StrengthPenalty int

	// LearnedAfter is the repetition count a LEARNING word must already have
	// before a correct answer promotes it to LEARNED.
	LearnedAfter int
}

// NewDefaultParams returns the production parameters.
func NewDefaultParams() *Params {
	return &Params{
		FirstInterval:   1,
		SecondInterval:  3,
		IntervalGrowth:  2.5,
		StrengthGain:    10,
		StrengthPenalty: 20,
		LearnedAfter:    2,
	}
}
