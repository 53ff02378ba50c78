package scoring

// Net converts a gross score to a net score. There is no floor: a low gross with a
// big handicap yields a negative net, and that value is carried through as-is.
func Net(gross, handicap float64) float64 {
	return gross - handicap
}
