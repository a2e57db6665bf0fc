package services

// Reliability is Cronbach's alpha over graded questions, which for
// right/wrong items is the Kuder-Richardson KR-20 coefficient. rows is
// [responses][questions] of earned points. Population variance is used
// throughout, so perfectly consistent items give 1. Results are clamped to
// [0, 1]; fewer than two items or no spread gives 0.
func Reliability(rows [][]float64) float64 {
	if len(rows) == 0 {
		return 0
	}
	k := len(rows[0])
	if k < 2 {
		return 0
	}
	totals := make([]float64, len(rows))
	sumItemVar := 0.0
	for j := 0; j < k; j++ {
		col := make([]float64, len(rows))
		for i, row := range rows {
			if len(row) != k {
				return 0
			}
			col[i] = row[j]
			totals[i] += row[j]
		}
		sumItemVar += variance(col)
	}
	totalVar := variance(totals)
	if totalVar == 0 {
		return 0
	}
	kf := float64(k)
	alpha := kf / (kf - 1) * (1 - sumItemVar/totalVar)
	switch {
	case alpha < 0:
		return 0
	case alpha > 1:
		return 1
	}
	return alpha
}

func variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	sum := 0.0
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return sum / float64(len(xs))
}
