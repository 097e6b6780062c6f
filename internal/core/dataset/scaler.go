package dataset

import "math"

// Scaler standardizes features to zero mean and unit variance. It is
// fitted on the training partition only; applying train statistics to
// val/test is what keeps the transform leakage-free.
type Scaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

func FitScaler(X [][]float64) *Scaler {
	if len(X) == 0 {
		return &Scaler{}
	}
	dims := len(X[0])
	mean := make([]float64, dims)
	std := make([]float64, dims)

	for _, row := range X {
		for j, v := range row {
			mean[j] += v
		}
	}
	n := float64(len(X))
	for j := range mean {
		mean[j] /= n
	}

	for _, row := range X {
		for j, v := range row {
			d := v - mean[j]
			std[j] += d * d
		}
	}
	for j := range std {
		std[j] = math.Sqrt(std[j] / n)
		if std[j] == 0 {
			std[j] = 1 // constant feature, leave it centered
		}
	}

	return &Scaler{Mean: mean, Std: std}
}

// Transform standardizes rows in place.
func (s *Scaler) Transform(X [][]float64) {
	if len(s.Mean) == 0 {
		return
	}
	for _, row := range X {
		for j := range row {
			row[j] = (row[j] - s.Mean[j]) / s.Std[j]
		}
	}
}

// ScalePartition fits on Train and transforms all three splits in place,
// returning the fitted scaler for persistence next to the model.
func ScalePartition(p *Partition) *Scaler {
	trainX, _ := Matrix(p.Train)
	sc := FitScaler(trainX)

	for _, split := range [][]Sample{p.Train, p.Val, p.Test} {
		for i := range split {
			sc.Transform([][]float64{split[i].Features})
		}
	}
	return sc
}
