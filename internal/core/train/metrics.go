package train

// Confusion is indexed [actual][predicted] over binary labels.
type Confusion [2][2]int

func (c Confusion) Total() int {
	return c[0][0] + c[0][1] + c[1][0] + c[1][1]
}

func (c Confusion) Accuracy() float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}
	return float64(c[0][0]+c[1][1]) / float64(total)
}

// Precision for the positive class (predicted 1).
func (c Confusion) Precision() float64 {
	predicted := c[1][1] + c[0][1]
	if predicted == 0 {
		return 0
	}
	return float64(c[1][1]) / float64(predicted)
}

// Recall for the positive class (actual 1).
func (c Confusion) Recall() float64 {
	actual := c[1][1] + c[1][0]
	if actual == 0 {
		return 0
	}
	return float64(c[1][1]) / float64(actual)
}

func (c Confusion) F1() float64 {
	p, r := c.Precision(), c.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

type GroupMetrics struct {
	Samples  int     `json:"samples"`
	Accuracy float64 `json:"accuracy"`
}

type EvalResult struct {
	Confusion Confusion
	PerGroup  map[string]GroupMetrics
}

// Evaluate scores predictions against labels, broken down per group.
// Slices must be aligned; groups may be nil to skip the breakdown.
func Evaluate(labels, predictions []int, groups []string) EvalResult {
	res := EvalResult{PerGroup: make(map[string]GroupMetrics)}

	correctByGroup := make(map[string]int)
	for i, actual := range labels {
		pred := predictions[i]
		res.Confusion[actual][pred]++

		if groups != nil {
			g := groups[i]
			gm := res.PerGroup[g]
			gm.Samples++
			if actual == pred {
				correctByGroup[g]++
			}
			res.PerGroup[g] = gm
		}
	}

	for g, gm := range res.PerGroup {
		gm.Accuracy = float64(correctByGroup[g]) / float64(gm.Samples)
		res.PerGroup[g] = gm
	}
	return res
}
