package math

// MovingAverage is a fixed window average. The first sample fills the whole window so the estimate
// is usable immediately.
type MovingAverage struct {
	values      []float64
	index       int
	size        int
	initialized bool
	Estimate    float64
}

func (a *MovingAverage) Init(size int) {
	a.size = max(size, 1)
	a.values = make([]float64, a.size)
	a.initialized = false
	a.index = 0
	a.Estimate = 0
}

func (a *MovingAverage) Reset() {
	a.initialized = false
	a.Estimate = 0
}

func (a *MovingAverage) Initialized() bool {
	return a.initialized
}

func (a *MovingAverage) Update(val float64) float64 {
	if !a.initialized {
		for i := range a.values {
			a.values[i] = val
		}
		a.initialized = true
		a.Estimate = val
		return val
	}
	a.index = (a.index + 1) % a.size
	a.values[a.index] = val
	total := 0.0
	for _, v := range a.values {
		total += v
	}
	a.Estimate = total / float64(a.size)
	return a.Estimate
}

// Raw is the most recent sample.
func (a *MovingAverage) Raw() float64 {
	if len(a.values) == 0 {
		return 0
	}
	return a.values[a.index]
}
