package domain

const (
	StandardPrecision int32 = 2
	ProPrecision      int32 = 6
)

func Precision(pro bool) int32 {
	if pro {
		return ProPrecision
	}
	return StandardPrecision
}

type Conversion struct {
	Amount    float64
	Pair      Pair
	Rate      float64
	Value     string
	Precision int32
	Reverse   bool
}
