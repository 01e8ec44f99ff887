package bond

// Limits bounds the accepted bond inputs.
type Limits struct {
	MinFaceValue        float64
	MinRate             float64
	MaxRate             float64
	MinYears            float64
	MinFrequency        int
	RejectUnknownFields bool
}

// DefaultLimits returns the limits the service ships with.
func DefaultLimits() Limits {
	return Limits{
		MinFaceValue: 0.01,
		MinRate:      0,
		MaxRate:      100,
		MinYears:     0.1,
		MinFrequency: 1,
	}
}
