package gas

import "time"

// Measurement is the result of reading a single sensor.
//
// OK is false when the voltage reading was degenerate (open or shorted
// divider) or the transport failed; PPM is zero in that case. A Measurement
// with OK set and PPM zero is a genuine clean-air reading.
type Measurement struct {
	Gas        Gas     `json:"gas"`
	Voltage    float64 `json:"voltage"`    // averaged sensor voltage (V)
	Resistance float64 `json:"resistance"` // sensor resistance (kΩ), InvalidResistance when !OK
	PPM        float64 `json:"ppm"`
	OK         bool    `json:"ok"`
}

// ReadingSet is one cycle's worth of measurements across all gases.
// Valid is true when every concentration lies within its configured
// plausibility bound.
type ReadingSet struct {
	Timestamp time.Time             `json:"timestamp"`
	Readings  [NumGases]Measurement `json:"readings"`
	Valid     bool                  `json:"valid"`
}

// PPM returns the concentration measured for the given gas.
func (r *ReadingSet) PPM(g Gas) float64 {
	return r.Readings[g].PPM
}
