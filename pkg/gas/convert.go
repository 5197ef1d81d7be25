package gas

import "math"

// InvalidResistance is the sentinel returned by EstimateResistance when the
// measured voltage is outside the usable range of the divider.
const InvalidResistance = -1.0

// CodeToVoltage converts an averaged ADC code to voltage.
func CodeToVoltage(code float64, vref float64, fullScale uint16) float64 {
	return code * (vref / float64(fullScale))
}

// EstimateResistance calculates the sensor resistance (kΩ) from the measured
// voltage for a sensor in series with a fixed load resistor across vref.
// Formula: Rs = (vref * load / v) - load
//
// Voltages at or outside the (0, vref) interval have no physical solution and
// yield InvalidResistance.
func EstimateResistance(voltage, vref, load float64) float64 {
	if voltage <= 0 || voltage >= vref {
		return InvalidResistance
	}
	return (vref*load)/voltage - load
}

// PPM converts a sensor resistance to gas concentration using the power-law
// curve fit from the sensor datasheet: ppm = a * (rs/r0)^b.
//
// Non-positive resistances map to zero concentration rather than an error:
// downstream consumers distinguish a degraded reading via Measurement.OK.
func PPM(rs, r0, a, b float64) float64 {
	if rs <= 0 || r0 <= 0 {
		return 0
	}

	ppm := a * math.Pow(rs/r0, b)
	if ppm < 0 {
		ppm = 0
	}
	return ppm
}
