package monitor

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/gasguard/gasmon/pkg/gas"
)

// Baseline is the clean-air resistance measured for one sensor during
// calibration. OK is false when the reading was degenerate; R0 then holds the
// invalid sentinel.
type Baseline struct {
	Gas     gas.Gas
	Model   string
	Channel int
	R0      float64
	OK      bool
}

// Calibrate measures the clean-air baseline resistance of every configured
// sensor. The sensors must sit in clean air and have been powered long enough
// to stabilize; the configured warm-up is waited out before reading.
//
// The result is advisory: it is printed for manual transcription into the
// sensor configuration and never applied automatically.
func (m *Monitor) Calibrate() ([]Baseline, error) {
	log.Printf("Starting sensor calibration, ensure sensors are in CLEAN AIR")
	log.Printf("Warming up for %s...", m.cfg.Calibration.Warmup)
	m.sleep.Sleep(m.cfg.Calibration.Warmup)

	baselines := make([]Baseline, 0, len(m.sensors))
	for _, s := range m.sensors {
		b := Baseline{
			Gas:     s.Gas,
			Model:   s.Model,
			Channel: s.Channel,
			R0:      gas.InvalidResistance,
		}

		voltage, err := m.sampler.Voltage(s.Channel)
		if err != nil {
			return nil, fmt.Errorf("failed to calibrate %s: %w", s.Model, err)
		}

		rs := gas.EstimateResistance(voltage, m.cfg.ADC.VRef, m.cfg.ADC.LoadResistance)
		if rs < 0 {
			log.Warnf("%s: degenerate baseline reading (V=%.2f)", s.Model, voltage)
		} else {
			b.R0 = rs
			b.OK = true
		}

		log.Printf("%s R0 = %.2f kΩ", s.Model, b.R0)
		baselines = append(baselines, b)
	}

	return baselines, nil
}
