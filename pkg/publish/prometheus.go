package publish

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gasguard/gasmon/pkg/gas"
)

// Prometheus exposes the latest reading set as gauges.
type Prometheus struct {
	ppm   *prometheus.GaugeVec
	valid prometheus.Gauge
}

// NewPrometheus creates the gauges and registers them with reg. A nil reg
// uses the default registerer.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	p := &Prometheus{
		ppm: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gas_ppm",
				Help: "Gas concentration (units: parts per million)",
			},
			[]string{"gas"},
		),
		valid: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gas_readings_valid",
			Help: "Whether the last reading cycle passed all plausibility bounds (1 = valid)",
		}),
	}

	reg.MustRegister(p.ppm)
	reg.MustRegister(p.valid)

	return p
}

// Publish updates the gauges from the reading set.
func (p *Prometheus) Publish(_ context.Context, set gas.ReadingSet) error {
	for g := gas.Gas(0); g < gas.NumGases; g++ {
		p.ppm.WithLabelValues(g.String()).Set(set.Readings[g].PPM)
	}

	if set.Valid {
		p.valid.Set(1)
	} else {
		p.valid.Set(0)
	}

	return nil
}

// Close is a no-op; gauge unregistration is left to process exit.
func (p *Prometheus) Close() error {
	return nil
}
