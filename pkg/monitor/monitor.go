package monitor

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/gasguard/gasmon/pkg/adc"
	"github.com/gasguard/gasmon/pkg/config"
	"github.com/gasguard/gasmon/pkg/gas"
)

// Sensor is a resolved sensor table entry: a config.SensorConfig with the gas
// name parsed. Immutable after New.
type Sensor struct {
	Gas     gas.Gas
	Model   string
	Channel int
	R0      float64
	CurveA  float64
	CurveB  float64
}

// Monitor reads all configured sensors once per cycle and produces a
// ReadingSet with an aggregate validity flag.
type Monitor struct {
	cfg     *config.Config
	sampler *gas.Sampler
	sleep   gas.Sleeper
	sensors []Sensor

	// Update callbacks, invoked after every completed cycle.
	callbacks []func(gas.ReadingSet)
	cbMu      sync.RWMutex
}

// New creates a Monitor reading from dev. A nil sleeper means real wall-clock
// delays (sampling, calibration warm-up).
func New(dev adc.Device, cfg *config.Config, sleeper gas.Sleeper) (*Monitor, error) {
	if sleeper == nil {
		sleeper = gas.RealSleeper()
	}

	sensors := make([]Sensor, 0, len(cfg.Sensors))
	seen := make(map[gas.Gas]bool)
	for _, sc := range cfg.Sensors {
		g, err := gas.Parse(sc.Gas)
		if err != nil {
			return nil, fmt.Errorf("invalid sensor config: %w", err)
		}
		if seen[g] {
			return nil, fmt.Errorf("duplicate sensor for gas %s", g)
		}
		seen[g] = true

		sensors = append(sensors, Sensor{
			Gas:     g,
			Model:   sc.Model,
			Channel: sc.Channel,
			R0:      sc.R0,
			CurveA:  sc.CurveA,
			CurveB:  sc.CurveB,
		})
	}

	return &Monitor{
		cfg:     cfg,
		sampler: gas.NewSampler(dev, cfg, sleeper),
		sleep:   sleeper,
		sensors: sensors,
	}, nil
}

// Sensors returns a copy of the resolved sensor table.
func (m *Monitor) Sensors() []Sensor {
	result := make([]Sensor, len(m.sensors))
	copy(result, m.sensors)
	return result
}

// ReadAll reads every configured sensor and computes the aggregate validity
// flag. Sensors degrade independently: a failed or degenerate reading reports
// zero concentration for that gas without blocking the others.
func (m *Monitor) ReadAll() gas.ReadingSet {
	set := gas.ReadingSet{Timestamp: time.Now()}
	for g := gas.Gas(0); g < gas.NumGases; g++ {
		set.Readings[g] = gas.Measurement{Gas: g, Resistance: gas.InvalidResistance}
	}

	for _, s := range m.sensors {
		set.Readings[s.Gas] = m.readSensor(s)
	}

	set.Valid = m.withinLimits(&set)
	return set
}

// readSensor runs the sample → resistance → PPM pipeline for one sensor.
func (m *Monitor) readSensor(s Sensor) gas.Measurement {
	meas := gas.Measurement{Gas: s.Gas, Resistance: gas.InvalidResistance}

	voltage, err := m.sampler.Voltage(s.Channel)
	if err != nil {
		log.Errorf("%s: read failed: %v", s.Model, err)
		return meas
	}
	meas.Voltage = voltage

	rs := gas.EstimateResistance(voltage, m.cfg.ADC.VRef, m.cfg.ADC.LoadResistance)
	if rs < 0 {
		log.Warnf("%s: invalid reading", s.Model)
		return meas
	}

	meas.Resistance = rs
	meas.PPM = gas.PPM(rs, s.R0, s.CurveA, s.CurveB)
	meas.OK = true

	log.Printf("%s (%s): V=%.2f, Rs=%.2f, PPM=%.2f", s.Model, s.Gas.Symbol(), voltage, rs, meas.PPM)

	return meas
}

// limit returns the plausibility bound (exclusive upper, PPM) for a gas.
func (m *Monitor) limit(g gas.Gas) float64 {
	switch g {
	case gas.Methane:
		return m.cfg.Limits.Methane
	case gas.LPG:
		return m.cfg.Limits.LPG
	case gas.CarbonMonoxide:
		return m.cfg.Limits.CarbonMonoxide
	case gas.HydrogenSulfide:
		return m.cfg.Limits.HydrogenSulfide
	default:
		return math.Inf(1)
	}
}

// withinLimits checks every concentration against its configured bound.
func (m *Monitor) withinLimits(set *gas.ReadingSet) bool {
	for g := gas.Gas(0); g < gas.NumGases; g++ {
		ppm := set.Readings[g].PPM
		if ppm < 0 || ppm >= m.limit(g) {
			return false
		}
	}
	return true
}

// Run repeats {read all sensors → report → notify} every report_interval
// until the context is cancelled. The first cycle runs immediately.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.Sampling.ReportInterval)
	defer ticker.Stop()

	for {
		set := m.ReadAll()
		m.report(&set)
		m.notifyCallbacks(set)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// report logs the per-cycle summary: one block when the aggregate is valid,
// a single warning otherwise.
func (m *Monitor) report(set *gas.ReadingSet) {
	if !set.Valid {
		log.Warnf("Invalid sensor readings")
		return
	}

	log.Printf("Current gas levels:")
	log.Printf("  CH4:  %.2f ppm", set.PPM(gas.Methane))
	log.Printf("  LPG:  %.2f ppm", set.PPM(gas.LPG))
	log.Printf("  CO:   %.2f ppm", set.PPM(gas.CarbonMonoxide))
	log.Printf("  H2S:  %.2f ppm", set.PPM(gas.HydrogenSulfide))
}

// OnUpdate registers a callback invoked with every completed ReadingSet.
// Callbacks should return quickly; slow forwarding work belongs in the
// callback's own goroutine.
func (m *Monitor) OnUpdate(callback func(gas.ReadingSet)) {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

// notifyCallbacks invokes all registered callbacks with the reading set.
func (m *Monitor) notifyCallbacks(set gas.ReadingSet) {
	m.cbMu.RLock()
	callbacks := make([]func(gas.ReadingSet), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(set)
		}
	}
}
