package adc

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gasguard/gasmon/pkg/config"
)

// Mock simulates the sensor MCU for testing and development.
//
// Each channel behaves like an MQ sensor sitting in clean air: its resistance
// is the configured baseline plus a slow sinusoidal drift and a small amount
// of deterministic noise. The resistance is pushed through the forward
// voltage-divider relation to produce the ADC code a real board would report.
type Mock struct {
	cfg *config.Config

	mu        sync.Mutex
	connected bool
	startTime time.Time
	reads     int
}

// NewMock creates a new mocked device instance.
func NewMock(cfg *config.Config) *Mock {
	if cfg == nil {
		cfg = config.Default()
	}

	return &Mock{
		cfg: cfg,
	}
}

// Connect simulates connecting to the device.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	m.connected = true
	m.startTime = time.Now()

	return nil
}

// Close stops the mocked device.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.connected = false

	return nil
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// Read returns a simulated ADC code for the given channel.
func (m *Mock) Read(channel int) (uint16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return 0, fmt.Errorf("not connected")
	}

	m.reads++
	rs := m.resistance(channel)

	// Forward divider: the sensor sits between vref and the measurement
	// node, with the load resistor to ground.
	adcCfg := m.cfg.ADC
	voltage := adcCfg.VRef * adcCfg.LoadResistance / (rs + adcCfg.LoadResistance)

	codeVal := (voltage / adcCfg.VRef) * float64(adcCfg.FullScale)
	if codeVal < 0 {
		codeVal = 0
	} else if codeVal > float64(adcCfg.FullScale) {
		codeVal = float64(adcCfg.FullScale)
	}

	return uint16(codeVal + 0.5), nil
}

// resistance computes the simulated sensor resistance (kΩ) for a channel.
func (m *Mock) resistance(channel int) float64 {
	mock := m.cfg.Mock
	elapsed := time.Since(m.startTime)

	// Per-channel phase offset so the four sensors do not move in lockstep.
	phase := float64(channel) * 0.7

	drift := mock.DriftAmplitude * math.Sin(2*math.Pi*elapsed.Seconds()/mock.DriftPeriod.Seconds()+phase)
	noise := (math.Sin(float64(m.reads)*1.3+phase) + math.Cos(float64(m.reads)*0.17)) *
		mock.NoiseLevel * 0.5

	rs := mock.CleanAirResistance + drift + noise
	if rs < 0.01 {
		rs = 0.01
	}
	return rs
}
