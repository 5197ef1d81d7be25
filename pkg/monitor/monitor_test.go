package monitor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gasguard/gasmon/pkg/config"
	"github.com/gasguard/gasmon/pkg/gas"
)

// stubDevice returns a fixed code per channel.
type stubDevice struct {
	codes map[int]uint16
	errs  map[int]bool
}

func (d *stubDevice) Connect() error    { return nil }
func (d *stubDevice) Close() error      { return nil }
func (d *stubDevice) IsConnected() bool { return true }

func (d *stubDevice) Read(channel int) (uint16, error) {
	if d.errs[channel] {
		return 0, fmt.Errorf("channel %d unavailable", channel)
	}
	code, ok := d.codes[channel]
	if !ok {
		return 0, fmt.Errorf("no such channel %d", channel)
	}
	return code, nil
}

// fakeSleeper records requested delays instead of waiting.
type fakeSleeper struct {
	slept []time.Duration
}

func (s *fakeSleeper) Sleep(d time.Duration) {
	s.slept = append(s.slept, d)
}

// halfScaleDevice wires every default sensor channel to mid-scale, which
// reads as a 10kΩ sensor over the 10kΩ load.
func halfScaleDevice(cfg *config.Config) *stubDevice {
	dev := &stubDevice{codes: make(map[int]uint16), errs: make(map[int]bool)}
	for _, s := range cfg.Sensors {
		dev.codes[s.Channel] = cfg.ADC.FullScale / 2
	}
	return dev
}

func TestNew_ResolvesSensorTable(t *testing.T) {
	cfg := config.Default()
	mon, err := New(halfScaleDevice(cfg), cfg, &fakeSleeper{})
	require.NoError(t, err)

	sensors := mon.Sensors()
	require.Len(t, sensors, 4)
	assert.Equal(t, gas.Methane, sensors[0].Gas)
	assert.Equal(t, gas.LPG, sensors[1].Gas)
	assert.Equal(t, gas.CarbonMonoxide, sensors[2].Gas)
	assert.Equal(t, gas.HydrogenSulfide, sensors[3].Gas)
}

func TestNew_UnknownGas(t *testing.T) {
	cfg := config.Default()
	cfg.Sensors[0].Gas = "oxygen"

	_, err := New(halfScaleDevice(cfg), cfg, &fakeSleeper{})
	assert.Error(t, err)
}

func TestNew_DuplicateGas(t *testing.T) {
	cfg := config.Default()
	cfg.Sensors[1].Gas = "methane"

	_, err := New(halfScaleDevice(cfg), cfg, &fakeSleeper{})
	assert.Error(t, err)
}

func TestReadAll_AllSensorsOK(t *testing.T) {
	cfg := config.Default()
	mon, err := New(halfScaleDevice(cfg), cfg, &fakeSleeper{})
	require.NoError(t, err)

	set := mon.ReadAll()

	assert.True(t, set.Valid)
	assert.False(t, set.Timestamp.IsZero())

	for _, s := range mon.Sensors() {
		meas := set.Readings[s.Gas]
		require.True(t, meas.OK, "%s should read OK", s.Model)

		wantV := float64(cfg.ADC.FullScale/2) * (cfg.ADC.VRef / float64(cfg.ADC.FullScale))
		assert.InDelta(t, wantV, meas.Voltage, 1e-9)

		wantRs := gas.EstimateResistance(wantV, cfg.ADC.VRef, cfg.ADC.LoadResistance)
		assert.InDelta(t, wantRs, meas.Resistance, 1e-9)

		wantPPM := gas.PPM(wantRs, s.R0, s.CurveA, s.CurveB)
		assert.InDelta(t, wantPPM, meas.PPM, 1e-9)
		assert.Greater(t, meas.PPM, 0.0)
	}
}

func TestReadAll_DegenerateVoltage(t *testing.T) {
	cfg := config.Default()
	dev := halfScaleDevice(cfg)
	dev.codes[34] = 0                 // methane divider reads 0V
	dev.codes[32] = cfg.ADC.FullScale // CO divider reads vref

	mon, err := New(dev, cfg, &fakeSleeper{})
	require.NoError(t, err)

	set := mon.ReadAll()

	methane := set.Readings[gas.Methane]
	assert.False(t, methane.OK)
	assert.Equal(t, 0.0, methane.PPM)
	assert.Equal(t, gas.InvalidResistance, methane.Resistance)

	co := set.Readings[gas.CarbonMonoxide]
	assert.False(t, co.OK)
	assert.Equal(t, 0.0, co.PPM)
	assert.InDelta(t, cfg.ADC.VRef, co.Voltage, 1e-9)

	// The other gases still read, and a zero concentration is within
	// bounds: the aggregate stays valid.
	assert.True(t, set.Readings[gas.LPG].OK)
	assert.True(t, set.Readings[gas.HydrogenSulfide].OK)
	assert.True(t, set.Valid)
}

func TestReadAll_DeviceError(t *testing.T) {
	cfg := config.Default()
	dev := halfScaleDevice(cfg)
	dev.errs[35] = true // LPG channel fails

	mon, err := New(dev, cfg, &fakeSleeper{})
	require.NoError(t, err)

	set := mon.ReadAll()

	lpg := set.Readings[gas.LPG]
	assert.False(t, lpg.OK)
	assert.Equal(t, 0.0, lpg.PPM)

	assert.True(t, set.Readings[gas.Methane].OK)
	assert.True(t, set.Valid)
}

func TestWithinLimits(t *testing.T) {
	cfg := config.Default()
	mon, err := New(halfScaleDevice(cfg), cfg, &fakeSleeper{})
	require.NoError(t, err)

	tests := []struct {
		name                         string
		methane, lpg, co, h2s        float64
		want                         bool
	}{
		{
			name:    "all well within bounds",
			methane: 50000, lpg: 200, co: 20, h2s: 4,
			want: true,
		},
		{
			name:    "just under every bound",
			methane: 99999.9, lpg: 99999.9, co: 9999.9, h2s: 999.9,
			want: true,
		},
		{
			name:    "CO exactly at bound is invalid",
			methane: 50000, lpg: 99999.9, co: 10000, h2s: 500,
			want: false,
		},
		{
			name:    "methane at bound is invalid",
			methane: 100000, lpg: 0, co: 0, h2s: 0,
			want: false,
		},
		{
			name:    "H2S above bound is invalid",
			methane: 0, lpg: 0, co: 0, h2s: 1500,
			want: false,
		},
		{
			name:    "all zero is valid",
			methane: 0, lpg: 0, co: 0, h2s: 0,
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := gas.ReadingSet{}
			set.Readings[gas.Methane] = gas.Measurement{Gas: gas.Methane, PPM: tt.methane, OK: true}
			set.Readings[gas.LPG] = gas.Measurement{Gas: gas.LPG, PPM: tt.lpg, OK: true}
			set.Readings[gas.CarbonMonoxide] = gas.Measurement{Gas: gas.CarbonMonoxide, PPM: tt.co, OK: true}
			set.Readings[gas.HydrogenSulfide] = gas.Measurement{Gas: gas.HydrogenSulfide, PPM: tt.h2s, OK: true}

			assert.Equal(t, tt.want, mon.withinLimits(&set))
		})
	}
}

func TestWithinLimits_Configurable(t *testing.T) {
	cfg := config.Default()
	cfg.Limits.CarbonMonoxide = 50

	mon, err := New(halfScaleDevice(cfg), cfg, &fakeSleeper{})
	require.NoError(t, err)

	set := gas.ReadingSet{}
	set.Readings[gas.CarbonMonoxide] = gas.Measurement{Gas: gas.CarbonMonoxide, PPM: 60, OK: true}

	assert.False(t, mon.withinLimits(&set))
}

func TestRun_NotifiesAndStops(t *testing.T) {
	cfg := config.Default()
	cfg.Sampling.ReportInterval = time.Millisecond

	mon, err := New(halfScaleDevice(cfg), cfg, &fakeSleeper{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())

	got := make(chan gas.ReadingSet, 1)
	mon.OnUpdate(func(set gas.ReadingSet) {
		select {
		case got <- set:
		default:
		}
		cancel()
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		mon.Run(ctx)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}

	select {
	case set := <-got:
		assert.True(t, set.Valid)
	default:
		t.Fatal("callback did not receive a reading set")
	}
}
