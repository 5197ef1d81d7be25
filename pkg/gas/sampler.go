package gas

import (
	"fmt"
	"time"

	"github.com/gasguard/gasmon/pkg/adc"
	"github.com/gasguard/gasmon/pkg/config"
)

// Sleeper abstracts the fixed wall-clock delays in the sampling pipeline so
// it is testable without real waiting.
type Sleeper interface {
	Sleep(d time.Duration)
}

type realSleeper struct{}

func (realSleeper) Sleep(d time.Duration) { time.Sleep(d) }

// RealSleeper returns a Sleeper backed by time.Sleep.
func RealSleeper() Sleeper { return realSleeper{} }

// Sampler reads averaged voltages from the ADC device.
type Sampler struct {
	dev   adc.Device
	cfg   *config.Config
	sleep Sleeper
}

// NewSampler creates a Sampler reading from dev. A nil sleeper means real
// wall-clock delays.
func NewSampler(dev adc.Device, cfg *config.Config, sleeper Sleeper) *Sampler {
	if sleeper == nil {
		sleeper = realSleeper{}
	}

	return &Sampler{
		dev:   dev,
		cfg:   cfg,
		sleep: sleeper,
	}
}

// Voltage reads sample_count raw codes from the given channel, separated by
// sample_delay, and returns the averaged value scaled to volts. For a
// constant input k the result is exactly k * vref/fullScale.
func (s *Sampler) Voltage(channel int) (float64, error) {
	count := s.cfg.Sampling.SampleCount
	if count <= 0 {
		count = 1
	}

	var sum uint32
	for i := 0; i < count; i++ {
		if i > 0 {
			s.sleep.Sleep(s.cfg.Sampling.SampleDelay)
		}

		code, err := s.dev.Read(channel)
		if err != nil {
			return 0, fmt.Errorf("failed to read channel %d: %w", channel, err)
		}
		sum += uint32(code)
	}

	avg := float64(sum) / float64(count)
	return CodeToVoltage(avg, s.cfg.ADC.VRef, s.cfg.ADC.FullScale), nil
}
