package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Serial      SerialConfig      `yaml:"serial"`
	ADC         ADCConfig         `yaml:"adc"`
	Sampling    SamplingConfig    `yaml:"sampling"`
	Sensors     []SensorConfig    `yaml:"sensors"`
	Limits      LimitsConfig      `yaml:"limits"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Mock        MockConfig        `yaml:"mock"`
	Publish     PublishConfig     `yaml:"publish"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// ADCConfig contains the ADC and divider characteristics shared by all
// channels.
type ADCConfig struct {
	VRef           float64 `yaml:"vref"`            // reference voltage (V)
	FullScale      uint16  `yaml:"full_scale"`      // highest ADC code (4095 for 12 bit)
	LoadResistance float64 `yaml:"load_resistance"` // divider load resistor (kΩ)
}

// SamplingConfig contains sampling and reporting parameters.
type SamplingConfig struct {
	SampleCount    int           `yaml:"sample_count"`    // samples averaged per voltage reading
	SampleDelay    time.Duration `yaml:"sample_delay"`    // delay between consecutive samples
	ReportInterval time.Duration `yaml:"report_interval"` // delay between read cycles
}

// SensorConfig describes one gas sensor: which gas it measures, where it is
// wired, and its datasheet curve. R0 is the clean-air baseline resistance and
// must come from calibration.
type SensorConfig struct {
	Gas     string  `yaml:"gas"`
	Model   string  `yaml:"model"`
	Channel int     `yaml:"channel"`
	R0      float64 `yaml:"r0"` // baseline resistance in clean air (kΩ)
	CurveA  float64 `yaml:"curve_a"`
	CurveB  float64 `yaml:"curve_b"`
}

// LimitsConfig contains the per-gas plausibility bounds (exclusive upper, in
// PPM) used for the aggregate validity flag. The defaults are inherited from
// the reference firmware and carry no documented physical derivation.
type LimitsConfig struct {
	Methane         float64 `yaml:"methane"`
	LPG             float64 `yaml:"lpg"`
	CarbonMonoxide  float64 `yaml:"carbon_monoxide"`
	HydrogenSulfide float64 `yaml:"hydrogen_sulfide"`
}

// CalibrationConfig contains calibration parameters.
type CalibrationConfig struct {
	Warmup time.Duration `yaml:"warmup"` // settling time before baseline reads
}

// MockConfig contains mock device configuration.
type MockConfig struct {
	CleanAirResistance float64       `yaml:"clean_air_resistance"` // simulated sensor resistance (kΩ)
	NoiseLevel         float64       `yaml:"noise_level"`          // resistance noise amplitude (kΩ)
	DriftPeriod        time.Duration `yaml:"drift_period"`         // period of the slow resistance drift
	DriftAmplitude     float64       `yaml:"drift_amplitude"`      // amplitude of the slow drift (kΩ)
}

// PublishConfig contains the forwarding endpoints for readings.
type PublishConfig struct {
	ListenAddress string       `yaml:"listen_address"` // prometheus /metrics address, empty disables
	Influx        InfluxConfig `yaml:"influx"`
}

// InfluxConfig contains InfluxDB connection parameters. The token is taken
// from the INFLUXDB_TOKEN environment variable, not the config file.
type InfluxConfig struct {
	URL    string `yaml:"url"` // empty disables the influx publisher
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
	Device string `yaml:"device"` // tag value identifying this monitor
}

// Default returns a default configuration with the reference hardware values:
// a 12-bit ADC at 3.3V, 10kΩ load resistors, and the four MQ sensors with
// their datasheet curves. R0 values are nominal and should be replaced with
// calibrated ones.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "/dev/ttyACM0",
			BaudRate: 115200,
		},
		ADC: ADCConfig{
			VRef:           3.3,
			FullScale:      4095,
			LoadResistance: 10.0,
		},
		Sampling: SamplingConfig{
			SampleCount:    10,
			SampleDelay:    50 * time.Millisecond,
			ReportInterval: 5 * time.Second,
		},
		Sensors: []SensorConfig{
			{Gas: "methane", Model: "MQ-4", Channel: 34, R0: 10.0, CurveA: 1012.0, CurveB: -2.786},
			{Gas: "lpg", Model: "MQ-6", Channel: 35, R0: 10.0, CurveA: 1009.0, CurveB: -2.35},
			{Gas: "carbon_monoxide", Model: "MQ-7", Channel: 32, R0: 10.0, CurveA: 99.042, CurveB: -1.518},
			{Gas: "hydrogen_sulfide", Model: "MQ-136", Channel: 33, R0: 10.0, CurveA: 44.947, CurveB: -3.445},
		},
		Limits: LimitsConfig{
			Methane:         100000,
			LPG:             100000,
			CarbonMonoxide:  10000,
			HydrogenSulfide: 1000,
		},
		Calibration: CalibrationConfig{
			Warmup: 60 * time.Second,
		},
		Mock: MockConfig{
			CleanAirResistance: 10.0,
			NoiseLevel:         0.05,
			DriftPeriod:        2 * time.Minute,
			DriftAmplitude:     0.5,
		},
		Publish: PublishConfig{
			Influx: InfluxConfig{
				Device: "gasmon",
			},
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Ensure minimum required fields are set (use defaults if missing)
	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.ADC.VRef == 0 {
		c.ADC.VRef = def.ADC.VRef
	}
	if c.ADC.FullScale == 0 {
		c.ADC.FullScale = def.ADC.FullScale
	}
	if c.ADC.LoadResistance == 0 {
		c.ADC.LoadResistance = def.ADC.LoadResistance
	}

	if c.Sampling.SampleCount == 0 {
		c.Sampling.SampleCount = def.Sampling.SampleCount
	}
	if c.Sampling.SampleDelay == 0 {
		c.Sampling.SampleDelay = def.Sampling.SampleDelay
	}
	if c.Sampling.ReportInterval == 0 {
		c.Sampling.ReportInterval = def.Sampling.ReportInterval
	}

	if len(c.Sensors) == 0 {
		c.Sensors = def.Sensors
	}

	if c.Limits.Methane == 0 {
		c.Limits.Methane = def.Limits.Methane
	}
	if c.Limits.LPG == 0 {
		c.Limits.LPG = def.Limits.LPG
	}
	if c.Limits.CarbonMonoxide == 0 {
		c.Limits.CarbonMonoxide = def.Limits.CarbonMonoxide
	}
	if c.Limits.HydrogenSulfide == 0 {
		c.Limits.HydrogenSulfide = def.Limits.HydrogenSulfide
	}

	if c.Calibration.Warmup == 0 {
		c.Calibration.Warmup = def.Calibration.Warmup
	}

	if c.Mock.CleanAirResistance == 0 {
		c.Mock.CleanAirResistance = def.Mock.CleanAirResistance
	}
	if c.Mock.DriftPeriod == 0 {
		c.Mock.DriftPeriod = def.Mock.DriftPeriod
	}

	if c.Publish.Influx.Device == "" {
		c.Publish.Influx.Device = def.Publish.Influx.Device
	}
}
