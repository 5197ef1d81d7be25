package publish

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/gasguard/gasmon/pkg/config"
	"github.com/gasguard/gasmon/pkg/gas"
)

// Influx writes one point per read cycle to an InfluxDB bucket.
type Influx struct {
	client influxdb2.Client
	write  api.WriteAPIBlocking
	device string
}

// NewInflux creates an InfluxDB publisher. The token comes from the
// environment, not the config file.
func NewInflux(cfg config.InfluxConfig, token string) (*Influx, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("influx URL is not set")
	}
	if token == "" {
		return nil, fmt.Errorf("influx token is not set")
	}

	client := influxdb2.NewClient(cfg.URL, token)

	return &Influx{
		client: client,
		write:  client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		device: cfg.Device,
	}, nil
}

// Publish writes the reading set as a single gas_readings point.
func (p *Influx) Publish(ctx context.Context, set gas.ReadingSet) error {
	point := influxdb2.NewPoint(
		"gas_readings",
		map[string]string{"device": p.device},
		map[string]interface{}{
			"methane":          set.PPM(gas.Methane),
			"lpg":              set.PPM(gas.LPG),
			"carbon_monoxide":  set.PPM(gas.CarbonMonoxide),
			"hydrogen_sulfide": set.PPM(gas.HydrogenSulfide),
			"valid":            set.Valid,
		},
		set.Timestamp,
	)

	if err := p.write.WritePoint(ctx, point); err != nil {
		return fmt.Errorf("failed to write to InfluxDB: %w", err)
	}

	return nil
}

// Close flushes and shuts down the client.
func (p *Influx) Close() error {
	p.client.Close()
	return nil
}
