package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/gasguard/gasmon/pkg/adc"
	"github.com/gasguard/gasmon/pkg/config"
	"github.com/gasguard/gasmon/pkg/gas"
	"github.com/gasguard/gasmon/pkg/monitor"
	"github.com/gasguard/gasmon/pkg/publish"
)

func main() {
	var (
		portFlag      = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag    = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag      = flag.Bool("mock", false, "Use mocked device instead of serial port")
		calibrateFlag = flag.Bool("calibrate", false, "Run clean-air calibration and exit")
		listPortsFlag = flag.Bool("list-ports", false, "List available serial ports and exit")
	)
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	// Optional .env holding INFLUXDB_TOKEN.
	_ = godotenv.Load()

	if *listPortsFlag {
		ports, err := adc.Ports()
		if err != nil {
			log.Fatalf("Failed to list serial ports: %v", err)
		}
		for _, p := range ports {
			fmt.Println(p.Name)
		}
		return
	}

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override serial port if provided via command line
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	var dev adc.Device
	if *mockFlag {
		dev = adc.NewMock(cfg)
	} else {
		dev = adc.NewSerial(cfg.Serial.Port, cfg.Serial.BaudRate, cfg.ADC.FullScale)
	}

	if err := dev.Connect(); err != nil {
		log.Fatalf("Failed to connect to device: %v", err)
	}
	defer dev.Close()

	mon, err := monitor.New(dev, cfg, nil)
	if err != nil {
		log.Fatalf("Failed to create monitor: %v", err)
	}

	if *calibrateFlag {
		baselines, err := mon.Calibrate()
		if err != nil {
			log.Fatalf("Calibration failed: %v", err)
		}
		printBaselines(baselines)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Publish.ListenAddress != "" {
		prom := publish.NewPrometheus(nil)
		mon.OnUpdate(func(set gas.ReadingSet) {
			_ = prom.Publish(ctx, set)
		})

		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.Publish.ListenAddress, nil); err != nil {
				log.Errorf("Metrics server stopped: %v", err)
			}
		}()
		log.Printf("Serving metrics on %s", cfg.Publish.ListenAddress)
	}

	if cfg.Publish.Influx.URL != "" {
		influx, err := publish.NewInflux(cfg.Publish.Influx, os.Getenv("INFLUXDB_TOKEN"))
		if err != nil {
			log.Fatalf("Failed to create InfluxDB publisher: %v", err)
		}
		defer influx.Close()

		mon.OnUpdate(func(set gas.ReadingSet) {
			if err := influx.Publish(ctx, set); err != nil {
				log.Errorf("Failed to publish readings: %v", err)
			}
		})
	}

	log.Printf("Reading gas concentrations every %s", cfg.Sampling.ReportInterval)
	mon.Run(ctx)
}

// printBaselines prints measured baselines as a config snippet for manual
// transcription. Values are never applied automatically.
func printBaselines(baselines []monitor.Baseline) {
	fmt.Println("\nCalibration complete. Copy these r0 values into your config file:")
	fmt.Println("sensors:")
	for _, b := range baselines {
		fmt.Printf("  - gas: %s\n", b.Gas)
		fmt.Printf("    model: %s\n", b.Model)
		fmt.Printf("    channel: %d\n", b.Channel)
		if b.OK {
			fmt.Printf("    r0: %.2f\n", b.R0)
		} else {
			fmt.Printf("    r0: # degenerate reading, recalibrate\n")
		}
	}
}
