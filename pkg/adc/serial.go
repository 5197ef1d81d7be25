package adc

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the standard baud rate for the sensor MCU.
	DefaultBaudRate = 115200
	// readTimeout bounds how long a single conversion request may take.
	readTimeout = time.Second
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial reads ADC conversions from the sensor MCU over a serial link.
//
// The protocol is request/response: the host writes "R<channel>\n" and the
// MCU answers "<channel>,<code>\n" with the conversion result for that
// channel. One request is in flight at a time.
type Serial struct {
	port      string
	baudRate  int
	fullScale uint16

	conn      serial.Port
	reader    *bufio.Reader
	mu        sync.Mutex
	connected bool
}

// NewSerial creates a new Serial device for the given port. fullScale is the
// highest valid ADC code; responses above it are rejected.
func NewSerial(port string, baudRate int, fullScale uint16) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if fullScale == 0 {
		fullScale = 4095
	}

	return &Serial{
		port:      port,
		baudRate:  baudRate,
		fullScale: fullScale,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect opens the serial port.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	mode := &serial.Mode{
		BaudRate: d.baudRate,
	}

	port, err := serial.Open(d.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return fmt.Errorf("failed to set read timeout: %w", err)
	}

	d.conn = port
	d.reader = bufio.NewReader(port)
	d.connected = true

	return nil
}

// Close closes the serial port.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			return fmt.Errorf("failed to close serial port: %w", err)
		}
		d.conn = nil
		d.reader = nil
	}

	d.connected = false

	return nil
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connected
}

// Read requests one ADC conversion for the given channel.
func (d *Serial) Read(channel int) (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return 0, fmt.Errorf("not connected")
	}

	cmd := fmt.Sprintf("R%d\n", channel)
	if _, err := d.conn.Write([]byte(cmd)); err != nil {
		return 0, fmt.Errorf("failed to send read command: %w", err)
	}

	line, err := d.reader.ReadString('\n')
	if err != nil {
		return 0, fmt.Errorf("failed to read conversion result: %w", err)
	}

	return parseResponse(strings.TrimSpace(line), channel, d.fullScale)
}

// parseResponse parses an MCU conversion response into an ADC code.
// Format: channel,code
// Example: 34,2048
func parseResponse(line string, channel int, fullScale uint16) (uint16, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid response format: expected 2 comma-separated values, got %d", len(parts))
	}

	echo, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid channel echo: %w", err)
	}
	if echo != channel {
		return 0, fmt.Errorf("channel mismatch: requested %d, got %d", channel, echo)
	}

	code, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid code: %w", err)
	}
	if code > uint64(fullScale) {
		return 0, fmt.Errorf("code out of range: %d (max %d)", code, fullScale)
	}

	return uint16(code), nil
}
