package adc

// Device defines the interface for ADC devices (real or mocked).
type Device interface {
	Connect() error
	Close() error
	Read(channel int) (uint16, error)
	IsConnected() bool
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)
