package dispenser

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/afornelas/Nordson-EFD/logger"
)

// Default serial settings of the dispenser RS-232 port.
const (
	DefaultBaudRate     = 115200
	DefaultDataBits     = 8
	DefaultReadTimeout  = 2 * time.Second
	DefaultWriteTimeout = 2 * time.Second

	// DefaultConnectTimeout is the dial timeout for tcp:// ports.
	DefaultConnectTimeout = 3 * time.Second
)

// Option range limits.
const (
	MinReadTimeout = 10 * time.Millisecond
	MaxReadTimeout = 60 * time.Second

	MinDataBits = 5
	MaxDataBits = 8
)

// defaultName names a dispenser that has neither a name nor a port.
const defaultName = "dispenser"

// tcpScheme marks a port that is reached through a TCP serial server.
const tcpScheme = "tcp://"

// Config holds the configuration of one dispenser.
type Config struct {
	name string
	port string

	baudRate int
	dataBits int

	// readTimeout bounds each ReadUntil; an expired read yields the bytes
	// received so far.
	readTimeout    time.Duration
	writeTimeout   time.Duration
	connectTimeout time.Duration

	// transport, when set, is used instead of opening port.
	transport Transport

	logger logger.Logger
}

// NewConfig creates the configuration of a dispenser attached to port.
//
// port is a serial device name such as "/dev/ttyUSB0" or "COM3", or
// "tcp://host:port" for a TCP serial server. It may be empty when WithTransport
// is given. opts are applied in order.
func NewConfig(port string, opts ...Option) (*Config, error) {
	cfg := &Config{
		port:           strings.TrimSpace(port),
		baudRate:       DefaultBaudRate,
		dataBits:       DefaultDataBits,
		readTimeout:    DefaultReadTimeout,
		writeTimeout:   DefaultWriteTimeout,
		connectTimeout: DefaultConnectTimeout,
		logger:         logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.port == "" && cfg.transport == nil {
		return nil, errors.New("dispenser: port must not be empty")
	}
	if cfg.name == "" {
		cfg.name = cfg.port
	}
	if cfg.name == "" {
		cfg.name = defaultName
	}

	return cfg, nil
}

// Name returns the dispenser name used in logs, metrics and groups.
func (cfg *Config) Name() string { return cfg.name }

// Port returns the configured port.
func (cfg *Config) Port() string { return cfg.port }

// IsTCP returns true if the port is a tcp:// address.
func (cfg *Config) IsTCP() bool { return strings.HasPrefix(cfg.port, tcpScheme) }

// BaudRate returns the serial baud rate.
func (cfg *Config) BaudRate() int { return cfg.baudRate }

// DataBits returns the serial data bits.
func (cfg *Config) DataBits() int { return cfg.dataBits }

// ReadTimeout returns the bound of a single read.
func (cfg *Config) ReadTimeout() time.Duration { return cfg.readTimeout }

// WriteTimeout returns the write timeout of tcp:// ports.
func (cfg *Config) WriteTimeout() time.Duration { return cfg.writeTimeout }

// GetLogger returns the configured logger.
func (cfg *Config) GetLogger() logger.Logger { return cfg.logger }

// Option is a functional option for configuring a Config.
type Option interface {
	apply(*Config) error
}

type optFunc func(*Config) error

func (f optFunc) apply(cfg *Config) error { return f(cfg) }

// WithName sets the dispenser name. Defaults to the port.
func WithName(name string) Option {
	return optFunc(func(cfg *Config) error {
		name = strings.TrimSpace(name)
		if name == "" {
			return errors.New("dispenser: name must not be empty")
		}
		cfg.name = name

		return nil
	})
}

// WithBaudRate sets the serial baud rate.
func WithBaudRate(baud int) Option {
	return optFunc(func(cfg *Config) error {
		if baud <= 0 {
			return fmt.Errorf("dispenser: baud rate %d must be positive", baud)
		}
		cfg.baudRate = baud

		return nil
	})
}

// WithDataBits sets the serial data bits, 5 to 8.
func WithDataBits(bits int) Option {
	return optFunc(func(cfg *Config) error {
		if bits < MinDataBits || bits > MaxDataBits {
			return fmt.Errorf("dispenser: data bits %d out of range [%d, %d]", bits, MinDataBits, MaxDataBits)
		}
		cfg.dataBits = bits

		return nil
	})
}

// WithReadTimeout sets the bound of a single read, 10ms to 60s.
func WithReadTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d < MinReadTimeout || d > MaxReadTimeout {
			return fmt.Errorf("dispenser: read timeout %v out of range [%v, %v]", d, MinReadTimeout, MaxReadTimeout)
		}
		cfg.readTimeout = d

		return nil
	})
}

// WithWriteTimeout sets the write timeout of tcp:// ports.
func WithWriteTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d <= 0 {
			return errors.New("dispenser: write timeout must be positive")
		}
		cfg.writeTimeout = d

		return nil
	})
}

// WithConnectTimeout sets the dial timeout of tcp:// ports.
func WithConnectTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d <= 0 {
			return errors.New("dispenser: connect timeout must be positive")
		}
		cfg.connectTimeout = d

		return nil
	})
}

// WithTransport makes the dispenser use t instead of opening the port.
// The dispenser takes ownership of t and closes it on Close.
func WithTransport(t Transport) Option {
	return optFunc(func(cfg *Config) error {
		if t == nil {
			return errors.New("dispenser: transport must not be nil")
		}
		cfg.transport = t

		return nil
	})
}

// WithLogger sets the logger for the dispenser.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(cfg *Config) error {
		if l == nil {
			return errors.New("dispenser: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}
