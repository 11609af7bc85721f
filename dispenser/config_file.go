package dispenser

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/afornelas/Nordson-EFD/logger"
)

// FileConfig is the YAML description of a set of dispensers:
//
//	log_level: info
//	dispensers:
//	  - name: left
//	    port: /dev/ttyUSB0
//	    baud_rate: 115200
//	    read_timeout: 2s
//	  - name: right
//	    port: tcp://10.0.0.12:4001
type FileConfig struct {
	LogLevel   string                `yaml:"log_level"`
	Dispensers []DispenserFileConfig `yaml:"dispensers"`
}

// DispenserFileConfig describes one dispenser. Zero values keep the defaults
// of NewConfig.
type DispenserFileConfig struct {
	Name           string        `yaml:"name"`
	Port           string        `yaml:"port"`
	BaudRate       int           `yaml:"baud_rate"`
	DataBits       int           `yaml:"data_bits"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// LoadFile reads and parses the YAML file at path.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dispenser: read config file: %w", err)
	}

	return ParseFile(data)
}

// ParseFile parses YAML configuration. Unknown keys are rejected.
func ParseFile(data []byte) (*FileConfig, error) {
	var fc FileConfig

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		return nil, fmt.Errorf("dispenser: parse config file: %w", err)
	}

	if len(fc.Dispensers) == 0 {
		return nil, errors.New("dispenser: config file lists no dispensers")
	}

	return &fc, nil
}

// Level returns the configured log level, defaulting to info.
func (fc *FileConfig) Level() (logger.Level, error) {
	if fc.LogLevel == "" {
		return logger.InfoLevel, nil
	}

	return logger.ParseLevel(fc.LogLevel)
}

// Configs converts the file into dispenser configurations logging to l.
// A nil l uses the default logger. Names must be unique.
func (fc *FileConfig) Configs(l logger.Logger) ([]*Config, error) {
	if l == nil {
		l = logger.GetLogger()
	}

	seen := make(map[string]struct{}, len(fc.Dispensers))
	cfgs := make([]*Config, 0, len(fc.Dispensers))

	for i, dc := range fc.Dispensers {
		opts := []Option{WithLogger(l)}
		if dc.Name != "" {
			opts = append(opts, WithName(dc.Name))
		}
		if dc.BaudRate != 0 {
			opts = append(opts, WithBaudRate(dc.BaudRate))
		}
		if dc.DataBits != 0 {
			opts = append(opts, WithDataBits(dc.DataBits))
		}
		if dc.ReadTimeout != 0 {
			opts = append(opts, WithReadTimeout(dc.ReadTimeout))
		}
		if dc.WriteTimeout != 0 {
			opts = append(opts, WithWriteTimeout(dc.WriteTimeout))
		}
		if dc.ConnectTimeout != 0 {
			opts = append(opts, WithConnectTimeout(dc.ConnectTimeout))
		}

		cfg, err := NewConfig(dc.Port, opts...)
		if err != nil {
			return nil, fmt.Errorf("dispenser: config file entry %d: %w", i, err)
		}

		if _, ok := seen[cfg.name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, cfg.name)
		}
		seen[cfg.name] = struct{}{}

		cfgs = append(cfgs, cfg)
	}

	return cfgs, nil
}
