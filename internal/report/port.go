package report

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3"
)

var (
	ErrShortWrite     = errors.New("short report write")
	ErrReadNotAllowed = errors.New("report ports are write-only")
	ErrNotSupported   = errors.New("hid transport not supported in this build")
)

// Port is an open report sink. Each Tx writes exactly one outbound report.
type Port interface {
	conn.Conn
	Close() error
}

const (
	DriverHID = "hid"
	DriverSim = "sim"
)

// Open returns the port for a configured driver name.
func Open(driver, path string, logger zerolog.Logger) (Port, error) {
	switch driver {
	case DriverHID:
		if path == "" {
			return nil, fmt.Errorf("hid driver needs a device path")
		}
		h, err := OpenHID(path)
		if err != nil {
			return nil, err
		}
		return h, nil
	case DriverSim, "":
		return NewSim(logger), nil
	}
	return nil, fmt.Errorf("unknown report driver %q", driver)
}
