//go:build cgo

package report

import (
	"fmt"
	"sync"

	"github.com/sstallion/go-hid"
	"periph.io/x/conn/v3"
)

// HID writes reports to a hidapi device opened by path.
type HID struct {
	mu   sync.Mutex
	dev  *hid.Device
	path string
}

func OpenHID(path string) (*HID, error) {
	if err := hid.Init(); err != nil {
		return nil, fmt.Errorf("hid init: %w", err)
	}
	dev, err := hid.OpenPath(path)
	if err != nil {
		_ = hid.Exit()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &HID{dev: dev, path: path}, nil
}

func (h *HID) String() string { return "hid{" + h.path + "}" }

func (h *HID) Duplex() conn.Duplex { return conn.Half }

func (h *HID) Tx(w, r []byte) error {
	if len(r) != 0 {
		return ErrReadNotAllowed
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.dev == nil {
		return fmt.Errorf("%s: closed", h)
	}
	n, err := h.dev.Write(w)
	if err != nil {
		return fmt.Errorf("%s: write: %w", h, err)
	}
	if n != len(w) {
		return fmt.Errorf("%s: wrote %d of %d bytes: %w", h, n, len(w), ErrShortWrite)
	}
	return nil
}

func (h *HID) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.dev == nil {
		return nil
	}
	err := h.dev.Close()
	h.dev = nil
	if exitErr := hid.Exit(); err == nil {
		err = exitErr
	}
	return err
}
