//go:build !cgo

package report

import "periph.io/x/conn/v3"

type HID struct{}

func OpenHID(path string) (*HID, error) {
	return nil, ErrNotSupported
}

func (h *HID) String() string { return "hid" }

func (h *HID) Duplex() conn.Duplex { return conn.Half }

func (h *HID) Tx(w, r []byte) error { return ErrNotSupported }

func (h *HID) Close() error { return nil }
