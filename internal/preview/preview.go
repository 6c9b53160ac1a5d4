package preview

import (
	"image"
	"image/color"
	"io"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"
	"periph.io/x/host/v3"

	"github.com/coreman2200/rkconfig/internal/config"
	"github.com/coreman2200/rkconfig/internal/protocol"
	"github.com/coreman2200/rkconfig/model"
)

// Slots is the number of whole colour slots in the per-key table.
const Slots = protocol.CustomLightTableSize / protocol.CustomLightSlotSize

// stripFreq is the only SPI clock nrzled accepts: 3 SPI bits per 800kHz
// data bit plus slack.
const stripFreq = 2500 * physic.KiloHertz

// Renderer shows a per-key colour table on a drawer, one pixel per slot.
type Renderer struct {
	drawer display.Drawer
	closer io.Closer
	log    zerolog.Logger
}

func New(d display.Drawer, logger zerolog.Logger) *Renderer {
	return &Renderer{drawer: d, log: logger}
}

// Open builds the renderer named by cfg. An spi preview with no usable port
// falls back to the terminal.
func Open(cfg config.Preview, logger zerolog.Logger) (*Renderer, error) {
	width := cfg.Width
	if width <= 0 {
		width = Slots
	}
	if cfg.Driver != config.PreviewSPI {
		return New(screen.New(width), logger), nil
	}

	if _, err := host.Init(); err != nil {
		return nil, err
	}
	port, err := spireg.Open(cfg.SPI.Dev)
	if err != nil {
		logger.Warn().Err(err).Str("dev", cfg.SPI.Dev).Msg("no SPI port; previewing on the console")
		return New(screen.New(width), logger), nil
	}
	r, err := NewStrip(port, Slots, logger)
	if err != nil {
		port.Close()
		return nil, err
	}
	r.closer = port
	return r, nil
}

// NewStrip drives an nrzled strip of n pixels attached to port.
func NewStrip(port spi.Port, n int, logger zerolog.Logger) (*Renderer, error) {
	d, err := nrzled.NewSPI(port, &nrzled.Opts{
		NumPixels: n,
		Channels:  3,
		Freq:      stripFreq,
	})
	if err != nil {
		return nil, err
	}
	if err := d.Halt(); err != nil {
		return nil, err
	}
	return New(d, logger.With().Str("drawer", d.String()).Logger()), nil
}

// Image lays out the colours the keyboard will show, left to right by
// buffer index. Slots that are never transmitted stay black. A width of
// zero sizes the image to the highest lit slot.
func Image(colors []model.PerKeyColor, width int) *image.NRGBA {
	if width <= 0 {
		for _, pk := range colors {
			if protocol.CustomColorTransmitted(pk.BufferIndex) && int(pk.BufferIndex) >= width {
				width = int(pk.BufferIndex) + 1
			}
		}
		if width == 0 {
			width = 1
		}
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, 1))
	for x := 0; x < width; x++ {
		img.SetNRGBA(x, 0, color.NRGBA{A: 0xFF})
	}
	for _, pk := range colors {
		if !protocol.CustomColorTransmitted(pk.BufferIndex) || int(pk.BufferIndex) >= width {
			continue
		}
		img.SetNRGBA(int(pk.BufferIndex), 0, pk.Color.ToNRGBA())
	}
	return img
}

func (r *Renderer) Render(colors []model.PerKeyColor) error {
	b := r.drawer.Bounds()
	if err := r.drawer.Draw(b, Image(colors, b.Dx()), image.Point{}); err != nil {
		return err
	}
	r.log.Debug().Int("colors", len(colors)).Int("width", b.Dx()).Msg("preview drawn")
	return nil
}

func (r *Renderer) Clear() error {
	return r.drawer.Halt()
}

func (r *Renderer) Close() error {
	err := r.drawer.Halt()
	if r.closer != nil {
		if cerr := r.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
