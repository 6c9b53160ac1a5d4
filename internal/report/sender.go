package report

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3"

	"github.com/coreman2200/rkconfig/internal/metrics"
	"github.com/coreman2200/rkconfig/model"
)

// DefaultFrameDelay spaces consecutive reports so the firmware can keep up.
const DefaultFrameDelay = 20 * time.Millisecond

// Sender writes frame lists to a port, one report per frame, in list order.
type Sender struct {
	port    conn.Conn
	delay   time.Duration
	log     zerolog.Logger
	metrics *metrics.Metrics
}

type Option func(*Sender)

func WithFrameDelay(d time.Duration) Option {
	return func(s *Sender) {
		if d >= 0 {
			s.delay = d
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Sender) { s.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Sender) { s.metrics = m }
}

func NewSender(port conn.Conn, opts ...Option) *Sender {
	s := &Sender{
		port:  port,
		delay: DefaultFrameDelay,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send stops at the first failed write or when ctx is done; frames after
// that point are not written.
func (s *Sender) Send(ctx context.Context, frames []model.Frame) error {
	for i := range frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.port.Tx(frames[i].Bytes(), nil)
		s.metrics.ObserveSend(err)
		if err != nil {
			return fmt.Errorf("report %d/%d: %w", i+1, len(frames), err)
		}
		s.log.Debug().Int("report", i+1).Int("of", len(frames)).Str("port", s.port.String()).Msg("sent")

		if s.delay > 0 && i < len(frames)-1 {
			t := time.NewTimer(s.delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}
	}
	s.log.Info().Int("reports", len(frames)).Str("port", s.port.String()).Msg("configuration sent")
	return nil
}
