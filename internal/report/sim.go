package report

import (
	"encoding/hex"
	"sync"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3"
)

// Sim logs each report instead of writing it to hardware.
type Sim struct {
	mu    sync.Mutex
	log   zerolog.Logger
	Count int
}

func NewSim(logger zerolog.Logger) *Sim {
	return &Sim{log: logger.With().Str("port", "sim").Logger()}
}

func (s *Sim) String() string { return "sim" }

func (s *Sim) Duplex() conn.Duplex { return conn.Half }

func (s *Sim) Tx(w, r []byte) error {
	if len(r) != 0 {
		return ErrReadNotAllowed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Count++
	s.log.Info().Int("report", s.Count).Int("len", len(w)).Str("data", hex.EncodeToString(w)).Msg("report")
	return nil
}

func (s *Sim) Close() error { return nil }
