package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	diag "github.com/coreman2200/rkconfig/internal/diagnostics"
	"github.com/coreman2200/rkconfig/internal/metrics"
	"github.com/coreman2200/rkconfig/internal/modes"
	"github.com/coreman2200/rkconfig/internal/protocol"
	"github.com/coreman2200/rkconfig/model"
)

const (
	CmdModes = "modes"
	CmdBuild = "build"
	CmdLint  = "lint"
	CmdSend  = "send"
)

var errNoSender = errors.New("no report transport configured")

// Request is one control message. Keyboard and Config fall back to the
// server's loaded configuration when omitted.
type Request struct {
	ID       string                `json:"id,omitempty"`
	Cmd      string                `json:"cmd"`
	RGB      *bool                 `json:"rgb,omitempty"`
	Keyboard *model.Keyboard       `json:"keyboard,omitempty"`
	Config   *model.KeyboardConfig `json:"config,omitempty"`
}

type SectionJSON struct {
	Kind   protocol.Kind `json:"kind"`
	Frames []string      `json:"frames"`
}

type Response struct {
	ID          string            `json:"id,omitempty"`
	Cmd         string            `json:"cmd"`
	OK          bool              `json:"ok"`
	Error       string            `json:"error,omitempty"`
	Modes       []model.Mode      `json:"modes,omitempty"`
	Sections    []SectionJSON     `json:"sections,omitempty"`
	Diagnostics []diag.Diagnostic `json:"diagnostics,omitempty"`
	Sent        int               `json:"sent,omitempty"`
}

// Sender is what the server needs from a report transport.
type Sender interface {
	Send(ctx context.Context, frames []model.Frame) error
}

type State struct {
	mu       sync.RWMutex
	Keyboard model.Keyboard
	Config   model.KeyboardConfig

	Builder *protocol.Builder
	Metrics *metrics.Metrics
	Driver  string

	sendMu sync.Mutex
	sender Sender

	log       zerolog.Logger
	startTime time.Time
	clients   map[string]*websocket.Conn
	requests  atomic.Uint64
}

func NewState(kb model.Keyboard, cfg model.KeyboardConfig, sender Sender, logger zerolog.Logger) *State {
	return &State{
		Keyboard:  kb,
		Config:    cfg,
		Builder:   protocol.NewBuilder(),
		sender:    sender,
		log:       logger,
		startTime: time.Now(),
		clients:   map[string]*websocket.Conn{},
	}
}

// Routes mounts the control socket, health and metrics endpoints.
func (s *State) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/control", s.HandleControlWS)
	mux.HandleFunc("/health", s.HandleHealth)
	if s.Metrics != nil {
		mux.Handle("/metrics", s.Metrics.Handler())
	}
	return mux
}

func (s *State) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	id := uuid.NewString()
	log := s.log.With().Str("conn", id).Logger()

	s.mu.Lock()
	s.clients[id] = conn
	s.mu.Unlock()
	log.Info().Str("remote", r.RemoteAddr).Msg("control client connected")

	defer func() {
		s.mu.Lock()
		delete(s.clients, id)
		s.mu.Unlock()
		conn.Close()
		log.Info().Msg("control client gone")
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var req Request
		var resp Response
		if err := json.Unmarshal(data, &req); err != nil {
			resp = Response{Error: "bad request: " + err.Error()}
		} else {
			resp = s.Handle(r.Context(), req)
		}
		s.requests.Add(1)
		log.Debug().Str("cmd", req.Cmd).Bool("ok", resp.OK).Msg("control")

		b := encodeResponse(log, resp)
		if err := conn.SetWriteDeadline(time.Now().Add(2 * time.Second)); err != nil {
			log.Debug().Err(err).Msg("set write deadline")
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("write response")
			return
		}
	}
}

// encodeResponse falls back to a bare error response when resp cannot be
// marshalled, so the client always gets an answer it can parse.
func encodeResponse(log zerolog.Logger, resp Response) []byte {
	b, err := json.Marshal(resp)
	if err == nil {
		return b
	}
	log.Error().Err(err).Str("cmd", resp.Cmd).Msg("encode response")
	b, _ = json.Marshal(Response{ID: resp.ID, Cmd: resp.Cmd, Error: "encode response: " + err.Error()})
	return b
}

// Handle answers one request. It is exported so the same command set can be
// driven without a socket.
func (s *State) Handle(ctx context.Context, req Request) Response {
	resp := Response{ID: req.ID, Cmd: req.Cmd}
	kb, cfg := s.target(req)

	switch req.Cmd {
	case CmdModes:
		rgb := kb.RGB
		if req.RGB != nil {
			rgb = *req.RGB
		}
		resp.Modes = modes.List(modes.FamilyOf(rgb))

	case CmdLint:
		resp.Diagnostics = diag.Lint(kb, cfg)

	case CmdBuild, CmdSend:
		sections, err := s.Builder.BuildSections(kb, cfg)
		s.Metrics.ObserveBuild(sections, err)
		resp.Diagnostics = diag.Lint(kb, cfg)
		if err != nil {
			resp.Error = err.Error()
			return resp
		}
		resp.Sections = encodeSections(sections)
		if req.Cmd == CmdSend {
			n, err := s.send(ctx, sections)
			resp.Sent = n
			if err != nil {
				resp.Error = err.Error()
				return resp
			}
		}

	default:
		resp.Error = "unknown command " + req.Cmd
		return resp
	}
	resp.OK = true
	return resp
}

func (s *State) target(req Request) (model.Keyboard, model.KeyboardConfig) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	kb, cfg := s.Keyboard, s.Config
	if req.Keyboard != nil {
		kb = *req.Keyboard
	}
	if req.Config != nil {
		cfg = *req.Config
	}
	return kb, cfg
}

func (s *State) send(ctx context.Context, sections []protocol.Section) (int, error) {
	if s.sender == nil {
		return 0, errNoSender
	}
	var frames []model.Frame
	for _, sec := range sections {
		frames = append(frames, sec.Frames...)
	}
	// one configuration on the wire at a time
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := s.sender.Send(ctx, frames); err != nil {
		return 0, err
	}
	return len(frames), nil
}

func (s *State) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp := map[string]any{
		"uptime_s": time.Since(s.startTime).Seconds(),
		"clients":  len(s.clients),
		"requests": s.requests.Load(),
		"driver":   s.Driver,
		"keyboard": s.Keyboard.Name,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func encodeSections(sections []protocol.Section) []SectionJSON {
	out := make([]SectionJSON, 0, len(sections))
	for _, sec := range sections {
		js := SectionJSON{Kind: sec.Kind, Frames: make([]string, len(sec.Frames))}
		for i, f := range sec.Frames {
			js.Frames[i] = f.String()
		}
		out = append(out, js)
	}
	return out
}
