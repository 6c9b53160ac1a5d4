package ws

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	diag "github.com/coreman2200/rkconfig/internal/diagnostics"
	"github.com/coreman2200/rkconfig/internal/metrics"
	"github.com/coreman2200/rkconfig/internal/protocol"
	"github.com/coreman2200/rkconfig/model"
)

type recordingSender struct {
	mu     sync.Mutex
	frames []model.Frame
	err    error
}

func (r *recordingSender) Send(ctx context.Context, frames []model.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.frames = append(r.frames, frames...)
	return nil
}

func testKeyboard() model.Keyboard {
	return model.Keyboard{
		Name:          "RK61",
		RGB:           true,
		LightEnabled:  true,
		KeyMapEnabled: true,
		Keys:          []model.KeyDescriptor{{BufferIndex: 0, KeyCode: 0x02002900}},
	}
}

func steady() model.KeyboardConfig {
	red := model.RGB{R: 0xFF}
	return model.KeyboardConfig{LightMode: &model.LightModeConfig{ModeBit: 16, Brightness: 5, Color: &red}}
}

func newTestState(sender Sender) *State {
	s := NewState(testKeyboard(), steady(), sender, zerolog.Nop())
	s.Metrics = metrics.New()
	s.Driver = "sim"
	return s
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/control"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func roundTrip(t *testing.T, c *websocket.Conn, req any) Response {
	t.Helper()
	require.NoError(t, c.WriteJSON(req))
	var resp Response
	require.NoError(t, c.ReadJSON(&resp))
	return resp
}

func TestControlModes(t *testing.T) {
	srv := httptest.NewServer(newTestState(nil).Routes())
	defer srv.Close()
	c := dial(t, srv)

	resp := roundTrip(t, c, map[string]any{"id": "1", "cmd": "modes"})
	require.True(t, resp.OK, resp.Error)
	assert.Equal(t, "1", resp.ID)
	assert.Len(t, resp.Modes, 21)

	resp = roundTrip(t, c, map[string]any{"cmd": "modes", "rgb": false})
	assert.Len(t, resp.Modes, 20)
}

func TestControlBuildUsesLoadedConfig(t *testing.T) {
	srv := httptest.NewServer(newTestState(nil).Routes())
	defer srv.Close()
	c := dial(t, srv)

	resp := roundTrip(t, c, Request{Cmd: CmdBuild})
	require.True(t, resp.OK, resp.Error)
	require.Len(t, resp.Sections, 1)
	assert.Equal(t, protocol.StandardLight, resp.Sections[0].Kind)
	require.Len(t, resp.Sections[0].Frames, 1)
	assert.True(t, strings.HasPrefix(resp.Sections[0].Frames[0], "0a01010229"), resp.Sections[0].Frames[0])
	assert.Len(t, resp.Sections[0].Frames[0], model.FrameSize*2)
}

func TestControlBuildErrorCarriesDiagnostics(t *testing.T) {
	srv := httptest.NewServer(newTestState(nil).Routes())
	defer srv.Close()
	c := dial(t, srv)

	cfg := model.KeyboardConfig{LightMode: &model.LightModeConfig{ModeBit: 0}}
	resp := roundTrip(t, c, Request{Cmd: CmdBuild, Config: &cfg})
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, protocol.ErrMissingCustomColors.Error())
	assert.Empty(t, resp.Sections)
	require.NotEmpty(t, resp.Diagnostics)
	assert.Equal(t, "LIGHT.MISSING_CUSTOM_COLORS", resp.Diagnostics[0].Code)
}

func TestControlSend(t *testing.T) {
	rec := &recordingSender{}
	srv := httptest.NewServer(newTestState(rec).Routes())
	defer srv.Close()
	c := dial(t, srv)

	cfg := steady()
	cfg.LightMode.ModeBit = 0
	cfg.LightMode.CustomColors = []model.PerKeyColor{{BufferIndex: 1, Color: model.RGB{G: 1}}}
	cfg.KeyMapping = &model.KeyMappingConfig{}
	resp := roundTrip(t, c, Request{Cmd: CmdSend, Config: &cfg})
	require.True(t, resp.OK, resp.Error)
	assert.Equal(t, 17, resp.Sent)
	assert.Len(t, rec.frames, 17)

	rec.err = errors.New("unplugged")
	resp = roundTrip(t, c, Request{Cmd: CmdSend})
	assert.False(t, resp.OK)
	assert.Equal(t, "unplugged", resp.Error)
}

func TestControlSendWithoutTransport(t *testing.T) {
	resp := newTestState(nil).Handle(context.Background(), Request{Cmd: CmdSend})
	assert.False(t, resp.OK)
	assert.Equal(t, errNoSender.Error(), resp.Error)
}

func TestControlLintAndUnknown(t *testing.T) {
	srv := httptest.NewServer(newTestState(nil).Routes())
	defer srv.Close()
	c := dial(t, srv)

	cfg := model.KeyboardConfig{KeyMapping: &model.KeyMappingConfig{Mappings: []model.KeyMapping{{BufferIndex: 200}}}}
	resp := roundTrip(t, c, Request{Cmd: CmdLint, Config: &cfg})
	require.True(t, resp.OK)
	require.Len(t, resp.Diagnostics, 1)
	assert.Equal(t, "KEYMAP.DROPPED", resp.Diagnostics[0].Code)

	resp = roundTrip(t, c, Request{Cmd: "reboot"})
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "unknown command")

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("{nope")))
	var bad Response
	require.NoError(t, c.ReadJSON(&bad))
	assert.False(t, bad.OK)
	assert.Contains(t, bad.Error, "bad request")
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestState(nil)
	s.Handle(context.Background(), Request{Cmd: CmdBuild})
	srv := httptest.NewServer(s.Routes())
	defer srv.Close()

	res, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer res.Body.Close()
	var health map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&health))
	assert.Equal(t, "sim", health["driver"])
	assert.Equal(t, "RK61", health["keyboard"])

	mres, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer mres.Body.Close()
	body, err := io.ReadAll(mres.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `rkconfig_frames_built_total{kind="standard_light"} 1`)
}

func TestEncodeResponseFallsBackOnMarshalError(t *testing.T) {
	var logs strings.Builder
	resp := Response{ID: "7", Cmd: CmdLint, OK: true, Diagnostics: []diag.Diagnostic{{
		Code: "X", Evidence: map[string]any{"v": math.Inf(1)},
	}}}

	var back Response
	require.NoError(t, json.Unmarshal(encodeResponse(zerolog.New(&logs), resp), &back))
	assert.Equal(t, "7", back.ID)
	assert.False(t, back.OK)
	assert.Contains(t, back.Error, "encode response")
	assert.Contains(t, logs.String(), `"message":"encode response"`)

	ok := Response{Cmd: CmdModes, OK: true}
	require.NoError(t, json.Unmarshal(encodeResponse(zerolog.Nop(), ok), &back))
	assert.True(t, back.OK)
}
