package report

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/conntest"

	"github.com/coreman2200/rkconfig/internal/metrics"
	"github.com/coreman2200/rkconfig/model"
)

func testFrames(n int) []model.Frame {
	frames := make([]model.Frame, n)
	for i := range frames {
		frames[i][0] = 0x0a
		frames[i][1] = byte(n)
		frames[i][2] = byte(i + 1)
	}
	return frames
}

// failingConn fails the write with index failAt and runs onTx on every call.
type failingConn struct {
	conntest.Record
	failAt int
	onTx   func()
}

func (f *failingConn) Tx(w, r []byte) error {
	if f.onTx != nil {
		f.onTx()
	}
	if len(f.Ops) == f.failAt {
		return errors.New("device gone")
	}
	return f.Record.Tx(w, r)
}

func TestSendWritesFramesInOrder(t *testing.T) {
	rec := &conntest.Record{}
	frames := testFrames(9)

	require.NoError(t, NewSender(rec, WithFrameDelay(0)).Send(context.Background(), frames))
	require.Len(t, rec.Ops, len(frames))
	for i, op := range rec.Ops {
		assert.Equal(t, frames[i].Bytes(), op.W, "report %d", i)
		assert.Len(t, op.W, model.FrameSize)
		assert.Empty(t, op.R)
	}
}

func TestSendPlaybackMatchesExactly(t *testing.T) {
	frames := testFrames(3)
	p := &conntest.Playback{D: conn.Half}
	for i := range frames {
		p.Ops = append(p.Ops, conntest.IO{W: append([]byte(nil), frames[i].Bytes()...)})
	}
	require.NoError(t, NewSender(p, WithFrameDelay(time.Millisecond)).Send(context.Background(), frames))
	assert.NoError(t, p.Close())
}

func TestSendStopsAtFirstError(t *testing.T) {
	m := metrics.New()
	fc := &failingConn{failAt: 2}
	err := NewSender(fc, WithFrameDelay(0), WithMetrics(m)).Send(context.Background(), testFrames(7))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "report 3/7"), err.Error())
	assert.Len(t, fc.Ops, 2)

	assert.Equal(t, 1.0, counterValue(t, m, "rkconfig_send_errors_total"))
	assert.Equal(t, 2.0, counterValue(t, m, "rkconfig_reports_sent_total"))
}

func counterValue(t *testing.T, m *metrics.Metrics, name string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestSendHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := &conntest.Record{}
	err := NewSender(rec).Send(ctx, testFrames(3))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, rec.Ops)
}

func TestSendCancelDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fc := &failingConn{failAt: -1, onTx: cancel}
	err := NewSender(fc, WithFrameDelay(time.Hour)).Send(ctx, testFrames(3))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Len(t, fc.Ops, 1)
}

func TestSimLogsEachReport(t *testing.T) {
	var buf bytes.Buffer
	sim := NewSim(zerolog.New(&buf))
	require.NoError(t, NewSender(sim, WithFrameDelay(0)).Send(context.Background(), testFrames(2)))
	assert.Equal(t, 2, sim.Count)
	assert.Equal(t, 2, strings.Count(buf.String(), `"message":"report"`))
	assert.Contains(t, buf.String(), `"data":"0a0201`)
	assert.ErrorIs(t, sim.Tx(nil, []byte{0}), ErrReadNotAllowed)
}

func TestOpenSelectsDriver(t *testing.T) {
	p, err := Open("", "", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "sim", p.String())
	assert.NoError(t, p.Close())

	_, err = Open(DriverHID, "", zerolog.Nop())
	assert.Error(t, err)

	_, err = Open("serial", "/dev/ttyS0", zerolog.Nop())
	assert.Error(t, err)
}
