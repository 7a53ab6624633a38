package tabgo

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/hupe1980/tabgo/trace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bufferLogger(buf *bytes.Buffer) *Logger {
	return NewLogger(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLoggerHelpers(t *testing.T) {
	var buf bytes.Buffer
	l := bufferLogger(&buf)

	l.LogTableCreated("orders")
	l.LogRestore("orders", "x.tdump", 4, errors.New("bad"))
	l.WithTable("orders").Info("hello")

	out := buf.String()
	assert.Contains(t, out, "table created")
	assert.Contains(t, out, "restore failed")
	assert.Contains(t, out, "source=x.tdump")
	assert.Contains(t, out, "msg=hello table=orders")
}

func TestRegistryLogsLifecycle(t *testing.T) {
	var buf bytes.Buffer
	reg := NewRegistry(WithLogger(bufferLogger(&buf)))
	v, err := reg.Open("orders")
	require.NoError(t, err)
	rows, err := v.AddRows(1)
	require.NoError(t, err)
	cols, err := v.AddColumns(1)
	require.NoError(t, err)

	_, err = v.Trace(trace.Spec{Ops: trace.Write}, func(trace.Event) error { return errors.New("boom") })
	require.NoError(t, err)
	require.NoError(t, v.SetText(rows[0], cols[0], "x"))
	require.NoError(t, v.Close())

	out := buf.String()
	assert.Contains(t, out, "table created")
	assert.Contains(t, out, "callback failed")
	assert.Contains(t, out, "error=boom")
	assert.Contains(t, out, "table destroyed")
}

func TestNoopLoggerDiscards(t *testing.T) {
	reg := NewRegistry(WithLogger(nil))
	v, err := reg.Open("t")
	require.NoError(t, err)
	assert.NoError(t, v.Close())
}
