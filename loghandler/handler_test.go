package loghandler

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompactHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, slog.LevelInfo))

	log.Info("round dealt", "tag", "game", "round", 2)
	assert.Regexp(t, `^\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2} INFO \[game\] round dealt round=2\n$`, buf.String())
}

func TestCompactHandlerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, slog.LevelInfo))
	log.Debug("ignored", "tag", "engine")
	assert.Empty(t, buf.String())
}

func TestCompactHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, slog.LevelDebug)).With("tag", "server", "game", "g1")
	log.Warn("move rejected", "seat", 1)
	assert.Contains(t, buf.String(), "WARN [server] move rejected game=g1 seat=1")
}
