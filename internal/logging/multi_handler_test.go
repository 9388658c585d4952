package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMultiHandlerFansOutByLevel(t *testing.T) {
	var infoBuf, errBuf bytes.Buffer
	info := slog.NewTextHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
	errs := slog.NewTextHandler(&errBuf, &slog.HandlerOptions{Level: slog.LevelError})

	log := slog.New(NewMultiHandler(info, errs)).With("incident_id", "inc-9")
	log.Info("opened")
	log.Error("failed")

	assert.Contains(t, infoBuf.String(), "msg=opened")
	assert.Contains(t, infoBuf.String(), "msg=failed")
	assert.Contains(t, infoBuf.String(), "incident_id=inc-9")
	assert.NotContains(t, errBuf.String(), "opened")
	assert.Contains(t, errBuf.String(), "msg=failed")
}
