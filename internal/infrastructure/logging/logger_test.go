package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	for _, backend := range []string{"zap", "zerolog"} {
		t.Run(backend, func(t *testing.T) {
			logger, err := NewLogger(&LoggerConfig{Encoding: "json", Level: "error", Logger: backend})
			require.NoError(t, err)
			assert.NotPanics(t, func() {
				logger.Info(Breakout, RoomLifecycle, "rooms created", map[ExtraKey]any{MeetingID: "m1"})
			})
		})
	}

	_, err := NewLogger(&LoggerConfig{Logger: "logrus"})
	assert.ErrorContains(t, err, `"logrus" not supported`)
}
