package resources

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	otelog "go.opentelemetry.io/otel/log"
)

func TestZerologHook(t *testing.T) {
	t.Parallel()

	hook := NewZerologHook("event-reminder", "1.0")

	t.Run("levels", func(t *testing.T) {
		t.Parallel()

		sev, text := hook.zerologLevelToOTel(zerolog.WarnLevel)
		assert.Equal(t, otelog.SeverityWarn, sev)
		assert.Equal(t, "WARN", text)

		sev, text = hook.zerologLevelToOTel(zerolog.NoLevel)
		assert.Equal(t, otelog.SeverityInfo, sev)
		assert.Equal(t, "INFO", text)
	})

	t.Run("attributes skip the reserved fields", func(t *testing.T) {
		t.Parallel()

		kvs := hook.mapToAttrs(map[string]any{
			"time":     "2026-10-18T10:00:00Z",
			"level":    "info",
			"message":  "sent",
			"event_id": "uuid-1",
			"due":      float64(2),
		})

		keys := map[string]otelog.Value{}
		for _, kv := range kvs {
			keys[kv.Key] = kv.Value
		}

		assert.NotContains(t, keys, "time")
		assert.NotContains(t, keys, "message")
		assert.Equal(t, "event-reminder", keys["service.name"].AsString())
		assert.Equal(t, "uuid-1", keys["event_id"].AsString())
		assert.Equal(t, int64(2), keys["due"].AsInt64())
	})

	t.Run("timestamp", func(t *testing.T) {
		t.Parallel()

		ts := hook.extractTimestamp(map[string]any{"time": "2026-10-18T10:00:00Z"})
		assert.True(t, ts.Equal(time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)))

		assert.WithinDuration(t, time.Now(), hook.extractTimestamp(map[string]any{}), time.Minute)
	})
}
