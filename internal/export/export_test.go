package export

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"waitroom/internal/models"
)

func sampleResult() models.GoNoGoResult {
	return models.GoNoGoResult{
		UserID:            "anonymous",
		GameType:          models.GoNoGoGameType,
		Timestamp:         time.Date(2025, 6, 1, 9, 30, 0, 125000000, time.UTC),
		RoundsTotal:       10,
		RoundsCompleted:   10,
		AvgReactionTimeMs: 312,
		AccuracyRate:      0.88,
		FalseClicks:       2,
		Hits:              7,
		Misses:            1,
		ReactionTimesMs:   []int{290, 301, 355, 280, 330, 312, 316},
	}
}

func TestEncodeJSON(t *testing.T) {
	data, err := Encode(sampleResult(), "")
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))

	for _, key := range []string{
		"user_id", "game_type", "timestamp", "rounds_total", "rounds_completed",
		"avg_reaction_time_ms", "accuracy_rate", "false_clicks", "hits", "misses", "reaction_times_ms",
	} {
		assert.Contains(t, fields, key)
	}
	assert.Equal(t, "2025-06-01T09:30:00.125Z", fields["timestamp"])
	assert.Equal(t, models.GoNoGoGameType, fields["game_type"])
	assert.Len(t, fields["reaction_times_ms"], 7)
}

func TestEncodeYAML(t *testing.T) {
	data, err := Encode(sampleResult(), "YAML")
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, yaml.Unmarshal(data, &fields))
	assert.Equal(t, "anonymous", fields["user_id"])
	assert.Equal(t, 0.88, fields["accuracy_rate"])
	assert.Contains(t, string(data), "reaction_times_ms:")
}

func TestEncodeUnsupportedFormat(t *testing.T) {
	_, err := Encode(sampleResult(), "xml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json; charset=utf-8", ContentType(""))
	assert.Equal(t, "application/yaml; charset=utf-8", ContentType("yml"))
}
