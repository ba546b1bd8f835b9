package api_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/alkime/voiceover/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_Decode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{name: "rfc3339", in: `"2026-10-18T09:30:00Z"`, want: time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)},
		{name: "offset", in: `"2026-10-18T11:30:00+02:00"`, want: time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)},
		{name: "naive micros", in: `"2026-10-18T09:30:00.123456"`, want: time.Date(2026, 10, 18, 9, 30, 0, 123456000, time.UTC)},
		{name: "naive seconds", in: `"2026-10-18T09:30:00"`, want: time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)},
		{name: "null", in: `null`, want: time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts api.Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.in), &ts))
			assert.True(t, tt.want.Equal(ts.Time), "got %s", ts.Time)
		})
	}
}

func TestTimestamp_DecodeInvalid(t *testing.T) {
	var ts api.Timestamp
	assert.ErrorContains(t, json.Unmarshal([]byte(`"yesterday"`), &ts), "invalid timestamp")
}

func TestProjectSummary_DecodesServerRecord(t *testing.T) {
	body := `{"id":7,"title":"Ch. 1","status":"completed","voice_id":null,` +
		`"audio_url":"/projects/7/audio","error_message":null,` +
		`"created_at":"2026-10-18T09:30:00.5","updated_at":"2026-10-18T09:31:00"}`

	var p api.ProjectSummary
	require.NoError(t, json.Unmarshal([]byte(body), &p))

	assert.Equal(t, int64(7), p.ID)
	assert.Nil(t, p.VoiceID)
	assert.True(t, p.HasAudio())
	assert.Equal(t, 2026, p.CreatedAt.Year())

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"updated_at":"2026-10-18T09:31:00Z"`)
}
