package kafka

import (
	"testing"
	"time"

	"github.com/IsakLindberger/Weather-Predict-Model/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	md := domain.RunMetadata{
		RunID:      "run-1",
		Stage:      domain.StageClean,
		Status:     domain.StatusSuccess,
		RecordedAt: now,
		Date:       "20240426",
		StationID:  "STATION_001",
		OutputRef:  "processed/weather_cleaned_20240426.csv",
		OutputRows: 24,
	}

	msg, err := serializeToMessage(md)
	require.NoError(t, err)

	assert.Equal(t, []byte("clean"), msg.Key)
	assert.Contains(t, string(msg.Value), `"run_id":"run-1"`)
	assert.Contains(t, string(msg.Value), `"status":"success"`)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "run_id", msg.Headers[0].Key)
	assert.Equal(t, []byte("run-1"), msg.Headers[0].Value)
	assert.Equal(t, "status", msg.Headers[1].Key)
	assert.Equal(t, []byte("success"), msg.Headers[1].Value)
	assert.Equal(t, "recorded_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[2].Value)
}

func TestSerializeToMessage_Violations(t *testing.T) {
	md := domain.RunMetadata{
		RunID:      "run-2",
		Stage:      domain.StageClean,
		Status:     domain.StatusContractViolation,
		RecordedAt: time.Date(2024, 4, 26, 16, 0, 0, 0, time.UTC),
		Violations: []string{"temperature: value 200 out of range [-60, 60] (row 3)"},
	}

	msg, err := serializeToMessage(md)
	require.NoError(t, err)

	assert.Contains(t, string(msg.Value), "out of range")
	assert.Equal(t, []byte("contract_violation"), msg.Headers[1].Value)
}
