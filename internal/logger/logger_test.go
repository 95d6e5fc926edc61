package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "json", Output: &buf})

	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.WithField("account_id", "abc").Info("hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "abc", entry["account_id"])
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	log := New(Config{Level: "verbose", Output: &bytes.Buffer{}})
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestLogError(t *testing.T) {
	log, hook := test.NewNullLogger()

	LogError(log, "reconcile", "RecalculateAffectedCheckpoints", "update checkpoint", "cp-1", errors.New("boom"))
	LogError(log, "checkpoint", "ListCheckpointsForTimeline", "count transactions", nil, errors.New("timeout"))

	require.Len(t, hook.AllEntries(), 2)

	first := hook.AllEntries()[0]
	assert.Equal(t, logrus.ErrorLevel, first.Level)
	assert.Equal(t, "boom", first.Message)
	assert.Equal(t, "reconcile", first.Data["module"])
	assert.Equal(t, "cp-1", first.Data["data"])

	second := hook.LastEntry()
	_, hasData := second.Data["data"]
	assert.False(t, hasData)
	assert.Equal(t, "count transactions", second.Data["context"])
}
