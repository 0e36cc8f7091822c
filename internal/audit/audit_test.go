package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/manglemix/pony-express/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, fn func(ctx context.Context)) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	ctx := log.WithLogger(context.Background(), log.NewWithWriter(log.Config{}, &buf))

	fn(ctx)

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestLogTarget(t *testing.T) {
	entry := capture(t, func(ctx context.Context) {
		LogTarget(ctx, ActionMessageDelete, "s1", "7", "message updated")
	})

	assert.Equal(t, log.LogTypeAudit, entry[log.FieldLogType])
	assert.Equal(t, ActionMessageDelete, entry[FieldAction])
	assert.Equal(t, "s1", entry[log.FieldSessionID])
	assert.Equal(t, "7", entry[FieldTargetID])
}

func TestLogWithDetail(t *testing.T) {
	entry := capture(t, func(ctx context.Context) {
		LogWithDetail(ctx, ActionLoginFailed, "s1", "pony", "login rejected by backend")
	})

	assert.Equal(t, ActionLoginFailed, entry[FieldAction])
	assert.Equal(t, "pony", entry[FieldDetail])
	assert.Equal(t, "login rejected by backend", entry["message"])
}
