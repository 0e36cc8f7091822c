package audit

import (
	"context"

	"github.com/manglemix/pony-express/pkg/log"
)

// Audit actions for the web client.
const (
	ActionLogin         = "session.login"
	ActionLoginFailed   = "session.login_failed"
	ActionRegister      = "session.register"
	ActionLogout        = "session.logout"
	ActionMessageSend   = "message.send"
	ActionMessageEdit   = "message.edit"
	ActionMessageDelete = "message.delete"
)

// Field constants for audit entries.
const (
	FieldAction   = "action"
	FieldTargetID = "target_id"
	FieldDetail   = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, sessionID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldSessionID, sessionID).
		Msg(msg)
}

// LogTarget emits an audit entry about a specific entity, such as a message.
func LogTarget(ctx context.Context, action string, sessionID string, targetID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldSessionID, sessionID).
		Str(FieldTargetID, targetID).
		Msg(msg)
}

// LogWithDetail emits an audit log with extra detail field.
func LogWithDetail(ctx context.Context, action string, sessionID string, detail string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldSessionID, sessionID).
		Str(FieldDetail, detail).
		Msg(msg)
}
