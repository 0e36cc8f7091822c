package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Actor (matches internal/middleware/session.go keys)
	FieldSessionID = "session_id"
	FieldUserID    = "user_id"

	// Backend calls
	FieldBackendHost = "backend_host"
	FieldChatID      = "chat_id"
	FieldMessageID   = "message_id"

	// Service
	FieldService = "service"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
