package security

import (
	"go.uber.org/zap"
)

// AuditManager records the audit trail of one shell session
type AuditManager struct {
	logger    AuditLogger
	sessionID string
	shellUser string
	log       *zap.Logger
}

// NewAuditManager binds logger to a session. A nil logger discards events.
func NewAuditManager(logger AuditLogger, sessionID, shellUser string, log *zap.Logger) *AuditManager {
	if logger == nil {
		logger = NopAuditLogger{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AuditManager{
		logger:    logger,
		sessionID: sessionID,
		shellUser: shellUser,
		log:       log,
	}
}

// CreateAuditManagerFromConfig opens the audit log at path, or discards events when path is empty
func CreateAuditManagerFromConfig(path, sessionID, shellUser string, log *zap.Logger) (*AuditManager, error) {
	if path == "" {
		return NewAuditManager(nil, sessionID, shellUser, log), nil
	}

	logger, err := NewFileAuditLogger(path)
	if err != nil {
		return nil, err
	}
	return NewAuditManager(logger, sessionID, shellUser, log), nil
}

// SessionStarted logs the start of the session
func (m *AuditManager) SessionStarted(cwd string) {
	event := NewAuditEvent(EventTypeSessionStart, m.sessionID, m.shellUser)
	event.Resource = cwd
	m.write(event)
}

// CommandExecuted logs one dispatched command
func (m *AuditManager) CommandExecuted(cwd, command, line string, elevated, success bool) {
	event := NewAuditEvent(EventTypeCommand, m.sessionID, m.shellUser)
	event.Resource = cwd
	event.Action = command
	event.Details = line
	event.Elevated = elevated
	event.Success = success
	m.write(event)
}

// Close logs the end of the session and releases the underlying logger
func (m *AuditManager) Close() error {
	m.write(NewAuditEvent(EventTypeSessionEnd, m.sessionID, m.shellUser))
	return m.logger.Close()
}

func (m *AuditManager) write(event AuditEvent) {
	if err := m.logger.LogEvent(event); err != nil {
		m.log.Warn("audit event dropped",
			zap.String("session", m.sessionID),
			zap.String("event_type", event.EventType),
			zap.Error(err),
		)
	}
}
