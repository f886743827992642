package security

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Audit trail for pinetsh sessions.
//
// There is no permission model inside the shell, so the audit log is the
// only record of which commands ran with simulated elevation (sudo). One
// JSON object is written per line.

// AuditEvent represents one audited shell operation
type AuditEvent struct {
	Timestamp  time.Time `json:"timestamp"`   // RFC3339 format
	SystemUser string    `json:"system_user"` // OS username running the process
	ProcessID  int       `json:"process_id"`
	SessionID  string    `json:"session_id"`
	ShellUser  string    `json:"shell_user"` // user inside the simulated node
	EventType  string    `json:"event_type"`
	Resource   string    `json:"resource"` // working directory at dispatch time
	Action     string    `json:"action"`   // command name
	Details    string    `json:"details"`  // raw input line
	Elevated   bool      `json:"elevated"`
	Success    bool      `json:"success"`
}

// Event types
const (
	EventTypeSessionStart = "SESSION_START"
	EventTypeSessionEnd   = "SESSION_END"
	EventTypeCommand      = "COMMAND"
)

// AuditLogger interface defines the contract for audit logging
type AuditLogger interface {
	LogEvent(event AuditEvent) error
	Close() error
}

// NopAuditLogger discards every event
type NopAuditLogger struct{}

func (NopAuditLogger) LogEvent(AuditEvent) error { return nil }
func (NopAuditLogger) Close() error              { return nil }

// FileAuditLogger implements AuditLogger for file-based logging
type FileAuditLogger struct {
	file   *os.File
	mutex  sync.Mutex
	closed bool
}

// NewFileAuditLogger creates a new file-based audit logger
func NewFileAuditLogger(filename string) (*FileAuditLogger, error) {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log file: %w", err)
	}

	return &FileAuditLogger{
		file: file,
	}, nil
}

// LogEvent appends an audit event to the file
func (l *FileAuditLogger) LogEvent(event AuditEvent) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.closed {
		return fmt.Errorf("audit logger is closed")
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	if _, err := l.file.Write(append(jsonData, '\n')); err != nil {
		return fmt.Errorf("failed to write audit event: %w", err)
	}

	return l.file.Sync()
}

// Close closes the audit logger
func (l *FileAuditLogger) Close() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true
	return l.file.Close()
}

// GetCurrentSystemUser returns the current OS username
func GetCurrentSystemUser() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	if user := os.Getenv("USERNAME"); user != "" { // Windows
		return user
	}
	return "unknown"
}

// NewAuditEvent creates an event with process information pre-filled
func NewAuditEvent(eventType, sessionID, shellUser string) AuditEvent {
	return AuditEvent{
		Timestamp:  time.Now().UTC(),
		SystemUser: GetCurrentSystemUser(),
		ProcessID:  os.Getpid(),
		SessionID:  sessionID,
		ShellUser:  shellUser,
		EventType:  eventType,
		Success:    true,
	}
}
