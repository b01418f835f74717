// Package logging writes structured JSON audit events for chart operations.
package logging

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/RowanDark/knitcipher/internal/redact"
)

type EventType string

const (
	EventChartEncrypt  EventType = "chart_encrypt"
	EventChartDecrypt  EventType = "chart_decrypt"
	EventChartIdentify EventType = "chart_identify"
	EventChartSaved    EventType = "chart_saved"
	EventChartDeleted  EventType = "chart_deleted"
	EventChartExported EventType = "chart_exported"
	EventPipeline      EventType = "pipeline_run"
	EventTokenIssue    EventType = "token_issue"
	EventAuthDenied    EventType = "auth_denied"
	EventAPILifecycle  EventType = "api_lifecycle"
)

type Decision string

const (
	DecisionInfo  Decision = "info"
	DecisionAllow Decision = "allow"
	DecisionDeny  Decision = "deny"
)

// AuditEvent is one JSON line of the audit log. Metadata and Reason are
// redacted before they are written. Seq numbers the lines of one log so
// gaps show up when a file is truncated or rotated by hand.
type AuditEvent struct {
	Seq       uint64         `json:"seq"`
	Timestamp time.Time      `json:"timestamp"`
	Component string         `json:"component"`
	RequestID string         `json:"request_id,omitempty"`
	EventType EventType      `json:"event_type"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Decision  Decision       `json:"decision,omitempty"`
	Reason    string         `json:"reason,omitempty"`
}

// Option adjusts where a new AuditLogger writes.
type Option func(*sinkSet) error

type sinkSet struct {
	stdout bool
	extra  []io.Writer
	files  []*os.File
}

// WithWriter mirrors events to w.
func WithWriter(w io.Writer) Option {
	return func(s *sinkSet) error {
		if w == nil {
			return errors.New("audit writer cannot be nil")
		}
		s.extra = append(s.extra, w)
		return nil
	}
}

// WithFile appends events to path, creating it with owner-only permissions.
func WithFile(path string) Option {
	return func(s *sinkSet) error {
		path = strings.TrimSpace(path)
		if path == "" {
			return errors.New("audit file path cannot be empty")
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open audit file: %w", err)
		}
		s.files = append(s.files, f)
		return nil
	}
}

// WithoutStdout stops the default copy of every event on stdout.
func WithoutStdout() Option {
	return func(s *sinkSet) error {
		s.stdout = false
		return nil
	}
}

func (s *sinkSet) writers() []io.Writer {
	out := make([]io.Writer, 0, len(s.extra)+len(s.files)+1)
	if s.stdout {
		out = append(out, os.Stdout)
	}
	out = append(out, s.extra...)
	for _, f := range s.files {
		out = append(out, f)
	}
	return out
}

func (s *sinkSet) closeFiles() error {
	var errs []error
	for _, f := range s.files {
		errs = append(errs, f.Close())
	}
	s.files = nil
	return errors.Join(errs...)
}

// journal is the state shared by a logger and its component children.
type journal struct {
	mu    sync.Mutex
	out   io.Writer
	seq   uint64
	sinks *sinkSet
}

func (j *journal) write(event AuditEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.sinks == nil {
		return errors.New("audit logger is closed")
	}
	j.seq++
	event.Seq = j.seq
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	_, err = j.out.Write(append(line, '\n'))
	return err
}

// AuditLogger emits audit events for one component.
type AuditLogger struct {
	component string
	journal   *journal
	root      bool
}

// NewAuditLogger returns a logger writing to stdout plus whatever the
// options add.
func NewAuditLogger(component string, opts ...Option) (*AuditLogger, error) {
	sinks := &sinkSet{stdout: true}
	for _, opt := range opts {
		if err := opt(sinks); err != nil {
			_ = sinks.closeFiles()
			return nil, err
		}
	}
	writers := sinks.writers()
	if len(writers) == 0 {
		return nil, errors.New("no writers configured for audit logger")
	}
	return &AuditLogger{
		component: component,
		journal:   &journal{out: io.MultiWriter(writers...), sinks: sinks},
		root:      true,
	}, nil
}

func MustNewAuditLogger(component string, opts ...Option) *AuditLogger {
	logger, err := NewAuditLogger(component, opts...)
	if err != nil {
		panic(err)
	}
	return logger
}

// Discard returns a logger that drops every event.
func Discard() *AuditLogger {
	return MustNewAuditLogger("discard", WithoutStdout(), WithWriter(io.Discard))
}

// Close releases the files opened by WithFile. Only the logger returned by
// NewAuditLogger owns them.
func (l *AuditLogger) Close() error {
	if l == nil || !l.root || l.journal == nil {
		return nil
	}
	l.journal.mu.Lock()
	defer l.journal.mu.Unlock()
	if l.journal.sinks == nil {
		return nil
	}
	err := l.journal.sinks.closeFiles()
	l.journal.sinks = nil
	return err
}

// Emit fills in the timestamp, component and decision, redacts the event
// and writes it as one line.
func (l *AuditLogger) Emit(event AuditEvent) error {
	if l == nil || l.journal == nil {
		return errors.New("nil audit logger")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Timestamp = event.Timestamp.UTC()
	if event.Component == "" {
		event.Component = l.component
	}
	if event.Decision == "" {
		event.Decision = DecisionInfo
	}
	event.Reason = redact.String(event.Reason)
	if len(event.Metadata) > 0 {
		event.Metadata = redact.Map(event.Metadata)
	}
	return l.journal.write(event)
}

// WithComponent returns a logger sharing l's writers under another
// component name. Closing the child is a no-op.
func (l *AuditLogger) WithComponent(component string) *AuditLogger {
	if l == nil || l.journal == nil {
		return nil
	}
	return &AuditLogger{component: component, journal: l.journal}
}
