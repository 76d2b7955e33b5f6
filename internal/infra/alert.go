package infra

import (
	"go.uber.org/zap"

	"github.com/proctorhq/proctord/internal/domain"
)

// LogSink implements domain.AlertSink by writing structured records to the
// daemon log. Remote delivery backends implement the same interface.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a log-backed alert sink.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Emit writes one alert record.
func (s *LogSink) Emit(rec domain.AlertRecord) error {
	s.logger.Info("violation alert",
		zap.String("session_id", rec.SessionID),
		zap.String("violation_type", rec.ViolationType),
		zap.String("details", rec.Details),
		zap.Int("window_id", rec.WindowInfo.WindowID),
		zap.String("process_name", rec.WindowInfo.ProcessName),
		zap.String("window_title", rec.WindowInfo.WindowTitle),
		zap.Int("window_layer", rec.WindowInfo.WindowLayer),
		zap.Float64("window_width", rec.WindowInfo.Bounds.Width),
		zap.Float64("window_height", rec.WindowInfo.Bounds.Height),
		zap.Bool("on_screen", rec.WindowInfo.IsOnScreen),
		zap.Int("owner_pid", rec.WindowInfo.OwnerPID),
		zap.Int64("timestamp", rec.Timestamp))
	return nil
}

// Ensure LogSink implements domain.AlertSink.
var _ domain.AlertSink = (*LogSink)(nil)

// LoggingObserver implements domain.SessionObserver for headless runs, where
// no UI shell is attached.
type LoggingObserver struct {
	logger *zap.Logger
}

// NewLoggingObserver creates a log-backed session observer.
func NewLoggingObserver(logger *zap.Logger) *LoggingObserver {
	return &LoggingObserver{logger: logger}
}

func (o *LoggingObserver) OnStart(session domain.Session) {
	o.logger.Info("session started", zap.String("session_id", session.ID))
}

func (o *LoggingObserver) OnStop(session domain.Session) {
	o.logger.Info("session stopped", zap.String("session_id", session.ID))
}

func (o *LoggingObserver) OnFail(session domain.Session, reason error) {
	o.logger.Error("session failed to start",
		zap.String("session_id", session.ID),
		zap.Error(reason))
}

func (o *LoggingObserver) OnViolation(session domain.Session, ev domain.ViolationEvent) {
	o.logger.Warn("session violation",
		zap.String("session_id", session.ID),
		zap.String("kind", ev.Kind.String()))
}

// Ensure LoggingObserver implements domain.SessionObserver.
var _ domain.SessionObserver = (*LoggingObserver)(nil)
