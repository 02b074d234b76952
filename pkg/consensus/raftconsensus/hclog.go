package raftconsensus

import (
	"io"
	stdlog "log"

	"github.com/hashicorp/go-hclog"
	log "github.com/sirupsen/logrus"
)

// logrusHCLogger adapts this module's logrus logger to the hclog.Logger
// interface hashicorp/raft's Config.Logger expects.
type logrusHCLogger struct {
	name string
}

func newLogrusHCLogger(name string) hclog.Logger {
	return &logrusHCLogger{name: name}
}

func (l *logrusHCLogger) Log(level hclog.Level, msg string, args ...interface{}) {
	entry := log.WithField("component", l.name)
	switch level {
	case hclog.Trace, hclog.Debug:
		entry.Debug(msg, args)
	case hclog.Warn:
		entry.Warn(msg, args)
	case hclog.Error:
		entry.Error(msg, args)
	default:
		entry.Info(msg, args)
	}
}

func (l *logrusHCLogger) Trace(msg string, args ...interface{}) { l.Log(hclog.Trace, msg, args...) }
func (l *logrusHCLogger) Debug(msg string, args ...interface{}) { l.Log(hclog.Debug, msg, args...) }
func (l *logrusHCLogger) Info(msg string, args ...interface{})  { l.Log(hclog.Info, msg, args...) }
func (l *logrusHCLogger) Warn(msg string, args ...interface{})  { l.Log(hclog.Warn, msg, args...) }
func (l *logrusHCLogger) Error(msg string, args ...interface{}) { l.Log(hclog.Error, msg, args...) }

func (l *logrusHCLogger) IsTrace() bool { return false }
func (l *logrusHCLogger) IsDebug() bool { return false }
func (l *logrusHCLogger) IsInfo() bool  { return true }
func (l *logrusHCLogger) IsWarn() bool  { return true }
func (l *logrusHCLogger) IsError() bool { return true }

func (l *logrusHCLogger) ImpliedArgs() []interface{} { return nil }
func (l *logrusHCLogger) With(args ...interface{}) hclog.Logger {
	return l
}
func (l *logrusHCLogger) Name() string { return l.name }
func (l *logrusHCLogger) Named(name string) hclog.Logger {
	return newLogrusHCLogger(l.name + "." + name)
}
func (l *logrusHCLogger) ResetNamed(name string) hclog.Logger { return newLogrusHCLogger(name) }
func (l *logrusHCLogger) SetLevel(hclog.Level)                {}
func (l *logrusHCLogger) GetLevel() hclog.Level                { return hclog.Info }
func (l *logrusHCLogger) StandardLogger(*hclog.StandardLoggerOptions) *stdlog.Logger {
	return stdlog.New(log.StandardLogger().Out, "", 0)
}
func (l *logrusHCLogger) StandardWriter(*hclog.StandardLoggerOptions) io.Writer {
	return log.StandardLogger().Out
}
