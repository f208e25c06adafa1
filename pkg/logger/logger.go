// Package logger builds the zerolog loggers used across surrealfocus.
//
// A LogBuild collects output targets and options and Make produces a
// LogData holding the configured zerolog.Logger. Components derive
// sub-loggers with Component so every line carries the emitting part of the
// system (reconciler, scheduler, http, ...).
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const (
	permission = 0664
)

type LogBuild struct {
	writer     io.Writer
	path       string
	level      zerolog.Level
	console    bool
	LogChannel chan string
}

type LogData struct {
	writer     io.Writer
	LogFile    *os.File
	Logger     zerolog.Logger
	LogChannel chan string
}

func New() *LogBuild {
	return &LogBuild{level: zerolog.InfoLevel}
}

func (build *LogBuild) FromPath(path string) *LogBuild {
	build.path = path
	return build
}

func (build *LogBuild) FromBuffer(w io.Writer) *LogBuild {
	build.writer = w
	return build
}

// FromChannel mirrors every log line, as JSON, onto chn.
// Lines are dropped when chn is full.
func (build *LogBuild) FromChannel(chn chan string) *LogBuild {
	build.LogChannel = chn
	return build
}

// WithLevel sets the minimum level. Unknown names keep the default (info).
func (build *LogBuild) WithLevel(level string) *LogBuild {
	if lvl, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil && level != "" {
		build.level = lvl
	}
	return build
}

// Console switches to human readable output.
func (build *LogBuild) Console(enabled bool) *LogBuild {
	build.console = enabled
	return build
}

func (build *LogBuild) Make() (logData *LogData, err error) {
	logData = new(LogData)
	logData.writer = os.Stdout
	if build.writer != nil {
		logData.writer = build.writer
	}
	logData.LogChannel = build.LogChannel
	if build.path != "" {
		logData.LogFile, err = os.OpenFile(build.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, err
		}
		logData.writer = zerolog.SyncWriter(logData.LogFile)
	}

	out := logData.writer
	if build.console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}
	if logData.LogChannel != nil {
		out = zerolog.MultiLevelWriter(out, channelWriter(logData.LogChannel))
	}

	logData.Logger = zerolog.New(out).Level(build.level).With().Timestamp().Logger()
	return
}

// Close releases the log file, if one was opened.
func (logData *LogData) Close() error {
	if logData.LogFile != nil {
		return logData.LogFile.Close()
	}
	return nil
}

// Component returns a sub-logger tagged with the component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

type channelWriter chan string

func (c channelWriter) Write(p []byte) (int, error) {
	select {
	case c <- strings.TrimRight(string(p), "\n"):
	default:
	}
	return len(p), nil
}
