package utilities

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/antonio-alexander/go-org-directory/internal"

	"github.com/rs/zerolog"
)

type Level int

const (
	Error Level = 1
	Info  Level = 2
	Debug Level = 3
	Trace Level = 4
)

func (l Level) String() string {
	switch l {
	default:
		return ""
	case Error:
		return "error"
	case Info:
		return "info"
	case Debug:
		return "debug"
	case Trace:
		return "trace"
	}
}

func (l Level) zerologLevel() zerolog.Level {
	switch l {
	default:
		return zerolog.ErrorLevel
	case Info:
		return zerolog.InfoLevel
	case Debug:
		return zerolog.DebugLevel
	case Trace:
		return zerolog.TraceLevel
	}
}

type Logger interface {
	Error(ctx context.Context, format string, v ...any)
	Info(ctx context.Context, format string, v ...any)
	Debug(ctx context.Context, format string, v ...any)
	Trace(ctx context.Context, format string, v ...any)
}

type logger struct {
	sync.RWMutex
	writer io.Writer
	zl     zerolog.Logger
	config struct {
		level  Level
		format string
	}
}

func atoLogLevel(a string) Level {
	switch strings.ToLower(strings.TrimSpace(a)) {
	default:
		return Error
	case "info":
		return Info
	case "debug":
		return Debug
	case "trace":
		return Trace
	}
}

// NewLogger creates a logger writing to stdout, or to the first io.Writer
// found in parameters. It logs errors only until configured.
func NewLogger(parameters ...any) interface {
	internal.Configurer
	Logger
} {
	l := &logger{writer: os.Stdout}
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case io.Writer:
			l.writer = p
		}
	}
	l.config.level = Error
	l.config.format = "json"
	l.build()
	return l
}

func (l *logger) build() {
	var writer io.Writer = l.writer

	if l.config.format == "console" {
		writer = zerolog.ConsoleWriter{Out: l.writer, NoColor: true}
	}
	l.zl = zerolog.New(writer).
		Level(l.config.level.zerologLevel()).
		With().
		Timestamp().
		Logger()
}

func (l *logger) Configure(envs map[string]string) error {
	l.Lock()
	defer l.Unlock()

	l.config.level = Error
	if logLevel, ok := envs["LOG_LEVEL"]; ok {
		l.config.level = atoLogLevel(logLevel)
	}
	if logFormat, ok := envs["LOG_FORMAT"]; ok {
		switch logFormat = strings.ToLower(logFormat); logFormat {
		default:
			return fmt.Errorf("unsupported log format: %s", logFormat)
		case "json", "console":
			l.config.format = logFormat
		}
	}
	l.build()
	return nil
}

func (l *logger) log(ctx context.Context, level Level, format string, v ...any) {
	l.RLock()
	defer l.RUnlock()

	event := l.zl.WithLevel(level.zerologLevel())
	if event == nil {
		return
	}
	if correlationId := internal.CorrelationIdFromCtx(ctx); correlationId != "" {
		event = event.Str("correlation_id", correlationId)
	}
	event.Msg(strings.TrimSuffix(fmt.Sprintf(format, v...), "\n"))
}

func (l *logger) Error(ctx context.Context, format string, v ...any) {
	l.log(ctx, Error, format, v...)
}

func (l *logger) Info(ctx context.Context, format string, v ...any) {
	l.log(ctx, Info, format, v...)
}

func (l *logger) Debug(ctx context.Context, format string, v ...any) {
	l.log(ctx, Debug, format, v...)
}

func (l *logger) Trace(ctx context.Context, format string, v ...any) {
	l.log(ctx, Trace, format, v...)
}
