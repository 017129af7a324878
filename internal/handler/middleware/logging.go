package middleware

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"bookstore-choreography/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	HeaderRequestID      = "X-Request-ID"
	HeaderIdempotencyKey = "Idempotency-Key"

	requestIDKey = "request_id"
)

// Logger owns the process-wide slog logger and the rotating file behind it.
type Logger struct {
	slog   *slog.Logger
	closer io.Closer
}

// NewLogger logs JSON in release mode and text otherwise, to stdout and to
// cfg.File when set. The result also becomes slog's default.
func NewLogger(cfg config.LogConfig) *Logger {
	out, closer := logOutput(cfg)
	l := newLogger(cfg, out)
	l.closer = closer
	slog.SetDefault(l.slog)
	return l
}

func newLogger(cfg config.LogConfig, out io.Writer) *Logger {
	opts := &slog.HandlerOptions{
		Level:       parseLevel(cfg.Level),
		ReplaceAttr: localTimestamps(cfg),
	}
	var h slog.Handler = slog.NewTextHandler(out, opts)
	if gin.Mode() == gin.ReleaseMode {
		h = slog.NewJSONHandler(out, opts)
	}
	return &Logger{slog: slog.New(h)}
}

func logOutput(cfg config.LogConfig) (io.Writer, io.Closer) {
	if cfg.File == "" {
		return os.Stdout, nil
	}
	file := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}
	return io.MultiWriter(os.Stdout, file), file
}

// Unknown levels fall back to info.
func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}

func localTimestamps(cfg config.LogConfig) func([]string, slog.Attr) slog.Attr {
	zone := time.FixedZone(cfg.TimeZone, cfg.TimeZoneOffset)
	return func(_ []string, a slog.Attr) slog.Attr {
		if a.Key != slog.TimeKey {
			return a
		}
		if t, ok := a.Value.Any().(time.Time); ok {
			a.Value = slog.StringValue(t.In(zone).Format(cfg.TimeFormat))
		}
		return a
	}
}

func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// RequestLog tags every request with an X-Request-ID, echoing the caller's
// when present, and writes one line per finished request. Retried payment
// submissions carry their Idempotency-Key into the line.
func (l *Logger) RequestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(HeaderRequestID, id)

		c.Next()

		status := c.Writer.Status()
		attrs := []slog.Attr{
			slog.String("request_id", id),
			slog.String("method", c.Request.Method),
			slog.String("route", routeOf(c)),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		}
		if key := c.GetHeader(HeaderIdempotencyKey); key != "" {
			attrs = append(attrs, slog.String("idempotency_key", key))
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}
		l.slog.LogAttrs(c.Request.Context(), levelFor(status), "http request", attrs...)
	}
}

// routeOf prefers the registered pattern so /orders/1 and /orders/2 share a value.
func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return c.Request.URL.Path
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func GetRequestID(c *gin.Context) string {
	id, _ := c.Get(requestIDKey)
	s, _ := id.(string)
	return s
}
