package logger

import (
	"io"
	"os"

	"github.com/straye-as/projecthub/internal/config"
	"github.com/straye-as/projecthub/internal/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Mode picks how much of each entry is printed
type Mode int

const (
	// ModeCLI prints level, name and message only. Command output owns
	// stdout, so these lines share stderr with prompts and must stay short.
	ModeCLI Mode = iota
	// ModeServer adds timestamps, caller and the app fields for the
	// long-running console gateway
	ModeServer
)

func (m Mode) String() string {
	if m == ModeServer {
		return "console"
	}
	return "cli"
}

// NewLogger creates the structured logger writing to out, or stderr when out
// is nil. JSON is used when asked for or in production; otherwise the
// console encoder shaped by mode.
func NewLogger(cfg *config.LoggingConfig, appCfg *config.AppConfig, out io.Writer, mode Mode) *zap.Logger {
	if out == nil {
		out = os.Stderr
	}

	jsonFormat := cfg.Format == "json" || appCfg.Environment == "production"
	core := zapcore.NewCore(encoder(jsonFormat, mode), zapcore.Lock(zapcore.AddSync(out)), parseLevel(cfg.Level, mode))

	opts := []zap.Option{zap.AddStacktrace(zapcore.ErrorLevel)}
	if jsonFormat || mode == ModeServer {
		opts = append(opts,
			zap.AddCaller(),
			zap.Fields(zap.String("app", appCfg.Name), zap.String("environment", appCfg.Environment)),
		)
	}

	return zap.New(core, opts...).Named(mode.String())
}

func encoder(jsonFormat bool, mode Mode) zapcore.Encoder {
	if jsonFormat {
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	ec := zap.NewDevelopmentEncoderConfig()
	if mode == ModeCLI {
		ec.TimeKey = ""
		ec.CallerKey = ""
		ec.StacktraceKey = ""
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewConsoleEncoder(ec)
}

// parseLevel falls back to warn for commands and info for the gateway
func parseLevel(raw string, mode Mode) zapcore.Level {
	level, err := zapcore.ParseLevel(raw)
	if err == nil {
		return level
	}
	if mode == ModeCLI {
		return zapcore.WarnLevel
	}
	return zapcore.InfoLevel
}

// WithRequest adds request context to logger
func WithRequest(logger *zap.Logger, method, path, requestID string) *zap.Logger {
	fields := []zap.Field{
		zap.String("method", method),
		zap.String("path", path),
	}
	if requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	return logger.With(fields...)
}

// WithMember adds the signed-in member to logger
func WithMember(logger *zap.Logger, m *domain.Member) *zap.Logger {
	if m == nil {
		return logger
	}
	return logger.With(
		zap.Int64("member_id", m.ID),
		zap.String("auth_id", m.AuthID),
		zap.String("role", string(m.Role)),
	)
}
