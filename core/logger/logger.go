package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/m3rciful/reviewbot/core/buildinfo"
	coreconfig "github.com/m3rciful/reviewbot/core/config"
)

const writerBuffer = 64 * 1024

var (
	initOnce sync.Once
	closeMu  sync.Mutex
	closed   bool

	sink    *asyncWriter
	files   []io.Closer
	level   slog.LevelVar
	sampler = newRatioSampler(1, 50)
	trace   bool

	// L is the root logger. It stays nil until InitLogger runs.
	L *slog.Logger

	// TG logs Telegram transport events.
	TG *slog.Logger
	// TWire logs handler and command registration.
	TWire *slog.Logger
	// DB logs database connection events.
	DB *slog.Logger
	// MIG logs journal schema migrations.
	MIG *slog.Logger
)

// settings is the logging section of the config after defaults are applied.
type settings struct {
	level    slog.Level
	format   logFormat
	profile  string
	keyOrder []string
	sampleN  int
	sampleD  int
	filePath string
}

func resolveSettings(cfg *coreconfig.Config) settings {
	s := settings{
		level:    slog.LevelInfo,
		format:   formatJSON,
		profile:  "prod",
		keyOrder: slices.Clone(defaultKeyOrder),
		sampleN:  1,
		sampleD:  50,
	}
	if cfg == nil {
		return s
	}
	lc := cfg.Logging

	if p := strings.ToLower(strings.TrimSpace(lc.Profile)); p != "" {
		s.profile = p
	}
	switch strings.ToLower(strings.TrimSpace(lc.Level)) {
	case "debug":
		s.level = slog.LevelDebug
	case "warn", "warning":
		s.level = slog.LevelWarn
	case "error":
		s.level = slog.LevelError
	}
	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		s.format = formatKV
	case "json":
	default:
		if s.profile == "debug" || s.profile == "dev" {
			s.format = formatKV
		}
	}
	if raw := strings.TrimSpace(lc.KeysOrder); raw != "" && raw != "default" {
		keys := lo.Compact(lo.Map(strings.Split(raw, ","), func(k string, _ int) string {
			return strings.TrimSpace(k)
		}))
		if len(keys) > 0 {
			s.keyOrder = keys
		}
	}
	if spec := strings.TrimSpace(lc.DebugSample); spec != "" {
		switch n, d := parseRatioSpec(spec); {
		case n == 0 && d == 0:
			s.sampleN, s.sampleD = 0, 0
		case n > 0 && d > 0:
			s.sampleN, s.sampleD = n, d
		}
	}
	if dir, file := strings.TrimSpace(lc.Dir), strings.TrimSpace(lc.BotFile); dir != "" && file != "" {
		s.filePath = filepath.Join(dir, file)
	}
	return s
}

// InitLogger configures the global structured logger. Only the first call has an effect.
func InitLogger(cfg *coreconfig.Config) error {
	initOnce.Do(func() {
		s := resolveSettings(cfg)
		level.Set(s.level)
		sampler.Set(s.sampleN, s.sampleD)
		trace = truthy(os.Getenv("TRACE")) || truthy(os.Getenv("LOG_TRACE"))

		outputs := []io.Writer{os.Stdout}
		if s.filePath != "" {
			f, err := openLogFile(s.filePath)
			if err != nil {
				// The root logger does not exist yet.
				log.Printf("logger: %v", err)
			} else {
				outputs = append(outputs, f)
				files = append(files, f)
			}
		}
		sink = newAsyncWriter(outputs, writerBuffer)

		L = slog.New(newStructuredHandler(handlerConfig{
			level:    &level,
			writer:   sink,
			format:   s.format,
			keyOrder: s.keyOrder,
		}))
		slog.SetDefault(L)

		TG = L.With("component", "tg")
		TWire = L.With("component", "tg.wire")
		DB = L.With("component", "db")
		MIG = L.With("component", "db.migrate")

		build := buildinfo.Current()
		LogEvent(context.Background(), L.With("component", "app"), slog.LevelInfo, "startup",
			slog.String("go_version", runtime.Version()),
			slog.String("build_version", build.Version),
			slog.String("build_commit", build.Commit),
			slog.String("build_time", build.Date),
			slog.String("cfg_profile", s.profile),
		)
	})
	return nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// Shutdown drains the async writer and closes the log file. Later calls are no-ops.
func Shutdown() error {
	closeMu.Lock()
	defer closeMu.Unlock()
	if closed {
		return nil
	}
	closed = true

	var errs []error
	if sink != nil {
		errs = append(errs, sink.Flush(), sink.Close())
	}
	for _, f := range files {
		errs = append(errs, f.Close())
	}
	return errors.Join(errs...)
}

// ShouldSampleDebug gates high-volume debug lines; TRACE=1 lets all of them through.
func ShouldSampleDebug() bool {
	return trace || sampler.Allow()
}

func truthy(v string) bool {
	return lo.Contains([]string{"1", "true", "on", "yes"}, strings.ToLower(strings.TrimSpace(v)))
}
