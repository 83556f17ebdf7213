package logger

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Run fn with stdout and stderr redirected to pipes and return what was written
func capture(t *testing.T, fn func()) (stdout string, stderr string) {
	t.Helper()

	origOut, origErr := os.Stdout, os.Stderr
	defer func() { os.Stdout, os.Stderr = origOut, origErr }()

	rOut, wOut, err := os.Pipe()
	require.NoError(t, err, "failed to create stdout pipe")
	rErr, wErr, err := os.Pipe()
	require.NoError(t, err, "failed to create stderr pipe")

	os.Stdout, os.Stderr = wOut, wErr

	fn()

	require.NoError(t, wOut.Close())
	require.NoError(t, wErr.Close())

	outBytes, err := io.ReadAll(rOut)
	require.NoError(t, err, "failed to read stdout pipe")
	errBytes, err := io.ReadAll(rErr)
	require.NoError(t, err, "failed to read stderr pipe")

	return string(outBytes), string(errBytes)
}

func TestLogger_parseLevel(t *testing.T) {
	t.Run("known levels in any case", func(t *testing.T) {
		expected := map[string]slog.Level{
			LevelDebug: slog.LevelDebug,
			LevelInfo:  slog.LevelInfo,
			LevelWarn:  slog.LevelWarn,
			LevelError: slog.LevelError,
		}

		for name, level := range expected {
			for _, input := range []string{name, strings.ToUpper(name)} {
				got, err := parseLevel(input)

				require.NoError(t, err, "level %q should be parsed", input)
				require.Equal(t, level, got)
			}
		}
	})

	t.Run("unknown levels fail", func(t *testing.T) {
		for _, input := range []string{"", "verbose", "trace"} {
			_, err := parseLevel(input)
			require.Error(t, err, "level %q must not be parsed", input)
		}
	})
}

func TestLogger_New(t *testing.T) {
	t.Run("dev env writes text", func(t *testing.T) {
		_, stderr := capture(t, func() {
			l, err := New(EnvDevelopment, LevelInfo)
			require.NoError(t, err)

			l.Info("token refreshed", "profile", "default")
		})

		require.Contains(t, stderr, "token refreshed")
		require.Contains(t, stderr, "profile=default")
	})

	t.Run("prod env writes json", func(t *testing.T) {
		_, stderr := capture(t, func() {
			l, err := New(EnvProduction, LevelInfo)
			require.NoError(t, err)

			l.Info("token refreshed", "profile", "default")
		})

		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(stderr), &entry), "prod log line should be valid JSON")
		require.Equal(t, "token refreshed", entry["msg"])
		require.Equal(t, "default", entry["profile"])
		require.Equal(t, "INFO", entry["level"])

		source, ok := entry["source"].(map[string]any)
		require.True(t, ok, "source should be attached")
		require.Equal(t, "logger_test.go", source["file"], "source must point to the caller, not the wrapper")
	})

	t.Run("unknown env fails", func(t *testing.T) {
		_, err := New("staging", LevelInfo)
		require.Error(t, err)
	})

	t.Run("unknown level fails", func(t *testing.T) {
		_, err := New(EnvDevelopment, "loud")
		require.Error(t, err)
	})
}

func TestLogger_NewNoOpLogger(t *testing.T) {
	stdout, stderr := capture(t, func() {
		l := NewNoOpLogger()
		l.Debug("debug message")
		l.Info("info message")
		l.Warn("warn message")
		l.Error("error message")
	})

	require.Empty(t, stdout, "NoOp logger should not write to stdout")
	require.Empty(t, stderr, "NoOp logger should not write to stderr")
}

func TestLogger_Levels(t *testing.T) {
	logAll := func(l Logger) {
		l.Debug("d")
		l.Info("i")
		l.Warn("w")
		l.Error("e")
	}

	tests := []struct {
		level   string
		written []string
		skipped []string
	}{
		{LevelDebug, []string{"DEBUG", "INFO", "WARN", "ERROR"}, nil},
		{LevelInfo, []string{"INFO", "WARN", "ERROR"}, []string{"DEBUG"}},
		{LevelWarn, []string{"WARN", "ERROR"}, []string{"DEBUG", "INFO"}},
		{LevelError, []string{"ERROR"}, []string{"DEBUG", "INFO", "WARN"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			stdout, stderr := capture(t, func() {
				l, err := NewTextLogger(tt.level)
				require.NoError(t, err)
				logAll(l)
			})

			require.Empty(t, stdout, "logger should not write to stdout")
			for _, lvl := range tt.written {
				require.Contains(t, stderr, "level="+lvl)
			}
			for _, lvl := range tt.skipped {
				require.NotContains(t, stderr, "level="+lvl)
			}
		})
	}
}

func TestLogger_WithAndGroup(t *testing.T) {
	_, stderr := capture(t, func() {
		l, err := NewTextLogger(LevelInfo)
		require.NoError(t, err)

		l.With("component", "session").WithGroup("request").Info("retrying", "attempt", 2)
	})

	require.Contains(t, stderr, "component=session")
	require.Contains(t, stderr, "request.attempt=2")
	require.Contains(t, stderr, "retrying")
}
