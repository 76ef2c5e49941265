package logger_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/yoanbernabeu/sshdeploy/internal/logger"
	"go.uber.org/zap"
)

func TestFromContext(t *testing.T) {
	devLog, err := zap.NewDevelopment()
	if err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		name   string
		logger *zap.Logger
		want   *zap.Logger
	}{
		{
			name:   "has logger",
			logger: devLog,
			want:   devLog,
		},
		{
			name:   "no logger",
			logger: nil,
			want:   zap.NewNop(),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			if tc.logger != nil {
				ctx = logger.NewContext(ctx, tc.logger)
			}

			got := logger.FromContext(ctx)
			if tc.logger != nil && got != tc.want {
				t.Errorf("FromContext() = %p, want %p", got, tc.want)
			}
			if tc.logger == nil && got.Core().Enabled(zap.ErrorLevel) {
				t.Error("FromContext() without a logger should return a no-op logger")
			}
		})
	}
}

func TestFromContext_Nil(t *testing.T) {
	//nolint:staticcheck // a nil context must not panic
	if got := logger.FromContext(nil); got.Core().Enabled(zap.ErrorLevel) {
		t.Error("FromContext(nil) should return a no-op logger")
	}
}

func TestForServer(t *testing.T) {
	tests := []struct {
		name   string
		server string
	}{
		{"named server", "prod"},
		{"ad-hoc host", "dev@10.0.0.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			ctx := logger.NewContext(context.Background(), logger.New(&buf, false))

			logger.ForServer(ctx, tt.server).Info("connecting")

			want := `"server": "` + tt.server + `"`
			if out := buf.String(); !strings.Contains(out, "connecting") || !strings.Contains(out, want) {
				t.Errorf("output %q missing %s", out, want)
			}
		})
	}
}

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		wantDebug bool
	}{
		{"default", false, false},
		{"verbose", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := logger.New(&buf, tt.verbose)
			log.Debug("debug entry")
			log.Info("info entry", zap.String("server", "prod"))

			out := buf.String()
			if got := strings.Contains(out, "debug entry"); got != tt.wantDebug {
				t.Errorf("debug emitted = %v, want %v (output %q)", got, tt.wantDebug, out)
			}
			if !strings.Contains(out, "info entry") || !strings.Contains(out, `"server": "prod"`) {
				t.Errorf("info entry missing from %q", out)
			}
		})
	}
}
