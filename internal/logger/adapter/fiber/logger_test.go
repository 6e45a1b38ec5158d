package fiber_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/logger"
	adapter "github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/logger/adapter/fiber"
)

// accessLine is the json access log format.
type accessLine struct {
	RequestID string `json:"request_id"`
	IP        string `json:"IP"`
	Status    int    `json:"status"`
	URI       string `json:"URI"`
	Method    string `json:"method"`
	Host      string `json:"host"`
}

var consoleConfig = adapter.Config{
	Config: logger.Log{
		EnableAccessLogToConsole: true,
		Console:                  logger.Console{Enabled: true},
	},
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		config     adapter.Config
		targetPath string
		requestID  string
		want       *accessLine
	}{
		{
			name:       "nothing enabled no output",
			targetPath: "/",
		},
		{
			name:       "root",
			config:     consoleConfig,
			targetPath: "/",
			want:       &accessLine{IP: "0.0.0.0", Status: 200, URI: "/", Method: fiber.MethodGet, Host: "example.com"},
		},
		{
			name:       "multiple slashes logged unchanged",
			config:     consoleConfig,
			targetPath: "//test",
			want:       &accessLine{IP: "0.0.0.0", Status: 404, URI: "//test", Method: fiber.MethodGet, Host: "example.com"},
		},
		{
			name:       "query kept",
			config:     consoleConfig,
			targetPath: "/?ged=demo&action=show",
			want: &accessLine{
				IP: "0.0.0.0", Status: 200, URI: "/?ged=demo&action=show", Method: fiber.MethodGet, Host: "example.com",
			},
		},
		{
			name:       "request id from header",
			config:     consoleConfig,
			targetPath: "/",
			requestID:  "abc-123",
			want: &accessLine{
				RequestID: "abc-123", IP: "0.0.0.0", Status: 200, URI: "/", Method: fiber.MethodGet, Host: "example.com",
			},
		},
		{
			name: "check alive skipped",
			config: adapter.Config{
				Config: logger.Log{
					EnableAccessLogToConsole: true,
					DisableCheckAlive:        true,
					Console:                  logger.Console{Enabled: true},
				},
				CheckAliveURI: "/",
			},
			targetPath: "/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, header := testMiddlewareHelper(t, tt.targetPath, tt.requestID, tt.config)
			assert.NotEmpty(t, header)

			if tt.want == nil {
				assert.Empty(t, output)
				return
			}

			var got accessLine
			require.NoError(t, json.Unmarshal([]byte(output), &got))

			assert.Equal(t, header, got.RequestID)

			if tt.want.RequestID != "" {
				assert.Equal(t, tt.want.RequestID, got.RequestID)
			}

			got.RequestID = tt.want.RequestID
			assert.Equal(t, *tt.want, got)
		})
	}
}

func testMiddlewareHelper(t *testing.T, targetPath, requestID string, cfg adapter.Config) (string, string) {
	t.Helper()

	stdout := os.Stdout
	stderr := os.Stderr

	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout = w
	os.Stderr = w

	app := fiber.New(fiber.Config{CaseSensitive: true, Immutable: true})
	app.Use(adapter.New(cfg))
	app.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.SendString("hello test")
	})

	req := httptest.NewRequest(fiber.MethodGet, targetPath, nil)
	if requestID != "" {
		req.Header.Set(adapter.HeaderRequestID, requestID)
	}

	resp, err := app.Test(req, -1)

	outC := make(chan string)

	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	_ = w.Close()
	os.Stdout = stdout
	os.Stderr = stderr
	out := <-outC

	require.NoError(t, err)

	return out, resp.Header.Get(adapter.HeaderRequestID)
}
