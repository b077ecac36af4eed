package report

import (
	"aintranet-backend/config"
	"aintranet-backend/utils"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/avast/retry-go/v4"
)

var (
	ErrCapture         = errors.New("failed to capture report")
	ErrCaptureDisabled = errors.New("report capture endpoint not configured")
)

type captureRequest struct {
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	WaitMs   int64  `json:"wait_ms"`
	FullPage bool   `json:"full_page"`
}

// Client 调用无头浏览器渲染服务截取报表
type Client struct {
	cfg        config.ReportConfig
	httpClient *http.Client
}

func NewClient(cfg config.ReportConfig) *Client {
	cfg = cfg.WithDefaults()
	return &Client{
		cfg:        cfg,
		httpClient: utils.NewHTTPClient(utils.WithTimeout(cfg.Timeout)),
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.cfg.CaptureEndpoint != ""
}

// Capture 返回截图的 base64 编码（不带 data URI 前缀）
func (c *Client) Capture(ctx context.Context, embedURL string) (string, error) {
	if !c.Enabled() {
		return "", ErrCaptureDisabled
	}

	body, err := json.Marshal(captureRequest{
		URL:    embedURL,
		Width:  c.cfg.Width,
		Height: c.cfg.Height,
		WaitMs: c.cfg.WaitTime.Milliseconds(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal capture request: %w", err)
	}

	var image []byte
	err = retry.Do(
		func() error {
			data, err := c.post(ctx, body)
			if err != nil {
				return err
			}
			image = data
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.cfg.Attempts),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("Retrying to capture report",
				"attempt", n+1,
				"err", err)
		}),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCapture, err)
	}

	return base64.StdEncoding.EncodeToString(image), nil
}

func (c *Client) post(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.CaptureEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := fmt.Errorf("capture service returned %d: %s", resp.StatusCode, truncate(string(data), 200))
		// 4xx 不重试
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, retry.Unrecoverable(statusErr)
		}
		return nil, statusErr
	}
	if len(data) == 0 {
		return nil, errors.New("capture service returned empty image")
	}
	return data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
