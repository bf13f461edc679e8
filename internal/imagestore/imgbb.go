package imagestore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	DefaultEndpoint = "https://api.imgbb.com/1/upload"
	DefaultTimeout  = 30 * time.Second

	// Provider error bodies are included in UploadError; cap what we read.
	maxResponseBytes = 1 << 20
)

type Result struct {
	URL       string
	DeleteURL string
}

// UploadError carries the provider's reason for a failed upload.
type UploadError struct {
	Message string
}

func (e *UploadError) Error() string {
	return "image upload failed: " + e.Message
}

type Config struct {
	APIKey   string
	Endpoint string
	Timeout  time.Duration
}

type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		apiKey:     cfg.APIKey,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Upload sends the image to the host once. The returned URL is permanent;
// DeleteURL can be used later to remove the asset.
func (c *Client) Upload(ctx context.Context, data []byte, name string) (*Result, error) {
	form := url.Values{}
	form.Set("key", c.apiKey)
	form.Set("image", base64.StdEncoding.EncodeToString(data))
	if name != "" {
		form.Set("name", name)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &UploadError{Message: "failed to create upload request"}
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &UploadError{Message: transportMessage(err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &UploadError{Message: "failed to read upload response"}
	}

	if !gjson.ValidBytes(body) {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &UploadError{Message: fmt.Sprintf("provider returned status %d", resp.StatusCode)}
		}
		return nil, &UploadError{Message: "malformed upload response"}
	}

	parsed := gjson.ParseBytes(body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !parsed.Get("success").Bool() {
		return nil, &UploadError{Message: providerMessage(parsed, resp.StatusCode)}
	}

	imageURL := parsed.Get("data.url").String()
	if imageURL == "" {
		return nil, &UploadError{Message: "upload response is missing the image url"}
	}

	return &Result{
		URL:       imageURL,
		DeleteURL: parsed.Get("data.delete_url").String(),
	}, nil
}

func providerMessage(parsed gjson.Result, status int) string {
	for _, path := range []string{"error.message", "status_txt", "message"} {
		if msg := parsed.Get(path).String(); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("provider returned status %d", status)
}

// transportMessage strips the request URL from client errors so the API key
// in a caller-configured endpoint never reaches a response body.
func transportMessage(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return "upload timed out"
		}
		return urlErr.Err.Error()
	}
	return err.Error()
}
