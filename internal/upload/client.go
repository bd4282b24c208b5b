package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"abc-retailers/internal/logger"

	"go.uber.org/zap"
)

var (
	ErrUploadRejected = errors.New("upload rejected")
	ErrNoURL          = errors.New("upload response carried no image url")
)

const formField = "file"

// Response is the JSON body returned by the upload function.
type Response struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"imageUrl,omitempty"`
	FileName string `json:"fileName,omitempty"`
	Message  string `json:"message,omitempty"`
}

type Client struct {
	endpoint   string
	httpClient *http.Client
}

func NewClient(endpoint string) *Client {
	if endpoint == "" {
		logger.L().Warn("upload function url is empty")
	}
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Upload posts the file as multipart field "file" and returns the stored
// image URL.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "upload"),
		zap.String("file", filename),
	)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(formField, filepath.Base(filename))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("failed to buffer upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &buf)
	if err != nil {
		log.Error("Failed creating request", zap.Error(err))
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	log.Info("Sending file to upload function")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("Upload request failed", zap.Error(err))
		return "", err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read upload response: %w", err)
	}

	var res Response
	if err := json.Unmarshal(bodyBytes, &res); err != nil {
		log.Error("Failed decoding upload response",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return "", fmt.Errorf("upload function returned status %d: %w", resp.StatusCode, err)
	}

	if resp.StatusCode >= http.StatusBadRequest || !res.Success {
		log.Warn("Upload function rejected file",
			zap.Int("status", resp.StatusCode),
			zap.String("message", res.Message),
		)
		return "", fmt.Errorf("%w: %s", ErrUploadRejected, res.Message)
	}

	url := res.ImageURL
	if url == "" {
		url = res.FileName
	}
	if url == "" {
		return "", ErrNoURL
	}

	log.Info("File uploaded", zap.String("url", url))
	return url, nil
}
