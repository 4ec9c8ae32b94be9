package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

type Match struct {
	ProductID uint    `json:"product_id"`
	Score     float64 `json:"score"`
}

// ImageMatcher finds catalog products that look like the given image, best first.
type ImageMatcher interface {
	Match(ctx context.Context, image []byte, contentType string) ([]Match, error)
}

type httpMatcher struct {
	url        string
	httpClient *http.Client
}

// NewHTTPMatcher posts images to an external similarity service. It returns nil
// when url is empty.
func NewHTTPMatcher(url string) ImageMatcher {
	if url == "" {
		return nil
	}
	return &httpMatcher{
		url: url,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (m *httpMatcher) Match(ctx context.Context, image []byte, contentType string) ([]Match, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("component", "image_matcher"),
		zap.Int("bytes", len(image)),
	)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="upload"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(image); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, &body)
	if err != nil {
		log.Error("failed creating request", zap.Error(err))
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		log.Error("image matcher request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrImageSearchUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read matcher response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Error("image matcher returned error",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody),
		)
		return nil, fmt.Errorf("%w: matcher status %d", ErrImageSearchUnavailable, resp.StatusCode)
	}

	var out struct {
		Matches []Match `json:"matches"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		log.Error("failed to decode matcher response", zap.Error(err))
		return nil, fmt.Errorf("invalid matcher response: %w", err)
	}
	return out.Matches, nil
}
