package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"

	_ "golang.org/x/image/webp"
	"go.uber.org/zap"
)

// FetchImage downloads and decodes a generated image. Both remote URLs and
// data: URLs (as returned by some providers) are accepted.
func (c *Client) FetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	if strings.HasPrefix(imageURL, "data:") {
		return decodeDataURL(imageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: http.StatusText(resp.StatusCode)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("image decode error: %w", err)
	}
	c.log.Debug("fetched image",
		zap.String("format", format),
		zap.Int("bytes", len(data)))
	return img, nil
}

// decodeDataURL parses data:<mime>;base64,<payload>.
func decodeDataURL(dataURL string) (image.Image, error) {
	if !strings.HasPrefix(dataURL, "data:image/") {
		return nil, fmt.Errorf("unsupported data URL format")
	}
	semi := strings.Index(dataURL, ";")
	if semi == -1 {
		return nil, fmt.Errorf("malformed data URL")
	}
	comma := strings.Index(dataURL[semi:], ",")
	if comma == -1 {
		return nil, fmt.Errorf("malformed data URL")
	}

	decoded, err := base64.StdEncoding.DecodeString(dataURL[semi+comma+1:])
	if err != nil {
		return nil, fmt.Errorf("base64 decode error: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(decoded))
	if err != nil {
		return nil, fmt.Errorf("image decode error: %w", err)
	}
	return img, nil
}
