package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// loggingTransport dumps request and response bodies to the debug log. It
// never writes to the terminal, which belongs to the UI.
type loggingTransport struct {
	log  *zap.Logger
	next http.RoundTripper
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}

	var reqBody []byte
	if req.Body != nil {
		var err error
		reqBody, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body = io.NopCloser(bytes.NewBuffer(reqBody))
	}

	body := prettyJSON(reqBody)
	if strings.HasSuffix(req.URL.Path, "/api/configure") {
		body = "[redacted credentials]"
	}

	t.log.Debug(">>> request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("body", body))

	resp, err := next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	// Images and other binary payloads are logged by size only.
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "json") {
		t.log.Debug("<<< response",
			zap.String("status", resp.Status),
			zap.String("content_type", ct),
			zap.Int64("bytes", resp.ContentLength))
		return resp, nil
	}

	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewBuffer(respBody))

	t.log.Debug("<<< response",
		zap.String("status", resp.Status),
		zap.String("body", prettyJSON(respBody)))

	return resp, nil
}

func prettyJSON(data []byte) string {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return string(data)
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(data)
	}
	return string(out)
}
