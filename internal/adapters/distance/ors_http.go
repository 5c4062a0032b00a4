package distance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// httpStatusError is a non-2xx answer from ORS. Message holds the ORS error
// message when the body carries one, otherwise the raw body.
type httpStatusError struct {
	Code       int
	Message    string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("ORS status %d: %s", e.Code, e.Message)
}

// orsErrorBody is the error envelope ORS uses for matrix requests.
type orsErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func statusError(resp *http.Response) *httpStatusError {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	he := &httpStatusError{Code: resp.StatusCode, Message: strings.TrimSpace(string(b))}

	var body orsErrorBody
	if json.Unmarshal(b, &body) == nil && body.Error.Message != "" {
		he.Message = body.Error.Message
	}
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		he.RetryAfter = time.Duration(secs) * time.Second
	}
	return he
}

// retryable reports whether err is a rate limit, a gateway failure or a
// network error.
func retryable(err error) bool {
	var he *httpStatusError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// postJSON sends in to path and decodes the answer into out, retrying
// transient failures with exponential backoff. A Retry-After header longer
// than the current backoff wins.
func (o *ORSMatrixProvider) postJSON(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	endpoint := o.baseURL + path

	backoff := o.backoff
	for attempt := 1; ; attempt++ {
		err := o.post(ctx, endpoint, payload, out)
		if err == nil {
			return nil
		}
		if !retryable(err) || attempt >= o.maxAttempts {
			return err
		}

		wait := backoff
		var he *httpStatusError
		if errors.As(err, &he) && he.RetryAfter > wait {
			wait = he.RetryAfter
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}
}

func (o *ORSMatrixProvider) post(ctx context.Context, endpoint string, payload []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", o.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.session.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return statusError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
