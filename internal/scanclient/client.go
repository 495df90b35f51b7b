// Package scanclient talks to the remote scan service.
package scanclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/scanview/frontend/internal/model"
)

const maxBodyBytes = 8 << 20

// Client calls POST /scan and GET /history on the scan service. Responses are
// validated before they are handed to callers.
type Client struct {
	baseURL    string
	httpClient *http.Client
	validate   *validator.Validate
	logger     *slog.Logger
}

func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		validate:   newValidator(),
		logger:     logger.With("area", "scanclient"),
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (c *Client) BaseURL() string { return c.baseURL }

// Scan submits target and returns the validated result. Every failure is a
// *SubmissionError.
func (c *Client) Scan(ctx context.Context, target string) (model.ScanResult, error) {
	target = strings.TrimSpace(target)
	if err := c.validate.Var(target, "required"); err != nil {
		return model.ScanResult{}, &SubmissionError{Message: "URL is required"}
	}

	body, err := json.Marshal(model.ScanRequest{URL: target})
	if err != nil {
		return model.ScanResult{}, &SubmissionError{Message: FallbackMessage, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/scan", bytes.NewReader(body))
	if err != nil {
		return model.ScanResult{}, &SubmissionError{Message: FallbackMessage, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.ScanResult{}, &SubmissionError{Message: FallbackMessage, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return model.ScanResult{}, &SubmissionError{Message: FallbackMessage, StatusCode: resp.StatusCode, Err: err}
	}

	c.logger.Info("scan response", "url", target, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.ScanResult{}, &SubmissionError{Message: detailMessage(data), StatusCode: resp.StatusCode}
	}

	var result model.ScanResult
	if err := json.Unmarshal(data, &result); err != nil {
		return model.ScanResult{}, &SubmissionError{Message: "Invalid scan result", StatusCode: resp.StatusCode, Err: err}
	}
	if err := c.check(result); err != nil {
		return model.ScanResult{}, &SubmissionError{Message: "Invalid scan result: " + err.Error(), StatusCode: resp.StatusCode}
	}
	return result, nil
}

// History fetches prior scans in the order the service returns them (oldest
// first). Entries that fail validation are dropped. Failures are a
// *HistoryLoadError.
func (c *Client) History(ctx context.Context) ([]model.ScanResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/history", nil)
	if err != nil {
		return nil, &HistoryLoadError{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &HistoryLoadError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HistoryLoadError{StatusCode: resp.StatusCode}
	}

	var body model.HistoryResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return nil, &HistoryLoadError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding history: %w", err)}
	}

	out := make([]model.ScanResult, 0, len(body.History))
	for i, r := range body.History {
		if err := c.check(r); err != nil {
			c.logger.Warn("dropping history entry", "index", i, "error", err)
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (c *Client) check(result model.ScanResult) error {
	err := c.validate.Struct(result)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%s failed %q", fe.Field(), fe.Tag())
	}
	return err
}

// detailMessage extracts the user-facing message from a failure body. The
// detail is either a string or a list of request validation issues.
func detailMessage(data []byte) string {
	var er model.ErrorResponse
	if err := json.Unmarshal(data, &er); err != nil || len(er.Detail) == 0 {
		return FallbackMessage
	}

	var s string
	if err := json.Unmarshal(er.Detail, &s); err == nil {
		if s == "" {
			return FallbackMessage
		}
		return s
	}

	var issues []model.ValidationIssue
	if err := json.Unmarshal(er.Detail, &issues); err == nil {
		msgs := make([]string, 0, len(issues))
		for _, is := range issues {
			if is.Msg != "" {
				msgs = append(msgs, is.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return FallbackMessage
}
