// SPDX-License-Identifier: Apache-2.0

// Package notify posts a signed summary of a finished sweep to a webhook.
package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/adiadia/eventbench/internal/domain"
	"github.com/adiadia/eventbench/internal/logging"
	"github.com/google/uuid"
)

const (
	webhookRetryAttempts = 3
	webhookRetryBase     = 300 * time.Millisecond
	webhookHeaderSig     = "X-Signature"

	StatusDone    = "DONE"
	StatusAborted = "ABORTED"
)

// Summary is the webhook payload.
type Summary struct {
	SweepID     uuid.UUID `json:"sweep_id"`
	Status      string    `json:"status"`
	Checkpoints []int     `json:"checkpoints"`
	Variants    []string  `json:"variants"`
	Results     int       `json:"results"`
	Failed      int       `json:"failed_results"`
	Missing     int       `json:"missing_measurements"`
	Artifacts   []string  `json:"artifacts"`
	FinishedAt  time.Time `json:"finished_at"`
	Error       string    `json:"error,omitempty"`
}

// NewSummary condenses a result store. A non-nil runErr marks the sweep
// aborted.
func NewSummary(store *domain.ResultStore, variants, artifacts []string, runErr error, finishedAt time.Time) Summary {
	s := Summary{
		SweepID:     uuid.New(),
		Status:      StatusDone,
		Checkpoints: []int{},
		Variants:    append([]string{}, variants...),
		Artifacts:   append([]string{}, artifacts...),
		FinishedAt:  finishedAt,
	}
	if runErr != nil {
		s.Status = StatusAborted
		s.Error = runErr.Error()
	}
	if store == nil {
		return s
	}

	s.Checkpoints = store.Checkpoints()
	for _, cp := range s.Checkpoints {
		for _, r := range store.Results(cp) {
			s.Results++
			if r.Status != domain.RunSucceeded {
				s.Failed++
			}
			s.Missing += len(r.Missing())
		}
	}
	return s
}

type Webhook struct {
	url       string
	secret    string
	client    *http.Client
	logger    *slog.Logger
	retryBase time.Duration
}

type Option func(*Webhook)

func WithHTTPClient(c *http.Client) Option {
	return func(w *Webhook) {
		if c != nil {
			w.client = c
		}
	}
}

func WithRetryBase(d time.Duration) Option {
	return func(w *Webhook) {
		w.retryBase = d
	}
}

// NewWebhook returns nil when url is empty; a nil *Webhook delivers nothing.
func NewWebhook(url, secret string, logger *slog.Logger, opts ...Option) *Webhook {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}
	w := &Webhook{
		url:       url,
		secret:    secret,
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    logging.OrDefault(logger),
		retryBase: webhookRetryBase,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Deliver posts the summary, retrying non-2xx responses and transport errors
// with exponential backoff. It returns the last error once retries run out.
func (w *Webhook) Deliver(ctx context.Context, s Summary) error {
	if w == nil {
		return nil
	}

	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}
	signature := Sign(w.secret, body)

	var lastErr error
	for attempt := 1; attempt <= webhookRetryAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build webhook request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if signature != "" {
			req.Header.Set(webhookHeaderSig, signature)
		}

		resp, err := w.client.Do(req)
		if err != nil {
			lastErr = err
			w.logger.Warn("webhook failure",
				"sweep_id", s.SweepID,
				"attempt", attempt,
				"error", err,
			)
		} else {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()

			if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
				w.logger.Info("webhook success",
					"sweep_id", s.SweepID,
					"status", s.Status,
					"attempt", attempt,
					"response_status", resp.StatusCode,
				)
				return nil
			}

			lastErr = fmt.Errorf("non-2xx response: %d", resp.StatusCode)
			w.logger.Warn("webhook failure",
				"sweep_id", s.SweepID,
				"attempt", attempt,
				"response_status", resp.StatusCode,
			)
		}

		if attempt < webhookRetryAttempts {
			wait := w.retryBase * time.Duration(1<<(attempt-1))
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	w.logger.Error("webhook retries exhausted", "sweep_id", s.SweepID, "error", lastErr)
	return lastErr
}

// Sign returns the hex HMAC-SHA256 of payload, or "" without a secret.
func Sign(secret string, payload []byte) string {
	if strings.TrimSpace(secret) == "" {
		return ""
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
