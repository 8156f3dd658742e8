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
	"strings"
	"time"

	"github.com/propulsa/docview-backend/internal/models"
	"github.com/propulsa/docview-backend/internal/notify"
	"github.com/propulsa/docview-backend/internal/retry"
)

// DefaultAttemptTimeout bounds one submission attempt so a hanging
// request cannot consume the whole retry budget.
const DefaultAttemptTimeout = 30 * time.Second

// Pipeline submits documents to the ingest endpoint with bounded
// retries and classifies the server's response.
type Pipeline struct {
	client         *http.Client
	endpoint       string
	policy         retry.Policy
	attemptTimeout time.Duration
	sink           notify.Sink
}

// NewPipeline creates a pipeline posting to endpoint. A nil client uses
// http.DefaultClient; a zero policy uses the default bounded-retry
// discipline.
func NewPipeline(client *http.Client, endpoint string, policy retry.Policy, attemptTimeout time.Duration, sink notify.Sink) *Pipeline {
	if client == nil {
		client = http.DefaultClient
	}
	if policy.MaxAttempts == 0 {
		policy = retry.DefaultPolicy()
	}
	if attemptTimeout <= 0 {
		attemptTimeout = DefaultAttemptTimeout
	}
	if sink == nil {
		sink = notify.Discard()
	}
	return &Pipeline{
		client:         client,
		endpoint:       endpoint,
		policy:         policy,
		attemptTimeout: attemptTimeout,
		sink:           sink,
	}
}

// attemptError is one failed submission attempt. Ambiguous means the
// request may have reached the server even though no response came
// back, so the bytes could already be processing.
type attemptError struct {
	reason    string
	retryable bool
	ambiguous bool
	cause     error
}

func (e *attemptError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.reason, e.cause)
	}
	return e.reason
}

func (e *attemptError) Retryable() bool { return e.retryable }
func (e *attemptError) Unwrap() error   { return e.cause }

// completedResponse is the strict success schema. Any shape mismatch
// fails closed: a malformed success is never retried, since retrying an
// already-accepted upload risks duplication.
type completedResponse struct {
	Message    string `json:"message"`
	DocumentID string `json:"document_id"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Submit validates the request, then posts it with bounded retries.
// Validation failures return a *ValidationError and make zero network
// calls. All attempt state lives in this invocation; nothing is shared
// across calls.
func (p *Pipeline) Submit(ctx context.Context, req SubmitRequest) (models.UploadOutcome, error) {
	if err := req.Validate(); err != nil {
		return models.UploadOutcome{}, err
	}

	var outcome models.UploadOutcome
	attempts := 0

	err := p.policy.Do(ctx, func(ctx context.Context, attempt int) error {
		attempts = attempt
		p.sink.Notify(notify.LevelInfo,
			fmt.Sprintf("Uploading %s (attempt %d/%d)", req.FileName, attempt, p.policy.MaxAttempts))

		actx, cancel := context.WithTimeout(ctx, p.attemptTimeout)
		defer cancel()

		result, aerr := p.attempt(actx, req)
		if aerr != nil {
			return aerr
		}
		outcome = result
		return nil
	})

	if err == nil {
		outcome.Attempts = attempts
		p.sink.Notify(notify.LevelSuccess, outcome.Message)
		return outcome, nil
	}

	if cerr := ctx.Err(); cerr != nil {
		return models.UploadOutcome{}, cerr
	}

	terminal := models.UploadOutcome{
		Kind:     models.UploadPermanentFailure,
		Attempts: attempts,
	}

	var ex *retry.ExhaustedError
	var ae *attemptError
	switch {
	case errors.As(err, &ex):
		terminal.Attempts = ex.Attempts
		terminal.Message = fmt.Sprintf("upload failed after %d attempts: %s", ex.Attempts, reasonOf(ex.Last))
		if errors.As(ex.Last, &ae) && ae.ambiguous {
			terminal.MaybeProcessing = true
			terminal.Message = fmt.Sprintf(
				"could not confirm the upload after %d attempts; your document may already be processing in the background",
				ex.Attempts)
		}
	case errors.As(err, &ae):
		terminal.Message = ae.reason
	default:
		terminal.Message = "upload failed"
	}

	p.sink.Notify(notify.LevelError, terminal.Message)
	return terminal, nil
}

// attempt performs one multipart POST and classifies the response.
func (p *Pipeline) attempt(ctx context.Context, req SubmitRequest) (models.UploadOutcome, *attemptError) {
	body, contentType, err := encodeForm(req)
	if err != nil {
		return models.UploadOutcome{}, &attemptError{reason: "could not encode the upload", cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, body)
	if err != nil {
		return models.UploadOutcome{}, &attemptError{reason: "could not build the upload request", cause: err}
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		// Indistinguishable from "the request may have reached the
		// server": connection reset, timeout, dropped link.
		return models.UploadOutcome{}, &attemptError{
			reason:    "could not connect to the server",
			retryable: true,
			ambiguous: true,
			cause:     err,
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusAccepted:
		// Acknowledged for asynchronous processing: a success, not a
		// pending state requiring polling.
		return models.UploadOutcome{
			Kind:    models.UploadAccepted,
			Message: "document received and processing in the background",
		}, nil

	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		var cr completedResponse
		data, err := io.ReadAll(resp.Body)
		if err == nil {
			err = json.Unmarshal(data, &cr)
		}
		if err != nil || cr.Message == "" || cr.DocumentID == "" {
			return models.UploadOutcome{}, &attemptError{reason: "invalid server response"}
		}
		return models.UploadOutcome{
			Kind:       models.UploadCompleted,
			DocumentID: cr.DocumentID,
			Message:    cr.Message,
		}, nil

	default:
		reason := fmt.Sprintf("server error %d", resp.StatusCode)
		var er errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&er); err == nil && strings.TrimSpace(er.Message) != "" {
			reason = er.Message
		}
		return models.UploadOutcome{}, &attemptError{reason: reason, retryable: true}
	}
}

// encodeForm builds the multipart body: file, documentTitle,
// documentDescription. Rebuilt fresh for every attempt.
func encodeForm(req SubmitRequest) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", req.FileName)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(req.Data); err != nil {
		return nil, "", err
	}

	if err := w.WriteField("documentTitle", strings.TrimSpace(req.Title)); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("documentDescription", strings.TrimSpace(req.Description)); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func reasonOf(err error) string {
	var ae *attemptError
	if errors.As(err, &ae) {
		return ae.reason
	}
	return "upload failed"
}
