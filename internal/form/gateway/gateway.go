// Package gateway submits a validated form to the registration endpoint and
// folds the outcome back into the form engine. It owns the only network
// call the client side makes.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"enroll/internal/form"
	"enroll/internal/register/validate"
	"enroll/pkg/email"
	"enroll/pkg/platform/httputil"
)

// RegisterPath is the endpoint the gateway posts to.
const RegisterPath = "/api/register"

// Payload is the normalized wire payload: names trimmed, email trimmed and
// lowercased, password byte-for-byte as typed. confirmPassword is client
// state only and never serialized.
type Payload struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type Gateway struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

type Option func(*Gateway)

func WithHTTPClient(client *http.Client) Option {
	return func(g *Gateway) {
		g.client = client
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

func New(baseURL string, opts ...Option) *Gateway {
	g := &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Submit drives one submission attempt end to end: force-touch and validate
// via the engine, issue at most one network call, and apply the outcome.
// The engine's Submitting flag stays true only while the call is
// outstanding.
func (g *Gateway) Submit(ctx context.Context, e *form.Engine) form.State {
	if !e.BeginSubmit() {
		// Validation failure (banner already raised) or a submission is
		// already in flight; either way, no network call.
		return e.State()
	}

	outcome := g.post(ctx, buildPayload(e.Values()))
	switch {
	case outcome.success:
		e.SubmitSucceeded()
	case outcome.field != "":
		e.SubmitFieldError(outcome.field, outcome.message)
	default:
		e.SubmitFailed()
	}
	return e.State()
}

func buildPayload(v validate.Values) Payload {
	return Payload{
		FirstName: strings.TrimSpace(v.FirstName),
		LastName:  strings.TrimSpace(v.LastName),
		Email:     email.Normalize(v.Email),
		Password:  v.Password,
	}
}

type submitOutcome struct {
	success bool
	field   validate.Field
	message string
}

// post issues the request and triages the response. Transport errors and
// unparseable or unscoped error bodies all collapse into the generic server
// failure; only a well-formed field-scoped body survives as a field error.
func (g *Gateway) post(ctx context.Context, payload Payload) submitOutcome {
	body, err := json.Marshal(payload)
	if err != nil {
		g.logger.ErrorContext(ctx, "marshal payload failed", "error", err.Error())
		return submitOutcome{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+RegisterPath, bytes.NewReader(body))
	if err != nil {
		g.logger.ErrorContext(ctx, "build request failed", "error", err.Error())
		return submitOutcome{}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.WarnContext(ctx, "registration call failed", "error", err.Error())
		return submitOutcome{}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return submitOutcome{success: true}
	}

	var envelope httputil.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		g.logger.WarnContext(ctx, "unparseable error response",
			"status", resp.StatusCode,
			"error", err.Error(),
		)
		return submitOutcome{}
	}

	if f, ok := knownField(envelope.Error.Field); ok && envelope.Error.Message != "" {
		return submitOutcome{field: f, message: envelope.Error.Message}
	}
	return submitOutcome{}
}

// knownField accepts only real form fields; "general" and anything
// unrecognized fall through to the banner path.
func knownField(name string) (validate.Field, bool) {
	for _, f := range validate.Fields {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}
