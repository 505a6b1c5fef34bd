package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"enroll/internal/form"
	"enroll/internal/platform/metrics"
	"enroll/internal/register/handler"
	"enroll/internal/register/service"
	"enroll/internal/register/store/user"
	"enroll/internal/register/validate"
	"enroll/pkg/platform/httputil"
)

// newBackend spins up the real registration endpoint so gateway tests
// exercise the full client/server contract.
func newBackend(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	m := metrics.New(prometheus.NewRegistry())
	svc, err := service.New(user.NewInMemory(),
		service.WithLogger(logger),
		service.WithMetrics(m),
		service.WithBcryptCost(bcrypt.MinCost),
	)
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	r := chi.NewRouter()
	handler.New(svc, logger, m).Register(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func fillValid(e *form.Engine) {
	e.Change(validate.FieldFirstName, " John ")
	e.Change(validate.FieldLastName, "Doe")
	e.Change(validate.FieldEmail, "John@GMAIL.com")
	e.Change(validate.FieldPassword, "Password123!")
	e.Change(validate.FieldConfirmPassword, "Password123!")
}

func TestSubmitSuccessAgainstRealEndpoint(t *testing.T) {
	srv := newBackend(t)
	g := New(srv.URL, WithLogger(quietLogger()))

	e := form.NewEngine()
	fillValid(e)

	state := g.Submit(context.Background(), e)
	if state != form.StateSuccess {
		t.Fatalf("expected success, got %v", state)
	}
	if e.Submitting() {
		t.Fatalf("submit control must be re-enabled after success")
	}
}

func TestSubmitDuplicateGetsFieldScopedWarning(t *testing.T) {
	srv := newBackend(t)
	g := New(srv.URL, WithLogger(quietLogger()))

	first := form.NewEngine()
	fillValid(first)
	if got := g.Submit(context.Background(), first); got != form.StateSuccess {
		t.Fatalf("first submit should succeed, got %v", got)
	}

	second := form.NewEngine()
	fillValid(second)
	state := g.Submit(context.Background(), second)
	if state != form.StateWarning {
		t.Fatalf("expected field-scoped warning on duplicate, got %v", state)
	}
	msg := second.Message(validate.FieldEmail)
	if msg == nil || msg.Text != validate.MsgEmailTaken {
		t.Fatalf("expected %q on email, got %+v", validate.MsgEmailTaken, msg)
	}
	if second.FailureKind() != form.FailureNone {
		t.Fatalf("field-scoped rejection must not raise the banner")
	}
}

func TestSubmitSkipsNetworkOnValidationFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	t.Cleanup(srv.Close)
	g := New(srv.URL, WithLogger(quietLogger()))

	e := form.NewEngine()
	fillValid(e)
	e.Change(validate.FieldEmail, "john@yahoo.com")

	state := g.Submit(context.Background(), e)
	if state != form.StateFailure || e.FailureKind() != form.FailureValidation {
		t.Fatalf("expected failure/validation, got %v/%v", state, e.FailureKind())
	}
	if calls.Load() != 0 {
		t.Fatalf("validation failure must not reach the network, saw %d calls", calls.Load())
	}
	msg := e.Message(validate.FieldEmail)
	if msg == nil || msg.Text != validate.MsgEmailNotGmail {
		t.Fatalf("expected %q, got %+v", validate.MsgEmailNotGmail, msg)
	}
}

func TestSubmitSendsNormalizedPayloadWithoutConfirm(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(srv.Close)
	g := New(srv.URL, WithLogger(quietLogger()))

	e := form.NewEngine()
	fillValid(e)
	g.Submit(context.Background(), e)

	if captured["firstName"] != "John" {
		t.Fatalf("expected trimmed first name, got %v", captured["firstName"])
	}
	if captured["email"] != "john@gmail.com" {
		t.Fatalf("expected normalized email, got %v", captured["email"])
	}
	if captured["password"] != "Password123!" {
		t.Fatalf("expected password sent verbatim, got %v", captured["password"])
	}
	if _, ok := captured["confirmPassword"]; ok {
		t.Fatalf("confirmPassword must never be transmitted")
	}
}

func TestSubmitUnscopedErrorShowsServerBanner(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{
			Success: false,
			Error:   httputil.ErrorBody{Message: "Internal server error", Field: "general"},
		})
	}))
	t.Cleanup(srv.Close)
	g := New(srv.URL, WithLogger(quietLogger()))

	e := form.NewEngine()
	fillValid(e)

	state := g.Submit(context.Background(), e)
	if state != form.StateFailure || e.FailureKind() != form.FailureServer {
		t.Fatalf("expected failure/server, got %v/%v", state, e.FailureKind())
	}
}

func TestSubmitMalformedErrorBodyShowsServerBanner(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>upstream error</html>"))
	}))
	t.Cleanup(srv.Close)
	g := New(srv.URL, WithLogger(quietLogger()))

	e := form.NewEngine()
	fillValid(e)

	if state := g.Submit(context.Background(), e); state != form.StateFailure || e.FailureKind() != form.FailureServer {
		t.Fatalf("expected failure/server, got %v/%v", state, e.FailureKind())
	}
}

func TestSubmitTransportFailureShowsServerBanner(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // connection refused from here on
	g := New(url, WithLogger(quietLogger()))

	e := form.NewEngine()
	fillValid(e)

	state := g.Submit(context.Background(), e)
	if state != form.StateFailure || e.FailureKind() != form.FailureServer {
		t.Fatalf("expected failure/server, got %v/%v", state, e.FailureKind())
	}
	if e.Submitting() {
		t.Fatalf("submit control must be re-enabled after a transport failure")
	}
}
