package confirmations_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/privata-io/privata/internal/confirmations"
	"github.com/privata-io/privata/internal/pii"
	"github.com/privata-io/privata/pkg/pagination"
	"github.com/privata-io/privata/pkg/routes"
)

// stubSystem returns canned values and records the last call.
type stubSystem struct {
	request    *confirmations.Request
	err        error
	resolution confirmations.Resolution
	override   confirmations.Override
}

func (s *stubSystem) Handler() *confirmations.Handler { return nil }

func (s *stubSystem) Create(ctx context.Context, ident pii.FieldIdentity, out pii.Outcome) (*confirmations.Request, error) {
	return s.request, s.err
}

func (s *stubSystem) RecordDiscard(ctx context.Context, ident pii.FieldIdentity, out pii.Outcome) error {
	return s.err
}

func (s *stubSystem) Find(ctx context.Context, id uuid.UUID) (*confirmations.Request, error) {
	return s.request, s.err
}

func (s *stubSystem) List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[confirmations.Request], error) {
	return s.page(), s.err
}

func (s *stubSystem) Pending(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[confirmations.Request], error) {
	return s.page(), s.err
}

func (s *stubSystem) Resolved(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[confirmations.Request], error) {
	return s.page(), s.err
}

func (s *stubSystem) Discarded(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[confirmations.Request], error) {
	return s.page(), s.err
}

func (s *stubSystem) Resolve(ctx context.Context, id uuid.UUID, res confirmations.Resolution) (*confirmations.Request, error) {
	s.resolution = res
	return s.request, s.err
}

func (s *stubSystem) Override(ctx context.Context, id uuid.UUID, ov confirmations.Override) (*confirmations.Request, error) {
	s.override = ov
	return s.request, s.err
}

func (s *stubSystem) page() *pagination.PageResult[confirmations.Request] {
	if s.err != nil {
		return nil
	}
	var items []confirmations.Request
	if s.request != nil {
		items = []confirmations.Request{*s.request}
	}
	result := pagination.NewPageResult(items, len(items), 1, 25)
	return &result
}

func newMux(sys confirmations.System) *http.ServeMux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := confirmations.NewHandler(sys, logger, pagination.Config{DefaultPageSize: 25, MaxPageSize: 100})

	mux := http.NewServeMux()
	routes.Register(mux, handler.Routes())
	return mux
}

func TestHandlerFind(t *testing.T) {
	id := uuid.New()
	sys := &stubSystem{request: &confirmations.Request{ID: id, Status: confirmations.StatusPending}}
	mux := newMux(sys)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"existing request", "/confirmations/" + id.String(), http.StatusOK},
		{"malformed id", "/confirmations/not-a-uuid", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandlerFindNotFound(t *testing.T) {
	sys := &stubSystem{err: confirmations.ErrNotFound}
	mux := newMux(sys)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/confirmations/"+uuid.NewString(), nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandlerQueues(t *testing.T) {
	sys := &stubSystem{request: &confirmations.Request{ID: uuid.New(), Status: confirmations.StatusPending}}
	mux := newMux(sys)

	for _, path := range []string{
		"/confirmations",
		"/confirmations/pending",
		"/confirmations/resolved",
		"/confirmations/discarded",
	} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}

			var result pagination.PageResult[confirmations.Request]
			if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(result.Data) != 1 {
				t.Errorf("items = %d, want 1", len(result.Data))
			}
		})
	}
}

func TestHandlerResolve(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{
			name:       "valid yes decision",
			body:       `{"decision": "YES", "confirmed_type": "email", "resolved_by": "dpo"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid json",
			body:       `{decision yes}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid decision",
			body:       `{"decision": "MAYBE"}`,
			err:        confirmations.ErrInvalidDecision,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "already resolved",
			body:       `{"decision": "YES"}`,
			err:        confirmations.ErrAlreadyResolved,
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &stubSystem{
				request: &confirmations.Request{ID: id, Status: confirmations.StatusConfirmed},
				err:     tt.err,
			}
			mux := newMux(sys)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/confirmations/"+id.String()+"/resolution", bytes.NewBufferString(tt.body))
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandlerResolvePassesResolution(t *testing.T) {
	id := uuid.New()
	sys := &stubSystem{request: &confirmations.Request{ID: id, Status: confirmations.StatusConfirmed}}
	mux := newMux(sys)

	body := `{"decision": "NO", "resolved_by": "analyst"}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/confirmations/"+id.String()+"/resolution", bytes.NewBufferString(body)))

	if sys.resolution.Decision != confirmations.DecisionNo {
		t.Errorf("decision = %s, want NO", sys.resolution.Decision)
	}
	if sys.resolution.ResolvedBy != "analyst" {
		t.Errorf("resolved_by = %s, want analyst", sys.resolution.ResolvedBy)
	}
}

func TestHandlerOverride(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{
			name:       "valid override",
			body:       `{"decision": "NO", "reason": "misread sample", "overridden_by": "dpo"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "pending request",
			body:       `{"decision": "NO", "reason": "x"}`,
			err:        confirmations.ErrPendingOverride,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "missing reason",
			body:       `{"decision": "NO"}`,
			err:        confirmations.ErrReasonRequired,
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &stubSystem{
				request: &confirmations.Request{ID: id, Status: confirmations.StatusRejected},
				err:     tt.err,
			}
			mux := newMux(sys)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/confirmations/"+id.String()+"/override", bytes.NewBufferString(tt.body))
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestDecisionValid(t *testing.T) {
	tests := []struct {
		decision confirmations.Decision
		want     bool
	}{
		{confirmations.DecisionYes, true},
		{confirmations.DecisionNo, true},
		{confirmations.DecisionNotSure, true},
		{"MAYBE", false},
		{"", false},
		{"yes", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.decision), func(t *testing.T) {
			if got := tt.decision.Valid(); got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.decision, got, tt.want)
			}
		})
	}
}
