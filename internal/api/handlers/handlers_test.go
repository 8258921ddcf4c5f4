package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/api/middleware"
	"fintrack/internal/api/session"
	"fintrack/internal/finance"
	"fintrack/internal/logger"
	"fintrack/internal/notion"
)

// stubAPI serves one canned schema and query response for every database.
type stubAPI struct {
	db    *notionapi.Database
	pages []notionapi.Page
}

func (s *stubAPI) RetrieveDatabase(ctx context.Context, databaseID string) (*notionapi.Database, error) {
	return s.db, nil
}

func (s *stubAPI) QueryDatabase(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	return &notionapi.DatabaseQueryResponse{Results: s.pages}, nil
}

func (s *stubAPI) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	return &notionapi.Page{ID: "created"}, nil
}

const testPassword = "correct horse"

func newTestHandler(t *testing.T, api notion.API) (*Handler, *session.Store) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt hash: %v", err)
	}

	svc := finance.NewService(api, notion.NewSchemaCache(api), finance.Databases{
		Transactions: "tx-db",
		Categories:   "cat-db",
		Accounts:     "acc-db",
	}, zerolog.Nop())

	sessions := session.NewStore(time.Hour)
	h := New(svc, sessions, Options{
		Username:     "admin",
		PasswordHash: string(hash),
		SessionTTL:   time.Hour,
	}, zerolog.Nop())

	return h, sessions
}

func emptyStub() *stubAPI {
	return &stubAPI{db: &notionapi.Database{Properties: notionapi.PropertyConfigs{}}}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid credentials", `{"username":"admin","password":"correct horse"}`, http.StatusOK},
		{"wrong password", `{"username":"admin","password":"wrong"}`, http.StatusUnauthorized},
		{"wrong username", `{"username":"root","password":"correct horse"}`, http.StatusUnauthorized},
		{"missing fields", `{"username":"admin"}`, http.StatusBadRequest},
		{"malformed body", `{not json`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t, emptyStub())

			req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Login(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			cookies := rec.Result().Cookies()
			if tt.wantStatus == http.StatusOK {
				if len(cookies) != 1 || cookies[0].Name != session.CookieName || cookies[0].Value == "" {
					t.Errorf("cookies = %v, want one %s session cookie", cookies, session.CookieName)
				}
				if !cookies[0].HttpOnly {
					t.Error("session cookie is not HttpOnly")
				}
			} else if len(cookies) != 0 {
				t.Errorf("cookies set on failed login: %v", cookies)
			}
		})
	}
}

func TestLogout_InvalidatesSession(t *testing.T) {
	h, sessions := newTestHandler(t, emptyStub())

	token := sessions.Create("admin")

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if sessions.Validate(token) {
		t.Error("session still valid after logout")
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Errorf("cookies = %v, want one expired session cookie", cookies)
	}
}

func TestRequireSession(t *testing.T) {
	_, sessions := newTestHandler(t, emptyStub())

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	gate := middleware.RequireSession(sessions)(next)

	t.Run("no cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/balance", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("stale token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/balance", nil)
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "stale"})
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("valid session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/balance", nil)
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sessions.Create("admin")})
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})
}

func TestRecentTransactions_LimitValidation(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"no limit uses default", "", http.StatusOK},
		{"explicit limit", "?limit=10", http.StatusOK},
		{"not a number", "?limit=abc", http.StatusBadRequest},
		{"zero", "?limit=0", http.StatusBadRequest},
		{"negative", "?limit=-3", http.StatusBadRequest},
		{"above cap", "?limit=101", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t, emptyStub())

			req := httptest.NewRequest(http.MethodGet, "/recent-transactions"+tt.query, nil)
			rec := httptest.NewRecorder()
			h.RecentTransactions(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusBadRequest {
				body := decodeBody(t, rec)
				if body["error"] != "Invalid query parameter" {
					t.Errorf("error = %q, want %q", body["error"], "Invalid query parameter")
				}
				if body["details"] != "Invalid value for parameter: limit" {
					t.Errorf("details = %q", body["details"])
				}
			}
		})
	}
}

func TestCreateTransaction_ValidationResponse(t *testing.T) {
	h, _ := newTestHandler(t, emptyStub())

	req := httptest.NewRequest(http.MethodPost, "/transaction",
		strings.NewReader(`{"amount":-5,"type":"Expense","date":"2024-01-15","account":"acc1","category":"cat1"}`))
	rec := httptest.NewRecorder()
	h.CreateTransaction(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Missing required fields" {
		t.Errorf("error = %q, want %q", body["error"], "Missing required fields")
	}
	if body["details"] != "The following fields are required: name, amount" {
		t.Errorf("details = %q", body["details"])
	}
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler(t, emptyStub())

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := decodeBody(t, rec); body["status"] != "healthy" {
		t.Errorf("status field = %q, want %q", body["status"], "healthy")
	}
}

func TestWriteServiceError_ProductionHidesDetails(t *testing.T) {
	h, _ := newTestHandler(t, emptyStub())
	h.production = true

	req := httptest.NewRequest(http.MethodGet, "/balance", nil)
	req = req.WithContext(logger.WithContext(req.Context(), zerolog.Nop()))
	rec := httptest.NewRecorder()
	h.writeServiceError(rec, req, context.DeadlineExceeded)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := decodeBody(t, rec)
	if strings.Contains(body["details"], "deadline") {
		t.Errorf("details = %q, leaks the underlying error in production", body["details"])
	}
}
