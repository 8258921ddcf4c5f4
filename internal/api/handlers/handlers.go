package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/api/middleware"
	"fintrack/internal/api/session"
	"fintrack/internal/finance"
	"fintrack/internal/logger"
)

// Handler wires the finance service and the login gate to HTTP routes.
type Handler struct {
	svc      *finance.Service
	sessions *session.Store

	username     string
	passwordHash string
	sessionTTL   time.Duration
	production   bool

	log zerolog.Logger
}

// Options configures a Handler.
type Options struct {
	Username     string
	PasswordHash string
	SessionTTL   time.Duration
	Production   bool
}

// New creates a Handler.
func New(svc *finance.Service, sessions *session.Store, opts Options, log zerolog.Logger) *Handler {
	return &Handler{
		svc:          svc,
		sessions:     sessions,
		username:     opts.Username,
		passwordHash: opts.PasswordHash,
		sessionTTL:   opts.SessionTTL,
		production:   opts.Production,
		log:          log,
	}
}

// Login handles POST /login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	if req.Username != h.username ||
		bcrypt.CompareHashAndPassword([]byte(h.passwordHash), []byte(req.Password)) != nil {
		h.log.Warn().Str("remote_addr", r.RemoteAddr).Msg("Failed login attempt")
		middleware.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token := h.sessions.Create(req.Username)
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.production,
		SameSite: http.SameSiteLaxMode,
	})

	middleware.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Logout handles POST /logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(session.CookieName); err == nil {
		h.sessions.Delete(cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.production,
		SameSite: http.SameSiteLaxMode,
	})

	middleware.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ListCategories handles GET /categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, categories)
}

// ListAccounts handles GET /accounts.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.ListAccounts(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, accounts)
}

// Balance handles GET /balance.
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.AccountBalances(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, report)
}

// RecentTransactions handles GET /recent-transactions?limit=N.
func (h *Handler) RecentTransactions(w http.ResponseWriter, r *http.Request) {
	limit := finance.DefaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > finance.MaxRecentLimit {
			middleware.WriteJSON(w, http.StatusBadRequest, map[string]string{
				"error":   "Invalid query parameter",
				"details": "Invalid value for parameter: limit",
			})
			return
		}
		limit = parsed
	}

	transactions, err := h.svc.RecentTransactions(r.Context(), limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, transactions)
}

// CreateTransaction handles POST /transaction.
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in finance.TransactionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.svc.CreateTransaction(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// writeServiceError translates the finance error taxonomy into HTTP
// responses. Anything unrecognized becomes a 500, with the detail message
// suppressed in production.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *finance.ValidationError
		typeErr       *finance.InvalidTypeError
		databaseErr   *finance.InvalidDatabaseError
		notFoundErr   *finance.NotFoundError
	)

	switch {
	case errors.As(err, &validationErr):
		middleware.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "Missing required fields",
			"details": "The following fields are required: " + strings.Join(validationErr.Fields, ", "),
		})
	case errors.As(err, &typeErr):
		middleware.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "Invalid transaction type",
			"details": fmt.Sprintf("%q is not a valid option. Available options: %s", typeErr.Input, strings.Join(typeErr.Options, ", ")),
			"hint":    "Use one of the transaction type options configured in your Notion database.",
		})
	case errors.As(err, &databaseErr):
		middleware.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error":   fmt.Sprintf("Invalid %s Database ID", databaseErr.Database),
			"details": "The provided ID is a page ID, not a database ID.",
			"hint":    `Open the database as a full page in Notion, copy the URL and extract the 32-character ID before "?v=".`,
		})
	case errors.As(err, &notFoundErr):
		middleware.WriteJSON(w, http.StatusNotFound, map[string]string{
			"error":   "Not Found",
			"details": notFoundErr.Error(),
			"hint":    "Make sure the database is shared with your Notion integration.",
		})
	default:
		log := logger.FromContext(r.Context())
		log.Error().
			Err(err).
			Str("path", r.URL.Path).
			Msg("Request failed")
		details := "An error occurred processing your request"
		if !h.production {
			details = err.Error()
		}
		middleware.WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Internal Server Error",
			"details": details,
		})
	}
}
