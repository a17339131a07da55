package handler

import (
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/awillits/marginalia/internal/auth"
	"github.com/awillits/marginalia/internal/email"
	"github.com/awillits/marginalia/internal/middleware"
	"github.com/awillits/marginalia/internal/store"
)

// maxCodeAttempts is how many wrong guesses burn a login code.
const maxCodeAttempts = 5

type AuthHandler struct {
	users         *store.UserStore
	sessions      *store.SessionStore
	codes         *store.LoginCodeStore
	mailer        *email.Client
	secureCookies bool
	logger        *slog.Logger
}

func NewAuthHandler(users *store.UserStore, sessions *store.SessionStore, codes *store.LoginCodeStore, mailer *email.Client, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:         users,
		sessions:      sessions,
		codes:         codes,
		mailer:        mailer,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

func normalizeEmail(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if _, err := mail.ParseAddress(s); err != nil {
		return "", false
	}
	return s, true
}

// codeSent is the response for both register and login regardless of whether
// the address exists, so the API does not leak which emails have accounts.
func codeSent(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "If the address is valid, a sign-in code has been sent.",
	})
}

type registerRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Register creates the account and emails a verification code. Existing
// accounts get a regular sign-in code instead of an error.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	addr, ok := normalizeEmail(req.Email)
	if !ok {
		writeError(w, http.StatusBadRequest, "A valid email address is required")
		return
	}

	user, err := h.users.GetByEmail(addr)
	if err != nil {
		h.logger.Error("look up user", "error", err)
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	purpose := "login"
	if user == nil {
		purpose = "register"
		if _, err := h.users.Create(addr, strings.TrimSpace(req.Name)); err != nil {
			h.logger.Error("create user", "error", err)
			writeError(w, http.StatusInternalServerError, "Registration failed")
			return
		}
	}

	h.issueCode(addr, purpose)
	codeSent(w)
}

type loginRequest struct {
	Email string `json:"email"`
}

// Login emails a sign-in code to an existing account. Unknown addresses get
// the same response with no email sent.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	addr, ok := normalizeEmail(req.Email)
	if !ok {
		writeError(w, http.StatusBadRequest, "A valid email address is required")
		return
	}

	user, err := h.users.GetByEmail(addr)
	if err != nil {
		h.logger.Error("look up user", "error", err)
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}
	if user != nil {
		h.issueCode(addr, "login")
	}
	codeSent(w)
}

func (h *AuthHandler) issueCode(addr, purpose string) {
	code, err := h.codes.Create(addr, purpose)
	if err != nil {
		h.logger.Error("create login code", "error", err)
		return
	}
	if !h.mailer.Configured() {
		// Self-hosted installs without Postmark read the code from the log.
		h.logger.Info("login code issued", "email", addr, "code", code.Code)
		return
	}
	if err := h.mailer.SendLoginCode(addr, code.Code, purpose); err != nil {
		h.logger.Error("send login code", "error", err)
	}
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// Verify exchanges a valid code for a session cookie.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	addr, ok := normalizeEmail(req.Email)
	if !ok {
		writeError(w, http.StatusBadRequest, "A valid email address is required")
		return
	}

	code := strings.TrimSpace(req.Code)
	lc, err := h.codes.GetByEmailAndCode(addr, code)
	if err != nil {
		h.logger.Error("look up login code", "error", err)
		writeError(w, http.StatusInternalServerError, "Verification failed")
		return
	}
	if lc == nil {
		// Count the miss against the pending code so brute force burns it.
		if pending, err := h.codes.GetLatestByEmail(addr); err == nil && pending != nil {
			attempts, err := h.codes.IncrementAttempts(pending.ID)
			if err == nil && attempts >= maxCodeAttempts {
				h.codes.MarkUsed(pending.ID)
			}
		}
		writeError(w, http.StatusUnauthorized, "Invalid or expired code")
		return
	}
	if lc.Attempts >= maxCodeAttempts {
		h.codes.MarkUsed(lc.ID)
		writeError(w, http.StatusUnauthorized, "Invalid or expired code")
		return
	}

	user, err := h.users.GetByEmail(addr)
	if err != nil || user == nil {
		h.logger.Error("look up user for verify", "error", err)
		writeError(w, http.StatusUnauthorized, "Invalid or expired code")
		return
	}

	if err := h.codes.MarkUsed(lc.ID); err != nil {
		h.logger.Error("mark code used", "error", err)
	}

	sess, err := h.sessions.Create(user.ID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, "Verification failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, user)
}

// Me returns the signed-in user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(auth.UserID(r.Context()))
	if err != nil || user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Logout deletes the current session and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if id := auth.SessionID(r.Context()); id != 0 {
		if err := h.sessions.Delete(id); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
