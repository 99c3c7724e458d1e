package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"blogger-auth/internal/domain"
	"blogger-auth/internal/dto"
	"blogger-auth/internal/netutil"
)

const refreshCookieName = "refreshToken"

type handlers struct {
	svc  Services
	wipe func(ctx context.Context) error
}

// guarded applies the per-(ip, endpoint) visit window before the handler
// runs. Denied requests never reach the orchestrators.
func (h *handlers) guarded(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.svc.Guard.Admit(r.Context(), clientIP(r), r.URL.Path); err != nil {
			writeError(w, err)
			return
		}
		next(w, r)
	}
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	pair, err := h.svc.Auth.Login(r.Context(), req, clientIP(r), r.UserAgent())
	if err != nil {
		writeError(w, err)
		return
	}
	setRefreshCookie(w, pair.RefreshToken, pair.RefreshExpiresAt)
	writeJSON(w, http.StatusOK, dto.LoginResponse{AccessToken: pair.AccessToken})
}

func (h *handlers) refresh(w http.ResponseWriter, r *http.Request) {
	token, ok := refreshCookie(r)
	if !ok {
		writeError(w, domain.ErrUnauthorized)
		return
	}
	pair, err := h.svc.Auth.Refresh(r.Context(), token, clientIP(r), r.UserAgent())
	if err != nil {
		writeError(w, err)
		return
	}
	setRefreshCookie(w, pair.RefreshToken, pair.RefreshExpiresAt)
	writeJSON(w, http.StatusOK, dto.LoginResponse{AccessToken: pair.AccessToken})
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	token, ok := refreshCookie(r)
	if !ok {
		writeError(w, domain.ErrUnauthorized)
		return
	}
	if err := h.svc.Auth.Logout(r.Context(), token); err != nil {
		writeError(w, err)
		return
	}
	clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, domain.ErrUnauthorized)
		return
	}
	me, err := h.svc.Auth.Me(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, me)
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := h.svc.Registration.Register(r.Context(), req); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) confirmRegistration(w http.ResponseWriter, r *http.Request) {
	var req dto.ConfirmationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := h.svc.Registration.Confirm(r.Context(), req.Code); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) resendConfirmation(w http.ResponseWriter, r *http.Request) {
	var req dto.EmailResendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if !validEmail(req.Email) {
		http.Error(w, "malformed email", http.StatusBadRequest)
		return
	}
	if err := h.svc.Registration.Resend(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) passwordRecovery(w http.ResponseWriter, r *http.Request) {
	var req dto.PasswordRecoveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if !validEmail(req.Email) {
		http.Error(w, "malformed email", http.StatusBadRequest)
		return
	}
	if err := h.svc.Recovery.Request(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) newPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.NewPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := h.svc.Recovery.Redeem(r.Context(), req.NewPassword, req.RecoveryCode); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) listDevices(w http.ResponseWriter, r *http.Request) {
	token, ok := refreshCookie(r)
	if !ok {
		writeError(w, domain.ErrUnauthorized)
		return
	}
	devices, err := h.svc.Devices.List(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

func (h *handlers) revokeOtherDevices(w http.ResponseWriter, r *http.Request) {
	token, ok := refreshCookie(r)
	if !ok {
		writeError(w, domain.ErrUnauthorized)
		return
	}
	if err := h.svc.Devices.RevokeOthers(r.Context(), token); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) revokeDevice(w http.ResponseWriter, r *http.Request) {
	token, ok := refreshCookie(r)
	if !ok {
		writeError(w, domain.ErrUnauthorized)
		return
	}
	if err := h.svc.Devices.RevokeOne(r.Context(), token, chi.URLParam(r, "deviceId")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) wipeAllData(w http.ResponseWriter, r *http.Request) {
	if err := h.wipe(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func clientIP(r *http.Request) string {
	// chi's RealIP rewrites RemoteAddr from X-Forwarded-For / X-Real-IP,
	// so normally there is no port to strip; NormalizeIP copes either way.
	if normalized, ok := netutil.NormalizeIP(r.RemoteAddr); ok {
		return normalized
	}
	return r.RemoteAddr
}

// validEmail is a syntactic check only; the bare-address comparison rejects
// display-name forms like "Alice <a@b.c>" that ParseAddress accepts.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(auth[len(prefix):]), true
}

func refreshCookie(r *http.Request) (string, bool) {
	c, err := r.Cookie(refreshCookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func setRefreshCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

func clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrRateLimited):
		status = http.StatusTooManyRequests
	}
	http.Error(w, err.Error(), status)
}
