package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/bankgate/internal/gateway/domain"
	"github.com/aussiebroadwan/bankgate/internal/gateway/service"
	"github.com/aussiebroadwan/bankgate/pkg/gatewaysdk"
	"github.com/aussiebroadwan/bankgate/pkg/httpx"
	"github.com/aussiebroadwan/bankgate/pkg/slogx"
)

// SessionHandler serves login and logout.
type SessionHandler struct {
	Sessions *service.SessionService
}

// HandleLogin handles POST /v1/login
//
//	@Summary		Log In
//	@Description	Verifies the user's password and opens a gateway session. The returned token authenticates every other endpoint.
//	@Tags			Sessions
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			username	formData	string						true	"Username"
//	@Param			password	formData	string						true	"Password"
//	@Success		200			{object}	gatewaysdk.LoginResponse	"access_token, session_id"
//	@Failure		400			{object}	gatewaysdk.ErrorResponse	"error, error_description"
//	@Failure		401			{object}	gatewaysdk.ErrorResponse	"error, error_description"
//	@Failure		429			{object}	gatewaysdk.ErrorResponse	"error, error_description"
//	@Header			200			{string}	Cache-Control				"no-store"
//	@Router			/v1/login [post].
func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		gatewaysdk.ErrInvalidFormBody.WriteError(w)
		return
	}
	username, password := r.PostForm.Get("username"), r.PostForm.Get("password")
	if username == "" || password == "" {
		gatewaysdk.ErrInvalidRequest.WithDescription("username and password are required").WriteError(w)
		return
	}

	login, err := h.Sessions.Login(ctx, username, password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(ctx).Info("session opened", "session_id", login.SessionID)
	httpx.WriteJSON(w, http.StatusOK, gatewaysdk.LoginResponse{
		AccessToken: login.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(time.Until(login.ExpiresAt).Seconds()),
		SessionID:   login.SessionID,
	})
}

// HandleLogout handles DELETE /v1/session
//
//	@Summary		Log Out
//	@Description	Ends the session. Its payments, consents and pending authorization links are removed with it.
//	@Tags			Sessions
//	@Security		BearerAuth
//	@Success		204	"Session ended"
//	@Failure		401	{object}	gatewaysdk.ErrorResponse	"error, error_description"
//	@Router			/v1/session [delete].
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	sid, ok := httpx.SessionIDFromContext(r.Context())
	if !ok {
		gatewaysdk.ErrSessionExpired.WriteError(w)
		return
	}
	if err := h.Sessions.Logout(r.Context(), sid); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// currentSession loads the session named by the verified token. A token
// can outlive its session after logout, so the store has the final say.
func currentSession(r *http.Request, sessions *service.SessionService) (domain.Session, error) {
	sid, ok := httpx.SessionIDFromContext(r.Context())
	if !ok {
		return domain.Session{}, service.ErrSessionExpired
	}
	return sessions.Get(r.Context(), sid)
}
