package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/anigokul432/ai-v2v-interviewer-backend/internal/audit"
	"github.com/anigokul432/ai-v2v-interviewer-backend/internal/identity"
)

type tokenRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type googleLoginRequest struct {
	IDToken string `json:"id_token"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Kind     string `json:"kind"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Kind      string    `json:"kind"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type tokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

func toUserResponse(u *identity.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Kind:      u.Kind,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}

func (a *API) handleAuthToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Login) == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "login and password are required")
		return
	}

	token, user, err := a.identity.IssueToken(r.Context(), req.Login, req.Password)
	if err != nil {
		handleIdentityError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.token.issued", map[string]any{
		"user_id":    user.ID,
		"kind":       user.Kind,
		"expires_at": token.ExpiresAt.Format(time.RFC3339),
	})

	writeJSON(w, http.StatusOK, tokenResponse{
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt,
		User:      toUserResponse(user),
	})
}

func (a *API) handleAuthGoogle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req googleLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.IDToken) == "" {
		writeError(w, r, http.StatusBadRequest, "id_token is required")
		return
	}

	token, user, err := a.identity.LoginWithAssertion(r.Context(), req.IDToken)
	if err != nil {
		handleIdentityError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.google.login", map[string]any{
		"user_id":    user.ID,
		"expires_at": token.ExpiresAt.Format(time.RFC3339),
	})

	writeJSON(w, http.StatusOK, tokenResponse{
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt,
		User:      toUserResponse(user),
	})
}

func (a *API) handleUsersCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.registerUser(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost)
	}
}

func (a *API) handleUserResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/users/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	user, err := a.identity.FindUser(r.Context(), id)
	if err != nil {
		handleIdentityError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (a *API) registerUser(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := a.identity.Register(r.Context(), req.Username, req.Email, req.Password, req.Kind)
	if err != nil {
		handleIdentityError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "user.registered", map[string]any{
		"user_id": user.ID,
		"kind":    user.Kind,
	})

	w.Header().Set("Location", "/users/"+user.ID)
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}
