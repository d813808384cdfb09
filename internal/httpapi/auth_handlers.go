package httpapi

import (
	"net/http"
	"strings"

	"ouvidoria.app/internal/audit"
	"ouvidoria.app/internal/auth"
)

type signinRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Competencia bool   `json:"competencia"`
}

type signoffRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	TokenAccess  string `json:"token_access"`
	TokenRefresh string `json:"token_refresh"`
}

type pairResponse struct {
	TokenAccess  string `json:"token_access"`
	TokenRefresh string `json:"token_refresh"`
}

func (a *API) handleSignin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req signinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	sess, err := a.auth.Signup(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.signup", map[string]any{
		"user_id": sess.User.ID,
		"email":   sess.User.Email,
	})

	writeJSON(w, http.StatusOK, signinResponse{
		ID:           sess.User.ID,
		Email:        sess.User.Email,
		Name:         sess.User.Name,
		TokenAccess:  sess.Pair.Access,
		TokenRefresh: sess.Pair.Refresh,
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	kind := auth.KindIndividual
	if req.Competencia {
		kind = auth.KindOrganization
	}
	sess, err := a.auth.Login(r.Context(), req.Email, req.Password, kind)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pairResponse{
		TokenAccess:  sess.Pair.Access,
		TokenRefresh: sess.Pair.Refresh,
	})
}

// handleRefresh exchanges a refresh token carried as the bearer credential
// for a new pair.
func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	raw, err := extractBearerToken(r.Header.Get(authHeader))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	}

	sess, err := a.auth.Refresh(r.Context(), raw)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pairResponse{
		TokenAccess:  sess.Pair.Access,
		TokenRefresh: sess.Pair.Refresh,
	})
}

func (a *API) handleSignoff(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req signoffRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	if err := a.auth.Signoff(r.Context(), req.Email, req.Password); err != nil {
		handleDomainError(w, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.signoff", map[string]any{
		"email": strings.TrimSpace(strings.ToLower(req.Email)),
	})

	writeJSON(w, http.StatusOK, map[string]any{})
}

// handleMe echoes the principal carried by the access token.
func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing principal")
		return
	}

	profile := principal.Snapshot()
	resp := map[string]any{
		"id":    profile.ID,
		"email": profile.Email,
		"name":  profile.Name,
	}
	if member, ok := principal.(auth.OrganizationMember); ok {
		resp["competenciaId"] = member.CompetenciaID
	}
	writeJSON(w, http.StatusOK, resp)
}
