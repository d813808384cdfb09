package httpapi

import (
	"net/http"
	"strings"

	"ouvidoria.app/internal/audit"
	"ouvidoria.app/internal/auth"
)

// Member management is reserved to organization accounts; every operation is
// scoped to the caller's own competência.

type createUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

type userResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	CompetenciaID string `json:"competenciaId"`
}

func newUserResponse(u *auth.User) userResponse {
	resp := userResponse{ID: u.ID, Email: u.Email, Name: u.Name}
	if u.CompetenciaID != nil {
		resp.CompetenciaID = *u.CompetenciaID
	}
	return resp
}

// callerCompetencia rejects individual accounts before any member operation.
func callerCompetencia(w http.ResponseWriter, r *http.Request) (string, bool) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing principal")
		return "", false
	}
	member, ok := principal.(auth.OrganizationMember)
	if !ok {
		writeError(w, http.StatusForbidden, "UserNotInCompetencia", "caller is not an organization account")
		return "", false
	}
	return member.CompetenciaID, true
}

func (a *API) handleUserCollection(w http.ResponseWriter, r *http.Request) {
	competenciaID, ok := callerCompetencia(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.listUsers(w, r, competenciaID)
	case http.MethodPost:
		a.createUser(w, r, competenciaID)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleUserResource(w http.ResponseWriter, r *http.Request) {
	competenciaID, ok := callerCompetencia(w, r)
	if !ok {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/user/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not_found", "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getUser(w, r, competenciaID, id)
	case http.MethodPut:
		a.updateUser(w, r, competenciaID, id)
	case http.MethodDelete:
		a.deleteUser(w, r, competenciaID, id)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request, competenciaID string) {
	users, err := a.auth.Members(r.Context(), competenciaID)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, newUserResponse(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request, competenciaID string) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	u, err := a.auth.CreateMember(r.Context(), competenciaID, req.Email, req.Name, req.Password)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "user.member.create", map[string]any{
		"member_id":      u.ID,
		"competencia_id": competenciaID,
	})

	writeJSON(w, http.StatusOK, newUserResponse(u))
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request, competenciaID, id string) {
	u, err := a.auth.Member(r.Context(), id, competenciaID)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(u))
}

func (a *API) updateUser(w http.ResponseWriter, r *http.Request, competenciaID, id string) {
	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	u, err := a.auth.UpdateMember(r.Context(), competenciaID, id, req.Name, req.Password)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "user.member.update", map[string]any{
		"member_id":      id,
		"competencia_id": competenciaID,
	})

	writeJSON(w, http.StatusOK, newUserResponse(u))
}

func (a *API) deleteUser(w http.ResponseWriter, r *http.Request, competenciaID, id string) {
	if err := a.auth.RemoveMember(r.Context(), competenciaID, id); err != nil {
		handleDomainError(w, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "user.member.delete", map[string]any{
		"member_id":      id,
		"competencia_id": competenciaID,
	})

	writeJSON(w, http.StatusOK, map[string]any{})
}
