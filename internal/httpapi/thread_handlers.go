package httpapi

import (
	"net/http"
	"strings"

	"ouvidoria.app/internal/audit"
	"ouvidoria.app/internal/auth"
	"ouvidoria.app/internal/thread"
)

type createThreadRequest struct {
	Title         string `json:"title"`
	CompetenciaID string `json:"competeciaId"`
}

type updateThreadRequest struct {
	Status        *string `json:"status"`
	Title         *string `json:"title"`
	CompetenciaID *string `json:"competeciaId"`
}

type threadResponse struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Status        string  `json:"status"`
	CompetenciaID string  `json:"competeciaId"`
	UserID        string  `json:"userId"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

type messageResponse struct {
	ID     string   `json:"id"`
	Text   string   `json:"text"`
	DTH    string   `json:"dth"`
	Image  *string  `json:"image"`
	Lat    *float64 `json:"lat"`
	Lng    *float64 `json:"lng"`
	UserID string   `json:"userId"`
}

func newThreadResponse(t *thread.Thread) threadResponse {
	return threadResponse{
		ID:            t.ID,
		Title:         t.Title,
		Status:        string(t.Status),
		CompetenciaID: t.CompetenciaID,
		UserID:        t.UserID,
		CreatedAt:     t.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		UpdatedAt:     t.UpdatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

func newMessageResponse(m thread.Message) messageResponse {
	return messageResponse{
		ID:     m.ID,
		Text:   m.Text,
		DTH:    m.DTH.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Image:  m.Image,
		Lat:    m.Lat,
		Lng:    m.Lng,
		UserID: m.UserID,
	}
}

func (a *API) handleThreadCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listThreads(w, r)
	case http.MethodPost:
		a.createThread(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleThreadResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/reclamacao/")
	if path == "" {
		writeError(w, http.StatusNotFound, "not_found", "resource not found")
		return
	}

	if id := strings.TrimSuffix(path, "/mensagem"); id != path {
		if id == "" || strings.Contains(id, "/") {
			writeError(w, http.StatusNotFound, "not_found", "resource not found")
			return
		}
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		a.listMessages(w, r, id)
		return
	}

	if id := strings.TrimSuffix(path, "/ws"); id != path {
		if id == "" || strings.Contains(id, "/") {
			writeError(w, http.StatusNotFound, "not_found", "resource not found")
			return
		}
		a.serveThreadSocket(w, r, id)
		return
	}

	if strings.Contains(path, "/") {
		writeError(w, http.StatusNotFound, "not_found", "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getThread(w, r, path)
	case http.MethodPut:
		a.updateThread(w, r, path)
	case http.MethodDelete:
		a.deleteThread(w, r, path)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) listThreads(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing principal")
		return
	}

	threads, err := a.threads.List(r.Context(), principal, r.URL.Query().Get("title"))
	if err != nil {
		handleDomainError(w, err)
		return
	}

	resp := make([]threadResponse, 0, len(threads))
	for _, t := range threads {
		resp = append(resp, newThreadResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) createThread(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing principal")
		return
	}

	var req createThreadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	t, err := a.threads.Create(r.Context(), principal, req.Title, req.CompetenciaID)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "thread.create", map[string]any{
		"thread_id":      t.ID,
		"competencia_id": t.CompetenciaID,
	})

	writeJSON(w, http.StatusOK, newThreadResponse(t))
}

func (a *API) getThread(w http.ResponseWriter, r *http.Request, id string) {
	t, err := a.threads.Get(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newThreadResponse(t))
}

func (a *API) updateThread(w http.ResponseWriter, r *http.Request, id string) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing principal")
		return
	}

	var req updateThreadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	upd := thread.Update{Title: req.Title, CompetenciaID: req.CompetenciaID}
	if req.Status != nil {
		s := thread.Status(*req.Status)
		upd.Status = &s
	}

	t, err := a.threads.Update(r.Context(), principal, id, upd)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "thread.update", map[string]any{
		"thread_id": t.ID,
		"status":    string(t.Status),
	})

	writeJSON(w, http.StatusOK, newThreadResponse(t))
}

func (a *API) deleteThread(w http.ResponseWriter, r *http.Request, id string) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing principal")
		return
	}

	if err := a.threads.Delete(r.Context(), principal, id); err != nil {
		handleDomainError(w, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "thread.delete", map[string]any{
		"thread_id": id,
	})

	writeJSON(w, http.StatusOK, map[string]any{})
}

func (a *API) listMessages(w http.ResponseWriter, r *http.Request, id string) {
	msgs, err := a.threads.Messages(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	resp := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		resp = append(resp, newMessageResponse(m))
	}
	writeJSON(w, http.StatusOK, resp)
}
