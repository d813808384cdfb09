package httpapi

import (
	"net/http"
	"strings"

	"ouvidoria.app/internal/auth"
)

type competenciaResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newCompetenciaResponse(c *auth.Competencia) competenciaResponse {
	return competenciaResponse{ID: c.ID, Name: c.Name}
}

func (a *API) handleCompetenciaCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	list, err := a.competencias.List(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}

	resp := make([]competenciaResponse, 0, len(list))
	for _, c := range list {
		resp = append(resp, newCompetenciaResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleCompetenciaResource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/competencia/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not_found", "resource not found")
		return
	}

	c, err := a.competencias.Find(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCompetenciaResponse(c))
}
