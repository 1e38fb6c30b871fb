package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shardhost/botengine/internal/facade"
)

// AdminAPI exposes the Facade's ownership-checked lifecycle operations over
// plain JSON HTTP, for an outer collaborator that authenticates callers
// and forwards the caller identity this package reads from the X-User-Id
// header.
type AdminAPI struct {
	f *facade.Facade
}

func NewAdminAPI(f *facade.Facade) *AdminAPI {
	return &AdminAPI{f: f}
}

// Mount attaches the admin routes under r.
func (a *AdminAPI) Mount(r chi.Router) {
	r.Post("/api/bots/{botID}/start", a.start)
	r.Post("/api/bots/{botID}/stop", a.stop)
	r.Post("/api/bots/{botID}/restart", a.restart)
	r.Get("/api/bots/{botID}/running", a.isRunning)
	r.Get("/api/bots/{botID}/logs", a.readLogs)
	r.Put("/api/bots/{botID}/files/{filename}", a.updateFile)
	r.Delete("/api/bots/{botID}", a.delete)
}

func callerID(r *http.Request) string {
	return r.Header.Get("X-User-Id")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFacadeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, facade.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, facade.ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, facade.ErrUnknownFilename):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func (a *AdminAPI) start(w http.ResponseWriter, r *http.Request) {
	res, err := a.f.Start(r.Context(), callerID(r), chi.URLParam(r, "botID"))
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *AdminAPI) stop(w http.ResponseWriter, r *http.Request) {
	res, err := a.f.Stop(r.Context(), callerID(r), chi.URLParam(r, "botID"))
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *AdminAPI) restart(w http.ResponseWriter, r *http.Request) {
	res, err := a.f.Restart(r.Context(), callerID(r), chi.URLParam(r, "botID"))
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *AdminAPI) isRunning(w http.ResponseWriter, r *http.Request) {
	running, err := a.f.IsRunning(r.Context(), callerID(r), chi.URLParam(r, "botID"))
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"running": running})
}

func (a *AdminAPI) readLogs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := a.f.ReadLogs(r.Context(), callerID(r), chi.URLParam(r, "botID"), limit)
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (a *AdminAPI) updateFile(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "could not read request body"})
		return
	}
	err = a.f.UpdateFile(r.Context(), callerID(r), chi.URLParam(r, "botID"), chi.URLParam(r, "filename"), string(body))
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (a *AdminAPI) delete(w http.ResponseWriter, r *http.Request) {
	if err := a.f.Delete(r.Context(), callerID(r), chi.URLParam(r, "botID")); err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
