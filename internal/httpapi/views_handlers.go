package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"jobscraper-web/internal/domain"
	"jobscraper-web/internal/render"
	"jobscraper-web/internal/session"
	"jobscraper-web/internal/view"
)

// HeaderViewRev carries the state revision a grid fragment was rendered from.
const HeaderViewRev = "X-View-Rev"

type ViewsHandler struct {
	Sessions   *session.Manager
	LinkOrigin string
}

type roleOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type selectRoleReq struct {
	Role string `json:"role"`
}

// Index opens a fresh view for this page load and renders it. The mount
// fetch for the default role is already under way.
func (h ViewsHandler) Index(w http.ResponseWriter, r *http.Request) {
	v, err := h.Sessions.Create()
	if err != nil {
		writeErr(w, r, err)
		return
	}
	h.writePage(w, r, v)
}

func (h ViewsHandler) Page(w http.ResponseWriter, r *http.Request) {
	v, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.writePage(w, r, v)
}

func (h ViewsHandler) Grid(w http.ResponseWriter, r *http.Request) {
	v, ok := h.lookup(w, r)
	if !ok {
		return
	}

	grid := render.GridFromState(v.Snapshot(), h.LinkOrigin)
	var buf bytes.Buffer
	if err := render.Grid(&buf, grid); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "render_failed", err.Error())
		return
	}
	// lets the page drop a response that was overtaken by a newer one
	w.Header().Set(HeaderViewRev, strconv.FormatUint(grid.Rev, 10))
	writeHTML(w, buf.Bytes())
}

func (h ViewsHandler) State(w http.ResponseWriter, r *http.Request) {
	v, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, v.Snapshot())
}

func (h ViewsHandler) SelectRole(w http.ResponseWriter, r *http.Request) {
	v, ok := h.lookup(w, r)
	if !ok {
		return
	}

	raw, err := readRole(r)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	role, err := domain.ParseRole(raw)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	if _, err := v.SelectRole(role); err != nil {
		writeErr(w, r, err)
		return
	}

	if isFormPost(r) {
		http.Redirect(w, r, "/views/"+v.ID(), http.StatusSeeOther)
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true, "role": role, "state": v.Snapshot()})
}

func (h ViewsHandler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	v, ok := h.lookup(w, r)
	if !ok {
		return
	}

	dark, err := v.ToggleDarkMode()
	if err != nil {
		writeErr(w, r, err)
		return
	}

	if isFormPost(r) {
		http.Redirect(w, r, "/views/"+v.ID(), http.StatusSeeOther)
		return
	}
	writeJSON(w, map[string]any{"ok": true, "dark": dark})
}

func (h ViewsHandler) Close(w http.ResponseWriter, r *http.Request) {
	if !h.Sessions.Close(r.PathValue("id")) {
		writeErr(w, r, session.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h ViewsHandler) Roles(w http.ResponseWriter, r *http.Request) {
	roles := domain.Roles()
	out := make([]roleOption, 0, len(roles))
	for _, role := range roles {
		out = append(out, roleOption{ID: string(role), Label: role.Label()})
	}
	writeJSON(w, out)
}

func (h ViewsHandler) lookup(w http.ResponseWriter, r *http.Request) (*view.View, bool) {
	v, err := h.Sessions.Get(r.PathValue("id"))
	if err != nil {
		writeErr(w, r, err)
		return nil, false
	}
	return v, true
}

func (h ViewsHandler) writePage(w http.ResponseWriter, r *http.Request, v *view.View) {
	var buf bytes.Buffer
	if err := render.Page(&buf, render.PageFromState(v.ID(), v.Snapshot(), h.LinkOrigin)); err != nil {
		slog.Error("render page", "view", v.ID(), "err", err)
		WriteError(w, r, http.StatusInternalServerError, "render_failed", err.Error())
		return
	}
	writeHTML(w, buf.Bytes())
}

func readRole(r *http.Request) (string, error) {
	if isJSONBody(r) {
		var req selectRoleReq
		if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); err != nil {
			return "", errors.New("invalid JSON: " + err.Error())
		}
		return req.Role, nil
	}
	if err := r.ParseForm(); err != nil {
		return "", err
	}
	return r.PostFormValue("role"), nil
}

func writeHTML(w http.ResponseWriter, b []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(b)
}
