package api

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/render"
)

// pageHandler serves the browser upload page and its HTML batch report.
// NewRouter mounts it when configured WithPages.
type pageHandler struct {
	handler  *Handler
	renderer *render.HTMLRenderer
}

func (p *pageHandler) handleIndex(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusOK, render.ReportView{Capacity: p.currentCapacity()})
}

func (p *pageHandler) handleReport(w http.ResponseWriter, r *http.Request) {
	plan, err := p.handler.planUpload(w, r)

	// the form is parsed by planUpload under its size limit
	view := render.ReportView{Capacity: p.currentCapacity()}
	if r.MultipartForm != nil {
		if raw := strings.TrimSpace(r.FormValue(capacityFormField)); raw != "" {
			view.Capacity = raw
		}
	}
	if err != nil {
		failure := p.handler.uploadFailureFor(r, err)
		view.Error = userMessage(failure)
		p.render(w, r, failure.status, view)
		return
	}

	view.Plan = &plan
	p.render(w, r, http.StatusOK, view)
}

func (p *pageHandler) render(w http.ResponseWriter, r *http.Request, status int, view render.ReportView) {
	var buf bytes.Buffer
	if err := p.renderer.Render(&buf, view); err != nil {
		p.handler.logger.Error("render page failed",
			zap.String("request_id", requestIDFromContext(r.Context())),
			zap.Error(err),
		)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (p *pageHandler) currentCapacity() string {
	capacity, err := p.handler.storage.GetCapacity()
	if err != nil {
		return ""
	}
	return capacity.String()
}

// userMessage flattens a failure into the single line shown on the page.
func userMessage(f uploadFailure) string {
	parts := []string{f.message}
	if f.details != "" {
		parts = append(parts, f.details)
	}
	for _, row := range f.rows {
		parts = append(parts, "row "+strconv.Itoa(row.Row)+" ("+row.Column+"): "+row.Error)
	}
	return strings.Join(parts, "; ")
}
