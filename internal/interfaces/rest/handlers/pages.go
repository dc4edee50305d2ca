package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/DanielPopoola/wallee-gateway/internal/application/services"
)

//go:embed templates/page.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html"))

func (h *Handlers) SuccessPage(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Pages.Success(r.Context(), r.URL.Query().Get("transaction_id"))
	h.renderPage(w, r, result, err)
}

func (h *Handlers) FailedPage(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Pages.Failed(r.Context(), r.URL.Query().Get("merchant_reference"))
	h.renderPage(w, r, result, err)
}

func (h *Handlers) renderPage(w http.ResponseWriter, r *http.Request, result services.PageResult, err error) {
	if err != nil {
		h.logger.Error("landing page failed", "path", r.URL.Path, "error", err)
		h.writePage(w, http.StatusInternalServerError, services.Page{
			Title:   "Payment",
			Message: "We could not load your payment. Please try again later.",
		})
		return
	}

	switch res := result.(type) {
	case services.RedirectTo:
		http.Redirect(w, r, res.URL, http.StatusSeeOther)
	case services.Render:
		h.writePage(w, http.StatusOK, res.Page)
	default:
		h.logger.Error("unexpected page result", "type", fmt.Sprintf("%T", result))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handlers) writePage(w http.ResponseWriter, status int, page services.Page) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		h.logger.Error("render page", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
