package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/alsaadxx12/roda10-sub000/pkg/statement"
	"github.com/alsaadxx12/roda10-sub000/pkg/store"
)

// Response headers set on rendered documents.
const (
	WarningsHeader = "X-Template-Warnings"
	BuiltinHeader  = "X-Template-Builtin"
)

type errorResponse struct {
	Error    string                    `json:"error"`
	Warnings []statement.SyntaxWarning `json:"warnings,omitempty"`
}

type templateRequest struct {
	Kind   string `json:"kind"`
	Format string `json:"format"`
	Source string `json:"source"`
}

type templateResponse struct {
	Template   store.Template              `json:"template"`
	Validation *statement.ValidationResult `json:"validation"`
}

type renderRequest struct {
	Kind   string `json:"kind"`
	Format string `json:"format"`
	// Template is an inline source. When empty, Name is loaded instead.
	Template string                 `json:"template"`
	Name     string                 `json:"name"`
	Data     map[string]interface{} `json:"data"`
}

type renderResponse struct {
	HTML     string                    `json:"html"`
	Warnings []statement.SyntaxWarning `json:"warnings"`
	Builtin  bool                      `json:"builtin,omitempty"`
}

type validateRequest struct {
	Kind     string `json:"kind"`
	Template string `json:"template"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) handleCatalogue(w http.ResponseWriter, r *http.Request) {
	kind, ok := statement.ParseKind(r.URL.Query().Get("kind"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown kind %q", r.URL.Query().Get("kind"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"kind":   kind,
		"groups": statement.CatalogueFor(kind),
	})
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	ctx, cancel := s.storeContext(r)
	defer cancel()

	templates, err := s.store.List(ctx)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"templates": templates})
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	ctx, cancel := s.storeContext(r)
	defer cancel()

	tmpl, err := s.store.Get(ctx, mux.Vars(r)["name"])
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

func (s *Server) handlePutTemplate(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	var req templateRequest
	if !s.decode(w, r, &req) {
		return
	}

	kind, ok := statement.ParseKind(req.Kind)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown kind %q", req.Kind)
		return
	}
	format, ok := statement.ParseFormat(req.Format)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown format %q", req.Format)
		return
	}

	ctx, cancel := s.storeContext(r)
	defer cancel()

	tmpl := store.Template{Name: mux.Vars(r)["name"], Kind: kind, Format: format, Source: req.Source}
	if err := s.store.Put(ctx, tmpl); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if stored, err := s.store.Get(ctx, tmpl.Name); err == nil {
		tmpl = stored
	}

	writeJSON(w, http.StatusOK, templateResponse{
		Template:   tmpl,
		Validation: s.engine.Validate(req.Source, kind),
	})
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	ctx, cancel := s.storeContext(r)
	defer cancel()

	if err := s.store.Delete(ctx, mux.Vars(r)["name"]); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePreview renders a stored template, or the built-in default when the
// name is unknown, against the sample data of its kind.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	kind, ok := statement.ParseKind(r.URL.Query().Get("kind"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown kind %q", r.URL.Query().Get("kind"))
		return
	}

	ctx, cancel := s.storeContext(r)
	defer cancel()

	tmpl, err := s.loader.Load(ctx, mux.Vars(r)["name"], kind)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	result, err := s.engine.RenderFormat(tmpl.Kind, tmpl.Source, tmpl.Format, sampleData(tmpl.Kind))
	if err != nil {
		s.writeRenderError(w, r, err)
		return
	}

	w.Header().Set(WarningsHeader, strconv.Itoa(len(result.Warnings)))
	w.Header().Set(BuiltinHeader, strconv.FormatBool(tmpl.Builtin))
	writeHTML(w, http.StatusOK, result.HTML)
}

// handleRender renders an inline or stored template against posted data.
// The response is the HTML document unless the client accepts JSON.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !s.decode(w, r, &req) {
		return
	}

	kind, ok := statement.ParseKind(req.Kind)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown kind %q", req.Kind)
		return
	}
	format, ok := statement.ParseFormat(req.Format)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown format %q", req.Format)
		return
	}

	source, builtin := req.Template, false
	if source == "" {
		ctx, cancel := s.storeContext(r)
		tmpl, err := s.loader.Load(ctx, req.Name, kind)
		cancel()
		if err != nil {
			s.writeStoreError(w, r, err)
			return
		}
		source, builtin = tmpl.Source, tmpl.Builtin
		if req.Format == "" {
			format = tmpl.Format
		}
	}

	data := statement.TemplateData(req.Data)
	if data == nil {
		data = sampleData(kind)
	}

	result, err := s.engine.RenderFormat(kind, source, format, data)
	if err != nil {
		s.writeRenderError(w, r, err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		writeJSON(w, http.StatusOK, renderResponse{
			HTML:     result.HTML,
			Warnings: nonNil(result.Warnings),
			Builtin:  builtin,
		})
		return
	}
	w.Header().Set(WarningsHeader, strconv.Itoa(len(result.Warnings)))
	w.Header().Set(BuiltinHeader, strconv.FormatBool(builtin))
	writeHTML(w, http.StatusOK, result.HTML)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if !s.decode(w, r, &req) {
		return
	}
	kind, ok := statement.ParseKind(req.Kind)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown kind %q", req.Kind)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Validate(req.Template, kind))
}

func sampleData(kind statement.Kind) statement.TemplateData {
	if kind == statement.KindVoucher {
		return statement.SampleVoucherData().TemplateData()
	}
	return statement.SampleStatementData().TemplateData()
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "no template store configured")
		return false
	}
	return true
}

func (s *Server) storeContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.config.StoreTimeout)
}

// decode reads a JSON body, answering 400 or 413 itself on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	defer body.Close()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "request body exceeds %d bytes", s.config.MaxBodyBytes)
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, "request body is empty")
		default:
			writeError(w, http.StatusBadRequest, "invalid JSON body: %v", err)
		}
		return false
	}
	return true
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrInvalidName):
		status = http.StatusBadRequest
	case store.IsNotFound(err):
		status = http.StatusNotFound
	case store.IsUnavailable(err):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("store request failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err),
		)
	}
	writeError(w, status, "%s", err.Error())
}

func (s *Server) writeRenderError(w http.ResponseWriter, r *http.Request, err error) {
	if statement.IsTemplateError(err) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:    err.Error(),
			Warnings: statement.WarningsOf(err),
		})
		return
	}
	s.logger.Error("render failed",
		zap.String("request_id", RequestID(r.Context())),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "%s", err.Error())
}

func nonNil(warnings []statement.SyntaxWarning) []statement.SyntaxWarning {
	if warnings == nil {
		return []statement.SyntaxWarning{}
	}
	return warnings
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeHTML(w http.ResponseWriter, status int, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, html)
}

func writeError(w http.ResponseWriter, status int, format string, args ...interface{}) {
	writeJSON(w, status, errorResponse{Error: fmt.Sprintf(format, args...)})
}
