package server

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/roadreveal/pkg/buildinfo"
	"github.com/matzehuels/roadreveal/pkg/errors"
	"github.com/matzehuels/roadreveal/pkg/pipeline"
	"github.com/matzehuels/roadreveal/pkg/store"
)

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

type pathResponse struct {
	ID     string   `json:"id"`
	Length int      `json:"length"`
	Coords [][2]int `json:"coords"`
}

type listResponse struct {
	Artworks []*store.Record `json:"artworks"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusOf maps an error code to an HTTP status.
func statusOf(code errors.Code) int {
	switch {
	case code.IsInvalid():
		return http.StatusBadRequest
	case code.IsNotFound():
		return http.StatusNotFound
	case code == errors.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	case code == errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, logger *log.Logger, err error) {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
			Code:    errors.ErrCodeInvalidInput,
			Message: "upload exceeds " + strconv.FormatInt(tooLarge.Limit, 10) + " bytes",
		})
		return
	}

	code := errors.GetCode(err)
	status := statusOf(code)
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		code, msg = errors.ErrCodeInternal, "internal error"
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func notFoundRoute(r *http.Request) error {
	return errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path)
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Short(),
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, s.logger, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	recs, err := s.store.List(r.Context(), limit)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if recs == nil {
		recs = []*store.Record{}
	}
	writeJSON(w, http.StatusOK, listResponse{Artworks: recs})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	opts, err := s.createOptions(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	name, data, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	res, err := s.runner.Prepare(r.Context(), pipeline.ImageInput(name, data), opts)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	rec := newRecord(name, res, opts)
	if err := s.store.Create(r.Context(), rec); err != nil {
		writeError(w, s.logger, err)
		return
	}

	s.logger.Info("artwork created",
		"id", rec.ID,
		"name", rec.Name,
		"roads", rec.Roads,
		"path", rec.PathLen)
	w.Header().Set("Location", "/v1/artworks/"+rec.ID)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	coords := rec.Path
	if coords == nil {
		coords = [][2]int{}
	}
	writeJSON(w, http.StatusOK, pathResponse{ID: rec.ID, Length: len(coords), Coords: coords})
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, s.logger, err)
		return
	}
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	opts, err := s.frameOptions(r, rec, format)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	res, err := resultFromRecord(rec)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	artifacts, hit, err := s.runner.RenderWithCacheInfo(r.Context(), res, opts)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	_, _ = w.Write(artifacts[format])
}

// =============================================================================
// Request parsing
// =============================================================================

func (s *Server) validateID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := errors.ValidateArtworkID(chi.URLParam(r, "id")); err != nil {
			writeError(w, s.logger, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// createOptions applies the query overrides of a POST to the server
// defaults.
func (s *Server) createOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.defaults
	opts.Logger = s.logger
	q := r.URL.Query()

	if v := q.Get("spacing"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid spacing %q", v)
		}
		opts.Sample.Spacing = n
	}
	if v := q.Get("threshold"); v != "" {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid threshold %q (0-255)", v)
		}
		opts.Sample.Threshold = uint8(n)
	}
	if v := q.Get("strategy"); v != "" {
		opts.Path.Strategy = v
	}
	if v := q.Get("max_steps"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid max_steps %q", v)
		}
		opts.Path.MaxSteps = n
	}
	if v := q.Get("seed"); v != "" {
		// Records are stored as BSON, which has no unsigned 64-bit integer.
		n, err := strconv.ParseUint(v, 10, 63)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid seed %q", v)
		}
		opts.Render.Seed = n
	}
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

// frameOptions builds render options for one frame of rec.
func (s *Server) frameOptions(r *http.Request, rec *store.Record, format string) (pipeline.Options, error) {
	opts := s.defaults
	opts.Logger = s.logger
	opts.Render.Formats = []string{format}
	opts.Render.Width = rec.Width
	opts.Render.Height = rec.Height
	opts.Render.BlockSize = rec.BlockSize
	opts.Render.Seed = rec.Seed
	opts.Render.Reveal = nil
	opts.Render.Progress = nil
	q := r.URL.Query()

	if v := q.Get("reveal"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid reveal %q", v)
		}
		opts.Render.Reveal = &n
	} else if v := q.Get("progress"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid progress %q", v)
		}
		opts.Render.Progress = &p
	}
	if v := q.Get("loudness"); v != "" {
		l, err := strconv.ParseFloat(v, 64)
		if err != nil || l < 0 || l > 1 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid loudness %q (0-1)", v)
		}
		opts.Render.Loudness = l
	}
	if v := q.Get("style"); v != "" {
		opts.Render.Style = v
	}
	if v := q.Get("scale"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 || f > 8 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid scale %q", v)
		}
		opts.Render.Scale = f
	}
	var err error
	if opts.Render.Gallery, err = boolParam(q.Get("gallery"), opts.Render.Gallery); err != nil {
		return opts, err
	}
	panels, err := boolParam(q.Get("panels"), !opts.Render.NoPanels)
	if err != nil {
		return opts, err
	}
	opts.Render.NoPanels = !panels

	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

func boolParam(v string, def bool) (bool, error) {
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, errors.New(errors.ErrCodeInvalidInput, "invalid boolean %q", v)
	}
	return b, nil
}

// readUpload returns the uploaded image from a multipart "image" field or
// the raw body.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)

	name := r.URL.Query().Get("name")
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var body io.Reader = r.Body
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(s.maxUpload); err != nil {
			var tooLarge *http.MaxBytesError
			if stderrors.As(err, &tooLarge) {
				return "", nil, err
			}
			return "", nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid multipart form")
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			return "", nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "missing form field \"image\"")
		}
		defer file.Close()
		if name == "" {
			name = header.Filename
		}
		body = file
	}

	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return "", nil, err
		}
		return "", nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read upload")
	}
	if len(data) == 0 {
		return "", nil, errors.New(errors.ErrCodeInvalidImage, "empty upload")
	}
	if name == "" {
		name = "upload"
	}
	return strings.TrimSpace(name), data, nil
}

func contentType(format string) string {
	switch format {
	case pipeline.FormatSVG:
		return "image/svg+xml"
	case pipeline.FormatPNG:
		return "image/png"
	case pipeline.FormatJSON:
		return "application/json"
	}
	return "text/vnd.graphviz; charset=utf-8"
}
