package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"seo_enricher/apiclient"
	"seo_enricher/flow"
	"seo_enricher/generator"
)

//go:embed web/index.html
var webFS embed.FS

const (
	sessionCookie = "seo_session"
	maxBodyBytes  = 10 << 20
	maxUploadSize = 32 << 20
)

// Options tune a Server. Zero values pick the defaults.
type Options struct {
	Logger  *zap.Logger
	Metrics *Metrics
	// Timeout bounds one enrichment request. Zero means no limit beyond
	// the provider's own.
	Timeout time.Duration
	// SessionTTL is how long an idle browser session is kept.
	SessionTTL time.Duration
}

type Server struct {
	enricher *generator.Enricher
	store    *sessionStore
	logger   *zap.Logger
	metrics  *Metrics
	timeout  time.Duration
	page     *template.Template
}

func New(enricher *generator.Enricher, opts Options) (*Server, error) {
	if enricher == nil {
		return nil, errors.New("enricher required")
	}
	page, err := template.ParseFS(webFS, "web/index.html")
	if err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(prometheus.NewRegistry())
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	return &Server{
		enricher: enricher,
		store:    newStore(opts.SessionTTL),
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		timeout:  opts.Timeout,
		page:     page,
	}, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logMiddleware)

	r.Post(apiclient.GeneratePath, s.handleGenerateSEO)

	r.Get("/", s.handleIndex)
	r.Post("/upload", s.handleUpload)
	r.Post("/generate", s.handleGenerate)
	r.Get("/download", s.handleDownload)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.gatherer, promhttp.HandlerOpts{}))
	return r
}

// --- Enrichment endpoint ---

type generateReq struct {
	Rows []generator.Record `json:"rows"`
}

type errorResp struct {
	Error string `json:"error"`
}

const (
	msgNoRows    = "No rows provided."
	msgBadBody   = "Invalid request body."
	msgGenFailed = "Failed to generate SEO descriptions."
)

func (s *Server) handleGenerateSEO(w http.ResponseWriter, r *http.Request) {
	var req generateReq
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		s.metrics.request("bad_request")
		writeJSON(w, http.StatusBadRequest, errorResp{Error: msgBadBody})
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()
	mapping, err := s.enricher.Describe(ctx, req.Rows)
	switch {
	case errors.Is(err, generator.ErrNoRows):
		s.metrics.request("bad_request")
		writeJSON(w, http.StatusBadRequest, errorResp{Error: msgNoRows})
	case err != nil:
		s.metrics.request("failed")
		s.logger.Error("generate seo", zap.String("request_id", middleware.GetReqID(r.Context())), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp{Error: msgGenFailed})
	default:
		s.metrics.request("ok")
		writeJSON(w, http.StatusOK, mapping)
	}
}

// --- Web UI ---

type pageData struct {
	State   flow.State
	Preview template.HTML
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var state flow.State
	if ctrl, ok := s.lookup(r); ok {
		state = ctrl.State()
	}
	s.render(w, state)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	f, hdr, err := r.FormFile("file")
	if err != nil {
		// no file picked; the page stays as it was
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		http.Error(w, "failed to read upload", http.StatusBadRequest)
		return
	}
	ctrl, ok := s.lookup(r)
	if !ok {
		ctrl, err = s.newSession(w)
		if err != nil {
			s.logger.Error("start session", zap.Error(err))
			http.Error(w, "failed to start session", http.StatusInternalServerError)
			return
		}
	}
	ctrl.SelectFile(hdr.Filename, data)
	s.logger.Info("file selected", zap.String("file", hdr.Filename), zap.Int("bytes", len(data)))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.lookup(r)
	if !ok {
		s.render(w, flow.State{Error: flow.Message(flow.ErrNoFileSelected)})
		return
	}
	if !ctrl.State().Processing {
		ctx, cancel := s.requestContext(r)
		defer cancel()
		if err := ctrl.Generate(ctx); err != nil {
			s.logger.Debug("generate", zap.Error(err))
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.lookup(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	art, ok := ctrl.Download()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+art.Name+`"`)
	_, _ = w.Write(art.Data)
}

func (s *Server) render(w http.ResponseWriter, state flow.State) {
	preview, err := renderPreview(state.Preview)
	if err != nil {
		s.logger.Error("render preview", zap.Error(err))
		http.Error(w, "failed to render preview", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, pageData{State: state, Preview: preview}); err != nil {
		s.logger.Error("render page", zap.Error(err))
	}
}

// lookup returns the controller behind the session cookie without
// creating one.
func (s *Server) lookup(r *http.Request) (*flow.Controller, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}
	return s.store.get(c.Value)
}

func (s *Server) newSession(w http.ResponseWriter) (*flow.Controller, error) {
	id := uuid.NewString()
	ctrl, err := flow.New(s.enricher, s.logger.With(zap.String("session", id)))
	if err != nil {
		return nil, err
	}
	s.store.set(id, ctrl)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return ctrl, nil
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(r.Context(), s.timeout)
	}
	return context.WithCancel(r.Context())
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}
