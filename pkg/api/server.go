// Package api exposes the prediction service over HTTP: the JSON endpoint
// and the browser interface.
package api

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zpam/sentimento/pkg/config"
	"github.com/zpam/sentimento/pkg/dataset"
	"github.com/zpam/sentimento/pkg/learning"
	"github.com/zpam/sentimento/pkg/predictor"
)

// Predictor is the part of the prediction service the handlers use
type Predictor interface {
	Predict(ctx context.Context, text string) (*predictor.Prediction, error)
	PredictBatch(ctx context.Context, table *dataset.Table, column string) (*dataset.Table, error)
	Info() learning.TrainingInfo
	Classes() []string
	VocabularySize() int
	Ping(ctx context.Context) error
	Stats() predictor.Stats
}

// Server serves the API and, when enabled, the web interface
type Server struct {
	config  *config.Config
	service Predictor
	engine  *gin.Engine
	httpSrv *http.Server
	logger  *slog.Logger
}

// NewServer builds the router. The service is shared by every request.
func NewServer(cfg *config.Config, svc Predictor) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("prediction service is required")
	}

	gin.SetMode(cfg.Server.GinMode)

	s := &Server{
		config:  cfg,
		service: svc,
		engine:  gin.New(),
		logger:  slog.Default().With("component", "api"),
	}

	s.engine.MaxMultipartMemory = cfg.Server.MaxUploadBytes()
	s.engine.Use(requestID(), requestLogger(s.logger), gin.Recovery())

	if cfg.Server.UIEnabled {
		tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse templates: %w", err)
		}
		s.engine.SetHTMLTemplate(tmpl)
	}

	s.registerRoutes()

	s.httpSrv = &http.Server{
		Handler:      s.engine,
		ReadTimeout:  cfg.Server.ReadTimeout(),
		WriteTimeout: cfg.Server.WriteTimeout(),
	}

	return s, nil
}

func (s *Server) registerRoutes() {
	s.engine.POST("/predict", s.handlePredict)
	s.engine.GET("/healthz", s.handleHealth)

	if !s.config.Server.UIEnabled {
		return
	}

	s.engine.GET("/", s.handleIndex)
	s.engine.POST("/analisar", s.handleAnalyze)

	batch := s.engine.Group("/lote", s.limitUpload)
	{
		batch.POST("", s.handleBatch)
		batch.POST("/colunas", s.handleBatchColumns)
	}
}

// Handler returns the HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Serve accepts connections on listener until ctx is cancelled, then shuts
// down gracefully within the configured timeout.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	errChan := make(chan error, 1)
	go func() {
		errChan <- s.httpSrv.Serve(listener)
	}()

	s.logger.Info("http server listening", "address", listener.Addr().String(), "ui", s.config.Server.UIEnabled)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout())
		defer cancel()

		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown http server: %w", err)
		}
		return ctx.Err()

	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	}
}

// Close stops the server immediately
func (s *Server) Close() error {
	return s.httpSrv.Close()
}
