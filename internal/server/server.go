// Package server exposes the inspection pipeline as a JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/punchlist/internal/engine"
	"github.com/Veraticus/punchlist/internal/service"
)

// DefaultPort is used when Options.Port is unset.
const DefaultPort = 8080

// MaxUploadBytes bounds the size of an uploaded export.
const MaxUploadBytes = 32 << 20

// Options holds configuration for the API server.
type Options struct {
	Engine  *engine.Engine
	Storage service.Storage
	Out     io.Writer
	Port    int
}

// Start launches the API server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts Options) error {
	if opts.Engine == nil || opts.Storage == nil {
		return errors.New("server: engine and storage are required")
	}
	if opts.Port <= 0 {
		opts.Port = DefaultPort
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           NewRouter(opts.Engine, opts.Storage),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if opts.Out != nil {
		_, _ = fmt.Fprintf(opts.Out, "API listening on http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// NewRouter wires every API route onto a new gin engine.
func NewRouter(eng *engine.Engine, store service.Storage) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.MaxMultipartMemory = MaxUploadBytes

	h := &handlers{engine: eng, storage: store}

	router.GET("/healthz", h.health)

	api := router.Group("/api")
	api.POST("/inspections", h.uploadInspection)
	api.POST("/inspections/check", h.checkInspection)
	api.GET("/inspections", h.listInspections)
	api.GET("/inspections/:id", h.getInspection)
	api.GET("/inspections/:id/workbook", h.getWorkbook)
	api.GET("/work-orders", h.listWorkOrders)
	api.PATCH("/work-orders/:id", h.updateWorkOrder)
	api.GET("/overview", h.overview)
	api.GET("/trade-mappings", h.listTradeMappings)

	return router
}
