package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/credit-cli/internal/model"
	"github.com/sells-group/credit-cli/internal/pipeline"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for analysis requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, err := initPipeline()
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(p),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func newRouter(p *pipeline.Pipeline) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(perClientRateLimit(rate.Limit(cfg.Server.RatePerMinute/60), cfg.Server.RateBurst))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/config", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"max_retries":      cfg.Pipeline.MaxRetries,
			"timeout_secs":     cfg.Pipeline.TimeoutSecs,
			"max_file_bytes":   cfg.Upload.MaxFileBytes,
			"allowed_exts":     cfg.Upload.AllowedExts,
			"registry_sources": cfg.Registry.Providers,
		})
	})

	r.Post("/analyze", handleAnalyze(p))

	return r
}

// perClientRateLimit throttles requests per remote host. Limiters are kept
// for the lifetime of the process; the client population of an internal API
// is small enough that eviction is not worth the bookkeeping.
func perClientRateLimit(limit rate.Limit, burst int) func(http.Handler) http.Handler {
	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			host, _, err := net.SplitHostPort(req.RemoteAddr)
			if err != nil {
				host = req.RemoteAddr
			}

			mu.Lock()
			lim, ok := limiters[host]
			if !ok {
				lim = rate.NewLimiter(limit, burst)
				limiters[host] = lim
			}
			mu.Unlock()

			if !lim.Allow() {
				writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

// handleAnalyze accepts a multipart form with a tax_id field and zero or
// more financial document uploads, runs the pipeline synchronously, and
// returns the full analysis state.
func handleAnalyze(p *pipeline.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := req.ParseMultipartForm(cfg.Upload.MaxFileBytes + 1<<20); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
			return
		}

		taxID := req.FormValue("tax_id")
		if taxID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "tax_id is required"})
			return
		}

		var docs []model.RawDocument
		if req.MultipartForm != nil {
			for _, headers := range req.MultipartForm.File {
				for _, hdr := range headers {
					f, err := hdr.Open()
					if err != nil {
						writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("read upload %s", hdr.Filename)})
						return
					}
					content, err := io.ReadAll(io.LimitReader(f, cfg.Upload.MaxFileBytes+1))
					f.Close()
					if err != nil {
						writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("read upload %s", hdr.Filename)})
						return
					}
					docs = append(docs, model.RawDocument{
						Filename: hdr.Filename,
						Content:  content,
					})
				}
			}
		}

		analysisReq, err := model.NewRequest(taxID, docs, model.UploadLimits{
			MaxFileBytes: cfg.Upload.MaxFileBytes,
			AllowedExts:  cfg.Upload.AllowedExts,
		})
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		st, err := p.Run(req.Context(), *analysisReq)
		if err != nil {
			zap.L().Error("analysis failed",
				zap.String("tax_id", analysisReq.TaxID),
				zap.Error(err),
			)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "analysis failed"})
			return
		}

		writeJSON(w, http.StatusOK, st)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
