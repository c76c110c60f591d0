package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/roadmap-cli/internal/model"
	"github.com/sells-group/roadmap-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for roadmap generation",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		p, st, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/roadmaps", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				LearningGoal   string `json:"learning_goal"`
				Subject        string `json:"subject"`
				UserBackground string `json:"user_background"`
				HoursPerWeek   int    `json:"hours_per_week"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
				return
			}
			if body.LearningGoal == "" || body.Subject == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "learning_goal and subject are required"})
				return
			}

			request := model.Request{
				LearningGoal:   body.LearningGoal,
				Subject:        body.Subject,
				UserBackground: body.UserBackground,
				HoursPerWeek:   body.HoursPerWeek,
			}

			// Generation runs in the background with its own deadline so a
			// SIGINT does not cancel in-flight runs; clients find their run
			// via GET /runs filtered by subject.
			go func() {
				gctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
				defer cancel()
				roadmap, err := p.Run(gctx, request, nil)
				if err != nil {
					zap.L().Error("api roadmap generation failed",
						zap.String("subject", request.Subject),
						zap.Error(err),
					)
					return
				}
				zap.L().Info("api roadmap generation complete",
					zap.String("roadmap_id", roadmap.RoadmapID),
					zap.Int("degraded_stages", roadmap.Meta.DegradedStages),
				)
			}()

			writeJSON(w, http.StatusAccepted, map[string]string{
				"status":  "accepted",
				"subject": request.Subject,
			})
		})

		r.Get("/runs/{id}", func(w http.ResponseWriter, req *http.Request) {
			run, err := st.GetRun(req.Context(), chi.URLParam(req, "id"))
			if err != nil {
				if eris.Is(err, store.ErrNotFound) {
					writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
					return
				}
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
				return
			}
			writeJSON(w, http.StatusOK, run)
		})

		r.Get("/runs", func(w http.ResponseWriter, req *http.Request) {
			runs, err := st.ListRuns(req.Context(), store.RunFilter{
				Status:  model.RunStatus(req.URL.Query().Get("status")),
				Subject: req.URL.Query().Get("subject"),
				Limit:   50,
			})
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
				return
			}
			writeJSON(w, http.StatusOK, runs)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
