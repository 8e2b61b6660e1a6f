package main

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/hickeroar/codebayes/langclass"
)

const maxRequestBodyBytes = 1 << 20 // 1 MiB

const authRealm = `Bearer realm="codebayes"`

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var (
	makeSignalChannel = func() chan os.Signal { return make(chan os.Signal, 1) }
	notifySignals     = func(c chan<- os.Signal, sig ...os.Signal) { signal.Notify(c, sig...) }
	newServer         = func(addr string, handler http.Handler) httpServer {
		return &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       30 * time.Second,
		}
	}
	logFatal = func(v ...interface{}) {
		slog.Error(fmt.Sprint(v...))
		os.Exit(1)
	}
)

// ClassifierAPI serves language classification over HTTP.
type ClassifierAPI struct {
	classifier *langclass.Classifier
	logger     *slog.Logger
	ready      atomic.Bool
}

// NewClassifierAPI wraps classifier. The API reports ready once the
// classifier is trained.
func NewClassifierAPI(classifier *langclass.Classifier, logger *slog.Logger) *ClassifierAPI {
	if logger == nil {
		logger = slog.Default()
	}
	api := &ClassifierAPI{classifier: classifier, logger: logger}
	api.ready.Store(true)
	return api
}

// RegisterRoutes registers all API routes on the provided ServeMux.
func (c *ClassifierAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/info", c.InfoHandler)
	mux.HandleFunc("/classify", c.ClassifyHandler)
	mux.HandleFunc("/score", c.ScoreHandler)
	mux.HandleFunc("/healthz", HealthHandler)
	mux.HandleFunc("/readyz", c.ReadyHandler)
}

func writeJSON(w http.ResponseWriter, status int, value interface{}) {
	jsonResponse, err := json.Marshal(value)
	if err != nil {
		http.Error(w, `{"error":"failed to marshal response"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(jsonResponse); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func readBody(w http.ResponseWriter, req *http.Request) (string, bool) {
	req.Body = http.MaxBytesReader(w, req.Body, maxRequestBodyBytes)
	defer req.Body.Close()

	body, err := io.ReadAll(req.Body)
	if err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return "", false
		}
		writeError(w, http.StatusBadRequest, "unable to read request body")
		return "", false
	}

	return string(body), true
}

func requireMethod(w http.ResponseWriter, req *http.Request, method string) bool {
	if req.Method != method {
		w.Header().Set("Allow", method)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

// InfoHandler returns the classifier's training state and languages.
func (c *ClassifierAPI) InfoHandler(w http.ResponseWriter, req *http.Request) {
	if !requireMethod(w, req, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, NewInfoResponse(c.classifier))
}

// ClassifyHandler returns the most likely language of the request body.
func (c *ClassifierAPI) ClassifyHandler(w http.ResponseWriter, req *http.Request) {
	if !requireMethod(w, req, http.MethodPost) {
		return
	}

	body, ok := readBody(w, req)
	if !ok {
		return
	}

	language := c.classifier.Classify(body)
	c.logger.Debug("classified snippet", "language", language, "bytes", len(body))
	writeJSON(w, http.StatusOK, NewClassifyResponse(c.classifier, language))
}

// ScoreHandler returns every language's score for the request body.
func (c *ClassifierAPI) ScoreHandler(w http.ResponseWriter, req *http.Request) {
	if !requireMethod(w, req, http.MethodPost) {
		return
	}

	body, ok := readBody(w, req)
	if !ok {
		return
	}

	scores := c.classifier.ClassifyDetailed(body)
	c.logger.Debug("scored snippet", "languages", len(scores), "bytes", len(body))
	writeJSON(w, http.StatusOK, NewScoreResponse(scores))
}

// HealthHandler returns liveness status for process health checks.
func HealthHandler(w http.ResponseWriter, req *http.Request) {
	if !requireMethod(w, req, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadyHandler reports ready once training finished and until shutdown
// begins.
func (c *ClassifierAPI) ReadyHandler(w http.ResponseWriter, req *http.Request) {
	if !requireMethod(w, req, http.MethodGet) {
		return
	}
	if !c.ready.Load() || !c.classifier.IsTrained() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// withAuthorizationToken requires "Authorization: Bearer <token>" on every
// route except the probes. An empty token disables the check.
func withAuthorizationToken(next http.Handler, token string) http.Handler {
	if token == "" {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/healthz" || req.URL.Path == "/readyz" {
			next.ServeHTTP(w, req)
			return
		}

		scheme, provided, found := strings.Cut(req.Header.Get("Authorization"), " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			w.Header().Set("WWW-Authenticate", authRealm)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		next.ServeHTTP(w, req)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func withRequestLogging(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, req)
		logger.Debug("request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// runServe trains the classifier in the background and serves the API until
// SIGINT or SIGTERM.
func runServe(ctx context.Context, app *application) error {
	classifier, err := app.newClassifier()
	if err != nil {
		return err
	}
	fsys, err := app.corpusFS()
	if err != nil {
		return err
	}

	api := NewClassifierAPI(classifier, app.logger)
	mux := http.NewServeMux()
	api.RegisterRoutes(mux)
	handler := withRequestLogging(withAuthorizationToken(mux, app.cfg.Server.AuthToken), app.logger)

	classifier.TrainAsync(ctx, fsys)

	addr := ":" + strconv.Itoa(app.cfg.Server.Port)
	server := newServer(addr, handler)
	app.logger.Info("server is listening", "addr", addr, "strategy", string(classifier.Strategy()))

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logFatal(err)
		}
	}()

	sigCh := makeSignalChannel()
	notifySignals(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	api.ready.Store(false)
	app.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
