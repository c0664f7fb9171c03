// Command server exposes the linse pipeline as a JSON REST API.
//
// Endpoints:
//
//	GET  /api/models
//	GET  /api/tokenize?word=<ipa>[&merge_vowels=false][&merge_geminates=true][&expand_nasals=true]
//	GET  /api/soundclass?tokens=<space separated>[&model=sca]
//	GET  /api/prosody?tokens=...[&format=cv]
//	GET  /api/weights?tokens=...
//	GET  /api/syllables?tokens=...
//	GET  /api/morphemes?tokens=...[&split_on_tones=true]
//	POST /api/annotate   body: {"words":["..."]}
//	GET  /metrics
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/lingpy/linse"
	"github.com/lingpy/linse/internal/config"
	"github.com/lingpy/linse/internal/observe"
)

// ---- JSON response types ------------------------------------------------

type modelJSON struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Graphemes   int    `json:"graphemes"`
	Classes     int    `json:"classes"`
}

type modelsResponse struct {
	Models []modelJSON `json:"models"`
}

type tokenizeResponse struct {
	Word     string   `json:"word"`
	Segments []string `json:"segments"`
}

type soundClassResponse struct {
	Tokens      []string                      `json:"tokens"`
	Model       string                        `json:"model"`
	Classes     []string                      `json:"classes"`
	Suggestions map[string][]linse.Suggestion `json:"suggestions,omitempty"`
}

type prosodyResponse struct {
	Tokens  []string `json:"tokens"`
	Format  string   `json:"format"`
	Prosody []string `json:"prosody"`
}

type weightsResponse struct {
	Tokens  []string  `json:"tokens"`
	Weights []float64 `json:"weights"`
}

type segmentationResponse struct {
	Tokens []string   `json:"tokens"`
	Parts  [][]string `json:"parts"`
}

type annotateResponse struct {
	Results []linse.Annotation `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// ---- helpers ------------------------------------------------------------

type app struct {
	store   *linse.Store
	cfg     *config.Config
	metrics *observe.Metrics
	log     logrus.FieldLogger
}

func (a *app) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.log.WithError(err).Error("encode response")
	}
}

func (a *app) writeError(w http.ResponseWriter, status int, msg string) {
	a.writeJSON(w, status, errorResponse{Error: msg})
}

// fail maps a library error to a status code and records it.
func (a *app) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	kind := linse.Kind(err)
	status := http.StatusInternalServerError
	switch kind {
	case "invalid_input", "unknown_column":
		status = http.StatusBadRequest
	case "unresolved", "prosody":
		status = http.StatusUnprocessableEntity
	case "unknown_model":
		status = http.StatusNotFound
	}
	a.metrics.RecordError(r.Context(), op, kind)
	a.writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}

// tokensParam reads the space separated "tokens" query parameter.
func tokensParam(r *http.Request) ([]string, error) {
	tokens := strings.Fields(r.URL.Query().Get("tokens"))
	if len(tokens) == 0 {
		return nil, errors.New("missing 'tokens' query parameter")
	}
	return tokens, nil
}

func boolParam(r *http.Request, name string, def bool) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}

// ---- handlers -----------------------------------------------------------

func handleModels(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			a.writeError(w, http.StatusMethodNotAllowed, "GET required")
			return
		}
		names := a.store.Models()
		out := make([]modelJSON, 0, len(names))
		for _, name := range names {
			m, err := a.store.Model(name)
			if err != nil {
				a.fail(w, r, "models", err)
				return
			}
			out = append(out, modelJSON{
				Name:        name,
				Description: m.Info.Description,
				Graphemes:   m.Len(),
				Classes:     len(m.Classes()),
			})
		}
		a.writeJSON(w, http.StatusOK, modelsResponse{Models: out})
	}
}

func handleTokenize(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			a.writeError(w, http.StatusMethodNotAllowed, "GET required")
			return
		}
		word := r.URL.Query().Get("word")
		if word == "" {
			a.writeError(w, http.StatusBadRequest, "missing 'word' query parameter")
			return
		}
		opts := a.cfg.Segment.TokenizeOptions()
		if v := r.URL.Query().Get("merge_vowels"); v != "" {
			opts = append(opts, linse.WithMergeVowels(boolParam(r, "merge_vowels", true)))
		}
		if boolParam(r, "merge_geminates", false) {
			opts = append(opts, linse.WithMergeGeminates(true))
		}
		if boolParam(r, "expand_nasals", false) {
			opts = append(opts, linse.WithExpandNasals(linse.DefaultNasals, linse.DefaultNasalChar, linse.DefaultNasalPlaceholder))
		}
		segments, err := a.store.IPA(word, opts...)
		if err != nil {
			a.fail(w, r, "tokenize", err)
			return
		}
		a.metrics.RecordWords(r.Context(), "tokenize", 1)
		a.metrics.RecordSegments(r.Context(), len(segments))
		a.writeJSON(w, http.StatusOK, tokenizeResponse{Word: word, Segments: segments})
	}
}

func handleSoundClass(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			a.writeError(w, http.StatusMethodNotAllowed, "GET required")
			return
		}
		tokens, err := tokensParam(r)
		if err != nil {
			a.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		model := r.URL.Query().Get("model")
		if model == "" {
			model = a.cfg.Classify.Model
		}
		classes, err := a.store.SoundClass(tokens, model, a.cfg.Classify.ClassifyOptions()...)
		if err != nil {
			a.fail(w, r, "soundclass", err)
			return
		}
		resp := soundClassResponse{Tokens: tokens, Model: model, Classes: classes}
		unresolved := 0
		for i, c := range classes {
			if c != linse.Replacement {
				continue
			}
			unresolved++
			if sugg, err := a.store.Suggest(tokens[i], model, 3); err == nil && len(sugg) > 0 {
				if resp.Suggestions == nil {
					resp.Suggestions = make(map[string][]linse.Suggestion)
				}
				resp.Suggestions[tokens[i]] = sugg
			}
		}
		a.metrics.RecordUnresolved(r.Context(), model, unresolved)
		a.writeJSON(w, http.StatusOK, resp)
	}
}

func handleProsody(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			a.writeError(w, http.StatusMethodNotAllowed, "GET required")
			return
		}
		tokens, err := tokensParam(r)
		if err != nil {
			a.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		format, err := linse.ParseProsodyFormat(r.URL.Query().Get("format"))
		if err != nil {
			a.fail(w, r, "prosody", err)
			return
		}
		roles, err := a.store.Prosody(tokens, format, a.cfg.Classify.ClassifyOptions()...)
		if err != nil {
			a.fail(w, r, "prosody", err)
			return
		}
		a.writeJSON(w, http.StatusOK, prosodyResponse{Tokens: tokens, Format: string(format), Prosody: roles})
	}
}

func handleWeights(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			a.writeError(w, http.StatusMethodNotAllowed, "GET required")
			return
		}
		tokens, err := tokensParam(r)
		if err != nil {
			a.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		weights, err := a.store.ProsodicWeight(tokens, nil, a.cfg.Classify.ClassifyOptions()...)
		if err != nil {
			a.fail(w, r, "weights", err)
			return
		}
		a.writeJSON(w, http.StatusOK, weightsResponse{Tokens: tokens, Weights: weights.Items()})
	}
}

func handleSyllables(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			a.writeError(w, http.StatusMethodNotAllowed, "GET required")
			return
		}
		tokens, err := tokensParam(r)
		if err != nil {
			a.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		parts, err := a.store.Syllables(tokens, linse.WithSyllableClassify(a.cfg.Classify.ClassifyOptions()...))
		if err != nil {
			a.fail(w, r, "syllables", err)
			return
		}
		a.writeJSON(w, http.StatusOK, segmentationResponse{Tokens: tokens, Parts: parts})
	}
}

func handleMorphemes(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			a.writeError(w, http.StatusMethodNotAllowed, "GET required")
			return
		}
		tokens, err := tokensParam(r)
		if err != nil {
			a.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		var opts []linse.MorphemeOption
		if boolParam(r, "split_on_tones", false) {
			opts = append(opts, linse.WithSplitOnTones(true,
				linse.WithSyllableClassify(a.cfg.Classify.ClassifyOptions()...)))
		}
		parts, err := a.store.Morphemes(tokens, opts...)
		if err != nil {
			a.fail(w, r, "morphemes", err)
			return
		}
		a.writeJSON(w, http.StatusOK, segmentationResponse{Tokens: tokens, Parts: parts})
	}
}

func handleAnnotate(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			a.writeError(w, http.StatusMethodNotAllowed, "POST required")
			return
		}
		var body struct {
			Words  []string `json:"words"`
			Model  string   `json:"model"`
			Format string   `json:"format"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Words) == 0 {
			a.writeError(w, http.StatusBadRequest, "body must be JSON with a non-empty 'words' list")
			return
		}
		if limit := a.cfg.Batch.MaxWords; limit > 0 && len(body.Words) > limit {
			a.writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("at most %d words per request", limit))
			return
		}
		format, err := linse.ParseProsodyFormat(body.Format)
		if err != nil {
			a.fail(w, r, "annotate", err)
			return
		}
		model := body.Model
		if model == "" {
			model = a.cfg.Classify.Model
		}
		results, err := a.store.Annotate(r.Context(), body.Words, linse.AnnotateOptions{
			Model:    model,
			Format:   format,
			Workers:  a.cfg.Batch.Workers,
			Tokenize: a.cfg.Segment.TokenizeOptions(),
			Classify: a.cfg.Classify.ClassifyOptions(),
		})
		if err != nil {
			a.writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		a.metrics.RecordWords(r.Context(), "annotate", len(results))
		for _, res := range results {
			if res.Kind != "" {
				a.metrics.RecordError(r.Context(), "annotate", res.Kind)
			}
		}
		a.writeJSON(w, http.StatusOK, annotateResponse{Results: results})
	}
}

// ---- main ---------------------------------------------------------------

func newMux(a *app, metricsHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/models", handleModels(a))
	mux.HandleFunc("/api/tokenize", handleTokenize(a))
	mux.HandleFunc("/api/soundclass", handleSoundClass(a))
	mux.HandleFunc("/api/prosody", handleProsody(a))
	mux.HandleFunc("/api/weights", handleWeights(a))
	mux.HandleFunc("/api/syllables", handleSyllables(a))
	mux.HandleFunc("/api/morphemes", handleMorphemes(a))
	mux.HandleFunc("/api/annotate", handleAnnotate(a))
	if metricsHandler != nil {
		mux.Handle("/metrics", metricsHandler)
	}

	c := cors.New(cors.Options{
		AllowedOrigins: a.cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	})
	return observe.Middleware(a.metrics, a.log)(c.Handler(mux))
}

func main() {
	cfgPath := flag.String("config", "", "path to a YAML configuration file")
	dataDir := flag.String("data", "", "path to a linse data directory (default: embedded)")
	addr := flag.String("addr", "", "listen address (overrides the config file)")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			logrus.WithError(err).Fatal("failed to load config")
		}
	}
	if *dataDir != "" {
		cfg.Data.Dir = *dataDir
	}
	if *addr != "" {
		cfg.Server.ListenAddr = *addr
	}
	log := cfg.Server.NewLogger()

	log.WithField("dir", cfg.Data.Dir).Info("loading data")
	store, err := cfg.Data.OpenStore(log)
	if err != nil {
		log.WithError(err).Fatal("failed to load data")
	}
	log.WithField("models", len(store.Models())).Info("data loaded")

	var metricsHandler http.Handler
	metrics := observe.DefaultMetrics()
	if cfg.Server.Metrics {
		p, err := observe.InitProvider()
		if err != nil {
			log.WithError(err).Fatal("failed to init metrics")
		}
		defer p.Shutdown(context.Background())
		if metrics, err = observe.NewMetrics(p.MeterProvider); err != nil {
			log.WithError(err).Fatal("failed to create metrics")
		}
		metricsHandler = p.Handler
	}

	a := &app{store: store, cfg: cfg, metrics: metrics, log: log}
	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           newMux(a, metricsHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("shutdown")
		}
	}()

	log.WithField("addr", cfg.Server.ListenAddr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("server error")
	}
}
