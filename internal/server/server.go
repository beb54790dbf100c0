package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/lift-progression/internal/config"
	"github.com/iwvelando/lift-progression/internal/recommendation"
	"github.com/iwvelando/lift-progression/pkg/constants"
	"github.com/iwvelando/lift-progression/pkg/lift"
	"github.com/iwvelando/lift-progression/pkg/myorep"
	"github.com/iwvelando/lift-progression/pkg/output"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	progression   ProgressionDefaults
}

type recommendationOptions struct {
	Deload *bool
}

// NewHandler constructs the HTTP handler that serves the recommendation API.
// progression supplies the settings used when a submitted configuration
// leaves them unset.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string, progression ProgressionDefaults) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		progression:   progression,
	}

	mux := http.NewServeMux()

	// Recommendation API endpoint (file upload)
	mux.HandleFunc("/api/recommendations", h.handleRecommendations)

	// Recommendation API endpoint for editor-driven updates
	mux.HandleFunc("/api/editor/recommendations", h.handleRecommendationsEditor)

	// Live logging decision for myo-rep groups
	mux.HandleFunc("/api/myorep/continue", h.handleMyoRepContinue)

	// Config serialization endpoint for editor downloads
	mux.HandleFunc("/api/editor/export", h.handleConfigExport)

	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

type recommendationResponse struct {
	CalculationID string                          `json:"calculationId"`
	Lifts         []recommendation.Recommendation `json:"lifts"`
	CSV           string                          `json:"csv"`
	Warnings      []string                        `json:"warnings,omitempty"`
	Duration      string                          `json:"duration"`
	Config        map[string]interface{}          `json:"config,omitempty"`
	ConfigYAML    string                          `json:"configYaml,omitempty"`
}

func (h *handler) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize))
			return
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "missing configuration file")
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", "server.handleRecommendations"),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err))
		return
	}

	configBytes := buf.Bytes()
	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("error reading config data, %v", err))
		return
	}

	h.runRecommendations(r.Context(), w, configBytes, configMap, start, "server.handleRecommendations", recommendationOptions{})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleRecommendationsEditor(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleRecommendationsEditor"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), op)
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	configPayload := payload
	if rawConfig, ok := payload["config"]; ok {
		cfgMap, ok := rawConfig.(map[string]interface{})
		if !ok {
			h.respondErrorWithOp(w, http.StatusBadRequest, "invalid config payload: expected object", op)
			return
		}
		configPayload = cfgMap
	}

	options := recommendationOptions{}
	if rawOptions, ok := payload["options"]; ok {
		optsMap, ok := rawOptions.(map[string]interface{})
		if !ok {
			h.respondErrorWithOp(w, http.StatusBadRequest, "invalid options payload: expected object", op)
			return
		}
		if deloadVal, ok := optsMap["deload"]; ok {
			deload := coerceBool(deloadVal)
			options.Deload = &deload
		}
	}

	configBytes, err := yaml.Marshal(configPayload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse configuration: %v", err), op)
		return
	}

	h.runRecommendations(r.Context(), w, configBytes, configMap, start, op, options)
}

type myoRepContinueRequest struct {
	Lift      string             `json:"lift"`
	Set       config.SetOverride `json:"set"`
	Completed loggedSetPayload   `json:"completed"`
	Group     []loggedSetPayload `json:"group"`
}

type loggedSetPayload struct {
	Position       int     `json:"position"`
	MyoRepPosition *int    `json:"myoRepPosition,omitempty"`
	Weight         float64 `json:"weight"`
	Reps           int     `json:"reps"`
	RPE            float64 `json:"rpe"`
	Complete       bool    `json:"complete"`
}

func (p loggedSetPayload) toLoggedSet() myorep.LoggedSet {
	return myorep.LoggedSet{
		Position:       p.Position,
		MyoRepPosition: p.MyoRepPosition,
		Weight:         p.Weight,
		Reps:           p.Reps,
		RPE:            p.RPE,
		Complete:       p.Complete,
	}
}

func (h *handler) handleMyoRepContinue(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleMyoRepContinue"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var req myoRepContinueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}

	set, err := req.Set.ToSetOverride(lift.RepRange{}, 0)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity,
			lift.NewConfigurationError(req.Lift, req.Set.Position, "%v", err).Error(), op)
		return
	}
	if set.Kind != lift.SetKindMyoRep {
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity,
			lift.NewConfigurationError(req.Lift, set.Position, "%s set is not a myo-rep set", set.Kind).Error(), op)
		return
	}

	group := make([]myorep.LoggedSet, 0, len(req.Group))
	for _, logged := range req.Group {
		group = append(group, logged.toLoggedSet())
	}

	cont, err := myorep.ShouldContinue(set, req.Completed.toLoggedSet(), group)
	if err != nil {
		var cfgErr *lift.ConfigurationError
		if errors.As(err, &cfgErr) && cfgErr.Lift == "" {
			cfgErr.Lift = req.Lift
		}
		h.respondErrorWithOp(w, statusForError(err), err.Error(), op)
		return
	}

	h.logger.Debug("myo-rep continuation decided",
		zap.String("op", op),
		zap.String("lift", req.Lift),
		zap.Int("position", set.Position),
		zap.Bool("continue", cont),
	)

	h.writeJSON(w, http.StatusOK, map[string]bool{"continue": cont})
}

func (h *handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), "server.handleConfigExport")
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	yamlBytes, err := marshalOrderedConfigYAML(payload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), "server.handleConfigExport")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

// marshalOrderedConfigYAML writes the settings sections first and the
// remaining keys, lifts included, in sorted order.
func marshalOrderedConfigYAML(payload map[string]interface{}) ([]byte, error) {
	items := make([]orderedItem, 0, len(payload))
	seen := make(map[string]struct{})

	for _, key := range []string{"logging", "output", "progression", "isDeloadWeek"} {
		if value, ok := payload[key]; ok {
			items = append(items, orderedItem{key: key, value: value})
			seen[key] = struct{}{}
		}
	}

	remainingKeys := make([]string, 0, len(payload))
	for key := range payload {
		if _, already := seen[key]; already {
			continue
		}
		remainingKeys = append(remainingKeys, key)
	}
	sort.Strings(remainingKeys)
	for _, key := range remainingKeys {
		items = append(items, orderedItem{key: key, value: payload[key]})
	}

	ordered := orderedConfig{items: items}
	return yaml.Marshal(ordered)
}

type orderedConfig struct {
	items []orderedItem
}

type orderedItem struct {
	key   string
	value interface{}
}

func (o orderedConfig) MarshalYAML() (interface{}, error) {
	mapNode := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}

	for _, item := range o.items {
		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: item.key,
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(item.value); err != nil {
			return nil, err
		}
		mapNode.Content = append(mapNode.Content, keyNode, valueNode)
	}

	return mapNode, nil
}

func (h *handler) runRecommendations(ctx context.Context, w http.ResponseWriter, configBytes []byte, configMap map[string]interface{}, start time.Time, op string, opts recommendationOptions) {
	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	cfg.Progression = h.progression.Apply(cfg.Progression)
	if opts.Deload != nil {
		cfg.IsDeloadWeek = *opts.Deload
	}

	calculationID := uuid.NewString()
	warnings := cfg.ValidateConfiguration()
	logger := h.logger.With(zap.String("calculationId", calculationID))

	results, err := recommendation.GetRecommendations(ctx, logger, *cfg)
	if err != nil {
		h.respondErrorWithOp(w, statusForError(err), fmt.Sprintf("failed to compute recommendations: %v", err), op)
		return
	}

	elapsed := time.Since(start)

	if configMap == nil {
		configMap = make(map[string]interface{})
	}

	response := recommendationResponse{
		CalculationID: calculationID,
		Lifts:         results,
		CSV:           output.CsvString(results),
		Warnings:      warnings,
		Duration:      elapsed.String(),
		Config:        configMap,
		ConfigYAML:    string(configBytes),
	}

	logger.Info("recommendations computed",
		zap.String("op", op),
		zap.Int("lifts", len(results)),
		zap.Bool("deloadWeek", cfg.IsDeloadWeek),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

// statusForError maps a calculation error onto an HTTP status. Configuration
// errors are the caller's to fix and are never retried.
func statusForError(err error) int {
	switch {
	case errors.Is(err, lift.ErrConfiguration):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeYAMLToMap(data []byte) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return make(map[string]interface{}), nil
	}

	var result map[string]interface{}
	if err := yaml.Unmarshal(trimmed, &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = make(map[string]interface{})
	}
	return result, nil
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string) {
	h.respondErrorWithOp(w, status, msg, "server.handleRecommendations")
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("recommendation request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func coerceBool(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return false
		}
		if parsed, err := strconv.ParseBool(trimmed); err == nil {
			return parsed
		}
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	case json.Number:
		if parsed, err := strconv.ParseFloat(v.String(), 64); err == nil {
			return parsed != 0
		}
	}
	return false
}
