package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/iwvelando/lift-progression/internal/recommendation"
	"github.com/iwvelando/lift-progression/pkg/constants"
	"github.com/iwvelando/lift-progression/pkg/testutil"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func newTestHandler(maxUploadSize int64) http.Handler {
	return NewHandler(zap.NewNop(), maxUploadSize, "test", ProgressionDefaults{})
}

func readTestConfig(t *testing.T) []byte {
	t.Helper()
	configPath := filepath.Join("..", "..", "test", "test_config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read test config: %v", err)
	}
	return data
}

func decodeRecommendations(t *testing.T, rr *httptest.ResponseRecorder) recommendationResponse {
	t.Helper()
	var resp recommendationResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func assertWeights(t *testing.T, lifts []recommendation.Recommendation, name string, expected ...float64) {
	t.Helper()
	found := testutil.FindLift(lifts, name)
	if found == nil {
		t.Fatalf("lift %s missing from response", name)
	}
	got := testutil.Weights(found)
	if len(got) != len(expected) {
		t.Fatalf("lift %s: expected %d slots, got %v", name, len(expected), got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("lift %s slot %d: expected %v, got %v", name, i, expected[i], got[i])
		}
	}
}

func TestHandleRecommendationsSuccess(t *testing.T) {
	handler := newTestHandler(constants.DefaultMaxUploadSizeBytes)

	rr := performUpload(t, handler, string(readTestConfig(t)), "test_config.yaml")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	resp := decodeRecommendations(t, rr)
	if _, err := uuid.Parse(resp.CalculationID); err != nil {
		t.Fatalf("expected a UUID calculation id, got %q", resp.CalculationID)
	}
	if len(resp.Lifts) != 5 {
		t.Fatalf("expected 5 lifts in response, got %d", len(resp.Lifts))
	}
	if resp.CSV == "" {
		t.Fatal("expected CSV data in response")
	}
	if resp.Duration == "" {
		t.Fatal("expected duration in response")
	}
	if resp.Config == nil {
		t.Fatal("expected config data in response")
	}
	if resp.ConfigYAML == "" {
		t.Fatal("expected config YAML in response")
	}

	assertWeights(t, resp.Lifts, "Bench Press", 105, 105, 95)
	assertWeights(t, resp.Lifts, "Squat", 205, 205)
	assertWeights(t, resp.Lifts, "Overhead Press", 65, 60)
	assertWeights(t, resp.Lifts, "Deadlift", 340)
	assertWeights(t, resp.Lifts, "Lateral Raise", 22.5, 22.5, 22.5, 22.5)
}

func TestHandleRecommendationsEditorSuccess(t *testing.T) {
	handler := newTestHandler(constants.DefaultMaxUploadSizeBytes)

	var payload map[string]interface{}
	if err := yaml.Unmarshal(readTestConfig(t), &payload); err != nil {
		t.Fatalf("failed to unmarshal yaml: %v", err)
	}

	rr := performEditorJSON(t, handler, payload, "/api/editor/recommendations")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	resp := decodeRecommendations(t, rr)
	if len(resp.Lifts) != 5 {
		t.Fatalf("expected 5 lifts in response, got %d", len(resp.Lifts))
	}
	if resp.Config == nil {
		t.Fatal("expected config data in response")
	}
	assertWeights(t, resp.Lifts, "Bench Press", 105, 105, 95)
}

func TestHandleRecommendationsEditorDeloadOption(t *testing.T) {
	handler := newTestHandler(constants.DefaultMaxUploadSizeBytes)

	var cfg map[string]interface{}
	if err := yaml.Unmarshal(readTestConfig(t), &cfg); err != nil {
		t.Fatalf("failed to unmarshal yaml: %v", err)
	}
	payload := map[string]interface{}{
		"config":  cfg,
		"options": map[string]interface{}{"deload": "true"},
	}

	rr := performEditorJSON(t, handler, payload, "/api/editor/recommendations")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	resp := decodeRecommendations(t, rr)
	deadlift := testutil.FindLift(resp.Lifts, "Deadlift")
	if deadlift == nil || !deadlift.Deload {
		t.Fatalf("expected deadlift to be marked as a deload week")
	}
	// peak 330 reduced by 15%
	assertWeights(t, resp.Lifts, "Deadlift", 280.5)
}

func TestHandleRecommendationsEditorInvalidOptions(t *testing.T) {
	handler := newTestHandler(constants.DefaultMaxUploadSizeBytes)

	rr := performEditorJSON(t, handler, map[string]interface{}{"config": map[string]interface{}{}, "options": "deload"}, "/api/editor/recommendations")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}

	rr = performEditorJSON(t, handler, map[string]interface{}{"config": "lifts"}, "/api/editor/recommendations")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestHandleRecommendationsServerProgressionDefaults(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test",
		ProgressionDefaults{DefaultIncrement: 2.5})

	configYAML := `
lifts:
  - name: Squat
    scheme: linear
    setCount: 1
    repRangeBottom: 5
    repRangeTop: 5
    rpeTarget: 8
    history:
      - {position: 0, weight: 200, reps: 5, rpe: 8}
`
	rr := performUpload(t, handler, configYAML, "config.yaml")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	assertWeights(t, decodeRecommendations(t, rr).Lifts, "Squat", 202.5)
}

func TestHandleRecommendationsConfigurationError(t *testing.T) {
	handler := newTestHandler(constants.DefaultMaxUploadSizeBytes)

	configYAML := `
lifts:
  - name: Squat
    scheme: linear
    setCount: 2
    repRangeBottom: 5
    repRangeTop: 5
    rpeTarget: 8
    sets:
      - position: 1
        kind: drop
        dropPercentage: 0.1
`
	rr := performUpload(t, handler, configYAML, "config.yaml")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if !strings.Contains(resp["error"], "lift configuration error: Squat set 1") {
		t.Fatalf("expected configuration error naming the lift, got %q", resp["error"])
	}
}

func TestHandleRecommendationsUnknownScheme(t *testing.T) {
	handler := newTestHandler(constants.DefaultMaxUploadSizeBytes)

	configYAML := `
lifts:
  - name: Row
    scheme: double_progression_top_set_rpe
    setCount: 1
    repRangeTop: 10
`
	rr := performUpload(t, handler, configYAML, "config.yaml")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHandleMyoRepContinue(t *testing.T) {
	handler := newTestHandler(constants.DefaultMaxUploadSizeBytes)

	tests := []struct {
		name     string
		payload  map[string]interface{}
		status   int
		expected bool
	}{
		{
			name: "Activation met goal",
			payload: map[string]interface{}{
				"lift":      "Curl",
				"set":       myoRepSet(map[string]interface{}{"repFloor": 4}),
				"completed": map[string]interface{}{"position": 0, "reps": 15, "rpe": 9, "complete": true},
			},
			status:   http.StatusOK,
			expected: true,
		},
		{
			name: "Backoff above rep floor",
			payload: map[string]interface{}{
				"lift":      "Curl",
				"set":       myoRepSet(map[string]interface{}{"repFloor": 4}),
				"completed": map[string]interface{}{"position": 0, "myoRepPosition": 1, "reps": 5, "rpe": 9, "complete": true},
			},
			status:   http.StatusOK,
			expected: true,
		},
		{
			name: "Set matching goal reached",
			payload: map[string]interface{}{
				"lift":      "Curl",
				"set":       myoRepSet(map[string]interface{}{"setMatching": true, "matchSetGoal": 2}),
				"completed": map[string]interface{}{"position": 0, "myoRepPosition": 1, "reps": 5, "rpe": 9, "complete": true},
				"group": []interface{}{
					map[string]interface{}{"position": 0, "reps": 15, "rpe": 9, "complete": true},
					map[string]interface{}{"position": 0, "myoRepPosition": 0, "reps": 6, "rpe": 9, "complete": true},
				},
			},
			status:   http.StatusOK,
			expected: false,
		},
		{
			name: "Incomplete set",
			payload: map[string]interface{}{
				"set":       myoRepSet(map[string]interface{}{"repFloor": 4}),
				"completed": map[string]interface{}{"position": 0, "reps": 15, "rpe": 9},
			},
			status:   http.StatusOK,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := performEditorJSON(t, handler, tt.payload, "/api/myorep/continue")
			if rr.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}

			var resp map[string]bool
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp["continue"] != tt.expected {
				t.Fatalf("expected continue=%t, got %t", tt.expected, resp["continue"])
			}
		})
	}
}

func TestHandleMyoRepContinueConfigurationErrors(t *testing.T) {
	handler := newTestHandler(constants.DefaultMaxUploadSizeBytes)

	backoff := map[string]interface{}{"position": 0, "myoRepPosition": 0, "reps": 5, "rpe": 9, "complete": true}
	payloads := map[string]map[string]interface{}{
		"Missing rep floor": {
			"lift":      "Curl",
			"set":       myoRepSet(nil),
			"completed": backoff,
		},
		"Missing match set goal": {
			"lift":      "Curl",
			"set":       myoRepSet(map[string]interface{}{"setMatching": true}),
			"completed": backoff,
		},
		"Not a myo-rep set": {
			"lift":      "Curl",
			"set":       map[string]interface{}{"position": 0, "kind": "standard"},
			"completed": backoff,
		},
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			rr := performEditorJSON(t, handler, payload, "/api/myorep/continue")
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected status 422, got %d: %s", rr.Code, rr.Body.String())
			}

			var resp map[string]string
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if !strings.Contains(resp["error"], "Curl") {
				t.Fatalf("expected error to name the lift, got %q", resp["error"])
			}
		})
	}
}

func myoRepSet(extra map[string]interface{}) map[string]interface{} {
	set := map[string]interface{}{
		"position":       0,
		"kind":           "myorep",
		"repRangeBottom": 12,
		"repRangeTop":    15,
		"rpeTarget":      9,
		"setGoal":        3,
	}
	for k, v := range extra {
		set[k] = v
	}
	return set
}

func TestHandleConfigExport(t *testing.T) {
	handler := newTestHandler(constants.DefaultMaxUploadSizeBytes)

	payload := map[string]interface{}{
		"lifts": []interface{}{
			map[string]interface{}{
				"name":     "Squat",
				"scheme":   "linear",
				"setCount": 3,
			},
		},
		"isDeloadWeek": false,
		"progression": map[string]interface{}{
			"defaultIncrement": 5.0,
		},
		"output": map[string]interface{}{
			"format": "pretty",
		},
		"logging": map[string]interface{}{
			"level": "info",
		},
	}

	rr := performEditorJSON(t, handler, payload, "/api/editor/export")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	yamlStr := resp["configYaml"]
	if yamlStr == "" {
		t.Fatal("expected configYaml in response")
	}
	if !strings.Contains(yamlStr, "lifts:") {
		t.Fatalf("expected yaml to contain lifts section, got %q", yamlStr)
	}

	var orderedTop []string
	for _, line := range strings.Split(strings.TrimRight(yamlStr, "\n"), "\n") {
		if len(line) == 0 || strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			continue
		}
		orderedTop = append(orderedTop, strings.SplitN(line, ":", 2)[0])
	}

	expected := []string{"logging", "output", "progression", "isDeloadWeek", "lifts"}
	if strings.Join(orderedTop, ",") != strings.Join(expected, ",") {
		t.Fatalf("expected top-level keys %v, got %v", expected, orderedTop)
	}
}

func TestHandleVersion(t *testing.T) {
	handler := NewHandler(nil, 0, "  ", ProgressionDefaults{})

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["version"] != "dev" {
		t.Fatalf("expected default version dev, got %q", resp["version"])
	}
}

func TestMethodNotAllowed(t *testing.T) {
	handler := newTestHandler(constants.DefaultMaxUploadSizeBytes)

	requests := map[string]string{
		"/api/recommendations":        http.MethodGet,
		"/api/editor/recommendations": http.MethodGet,
		"/api/myorep/continue":        http.MethodGet,
		"/api/editor/export":          http.MethodGet,
		"/api/version":                http.MethodPost,
	}

	for path, method := range requests {
		req := httptest.NewRequest(method, path, nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s %s: expected status 405, got %d", method, path, rr.Code)
		}
	}
}

func TestHandleRecommendationsUploadTooLarge(t *testing.T) {
	handler := newTestHandler(64)

	rr := performUpload(t, handler, strings.Repeat("a", 128), "config.yaml")
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d", rr.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if !strings.Contains(resp["error"], "upload exceeds limit") {
		t.Fatalf("expected upload limit error message, got %q", resp["error"])
	}
}

func TestHandleRecommendationsMissingFile(t *testing.T) {
	handler := newTestHandler(constants.DefaultMaxUploadSizeBytes)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/recommendations", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp["error"] != "missing configuration file" {
		t.Fatalf("expected missing file error, got %q", resp["error"])
	}
}

func TestHandleRecommendationsInvalidYAML(t *testing.T) {
	handler := newTestHandler(constants.DefaultMaxUploadSizeBytes)

	rr := performUpload(t, handler, "lifts: [", "config.yaml")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if !strings.Contains(resp["error"], "error reading config data") {
		t.Fatalf("expected parse error message, got %q", resp["error"])
	}
}

func performUpload(t *testing.T, handler http.Handler, content, filename string) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("failed to write form data: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/recommendations", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	return rr
}

func performEditorJSON(t *testing.T, handler http.Handler, payload map[string]interface{}, path string) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	return rr
}
