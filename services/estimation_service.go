package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/paolosvp/eatcount/utils"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const estimationSystemPrompt = "You are a careful nutrition assistant. Given food images and an optional user note, " +
	"estimate calories conservatively. Return ONLY strict JSON in this exact schema, no extra text: " +
	`{"total_calories": number, "items": [{"name": string, "quantity_units": string, "calories": number, "confidence": number}], "confidence": number, "notes": string}. ` +
	"Use metric units where possible. Confidence must be 0-1."

const estimationRetryPrompt = estimationSystemPrompt +
	" Your previous answer was not valid JSON. Respond with the JSON object only: " +
	"no markdown fences, no commentary, nothing before the opening brace or after the closing brace."

type ImageAttachment struct {
	Data     string `json:"data" binding:"required"`
	MimeType string `json:"mime_type" binding:"required,oneof=image/jpeg image/png image/gif image/webp"`
	Filename string `json:"filename"`
}

type EstimateRequest struct {
	Message  string            `json:"message"`
	Images   []ImageAttachment `json:"images" binding:"required,min=1,dive"`
	APIKey   string            `json:"api_key"`
	Simulate bool              `json:"simulate"`
}

type EstimateItem struct {
	Name          string  `json:"name"`
	QuantityUnits string  `json:"quantity_units"`
	Calories      float64 `json:"calories"`
	Confidence    float64 `json:"confidence"`
}

type EngineInfo struct {
	KeyMode string `json:"key_mode"` // simulate | user | server
	Model   string `json:"model"`
}

type Estimate struct {
	TotalCalories float64        `json:"total_calories"`
	Items         []EstimateItem `json:"items"`
	Confidence    float64        `json:"confidence"`
	Notes         string         `json:"notes,omitempty"`
	Engine        EngineInfo     `json:"engine_info"`
}

// EstimationService forwards meal photos to the hosted Gemini vision model
// and normalizes whatever comes back into the fixed Estimate schema. It is
// fully independent of the ledger and profile paths.
type EstimationService struct {
	model     string
	serverKey string
	timeout   time.Duration
	logger    *zap.Logger
}

func NewEstimationService(logger *zap.Logger) *EstimationService {
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &EstimationService{
		model:     model,
		serverKey: os.Getenv("GEMINI_API_KEY"),
		timeout:   30 * time.Second,
		logger:    logger,
	}
}

func (s *EstimationService) Model() string { return s.model }

func (s *EstimationService) ServerKeyAvailable() bool { return s.serverKey != "" }

// Estimate applies the key policy and runs the estimation call.
//
// simulate, or no key anywhere: fixed deterministic sample, no network.
// Caller-supplied key: exactly that key; a failing call is surfaced as
// ErrUpstream with no downgrade to the server key. Server key: one retry
// with a stricter prompt, then a conservative canned fallback so the caller
// still gets a usable number.
func (s *EstimationService) Estimate(ctx context.Context, req EstimateRequest) (*Estimate, error) {
	keyMode, key := s.selectKey(req)
	if keyMode == "simulate" {
		utils.EstimationCount.WithLabelValues(keyMode, "ok").Inc()
		return simulatedEstimate(s.model), nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	est, err := s.callOnce(ctx, key, estimationSystemPrompt, req)
	if err == nil && est == nil {
		// Model replied but not with usable JSON; one stricter retry.
		est, err = s.callOnce(ctx, key, estimationRetryPrompt, req)
	}

	if err != nil {
		s.logger.Error("estimation_call_failed", zap.String("key_mode", keyMode), zap.Error(err))
		if keyMode == "user" {
			utils.EstimationCount.WithLabelValues(keyMode, "error").Inc()
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		utils.EstimationCount.WithLabelValues(keyMode, "fallback").Inc()
		return fallbackEstimate(keyMode, s.model), nil
	}
	if est == nil {
		s.logger.Warn("estimation_unparseable_after_retry", zap.String("key_mode", keyMode))
		utils.EstimationCount.WithLabelValues(keyMode, "fallback").Inc()
		return fallbackEstimate(keyMode, s.model), nil
	}

	est.Engine = EngineInfo{KeyMode: keyMode, Model: s.model}
	utils.EstimationCount.WithLabelValues(keyMode, "ok").Inc()
	return est, nil
}

func (s *EstimationService) selectKey(req EstimateRequest) (mode, key string) {
	switch {
	case req.Simulate:
		return "simulate", ""
	case req.APIKey != "":
		return "user", req.APIKey
	case s.serverKey != "":
		return "server", s.serverKey
	default:
		return "simulate", ""
	}
}

// callOnce returns (nil, nil) when the model answered but the answer could
// not be normalized into the schema; that is the retry signal.
func (s *EstimationService) callOnce(ctx context.Context, key, systemPrompt string, req EstimateRequest) (*Estimate, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	userText := req.Message
	if userText == "" {
		userText = "Estimate calories for the attached food image(s)."
	}

	parts := []*genai.Part{{Text: userText}}
	for _, img := range req.Images {
		raw, err := base64.StdEncoding.DecodeString(img.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: image data is not valid base64", ErrValidation)
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: img.MimeType, Data: raw},
		})
	}

	contents := []*genai.Content{{Role: "user", Parts: parts}}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
	}

	resp, err := client.Models.GenerateContent(ctx, s.model, contents, cfg)
	if err != nil {
		return nil, err
	}

	est := ParseEstimate(resp.Text())
	return est, nil
}

// ParseEstimate normalizes raw model output into the fixed schema. Markdown
// fences and surrounding prose are stripped; item fields are accepted under
// several aliases since the model does not always honor the exact keys.
// Returns nil when no usable JSON object is present.
func ParseEstimate(raw string) *Estimate {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end <= start {
		return nil
	}
	cleaned = cleaned[start : end+1]

	var loose map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &loose); err != nil {
		return nil
	}
	if _, ok := loose["total_calories"]; !ok {
		return nil
	}

	est := &Estimate{
		TotalCalories: asFloat(loose["total_calories"]),
		Confidence:    clamp01(asFloat(loose["confidence"])),
		Notes:         asString(loose["notes"]),
	}

	if rawItems, ok := loose["items"].([]interface{}); ok {
		for _, ri := range rawItems {
			m, ok := ri.(map[string]interface{})
			if !ok {
				continue
			}
			est.Items = append(est.Items, EstimateItem{
				Name:          firstString(m, "name", "item", "food", "label"),
				QuantityUnits: firstString(m, "quantity_units", "quantity", "portion", "serving"),
				Calories:      asFloat(firstValue(m, "calories", "kcal")),
				Confidence:    clamp01(asFloat(m["confidence"])),
			})
		}
	}
	return est
}

func simulatedEstimate(model string) *Estimate {
	return &Estimate{
		TotalCalories: 420,
		Items: []EstimateItem{
			{Name: "Grilled chicken", QuantityUnits: "150g", Calories: 250, Confidence: 0.78},
			{Name: "Mixed salad", QuantityUnits: "1 bowl", Calories: 80, Confidence: 0.7},
			{Name: "Olive oil", QuantityUnits: "1 tbsp", Calories: 90, Confidence: 0.65},
		},
		Confidence: 0.74,
		Notes:      "Simulated estimate (no API key provided)",
		Engine:     EngineInfo{KeyMode: "simulate", Model: model},
	}
}

func fallbackEstimate(keyMode, model string) *Estimate {
	return &Estimate{
		TotalCalories: 350,
		Items: []EstimateItem{
			{Name: "Unrecognized meal", QuantityUnits: "1 serving", Calories: 350, Confidence: 0.2},
		},
		Confidence: 0.2,
		Notes:      "Estimation service unavailable, conservative default returned",
		Engine:     EngineInfo{KeyMode: keyMode, Model: model},
	}
}

func firstValue(m map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func firstString(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s := asString(m[k]); s != "" {
			return s
		}
	}
	return ""
}

func asString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
