package services

import (
	"context"
	"reflect"
	"testing"

	"go.uber.org/zap"
)

func TestParseEstimateStrictJSON(t *testing.T) {
	raw := `{"total_calories": 520, "items": [{"name": "Pasta", "quantity_units": "200g", "calories": 400, "confidence": 0.8}, {"name": "Parmesan", "quantity_units": "20g", "calories": 120, "confidence": 0.7}], "confidence": 0.75, "notes": "Lunch plate"}`

	est := ParseEstimate(raw)
	if est == nil {
		t.Fatal("expected a parsed estimate")
	}
	if est.TotalCalories != 520 {
		t.Errorf("total = %v, want 520", est.TotalCalories)
	}
	if len(est.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(est.Items))
	}
	if est.Items[0].Name != "Pasta" || est.Items[1].Name != "Parmesan" {
		t.Errorf("item order not preserved: %+v", est.Items)
	}
	if est.Confidence != 0.75 {
		t.Errorf("confidence = %v, want 0.75", est.Confidence)
	}
	if est.Notes != "Lunch plate" {
		t.Errorf("notes = %q", est.Notes)
	}
}

func TestParseEstimateMarkdownFences(t *testing.T) {
	raw := "Here is the estimate:\n```json\n{\"total_calories\": 300, \"items\": [], \"confidence\": 0.5}\n```\nHope that helps!"

	est := ParseEstimate(raw)
	if est == nil {
		t.Fatal("expected a parsed estimate")
	}
	if est.TotalCalories != 300 {
		t.Errorf("total = %v, want 300", est.TotalCalories)
	}
}

func TestParseEstimateDuckTypedItemKeys(t *testing.T) {
	raw := `{"total_calories": 180, "items": [{"item": "Apple", "quantity": "1 medium", "kcal": 95, "confidence": 0.9}, {"food": "Coffee", "portion": "1 cup", "calories": "85", "confidence": 1.4}], "confidence": 0.8}`

	est := ParseEstimate(raw)
	if est == nil {
		t.Fatal("expected a parsed estimate")
	}
	if est.Items[0].Name != "Apple" || est.Items[0].QuantityUnits != "1 medium" || est.Items[0].Calories != 95 {
		t.Errorf("alias keys not normalized: %+v", est.Items[0])
	}
	if est.Items[1].Name != "Coffee" || est.Items[1].Calories != 85 {
		t.Errorf("string calories not coerced: %+v", est.Items[1])
	}
	if est.Items[1].Confidence != 1 {
		t.Errorf("confidence %v should clamp to 1", est.Items[1].Confidence)
	}
}

func TestParseEstimateRejectsGarbage(t *testing.T) {
	for _, raw := range []string{
		"",
		"no json here at all",
		"{not actually json}",
		`{"items": [], "confidence": 0.5}`, // missing total_calories
	} {
		if est := ParseEstimate(raw); est != nil {
			t.Errorf("ParseEstimate(%q) = %+v, want nil", raw, est)
		}
	}
}

func TestEstimateSimulateIsDeterministic(t *testing.T) {
	svc := NewEstimationService(zap.NewNop())

	req := EstimateRequest{
		Images:   []ImageAttachment{{Data: "aGVsbG8=", MimeType: "image/png"}},
		Simulate: true,
	}

	first, err := svc.Estimate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if first.Engine.KeyMode != "simulate" {
		t.Errorf("key_mode = %q, want simulate", first.Engine.KeyMode)
	}
	if first.TotalCalories != 420 {
		t.Errorf("total = %v, want 420", first.TotalCalories)
	}

	// Different image content, same deterministic sample.
	req.Images[0].Data = "d29ybGQ="
	second, err := svc.Estimate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("simulate responses differ:\n%+v\n%+v", first, second)
	}
}

func TestSelectKeyPolicy(t *testing.T) {
	withServerKey := &EstimationService{serverKey: "server-key"}
	withoutServerKey := &EstimationService{}

	tests := []struct {
		name     string
		svc      *EstimationService
		req      EstimateRequest
		wantMode string
		wantKey  string
	}{
		{"simulate wins over everything", withServerKey, EstimateRequest{Simulate: true, APIKey: "user-key"}, "simulate", ""},
		{"caller key used exactly", withServerKey, EstimateRequest{APIKey: "user-key"}, "user", "user-key"},
		{"server key as default", withServerKey, EstimateRequest{}, "server", "server-key"},
		{"no key anywhere falls back to simulate", withoutServerKey, EstimateRequest{}, "simulate", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, key := tt.svc.selectKey(tt.req)
			if mode != tt.wantMode || key != tt.wantKey {
				t.Errorf("got (%s, %s), want (%s, %s)", mode, key, tt.wantMode, tt.wantKey)
			}
		})
	}
}
