// Package plan defines generated fitness content and the member profile
// inputs it is derived from.
package plan

import (
	"encoding/json"
	"time"
)

// Kind identifies a generated content type.
type Kind string

const (
	KindWorkout Kind = "workout"
	KindDiet    Kind = "diet"
	KindGuide   Kind = "guide"
	KindTips    Kind = "tips"
)

// Profile is the member input a plan is generated from.
type Profile struct {
	Age          int      `json:"age"`
	HeightCm     float64  `json:"height_cm"`
	WeightKg     float64  `json:"weight_kg"`
	Goal         string   `json:"goal"`
	Experience   string   `json:"experience"`
	DaysPerWeek  int      `json:"days_per_week"`
	Restrictions []string `json:"restrictions,omitempty"`
}

// Record stores one generated artifact. Content keeps the provider's JSON
// as produced so the client can render it unchanged.
type Record struct {
	ID        string          `json:"id"`
	MemberID  string          `json:"member_id"`
	Kind      Kind            `json:"kind"`
	Content   json.RawMessage `json:"content"`
	CreatedAt time.Time       `json:"created_at"`
}

// BMI category boundaries follow the WHO adult classification.
const (
	bmiUnderweight = 18.5
	bmiNormal      = 25.0
	bmiOverweight  = 30.0
)

// BMI computes body mass index and its category from height in centimeters
// and weight in kilograms. Returns zeros for non-positive inputs.
func BMI(weightKg, heightCm float64) (float64, string) {
	if weightKg <= 0 || heightCm <= 0 {
		return 0, ""
	}
	meters := heightCm / 100
	value := weightKg / (meters * meters)
	switch {
	case value < bmiUnderweight:
		return value, "underweight"
	case value < bmiNormal:
		return value, "normal"
	case value < bmiOverweight:
		return value, "overweight"
	default:
		return value, "obese"
	}
}
