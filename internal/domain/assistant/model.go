package assistant

import "errors"

var (
	ErrEmptyMessage    = errors.New("message is required")
	ErrInvalidImageURL = errors.New("imageUrl must be an absolute http(s) URL")
)

const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

type FoodItem struct {
	Name     string  `json:"name"`
	Portion  string  `json:"portion,omitempty"`
	Calories float64 `json:"calories"`
}

type Nutrients struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
	Fiber   float64 `json:"fiber"`
}

// PhotoAnalysis оценка блюда по фотографии. Все поля присутствуют даже при разборе неудачного ответа.
type PhotoAnalysis struct {
	FoodItems         []FoodItem `json:"foodItems"`
	EstimatedCalories float64    `json:"estimatedCalories"`
	Nutrients         Nutrients  `json:"nutrients"`
	HealthScore       float64    `json:"healthScore"`
	Suggestions       []string   `json:"suggestions"`
	Confidence        string     `json:"confidence"`
	Description       string     `json:"description"`
}

// Fallback результат для ответа модели, который не удалось разобрать
func Fallback(raw string) PhotoAnalysis {
	return PhotoAnalysis{
		FoodItems:   []FoodItem{},
		Suggestions: []string{},
		Confidence:  ConfidenceLow,
		Description: raw,
	}
}
