package assistant

import (
	"encoding/json"
	"strings"
)

// ParseAnalysis извлекает JSON-объект из ответа модели.
// Ответ может быть обернут в markdown-блок или окружен текстом.
func ParseAnalysis(reply string) (PhotoAnalysis, bool) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return Fallback(reply), false
	}

	var a PhotoAnalysis
	if err := json.Unmarshal([]byte(reply[start:end+1]), &a); err != nil {
		return Fallback(reply), false
	}

	if a.FoodItems == nil {
		a.FoodItems = []FoodItem{}
	}
	if a.Suggestions == nil {
		a.Suggestions = []string{}
	}
	if a.Confidence == "" {
		a.Confidence = ConfidenceMedium
	}
	if a.EstimatedCalories == 0 {
		for _, item := range a.FoodItems {
			a.EstimatedCalories += item.Calories
		}
	}

	return a, true
}
