package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAnalysis(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		wantOK     bool
		wantKcal   float64
		wantItems  int
		wantConf   string
		wantDescr  string
	}{
		{
			name:      "plain json",
			reply:     `{"foodItems":[{"name":"rice","calories":200}],"estimatedCalories":450,"confidence":"high","description":"rice bowl"}`,
			wantOK:    true,
			wantKcal:  450,
			wantItems: 1,
			wantConf:  ConfidenceHigh,
			wantDescr: "rice bowl",
		},
		{
			name:      "markdown fenced",
			reply:     "```json\n{\"foodItems\":[],\"estimatedCalories\":120,\"confidence\":\"low\"}\n```",
			wantOK:    true,
			wantKcal:  120,
			wantItems: 0,
			wantConf:  ConfidenceLow,
		},
		{
			name:      "calories summed from items",
			reply:     `Here you go: {"foodItems":[{"name":"egg","calories":70},{"name":"toast","calories":80}]}`,
			wantOK:    true,
			wantKcal:  150,
			wantItems: 2,
			wantConf:  ConfidenceMedium,
		},
		{
			name:      "not json",
			reply:     "I think this is a salad with about 300 calories.",
			wantOK:    false,
			wantKcal:  0,
			wantItems: 0,
			wantConf:  ConfidenceLow,
			wantDescr: "I think this is a salad with about 300 calories.",
		},
		{
			name:      "broken json",
			reply:     `{"foodItems": [ {"name": "soup", }`,
			wantOK:    false,
			wantKcal:  0,
			wantItems: 0,
			wantConf:  ConfidenceLow,
			wantDescr: `{"foodItems": [ {"name": "soup", }`,
		},
		{
			name:      "wrong field types",
			reply:     `{"estimatedCalories":"many"}`,
			wantOK:    false,
			wantConf:  ConfidenceLow,
			wantDescr: `{"estimatedCalories":"many"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAnalysis(tt.reply)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantKcal, got.EstimatedCalories)
			assert.Len(t, got.FoodItems, tt.wantItems)
			assert.NotNil(t, got.FoodItems)
			assert.NotNil(t, got.Suggestions)
			assert.Equal(t, tt.wantConf, got.Confidence)
			if tt.wantDescr != "" {
				assert.Equal(t, tt.wantDescr, got.Description)
			}
		})
	}
}

func TestFallback_HasAllFields(t *testing.T) {
	f := Fallback("raw")

	assert.Equal(t, 0.0, f.EstimatedCalories)
	assert.Equal(t, Nutrients{}, f.Nutrients)
	assert.Empty(t, f.FoodItems)
	assert.NotNil(t, f.FoodItems)
	assert.Equal(t, ConfidenceLow, f.Confidence)
	assert.Equal(t, "raw", f.Description)
}
