package extraction

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/nutricoach/backend/internal/calculation"
	"github.com/nutricoach/backend/internal/domain"
)

// extractionReply is the JSON object the model is asked to return
type extractionReply struct {
	Error        string       `json:"error"`
	MealCategory string       `json:"mealCategory"`
	Description  string       `json:"description"`
	Items        []replyItem  `json:"items"`
	TotalMacros  *replyMacros `json:"totalMacros"`
}

type replyItem struct {
	Name        string   `json:"name"`
	Servings    *float64 `json:"servings"`
	ServingSize string   `json:"servingSize"`
	replyMacros
}

type replyMacros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

func (m replyMacros) toDomain() domain.Macros {
	return domain.Macros{Calories: m.Calories, Protein: m.Protein, Carbs: m.Carbs, Fat: m.Fat}.Sanitize()
}

// ParseExtraction maps a model reply onto a MealExtraction.
// Items without a name are dropped, missing servings default to 1 and an
// absent or zero total is recomputed from the items.
func ParseExtraction(content string) (*domain.MealExtraction, error) {
	content = stripCodeFence(content)

	var reply extractionReply
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON reply: %v", domain.ErrExtractionFailed, err)
	}
	if reply.Error != "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrExtractionFailed, reply.Error)
	}

	items := make([]domain.MealItem, 0, len(reply.Items))
	for _, it := range reply.Items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			continue
		}
		servings := 1.0
		if it.Servings != nil && *it.Servings > 0 {
			servings = *it.Servings
		}
		items = append(items, domain.MealItem{
			ID:          uuid.NewString(),
			Name:        name,
			Macros:      it.replyMacros.toDomain(),
			Servings:    servings,
			ServingSize: strings.TrimSpace(it.ServingSize),
		})
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no food items recognized", domain.ErrExtractionFailed)
	}

	var total domain.Macros
	if reply.TotalMacros != nil {
		total = reply.TotalMacros.toDomain()
	}
	if total.IsZero() {
		total = calculation.EntryMacros(items)
	}

	return &domain.MealExtraction{
		Items:        items,
		MealCategory: domain.ParseMealCategory(reply.MealCategory),
		Description:  strings.TrimSpace(reply.Description),
		TotalMacros:  total,
	}, nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models add despite json_object mode
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
