package planner

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"meal-planner/internal/core/ai"
	"meal-planner/internal/core/catalog"
	"meal-planner/internal/core/user"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// dietCategoryLabels 固定查表：屬於 diet 類別的標籤，其餘視為 health 類別
var dietCategoryLabels = map[string]struct{}{
	"balanced":     {},
	"high-fiber":   {},
	"high-protein": {},
	"low-carb":     {},
	"low-fat":      {},
	"low-sodium":   {},
}

// allergenKeywords 關鍵字掃描表：自由文字偏好中明確的過敏原
// completion 服務失敗時的確定性回退，明確的過敏原不可被默默丟棄
var allergenKeywords = map[string]string{
	"peanut":    "peanuts",
	"tree nut":  "tree-nuts",
	"nut":       "nuts",
	"shellfish": "shellfish",
	"shrimp":    "shrimp",
	"dairy":     "dairy",
	"milk":      "dairy",
	"lactose":   "dairy",
	"gluten":    "gluten",
	"wheat":     "wheat",
	"egg":       "eggs",
	"soy":       "soy",
	"fish":      "fish",
	"sesame":    "sesame",
	"mustard":   "mustard",
	"celery":    "celery",
}

// 自由文字偏好的信心門檻，低於此值的 token 直接略過
const exclusionConfidenceCutoff = 0.6

// Planner 搜尋參數規劃器
// 將合併後的偏好與可選的自由文字要求轉成結構化搜尋參數；
// completion 輸出格式錯誤時走確定性回退，永不回傳錯誤
type Planner struct {
	completer ai.Completer
}

// NewPlanner 創建搜尋參數規劃器
func NewPlanner(completer ai.Completer) *Planner {
	return &Planner{completer: completer}
}

// Plan 規劃搜尋參數
// userMessage 為空時採保守預設：health 標籤與排除食材直接來自偏好。
// userMessage 有值時以「要求優先」解衝突：要求與既有標籤明顯牴觸時，
// 本次查詢捨棄牴觸標籤並以要求設定查詢文字，其餘標籤保留。
func (p *Planner) Plan(ctx context.Context, prefs *user.MergedPreferences, userMessage string) catalog.SearchParameters {
	excluded := append([]string(nil), prefs.Excluded...)
	excluded = append(excluded, p.extractExclusions(ctx, prefs.CustomPreferences)...)
	excluded = common.UniqueStrings(excluded)

	userMessage = strings.TrimSpace(userMessage)
	if userMessage == "" {
		// 沒有自由文字要求時的保守預設：標籤與排除直接來自偏好
		return p.fallbackParams(prefs, excluded)
	}

	params, err := p.planWithRequest(ctx, prefs, excluded, userMessage)
	if err != nil {
		common.LogWarn("規劃器回退到固定查表",
			zap.Error(err),
			zap.String("message", userMessage),
		)
		params := p.fallbackParams(prefs, excluded)
		params.Query = userMessage
		return params
	}
	return params
}

// plannedParams completion 回傳的規劃結果
type plannedParams struct {
	Query        string   `json:"query"`
	HealthLabels []string `json:"health_labels"`
	Excluded     []string `json:"excluded_ingredients"`
	DietLabels   []string `json:"diet_labels"`
	CuisineType  string   `json:"cuisine_type"`
	MealType     string   `json:"meal_type"`
	DishType     string   `json:"dish_type"`
	Time         string   `json:"time"`
}

// planWithRequest 以 completion 服務解析自由文字要求
func (p *Planner) planWithRequest(ctx context.Context, prefs *user.MergedPreferences, excluded []string, userMessage string) (catalog.SearchParameters, error) {
	prompt := fmt.Sprintf(`You are a meal planning assistant converting a user request into recipe search parameters.

Standing dietary labels: %s
Standing excluded ingredients: %s

User request: %q

Rules:
1. The request takes priority: if it plainly asks for something incompatible with a standing label (e.g. asks for meat while a label says vegetarian), drop that label for this query and set "query" to reflect the request. Keep labels that do not conflict.
2. Use only these health labels: vegan, vegetarian, paleo, dairy-free, gluten-free, wheat-free, egg-free, peanut-free, tree-nut-free, soy-free, fish-free, shellfish-free, pork-free, red-meat-free, alcohol-free, kosher.
3. Use only these diet labels: balanced, high-fiber, high-protein, low-carb, low-fat, low-sodium.
4. Add ingredients the request clearly wants to avoid to "excluded_ingredients".
5. "time" is an optional minute range like "1-30". Leave fields you are unsure about empty.

Respond with ONLY a JSON object:
{"query":"","health_labels":[],"excluded_ingredients":[],"diet_labels":[],"cuisine_type":"","meal_type":"","dish_type":"","time":""}`,
		strings.Join(prefs.DietLabels, ", "),
		strings.Join(excluded, ", "),
		userMessage)

	raw, err := p.completer.Complete(ctx, prompt)
	if err != nil {
		return catalog.SearchParameters{}, err
	}

	var planned plannedParams
	if err := common.DecodeCompletionJSON(raw, &planned); err != nil {
		return catalog.SearchParameters{}, err
	}

	params := catalog.SearchParameters{
		Query:        strings.TrimSpace(planned.Query),
		HealthLabels: planned.HealthLabels,
		DietLabels:   planned.DietLabels,
		CuisineType:  planned.CuisineType,
		MealType:     planned.MealType,
		DishType:     planned.DishType,
		Time:         planned.Time,
		Excluded:     common.UniqueStrings(append(excluded, planned.Excluded...)),
	}
	if params.Query == "" {
		params.Query = userMessage
	}
	return params, nil
}

// fallbackParams 確定性回退：依固定查表把既有標籤分成
// health 與 diet 兩類，排除食材原樣帶過
func (p *Planner) fallbackParams(prefs *user.MergedPreferences, excluded []string) catalog.SearchParameters {
	var health, diet []string
	for _, label := range prefs.DietLabels {
		if _, ok := dietCategoryLabels[strings.ToLower(label)]; ok {
			diet = append(diet, label)
		} else {
			health = append(health, label)
		}
	}

	return catalog.SearchParameters{
		HealthLabels: health,
		DietLabels:   diet,
		Excluded:     excluded,
	}
}

// extractedToken 自由文字偏好萃取出的排除 token
type extractedToken struct {
	Token      string  `json:"token"`
	Confidence float64 `json:"confidence"`
}

// extractExclusions 把任意語言的自由文字偏好化約成標準排除 token
// 信心不足的 token 直接略過；completion 失敗時退回關鍵字掃描，
// 確保明確的過敏原不會被默默丟棄
func (p *Planner) extractExclusions(ctx context.Context, customPreferences []string) []string {
	if len(customPreferences) == 0 {
		return nil
	}

	prompt := fmt.Sprintf(`Extract ingredient or allergen exclusions from these free-text dietary preferences (any language):

%s

For each clear exclusion, output a canonical lowercase English ingredient token and your confidence (0-1).
Skip statements that are not about avoiding an ingredient. When a phrase is ambiguous, give it low confidence.

Respond with ONLY a JSON array like: [{"token":"peanuts","confidence":0.95}]`,
		strings.Join(customPreferences, "\n"))

	raw, err := p.completer.Complete(ctx, prompt)
	if err == nil {
		var tokens []extractedToken
		if err = common.DecodeCompletionJSON(raw, &tokens); err == nil {
			var out []string
			for _, tk := range tokens {
				name := common.CanonicalName(tk.Token)
				if name == "" || tk.Confidence < exclusionConfidenceCutoff {
					continue
				}
				out = append(out, name)
			}
			return common.UniqueStrings(out)
		}
	}

	common.LogWarn("偏好萃取回退到關鍵字掃描", zap.Error(err))
	return scanAllergenKeywords(customPreferences)
}

// scanAllergenKeywords 關鍵字掃描回退，輸出排序後保持確定性
func scanAllergenKeywords(customPreferences []string) []string {
	var out []string
	for _, pref := range customPreferences {
		text := strings.ToLower(pref)
		for keyword, token := range allergenKeywords {
			if strings.Contains(text, keyword) {
				out = append(out, token)
			}
		}
	}
	out = common.UniqueStrings(out)
	sort.Strings(out)
	return out
}
