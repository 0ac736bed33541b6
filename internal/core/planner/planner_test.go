package planner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"meal-planner/internal/core/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompleter 依 prompt 內容回覆預先設定的字串
type fakeCompleter struct {
	responses map[string]string // prompt 子字串 → 回覆
	err       error
	calls     int
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	for marker, resp := range f.responses {
		if strings.Contains(prompt, marker) {
			return resp, nil
		}
	}
	return "", errors.New("no canned response")
}

func TestPlanWithoutMessageUsesPreferencesDirectly(t *testing.T) {
	p := NewPlanner(&fakeCompleter{})
	prefs := &user.MergedPreferences{
		DietLabels: []string{"vegetarian", "low-carb", "gluten-free"},
		Excluded:   []string{"mushroom"},
	}

	params := p.Plan(context.Background(), prefs, "")

	assert.Empty(t, params.Query)
	assert.ElementsMatch(t, []string{"vegetarian", "gluten-free"}, params.HealthLabels)
	assert.ElementsMatch(t, []string{"low-carb"}, params.DietLabels)
	assert.Equal(t, []string{"mushroom"}, params.Excluded)
}

func TestPlanRequestPriorityDropsConflictingLabel(t *testing.T) {
	fake := &fakeCompleter{responses: map[string]string{
		"meal planning assistant": `{"query":"steak dinner","health_labels":["gluten-free"],"excluded_ingredients":[],"diet_labels":[],"cuisine_type":"","meal_type":"dinner","dish_type":"","time":""}`,
	}}
	p := NewPlanner(fake)
	prefs := &user.MergedPreferences{DietLabels: []string{"vegetarian", "gluten-free"}}

	params := p.Plan(context.Background(), prefs, "I want a steak dinner tonight")

	assert.Equal(t, "steak dinner", params.Query)
	assert.NotContains(t, params.HealthLabels, "vegetarian")
	assert.Contains(t, params.HealthLabels, "gluten-free")
	assert.Equal(t, "dinner", params.MealType)
}

func TestPlanMalformedCompletionFallsBackKeepingAllLabels(t *testing.T) {
	fake := &fakeCompleter{responses: map[string]string{
		"meal planning assistant": "sorry, I cannot help with that",
	}}
	p := NewPlanner(fake)
	prefs := &user.MergedPreferences{
		DietLabels: []string{"vegan", "high-protein"},
		Excluded:   []string{"peanuts"},
	}

	params := p.Plan(context.Background(), prefs, "something quick")

	// 格式錯誤時走固定查表回退，標籤全數保留、查詢文字採原始訊息
	assert.Equal(t, "something quick", params.Query)
	assert.ElementsMatch(t, []string{"vegan"}, params.HealthLabels)
	assert.ElementsMatch(t, []string{"high-protein"}, params.DietLabels)
	assert.Equal(t, []string{"peanuts"}, params.Excluded)
}

func TestPlanCompleterErrorNeverPropagates(t *testing.T) {
	p := NewPlanner(&fakeCompleter{err: errors.New("upstream down")})
	prefs := &user.MergedPreferences{DietLabels: []string{"vegetarian"}}

	params := p.Plan(context.Background(), prefs, "pasta")

	assert.Equal(t, "pasta", params.Query)
	assert.Equal(t, []string{"vegetarian"}, params.HealthLabels)
}

func TestExtractExclusionsConfidenceCutoff(t *testing.T) {
	fake := &fakeCompleter{responses: map[string]string{
		"dietary preferences": `[{"token":"Peanuts","confidence":0.95},{"token":"cilantro","confidence":0.4}]`,
	}}
	p := NewPlanner(fake)
	prefs := &user.MergedPreferences{CustomPreferences: []string{"對花生嚴重過敏", "不太喜歡香菜"}}

	params := p.Plan(context.Background(), prefs, "")

	require.Contains(t, params.Excluded, "peanuts")
	assert.NotContains(t, params.Excluded, "cilantro")
}

func TestExtractExclusionsKeywordFallback(t *testing.T) {
	p := NewPlanner(&fakeCompleter{err: errors.New("timeout")})
	prefs := &user.MergedPreferences{CustomPreferences: []string{"Severe peanut allergy, also avoid shellfish"}}

	params := p.Plan(context.Background(), prefs, "")

	// 明確過敏原不可因服務失敗被默默丟棄
	assert.Contains(t, params.Excluded, "peanuts")
	assert.Contains(t, params.Excluded, "shellfish")
}

func TestPlanMergesPlannedExclusionsWithStanding(t *testing.T) {
	fake := &fakeCompleter{responses: map[string]string{
		"meal planning assistant": `{"query":"curry","excluded_ingredients":["cilantro"],"health_labels":[],"diet_labels":[]}`,
	}}
	p := NewPlanner(fake)
	prefs := &user.MergedPreferences{Excluded: []string{"peanuts"}}

	params := p.Plan(context.Background(), prefs, "a curry without cilantro")

	assert.ElementsMatch(t, []string{"peanuts", "cilantro"}, params.Excluded)
}
