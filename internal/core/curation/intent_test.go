package curation

import (
	"context"
	"errors"
	"testing"

	"meal-planner/internal/core/session"

	"github.com/stretchr/testify/assert"
)

func TestClassifyChangeRecipesWithExclusions(t *testing.T) {
	fake := &fakeCompleter{responses: map[string]string{
		"Classify the user's message": `{"intent":"change_recipes","response":"好的，幫你換掉含花椰菜的食譜","exclusions":["broccoli"],"indices":[],"diet_labels":[]}`,
	}}
	c := NewIntentClassifier(fake)
	sess := &session.Session{SelectedRecipes: makeRecipes(3)}

	intent := c.Classify(context.Background(), sess, "我不喜歡花椰菜，換一批")

	assert.Equal(t, IntentChangeRecipes, intent.Type)
	assert.Equal(t, []string{"broccoli"}, intent.Exclusions)
	assert.Empty(t, intent.DietLabels)
}

func TestClassifyFilterIndices(t *testing.T) {
	fake := &fakeCompleter{responses: map[string]string{
		"Classify the user's message": `{"intent":"filter","response":"好的，只保留前三道","indices":[0,1,2]}`,
	}}
	c := NewIntentClassifier(fake)
	sess := &session.Session{SelectedRecipes: makeRecipes(9)}

	intent := c.Classify(context.Background(), sess, "只留前三個")

	assert.Equal(t, IntentFilter, intent.Type)
	assert.Equal(t, []int{0, 1, 2}, intent.Indices)
}

func TestClassifyServiceFailureDegradesToQuestion(t *testing.T) {
	c := NewIntentClassifier(&fakeCompleter{err: errors.New("timeout")})
	sess := &session.Session{SelectedRecipes: makeRecipes(2)}

	intent := c.Classify(context.Background(), sess, "換一批")

	assert.Equal(t, IntentQuestion, intent.Type)
	assert.Equal(t, fallbackResponse, intent.Response)
	assert.Empty(t, intent.Indices)
	assert.Empty(t, intent.Exclusions)
}

func TestClassifyMalformedOutputDegradesToQuestion(t *testing.T) {
	fake := &fakeCompleter{responses: map[string]string{
		"Classify the user's message": "I think the user wants new recipes",
	}}
	c := NewIntentClassifier(fake)

	intent := c.Classify(context.Background(), &session.Session{}, "hmm")

	assert.Equal(t, IntentQuestion, intent.Type)
	assert.Equal(t, fallbackResponse, intent.Response)
}

func TestClassifyUnknownIntentDegradesToQuestion(t *testing.T) {
	fake := &fakeCompleter{responses: map[string]string{
		"Classify the user's message": `{"intent":"order_pizza","response":"馬上為你訂購"}`,
	}}
	c := NewIntentClassifier(fake)

	intent := c.Classify(context.Background(), &session.Session{}, "幫我訂披薩")

	assert.Equal(t, IntentQuestion, intent.Type)
	assert.Equal(t, "馬上為你訂購", intent.Response)
}

func TestClassifyPromptWindowKeepsRecentTurnsOnly(t *testing.T) {
	fake := &fakeCompleter{responses: map[string]string{
		"Classify the user's message": `{"intent":"question","response":"ok"}`,
	}}
	c := NewIntentClassifier(fake)
	sess := &session.Session{
		ChatHistory: []session.ChatTurn{
			{Role: "user", Content: "oldest-turn"},
			{Role: "assistant", Content: "turn-2"},
			{Role: "user", Content: "turn-3"},
			{Role: "assistant", Content: "turn-4"},
			{Role: "user", Content: "turn-5"},
		},
	}

	c.Classify(context.Background(), sess, "hi")

	assert.NotContains(t, fake.lastPrompt, "oldest-turn")
	assert.Contains(t, fake.lastPrompt, "turn-2")
	assert.Contains(t, fake.lastPrompt, "turn-5")
}
