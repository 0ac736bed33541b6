package curation

import (
	"context"
	"fmt"
	"strings"

	"meal-planner/internal/core/ai"
	"meal-planner/internal/core/session"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// 對話意圖
const (
	IntentChangeRecipes = "change_recipes" // 換一批：帶新限制重新搜尋
	IntentFilter        = "filter"         // 過濾：縮小目前已選清單
	IntentQuestion      = "question"       // 問答：純回答，不動清單
)

// 分類時帶入的歷史訊息數量上限
const intentHistoryWindow = 4

// 分類完全失敗時的回覆
const fallbackResponse = "抱歉，我沒有聽懂這個要求，可以換個說法嗎？目前的食譜清單維持不變。"

// Intent 分類結果與對應參數
type Intent struct {
	Type       string   `json:"intent"`
	Response   string   `json:"response"`
	Indices    []int    `json:"indices"`     // filter：保留的已選食譜索引
	Exclusions []string `json:"exclusions"`  // change_recipes：新增的排除食材
	DietLabels []string `json:"diet_labels"` // change_recipes：整批取代的飲食標籤，空值表示不變
}

// IntentClassifier 對話意圖分類器
// 失敗安全：無法分類時一律降級為 question，絕不讓會話狀態
// 因分類錯誤而被改動
type IntentClassifier struct {
	completer ai.Completer
}

// NewIntentClassifier 創建意圖分類器
func NewIntentClassifier(completer ai.Completer) *IntentClassifier {
	return &IntentClassifier{completer: completer}
}

// Classify 判斷用戶訊息的意圖
// 只帶入最近幾輪對話避免 prompt 無限增長；
// completion 失敗或輸出格式錯誤時回傳 question 與通用回覆
func (c *IntentClassifier) Classify(ctx context.Context, sess *session.Session, userMessage string) Intent {
	var history strings.Builder
	turns := sess.ChatHistory
	if len(turns) > intentHistoryWindow {
		turns = turns[len(turns)-intentHistoryWindow:]
	}
	for _, t := range turns {
		fmt.Fprintf(&history, "%s: %s\n", t.Role, t.Content)
	}

	var selected strings.Builder
	for i, r := range sess.SelectedRecipes {
		fmt.Fprintf(&selected, "%d. %s\n", i, r.Label)
	}

	prompt := fmt.Sprintf(`You are a meal planning assistant. Classify the user's message about their current recipe list.

Recent conversation:
%s
Currently shown recipes (index. name):
%s
User message: %q

Intents:
- "change_recipes": the user wants a different batch of recipes, possibly with new constraints (e.g. "I don't like broccoli, swap these out"). Put ingredients to avoid in "exclusions". If the user states a new dietary regime (e.g. going vegan), put the full replacement label set in "diet_labels"; otherwise leave it empty.
- "filter": the user wants to keep only some of the shown recipes (e.g. "just the first three"). Put the zero-based indices to keep in "indices".
- "question": anything else; answer it in "response".

Always write a short friendly "response" in the user's language.

Respond with ONLY a JSON object:
{"intent":"","response":"","indices":[],"exclusions":[],"diet_labels":[]}`,
		history.String(),
		selected.String(),
		userMessage)

	raw, err := c.completer.Complete(ctx, prompt)
	if err != nil {
		common.LogWarn("意圖分類失敗，降級為 question", zap.Error(err))
		return Intent{Type: IntentQuestion, Response: fallbackResponse}
	}

	var intent Intent
	if err := common.DecodeCompletionJSON(raw, &intent); err != nil {
		common.LogWarn("意圖分類輸出無法解析，降級為 question", zap.Error(err))
		return Intent{Type: IntentQuestion, Response: fallbackResponse}
	}

	switch intent.Type {
	case IntentChangeRecipes, IntentFilter, IntentQuestion:
	default:
		common.LogWarn("意圖分類回傳未知意圖，降級為 question",
			zap.String("intent", intent.Type))
		intent = Intent{Type: IntentQuestion, Response: intent.Response}
	}

	if intent.Response == "" {
		intent.Response = fallbackResponse
	}
	return intent
}
