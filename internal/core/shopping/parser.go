package shopping

import (
	"context"
	"fmt"
	"strings"

	"meal-planner/internal/core/ai"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// ParsedIngredient 一行食材文字的結構化結果
// 不單獨持久化，只作為購物清單彙總的輸入
type ParsedIngredient struct {
	Name     string  `json:"name"` // 小寫正規化名稱，彙總時的合併鍵
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// Parser 食材行解析器
// 把食譜的自由文字食材行（例如 "2 cups chopped onion"）解析成
// 名稱、數量、單位；單行失敗以保底紀錄代替，不影響整批解析
type Parser struct {
	completer ai.Completer
}

// NewParser 創建食材行解析器
func NewParser(completer ai.Completer) *Parser {
	return &Parser{completer: completer}
}

// ParseLines 整批解析食材行，回傳與輸入等長的結果
// completion 整批失敗或單行結果不合法時，該行以
// {原文小寫, 1, "item"} 保底，永不回傳錯誤
func (p *Parser) ParseLines(ctx context.Context, lines []string) []ParsedIngredient {
	if len(lines) == 0 {
		return nil
	}

	var sb strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&sb, "%d. %s\n", i, line)
	}

	prompt := fmt.Sprintf(`Parse each recipe ingredient line into a core ingredient name, a numeric quantity and a unit.

Lines:
%s
Rules:
- "name" is the core ingredient in lowercase English, without preparation words ("chopped", "fresh").
- "quantity" is a non-negative number; use 1 when the line gives none.
- "unit" is a short unit string ("cup", "g", "tbsp"); use "item" when the line gives none.

Respond with ONLY a JSON array of exactly %d objects, in the same order:
[{"name":"onion","quantity":2,"unit":"cup"}]`,
		sb.String(), len(lines))

	raw, err := p.completer.Complete(ctx, prompt)
	if err != nil {
		common.LogWarn("食材解析整批回退", zap.Error(err), zap.Int("lines", len(lines)))
		return fallbackAll(lines)
	}

	var parsed []ParsedIngredient
	if err := common.DecodeCompletionJSON(raw, &parsed); err != nil {
		common.LogWarn("食材解析輸出無法解析，整批回退", zap.Error(err))
		return fallbackAll(lines)
	}
	if len(parsed) != len(lines) {
		common.LogWarn("食材解析結果數量不符，整批回退",
			zap.Int("expected", len(lines)), zap.Int("got", len(parsed)))
		return fallbackAll(lines)
	}

	out := make([]ParsedIngredient, len(lines))
	for i, ing := range parsed {
		ing.Name = common.CanonicalName(ing.Name)
		ing.Unit = strings.TrimSpace(ing.Unit)
		if ing.Name == "" || ing.Quantity < 0 {
			out[i] = fallbackIngredient(lines[i])
			continue
		}
		if ing.Unit == "" {
			ing.Unit = "item"
		}
		out[i] = ing
	}
	return out
}

// fallbackIngredient 單行保底紀錄，讓該行仍出現在清單上
func fallbackIngredient(line string) ParsedIngredient {
	return ParsedIngredient{
		Name:     common.CanonicalName(line),
		Quantity: 1,
		Unit:     "item",
	}
}

func fallbackAll(lines []string) []ParsedIngredient {
	out := make([]ParsedIngredient, len(lines))
	for i, line := range lines {
		out[i] = fallbackIngredient(line)
	}
	return out
}
