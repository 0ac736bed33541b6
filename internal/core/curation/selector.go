package curation

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"meal-planner/internal/core/ai"
	"meal-planner/internal/core/catalog"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// 展示給用戶的食譜數量上限
const selectionSize = 9

// Selector 多樣性挑選器
// 從候選清單挑出一批多樣的食譜：約七成貼近用戶既有口味、
// 三成鼓勵嘗鮮；completion 服務完全失敗時退回均勻隨機抽樣
type Selector struct {
	completer ai.Completer
}

// NewSelector 創建多樣性挑選器
func NewSelector(completer ai.Completer) *Selector {
	return &Selector{completer: completer}
}

// SelectDiverse 從候選清單挑出至多 9 道多樣的食譜
// 候選不足 9 道時原樣全回傳；輸入切片不會被修改。
// 回傳數量保證為 min(9, len(recipes))，永不回傳錯誤
func (s *Selector) SelectDiverse(ctx context.Context, recipes []catalog.Recipe, prefs []string) []catalog.Recipe {
	if len(recipes) <= selectionSize {
		return append([]catalog.Recipe(nil), recipes...)
	}

	indices, err := s.pickIndices(ctx, recipes, prefs)
	if err != nil {
		common.LogWarn("多樣性挑選回退到隨機抽樣", zap.Error(err))
		indices = nil
	}

	// 丟棄越界索引、去除重複，保留 completion 給的順序
	seen := make(map[int]struct{}, selectionSize)
	valid := make([]int, 0, selectionSize)
	for _, idx := range indices {
		if idx < 0 || idx >= len(recipes) {
			continue
		}
		if _, ok := seen[idx]; ok {
			continue
		}
		seen[idx] = struct{}{}
		valid = append(valid, idx)
		if len(valid) == selectionSize {
			break
		}
	}

	// 不足額時從剩餘候選隨機補滿
	if len(valid) < selectionSize {
		remaining := make([]int, 0, len(recipes)-len(valid))
		for i := range recipes {
			if _, ok := seen[i]; !ok {
				remaining = append(remaining, i)
			}
		}
		rand.Shuffle(len(remaining), func(i, j int) {
			remaining[i], remaining[j] = remaining[j], remaining[i]
		})
		valid = append(valid, remaining[:selectionSize-len(valid)]...)
	}

	out := make([]catalog.Recipe, 0, len(valid))
	for _, idx := range valid {
		out = append(out, recipes[idx])
	}
	return out
}

// pickIndices 請 completion 服務依多樣性策略挑選索引
func (s *Selector) pickIndices(ctx context.Context, recipes []catalog.Recipe, prefs []string) ([]int, error) {
	var sb strings.Builder
	for i, r := range recipes {
		fmt.Fprintf(&sb, "%d. %s (cuisine: %s, dish: %s)\n",
			i, r.Label,
			strings.Join(r.CuisineType, "/"),
			strings.Join(r.DishType, "/"),
		)
	}

	prompt := fmt.Sprintf(`You are selecting recipes to show a household from the candidate list below.

Household preferences: %s

Candidates (index. name):
%s
Pick exactly %d indices with a diverse mix: about 70%% should match the household's usual tastes, about 30%% should encourage trying something new (different cuisines or dish types). Avoid near-duplicates of the same dish.

Respond with ONLY a JSON array of integers, e.g. [0,3,7]`,
		strings.Join(prefs, ", "),
		sb.String(),
		selectionSize)

	raw, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var indices []int
	if err := common.DecodeCompletionJSON(raw, &indices); err != nil {
		return nil, err
	}
	return indices, nil
}
