package shopping

import (
	"context"
	"sort"
	"time"

	"meal-planner/internal/core/session"
	"meal-planner/internal/core/user"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// RecipeSource 彙總項目的來源追溯：哪道食譜貢獻了多少
type RecipeSource struct {
	RecipeName string  `json:"recipe_name"`
	Quantity   float64 `json:"quantity"` // 單份食譜的解析數量
	Count      int     `json:"count"`    // 該食譜的掛載份數
}

// CombinedItem 彙總後的一列購物項目
// 不變式：TotalQuantity 等於各來源貢獻（解析數量 × 份數）
// 加上同名手動項目數量的總和
type CombinedItem struct {
	Name          string         `json:"name"`
	TotalQuantity float64        `json:"total_quantity"`
	Unit          string         `json:"unit"`
	Checked       bool           `json:"checked"`
	PricePerUnit  float64        `json:"price_per_unit"`
	TotalPrice    float64        `json:"total_price"`
	Sources       []RecipeSource `json:"recipe_sources"`
}

// RecipeSummary 清單上掛載食譜的摘要
type RecipeSummary struct {
	RecipeURI string `json:"recipe_uri"`
	Name      string `json:"name"`
	Count     int    `json:"count"`
}

// AggregatedList 彙總後的完整購物清單
type AggregatedList struct {
	Items           []CombinedItem  `json:"items"`
	TotalCost       float64         `json:"total_cost"`
	RecipeSummaries []RecipeSummary `json:"recipe_summaries"`
}

// Service 購物清單服務
// 持久化狀態存在用戶資料中；彙總視圖每次讀取時整批重算，
// 不做增量維護，避免計數漂移
type Service struct {
	users    *user.Store
	sessions session.Repository
	parser   *Parser
}

// NewService 創建購物清單服務
func NewService(users *user.Store, sessions session.Repository, parser *Parser) *Service {
	return &Service{users: users, sessions: sessions, parser: parser}
}

// AddRecipe 把會話中的食譜掛載到用戶購物清單
// 已掛載的食譜份數加一
func (s *Service) AddRecipe(userID int, sessionID, recipeURI string) error {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return err
	}

	foundIdx := -1
	for i := range sess.AllRecipes {
		if sess.AllRecipes[i].URI == recipeURI {
			foundIdx = i
			break
		}
	}
	if foundIdx < 0 {
		return common.ErrRecipeNotFound
	}

	list, err := s.users.GetShoppingList(userID)
	if err != nil {
		return err
	}

	for i := range list.Recipes {
		if list.Recipes[i].RecipeURI == recipeURI {
			list.Recipes[i].Count++
			return s.users.SaveShoppingList(userID, list)
		}
	}

	list.Recipes = append(list.Recipes, user.SavedRecipe{
		RecipeURI: recipeURI,
		Recipe:    sess.AllRecipes[foundIdx],
		Count:     1,
		DateAdded: time.Now().Format(time.RFC3339),
	})
	return s.users.SaveShoppingList(userID, list)
}

// RemoveRecipe 從購物清單移除整道食譜
func (s *Service) RemoveRecipe(userID int, recipeURI string) error {
	list, err := s.users.GetShoppingList(userID)
	if err != nil {
		return err
	}

	for i := range list.Recipes {
		if list.Recipes[i].RecipeURI == recipeURI {
			list.Recipes = append(list.Recipes[:i], list.Recipes[i+1:]...)
			return s.users.SaveShoppingList(userID, list)
		}
	}
	return common.ErrRecipeNotFound
}

// AddManualItem 手動加入一個購物項目
// 同名項目若曾被移除，視為重新加入，解除封鎖
func (s *Service) AddManualItem(userID int, name string, quantity float64, unit string) error {
	canonical := common.CanonicalName(name)
	if canonical == "" {
		return common.ErrInvalidRequest
	}
	if quantity <= 0 {
		quantity = 1
	}
	if unit == "" {
		unit = "item"
	}

	list, err := s.users.GetShoppingList(userID)
	if err != nil {
		return err
	}

	list.ManualItems = append(list.ManualItems, user.ManualItem{
		Name:     canonical,
		Quantity: quantity,
		Unit:     unit,
	})
	list.RemovedItems = removeName(list.RemovedItems, canonical)
	return s.users.SaveShoppingList(userID, list)
}

// DeleteItem 依名稱刪除彙總項目
// 名稱進入移除集合後，即使掛載食譜的食材仍解析出同名，
// 該項目也不會再出現在彙總結果
func (s *Service) DeleteItem(userID int, name string) error {
	canonical := common.CanonicalName(name)
	if canonical == "" {
		return common.ErrInvalidRequest
	}

	list, err := s.users.GetShoppingList(userID)
	if err != nil {
		return err
	}

	var manual []user.ManualItem
	for _, m := range list.ManualItems {
		if common.CanonicalName(m.Name) != canonical {
			manual = append(manual, m)
		}
	}
	list.ManualItems = manual
	list.CheckedItems = removeName(list.CheckedItems, canonical)
	if !containsName(list.RemovedItems, canonical) {
		list.RemovedItems = append(list.RemovedItems, canonical)
	}
	return s.users.SaveShoppingList(userID, list)
}

// ToggleChecked 切換項目的勾選狀態
func (s *Service) ToggleChecked(userID int, name string) (bool, error) {
	canonical := common.CanonicalName(name)
	if canonical == "" {
		return false, common.ErrInvalidRequest
	}

	list, err := s.users.GetShoppingList(userID)
	if err != nil {
		return false, err
	}

	checked := true
	if containsName(list.CheckedItems, canonical) {
		list.CheckedItems = removeName(list.CheckedItems, canonical)
		checked = false
	} else {
		list.CheckedItems = append(list.CheckedItems, canonical)
	}
	return checked, s.users.SaveShoppingList(userID, list)
}

// Clear 清空整份購物清單
func (s *Service) Clear(userID int) error {
	return s.users.SaveShoppingList(userID, &user.ShoppingListData{})
}

// MoveCheckedToPantry 把已勾選（已購買）的項目移入用戶冰箱
// 移入後項目進入移除集合，不再出現在購物清單
func (s *Service) MoveCheckedToPantry(userID int) ([]string, error) {
	list, err := s.users.GetShoppingList(userID)
	if err != nil {
		return nil, err
	}
	if len(list.CheckedItems) == 0 {
		return nil, nil
	}

	moved := append([]string(nil), list.CheckedItems...)
	sort.Strings(moved)
	if err := s.users.AppendFridge(userID, moved); err != nil {
		return nil, err
	}

	for _, name := range moved {
		if !containsName(list.RemovedItems, name) {
			list.RemovedItems = append(list.RemovedItems, name)
		}
	}
	list.CheckedItems = nil
	if err := s.users.SaveShoppingList(userID, list); err != nil {
		return nil, err
	}

	common.LogInfo("已勾選項目移入冰箱",
		zap.Int("user_id", userID),
		zap.Int("items", len(moved)),
	)
	return moved, nil
}

// GetListState 取得持久化的購物清單原始狀態
func (s *Service) GetListState(userID int) (*user.ShoppingListData, error) {
	return s.users.GetShoppingList(userID)
}

// Aggregate 整批重算用戶的彙總購物清單
// 讀取端冪等：沒有中間變更時，連續兩次呼叫結果完全相同
// （解析走快取，輸出依名稱排序）。彙總本身無副作用
func (s *Service) Aggregate(ctx context.Context, userID int) (*AggregatedList, error) {
	list, err := s.users.GetShoppingList(userID)
	if err != nil {
		return nil, err
	}

	removed := make(map[string]struct{}, len(list.RemovedItems))
	for _, name := range list.RemovedItems {
		removed[common.CanonicalName(name)] = struct{}{}
	}
	checked := make(map[string]struct{}, len(list.CheckedItems))
	for _, name := range list.CheckedItems {
		checked[common.CanonicalName(name)] = struct{}{}
	}

	items := make(map[string]*CombinedItem)

	// 先折入掛載食譜的食材行，依份數放大
	for _, saved := range list.Recipes {
		parsed := s.parser.ParseLines(ctx, saved.Recipe.IngredientLines)
		for _, ing := range parsed {
			if _, gone := removed[ing.Name]; gone {
				continue
			}
			item, ok := items[ing.Name]
			if !ok {
				item = &CombinedItem{Name: ing.Name, Unit: ing.Unit}
				items[ing.Name] = item
			}
			item.TotalQuantity += ing.Quantity * float64(saved.Count)
			item.Sources = append(item.Sources, RecipeSource{
				RecipeName: saved.Recipe.Label,
				Quantity:   ing.Quantity,
				Count:      saved.Count,
			})
		}
	}

	// 再折入手動項目
	for _, m := range list.ManualItems {
		name := common.CanonicalName(m.Name)
		if _, gone := removed[name]; gone {
			continue
		}
		item, ok := items[name]
		if !ok {
			item = &CombinedItem{Name: name, Unit: m.Unit}
			items[name] = item
		}
		item.TotalQuantity += m.Quantity
	}

	// 價格查詢不在此層，單價為零，欄位保留給上游填入
	out := &AggregatedList{Items: make([]CombinedItem, 0, len(items))}
	for _, item := range items {
		if _, ok := checked[item.Name]; ok {
			item.Checked = true
		}
		item.TotalPrice = item.TotalQuantity * item.PricePerUnit
		out.TotalCost += item.TotalPrice
		out.Items = append(out.Items, *item)
	}
	sort.Slice(out.Items, func(i, j int) bool {
		return out.Items[i].Name < out.Items[j].Name
	})

	for _, saved := range list.Recipes {
		out.RecipeSummaries = append(out.RecipeSummaries, RecipeSummary{
			RecipeURI: saved.RecipeURI,
			Name:      saved.Recipe.Label,
			Count:     saved.Count,
		})
	}
	return out, nil
}

func removeName(names []string, target string) []string {
	out := names[:0]
	for _, n := range names {
		if common.CanonicalName(n) != target {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func containsName(names []string, target string) bool {
	for _, n := range names {
		if common.CanonicalName(n) == target {
			return true
		}
	}
	return false
}
