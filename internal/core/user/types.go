package user

import "meal-planner/internal/core/catalog"

// User 用戶記錄
type User struct {
	ID                int              `json:"id"`
	Name              string           `json:"name"`
	Email             string           `json:"email"`
	Family            []int            `json:"family"`
	DietLabels        []string         `json:"dietLabels"`
	Excluded          []string         `json:"excludedIngredients"`
	CustomPreferences []string         `json:"customPreferences"`
	Fridge            []string         `json:"fridge"`
	ShoppingList      ShoppingListData `json:"shopping_list"`
}

// FamilyMember 家庭成員摘要
type FamilyMember struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MergedPreferences 多位用戶合併後的飲食偏好
// 一律由當前用戶記錄即時重算，不獨立維護生命週期
type MergedPreferences struct {
	UserIDs           []int    `json:"user_ids"`
	DietLabels        []string `json:"diet_labels"`
	Excluded          []string `json:"excluded_ingredients"`
	FridgeItems       []string `json:"fridge_items"`
	CustomPreferences []string `json:"custom_preferences"`
}

// ShoppingListData 用戶購物清單的持久化狀態
// 三部分：掛載的食譜、手動項目、兩個名稱集合（已勾選、已移除）
type ShoppingListData struct {
	Recipes      []SavedRecipe `json:"recipes"`
	ManualItems  []ManualItem  `json:"manual_items"`
	CheckedItems []string      `json:"checked_items"`
	RemovedItems []string      `json:"removed_items"`
}

// SavedRecipe 掛載到購物清單的食譜
type SavedRecipe struct {
	RecipeURI string         `json:"recipe_uri"`
	Recipe    catalog.Recipe `json:"recipe_data"`
	Count     int            `json:"count"`
	DateAdded string         `json:"date_added"`
}

// ManualItem 手動加入的購物項目
type ManualItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// usersDatabase users.json 的根結構
type usersDatabase struct {
	Users []User `json:"users"`
}
