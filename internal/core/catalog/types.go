package catalog

// Recipe 目錄回傳的食譜記錄，引擎只引用不修改
type Recipe struct {
	URI             string   `json:"uri"`
	Label           string   `json:"label"`
	Image           string   `json:"image"`
	Source          string   `json:"source"`
	URL             string   `json:"url"`
	Yield           float64  `json:"yield"`
	IngredientLines []string `json:"ingredientLines"`
	Calories        float64  `json:"calories"`
	TotalTime       float64  `json:"totalTime"`
	CuisineType     []string `json:"cuisineType"`
	MealType        []string `json:"mealType"`
	DishType        []string `json:"dishType"`
	HealthLabels    []string `json:"healthLabels"`
}

// SearchParameters 結構化搜尋參數，只填有值的欄位
// 欄位缺席代表「沒有限制」，不是「空限制」
type SearchParameters struct {
	Query           string   `json:"query,omitempty"`
	HealthLabels    []string `json:"health_labels,omitempty"`
	Excluded        []string `json:"excluded_ingredients,omitempty"`
	CuisineType     string   `json:"cuisine_type,omitempty"`
	MealType        string   `json:"meal_type,omitempty"`
	DishType        string   `json:"dish_type,omitempty"`
	DietLabels      []string `json:"diet_labels,omitempty"`
	IngredientCount string   `json:"ingredient_count,omitempty"` // 範圍，如 "5-8"
	Time            string   `json:"time,omitempty"`             // 分鐘範圍，如 "1-30"
}
