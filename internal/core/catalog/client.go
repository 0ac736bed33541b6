package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// validHealthLabels 目錄接受的 health 標籤白名單
var validHealthLabels = map[string]struct{}{
	"vegan": {}, "vegetarian": {}, "paleo": {}, "dairy-free": {},
	"gluten-free": {}, "wheat-free": {}, "egg-free": {}, "peanut-free": {},
	"tree-nut-free": {}, "soy-free": {}, "fish-free": {}, "shellfish-free": {},
	"pork-free": {}, "red-meat-free": {}, "crustacean-free": {}, "celery-free": {},
	"mustard-free": {}, "sesame-free": {}, "lupine-free": {}, "mollusk-free": {},
	"alcohol-free": {}, "kosher": {},
}

// Client 食譜目錄客戶端
type Client struct {
	config *config.Config
	client *resty.Client
}

// NewClient 創建目錄客戶端
func NewClient(cfg *config.Config) *Client {
	client := resty.New().
		SetBaseURL(cfg.Catalog.BaseURL).
		SetTimeout(cfg.Catalog.Timeout)

	return &Client{
		config: cfg,
		client: client,
	}
}

// searchResponse 目錄搜尋回應
type searchResponse struct {
	Hits []struct {
		Recipe Recipe `json:"recipe"`
	} `json:"hits"`
}

// Search 依結構化參數搜尋食譜
// 上游錯誤直接回報為 curation 失敗，引擎內不重試；
// 零筆命中是成功（回傳空切片），由呼叫端決定如何呈現
func (c *Client) Search(ctx context.Context, params SearchParameters, maxResults int) ([]Recipe, error) {
	if maxResults <= 0 {
		maxResults = c.config.Catalog.MaxResults
	}

	values := c.buildQuery(params, maxResults)

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(values).
		Get("")

	if err != nil {
		return nil, common.WrapError(common.ErrUpstreamFailure, fmt.Errorf("catalog request failed: %w", err))
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		common.LogError("目錄回傳錯誤",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", resp.String()),
		)
		return nil, common.WrapError(common.ErrUpstreamFailure,
			fmt.Errorf("catalog returned status %d", resp.StatusCode()))
	}

	var result searchResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, common.WrapError(common.ErrUpstreamFailure, fmt.Errorf("failed to parse catalog response: %w", err))
	}

	recipes := make([]Recipe, 0, len(result.Hits))
	for _, hit := range result.Hits {
		if hit.Recipe.URI == "" {
			continue
		}
		recipes = append(recipes, hit.Recipe)
	}

	common.LogInfo("目錄搜尋完成",
		zap.Int("命中數", len(recipes)),
		zap.String("query", params.Query),
	)

	return recipes, nil
}

// buildQuery 組裝目錄查詢參數
func (c *Client) buildQuery(params SearchParameters, maxResults int) url.Values {
	values := url.Values{}
	values.Set("type", "public")
	values.Set("app_id", c.config.Catalog.AppID)
	values.Set("app_key", c.config.Catalog.AppKey)
	values.Set("to", strconv.Itoa(maxResults))

	// health 標籤過濾白名單，無效標籤略過
	validCount := 0
	for _, label := range params.HealthLabels {
		if _, ok := validHealthLabels[strings.ToLower(label)]; ok {
			values.Add("health", strings.ToLower(label))
			validCount++
		} else {
			common.LogWarn("略過無效的 health 標籤", zap.String("label", label))
		}
	}

	for _, label := range params.DietLabels {
		values.Add("diet", strings.ToLower(label))
	}

	for _, ingredient := range params.Excluded {
		values.Add("excluded", ingredient)
	}

	if params.CuisineType != "" {
		values.Add("cuisineType", params.CuisineType)
	}
	if params.MealType != "" {
		values.Add("mealType", params.MealType)
	}
	if params.DishType != "" {
		values.Add("dishType", params.DishType)
	}
	if params.IngredientCount != "" {
		values.Set("ingr", params.IngredientCount)
	}
	if params.Time != "" {
		values.Set("time", params.Time)
	}

	// 目錄通常需要 q 參數才會回傳結果
	switch {
	case params.Query != "":
		values.Set("q", params.Query)
	case len(params.HealthLabels) > 0 && validCount == 0:
		values.Set("q", "dinner")
	default:
		values.Set("q", "recipe")
	}

	return values
}
