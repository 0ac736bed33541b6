package shopping

import (
	"context"
	"path/filepath"
	"testing"

	"meal-planner/internal/core/catalog"
	"meal-planner/internal/core/session"
	"meal-planner/internal/core/user"
	"meal-planner/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 解析器固定回覆，讓彙總結果可預期
const cannedParse = `[{"name":"onion","quantity":2,"unit":"cup"},{"name":"garlic","quantity":3,"unit":"clove"}]`

func newTestShoppingService(t *testing.T, completer *fakeCompleter) (*Service, *user.Store, session.Repository, int) {
	t.Helper()
	users, err := user.NewStore(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, err)
	u, err := users.CreateUser("Alice", "alice@example.com", nil, nil)
	require.NoError(t, err)

	sessions := session.NewMemoryStore()
	return NewService(users, sessions, NewParser(completer)), users, sessions, u.ID
}

func testRecipe(uri, label string, lines ...string) catalog.Recipe {
	return catalog.Recipe{URI: uri, Label: label, IngredientLines: lines}
}

func TestAddRecipeFromSessionAndIncrementCount(t *testing.T) {
	svc, users, sessions, userID := newTestShoppingService(t, &fakeCompleter{response: cannedParse})
	r := testRecipe("recipe-1", "Onion Soup", "2 cups onion", "3 cloves garlic")
	id := sessions.Create([]int{userID}, nil, []catalog.Recipe{r}, []catalog.Recipe{r})

	require.NoError(t, svc.AddRecipe(userID, id, "recipe-1"))
	require.NoError(t, svc.AddRecipe(userID, id, "recipe-1"))

	list, err := users.GetShoppingList(userID)
	require.NoError(t, err)
	require.Len(t, list.Recipes, 1)
	assert.Equal(t, 2, list.Recipes[0].Count)
	assert.Equal(t, "Onion Soup", list.Recipes[0].Recipe.Label)
	assert.NotEmpty(t, list.Recipes[0].DateAdded)
}

func TestAddRecipeNotInSession(t *testing.T) {
	svc, _, sessions, userID := newTestShoppingService(t, &fakeCompleter{})
	id := sessions.Create([]int{userID}, nil, nil, nil)

	err := svc.AddRecipe(userID, id, "recipe-404")

	var customErr *common.CustomError
	require.ErrorAs(t, err, &customErr)
	assert.Equal(t, common.ErrCodeRecipeNotFound, customErr.Code)
}

func TestAggregateScalesByCountAndMergesManualItems(t *testing.T) {
	svc, _, sessions, userID := newTestShoppingService(t, &fakeCompleter{response: cannedParse})
	r := testRecipe("recipe-1", "Onion Soup", "2 cups onion", "3 cloves garlic")
	id := sessions.Create([]int{userID}, nil, []catalog.Recipe{r}, []catalog.Recipe{r})
	require.NoError(t, svc.AddRecipe(userID, id, "recipe-1"))
	require.NoError(t, svc.AddRecipe(userID, id, "recipe-1")) // 份數 ×2
	require.NoError(t, svc.AddManualItem(userID, "Onion", 1, "cup"))

	got, err := svc.Aggregate(context.Background(), userID)
	require.NoError(t, err)

	require.Len(t, got.Items, 2) // 依名稱排序：garlic, onion
	garlic, onion := got.Items[0], got.Items[1]

	assert.Equal(t, "garlic", garlic.Name)
	assert.Equal(t, 6.0, garlic.TotalQuantity) // 3 × 2 份
	require.Len(t, garlic.Sources, 1)
	assert.Equal(t, RecipeSource{RecipeName: "Onion Soup", Quantity: 3, Count: 2}, garlic.Sources[0])

	assert.Equal(t, "onion", onion.Name)
	assert.Equal(t, 5.0, onion.TotalQuantity) // 2 × 2 份 + 手動 1

	require.Len(t, got.RecipeSummaries, 1)
	assert.Equal(t, RecipeSummary{RecipeURI: "recipe-1", Name: "Onion Soup", Count: 2}, got.RecipeSummaries[0])
}

func TestAggregateIsIdempotent(t *testing.T) {
	svc, _, sessions, userID := newTestShoppingService(t, &fakeCompleter{response: cannedParse})
	r := testRecipe("recipe-1", "Onion Soup", "2 cups onion", "3 cloves garlic")
	id := sessions.Create([]int{userID}, nil, []catalog.Recipe{r}, []catalog.Recipe{r})
	require.NoError(t, svc.AddRecipe(userID, id, "recipe-1"))

	first, err := svc.Aggregate(context.Background(), userID)
	require.NoError(t, err)
	second, err := svc.Aggregate(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, first, second, "無中間變更時兩次彙總必須完全相同")
}

func TestDeleteItemBlocksReappearance(t *testing.T) {
	svc, _, sessions, userID := newTestShoppingService(t, &fakeCompleter{response: cannedParse})
	r := testRecipe("recipe-1", "Onion Soup", "2 cups onion", "3 cloves garlic")
	id := sessions.Create([]int{userID}, nil, []catalog.Recipe{r}, []catalog.Recipe{r})
	require.NoError(t, svc.AddRecipe(userID, id, "recipe-1"))

	require.NoError(t, svc.DeleteItem(userID, "Garlic"))

	// 食譜仍掛載且食材仍解析出 garlic，但不得再出現
	got, err := svc.Aggregate(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "onion", got.Items[0].Name)

	got2, err := svc.Aggregate(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, got2.Items, 1)
}

func TestAddManualItemUnblocksRemovedName(t *testing.T) {
	svc, _, _, userID := newTestShoppingService(t, &fakeCompleter{response: `[]`})
	require.NoError(t, svc.AddManualItem(userID, "garlic", 2, "clove"))
	require.NoError(t, svc.DeleteItem(userID, "garlic"))
	require.NoError(t, svc.AddManualItem(userID, "garlic", 1, "clove"))

	got, err := svc.Aggregate(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "garlic", got.Items[0].Name)
	assert.Equal(t, 1.0, got.Items[0].TotalQuantity)
}

func TestToggleCheckedReflectedInAggregation(t *testing.T) {
	svc, _, _, userID := newTestShoppingService(t, &fakeCompleter{response: `[]`})
	require.NoError(t, svc.AddManualItem(userID, "milk", 1, "l"))

	checked, err := svc.ToggleChecked(userID, "Milk")
	require.NoError(t, err)
	assert.True(t, checked)

	got, err := svc.Aggregate(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].Checked)

	checked, err = svc.ToggleChecked(userID, "milk")
	require.NoError(t, err)
	assert.False(t, checked)
}

func TestMoveCheckedToPantry(t *testing.T) {
	svc, users, _, userID := newTestShoppingService(t, &fakeCompleter{response: `[]`})
	require.NoError(t, svc.AddManualItem(userID, "milk", 1, "l"))
	require.NoError(t, svc.AddManualItem(userID, "eggs", 12, "item"))
	_, err := svc.ToggleChecked(userID, "milk")
	require.NoError(t, err)

	moved, err := svc.MoveCheckedToPantry(userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"milk"}, moved)

	fridge, err := users.GetFridge(userID)
	require.NoError(t, err)
	assert.Contains(t, fridge, "milk")

	got, err := svc.Aggregate(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1, "移入冰箱後不再出現在清單")
	assert.Equal(t, "eggs", got.Items[0].Name)
}

func TestRemoveRecipe(t *testing.T) {
	svc, _, sessions, userID := newTestShoppingService(t, &fakeCompleter{response: cannedParse})
	r := testRecipe("recipe-1", "Onion Soup", "2 cups onion")
	id := sessions.Create([]int{userID}, nil, []catalog.Recipe{r}, []catalog.Recipe{r})
	require.NoError(t, svc.AddRecipe(userID, id, "recipe-1"))

	require.NoError(t, svc.RemoveRecipe(userID, "recipe-1"))

	got, err := svc.Aggregate(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
	assert.Empty(t, got.RecipeSummaries)

	err = svc.RemoveRecipe(userID, "recipe-1")
	var customErr *common.CustomError
	require.ErrorAs(t, err, &customErr)
	assert.Equal(t, common.ErrCodeRecipeNotFound, customErr.Code)
}

func TestClear(t *testing.T) {
	svc, _, _, userID := newTestShoppingService(t, &fakeCompleter{response: `[]`})
	require.NoError(t, svc.AddManualItem(userID, "milk", 1, "l"))
	_, err := svc.ToggleChecked(userID, "milk")
	require.NoError(t, err)

	require.NoError(t, svc.Clear(userID))

	got, err := svc.Aggregate(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}
