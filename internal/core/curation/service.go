package curation

import (
	"context"

	"meal-planner/internal/core/catalog"
	"meal-planner/internal/core/session"
	"meal-planner/internal/core/user"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// Searcher 食譜目錄搜尋介面
type Searcher interface {
	Search(ctx context.Context, params catalog.SearchParameters, maxResults int) ([]catalog.Recipe, error)
}

// SearchPlanner 搜尋參數規劃介面
type SearchPlanner interface {
	Plan(ctx context.Context, prefs *user.MergedPreferences, userMessage string) catalog.SearchParameters
}

// PreferenceMerger 多用戶偏好合併介面
type PreferenceMerger interface {
	MergePreferences(userIDs []int) *user.MergedPreferences
}

// Service 食譜搜尋與對話精修的協調層
// 串起偏好合併、參數規劃、目錄搜尋、多樣性挑選與會話狀態
type Service struct {
	merger     PreferenceMerger
	planner    SearchPlanner
	searcher   Searcher
	selector   *Selector
	classifier *IntentClassifier
	sessions   session.Repository
	maxResults int
}

// NewService 創建協調服務
func NewService(merger PreferenceMerger, planner SearchPlanner, searcher Searcher,
	selector *Selector, classifier *IntentClassifier, sessions session.Repository, maxResults int) *Service {
	return &Service{
		merger:     merger,
		planner:    planner,
		searcher:   searcher,
		selector:   selector,
		classifier: classifier,
		sessions:   sessions,
		maxResults: maxResults,
	}
}

// SearchResult 一次搜尋的結果
type SearchResult struct {
	SessionID       string           `json:"session_id"`
	SelectedRecipes []catalog.Recipe `json:"selected_recipes"`
	TotalCandidates int              `json:"total_candidates"`
}

// ChatResult 一輪對話的結果
type ChatResult struct {
	Response        string           `json:"response"`
	Intent          string           `json:"intent"`
	SelectedRecipes []catalog.Recipe `json:"selected_recipes"`
	RecipesChanged  bool             `json:"recipes_changed"`
}

// StartSearch 依多位用戶的合併偏好發起一次搜尋並建立會話
// 目錄回傳零筆是正常結果（NO_MATCHING_RECIPES），
// 與目錄服務本身故障（UPSTREAM_FAILURE）是不同的錯誤
func (s *Service) StartSearch(ctx context.Context, userIDs []int, message string) (*SearchResult, error) {
	prefs := s.merger.MergePreferences(userIDs)
	params := s.planner.Plan(ctx, prefs, message)

	recipes, err := s.searcher.Search(ctx, params, s.maxResults)
	if err != nil {
		return nil, err
	}
	if len(recipes) == 0 {
		return nil, common.ErrNoMatchingRecipes
	}

	selected := s.selector.SelectDiverse(ctx, recipes, prefs.DietLabels)
	sessionID := s.sessions.Create(userIDs, prefs, recipes, selected)

	common.LogInfo("搜尋完成",
		zap.String("session_id", sessionID),
		zap.Int("candidates", len(recipes)),
		zap.Int("selected", len(selected)),
	)

	return &SearchResult{
		SessionID:       sessionID,
		SelectedRecipes: selected,
		TotalCandidates: len(recipes),
	}, nil
}

// GetAllRecipes 取得會話中的全部候選食譜
func (s *Service) GetAllRecipes(sessionID string) ([]catalog.Recipe, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.AllRecipes, nil
}

// Chat 處理會話中的一則用戶訊息
// 依意圖走三條路：question 只回答、filter 縮小已選清單、
// change_recipes 帶新限制重新搜尋後整批替換
func (s *Service) Chat(ctx context.Context, sessionID, message string) (*ChatResult, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	intent := s.classifier.Classify(ctx, sess, message)

	var result *ChatResult
	switch intent.Type {
	case IntentFilter:
		result = s.applyFilter(sess, intent)
	case IntentChangeRecipes:
		result = s.changeRecipes(ctx, sess, intent, message)
	default:
		result = &ChatResult{
			Response:        intent.Response,
			Intent:          IntentQuestion,
			SelectedRecipes: sess.SelectedRecipes,
		}
	}

	if err := s.sessions.AppendChat(sessionID, message, result.Response); err != nil {
		return nil, err
	}
	return result, nil
}

// applyFilter 依索引縮小已選清單
// 越界索引直接忽略；過濾結果為空時清單維持不變
func (s *Service) applyFilter(sess *session.Session, intent Intent) *ChatResult {
	seen := make(map[int]struct{}, len(intent.Indices))
	filtered := make([]catalog.Recipe, 0, len(intent.Indices))
	for _, idx := range intent.Indices {
		if idx < 0 || idx >= len(sess.SelectedRecipes) {
			continue
		}
		if _, ok := seen[idx]; ok {
			continue
		}
		seen[idx] = struct{}{}
		filtered = append(filtered, sess.SelectedRecipes[idx])
	}

	if len(filtered) == 0 {
		return &ChatResult{
			Response:        intent.Response,
			Intent:          IntentFilter,
			SelectedRecipes: sess.SelectedRecipes,
		}
	}

	if err := s.sessions.UpdateSelected(sess.ID, filtered); err != nil {
		common.LogError("過濾後更新會話失敗", zap.Error(err), zap.String("session_id", sess.ID))
		return &ChatResult{
			Response:        fallbackResponse,
			Intent:          IntentQuestion,
			SelectedRecipes: sess.SelectedRecipes,
		}
	}

	return &ChatResult{
		Response:        intent.Response,
		Intent:          IntentFilter,
		SelectedRecipes: filtered,
		RecipesChanged:  true,
	}
}

// changeRecipes 帶新限制重新搜尋
// 排除食材採聯集只增不減；飲食標籤有給才整批取代。
// 重新搜尋失敗或零筆時保留既有清單，偏好的變更仍然生效
func (s *Service) changeRecipes(ctx context.Context, sess *session.Session, intent Intent, message string) *ChatResult {
	prefs := sess.MergedPreferences
	if prefs == nil {
		prefs = &user.MergedPreferences{UserIDs: sess.UserIDs}
	}
	if len(intent.Exclusions) > 0 {
		var normalized []string
		for _, e := range intent.Exclusions {
			if name := common.CanonicalName(e); name != "" {
				normalized = append(normalized, name)
			}
		}
		prefs.Excluded = common.UniqueStrings(append(prefs.Excluded, normalized...))
	}
	if len(intent.DietLabels) > 0 {
		prefs.DietLabels = common.UniqueStrings(intent.DietLabels)
	}
	if err := s.sessions.UpdatePreferences(sess.ID, prefs); err != nil {
		common.LogError("更新會話偏好失敗", zap.Error(err), zap.String("session_id", sess.ID))
	}

	params := s.planner.Plan(ctx, prefs, message)
	recipes, err := s.searcher.Search(ctx, params, s.maxResults)
	if err != nil || len(recipes) == 0 {
		if err != nil {
			common.LogWarn("重新搜尋失敗，保留既有清單",
				zap.Error(err), zap.String("session_id", sess.ID))
		}
		return &ChatResult{
			Response:        "目前找不到符合新條件的食譜，先保留原本的清單。",
			Intent:          IntentChangeRecipes,
			SelectedRecipes: sess.SelectedRecipes,
		}
	}

	selected := s.selector.SelectDiverse(ctx, recipes, prefs.DietLabels)
	if err := s.sessions.ReplaceRecipes(sess.ID, recipes, selected); err != nil {
		common.LogError("替換會話食譜失敗", zap.Error(err), zap.String("session_id", sess.ID))
		return &ChatResult{
			Response:        fallbackResponse,
			Intent:          IntentQuestion,
			SelectedRecipes: sess.SelectedRecipes,
		}
	}

	return &ChatResult{
		Response:        intent.Response,
		Intent:          IntentChangeRecipes,
		SelectedRecipes: selected,
		RecipesChanged:  true,
	}
}
