package session

import (
	"sync"
	"time"

	"meal-planner/internal/core/catalog"
	"meal-planner/internal/core/user"
	"meal-planner/internal/pkg/common"
)

// ChatTurn 對話訊息，只追加、不修改、不刪除
type ChatTurn struct {
	Role    string `json:"role"` // "user" 或 "assistant"
	Content string `json:"content"`
}

// Session 一次搜尋與後續對話的暫存狀態
// 不變式：SelectedRecipes ⊆ AllRecipes（以 URI 計），
// 重新搜尋時兩者必須一起整批替換
type Session struct {
	ID                string                  `json:"session_id"`
	UserIDs           []int                   `json:"user_ids"`
	MergedPreferences *user.MergedPreferences `json:"merged_preferences"`
	AllRecipes        []catalog.Recipe        `json:"all_recipes"`
	SelectedRecipes   []catalog.Recipe        `json:"selected_recipes"`
	ChatHistory       []ChatTurn              `json:"chat_history"`
	CreatedAt         string                  `json:"created_at"`
}

// Repository 會話存取介面，方便測試注入全新的儲存
type Repository interface {
	Create(userIDs []int, prefs *user.MergedPreferences, all, selected []catalog.Recipe) string
	Get(id string) (*Session, error)
	Exists(id string) bool
	AppendChat(id, userMessage, assistantResponse string) error
	UpdateSelected(id string, selected []catalog.Recipe) error
	ReplaceRecipes(id string, all, selected []catalog.Recipe) error
	UpdatePreferences(id string, prefs *user.MergedPreferences) error
}

// MemoryStore 程序內會話儲存
// 同一個 session id 預期由同一位用戶的對話序列依序操作；
// 兩個並發請求打同一個 id 可能彼此覆蓋，這是已知的設計限制
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore 創建程序內會話儲存
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
	}
}

// Create 建立新會話並回傳會話 ID
func (s *MemoryStore) Create(userIDs []int, prefs *user.MergedPreferences, all, selected []catalog.Recipe) string {
	id := common.GenerateUUID()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = &Session{
		ID:                id,
		UserIDs:           userIDs,
		MergedPreferences: prefs,
		AllRecipes:        all,
		SelectedRecipes:   selected,
		ChatHistory:       []ChatTurn{},
		CreatedAt:         time.Now().Format(time.RFC3339),
	}
	return id
}

// Get 依 ID 取得會話快照
func (s *MemoryStore) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, common.ErrSessionNotFound
	}

	cp := *sess
	cp.AllRecipes = append([]catalog.Recipe(nil), sess.AllRecipes...)
	cp.SelectedRecipes = append([]catalog.Recipe(nil), sess.SelectedRecipes...)
	cp.ChatHistory = append([]ChatTurn(nil), sess.ChatHistory...)
	if sess.MergedPreferences != nil {
		prefs := *sess.MergedPreferences
		cp.MergedPreferences = &prefs
	}
	return &cp, nil
}

// Exists 檢查會話是否存在
func (s *MemoryStore) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[id]
	return ok
}

// AppendChat 追加一組 user/assistant 訊息
func (s *MemoryStore) AppendChat(id, userMessage, assistantResponse string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return common.ErrSessionNotFound
	}
	sess.ChatHistory = append(sess.ChatHistory,
		ChatTurn{Role: "user", Content: userMessage},
		ChatTurn{Role: "assistant", Content: assistantResponse},
	)
	return nil
}

// UpdateSelected 更新已選食譜子集
func (s *MemoryStore) UpdateSelected(id string, selected []catalog.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return common.ErrSessionNotFound
	}
	sess.SelectedRecipes = selected
	return nil
}

// ReplaceRecipes 整批替換候選集與已選集，維持子集合不變式
func (s *MemoryStore) ReplaceRecipes(id string, all, selected []catalog.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return common.ErrSessionNotFound
	}
	sess.AllRecipes = all
	sess.SelectedRecipes = selected
	return nil
}

// UpdatePreferences 更新會話的偏好快照
func (s *MemoryStore) UpdatePreferences(id string, prefs *user.MergedPreferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return common.ErrSessionNotFound
	}
	sess.MergedPreferences = prefs
	return nil
}
