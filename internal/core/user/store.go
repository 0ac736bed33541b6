package user

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"meal-planner/internal/pkg/common"
)

// Store 平面檔案用戶資料庫
type Store struct {
	path string
	mu   sync.RWMutex
	db   usersDatabase
}

// NewStore 載入用戶資料庫，檔案不存在時建立空資料庫
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.db = usersDatabase{Users: []User{}}
			return s, nil
		}
		return nil, fmt.Errorf("failed to read users database: %w", err)
	}

	if err := json.Unmarshal(data, &s.db); err != nil {
		return nil, fmt.Errorf("failed to parse users database: %w", err)
	}

	return s, nil
}

// saveLocked 寫回資料庫檔案，呼叫前需持有寫鎖
func (s *Store) saveLocked() error {
	data, err := json.MarshalIndent(s.db, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal users database: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write users database: %w", err)
	}
	return nil
}

// GetUser 依 ID 取得用戶
func (s *Store) GetUser(id int) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.db.Users {
		if s.db.Users[i].ID == id {
			u := s.db.Users[i]
			return &u, nil
		}
	}
	return nil, common.ErrUserNotFound
}

// GetUserByEmail 依 email 取得用戶（不分大小寫）
func (s *Store) GetUserByEmail(email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.db.Users {
		if strings.EqualFold(s.db.Users[i].Email, email) {
			u := s.db.Users[i]
			return &u, nil
		}
	}
	return nil, common.ErrUserNotFound
}

// CreateUser 建立新用戶
func (s *Store) CreateUser(name, email string, dietLabels, customPreferences []string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.db.Users {
		if strings.EqualFold(s.db.Users[i].Email, email) {
			return nil, common.WrapError(common.ErrConflict,
				fmt.Errorf("user with email %s already exists", email))
		}
	}

	maxID := 0
	for i := range s.db.Users {
		if s.db.Users[i].ID > maxID {
			maxID = s.db.Users[i].ID
		}
	}

	u := User{
		ID:                maxID + 1,
		Name:              name,
		Email:             email,
		Family:            []int{},
		DietLabels:        dietLabels,
		CustomPreferences: customPreferences,
		Fridge:            []string{},
	}
	if u.DietLabels == nil {
		u.DietLabels = []string{}
	}
	if u.CustomPreferences == nil {
		u.CustomPreferences = []string{}
	}
	u.Excluded = []string{}

	s.db.Users = append(s.db.Users, u)
	if err := s.saveLocked(); err != nil {
		return nil, err
	}
	return &u, nil
}

// UserPatch 用戶更新內容，nil 欄位保持不變
type UserPatch struct {
	Name              *string
	DietLabels        []string
	Excluded          []string
	CustomPreferences []string
	Family            []int
}

// UpdateUser 更新用戶資料
func (s *Store) UpdateUser(id int, patch UserPatch) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.db.Users {
		if s.db.Users[i].ID != id {
			continue
		}
		if patch.Name != nil {
			s.db.Users[i].Name = *patch.Name
		}
		if patch.DietLabels != nil {
			s.db.Users[i].DietLabels = patch.DietLabels
		}
		if patch.Excluded != nil {
			s.db.Users[i].Excluded = patch.Excluded
		}
		if patch.CustomPreferences != nil {
			s.db.Users[i].CustomPreferences = patch.CustomPreferences
		}
		if patch.Family != nil {
			s.db.Users[i].Family = patch.Family
		}
		if err := s.saveLocked(); err != nil {
			return nil, err
		}
		u := s.db.Users[i]
		return &u, nil
	}
	return nil, common.ErrUserNotFound
}

// GetFamilyMembers 取得用戶的家庭成員
func (s *Store) GetFamilyMembers(id int) ([]FamilyMember, error) {
	u, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	members := make([]FamilyMember, 0, len(u.Family))
	for _, fid := range u.Family {
		fu, err := s.GetUser(fid)
		if err != nil {
			continue
		}
		members = append(members, FamilyMember{ID: fu.ID, Name: fu.Name})
	}
	return members, nil
}

// AddFamilyMember 依 email 加入家庭成員
func (s *Store) AddFamilyMember(id int, memberEmail string) ([]FamilyMember, error) {
	member, err := s.GetUserByEmail(memberEmail)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	for i := range s.db.Users {
		if s.db.Users[i].ID != id {
			continue
		}
		if member.ID == id {
			s.mu.Unlock()
			return nil, common.WrapError(common.ErrInvalidRequest,
				fmt.Errorf("cannot add yourself as a family member"))
		}
		for _, fid := range s.db.Users[i].Family {
			if fid == member.ID {
				s.mu.Unlock()
				return nil, common.WrapError(common.ErrConflict,
					fmt.Errorf("%s is already in your family", member.Name))
			}
		}
		s.db.Users[i].Family = append(s.db.Users[i].Family, member.ID)
		if err := s.saveLocked(); err != nil {
			s.mu.Unlock()
			return nil, err
		}
		s.mu.Unlock()
		return s.GetFamilyMembers(id)
	}
	s.mu.Unlock()
	return nil, common.ErrUserNotFound
}

// RemoveFamilyMember 移除家庭成員
func (s *Store) RemoveFamilyMember(id, memberID int) ([]FamilyMember, error) {
	s.mu.Lock()
	for i := range s.db.Users {
		if s.db.Users[i].ID != id {
			continue
		}
		family := s.db.Users[i].Family[:0]
		for _, fid := range s.db.Users[i].Family {
			if fid != memberID {
				family = append(family, fid)
			}
		}
		s.db.Users[i].Family = family
		if err := s.saveLocked(); err != nil {
			s.mu.Unlock()
			return nil, err
		}
		s.mu.Unlock()
		return s.GetFamilyMembers(id)
	}
	s.mu.Unlock()
	return nil, common.ErrUserNotFound
}

// GetFridge 取得用戶冰箱內容
func (s *Store) GetFridge(id int) ([]string, error) {
	u, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}
	return u.Fridge, nil
}

// UpdateFridge 覆寫用戶冰箱內容
func (s *Store) UpdateFridge(id int, items []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.db.Users {
		if s.db.Users[i].ID == id {
			s.db.Users[i].Fridge = items
			if err := s.saveLocked(); err != nil {
				return nil, err
			}
			return items, nil
		}
	}
	return nil, common.ErrUserNotFound
}

// AppendFridge 將項目加入用戶冰箱（購物清單移入用）
func (s *Store) AppendFridge(id int, items []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.db.Users {
		if s.db.Users[i].ID == id {
			s.db.Users[i].Fridge = append(s.db.Users[i].Fridge, items...)
			return s.saveLocked()
		}
	}
	return common.ErrUserNotFound
}

// GetShoppingList 取得用戶購物清單狀態
func (s *Store) GetShoppingList(id int) (*ShoppingListData, error) {
	u, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}
	data := u.ShoppingList
	return &data, nil
}

// SaveShoppingList 寫回用戶購物清單狀態
func (s *Store) SaveShoppingList(id int, data *ShoppingListData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.db.Users {
		if s.db.Users[i].ID == id {
			s.db.Users[i].ShoppingList = *data
			return s.saveLocked()
		}
	}
	return common.ErrUserNotFound
}

// MergePreferences 合併多位用戶的飲食偏好
// 集合聯集、去重，輸出排序後的列表，與輸入順序無關
func (s *Store) MergePreferences(userIDs []int) *MergedPreferences {
	dietLabels := make(map[string]struct{})
	excluded := make(map[string]struct{})
	fridgeItems := make(map[string]struct{})
	customPreferences := make(map[string]struct{})

	for _, id := range userIDs {
		u, err := s.GetUser(id)
		if err != nil {
			continue
		}
		for _, l := range u.DietLabels {
			dietLabels[l] = struct{}{}
		}
		for _, e := range u.Excluded {
			excluded[e] = struct{}{}
		}
		for _, p := range u.CustomPreferences {
			customPreferences[p] = struct{}{}
		}
		for _, f := range u.Fridge {
			fridgeItems[f] = struct{}{}
		}
	}

	return &MergedPreferences{
		UserIDs:           userIDs,
		DietLabels:        sortedKeys(dietLabels),
		Excluded:          sortedKeys(excluded),
		FridgeItems:       sortedKeys(fridgeItems),
		CustomPreferences: sortedKeys(customPreferences),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
