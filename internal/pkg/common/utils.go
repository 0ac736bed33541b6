package common

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// CanonicalName 正規化食材名稱：小寫、去除前後空白
// 作為購物清單合併的唯一鍵，合併時數量相加、來源串接
func CanonicalName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// UniqueStrings 去除重複字串，保留首次出現順序
func UniqueStrings(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
