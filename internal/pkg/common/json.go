package common

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseError 表示 completion 服務輸出無法解析為預期 JSON
type ParseError struct {
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed completion output: %s", e.Reason)
}

// IsParseError 檢查是否為解析錯誤
func IsParseError(err error) bool {
	_, ok := err.(*ParseError)
	return ok
}

// StripJSONFences 去除 completion 輸出外層的 markdown 圍欄
// 處理 ```json ... ``` 與 ``` ... ```，再擷取第一個 { 到最後一個 }
//（或第一個 [ 到最後一個 ]），確保只留下 JSON 本體
func StripJSONFences(raw string) string {
	txt := strings.TrimSpace(raw)
	txt = strings.TrimPrefix(txt, "```json")
	txt = strings.TrimPrefix(txt, "```")
	txt = strings.TrimSuffix(txt, "```")
	txt = strings.TrimSpace(txt)

	objStart, objEnd := strings.Index(txt, "{"), strings.LastIndex(txt, "}")
	arrStart, arrEnd := strings.Index(txt, "["), strings.LastIndex(txt, "]")

	// 以先出現者為準：物件或陣列
	switch {
	case objStart != -1 && (arrStart == -1 || objStart < arrStart):
		if objEnd > objStart {
			return txt[objStart : objEnd+1]
		}
	case arrStart != -1:
		if arrEnd > arrStart {
			return txt[arrStart : arrEnd+1]
		}
	}
	return txt
}

// DecodeCompletionJSON 將 completion 輸出解析到結構體
// 所有呼叫端都必須處理解析失敗（*ParseError），不可假設輸出一定合法
func DecodeCompletionJSON(raw string, v interface{}) error {
	txt := StripJSONFences(raw)
	if txt == "" {
		return &ParseError{Reason: "empty output", Raw: raw}
	}
	if err := json.Unmarshal([]byte(txt), v); err != nil {
		// 再試一次：補齊未加引號的鍵
		if err2 := json.Unmarshal([]byte(QuoteJSONKeys(txt)), v); err2 == nil {
			return nil
		}
		return &ParseError{Reason: err.Error(), Raw: raw}
	}
	return nil
}

var unquotedKeyPattern = regexp.MustCompile(`([{\[,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)

// QuoteJSONKeys 將未加雙引號的鍵補上雙引號
func QuoteJSONKeys(raw string) string {
	return unquotedKeyPattern.ReplaceAllString(raw, `$1"$2":`)
}

// ToJSON 將結構體轉換為 JSON 字符串
func ToJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
