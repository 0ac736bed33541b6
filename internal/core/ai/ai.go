package ai

import "context"

// Completer 定義 completion 服務介面
// 回傳的文字「預期」可解析為 JSON（可能包在 markdown 圍欄內），
// 呼叫端必須自行處理解析失敗，不可假設輸出合法
type Completer interface {
	// Complete 送出 prompt，回傳模型輸出的原始文字
	Complete(ctx context.Context, prompt string) (string, error)
}
