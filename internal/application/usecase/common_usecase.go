// internal/application/usecase/common_usecase.go
package usecase

import "strings"

// 共通ヘルパー: *string をトリムし、空なら nil にする
func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

func ptr[T any](v T) *T { return &v }

// trimKeep は空白を除去するが、空文字でも nil にはしない（検証で弾くため）。
func trimKeep(p *string) *string {
	if p == nil {
		return nil
	}
	return ptr(strings.TrimSpace(*p))
}
