package slack

import (
	"os"
	"strings"
)

// ResolveToken 解析 Token（支持环境变量引用）
// 如果值以 ${} 包裹，则从环境变量读取
func ResolveToken(value string) string {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
		return strings.TrimSpace(os.Getenv(value[2 : len(value)-1]))
	}
	return value
}

// MaskToken 脱敏 Token，用于日志输出
func MaskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "****" + token[len(token)-4:]
}
