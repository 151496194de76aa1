package util

import (
	"strings"
	"unicode"

	"github.com/goccy/go-json"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify 生成 URL 友好的 slug: 去除变音符号、转小写、非字母数字连续段替换为单个 "-"
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	pendingDash := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// ParseTags 解析标签，支持 JSON 数组或逗号分隔字符串；保持顺序，去除空白，不去重
func ParseTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}

	if strings.HasPrefix(raw, "[") {
		var arr []string
		if err := json.Unmarshal([]byte(raw), &arr); err == nil {
			return cleanTokens(arr)
		}
	}
	return SplitTokens(raw)
}

// SplitTokens 按逗号切分并去除空白项
func SplitTokens(raw string) []string {
	return cleanTokens(strings.Split(raw, ","))
}

func cleanTokens(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// LikeEscapeChar LIKE 语句使用的转义字符
const LikeEscapeChar = "!"

// EscapeLike 转义 LIKE 通配符，使搜索词按字面匹配
func EscapeLike(term string) string {
	r := strings.NewReplacer(
		LikeEscapeChar, LikeEscapeChar+LikeEscapeChar,
		"%", LikeEscapeChar+"%",
		"_", LikeEscapeChar+"_",
	)
	return r.Replace(term)
}
