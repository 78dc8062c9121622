package identity

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// localPart 邮箱 @ 之前的部分（小写）
func localPart(email string) string {
	local, _, _ := strings.Cut(lower(email), "@")
	return local
}

// Similarity 基于编辑距离的归一化相似度，取值 [0,1]
// 1 - levenshtein(a, b) / max(len(a), len(b))，长度按 rune 计
func Similarity(a, b string) float64 {
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}

// initialsAndSurname 姓名至少两段时返回 (首字母+第二段首字母, 第二段)，均为小写
func initialsAndSurname(name string) (string, string, bool) {
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return "", "", false
	}
	first, _ := utf8.DecodeRuneInString(parts[0])
	second, _ := utf8.DecodeRuneInString(parts[1])
	return lower(string([]rune{first, second})), lower(parts[1]), true
}
