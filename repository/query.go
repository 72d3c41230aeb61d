package repository

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizeCategory turns "eNGLISH" into "English". Multi-word values keep
// only their first letter upper-cased, so "new zealand sign" stays unmatched
// against "New Zealand Sign".
func NormalizeCategory(category string) string {
	lower := strings.ToLower(strings.TrimSpace(category))
	if lower == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(lower)
	return string(unicode.ToUpper(r)) + lower[size:]
}

// ClampPage applies the listing defaults to page and pageSize.
func ClampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

func Offset(page, pageSize int) int {
	return (page - 1) * pageSize
}

func TotalPages(totalItems int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int((totalItems + int64(pageSize) - 1) / int64(pageSize))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
