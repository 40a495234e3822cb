package status

import (
	"strings"
	"unicode"
)

// DiscardCategory is the fixed set of reasons a record can be excluded from migration.
type DiscardCategory int

const (
	CategoryHistoricCase DiscardCategory = iota
	CategoryRejected
	CategorySuppressed
	CategoryNoApplicationRecord
	// CategoryOther collects tags outside the known set so no discard goes unreported.
	CategoryOther

	categoryCount
)

var categoryNames = [categoryCount]string{
	CategoryHistoricCase:        "historic case",
	CategoryRejected:            "rejected",
	CategorySuppressed:          "suppressed",
	CategoryNoApplicationRecord: "no application record",
	CategoryOther:               "other",
}

var categoryByKey = func() map[string]DiscardCategory {
	m := make(map[string]DiscardCategory, categoryCount)
	for c := DiscardCategory(0); c < CategoryOther; c++ {
		m[categoryKey(categoryNames[c])] = c
	}
	return m
}()

func (c DiscardCategory) String() string {
	if c < 0 || c >= categoryCount {
		return categoryNames[CategoryOther]
	}
	return categoryNames[c]
}

// Categories lists every category in report order.
func Categories() []DiscardCategory {
	out := make([]DiscardCategory, 0, categoryCount)
	for c := DiscardCategory(0); c < categoryCount; c++ {
		out = append(out, c)
	}
	return out
}

// ParseCategory matches a wire tag ignoring case and separators.
// "No Application Record", "no_application_record" and "NoApplicationRecord" are the same.
func ParseCategory(tag string) (DiscardCategory, bool) {
	c, ok := categoryByKey[categoryKey(tag)]
	if !ok {
		return CategoryOther, false
	}
	return c, true
}

func categoryKey(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
