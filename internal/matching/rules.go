package matching

import (
	"errors"
	"slices"
	"strings"
	"time"
)

var ErrInvalidRule = errors.New("rule pattern and category are required")

// Rule maps any description containing Pattern to Category.
type Rule struct {
	Pattern   string
	Category  string
	CreatedAt time.Time
}

// Suggest returns the category of the longest pattern found in text,
// ignoring case. Among equally long patterns the most recent rule wins.
// It returns an empty string when nothing matches.
func Suggest(rules []Rule, text string) string {
	text = strings.ToLower(text)

	var best *Rule

	for i := range rules {
		r := &rules[i]
		if r.Pattern == "" || !strings.Contains(text, strings.ToLower(r.Pattern)) {
			continue
		}

		if best == nil || len(r.Pattern) > len(best.Pattern) ||
			(len(r.Pattern) == len(best.Pattern) && !r.CreatedAt.Before(best.CreatedAt)) {
			best = r
		}
	}

	if best == nil {
		return ""
	}

	return best.Category
}

// Learn returns rules with r added, replacing any rule with the same
// pattern regardless of case. The input slice is not modified.
func Learn(rules []Rule, r Rule) ([]Rule, error) {
	r.Pattern = strings.TrimSpace(r.Pattern)
	r.Category = strings.TrimSpace(r.Category)

	if r.Pattern == "" || r.Category == "" {
		return nil, ErrInvalidRule
	}

	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	out := slices.DeleteFunc(slices.Clone(rules), func(other Rule) bool {
		return strings.EqualFold(other.Pattern, r.Pattern)
	})

	return append(out, r), nil
}
