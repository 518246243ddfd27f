package envelope

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"
)

const fallbackSlug = "envelope"

var (
	nonAlnum   = regexp.MustCompile(`[^a-z0-9]`)
	hyphenRuns = regexp.MustCompile(`-+`)
)

// Slug lowercases name, turns every non [a-z0-9] rune into a hyphen and collapses runs.
// Leading and trailing hyphens are kept so existing ids stay reproducible; an empty name yields "envelope".
func Slug(name string) string {
	if name == "" {
		return fallbackSlug
	}
	s := nonAlnum.ReplaceAllString(strings.ToLower(name), "-")
	return hyphenRuns.ReplaceAllString(s, "-")
}

// NewID 生成形如 <slug>-<year>-<0..999> 的信封 ID。
func NewID(recipient string) string {
	return FormatID(recipient, time.Now(), rand.IntN(1000))
}

// FormatID is NewID with the clock and suffix supplied by the caller.
func FormatID(recipient string, now time.Time, suffix int) string {
	return fmt.Sprintf("%s-%d-%d", Slug(recipient), now.Year(), suffix)
}
