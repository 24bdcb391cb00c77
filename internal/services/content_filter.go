package services

import (
	"regexp"
	"strings"
)

// BannedWords trips the comment filter when matched as whole words.
var BannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"asshole", "bastard", "bitch", "cunt",
	"nigger", "nigga", "chink", "spic", "kike", "faggot", "fag",
	"retard", "retarded", "tranny",
	"porn", "porno", "nudes",
	"scam", "scammer", "phishing", "malware",
}

// ContentFilter flags comments that should wait for a moderator instead
// of going live immediately.
type ContentFilter struct {
	banned     []*regexp.Regexp
	url        *regexp.Regexp
	email      *regexp.Regexp
	phone      *regexp.Regexp
	shouting   *regexp.Regexp
	maxShouted int
}

func NewContentFilter() *ContentFilter {
	f := &ContentFilter{
		url:        regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`),
		email:      regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		phone:      regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}|\(\d{3}\)\s*\d{3}[-.\s]?\d{4}`),
		shouting:   regexp.MustCompile(`[A-Z]{5,}`),
		maxShouted: 2,
	}
	f.banned = make([]*regexp.Regexp, 0, len(BannedWords))
	for _, word := range BannedWords {
		f.banned = append(f.banned, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(word)+`\b`))
	}
	return f
}

// Check returns ok=false and a reason code when text needs review.
func (f *ContentFilter) Check(text string) (ok bool, reason string) {
	if strings.TrimSpace(text) == "" {
		return true, ""
	}
	for _, re := range f.banned {
		if re.MatchString(text) {
			return false, "inappropriate_language"
		}
	}
	if f.url.MatchString(text) {
		return false, "url_not_allowed"
	}
	if f.email.MatchString(text) || f.phone.MatchString(text) {
		return false, "contact_info_not_allowed"
	}
	if hasRun(text, 4) {
		return false, "spam_detected"
	}
	if len(f.shouting.FindAllString(text, -1)) > f.maxShouted {
		return false, "excessive_caps"
	}
	return true, ""
}

// hasRun reports whether any letter or !?. repeats n or more times in a row,
// case-insensitively. RE2 has no backreferences so this is a plain scan.
func hasRun(text string, n int) bool {
	var prev rune
	count := 0
	for _, r := range strings.ToLower(text) {
		if r == prev && (r >= 'a' && r <= 'z' || r == '!' || r == '?' || r == '.') {
			count++
			if count >= n {
				return true
			}
			continue
		}
		prev, count = r, 1
	}
	return false
}

// ReasonMessage is the user-facing explanation for a reason code.
func ReasonMessage(reason string) string {
	switch reason {
	case "inappropriate_language":
		return "Your comment contains inappropriate language."
	case "url_not_allowed":
		return "URLs and web links are not allowed."
	case "contact_info_not_allowed":
		return "Contact information is not allowed."
	case "spam_detected":
		return "Your comment appears to be spam."
	case "excessive_caps":
		return "Please avoid using excessive capital letters."
	}
	return "Your comment does not meet our content guidelines."
}
