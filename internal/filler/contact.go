package filler

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

var (
	emailRe    = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(?:\.[A-Za-z0-9\-]+)*\.[A-Za-z]{2,}`)
	phoneRe    = regexp.MustCompile(`\+\d[\d\s\-()]{5,}\d|\(?\d{3}\)?[\s\-]\d{3}[\s\-]\d{2}[\s\-]\d{2}`)
	handleRe   = regexp.MustCompile(`(?:^|[^\w@./])(@[A-Za-z][A-Za-z0-9_]{4,31})\b`)
	telegramRe = regexp.MustCompile(`https?://t\.me/[A-Za-z0-9_+/]+`)
)

// findEmail returns the first e-mail address in text.
func findEmail(text string) string {
	return emailRe.FindString(text)
}

// findPhone returns the first phone-like run with a plausible digit count.
func findPhone(text string) string {
	for _, candidate := range phoneRe.FindAllString(text, -1) {
		digits := strings.Count(strings.Map(func(r rune) rune {
			if unicode.IsDigit(r) {
				return 'd'
			}
			return -1
		}, candidate), "d")
		if digits >= minPhoneDigits && digits <= maxPhoneDigits {
			return strings.TrimSpace(candidate)
		}
	}
	return ""
}

// findHandle returns the first Telegram @username.
func findHandle(text string) string {
	m := handleRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// findContact scans the whole text for contact details when no label
// supplied them. Which detectors run depends on the placeholder's group.
func findContact(group, text string) string {
	switch group {
	case GroupEmail:
		return findEmail(text)
	case GroupPhone:
		return findPhone(text)
	case GroupContact:
		for _, find := range []func(string) string{findEmail, findPhone, findHandle, telegramRe.FindString} {
			if v := find(text); v != "" {
				return v
			}
		}
	}
	return ""
}
