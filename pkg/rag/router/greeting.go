package router

import (
	"strings"
	"unicode"
)

var greetings = map[string]struct{}{
	"hi": {}, "hii": {}, "hey": {}, "hello": {}, "hallo": {}, "hiya": {}, "yo": {},
	"greetings": {}, "howdy": {}, "namaste": {},
	"good morning": {}, "good afternoon": {}, "good evening": {}, "good day": {},
	"hi there": {}, "hello there": {}, "hey there": {},
	"hi bot": {}, "hello bot": {}, "hey bot": {},
	"hi chatbot": {}, "hello chatbot": {},
}

var identityQuestions = map[string]struct{}{
	"who are you":            {},
	"what are you":           {},
	"what is your name":      {},
	"whats your name":        {},
	"what can you do":        {},
	"what do you do":         {},
	"how can you help":       {},
	"how can you help me":    {},
	"introduce yourself":     {},
	"tell me about yourself": {},
	"are you a bot":          {},
	"are you a lawyer":       {},
}

// IsGreeting reports whether query is a bare greeting or a question about the
// assistant itself, optionally prefixed by a greeting ("hi, who are you?").
func IsGreeting(query string) bool {
	q := normalize(query)
	if q == "" {
		return false
	}
	if _, ok := greetings[q]; ok {
		return true
	}
	if _, ok := identityQuestions[q]; ok {
		return true
	}
	for g := range greetings {
		if rest, ok := strings.CutPrefix(q, g+" "); ok {
			if _, ok := identityQuestions[rest]; ok {
				return true
			}
		}
	}
	return false
}

// normalize lowercases, drops punctuation and collapses whitespace.
func normalize(s string) string {
	var sb strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			space = false
			sb.WriteRune(r)
		case unicode.IsSpace(r):
			space = true
		case r == '\'' || r == '’':
			// "what's" -> "whats"
		default:
			space = true
		}
	}
	return sb.String()
}
