package router

import (
	"legal-chatbot-be/pkg/store"
	"strings"
)

// Signals are cheap lexical observations about a query. They are logged next
// to each turn so routing quality can be audited; the prompt never depends on them.
type Signals struct {
	WordCount      int      `json:"word_count"`
	Elliptical     bool     `json:"elliptical"`
	HasHistory     bool     `json:"has_history"`
	NovelTermRatio float64  `json:"novel_term_ratio"`
	Guess          Strategy `json:"guess"`
}

const shortQueryWords = 6

var referringWords = map[string]struct{}{
	"it": {}, "its": {}, "that": {}, "this": {}, "those": {}, "these": {},
	"they": {}, "them": {}, "their": {}, "he": {}, "she": {}, "more": {},
	"above": {}, "same": {}, "former": {}, "latter": {},
}

var comparativeWords = []string{"compare", "comparison", "difference", "differ", "versus", " vs ", "contrast", "similar"}
var synthesisWords = []string{"summarize", "summarise", "summary", "recap", "overview of what", "so far"}

var stopWords = map[string]struct{}{
	"what": {}, "which": {}, "when": {}, "where": {}, "does": {}, "about": {},
	"there": {}, "with": {}, "from": {}, "under": {}, "have": {}, "would": {},
	"could": {}, "should": {}, "tell": {}, "explain": {}, "please": {}, "into": {},
}

// Analyze computes signals for query against the turns that precede it.
func Analyze(query string, prior []store.Turn) Signals {
	words := strings.Fields(normalize(query))
	sig := Signals{
		WordCount:  len(words),
		HasHistory: len(prior) > 0,
	}

	for _, w := range words {
		if _, ok := referringWords[w]; ok {
			sig.Elliptical = true
			break
		}
	}
	if len(words) <= shortQueryWords && sig.HasHistory {
		sig.Elliptical = true
	}

	sig.NovelTermRatio = novelTermRatio(words, prior)
	sig.Guess = guess(" "+strings.Join(words, " ")+" ", sig)
	return sig
}

func novelTermRatio(words []string, prior []store.Turn) float64 {
	if len(prior) == 0 {
		return 1
	}
	seen := make(map[string]struct{})
	for _, t := range prior {
		for _, w := range strings.Fields(normalize(t.Content)) {
			seen[w] = struct{}{}
		}
	}

	var terms, novel int
	for _, w := range words {
		if len([]rune(w)) < 4 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		terms++
		if _, ok := seen[w]; !ok {
			novel++
		}
	}
	if terms == 0 {
		return 0
	}
	return float64(novel) / float64(terms)
}

func guess(padded string, sig Signals) Strategy {
	if !sig.HasHistory {
		return StrategyNewTopic
	}
	for _, w := range synthesisWords {
		if strings.Contains(padded, w) {
			return StrategySynthesis
		}
	}
	for _, w := range comparativeWords {
		if strings.Contains(padded, w) {
			return StrategyComparative
		}
	}
	if sig.Elliptical || sig.NovelTermRatio < 0.5 {
		return StrategyFollowUp
	}
	return StrategyNewTopic
}
