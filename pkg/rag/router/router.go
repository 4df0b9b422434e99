package router

import (
	"legal-chatbot-be/internal/pkg/logger"
	"legal-chatbot-be/pkg/store"
)

// Classifier picks a grounding strategy ahead of the model. Returning
// StrategyDelegated leaves the choice to the model.
type Classifier interface {
	Classify(query string, prior []store.Turn) Strategy
}

// DelegatedClassifier always defers to the model.
type DelegatedClassifier struct{}

func (DelegatedClassifier) Classify(string, []store.Turn) Strategy { return StrategyDelegated }

// Decision is the routing outcome for one turn.
type Decision struct {
	Strategy  Strategy
	Directive string
	// Greeting is set when the turn is answered with Reply and needs neither retrieval nor the model.
	Greeting bool
	Reply    string
	Signals  Signals
}

// Router guarantees every turn is composed with the full decision procedure.
// It never removes a context source: retrieval always runs and the whole
// history is always passed on, except for the greeting short-circuit.
type Router struct {
	classifier Classifier
	log        logger.ILogger
}

func NewRouter(log logger.ILogger) *Router {
	return &Router{classifier: DelegatedClassifier{}, log: log}
}

// WithClassifier swaps the strategy source.
func (r *Router) WithClassifier(c Classifier) *Router {
	r.classifier = c
	return r
}

func (r *Router) Route(query string, prior []store.Turn) Decision {
	sig := Analyze(query, prior)

	if IsGreeting(query) {
		r.log.Info("ROUTER", "Greeting short-circuit", map[string]interface{}{
			"has_history": sig.HasHistory,
		})
		return Decision{
			Strategy: StrategyDelegated,
			Greeting: true,
			Reply:    IntroductionText,
			Signals:  sig,
		}
	}

	strategy := r.classifier.Classify(query, prior)
	if !strategy.Valid() {
		strategy = StrategyDelegated
	}

	r.log.Info("ROUTER", "Turn routed", map[string]interface{}{
		"strategy":         strategy,
		"guess":            sig.Guess,
		"elliptical":       sig.Elliptical,
		"has_history":      sig.HasHistory,
		"novel_term_ratio": sig.NovelTermRatio,
		"prior_turns":      len(prior),
	})

	return Decision{
		Strategy:  strategy,
		Directive: BuildDirective(strategy),
		Signals:   sig,
	}
}
