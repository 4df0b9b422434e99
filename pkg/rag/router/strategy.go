package router

// Strategy labels how an answer should be grounded. The model picks one per
// turn by following the directive; a local classifier can pick one instead
// through the Classifier seam.
type Strategy string

const (
	// StrategyNewTopic: new legal vocabulary. Retrieved chunks are the primary source.
	StrategyNewTopic Strategy = "NEW_TOPIC"
	// StrategyFollowUp: builds on the latest topic. History is primary, chunks supplement it.
	StrategyFollowUp Strategy = "FOLLOW_UP"
	// StrategyComparative: relates the current topic to an earlier one. Answer from history only.
	StrategyComparative Strategy = "COMPARATIVE"
	// StrategySynthesis: summary or difference across prior topics. Answer from history only.
	StrategySynthesis Strategy = "SYNTHESIS"
	// StrategyDelegated means the choice is left to the model.
	StrategyDelegated Strategy = "DELEGATED"
)

// Strategies lists the four grounding strategies in the order the directive presents them.
var Strategies = []Strategy{StrategyNewTopic, StrategyFollowUp, StrategyComparative, StrategySynthesis}

// GroundingInstruction is the sourcing rule for a strategy as stated to the model.
func (s Strategy) GroundingInstruction() string {
	switch s {
	case StrategyNewTopic:
		return "The question introduces a legal concept not yet discussed. Treat the retrieved documents as the primary source of truth."
	case StrategyFollowUp:
		return "The question builds on the most recent topic (exceptions, details, application). Treat the conversation history as the primary source and use retrieved documents only to supplement it."
	case StrategyComparative:
		return "The question relates the current topic to one discussed earlier. Build the answer exclusively from the relevant turns of the conversation history; retrieved documents are optional supplements."
	case StrategySynthesis:
		return "The question asks for a summary or a difference across topics already discussed. Build the answer exclusively from the conversation history; retrieved documents are optional supplements."
	default:
		return ""
	}
}

func (s Strategy) Valid() bool {
	switch s {
	case StrategyNewTopic, StrategyFollowUp, StrategyComparative, StrategySynthesis, StrategyDelegated:
		return true
	}
	return false
}
