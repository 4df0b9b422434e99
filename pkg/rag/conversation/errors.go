package conversation

import (
	"context"
	"errors"
	"fmt"
	"net"

	"legal-chatbot-be/pkg/store"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrModelUnavailable = errors.New("model unavailable")
	ErrModelTimeout     = errors.New("model timeout")
	ErrEmptyQuery       = errors.New("query is empty")
)

// TurnError reports a turn that failed after the user's message was stored.
// No assistant turn exists for it; the caller may resubmit.
type TurnError struct {
	SessionID string
	UserTurn  store.Turn
	Err       error
}

func (e *TurnError) Error() string {
	return fmt.Sprintf("turn in session %s failed: %v", e.SessionID, e.Err)
}

func (e *TurnError) Unwrap() error { return e.Err }

// classifyModelError tags a model failure as a timeout or as unavailability.
func classifyModelError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrModelTimeout, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %w", ErrModelTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrModelUnavailable, err)
}

// UserMessage maps an error to a short message that is safe to show.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyQuery):
		return "Please enter a question."
	case errors.Is(err, ErrSessionNotFound):
		return "Session not found, refresh your session list."
	case errors.Is(err, ErrModelTimeout):
		return "The assistant took too long to reply. Your message was saved; please try again."
	case errors.Is(err, ErrModelUnavailable):
		return "The assistant could not generate a reply right now. Your message was saved; please try again."
	default:
		return "Something went wrong, please try again."
	}
}
