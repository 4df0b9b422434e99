package conversation

import "strings"

const (
	MaxDisplayNameRunes = 50
	ellipsis            = "..."
)

// DisplayName derives a session name from its first message.
func DisplayName(firstMessage string) string {
	name := strings.TrimSpace(firstMessage)
	runes := []rune(name)
	if len(runes) <= MaxDisplayNameRunes {
		return name
	}
	return string(runes[:MaxDisplayNameRunes]) + ellipsis
}
