// Package chat produces the placeholder assistant response. There is no
// real inference pipeline; the reply deterministically echoes a prefix of
// the user's input so it stays stable for testing.
package chat

// previewLength is how many characters of the user's input the reply echoes.
const previewLength = 100

// AssistantReply builds the canned assistant response for a user message.
// The preview is truncated per character, not per byte, so multi-byte
// input never produces a broken rune at the cut.
func AssistantReply(content string) string {
	preview := content
	if runes := []rune(content); len(runes) > previewLength {
		preview = string(runes[:previewLength])
	}
	return "I understand you want to build: " + preview +
		"... I'm processing your request with the selected model and settings."
}
