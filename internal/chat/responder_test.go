package chat

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestAssistantReplyEchoesInput(t *testing.T) {
	reply := AssistantReply("a todo app with dark mode")
	if !strings.Contains(reply, "a todo app with dark mode") {
		t.Fatalf("reply does not echo input: %q", reply)
	}
	if !strings.HasPrefix(reply, "I understand you want to build: ") {
		t.Fatalf("unexpected prefix: %q", reply)
	}
}

func TestAssistantReplyIsDeterministic(t *testing.T) {
	first := AssistantReply("same input")
	second := AssistantReply("same input")
	if first != second {
		t.Fatalf("replies differ: %q vs %q", first, second)
	}
}

func TestAssistantReplyTruncatesLongInput(t *testing.T) {
	long := strings.Repeat("x", 500)
	reply := AssistantReply(long)
	if strings.Contains(reply, strings.Repeat("x", previewLength+1)) {
		t.Fatal("reply contains more than the preview length of input")
	}
	if !strings.Contains(reply, strings.Repeat("x", previewLength)) {
		t.Fatal("reply missing the truncated preview")
	}
}

func TestAssistantReplyTruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("héllo wörld", 30)
	reply := AssistantReply(long)
	if !utf8.ValidString(reply) {
		t.Fatalf("reply contains invalid UTF-8: %q", reply)
	}
	if !strings.Contains(reply, string([]rune(long)[:previewLength])) {
		t.Fatal("reply missing the character-truncated preview")
	}
	if strings.Contains(reply, string([]rune(long)[:previewLength+1])) {
		t.Fatal("reply echoes more than the preview length of characters")
	}
}
