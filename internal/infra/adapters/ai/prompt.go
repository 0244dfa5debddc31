package ai

import (
	"fmt"
	"time"
)

// extractionInstructions is shared by every provider so switching or
// falling back between them never changes what the model is asked to do.
const extractionInstructions = `You are a reminder extraction assistant.
Extract a reminder from the user's message.
Respond with a single JSON object and nothing else, using exactly these keys:
{"task": "<what to remind the user about, without a leading 'to'>", "time": "<RFC 3339 timestamp in UTC for when the reminder should fire>"}
Resolve relative times like "tomorrow at 2pm" or "in 20 minutes" against the current time.
If the message does not ask for a reminder, respond with {"task": "", "time": ""}.`

// userTurn carries the volatile half of the prompt: the clock anchor and
// the raw message.
func userTurn(text string, now time.Time) string {
	return fmt.Sprintf("Current time: %s\nMessage: %s", now.UTC().Format(time.RFC3339), text)
}

// buildExtractionPrompt flattens instructions and user turn into one blob
// for providers that take a single content block.
func buildExtractionPrompt(text string, now time.Time) string {
	return extractionInstructions + "\n" + userTurn(text, now)
}
