package wpaicg

import "fmt"

// languageDirective is always the first transcript line. Without it the
// backend tends to answer in the site's language regardless of the prompt.
const languageDirective = "Human: strictly respond in the same language as my prompt, preferably English"

// buildTranscript flattens a message history into the line-oriented
// "Human/AI" format the chat handler expects. Order is preserved; the
// directive line always comes first, even for an empty history.
func buildTranscript(messages []Message) []string {
	transcript := make([]string, 0, len(messages)+1)
	transcript = append(transcript, languageDirective)

	for _, msg := range messages {
		label := "AI"
		if msg.Role == RoleUser {
			label = "Human"
		}
		transcript = append(transcript, fmt.Sprintf("%s: %s", label, msg.Content))
	}

	return transcript
}
