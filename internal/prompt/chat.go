package prompt

import (
	"context"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

const (
	socraticPersona = "You are a Socratic tutor discussing a story with a young reader. " +
		"Stay anchored in the story below, keep answers short and warm, and end with a question that makes the reader think.\n\nSTORY:\n{story}"

	openingQuestion = "Ask one short, open question about the story above to start the discussion. Reply with the question only."
)

// OpeningTemplate asks for the first question about a story.
func OpeningTemplate() prompt.ChatTemplate {
	return prompt.FromMessages(schema.FString,
		schema.SystemMessage(socraticPersona),
		schema.UserMessage(openingQuestion),
	)
}

// ContinueTemplate carries prior turns plus the new user input.
func ContinueTemplate() prompt.ChatTemplate {
	return prompt.FromMessages(schema.FString,
		schema.SystemMessage(socraticPersona),
		schema.MessagesPlaceholder("history", true),
		&schema.Message{
			Role:    schema.User,
			Content: "{input}",
		},
	)
}

// FormatOpening renders the opening-question messages.
func FormatOpening(ctx context.Context, story string) ([]*schema.Message, error) {
	return OpeningTemplate().Format(ctx, map[string]any{"story": story})
}

// FormatContinue renders the follow-up messages for one user turn.
func FormatContinue(ctx context.Context, story string, history []*schema.Message, input string) ([]*schema.Message, error) {
	return ContinueTemplate().Format(ctx, map[string]any{
		"story":   story,
		"history": history,
		"input":   input,
	})
}
