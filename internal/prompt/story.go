// Package prompt builds the instructions sent to the text and chat models.
package prompt

import (
	"fmt"
	"strings"

	"mythos/internal/model"
)

// Culture configures the optional regional flavour of a story.
type Culture struct {
	Region    string // e.g. "Haitian"
	Aesthetic string // appended to image prompts, e.g. "Caribbean aesthetic, vibrant colors"
}

// DefaultCulture 默认文化风格
var DefaultCulture = Culture{
	Region:    "Haitian",
	Aesthetic: "Caribbean aesthetic, vibrant colors",
}

const narrationRules = `STRICT NARRATION RULES:
1. Do NOT use explicit section headers such as "Introduction", "Development", "Key Concept", "Summary" or "Conclusion".
2. The text must flow naturally, as if a person were speaking.
3. NO bullet points and NO numbering.
4. Explain concepts directly within the flow of the narrative.`

// Builder turns story requests into model instructions.
type Builder struct {
	culture Culture
}

func NewBuilder(c Culture) *Builder {
	if c.Region == "" {
		c.Region = DefaultCulture.Region
	}
	if c.Aesthetic == "" {
		c.Aesthetic = DefaultCulture.Aesthetic
	}
	return &Builder{culture: c}
}

// BuildStoryPrompt returns the instruction for the text model. It is deterministic.
func (b *Builder) BuildStoryPrompt(req model.StoryRequest) string {
	var persona, task, constraints string

	if req.Genre == model.GenreEducational {
		persona = "You are an expert teaching guide. You explain things as if you were talking to a student sitting in front of you."
		task = fmt.Sprintf("Explain the topic: %q.", req.Topic)
	} else {
		persona = "You are a captivating storyteller."
		task = fmt.Sprintf("Tell a story about: %q.", req.Topic)
	}

	if req.MediaType == model.MediaVideo {
		constraints = "VIDEO CONSTRAINT (15s):\n- EXTREMELY SHORT text (max 40 words).\n- Dynamic script style for a short video.\n" + narrationRules
	} else {
		constraints = "- Be complete and instructive but conversational.\n" + narrationRules
	}

	var sb strings.Builder
	sb.WriteString(persona)
	sb.WriteString("\n\nTASK: ")
	sb.WriteString(task)
	sb.WriteString("\n\n")
	sb.WriteString(constraints)
	sb.WriteString("\n\nPARAMETERS:\n")
	fmt.Fprintf(&sb, "- Audience: %s (adapt vocabulary and tone)\n", req.AgeGroup)
	fmt.Fprintf(&sb, "- Language: %s\n", req.Language)
	if req.IncludeCulture {
		fmt.Fprintf(&sb, "IMPORTANT: Naturally weave %s references (places, proverbs, culture) into the narrative without forcing them.\n", b.culture.Region)
	}
	sb.WriteString("\nIMAGE PROMPT (important):\n")
	sb.WriteString("Also write a visual description IN ENGLISH for the image generator, whatever the narrative language.\n\n")
	sb.WriteString("Return the answer as JSON:\n")
	sb.WriteString(`{"title": "A short catchy title", "content": "The flowing narrative text", "imagePrompt": "Visual description (English)"}`)
	return sb.String()
}

// DecorateImagePrompt appends the regional aesthetic when the cultural flag is set.
func (b *Builder) DecorateImagePrompt(imagePrompt string, includeCulture bool) string {
	if !includeCulture {
		return imagePrompt
	}
	return imagePrompt + ", " + b.culture.Aesthetic
}

// FallbackImagePrompt is used when the text model returns no visual description.
func FallbackImagePrompt(topic string) string {
	return "Educational illustration about " + topic
}
