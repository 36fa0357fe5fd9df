package generator

import (
	"fmt"
	"strings"
)

// Prompt is the message pair sent to the LLM. Type and Job record what the
// prompt was built from; they are not sent to the provider.
type Prompt struct {
	System string
	User   string
	Type   DocumentType
	Job    JobDescriptor
}

const systemPrompt = "You are a career coach who writes job application documents. " +
	"Reply with the document text only, without commentary or Markdown code fences."

var sharedRequirements = []string{
	"Professional and courteous",
	"Highlight relevant experience",
	"Show enthusiasm for the role",
	"Include a clear call to action",
}

// BuildPrompt renders the prompt for one document type. It depends only on its
// arguments, so identical inputs always produce identical prompts.
func BuildPrompt(t DocumentType, d JobDescriptor) Prompt {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate a professional %s for a %s position at %s.\n\n", t.Label(), d.Position, d.Company)
	sb.WriteString("Job Description:\n")
	sb.WriteString(d.Description)
	sb.WriteString("\n\nThe message should be:\n")
	for i, r := range sharedRequirements {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, r)
	}
	sb.WriteString("\n")
	sb.WriteString(instructions(t))

	return Prompt{
		System: systemPrompt,
		User:   sb.String(),
		Type:   t,
		Job:    d,
	}
}

func instructions(t DocumentType) string {
	switch t {
	case LinkedInMessage:
		return "Format: a LinkedIn direct message asking a connection for a referral.\n" +
			"- Keep it concise, under 120 words.\n" +
			"- Casual-professional tone, first name greeting.\n" +
			"- No subject line.\n"
	case Email:
		return "Format: a referral request email.\n" +
			"- Start with a line of the form \"Subject: ...\".\n" +
			"- Formal tone with greeting and sign-off.\n" +
			"- Mention that a resume is attached.\n"
	case CoverLetter:
		return "Format: a formal cover letter.\n" +
			"- Address the hiring manager.\n" +
			"- Structure: opening paragraph, one or two body paragraphs on fit and motivation, closing paragraph.\n" +
			"- End with a formal sign-off.\n"
	}
	return ""
}
