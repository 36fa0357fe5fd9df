package generator

import (
	"context"
	"fmt"
)

// MockLLM fills fixed templates instead of calling a model. It keeps the app
// usable offline and in tests.
type MockLLM struct{}

func (m MockLLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	j := prompt.Job
	switch prompt.Type {
	case LinkedInMessage:
		return fmt.Sprintf("Hi [Connection],\n\n"+
			"I noticed that %s is hiring for a %s role, and I'm very interested. "+
			"Given my background in [relevant experience], I believe I'd be a great fit.\n\n"+
			"Would you be willing to refer me for this position? I'd be happy to share more details about my qualifications.\n\n"+
			"Thanks for considering!\n[Your Name]", j.Company, j.Position), nil
	case Email:
		return fmt.Sprintf("Subject: Referral Request for %s Position at %s\n\n"+
			"Dear [Name],\n\n"+
			"I hope this email finds you well. I recently came across the %s opening at %s and I'm very interested in applying.\n\n"+
			"Given your experience at the company, I was wondering if you would be willing to refer me for this position. "+
			"I believe my background in [relevant skills/experience] aligns well with what they're looking for.\n\n"+
			"I've attached my resume for your reference. Please let me know if you need any additional information.\n\n"+
			"Thank you for your consideration.\n\nBest regards,\n[Your Name]", j.Position, j.Company, j.Position, j.Company), nil
	case CoverLetter:
		return fmt.Sprintf("Dear Hiring Manager,\n\n"+
			"I am writing to express my interest in the %s position at %s. "+
			"With my background in [relevant skills/experience], I am confident in my ability to make a significant contribution to your team.\n\n"+
			"[Paragraph about your relevant experience and how it aligns with the job requirements]\n\n"+
			"[Paragraph about why you're interested in the company specifically]\n\n"+
			"Thank you for considering my application. I look forward to the opportunity to discuss how my skills and experiences align with your needs.\n\n"+
			"Sincerely,\n[Your Name]", j.Position, j.Company), nil
	}
	return "", fmt.Errorf("%w: unsupported document type %q", ErrInvalidResponse, prompt.Type)
}
