package generator

import (
	"net/url"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Validate normalizes raw form fields and checks them. Every violated
// constraint is reported; the result is ordered by field name.
func Validate(raw RawFields) (JobDescriptor, error) {
	d := JobDescriptor{
		Position:    clean(raw.Position),
		Company:     clean(raw.Company),
		URL:         clean(raw.URL),
		Description: clean(raw.Description),
	}

	var errs ValidationErrors
	required := []struct {
		field string
		value string
	}{
		{"position", d.Position},
		{"company", d.Company},
		{"description", d.Description},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, ValidationError{Field: r.field, Message: "is required"})
		}
	}

	if d.URL != "" && !validURL(d.URL) {
		errs = append(errs, ValidationError{Field: "url", Message: "must be a valid URL"})
	}

	ct := clean(raw.ContentType)
	if ct == "" {
		d.ContentType = LinkedInMessage
	} else if t, err := ParseDocumentType(ct); err == nil {
		d.ContentType = t
	} else {
		errs = append(errs, ValidationError{Field: "contentType", Message: "must be one of linkedinMessage, email, coverLetter"})
	}

	if len(errs) > 0 {
		return JobDescriptor{}, errs.sorted()
	}
	return d, nil
}

func clean(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

func validURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
