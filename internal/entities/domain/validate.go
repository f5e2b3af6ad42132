package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Normalize trims surrounding whitespace from every text field.
func (f Fields) Normalize() Fields {
	f.Kind = Kind(strings.ToLower(strings.TrimSpace(string(f.Kind))))
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.Date = strings.TrimSpace(f.Date)
	f.ImageURL = strings.TrimSpace(f.ImageURL)
	f.GithubURL = strings.TrimSpace(f.GithubURL)
	f.LiveDemoURL = strings.TrimSpace(f.LiveDemoURL)
	f.IssuedBy = strings.TrimSpace(f.IssuedBy)
	f.CredentialURL = strings.TrimSpace(f.CredentialURL)
	return f
}

// Validate checks the fields of an add request. The returned error wraps
// ErrValidation and its message is safe to show to the user.
func (f Fields) Validate() error {
	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s", ErrValidation, describe(verrs[0]))
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	switch f.Kind {
	case KindProject:
		if f.GithubURL == "" {
			return fmt.Errorf("%w: githubUrl is required", ErrValidation)
		}
	case KindCertificate:
		if f.IssuedBy == "" {
			return fmt.Errorf("%w: issuedBy is required", ErrValidation)
		}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	name := jsonName(fe.Field())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "url":
		return name + " must be a valid URL"
	case "oneof":
		return name + " must be one of: " + fe.Param()
	}
	return name + " is invalid"
}

func jsonName(field string) string {
	switch field {
	case "ImageURL":
		return "imageUrl"
	case "GithubURL":
		return "githubUrl"
	case "LiveDemoURL":
		return "liveDemoUrl"
	case "CredentialURL":
		return "credentialUrl"
	case "IssuedBy":
		return "issuedBy"
	}
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
