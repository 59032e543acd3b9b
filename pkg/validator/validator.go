package validator

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const MaxTweetLength = 280

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

func ValidateRegister(name, username, email, password string) ValidationErrors {
	errs := make(ValidationErrors)

	name = strings.TrimSpace(name)
	if name == "" {
		errs.Add("name", "Name is required")
	} else if utf8.RuneCountInString(name) > 100 {
		errs.Add("name", "Name is too long")
	}

	username = strings.TrimSpace(username)
	if username == "" {
		errs.Add("username", "Username is required")
	} else if len(username) > 50 {
		errs.Add("username", "Username is too long")
	} else if !usernameRegex.MatchString(username) {
		errs.Add("username", "Username can only contain letters, numbers, _, . and -")
	}

	validateEmail(email, errs)

	if strings.TrimSpace(password) == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

func ValidateLogin(email, password string) ValidationErrors {
	errs := make(ValidationErrors)

	validateEmail(email, errs)

	if strings.TrimSpace(password) == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

// ValidateProfile checks only the fields that are present.
func ValidateProfile(name, location, dob *string) ValidationErrors {
	errs := make(ValidationErrors)

	if name != nil && utf8.RuneCountInString(strings.TrimSpace(*name)) > 100 {
		errs.Add("name", "Name is too long")
	}
	if location != nil && utf8.RuneCountInString(strings.TrimSpace(*location)) > 100 {
		errs.Add("location", "Location is too long")
	}
	if dob != nil && strings.TrimSpace(*dob) != "" {
		if _, err := time.Parse("2006-01-02", strings.TrimSpace(*dob)); err != nil {
			errs.Add("dob", "Date of birth must be YYYY-MM-DD")
		}
	}

	return errs
}

func ValidateTweet(content string) ValidationErrors {
	errs := make(ValidationErrors)

	content = strings.TrimSpace(content)
	if content == "" {
		errs.Add("content", "Content is required")
	} else if utf8.RuneCountInString(content) > MaxTweetLength {
		errs.Add("content", "Content is too long")
	}

	return errs
}

func validateEmail(email string, errs ValidationErrors) {
	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
		return
	}
	// Only a bare address is accepted, not "Name <addr>".
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		errs.Add("email", "Invalid email address")
	}
}
