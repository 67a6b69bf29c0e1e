package auth

import (
	"regexp"
	"strings"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

// Credential policy: email normalization/validation and password strength.
// Syntactic password rules alone accept "Password123!"-class passwords, so a
// zxcvbn-style estimator is applied on top of them.

const (
	emailMinLen = 6
	emailMaxLen = 254

	passwordMinLen = 8
	passwordMaxLen = 64

	// Minimum zxcvbn score (0-4).
	minPasswordScore = 3

	passwordSpecialSet = "-+!@#$%^&*"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)

// disposableDomains lists throwaway-mailbox providers whose addresses are
// rejected at registration.
var disposableDomains = map[string]struct{}{
	"10minutemail.com":  {},
	"dispostable.com":   {},
	"fakeinbox.com":     {},
	"getnada.com":       {},
	"guerrillamail.com": {},
	"mailinator.com":    {},
	"maildrop.cc":       {},
	"mintemail.com":     {},
	"mohmal.com":        {},
	"sharklasers.com":   {},
	"spamgourmet.com":   {},
	"temp-mail.org":     {},
	"tempmail.dev":      {},
	"throwawaymail.com": {},
	"trashmail.com":     {},
	"yopmail.com":       {},
}

// NormalizeEmail trims, lowercases and validates a raw email address and
// rejects disposable-mailbox domains. It returns the normalized address or
// ErrInvalidEmail.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if len(email) < emailMinLen || len(email) > emailMaxLen {
		return "", ErrInvalidEmail
	}
	if !emailPattern.MatchString(email) {
		return "", ErrInvalidEmail
	}
	if _, disposable := disposableDomains[emailDomain(email)]; disposable {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func emailDomain(email string) string {
	i := strings.LastIndexByte(email, '@')
	if i < 0 {
		return ""
	}
	return email[i+1:]
}

// AssertPasswordStrong enforces the composition rules (length, upper, lower,
// digit, special) and a holistic zxcvbn strength score. userInputs (email,
// name, ...) are penalized by the estimator, so a password containing the
// caller's own email local-part fails even when syntactically compliant.
func AssertPasswordStrong(password string, userInputs []string) error {
	if len(password) < passwordMinLen || len(password) > passwordMaxLen {
		return ErrWeakPassword
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSpecialSet, r):
			hasSpecial = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return ErrWeakPassword
	}

	// Feed both the raw inputs and their fragments (email local-part and
	// domain labels) to the estimator so substring reuse is penalized.
	inputs := make([]string, 0, len(userInputs)*3)
	for _, in := range userInputs {
		in = strings.ToLower(strings.TrimSpace(in))
		if in == "" {
			continue
		}
		inputs = append(inputs, in)
		for _, part := range strings.FieldsFunc(in, func(r rune) bool {
			return r == '@' || r == '.' || r == '+' || r == '_' || r == '-'
		}) {
			if len(part) >= 3 {
				inputs = append(inputs, part)
			}
		}
	}

	if containsUserInput(password, inputs) {
		return ErrWeakPassword
	}

	if zxcvbn.PasswordStrength(password, inputs).Score < minPasswordScore {
		return ErrWeakPassword
	}
	return nil
}

// containsUserInput reports whether the password embeds any supplied user
// input as a case-insensitive substring. The estimator already penalizes
// these heavily; this makes the rejection deterministic.
func containsUserInput(password string, inputs []string) bool {
	lower := strings.ToLower(password)
	for _, in := range inputs {
		if len(in) >= 3 && strings.Contains(lower, in) {
			return true
		}
	}
	return false
}
