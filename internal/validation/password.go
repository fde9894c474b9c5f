package validation

import (
	"strings"
	"unicode"
)

// MinPasswordLength is the shortest password accepted for new accounts.
const MinPasswordLength = 8

var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "password123": {}, "passw0rd": {},
	"12345678": {}, "123456789": {}, "1234567890": {}, "87654321": {},
	"qwerty123": {}, "qwertyuiop": {}, "1q2w3e4r": {}, "1qaz2wsx": {},
	"iloveyou": {}, "sunshine": {}, "princess": {}, "football": {},
	"baseball": {}, "superman": {}, "starwars": {}, "trustno1": {},
	"welcome1": {}, "letmein1": {}, "abc12345": {}, "abcd1234": {},
	"admin123": {}, "administrator": {}, "changeme": {}, "testpassword": {},
	"monkey123": {}, "dragon123": {}, "michael1": {}, "computer": {},
	"whatever": {}, "zaq12wsx": {}, "asdfghjkl": {}, "11111111": {},
	"00000000": {}, "access14": {}, "mustang1": {}, "shadow12": {},
}

// Password checks password against the account policy and returns every
// rule it breaks. An empty result means the password is acceptable.
func Password(password, username string) []string {
	var problems []string

	if len(password) < MinPasswordLength {
		problems = append(problems, "This password is too short. It must contain at least 8 characters.")
	}
	if _, ok := commonPasswords[strings.ToLower(password)]; ok {
		problems = append(problems, "This password is too common.")
	}
	if password != "" && isNumeric(password) {
		problems = append(problems, "This password is entirely numeric.")
	}
	if tooSimilar(password, username) {
		problems = append(problems, "The password is too similar to the username.")
	}
	return problems
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func tooSimilar(password, username string) bool {
	p := strings.ToLower(password)
	u := strings.ToLower(strings.TrimSpace(username))
	if len(u) < 3 || p == "" {
		return false
	}
	return strings.Contains(p, u) || strings.Contains(u, p)
}
