package auth

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	usernameMin = 3
	usernameMax = 50
	fullNameMin = 2
	fullNameMax = 100
	passwordMin = 8
)

// specialChars is the accepted special-character set for passwords.
const specialChars = `!@#$%^&*(),.?":{}|<>`

// validateRegister returns every violated rule. Messages are user-facing and
// kept in Spanish to match the dashboard. Bounds count characters, not bytes:
// accented names must not get extra or missing budget.
func validateRegister(in RegisterInput) []string {
	var rules []string
	username := strings.TrimSpace(in.Username)
	if n := utf8.RuneCountInString(username); n < usernameMin || n > usernameMax {
		rules = append(rules, "Username debe tener entre 3 y 50 caracteres")
	}
	fullName := strings.TrimSpace(in.FullName)
	if n := utf8.RuneCountInString(fullName); n < fullNameMin || n > fullNameMax {
		rules = append(rules, "Nombre completo debe tener entre 2 y 100 caracteres")
	}
	rules = append(rules, passwordRules(in.Password)...)
	if in.Role != "" && !ValidRole(in.Role) {
		rules = append(rules, "Rol desconocido")
	}
	return rules
}

// passwordRules checks the canonical strength policy: minimum 8 characters
// with upper-case, lower-case, digit and special character all present.
func passwordRules(password string) []string {
	var rules []string
	if utf8.RuneCountInString(password) < passwordMin {
		rules = append(rules, "Mínimo 8 caracteres")
	}
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		case strings.ContainsRune(specialChars, ch):
			hasSpecial = true
		}
	}
	if !hasUpper {
		rules = append(rules, "Al menos una mayúscula")
	}
	if !hasLower {
		rules = append(rules, "Al menos una minúscula")
	}
	if !hasDigit {
		rules = append(rules, "Al menos un número")
	}
	if !hasSpecial {
		rules = append(rules, "Al menos un carácter especial")
	}
	return rules
}
