package user

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode"
)

const (
	MinLoginLen    = 3
	MaxLoginLen    = 64
	MinPasswordLen = 8
	// bcrypt учитывает только первые 72 байта
	MaxPasswordLen = 72
)

// Validator проверяет учетные данные перед регистрацией и входом
type Validator interface {
	ValidateRegister(login, password string) error
	ValidateLogin(login string) error
	ValidatePassword(password string) error
}

// commonPasswords пароли из утечек, которые отклоняются при любом составе символов
var commonPasswords = map[string]struct{}{
	"password":    {},
	"password1":   {},
	"password123": {},
	"12345678":    {},
	"123456789":   {},
	"qwerty123":   {},
	"iloveyou":    {},
	"letmein1":    {},
	"welcome1":    {},
	"healthy123":  {},
}

// CredentialRules правила для логина (email или имя пользователя) и пароля.
// Нарушения пароля собираются все сразу, чтобы клиент мог показать их списком.
type CredentialRules struct {
	RequireDigit  bool
	RequireLetter bool
	RequireMixed  bool
}

func NewCredentialRules() *CredentialRules {
	return &CredentialRules{
		RequireDigit:  true,
		RequireLetter: true,
	}
}

func (v *CredentialRules) ValidateRegister(login, password string) error {
	if err := v.ValidateLogin(login); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := v.ValidatePassword(password); err != nil {
		return fmt.Errorf("password: %w", err)
	}
	if strings.EqualFold(strings.TrimSpace(login), password) {
		return errors.New("password must differ from login")
	}
	return nil
}

// ValidateLogin принимает адрес почты или имя из букв, цифр и '_', '-', '.'
func (v *CredentialRules) ValidateLogin(login string) error {
	n := len([]rune(login))
	if n < MinLoginLen {
		return fmt.Errorf("must be at least %d characters", MinLoginLen)
	}
	if n > MaxLoginLen {
		return fmt.Errorf("must be at most %d characters", MaxLoginLen)
	}

	if strings.Contains(login, "@") {
		addr, err := mail.ParseAddress(login)
		if err != nil || addr.Address != login {
			return errors.New("is not a valid email address")
		}
		return nil
	}

	for _, r := range login {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' && r != '.' {
			return errors.New("may contain only letters, digits, '_', '-', '.' or be an email")
		}
	}
	return nil
}

func (v *CredentialRules) ValidatePassword(password string) error {
	if len(password) > MaxPasswordLen {
		return fmt.Errorf("must be at most %d bytes", MaxPasswordLen)
	}

	var problems []error
	if len([]rune(password)) < MinPasswordLen {
		problems = append(problems, fmt.Errorf("must be at least %d characters", MinPasswordLen))
	}
	if _, ok := commonPasswords[strings.ToLower(password)]; ok {
		problems = append(problems, errors.New("is too common"))
	}

	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	if v.RequireLetter && !lower && !upper {
		problems = append(problems, errors.New("must contain a letter"))
	}
	if v.RequireMixed && (!lower || !upper) {
		problems = append(problems, errors.New("must mix upper and lower case"))
	}
	if v.RequireDigit && !digit {
		problems = append(problems, errors.New("must contain at least one digit"))
	}

	return errors.Join(problems...)
}
