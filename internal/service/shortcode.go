package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tempizhere/linkstat/internal/models"
)

// Параметры генерации коротких кодов
const (
	codeAlphabet     = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength       = 6
	generateAttempts = 100
)

// Ограничения пользовательских кодов
const (
	minCodeLength = 6
	maxCodeLength = 20
)

// ErrGenerationExhausted возвращается, когда уникальный код не найден
// за отведённый бюджет попыток
var ErrGenerationExhausted = errors.New("failed to generate unique short code")

// codePattern задаёт допустимый набор символов пользовательского кода
var codePattern = regexp.MustCompile(`^[a-zA-Z0-9-_]+$`)

// reservedCodes - зарезервированные слова, запрещённые в качестве кодов
var reservedCodes = map[string]struct{}{
	"api":   {},
	"admin": {},
	"www":   {},
	"app":   {},
}

// GenerateShortCode возвращает первый случайный код, отсутствующий в existing.
// После generateAttempts неудачных попыток возвращает ErrGenerationExhausted.
func (s *Service) GenerateShortCode(existing map[string]struct{}) (string, error) {
	for i := 0; i < s.attempts; i++ {
		code, err := s.randomCode()
		if err != nil {
			return "", err
		}
		if _, taken := existing[code]; !taken {
			return code, nil
		}
	}
	return "", ErrGenerationExhausted
}

// randomCode составляет код фиксированной длины из алфавита сервиса
func (s *Service) randomCode() (string, error) {
	buf := make([]byte, s.codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	var b strings.Builder
	b.Grow(s.codeLength)
	for _, c := range buf {
		b.WriteByte(s.alphabet[int(c)%len(s.alphabet)])
	}
	return b.String(), nil
}

// ValidateShortCode проверяет пользовательский код и возвращает список
// всех нарушенных правил
func (s *Service) ValidateShortCode(code string) models.ValidationResult {
	var reasons []string

	if code == "" {
		return models.ValidationResult{Valid: false, Reasons: []string{"short code must not be empty"}}
	}
	if !codePattern.MatchString(code) {
		reasons = append(reasons, "short code may contain only letters, digits, hyphen and underscore")
	}
	if len(code) < minCodeLength || len(code) > maxCodeLength {
		reasons = append(reasons, fmt.Sprintf("short code length must be between %d and %d characters", minCodeLength, maxCodeLength))
	}
	if _, reserved := reservedCodes[strings.ToLower(code)]; reserved {
		reasons = append(reasons, fmt.Sprintf("short code %q is reserved", code))
	}

	return models.ValidationResult{Valid: len(reasons) == 0, Reasons: reasons}
}

// ValidationError несёт структурированный результат проверки кода до границы API
type ValidationError struct {
	Result models.ValidationResult
}

func (e *ValidationError) Error() string {
	return "invalid short code: " + strings.Join(e.Result.Reasons, "; ")
}
