package validate

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DateLayout        = "2006-01-02"
	TimeLayout        = "15:04"
	TimeSecondsLayout = "15:04:05"
	minPhoneDigits    = 10
	maxPhoneDigits    = 13
	cpfDigits         = 11
)

func validateDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

func validateTimeOfDay(fl validator.FieldLevel) bool {
	return IsTimeOfDay(fl.Field().String())
}

// IsTimeOfDay reports whether s is formatted as HH:MM or HH:MM:SS
func IsTimeOfDay(s string) bool {
	if _, err := time.Parse(TimeLayout, s); err == nil {
		return true
	}
	_, err := time.Parse(TimeSecondsLayout, s)
	return err == nil
}

func validatePhone(fl validator.FieldLevel) bool {
	digits := 0
	for _, r := range fl.Field().String() {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ' ' || r == '(' || r == ')' || r == '-' || r == '+':
		default:
			return false
		}
	}
	return digits >= minPhoneDigits && digits <= maxPhoneDigits
}

func validateCPF(fl validator.FieldLevel) bool {
	return CPF(fl.Field().String()) == nil
}
