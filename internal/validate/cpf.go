package validate

import (
	"errors"
)

// CPF checks a brazilian taxpayer number: eleven digits, optionally punctuated as 000.000.000-00,
// where the last two are check digits of the first nine.
func CPF(number string) error {
	digits := make([]int, 0, cpfDigits)
	for i := 0; i < len(number); i++ {
		n := number[i]
		switch {
		case n == '.' || n == '-':
			continue
		case n < '0' || n > '9':
			return errors.New("number contains invalid characters")
		}
		digits = append(digits, int(n-'0'))
	}

	if len(digits) != cpfDigits {
		return errors.New("number must have 11 digits")
	}

	// Numbers made of a single repeated digit pass the checksum but are never issued
	same := true
	for _, d := range digits[1:] {
		if d != digits[0] {
			same = false
			break
		}
	}
	if same {
		return errors.New("number is made of a repeated digit")
	}

	if checkDigit(digits[:9]) != digits[9] || checkDigit(digits[:10]) != digits[10] {
		return errors.New("number check digits do not match")
	}

	return nil
}

func checkDigit(digits []int) int {
	sum := 0
	weight := len(digits) + 1
	for _, d := range digits {
		sum += d * weight
		weight--
	}

	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}
