package validation

import (
	"strings"

	"github.com/google/uuid"
)

// ValidateCardNumber checks a card number after stripping spaces and
// dashes: all digits, 13-19 long, passing the Luhn checksum.
func ValidateCardNumber(number string) bool {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(number)
	if len(cleaned) < 13 || len(cleaned) > 19 {
		return false
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return false
		}
	}
	return validLuhn(cleaned)
}

// validLuhn doubles every second digit from the right, folding results
// above 9, and requires the sum to be divisible by 10.
func validLuhn(number string) bool {
	sum := 0
	alternate := false
	for i := len(number) - 1; i >= 0; i-- {
		n := int(number[i] - '0')
		if alternate {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		alternate = !alternate
	}
	return sum%10 == 0
}

// ValidateTransactionID requires a non-blank, UUID-shaped identifier.
func ValidateTransactionID(id string) bool {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return false
	}
	_, err := uuid.Parse(trimmed)
	return err == nil
}
