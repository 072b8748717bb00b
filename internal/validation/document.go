// Package validation holds the pure validation gates applied before a
// payment is allowed to reach the orchestrator: Brazilian taxpayer
// document check digits, card number checksums, transaction id format,
// and the per-customer rate limiter.
package validation

import "strings"

// digitsOnly strips every non-digit rune.
func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// allSame reports whether every byte equals the first. Documents like
// "11111111111" carry valid check digits but are not real CPFs.
func allSame(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

// ValidateDocument validates a CPF (11 digits) or CNPJ (14 digits)
// after stripping formatting. Any other length is invalid.
func ValidateDocument(document string) bool {
	doc := digitsOnly(document)
	switch len(doc) {
	case 11:
		return validCPF(doc)
	case 14:
		return validCNPJ(doc)
	default:
		return false
	}
}

// validCPF runs the two weighted mod-11 passes of the CPF algorithm.
func validCPF(cpf string) bool {
	if allSame(cpf) {
		return false
	}

	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(cpf[i]-'0') * (10 - i)
	}
	if int(cpf[9]-'0') != cpfDigit(sum) {
		return false
	}

	sum = 0
	for i := 0; i < 10; i++ {
		sum += int(cpf[i]-'0') * (11 - i)
	}
	return int(cpf[10]-'0') == cpfDigit(sum)
}

func cpfDigit(sum int) int {
	remainder := sum % 11
	if remainder < 2 {
		return 0
	}
	return 11 - remainder
}

var (
	cnpjWeightsFirst  = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeightsSecond = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// validCNPJ runs the two weighted mod-11 passes of the CNPJ algorithm.
func validCNPJ(cnpj string) bool {
	if allSame(cnpj) {
		return false
	}

	sum := 0
	for i, w := range cnpjWeightsFirst {
		sum += int(cnpj[i]-'0') * w
	}
	if int(cnpj[12]-'0') != cpfDigit(sum) {
		return false
	}

	sum = 0
	for i, w := range cnpjWeightsSecond {
		sum += int(cnpj[i]-'0') * w
	}
	return int(cnpj[13]-'0') == cpfDigit(sum)
}
