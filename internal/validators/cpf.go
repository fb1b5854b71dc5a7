package validators

import "strings"

// placeholderCPFs pass the check-digit arithmetic but are well-known sample
// numbers that never identify a real person.
var placeholderCPFs = map[string]bool{
	"12345678909": true,
}

// ValidCPF validates a Brazilian individual taxpayer number. Punctuation is
// ignored; the number must have exactly 11 digits, must not repeat a single
// digit, must not be a placeholder, and both check digits must match.
//
// Placeholders are rejected by a fixed list (placeholderCPFs), not by the
// arithmetic: 123.456.789-09 has valid check digits and still returns false.
func ValidCPF(cpf string) bool {
	d := Digits(cpf)
	if len(d) != 11 {
		return false
	}
	if strings.Count(d, d[:1]) == 11 {
		return false
	}
	if placeholderCPFs[d] {
		return false
	}
	return cpfCheckDigit(d[:9]) == d[9] && cpfCheckDigit(d[:10]) == d[10]
}

// cpfCheckDigit computes the next check digit for a 9 or 10 digit prefix
// using descending weights that start at len(prefix)+1.
func cpfCheckDigit(prefix string) byte {
	sum := 0
	weight := len(prefix) + 1
	for i := 0; i < len(prefix); i++ {
		sum += int(prefix[i]-'0') * weight
		weight--
	}
	rest := 11 - sum%11
	if rest > 9 {
		rest = 0
	}
	return byte('0' + rest)
}
