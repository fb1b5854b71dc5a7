package validators

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"odonto-console/internal/timeutil"
)

var emailPattern = regexp.MustCompile(`(?i)^[^\s@]+@[^\s@]+\.(com|com\.br|org|net|edu|gov)$`)

// Digits strips everything but ASCII digits.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCPF renders ###.###.###-##; inputs that are not 11 digits come back unchanged.
func FormatCPF(cpf string) string {
	d := Digits(cpf)
	if len(d) != 11 {
		return cpf
	}
	return d[:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
}

// MaskCPF progressively masks partial input, capped at 11 digits.
func MaskCPF(value string) string {
	d := Digits(value)
	if len(d) > 11 {
		d = d[:11]
	}
	switch {
	case len(d) <= 3:
		return d
	case len(d) <= 6:
		return d[:3] + "." + d[3:]
	case len(d) <= 9:
		return d[:3] + "." + d[3:6] + "." + d[6:]
	}
	return d[:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
}

// FormatPhone renders (##) ####-#### or (##) #####-####; other lengths come back unchanged.
func FormatPhone(phone string) string {
	d := Digits(phone)
	switch len(d) {
	case 10:
		return "(" + d[:2] + ") " + d[2:6] + "-" + d[6:]
	case 11:
		return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:]
	}
	return phone
}

// ValidPhone accepts area code plus an 8 or 9 digit number.
func ValidPhone(phone string) bool {
	n := len(Digits(phone))
	return n >= 10 && n <= 11
}

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// FormatBRL renders a value as Brazilian reais, e.g. R$ 1.234,56.
func FormatBRL(v float64) string {
	neg := v < 0
	cents := int64(math.Round(math.Abs(v) * 100))
	whole := cents / 100
	frac := cents % 100

	s := fmt.Sprintf("%d", whole)
	var groups []string
	for len(s) > 3 {
		groups = append([]string{s[len(s)-3:]}, groups...)
		s = s[:len(s)-3]
	}
	groups = append([]string{s}, groups...)

	out := fmt.Sprintf("R$ %s,%02d", strings.Join(groups, "."), frac)
	if neg {
		return "-" + out
	}
	return out
}

// RoundCents rounds to two decimals.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// AgeFrom returns completed years for a backend birth date; -1 when unparsable.
func AgeFrom(birthDate string, now time.Time) int {
	b, err := timeutil.ParseBackend(birthDate)
	if err != nil {
		return -1
	}
	return timeutil.Age(b, now)
}

// FormatDate renders a backend timestamp as dd/mm/yyyy; unparsable input comes back unchanged.
func FormatDate(value string) string {
	t, err := timeutil.ParseBackend(value)
	if err != nil {
		return value
	}
	return t.Format(timeutil.DisplayDate)
}

func FormatDateTime(value string) string {
	t, err := timeutil.ParseBackend(value)
	if err != nil {
		return value
	}
	return t.Format(timeutil.DisplayDateTime)
}

func FormatTime(value string) string {
	t, err := timeutil.ParseBackend(value)
	if err != nil {
		return value
	}
	return t.Format("15:04")
}
