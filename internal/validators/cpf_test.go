package validators

import "testing"

func TestValidCPF(t *testing.T) {
	tests := []struct {
		name string
		cpf  string
		want bool
	}{
		{"valid digits only", "52998224725", true},
		{"valid masked", "529.982.247-25", true},
		{"valid other", "111.444.777-35", true},
		{"wrong second digit", "529.982.247-24", false},
		{"wrong first digit", "529.982.247-15", false},
		{"sequential placeholder", "123.456.789-09", false},
		{"repeated digits", "111.111.111-11", false},
		{"all zeros", "00000000000", false},
		{"too short", "5299822472", false},
		{"too long", "529982247250", false},
		{"empty", "", false},
		{"letters only", "abc.def.ghi-jk", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidCPF(tt.cpf); got != tt.want {
				t.Errorf("ValidCPF(%q) = %v, want %v", tt.cpf, got, tt.want)
			}
		})
	}
}

func TestPlaceholderCPFHasValidCheckDigits(t *testing.T) {
	for cpf := range placeholderCPFs {
		if cpfCheckDigit(cpf[:9]) != cpf[9] || cpfCheckDigit(cpf[:10]) != cpf[10] {
			t.Errorf("%s fails the arithmetic; the list entry is redundant", cpf)
		}
		if ValidCPF(cpf) {
			t.Errorf("ValidCPF(%s) = true, want false", cpf)
		}
	}
}
