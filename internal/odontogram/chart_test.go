package odontogram

import "testing"

func TestNumbers_AllThirtyTwoOnce(t *testing.T) {
	nums := Numbers()
	if len(nums) != 32 {
		t.Fatalf("expected 32 teeth, got %d", len(nums))
	}
	seen := make(map[int]bool)
	for _, n := range nums {
		if !ValidNumber(n) {
			t.Errorf("invalid tooth number %d in chart", n)
		}
		if seen[n] {
			t.Errorf("tooth %d listed twice", n)
		}
		seen[n] = true
	}
}

func TestShapeOf(t *testing.T) {
	tests := map[int]Shape{
		11: Incisor, 22: Incisor, 13: Canine, 43: Canine,
		14: Premolar, 35: Premolar, 16: Molar, 27: Molar, 48: Molar,
	}
	for n, want := range tests {
		if got := ShapeOf(n); got != want {
			t.Errorf("ShapeOf(%d) = %s, want %s", n, got, want)
		}
	}
}

func TestValidNumber(t *testing.T) {
	for _, n := range []int{10, 19, 51, 9, 0, 49, 85} {
		if ValidNumber(n) {
			t.Errorf("expected %d to be invalid", n)
		}
	}
}

func TestLookup(t *testing.T) {
	tooth, ok := Lookup(36)
	if !ok {
		t.Fatal("expected 36 to exist")
	}
	if tooth.Quadrant != 3 || tooth.Position != 6 || tooth.Name != "1º Molar" || !tooth.Lower() {
		t.Errorf("unexpected tooth: %+v", tooth)
	}
	upper, _ := Lookup(21)
	if upper.Lower() {
		t.Error("expected 21 to be upper")
	}
	if _, ok := Lookup(19); ok {
		t.Error("expected 19 to be missing")
	}
}
