// Package odontogram models the fixed 32-tooth permanent dentition in FDI
// notation and derives each tooth's current condition from its append-only
// history.
package odontogram

import "fmt"

type Shape string

const (
	Incisor  Shape = "incisivo"
	Canine   Shape = "canino"
	Premolar Shape = "pre-molar"
	Molar    Shape = "molar"
)

type Tooth struct {
	Number   int
	Quadrant int
	Position int
	Name     string
	Shape    Shape
}

// Lower reports whether the tooth sits in the mandible (quadrants 3 and 4).
func (t Tooth) Lower() bool {
	return t.Quadrant == 3 || t.Quadrant == 4
}

func (t Tooth) Label() string {
	return fmt.Sprintf("%d - %s", t.Number, t.Name)
}

var positionNames = [9]string{
	1: "Incisivo Central",
	2: "Incisivo Lateral",
	3: "Canino",
	4: "1º Pré-molar",
	5: "2º Pré-molar",
	6: "1º Molar",
	7: "2º Molar",
	8: "3º Molar",
}

// Display rows as seen facing the patient: the patient's right on the left.
var (
	upperRow = []int{18, 17, 16, 15, 14, 13, 12, 11, 21, 22, 23, 24, 25, 26, 27, 28}
	lowerRow = []int{48, 47, 46, 45, 44, 43, 42, 41, 31, 32, 33, 34, 35, 36, 37, 38}
)

// ShapeOf derives the crown shape from the last digit of an FDI number.
func ShapeOf(number int) Shape {
	switch number % 10 {
	case 3:
		return Canine
	case 4, 5:
		return Premolar
	case 6, 7, 8:
		return Molar
	}
	return Incisor
}

// ValidNumber accepts the 32 permanent teeth: quadrants 1-4, positions 1-8.
func ValidNumber(number int) bool {
	q, p := number/10, number%10
	return q >= 1 && q <= 4 && p >= 1 && p <= 8
}

func Lookup(number int) (Tooth, bool) {
	if !ValidNumber(number) {
		return Tooth{}, false
	}
	p := number % 10
	return Tooth{
		Number:   number,
		Quadrant: number / 10,
		Position: p,
		Name:     positionNames[p],
		Shape:    ShapeOf(number),
	}, true
}

// Numbers returns all 32 tooth numbers in display order, upper row first.
func Numbers() []int {
	out := make([]int, 0, len(upperRow)+len(lowerRow))
	out = append(out, upperRow...)
	return append(out, lowerRow...)
}

// Teeth returns the full chart in display order.
func Teeth() []Tooth {
	nums := Numbers()
	out := make([]Tooth, len(nums))
	for i, n := range nums {
		out[i], _ = Lookup(n)
	}
	return out
}
