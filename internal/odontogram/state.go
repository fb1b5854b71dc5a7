package odontogram

import (
	"sort"
	"time"

	"odonto-console/internal/models"
	"odonto-console/internal/timeutil"
)

// Slot is one tooth position on the chart with its latest record, if any.
type Slot struct {
	Tooth   Tooth
	Latest  *models.ToothRecord
	Records int
}

func (s Slot) Recorded() bool { return s.Latest != nil }

// Status is the latest recorded condition, or healthy when nothing was recorded.
func (s Slot) Status() models.ToothStatus {
	if s.Latest == nil {
		return models.ToothHealthy
	}
	return s.Latest.Status
}

func (s Slot) Faces() []models.Face {
	if s.Latest == nil {
		return nil
	}
	return s.Latest.Faces()
}

type State struct {
	slots map[int]*Slot
}

// CurrentState folds a patient's history into one slot per tooth. The latest
// record is the one with the greatest timestamp; equal timestamps resolve to
// the greater record id. Records for numbers outside the chart are ignored.
func CurrentState(records []models.ToothRecord) *State {
	st := &State{slots: make(map[int]*Slot, 32)}
	for _, t := range Teeth() {
		st.slots[t.Number] = &Slot{Tooth: t}
	}

	latestAt := make(map[int]time.Time, 32)
	for i := range records {
		rec := &records[i]
		slot, ok := st.slots[rec.ToothNumber]
		if !ok {
			continue
		}
		slot.Records++

		at := recordTime(rec)
		if slot.Latest == nil || newer(at, rec.ID, latestAt[rec.ToothNumber], slot.Latest.ID) {
			slot.Latest = rec
			latestAt[rec.ToothNumber] = at
		}
	}
	return st
}

func newer(at time.Time, id int, curAt time.Time, curID int) bool {
	if at.Equal(curAt) {
		return id > curID
	}
	return at.After(curAt)
}

// Newer reports whether a is more recent than b under the same ordering
// CurrentState uses.
func Newer(a, b *models.ToothRecord) bool {
	return newer(recordTime(a), a.ID, recordTime(b), b.ID)
}

// SortNewestFirst orders a history list for display.
func SortNewestFirst(records []models.ToothRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return Newer(&records[i], &records[j])
	})
}

// recordTime treats an unparsable timestamp as older than any real one.
func recordTime(rec *models.ToothRecord) time.Time {
	t, err := timeutil.ParseBackend(rec.RecordedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (s *State) Slot(number int) (Slot, bool) {
	slot, ok := s.slots[number]
	if !ok {
		return Slot{}, false
	}
	return *slot, true
}

// Slots returns exactly 32 slots in display order.
func (s *State) Slots() []Slot {
	return s.row(Numbers())
}

func (s *State) UpperRow() []Slot { return s.row(upperRow) }
func (s *State) LowerRow() []Slot { return s.row(lowerRow) }

func (s *State) row(numbers []int) []Slot {
	out := make([]Slot, len(numbers))
	for i, n := range numbers {
		out[i] = *s.slots[n]
	}
	return out
}

type Summary struct {
	Recorded       int
	Healthy        int
	UnderTreatment int
	NeedsAttention int
	// Problems lists recorded teeth that are neither healthy nor absent.
	Problems []Slot
}

func (s *State) Summary() Summary {
	var sum Summary
	for _, slot := range s.Slots() {
		if !slot.Recorded() {
			continue
		}
		sum.Recorded++
		status := slot.Status()
		switch {
		case status == models.ToothHealthy:
			sum.Healthy++
		case status.UnderTreatment():
			sum.UnderTreatment++
		case status.NeedsAttention():
			sum.NeedsAttention++
		}
		if status != models.ToothHealthy && status != models.ToothMissing {
			sum.Problems = append(sum.Problems, slot)
		}
	}
	return sum
}
