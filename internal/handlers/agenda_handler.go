package handlers

import (
	"net/http"
	"strconv"
	"time"

	"odonto-console/internal/models"
	"odonto-console/internal/services"
	"odonto-console/internal/timeutil"
)

type AgendaHandler struct {
	*Base
	Visits *services.VisitService
	Users  *services.UserService
}

func NewAgendaHandler(base *Base, visits *services.VisitService, users *services.UserService) *AgendaHandler {
	return &AgendaHandler{Base: base, Visits: visits, Users: users}
}

// CalendarDay is one cell of the month grid.
type CalendarDay struct {
	Date    time.Time
	InMonth bool
	Today   bool
	Count   int
}

func (d CalendarDay) Key() string { return d.Date.Format(timeutil.DateLayout) }

type agendaView struct {
	Dentists  []models.User
	DentistID int
	Month     time.Time
	Prev      time.Time
	Next      time.Time
	Weeks     [][]CalendarDay
	Day       time.Time
	Visits    []models.Visit
}

// Agenda renders a dentist's month calendar with per-day counts and the
// visits of the selected day.
func (h *AgendaHandler) Agenda(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := currentUser(r)
	q := r.URL.Query()

	dentists, err := h.Users.Dentists(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	now := timeutil.Now()
	v := agendaView{Dentists: dentists, DentistID: formInt(r, "dentista")}
	if v.DentistID == 0 {
		if user.Role == models.RoleDentist {
			v.DentistID = user.ID
		} else if len(dentists) > 0 {
			v.DentistID = dentists[0].ID
		}
	}

	v.Day = timeutil.StartOfDay(now)
	if d, err := timeutil.ParseDate(q.Get("dia")); err == nil {
		v.Day = d
	}
	v.Month = time.Date(v.Day.Year(), v.Day.Month(), 1, 0, 0, 0, 0, timeutil.BRT)
	if m, err := strconv.Atoi(q.Get("mes")); err == nil && m >= 1 && m <= 12 {
		if y, err := strconv.Atoi(q.Get("ano")); err == nil && y > 1900 {
			v.Month = time.Date(y, time.Month(m), 1, 0, 0, 0, 0, timeutil.BRT)
		}
	}
	v.Prev = v.Month.AddDate(0, -1, 0)
	v.Next = v.Month.AddDate(0, 1, 0)

	p := NewPage(r, "Agendas", "/agendas")
	p.Data = &v
	if v.DentistID == 0 {
		v.Weeks = MonthGrid(v.Month, now, nil)
		h.render(w, "agenda.html", p)
		return
	}

	counts, err := h.Visits.CalendarCounts(ctx, v.DentistID, int(v.Month.Month()), v.Month.Year())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	v.Weeks = MonthGrid(v.Month, now, counts)

	visits, err := h.Visits.Agenda(ctx, v.DentistID,
		timeutil.StartOfDay(v.Day).Format(timeutil.DateTimeLayout),
		timeutil.EndOfDay(v.Day).Format(timeutil.DateTimeLayout))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	services.SortVisits(visits)
	// earliest first reads better on a day view
	for i, j := 0, len(visits)-1; i < j; i, j = i+1, j-1 {
		visits[i], visits[j] = visits[j], visits[i]
	}
	v.Visits = visits
	h.render(w, "agenda.html", p)
}

// MonthGrid lays out the weeks (Sunday first) covering month, filling the
// per-day visit counts keyed by "2006-01-02".
func MonthGrid(month, now time.Time, counts map[string]int) [][]CalendarDay {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, timeutil.BRT)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	today := timeutil.StartOfDay(now).Format(timeutil.DateLayout)

	var weeks [][]CalendarDay
	for day := start; ; {
		week := make([]CalendarDay, 7)
		for i := range week {
			key := day.Format(timeutil.DateLayout)
			week[i] = CalendarDay{
				Date:    day,
				InMonth: day.Month() == first.Month(),
				Today:   key == today,
				Count:   counts[key],
			}
			day = day.AddDate(0, 0, 1)
		}
		weeks = append(weeks, week)
		if day.Month() != first.Month() {
			break
		}
	}
	return weeks
}
