package handlers

import (
	"net/http"

	"odonto-console/internal/models"
	"odonto-console/internal/services"
)

type DashboardHandler struct {
	*Base
	Stats *services.StatisticsService
}

func NewDashboardHandler(base *Base, stats *services.StatisticsService) *DashboardHandler {
	return &DashboardHandler{Base: base, Stats: stats}
}

type dashboardView struct {
	Period      models.StatsPeriod
	Periods     []models.StatsPeriod
	Start       string
	End         string
	Stats       *models.PaymentStats
	Methods     []services.Ranked
	Trend       []services.Ranked
	TrendMax    float64
	TopPatients []services.Ranked
}

// Dashboard shows the signed-in dentist's payment statistics for the chosen period.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	q := r.URL.Query()
	v := dashboardView{
		Period:  models.StatsPeriod(q.Get("periodo")),
		Periods: []models.StatsPeriod{models.PeriodToday, models.PeriodMonth, models.PeriodYear, models.PeriodCustom},
		Start:   q.Get("inicio"),
		End:     q.Get("fim"),
	}
	if !v.Period.Valid() {
		v.Period = models.PeriodMonth
	}
	p := NewPage(r, "Dashboard", "/dashboard")
	p.Data = &v

	// the custom period waits until both dates are filled in
	if v.Period == models.PeriodCustom && (v.Start == "" || v.End == "") {
		h.render(w, "dashboard.html", p)
		return
	}

	stats, err := h.Stats.ForPeriod(r.Context(), user.ID, v.Period, v.Start, v.End)
	if err != nil {
		h.form(w, r, "dashboard.html", p, err)
		return
	}
	v.Stats = stats
	v.Methods = services.RankDesc(stats.ByMethod, 0)
	v.Trend = services.Chronological(stats.MonthlyTrend)
	for _, t := range v.Trend {
		if t.Amount > v.TrendMax {
			v.TrendMax = t.Amount
		}
	}
	v.TopPatients = services.RankDesc(stats.TopPatients, 5)
	h.render(w, "dashboard.html", p)
}
