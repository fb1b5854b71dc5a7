package handlers

import (
	"net/http"

	"odonto-console/internal/services"
	"odonto-console/internal/timeutil"
)

type DelinquentHandler struct {
	*Base
	Delinquency *services.DelinquencyService
}

func NewDelinquentHandler(base *Base, delinquency *services.DelinquencyService) *DelinquentHandler {
	return &DelinquentHandler{Base: base, Delinquency: delinquency}
}

type delinquentView struct {
	Term        string
	Bucket      services.DelayBucket
	Buckets     []services.DelayBucket
	Delinquents []services.Delinquent
	Totals      services.DelinquencyTotals
}

// List groups overdue installments by patient, filtered by name and delay.
func (h *DelinquentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	v := delinquentView{
		Term:    q.Get("q"),
		Bucket:  services.DelayBucket(q.Get("atraso")),
		Buckets: services.DelayBuckets(),
	}
	list, err := h.Delinquency.List(r.Context(), timeutil.Now())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	v.Delinquents = services.FilterDelinquents(list, v.Term, v.Bucket)
	v.Totals = services.SumDelinquents(v.Delinquents)

	p := NewPage(r, "Inadimplentes", "/inadimplentes")
	p.Data = v
	h.render(w, "delinquents.html", p)
}
