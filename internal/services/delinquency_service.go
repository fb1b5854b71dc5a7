package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"odonto-console/internal/models"
	"odonto-console/internal/timeutil"
	"odonto-console/internal/validators"
)

// Delinquent is one patient with overdue unpaid installments.
type Delinquent struct {
	Patient      models.Patient
	Installments []models.Installment
	Total        float64
	Count        int
	DaysLate     int
}

// Severity is the badge tone: up to 30 days yellow, up to 60 orange, beyond red.
func (d *Delinquent) Severity() string {
	switch {
	case d.DaysLate <= 30:
		return "yellow"
	case d.DaysLate <= 60:
		return "orange"
	}
	return "red"
}

// DelayBucket is the delay filter of the delinquents screen.
type DelayBucket string

const (
	DelayAll     DelayBucket = ""
	DelayWeek    DelayBucket = "7"
	DelayFort    DelayBucket = "15"
	DelayMonth   DelayBucket = "30"
	DelayTwoMon  DelayBucket = "60"
	DelayOverTwo DelayBucket = "60+"
)

func DelayBuckets() []DelayBucket {
	return []DelayBucket{DelayWeek, DelayFort, DelayMonth, DelayTwoMon, DelayOverTwo}
}

func (b DelayBucket) Label() string {
	switch b {
	case DelayWeek:
		return "Até 7 dias"
	case DelayFort:
		return "8 a 15 dias"
	case DelayMonth:
		return "16 a 30 dias"
	case DelayTwoMon:
		return "31 a 60 dias"
	case DelayOverTwo:
		return "Mais de 60 dias"
	}
	return "Todos"
}

func (b DelayBucket) Contains(days int) bool {
	switch b {
	case DelayWeek:
		return days <= 7
	case DelayFort:
		return days > 7 && days <= 15
	case DelayMonth:
		return days > 15 && days <= 30
	case DelayTwoMon:
		return days > 30 && days <= 60
	case DelayOverTwo:
		return days > 60
	}
	return true
}

type DelinquencyService struct {
	Installments *InstallmentService
}

func NewDelinquencyService(installments *InstallmentService) *DelinquencyService {
	return &DelinquencyService{Installments: installments}
}

// List loads every installment and groups the overdue ones by patient.
func (s *DelinquencyService) List(ctx context.Context, now time.Time) ([]Delinquent, error) {
	items, err := s.Installments.All(ctx)
	if err != nil {
		return nil, err
	}
	return GroupDelinquents(items, now), nil
}

// GroupDelinquents keeps PENDENTE and ATRASADO installments due before today
// and groups them by patient, largest delay first. Installments without a
// nested patient cannot be attributed and are skipped.
func GroupDelinquents(items []models.Installment, now time.Time) []Delinquent {
	today := timeutil.StartOfDay(now)
	byPatient := make(map[int]*Delinquent)
	var order []int

	for _, inst := range items {
		if !inst.Status.Unpaid() || inst.Payment == nil || inst.Payment.Patient == nil {
			continue
		}
		due, err := timeutil.ParseBackend(inst.DueDate)
		if err != nil || !due.Before(today) {
			continue
		}

		pid := inst.Payment.Patient.ID
		d, ok := byPatient[pid]
		if !ok {
			d = &Delinquent{Patient: *inst.Payment.Patient}
			byPatient[pid] = d
			order = append(order, pid)
		}
		d.Installments = append(d.Installments, inst)
		d.Total += inst.Amount
		d.Count++
		if days := timeutil.DaysBetween(due, today); days > d.DaysLate {
			d.DaysLate = days
		}
	}

	out := make([]Delinquent, 0, len(order))
	for _, pid := range order {
		d := byPatient[pid]
		d.Total = validators.RoundCents(d.Total)
		out = append(out, *d)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DaysLate > out[j].DaysLate })
	return out
}

// FilterDelinquents applies the name search and the delay bucket.
func FilterDelinquents(list []Delinquent, term string, bucket DelayBucket) []Delinquent {
	term = strings.ToLower(strings.TrimSpace(term))
	var out []Delinquent
	for _, d := range list {
		if term != "" && !strings.Contains(strings.ToLower(d.Patient.Name), term) {
			continue
		}
		if !bucket.Contains(d.DaysLate) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// DelinquencyTotals is the summary row above the list.
type DelinquencyTotals struct {
	Patients     int
	Installments int
	Amount       float64
}

func SumDelinquents(list []Delinquent) DelinquencyTotals {
	var t DelinquencyTotals
	for _, d := range list {
		t.Patients++
		t.Installments += d.Count
		t.Amount += d.Total
	}
	t.Amount = validators.RoundCents(t.Amount)
	return t
}
