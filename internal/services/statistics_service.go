package services

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"sort"
	"time"

	"odonto-console/internal/api"
	"odonto-console/internal/models"
	"odonto-console/internal/timeutil"
)

type StatisticsService struct {
	API *api.Client
}

func NewStatisticsService(client *api.Client) *StatisticsService {
	return &StatisticsService{API: client}
}

// ForPeriod loads the dashboard numbers. start and end ("2006-01-02") are
// only read for the custom period.
func (s *StatisticsService) ForPeriod(ctx context.Context, dentistID int, period models.StatsPeriod, start, end string) (*models.PaymentStats, error) {
	base := idPath("/estatisticas/dentista/%d", dentistID)

	var (
		path = base + "/mes"
		q    url.Values
	)
	switch period {
	case models.PeriodToday:
		path = base + "/hoje"
	case models.PeriodYear:
		path = base + "/ano"
	case models.PeriodCustom:
		from, to, err := customRange(start, end)
		if err != nil {
			return nil, err
		}
		path = base
		q = periodQuery(from.Format(timeutil.DateTimeLayout), to.Format(timeutil.DateTimeLayout))
	}

	var stats models.PaymentStats
	if err := s.API.Get(ctx, path, q, &stats); err != nil {
		return nil, fmt.Errorf("statistics %s: %w", period, err)
	}
	return &stats, nil
}

func customRange(start, end string) (time.Time, time.Time, error) {
	from, err := timeutil.ParseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, invalid("dataInicio", "Informe a data inicial")
	}
	to, err := timeutil.ParseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, invalid("dataFim", "Informe a data final")
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, invalid("dataFim", "A data final deve ser posterior à inicial")
	}
	return timeutil.StartOfDay(from), timeutil.EndOfDay(to), nil
}

// MonthComparison holds the current month against the previous one.
type MonthComparison struct {
	Current  *models.PaymentStats
	Previous *models.PaymentStats
	Received Variation
}

// Variation is a percentage change rendered as magnitude and direction.
type Variation struct {
	Percent float64
	Up      bool
}

// CompareMonths loads this month and the whole previous calendar month.
func (s *StatisticsService) CompareMonths(ctx context.Context, dentistID int, now time.Time) (*MonthComparison, error) {
	current, err := s.ForPeriod(ctx, dentistID, models.PeriodMonth, "", "")
	if err != nil {
		return nil, err
	}
	from, to := PreviousMonth(now)
	var previous models.PaymentStats
	q := periodQuery(from.Format(timeutil.DateTimeLayout), to.Format(timeutil.DateTimeLayout))
	if err := s.API.Get(ctx, idPath("/estatisticas/dentista/%d", dentistID), q, &previous); err != nil {
		return nil, fmt.Errorf("statistics previous month: %w", err)
	}
	return &MonthComparison{
		Current:  current,
		Previous: &previous,
		Received: Change(current.TotalReceived, previous.TotalReceived),
	}, nil
}

// PreviousMonth returns the first and last instants of the month before now.
func PreviousMonth(now time.Time) (time.Time, time.Time) {
	l := now.In(timeutil.BRT)
	first := time.Date(l.Year(), l.Month()-1, 1, 0, 0, 0, 0, timeutil.BRT)
	last := time.Date(l.Year(), l.Month(), 0, 23, 59, 59, 0, timeutil.BRT)
	return first, last
}

// Change computes the variation from previous to current. From zero any
// positive value counts as +100%.
func Change(current, previous float64) Variation {
	if previous == 0 {
		return Variation{Percent: 100, Up: current > 0}
	}
	v := (current - previous) / previous * 100
	return Variation{Percent: math.Abs(v), Up: v >= 0}
}

// Ranked is one label/amount pair of a stats map, for ordered display.
type Ranked struct {
	Label  string
	Amount float64
}

// RankDesc orders a stats map by amount, largest first, keeping at most n.
func RankDesc(m map[string]float64, n int) []Ranked {
	out := make([]Ranked, 0, len(m))
	for k, v := range m {
		out = append(out, Ranked{Label: k, Amount: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount == out[j].Amount {
			return out[i].Label < out[j].Label
		}
		return out[i].Amount > out[j].Amount
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Chronological orders the monthly trend by its key ("2006-01" style keys sort as text).
func Chronological(m map[string]float64) []Ranked {
	out := make([]Ranked, 0, len(m))
	for k, v := range m {
		out = append(out, Ranked{Label: k, Amount: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}
