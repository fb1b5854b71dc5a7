package services

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"odonto-console/internal/api"
	"odonto-console/internal/models"
	"odonto-console/internal/timeutil"
)

type VisitService struct {
	API *api.Client
}

func NewVisitService(client *api.Client) *VisitService {
	return &VisitService{API: client}
}

func (s *VisitService) list(ctx context.Context, path string, query url.Values) ([]models.Visit, error) {
	var visits []models.Visit
	if err := s.API.Get(ctx, path, query, &visits); err != nil {
		return nil, fmt.Errorf("list visits %s: %w", path, err)
	}
	return visits, nil
}

func (s *VisitService) All(ctx context.Context) ([]models.Visit, error) {
	return s.list(ctx, "/atendimentos", nil)
}

func (s *VisitService) ForDentist(ctx context.Context, dentistID int) ([]models.Visit, error) {
	return s.list(ctx, idPath("/atendimentos/dentista/%d", dentistID), nil)
}

func (s *VisitService) Today(ctx context.Context) ([]models.Visit, error) {
	return s.list(ctx, "/atendimentos/hoje", nil)
}

func (s *VisitService) TodayForDentist(ctx context.Context, dentistID int) ([]models.Visit, error) {
	return s.list(ctx, idPath("/atendimentos/hoje/dentista/%d", dentistID), nil)
}

func (s *VisitService) InProgress(ctx context.Context) ([]models.Visit, error) {
	return s.list(ctx, "/atendimentos/em-andamento", nil)
}

func (s *VisitService) InProgressForDentist(ctx context.Context, dentistID int) ([]models.Visit, error) {
	return s.list(ctx, idPath("/atendimentos/em-andamento/dentista/%d", dentistID), nil)
}

func (s *VisitService) ForPatient(ctx context.Context, patientID int) ([]models.Visit, error) {
	return s.list(ctx, idPath("/atendimentos/paciente/%d", patientID), nil)
}

// PatientHistory returns the patient's finished visits.
func (s *VisitService) PatientHistory(ctx context.Context, patientID int) ([]models.Visit, error) {
	return s.list(ctx, idPath("/atendimentos/paciente/%d/historico", patientID), nil)
}

func (s *VisitService) Period(ctx context.Context, start, end string) ([]models.Visit, error) {
	return s.list(ctx, "/atendimentos/periodo", periodQuery(start, end))
}

func (s *VisitService) PeriodForDentist(ctx context.Context, dentistID int, start, end string) ([]models.Visit, error) {
	return s.list(ctx, idPath("/atendimentos/periodo/dentista/%d", dentistID), periodQuery(start, end))
}

// Scheduled lists future appointments.
func (s *VisitService) Scheduled(ctx context.Context) ([]models.Visit, error) {
	return s.list(ctx, "/atendimentos/agendamentos", nil)
}

// Agenda lists a dentist's visits between start and end (backend date-times).
func (s *VisitService) Agenda(ctx context.Context, dentistID int, start, end string) ([]models.Visit, error) {
	return s.list(ctx, idPath("/atendimentos/agenda/%d", dentistID), periodQuery(start, end))
}

// CalendarCounts returns visits per day ("2006-01-02" -> count) for a month.
func (s *VisitService) CalendarCounts(ctx context.Context, dentistID, month, year int) (map[string]int, error) {
	q := url.Values{"dentistaId": {itoa(dentistID)}, "mes": {itoa(month)}, "ano": {itoa(year)}}
	counts := map[string]int{}
	if err := s.API.Get(ctx, "/atendimentos/agenda/calendario", q, &counts); err != nil {
		return nil, fmt.Errorf("calendar counts: %w", err)
	}
	return counts, nil
}

// Visible returns what the user's list screen shows: dentists only see their
// own visits; allDays widens the list beyond today.
func (s *VisitService) Visible(ctx context.Context, user *models.User, allDays bool) ([]models.Visit, error) {
	var (
		visits []models.Visit
		err    error
	)
	dentist := user.Role == models.RoleDentist
	switch {
	case allDays && dentist:
		visits, err = s.ForDentist(ctx, user.ID)
	case allDays:
		visits, err = s.All(ctx)
	case dentist:
		visits, err = s.TodayForDentist(ctx, user.ID)
	default:
		visits, err = s.Today(ctx)
	}
	if err != nil {
		return nil, err
	}
	SortVisits(visits)
	return visits, nil
}

func (s *VisitService) Get(ctx context.Context, id int) (*models.Visit, error) {
	var v models.Visit
	if err := s.API.Get(ctx, idPath("/atendimentos/%d", id), nil, &v); err != nil {
		return nil, fmt.Errorf("get visit %d: %w", id, err)
	}
	return &v, nil
}

func (s *VisitService) Create(ctx context.Context, req *models.VisitRequest) (*models.Visit, error) {
	if err := ValidateVisit(req); err != nil {
		return nil, err
	}
	var v models.Visit
	if err := s.API.Post(ctx, "/atendimentos", req, &v); err != nil {
		return nil, fmt.Errorf("create visit: %w", err)
	}
	return &v, nil
}

func (s *VisitService) Update(ctx context.Context, id int, req *models.VisitRequest) (*models.Visit, error) {
	if err := ValidateVisit(req); err != nil {
		return nil, err
	}
	var v models.Visit
	if err := s.API.Put(ctx, idPath("/atendimentos/%d", id), req, &v); err != nil {
		return nil, fmt.Errorf("update visit %d: %w", id, err)
	}
	return &v, nil
}

func (s *VisitService) Delete(ctx context.Context, id int) error {
	if err := s.API.Delete(ctx, idPath("/atendimentos/%d", id)); err != nil {
		return fmt.Errorf("delete visit %d: %w", id, err)
	}
	return nil
}

func (s *VisitService) Start(ctx context.Context, id int) (*models.Visit, error) {
	return s.transition(ctx, id, "iniciar", nil, nil)
}

func (s *VisitService) Finish(ctx context.Context, id int, req *models.FinishVisitRequest) (*models.Visit, error) {
	return s.transition(ctx, id, "finalizar", nil, req)
}

func (s *VisitService) Cancel(ctx context.Context, id int) (*models.Visit, error) {
	return s.transition(ctx, id, "cancelar", nil, nil)
}

// Reschedule moves a visit; when is an HTML datetime-local value.
func (s *VisitService) Reschedule(ctx context.Context, id int, when string) (*models.Visit, error) {
	t, err := time.ParseInLocation(timeutil.HTMLDateTimeLocal, when, timeutil.BRT)
	if err != nil {
		return nil, invalid("novaDataHora", "Informe a nova data e hora")
	}
	q := url.Values{"novaDataHora": {t.Format(timeutil.DateTimeLayout)}}
	return s.transition(ctx, id, "reagendar", q, nil)
}

func (s *VisitService) transition(ctx context.Context, id int, action string, q url.Values, body any) (*models.Visit, error) {
	var v models.Visit
	if err := s.API.Patch(ctx, fmt.Sprintf("/atendimentos/%d/%s", id, action), q, body, &v); err != nil {
		return nil, fmt.Errorf("%s visit %d: %w", action, id, err)
	}
	return &v, nil
}

func ValidateVisit(req *models.VisitRequest) error {
	if req.PatientID <= 0 {
		return invalid("pacienteId", "Selecione um paciente")
	}
	if req.DentistID <= 0 {
		return invalid("dentistaId", "Selecione um dentista")
	}
	if req.Type == "" {
		req.Type = models.VisitConsultation
	}
	if req.Scheduled {
		t, err := time.ParseInLocation(timeutil.HTMLDateTimeLocal, req.ScheduledAt, timeutil.BRT)
		if err != nil {
			return invalid("dataHoraAgendamento", "Informe data e hora do agendamento")
		}
		req.ScheduledAt = t.Format(timeutil.DateTimeLayout)
	} else {
		req.ScheduledAt = ""
	}
	req.Reason = strings.TrimSpace(req.Reason)
	return nil
}

// SortVisits orders by listing time, newest first.
func SortVisits(visits []models.Visit) {
	sort.SliceStable(visits, func(i, j int) bool {
		return visits[i].When() > visits[j].When()
	})
}

// VisitCounts tallies a list by status for the summary cards.
func VisitCounts(visits []models.Visit) map[models.VisitStatus]int {
	counts := make(map[models.VisitStatus]int, 4)
	for _, v := range visits {
		counts[v.Status]++
	}
	return counts
}

// FilterVisits keeps visits with the given status; empty keeps all.
func FilterVisits(visits []models.Visit, status models.VisitStatus) []models.Visit {
	if status == "" {
		return visits
	}
	var out []models.Visit
	for _, v := range visits {
		if v.Status == status {
			out = append(out, v)
		}
	}
	return out
}
