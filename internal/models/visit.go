package models

type VisitType string

const (
	VisitConsultation VisitType = "CONSULTA"
	VisitUrgent       VisitType = "URGENCIA"
	VisitReturn       VisitType = "RETORNO"
	VisitMaintenance  VisitType = "MANUTENCAO"
	VisitCheckup      VisitType = "CHECKUP"
	VisitAssessment   VisitType = "AVALIACAO"
)

var visitTypeLabels = map[VisitType]string{
	VisitConsultation: "Consulta",
	VisitUrgent:       "Urgência",
	VisitReturn:       "Retorno",
	VisitMaintenance:  "Manutenção",
	VisitCheckup:      "Check-up",
	VisitAssessment:   "Avaliação",
}

func VisitTypes() []VisitType {
	return []VisitType{VisitConsultation, VisitUrgent, VisitReturn, VisitMaintenance, VisitCheckup, VisitAssessment}
}

func (t VisitType) Label() string {
	if l, ok := visitTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

type VisitStatus string

const (
	VisitWaiting    VisitStatus = "AGUARDANDO"
	VisitInProgress VisitStatus = "EM_ATENDIMENTO"
	VisitFinished   VisitStatus = "FINALIZADO"
	VisitCancelled  VisitStatus = "CANCELADO"
)

var visitStatusLabels = map[VisitStatus]string{
	VisitWaiting:    "Aguardando",
	VisitInProgress: "Em atendimento",
	VisitFinished:   "Finalizado",
	VisitCancelled:  "Cancelado",
}

func (s VisitStatus) Label() string {
	if l, ok := visitStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Transitions: AGUARDANDO -> EM_ATENDIMENTO -> FINALIZADO; any unfinished visit may be cancelled.
func (s VisitStatus) CanStart() bool  { return s == VisitWaiting }
func (s VisitStatus) CanFinish() bool { return s == VisitInProgress }
func (s VisitStatus) CanCancel() bool { return s == VisitWaiting || s == VisitInProgress }

type Visit struct {
	ID              int              `json:"id"`
	Patient         *Patient         `json:"paciente,omitempty"`
	Dentist         *User            `json:"dentista,omitempty"`
	StartAt         string           `json:"dataHoraInicio,omitempty"`
	EndAt           string           `json:"dataHoraFim,omitempty"`
	DurationMinutes *int             `json:"duracaoMinutos,omitempty"`
	Type            VisitType        `json:"tipoAtendimento"`
	Status          VisitStatus      `json:"status"`
	Scheduled       bool             `json:"isAgendado"`
	ScheduledAt     string           `json:"dataHoraAgendamento,omitempty"`
	Reason          string           `json:"motivoConsulta,omitempty"`
	Diagnosis       string           `json:"diagnostico,omitempty"`
	Prescription    string           `json:"prescricao,omitempty"`
	InitialNotes    string           `json:"observacoesIniciais,omitempty"`
	FinalNotes      string           `json:"observacoesFinais,omitempty"`
	SuggestedReturn string           `json:"dataRetornoSugerida,omitempty"`
	Procedures      []VisitProcedure `json:"procedimentos,omitempty"`
	CreatedAt       string           `json:"createdAt,omitempty"`
	UpdatedAt       string           `json:"updatedAt,omitempty"`
	ElapsedMinutes  *int             `json:"duracaoAtual,omitempty"`
}

// When returns the timestamp the visit is listed under.
func (v *Visit) When() string {
	if v.Scheduled && v.ScheduledAt != "" {
		return v.ScheduledAt
	}
	return v.StartAt
}

type VisitProcedure struct {
	ID          int        `json:"id"`
	Procedure   *Procedure `json:"procedimento,omitempty"`
	ToothNumber *int       `json:"denteNumero,omitempty"`
	Notes       string     `json:"observacoes,omitempty"`
}

// VisitRequest is the create/update body for /atendimentos
type VisitRequest struct {
	PatientID    int         `json:"pacienteId"`
	DentistID    int         `json:"dentistaId"`
	Type         VisitType   `json:"tipoAtendimento,omitempty"`
	Status       VisitStatus `json:"status,omitempty"`
	Scheduled    bool        `json:"isAgendado"`
	ScheduledAt  string      `json:"dataHoraAgendamento,omitempty"`
	Reason       string      `json:"motivoConsulta,omitempty"`
	InitialNotes string      `json:"observacoesIniciais,omitempty"`
}

// FinishVisitRequest is the body of PATCH /atendimentos/{id}/finalizar
type FinishVisitRequest struct {
	Diagnosis       string                  `json:"diagnostico,omitempty"`
	Prescription    string                  `json:"prescricao,omitempty"`
	FinalNotes      string                  `json:"observacoesFinais,omitempty"`
	SuggestedReturn string                  `json:"dataRetornoSugerida,omitempty"`
	Procedures      []VisitProcedureRequest `json:"procedimentos,omitempty"`
}

type VisitProcedureRequest struct {
	ProcedureID int    `json:"procedimentoId"`
	ToothNumber *int   `json:"denteNumero,omitempty"`
	Notes       string `json:"observacoes,omitempty"`
}
