package models

// PaymentStats is the dashboard summary returned by /estatisticas
type PaymentStats struct {
	TotalReceived float64 `json:"totalRecebido"`
	TotalPending  float64 `json:"totalPendente"`
	TotalOverall  float64 `json:"totalGeral"`

	PaymentCount     int `json:"totalPagamentos"`
	PatientCount     int `json:"totalPacientes"`
	InstallmentsPaid int `json:"parcelasPagas"`
	InstallmentsOpen int `json:"parcelasPendentes"`
	InstallmentsLate int `json:"parcelasAtrasadas"`

	ByMethod      map[string]float64 `json:"totalPorMetodo"`
	MonthlyTrend  map[string]float64 `json:"evolucaoMensal"`
	AverageTicket float64            `json:"ticketMedio"`
	TopPatients   map[string]float64 `json:"topPacientes"`
}

// StatsPeriod selects the dashboard window
type StatsPeriod string

const (
	PeriodToday  StatsPeriod = "hoje"
	PeriodMonth  StatsPeriod = "mes"
	PeriodYear   StatsPeriod = "ano"
	PeriodCustom StatsPeriod = "personalizado"
)

func (p StatsPeriod) Valid() bool {
	switch p {
	case PeriodToday, PeriodMonth, PeriodYear, PeriodCustom:
		return true
	}
	return false
}
