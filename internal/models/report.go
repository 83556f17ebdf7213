package models

const (
	ReportFormatPDF  = "pdf"
	ReportFormatCSV  = "csv"
	ReportFormatJSON = "json"
)

// Report downloaded from the backend as is
type Report struct {
	Kind        string
	Format      string
	ContentType string
	Body        []byte
}

type DayCount struct {
	Date  string `json:"data" yaml:"data"`
	Count int    `json:"count" yaml:"count"`
}

type DashboardStats struct {
	TotalPatients    int        `json:"totalPacientes" yaml:"totalPacientes"`
	TotalVisits      int        `json:"totalVisitas" yaml:"totalVisitas"`
	VisitsToday      int        `json:"visitasHoje" yaml:"visitasHoje"`
	VisitsLast30Days []DayCount `json:"visitasUltimos30Dias" yaml:"visitasUltimos30Dias"`
}
