package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"rsc.io/pdf"

	"github.com/nkiryanov/carectl/internal/models"
)

// Report kinds, named after backend paths
const (
	ReportPatients      = "pacientes"
	ReportProfessionals = "profissionais"
	ReportAppointments  = "agendamentos"
	ReportSchedules     = "escalas"
)

// Filters of a report, every one is optional and not every kind takes all
type ReportParams struct {
	Format    string
	Status    string
	Specialty string
	From      string
	To        string
	// Month formatted as YYYY-MM, schedules only
	Month string
}

type ReportsService struct {
	conn *conn
}

func (s *ReportsService) Download(ctx context.Context, kind string, params ReportParams) (models.Report, error) {
	switch kind {
	case ReportPatients, ReportProfessionals, ReportAppointments, ReportSchedules:
	default:
		return models.Report{}, fmt.Errorf("unknown report %q", kind)
	}

	format := strings.ToLower(params.Format)
	if format == "" {
		format = models.ReportFormatPDF
	}
	fallbackType, ok := contentTypes[format]
	if !ok {
		return models.Report{}, fmt.Errorf("unknown report format %q", params.Format)
	}

	q := query(
		"formato", format,
		"status", params.Status,
		"especialidade", params.Specialty,
		"dataInicio", params.From,
		"dataFim", params.To,
		"mes", params.Month,
	)

	body, contentType, err := s.conn.download(ctx, "/relatorios/"+kind, q)
	if err != nil {
		return models.Report{}, err
	}
	if contentType == "" {
		contentType = fallbackType
	}

	return models.Report{Kind: kind, Format: format, ContentType: contentType, Body: body}, nil
}

var contentTypes = map[string]string{
	models.ReportFormatPDF:  "application/pdf",
	models.ReportFormatCSV:  "text/csv",
	models.ReportFormatJSON: "application/json",
}

// InspectPDF returns the page count of a PDF report
func InspectPDF(body []byte) (pages int, err error) {
	// pdf reader panics on some malformed documents
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return 0, fmt.Errorf("failed to read pdf. Err: %w", err)
	}

	return r.NumPage(), nil
}
