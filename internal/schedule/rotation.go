package schedule

import (
	"time"

	"github.com/nkiryanov/carectl/internal/models"
	"github.com/nkiryanov/carectl/internal/validate"
)

const (
	// Days between the two shifts of a 12x36 rotation
	RotationGapDays = 3

	AutoGeneratedNote = "Escala 12x36 gerada automaticamente"
)

// ExpandToRotation returns the submitted record and its open counterpart three days later.
// The input has to be validated before, an unparseable date is copied to the second record as is.
func ExpandToRotation(in models.ScheduleInput) [2]models.ScheduleInput {
	second := models.ScheduleInput{
		ProfessionalID: in.ProfessionalID,
		PatientID:      in.PatientID,
		Date:           in.Date,
		StartTime:      in.StartTime,
		EndTime:        in.EndTime,
		Status:         models.StatusOpen,
		Notes:          AutoGeneratedNote,
	}

	// Calendar arithmetic in UTC, dates carry no zone
	if d, err := time.Parse(validate.DateLayout, in.Date); err == nil {
		second.Date = d.AddDate(0, 0, RotationGapDays).Format(validate.DateLayout)
	}

	return [2]models.ScheduleInput{in, second}
}
