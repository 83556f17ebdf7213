package schedule

import (
	"errors"
	"time"

	"github.com/nkiryanov/carectl/internal/models"
	"github.com/nkiryanov/carectl/internal/validate"
)

// Validate reports every invalid field of in, keyed by its json name.
// Start and end are compared as times of day, so 07:00 equals 07:00:00.
func Validate(in models.ScheduleInput) error {
	err := validate.Struct(in)

	var fields validate.Errors
	switch {
	case err == nil:
		fields = validate.Errors{}
	case errors.As(err, &fields):
	default:
		return err
	}

	// Also catches 07:00 against 07:00:00
	if sameTimeOfDay(in.StartTime, in.EndTime) {
		fields["horarioFim"] = "End time must differ from start time"
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

func sameTimeOfDay(a string, b string) bool {
	ta, okA := parseTimeOfDay(a)
	tb, okB := parseTimeOfDay(b)
	return okA && okB && ta.Equal(tb)
}

func parseTimeOfDay(s string) (time.Time, bool) {
	for _, layout := range []string{validate.TimeLayout, validate.TimeSecondsLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
