package schedule

import (
	"time"

	"github.com/nkiryanov/carectl/internal/models"
	"github.com/nkiryanov/carectl/internal/validate"
)

// EffectiveStatus is the status to show for a record at now.
// A pending or confirmed record whose end (date and end time, local time) has passed is done.
// Every other status, missing or unparseable date or time, leave status unchanged.
func EffectiveStatus(status string, date string, endTime string, now time.Time) string {
	if status != models.StatusPending && status != models.StatusConfirmed {
		return status
	}

	end, ok := endsAt(date, endTime, now.Location())
	if !ok {
		return status
	}

	if end.Before(now) {
		return models.StatusDone
	}
	return status
}

func endsAt(date string, endTime string, loc *time.Location) (time.Time, bool) {
	if date == "" || endTime == "" {
		return time.Time{}, false
	}

	for _, layout := range []string{validate.TimeLayout, validate.TimeSecondsLayout} {
		t, err := time.ParseInLocation(validate.DateLayout+" "+layout, date+" "+endTime, loc)
		if err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// Project the effective status onto schedules
func withEffectiveStatus(schedules []models.Schedule, now time.Time) []models.Schedule {
	out := make([]models.Schedule, len(schedules))
	for i, s := range schedules {
		s.Status = EffectiveStatus(s.Status, s.Date, s.EndTime, now)
		out[i] = s
	}
	return out
}

// AppointmentsWithEffectiveStatus projects the effective status onto appointments
func AppointmentsWithEffectiveStatus(appointments []models.Appointment, now time.Time) []models.Appointment {
	out := make([]models.Appointment, len(appointments))
	for i, a := range appointments {
		a.Status = EffectiveStatus(a.Status, a.Date, a.EndTime, now)
		out[i] = a
	}
	return out
}
