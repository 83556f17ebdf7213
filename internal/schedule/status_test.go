package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/carectl/internal/apperrors"
	"github.com/nkiryanov/carectl/internal/models"
	"github.com/nkiryanov/carectl/internal/validate"
)

func TestEffectiveStatus(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	now := time.Date(2024, 5, 10, 14, 0, 0, 0, loc)

	tests := []struct {
		name     string
		status   string
		date     string
		endTime  string
		expected string
	}{
		{"pending ended yesterday", models.StatusPending, "2024-05-09", "19:00", models.StatusDone},
		{"confirmed ended today", models.StatusConfirmed, "2024-05-10", "13:59:00", models.StatusDone},
		{"pending ends later today", models.StatusPending, "2024-05-10", "19:00", models.StatusPending},
		{"confirmed ends exactly now", models.StatusConfirmed, "2024-05-10", "14:00", models.StatusConfirmed},
		{"confirmed tomorrow", models.StatusConfirmed, "2024-05-11", "07:00", models.StatusConfirmed},
		{"open in the past kept", models.StatusOpen, "2024-05-01", "19:00", models.StatusOpen},
		{"cancelled in the past kept", models.StatusCancelled, "2024-05-01", "19:00", models.StatusCancelled},
		{"done kept", models.StatusDone, "2024-05-01", "19:00", models.StatusDone},
		{"missing date", models.StatusPending, "", "19:00", models.StatusPending},
		{"missing end time", models.StatusPending, "2024-05-01", "", models.StatusPending},
		{"garbage date", models.StatusPending, "10/05/2024", "19:00", models.StatusPending},
		{"garbage time", models.StatusPending, "2024-05-01", "7pm", models.StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EffectiveStatus(tt.status, tt.date, tt.endTime, now)
			require.Equal(t, tt.expected, got)
		})
	}

	t.Run("end time read in now location", func(t *testing.T) {
		// Same instant is 17:30 in UTC but 14:30 in BRT
		utcNow := time.Date(2024, 5, 10, 17, 30, 0, 0, time.UTC)

		require.Equal(t, models.StatusDone, EffectiveStatus(models.StatusPending, "2024-05-10", "15:00", utcNow))
		require.Equal(t, models.StatusPending, EffectiveStatus(models.StatusPending, "2024-05-10", "15:00", utcNow.In(loc)))
	})
}

func TestEffectiveStatus_Projections(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	t.Run("schedules", func(t *testing.T) {
		in := []models.Schedule{
			{ID: 1, Date: "2024-05-09", EndTime: "19:00:00", Status: models.StatusPending},
			{ID: 2, Date: "2024-05-11", EndTime: "19:00:00", Status: models.StatusPending},
		}

		out := withEffectiveStatus(in, now)

		require.Equal(t, models.StatusDone, out[0].Status)
		require.Equal(t, models.StatusPending, out[1].Status)
		require.Equal(t, models.StatusPending, in[0].Status, "input must not be modified")
	})

	t.Run("appointments", func(t *testing.T) {
		in := []models.Appointment{
			{ID: 1, Date: "2024-05-10", EndTime: "11:00", Status: models.StatusConfirmed},
			{ID: 2, Date: "2024-05-10", EndTime: "11:00", Status: models.StatusCancelled},
		}

		out := AppointmentsWithEffectiveStatus(in, now)

		require.Equal(t, models.StatusDone, out[0].Status)
		require.Equal(t, models.StatusCancelled, out[1].Status)
	})

	t.Run("empty", func(t *testing.T) {
		require.Empty(t, withEffectiveStatus(nil, now))
	})
}

func TestExpandToRotation(t *testing.T) {
	in := models.ScheduleInput{
		ProfessionalID: 1,
		PatientID:      2,
		Date:           "2024-02-27",
		StartTime:      "07:00",
		EndTime:        "19:00",
		Status:         models.StatusConfirmed,
		Notes:          "Plantão diurno",
	}

	pair := ExpandToRotation(in)

	require.Equal(t, in, pair[0], "first record is the submitted one")

	second := pair[1]
	require.Equal(t, "2024-03-01", second.Date, "leap year february has 29 days")
	require.Equal(t, models.StatusOpen, second.Status)
	require.Equal(t, AutoGeneratedNote, second.Notes)
	require.Equal(t, in.ProfessionalID, second.ProfessionalID)
	require.Equal(t, in.PatientID, second.PatientID)
	require.Equal(t, in.StartTime, second.StartTime)
	require.Equal(t, in.EndTime, second.EndTime)

	t.Run("dates", func(t *testing.T) {
		cases := map[string]string{
			"2023-02-27": "2023-03-02",
			"2024-12-30": "2025-01-02",
			"2024-05-10": "2024-05-13",
		}
		for date, expected := range cases {
			got := ExpandToRotation(models.ScheduleInput{Date: date})
			require.Equal(t, expected, got[1].Date, "rotation of %s", date)
		}
	})
}

func TestValidate(t *testing.T) {
	valid := models.ScheduleInput{
		ProfessionalID: 1,
		PatientID:      2,
		Date:           "2024-05-10",
		StartTime:      "07:00",
		EndTime:        "19:00",
		Status:         models.StatusPending,
	}

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, Validate(valid))
	})

	t.Run("times with seconds", func(t *testing.T) {
		in := valid
		in.StartTime, in.EndTime = "19:00:00", "07:00:00"
		require.NoError(t, Validate(in), "overnight shift is allowed")
	})

	t.Run("empty input lists every field", func(t *testing.T) {
		err := Validate(models.ScheduleInput{})

		var fields validate.Errors
		require.ErrorAs(t, err, &fields)
		require.ErrorIs(t, err, apperrors.ErrValidation)
		for _, field := range []string{"profissionalId", "pacienteId", "data", "horarioInicio", "horarioFim", "status"} {
			require.Equal(t, "This field is required", fields[field], "field %s", field)
		}
	})

	t.Run("bad formats", func(t *testing.T) {
		in := valid
		in.Date = "10/05/2024"
		in.StartTime = "25:00"

		var fields validate.Errors
		require.ErrorAs(t, Validate(in), &fields)
		require.Contains(t, fields, "data")
		require.Contains(t, fields, "horarioInicio")
		require.NotContains(t, fields, "horarioFim")
	})

	t.Run("equal times", func(t *testing.T) {
		for _, end := range []string{"07:00", "07:00:00"} {
			in := valid
			in.EndTime = end

			var fields validate.Errors
			require.ErrorAs(t, Validate(in), &fields, "end %s", end)
			require.Equal(t, "End time must differ from start time", fields["horarioFim"])
			require.Len(t, fields, 1)
		}
	})
}
