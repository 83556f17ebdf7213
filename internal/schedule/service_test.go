package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/carectl/internal/apiclient"
	"github.com/nkiryanov/carectl/internal/apperrors"
	"github.com/nkiryanov/carectl/internal/models"
	"github.com/nkiryanov/carectl/internal/repository/memory"
	"github.com/nkiryanov/carectl/internal/session"
	"github.com/nkiryanov/carectl/internal/testutil/fakeapi"
	"github.com/nkiryanov/carectl/internal/validate"
)

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *fakeapi.Backend) {
	t.Helper()

	backend := fakeapi.New(t)
	tokens := apiclient.NewTokenClient(backend.URL)
	manager := session.New(session.NewStore(memory.NewCredentialRepo(), "default"), tokens, session.Config{})
	client := apiclient.New(backend.URL, tokens, manager)

	_, err := client.Auth.Login(t.Context(), models.LoginInput{Email: fakeapi.AdminEmail, Password: fakeapi.AdminPassword})
	require.NoError(t, err, "admin should log in")

	s := NewService(client.Schedules, client.Professionals, client.Patients, Config{
		Now: func() time.Time { return testNow },
	})
	return s, backend
}

func rotationInput() models.ScheduleInput {
	return models.ScheduleInput{
		ProfessionalID: 1,
		PatientID:      1,
		Date:           "2024-02-27",
		StartTime:      "07:00",
		EndTime:        "19:00",
		Status:         models.StatusConfirmed,
	}
}

func TestService_CreateRotation(t *testing.T) {
	t.Run("both shifts created", func(t *testing.T) {
		s, backend := newTestService(t)

		created, err := s.CreateRotation(t.Context(), rotationInput())
		require.NoError(t, err)

		require.Equal(t, "2024-02-27", created[0].Date)
		require.Equal(t, models.StatusConfirmed, created[0].Status)
		require.Equal(t, "2024-03-01", created[1].Date)
		require.Equal(t, models.StatusOpen, created[1].Status)
		require.Equal(t, AutoGeneratedNote, created[1].Notes)

		stored := backend.Schedules()
		require.Len(t, stored, 2)
		require.Equal(t, "07:00:00", stored[1].StartTime, "times travel with seconds")
		require.Equal(t, "19:00:00", stored[1].EndTime)
	})

	t.Run("invalid input sends nothing", func(t *testing.T) {
		s, backend := newTestService(t)
		in := rotationInput()
		in.EndTime = "07:00:00"

		_, err := s.CreateRotation(t.Context(), in)

		var fields validate.Errors
		require.ErrorAs(t, err, &fields)
		require.Contains(t, fields, "horarioFim")
		require.Empty(t, backend.Schedules())
	})

	t.Run("first shift fails", func(t *testing.T) {
		s, backend := newTestService(t)
		backend.FailScheduleCreateOn(1)

		_, err := s.CreateRotation(t.Context(), rotationInput())

		var apiErr *apiclient.APIError
		require.ErrorAs(t, err, &apiErr)
		require.NotErrorIs(t, err, apperrors.ErrRotationIncomplete, "nothing was created")
		require.Empty(t, backend.Schedules())
	})

	t.Run("second shift fails, first removed", func(t *testing.T) {
		s, backend := newTestService(t)
		backend.FailScheduleCreateOn(2)

		_, err := s.CreateRotation(t.Context(), rotationInput())

		require.ErrorIs(t, err, apperrors.ErrRotationIncomplete)

		var rotationErr *RotationError
		require.ErrorAs(t, err, &rotationErr)
		require.True(t, rotationErr.Compensated)
		require.NoError(t, rotationErr.CompensateErr)
		require.NotZero(t, rotationErr.First.ID)

		var apiErr *apiclient.APIError
		require.ErrorAs(t, err, &apiErr, "backend error should be kept")
		require.Equal(t, "Conflito de horário para o profissional", apiErr.Message)

		require.Empty(t, backend.Schedules(), "no shift should be left alone")
	})

	t.Run("second shift fails, first can not be removed", func(t *testing.T) {
		s, backend := newTestService(t)
		backend.FailScheduleCreateOn(2)
		backend.FailScheduleDelete(true)

		_, err := s.CreateRotation(t.Context(), rotationInput())

		var rotationErr *RotationError
		require.ErrorAs(t, err, &rotationErr)
		require.False(t, rotationErr.Compensated)
		require.Error(t, rotationErr.CompensateErr)

		stored := backend.Schedules()
		require.Len(t, stored, 1)
		require.Equal(t, rotationErr.First.ID, stored[0].ID)
		require.Contains(t, err.Error(), "left without pair")
	})

	t.Run("cancelled context still compensates", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		rotationErr := &RotationError{}

		fake := &cancellingSchedules{cancel: cancel}
		s := NewService(fake, nil, nil, Config{})

		_, err := s.CreateRotation(ctx, rotationInput())

		require.ErrorAs(t, err, &rotationErr)
		require.True(t, rotationErr.Compensated)
		require.Equal(t, []int64{1}, fake.deleted)
	})
}

// Cancels the caller context when the second shift is submitted
type cancellingSchedules struct {
	schedulesAPI
	cancel  context.CancelFunc
	creates int
	deleted []int64
}

func (c *cancellingSchedules) Create(ctx context.Context, in models.ScheduleInput) (models.Schedule, error) {
	c.creates++
	if c.creates == 2 {
		c.cancel()
		return models.Schedule{}, ctx.Err()
	}
	return models.Schedule{ID: int64(c.creates), Date: in.Date}, nil
}

func (c *cancellingSchedules) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.deleted = append(c.deleted, id)
	return nil
}

func TestService_ListByDate(t *testing.T) {
	s, backend := newTestService(t)

	backend.AddSchedule(models.Schedule{ProfessionalID: 1, PatientID: 1, Date: "2024-05-10", StartTime: "00:00:00", EndTime: "06:00:00", Status: models.StatusPending})
	backend.AddSchedule(models.Schedule{ProfessionalID: 1, PatientID: 2, Date: "2024-05-10", StartTime: "13:00:00", EndTime: "19:00:00", Status: models.StatusPending})
	backend.AddSchedule(models.Schedule{ProfessionalID: 2, PatientID: 2, Date: "2024-05-10", StartTime: "07:00:00", EndTime: "11:00:00", Status: models.StatusOpen})
	backend.AddSchedule(models.Schedule{ProfessionalID: 2, PatientID: 1, Date: "2024-05-11", StartTime: "07:00:00", EndTime: "19:00:00", Status: models.StatusPending})

	statuses := func(schedules []models.Schedule) []string {
		out := make([]string, 0, len(schedules))
		for _, s := range schedules {
			out = append(out, s.Status)
		}
		return out
	}

	t.Run("no filter", func(t *testing.T) {
		for _, filter := range []string{"", StatusAll, "all"} {
			got, err := s.ListByDate(t.Context(), "2024-05-10", filter)
			require.NoError(t, err)
			require.Equal(t, []string{models.StatusDone, models.StatusPending, models.StatusOpen}, statuses(got), "filter %q", filter)
		}
	})

	t.Run("filter matches effective status", func(t *testing.T) {
		got, err := s.ListByDate(t.Context(), "2024-05-10", models.StatusDone)
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, "00:00:00", got[0].StartTime)

		got, err = s.ListByDate(t.Context(), "2024-05-10", "pendente")
		require.NoError(t, err)
		require.Len(t, got, 1, "ended pending record is not pending anymore")
		require.Equal(t, "13:00:00", got[0].StartTime)
	})

	t.Run("nothing matches", func(t *testing.T) {
		got, err := s.ListByDate(t.Context(), "2024-05-10", models.StatusCancelled)
		require.NoError(t, err)
		require.Empty(t, got)
	})
}

func TestService_ListByProfessional(t *testing.T) {
	s, backend := newTestService(t)

	backend.AddSchedule(models.Schedule{ProfessionalID: 1, PatientID: 1, Date: "2024-05-01", StartTime: "07:00:00", EndTime: "19:00:00", Status: models.StatusConfirmed})
	backend.AddSchedule(models.Schedule{ProfessionalID: 1, PatientID: 1, Date: "2024-05-20", StartTime: "07:00:00", EndTime: "19:00:00", Status: models.StatusConfirmed})
	backend.AddSchedule(models.Schedule{ProfessionalID: 2, PatientID: 1, Date: "2024-05-01", StartTime: "07:00:00", EndTime: "19:00:00", Status: models.StatusConfirmed})

	got, err := s.ListByProfessional(t.Context(), 1, "", "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, models.StatusDone, got[0].Status)
	require.Equal(t, models.StatusConfirmed, got[1].Status)

	got, err = s.ListByProfessional(t.Context(), 1, "2024-05-10", "2024-05-31")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "2024-05-20", got[0].Date)
}

func TestService_GetUpdateDelete(t *testing.T) {
	s, backend := newTestService(t)
	stored := backend.AddSchedule(models.Schedule{ProfessionalID: 1, PatientID: 1, Date: "2024-05-01", StartTime: "07:00:00", EndTime: "19:00:00", Status: models.StatusPending})

	t.Run("get projects status", func(t *testing.T) {
		got, err := s.Get(t.Context(), stored.ID)
		require.NoError(t, err)
		require.Equal(t, models.StatusDone, got.Status)
	})

	t.Run("get unknown", func(t *testing.T) {
		_, err := s.Get(t.Context(), 999)
		require.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("update validates", func(t *testing.T) {
		in := rotationInput()
		in.Date = ""

		_, err := s.Update(t.Context(), stored.ID, in)
		require.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("update", func(t *testing.T) {
		in := rotationInput()
		in.Status = "cancelada"

		got, err := s.Update(t.Context(), stored.ID, in)
		require.NoError(t, err)
		require.Equal(t, models.StatusCancelled, got.Status, "status is sent upper cased")
		require.Equal(t, "2024-02-27", got.Date)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(t.Context(), stored.ID))
		require.Empty(t, backend.Schedules())

		err := s.Delete(t.Context(), stored.ID)
		require.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestService_Forms(t *testing.T) {
	t.Run("create form lists nursing technicians only", func(t *testing.T) {
		s, _ := newTestService(t)

		form, err := s.LoadCreateForm(t.Context())
		require.NoError(t, err)

		require.Len(t, form.Patients, 2)
		require.Len(t, form.Professionals, 2)
		for _, p := range form.Professionals {
			require.Equal(t, models.SpecialtyNursingTechnician, p.Specialty)
		}
	})

	t.Run("edit form", func(t *testing.T) {
		s, backend := newTestService(t)
		stored := backend.AddSchedule(models.Schedule{ProfessionalID: 2, PatientID: 1, Date: "2024-05-01", StartTime: "07:00:00", EndTime: "19:00:00", Status: models.StatusOpen})

		form, err := s.LoadEditForm(t.Context(), stored.ID)
		require.NoError(t, err)

		require.Equal(t, stored.ID, form.Schedule.ID)
		require.Len(t, form.Professionals, 3, "every professional may be picked when editing")
		require.Len(t, form.Patients, 2)
	})

	t.Run("edit form of unknown schedule", func(t *testing.T) {
		s, _ := newTestService(t)

		_, err := s.LoadEditForm(t.Context(), 999)
		require.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("fetch failure", func(t *testing.T) {
		s := NewService(nil, failingProfessionals{}, emptyPatients{}, Config{})

		_, err := s.LoadCreateForm(t.Context())
		require.ErrorIs(t, err, errProfessionals)
	})
}

var errProfessionals = errors.New("professionals unavailable")

type failingProfessionals struct{}

func (failingProfessionals) List(context.Context) ([]models.Professional, error) {
	return nil, errProfessionals
}

type emptyPatients struct{}

func (emptyPatients) List(context.Context, int, int) (models.Page[models.Patient], error) {
	return models.Page[models.Patient]{}, nil
}
