package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nkiryanov/carectl/internal/apperrors"
	"github.com/nkiryanov/carectl/internal/logger"
	"github.com/nkiryanov/carectl/internal/models"
)

// Status filter value matching every record
const StatusAll = "ALL"

type schedulesAPI interface {
	ByDate(ctx context.Context, date string) ([]models.Schedule, error)
	ByProfessional(ctx context.Context, professionalID int64, from string, to string) ([]models.Schedule, error)
	Get(ctx context.Context, id int64) (models.Schedule, error)
	Create(ctx context.Context, in models.ScheduleInput) (models.Schedule, error)
	Update(ctx context.Context, id int64, in models.ScheduleInput) (models.Schedule, error)
	Delete(ctx context.Context, id int64) error
}

type professionalsAPI interface {
	List(ctx context.Context) ([]models.Professional, error)
}

type patientsAPI interface {
	List(ctx context.Context, page int, size int) (models.Page[models.Patient], error)
}

// RotationError tells the second shift of a rotation was not created.
// When Compensated is false the first shift is left alone in the backend.
type RotationError struct {
	First         models.Schedule
	Err           error
	Compensated   bool
	CompensateErr error
}

func (e *RotationError) Error() string {
	if e.Compensated {
		return fmt.Sprintf("second shift not created, shift %d removed. Err: %v", e.First.ID, e.Err)
	}
	return fmt.Sprintf("second shift not created, shift %d left without pair. Err: %v, remove Err: %v", e.First.ID, e.Err, e.CompensateErr)
}

func (e *RotationError) Unwrap() []error {
	return []error{apperrors.ErrRotationIncomplete, e.Err}
}

type Config struct {
	Logger logger.Logger

	// Clock, time.Now if not set
	Now func() time.Time
}

type Service struct {
	schedules     schedulesAPI
	professionals professionalsAPI
	patients      patientsAPI

	log logger.Logger
	now func() time.Time
}

func NewService(schedules schedulesAPI, professionals professionalsAPI, patients patientsAPI, cfg Config) *Service {
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNoOpLogger()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Service{
		schedules:     schedules,
		professionals: professionals,
		patients:      patients,
		log:           cfg.Logger.With("component", "schedule"),
		now:           cfg.Now,
	}
}

// CreateRotation creates the submitted shift and its 12x36 counterpart.
// If the second one fails the first is deleted, see RotationError.
func (s *Service) CreateRotation(ctx context.Context, in models.ScheduleInput) ([2]models.Schedule, error) {
	var created [2]models.Schedule

	if err := Validate(in); err != nil {
		return created, err
	}

	pair := ExpandToRotation(in)

	first, err := s.schedules.Create(ctx, pair[0])
	if err != nil {
		return created, fmt.Errorf("error while creating shift. Err: %w", err)
	}
	created[0] = first

	second, err := s.schedules.Create(ctx, pair[1])
	if err == nil {
		created[1] = second
		s.log.Info("rotation created", "first", first.ID, "second", second.ID)
		return created, nil
	}

	s.log.Warn("second shift failed, removing first", "first", first.ID, "error", err)
	rotationErr := &RotationError{First: first, Err: err}

	// The caller may be gone already, the orphan has to be removed anyway
	rotationErr.CompensateErr = s.schedules.Delete(context.WithoutCancel(ctx), first.ID)
	rotationErr.Compensated = rotationErr.CompensateErr == nil
	if !rotationErr.Compensated {
		s.log.Error("first shift left without pair", "first", first.ID, "error", rotationErr.CompensateErr)
	}

	return [2]models.Schedule{}, rotationErr
}

// ListByDate returns schedules of date with effective status.
// statusFilter is matched against the effective status, empty or ALL match everything.
func (s *Service) ListByDate(ctx context.Context, date string, statusFilter string) ([]models.Schedule, error) {
	schedules, err := s.schedules.ByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("error while listing schedules. Err: %w", err)
	}

	return filterStatus(withEffectiveStatus(schedules, s.now()), statusFilter), nil
}

func (s *Service) ListByProfessional(ctx context.Context, professionalID int64, from string, to string) ([]models.Schedule, error) {
	schedules, err := s.schedules.ByProfessional(ctx, professionalID, from, to)
	if err != nil {
		return nil, fmt.Errorf("error while listing schedules. Err: %w", err)
	}

	return withEffectiveStatus(schedules, s.now()), nil
}

func (s *Service) Get(ctx context.Context, id int64) (models.Schedule, error) {
	schedule, err := s.schedules.Get(ctx, id)
	if err != nil {
		return schedule, err
	}

	schedule.Status = EffectiveStatus(schedule.Status, schedule.Date, schedule.EndTime, s.now())
	return schedule, nil
}

func (s *Service) Update(ctx context.Context, id int64, in models.ScheduleInput) (models.Schedule, error) {
	if err := Validate(in); err != nil {
		return models.Schedule{}, err
	}

	return s.schedules.Update(ctx, id, in)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.schedules.Delete(ctx, id)
}

func filterStatus(schedules []models.Schedule, status string) []models.Schedule {
	if status == "" || strings.EqualFold(status, StatusAll) {
		return schedules
	}

	out := make([]models.Schedule, 0, len(schedules))
	for _, s := range schedules {
		if strings.EqualFold(s.Status, status) {
			out = append(out, s)
		}
	}
	return out
}

// Data to fill a schedule form
type Form struct {
	Schedule      models.Schedule
	Professionals []models.Professional
	Patients      []models.Patient
}

// LoadEditForm fetches the schedule and both reference lists at once
func (s *Service) LoadEditForm(ctx context.Context, id int64) (Form, error) {
	var form Form

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		schedule, err := s.schedules.Get(gctx, id)
		form.Schedule = schedule
		return err
	})
	g.Go(func() error {
		professionals, err := s.professionals.List(gctx)
		form.Professionals = professionals
		return err
	})
	g.Go(func() error {
		page, err := s.patients.List(gctx, 0, 0)
		form.Patients = page.Content
		return err
	})

	if err := g.Wait(); err != nil {
		return Form{}, fmt.Errorf("error while loading schedule form. Err: %w", err)
	}

	return form, nil
}

// LoadCreateForm fetches reference lists, only nursing technicians may take rotation shifts
func (s *Service) LoadCreateForm(ctx context.Context) (Form, error) {
	var form Form

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		professionals, err := s.professionals.List(gctx)
		for _, p := range professionals {
			if p.Specialty == models.SpecialtyNursingTechnician {
				form.Professionals = append(form.Professionals, p)
			}
		}
		return err
	})
	g.Go(func() error {
		page, err := s.patients.List(gctx, 0, 0)
		form.Patients = page.Content
		return err
	})

	if err := g.Wait(); err != nil {
		return Form{}, fmt.Errorf("error while loading schedule form. Err: %w", err)
	}

	return form, nil
}
