package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/carectl/internal/models"
	"github.com/nkiryanov/carectl/internal/schedule"
)

func scheduleTable(schedules ...models.Schedule) func() table {
	return func() table {
		t := table{header: []string{"ID", "DATE", "START", "END", "STATUS", "PROFESSIONAL", "PATIENT", "NOTES"}}
		for _, s := range schedules {
			professional := s.ProfessionalName
			if professional == "" {
				professional = fmt.Sprintf("#%d", s.ProfessionalID)
			}
			patient := s.PatientName
			if patient == "" {
				patient = fmt.Sprintf("#%d", s.PatientID)
			}
			t.add(s.ID, s.Date, s.StartTime, s.EndTime, s.Status, professional, patient, s.Notes)
		}
		return t
	}
}

func (c *cli) schedulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schedules",
		Aliases: []string{"escalas"},
		Short:   "Manage work schedules",
	}

	cmd.AddCommand(
		c.schedulesListCmd(),
		c.schedulesShowCmd(),
		c.schedulesCreateCmd(),
		c.schedulesUpdateCmd(),
		c.schedulesDeleteCmd(),
	)
	return cmd
}

func (c *cli) schedulesListCmd() *cobra.Command {
	var date, status, from, to string
	var professionalID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List schedules of a day or of a professional",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				schedules []models.Schedule
				err       error
			)

			if professionalID != 0 {
				schedules, err = c.app.Schedules.ListByProfessional(cmd.Context(), professionalID, from, to)
			} else {
				if date == "" {
					date = today()
				}
				schedules, err = c.app.Schedules.ListByDate(cmd.Context(), date, status)
			}
			if err != nil {
				return err
			}

			return c.app.print(schedules, scheduleTable(schedules...))
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day as YYYY-MM-DD, today by default")
	cmd.Flags().StringVar(&status, "status", schedule.StatusAll, "Show only schedules in this status")
	cmd.Flags().Int64Var(&professionalID, "professional", 0, "List schedules of this professional instead")
	cmd.Flags().StringVar(&from, "from", "", "First day for --professional")
	cmd.Flags().StringVar(&to, "to", "", "Last day for --professional")

	return cmd
}

func (c *cli) schedulesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			s, err := c.app.Schedules.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			return c.app.print(s, scheduleTable(s))
		},
	}
}

func registerScheduleFlags(fs *pflag.FlagSet, in *models.ScheduleInput) {
	fs.Int64Var(&in.ProfessionalID, "professional", in.ProfessionalID, "Professional id")
	fs.Int64Var(&in.PatientID, "patient", in.PatientID, "Patient id")
	fs.StringVar(&in.Date, "date", in.Date, "Day as YYYY-MM-DD")
	fs.StringVar(&in.StartTime, "start", in.StartTime, "Start time as HH:MM")
	fs.StringVar(&in.EndTime, "end", in.EndTime, "End time as HH:MM")
	fs.StringVar(&in.Status, "status", in.Status, "Status")
	fs.StringVar(&in.Notes, "notes", in.Notes, "Notes")
}

func (c *cli) schedulesCreateCmd() *cobra.Command {
	in := models.ScheduleInput{Status: models.StatusOpen}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a 12x36 rotation: the shift and an open one three days later",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form, err := c.app.Schedules.LoadCreateForm(cmd.Context())
			if err != nil {
				return err
			}
			if !hasProfessional(form.Professionals, in.ProfessionalID) {
				return fmt.Errorf("professional %d is not a %s", in.ProfessionalID, models.SpecialtyNursingTechnician)
			}

			created, err := c.app.Schedules.CreateRotation(cmd.Context(), in)
			if err != nil {
				return err
			}

			return c.app.print(created, scheduleTable(created[:]...))
		},
	}
	registerScheduleFlags(cmd.Flags(), &in)

	return cmd
}

func (c *cli) schedulesUpdateCmd() *cobra.Command {
	var in models.ScheduleInput

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change fields of a schedule, the rest is kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			form, err := c.app.Schedules.LoadEditForm(cmd.Context(), id)
			if err != nil {
				return err
			}

			merged := mergeSchedule(form.Schedule, in, cmd.Flags())
			if !hasProfessional(form.Professionals, merged.ProfessionalID) {
				return fmt.Errorf("unknown professional %d", merged.ProfessionalID)
			}

			updated, err := c.app.Schedules.Update(cmd.Context(), id, merged)
			if err != nil {
				return err
			}

			return c.app.print(updated, scheduleTable(updated))
		},
	}
	registerScheduleFlags(cmd.Flags(), &in)

	return cmd
}

// Stored values overridden by the flags that were set
func mergeSchedule(stored models.Schedule, in models.ScheduleInput, fs *pflag.FlagSet) models.ScheduleInput {
	out := models.ScheduleInput{
		ProfessionalID: stored.ProfessionalID,
		PatientID:      stored.PatientID,
		Date:           stored.Date,
		StartTime:      stored.StartTime,
		EndTime:        stored.EndTime,
		Status:         stored.Status,
		Notes:          stored.Notes,
	}

	overrides := map[string]func(){
		"professional": func() { out.ProfessionalID = in.ProfessionalID },
		"patient":      func() { out.PatientID = in.PatientID },
		"date":         func() { out.Date = in.Date },
		"start":        func() { out.StartTime = in.StartTime },
		"end":          func() { out.EndTime = in.EndTime },
		"status":       func() { out.Status = strings.ToUpper(in.Status) },
		"notes":        func() { out.Notes = in.Notes },
	}
	for name, set := range overrides {
		if fs.Changed(name) {
			set()
		}
	}

	return out
}

func hasProfessional(professionals []models.Professional, id int64) bool {
	for _, p := range professionals {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (c *cli) schedulesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := c.app.Schedules.Delete(cmd.Context(), id); err != nil {
				return err
			}

			c.app.printf("schedule %d deleted", id)
			return nil
		},
	}
}
