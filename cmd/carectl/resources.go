package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nkiryanov/carectl/internal/apiclient"
	"github.com/nkiryanov/carectl/internal/models"
	"github.com/nkiryanov/carectl/internal/schedule"
)

func (c *cli) appointmentsCmd() *cobra.Command {
	var date, from, to string
	var patientID int64

	list := &cobra.Command{
		Use:   "list",
		Short: "List appointments of a day or of a patient",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				appointments []models.Appointment
				err          error
			)

			if patientID != 0 {
				appointments, err = c.app.Client.Appointments.ByPatient(cmd.Context(), patientID, from, to)
			} else {
				if date == "" {
					date = today()
				}
				appointments, err = c.app.Client.Appointments.ByDate(cmd.Context(), date)
			}
			if err != nil {
				return err
			}

			appointments = schedule.AppointmentsWithEffectiveStatus(appointments, time.Now())
			return c.app.print(appointments, func() table {
				t := table{header: []string{"ID", "DATE", "TIME", "STATUS", "KIND", "PROFESSIONAL", "PATIENT"}}
				for _, a := range appointments {
					when := a.Time
					if a.StartTime != "" {
						when = a.StartTime + "-" + a.EndTime
					}
					t.add(a.ID, a.Date, when, a.Status, a.Kind, a.ProfessionalName, a.PatientName)
				}
				return t
			})
		},
	}
	list.Flags().StringVar(&date, "date", "", "Day as YYYY-MM-DD, today by default")
	list.Flags().Int64Var(&patientID, "patient", 0, "List appointments of this patient instead")
	list.Flags().StringVar(&from, "from", "", "First day for --patient")
	list.Flags().StringVar(&to, "to", "", "Last day for --patient")

	cmd := &cobra.Command{
		Use:     "appointments",
		Aliases: []string{"agendamentos"},
		Short:   "Home visit appointments",
	}
	cmd.AddCommand(list)
	return cmd
}

func (c *cli) patientsCmd() *cobra.Command {
	var page, size int

	list := &cobra.Command{
		Use:   "list",
		Short: "List patients page by page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := c.app.Client.Patients.List(cmd.Context(), page, size)
			if err != nil {
				return err
			}

			return c.app.print(p, func() table {
				t := table{header: []string{"ID", "NAME", "CPF", "PHONE", "CITY", "STATUS"}}
				for _, patient := range p.Content {
					t.add(patient.ID, patient.Name, patient.CPF, patient.Phone, patient.City, patient.Status)
				}
				return t
			})
		},
	}
	list.Flags().IntVar(&page, "page", 0, "Page number, starting at 0")
	list.Flags().IntVar(&size, "size", 0, "Page size, backend default if 0")

	cmd := &cobra.Command{
		Use:     "patients",
		Aliases: []string{"pacientes"},
		Short:   "Patients of the cooperative",
	}
	cmd.AddCommand(list)
	return cmd
}

func professionalTable(professionals []models.Professional) func() table {
	return func() table {
		t := table{header: []string{"ID", "NAME", "SPECIALTY", "REGISTRY", "PHONE", "STATUS"}}
		for _, p := range professionals {
			t.add(p.ID, p.Name, p.Specialty, p.ProfessionalRegistry, p.Phone, p.Status)
		}
		return t
	}
}

func (c *cli) professionalsCmd() *cobra.Command {
	var available bool

	list := &cobra.Command{
		Use:   "list",
		Short: "List professionals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fetch := c.app.Client.Professionals.List
			if available {
				fetch = c.app.Client.Professionals.Available
			}

			professionals, err := fetch(cmd.Context())
			if err != nil {
				return err
			}

			return c.app.print(professionals, professionalTable(professionals))
		},
	}
	list.Flags().BoolVar(&available, "available", false, "Only professionals who may take new work")

	reactivate := &cobra.Command{
		Use:   "reactivate ID",
		Short: "Make an inactive professional active again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := c.app.Client.Professionals.Reactivate(cmd.Context(), id); err != nil {
				return err
			}

			c.app.printf("professional %d reactivated", id)
			return nil
		},
	}

	cmd := &cobra.Command{
		Use:     "professionals",
		Aliases: []string{"profissionais"},
		Short:   "Professionals of the cooperative",
	}
	cmd.AddCommand(list, reactivate)
	return cmd
}

func (c *cli) usersCmd() *cobra.Command {
	list := &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, err := c.app.Client.Users.List(cmd.Context())
			if err != nil {
				return err
			}

			return c.app.print(users, userTable(users...))
		},
	}

	cmd := &cobra.Command{
		Use:   "users",
		Short: "User accounts, administrators only",
	}
	cmd.AddCommand(list)
	return cmd
}

func (c *cli) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show visit statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := c.app.Client.Dashboard.Stats(cmd.Context())
			if err != nil {
				return err
			}

			return c.app.print(stats, func() table {
				t := table{header: []string{"METRIC", "VALUE"}}
				t.add("patients", stats.TotalPatients)
				t.add("visits", stats.TotalVisits)
				t.add("visits today", stats.VisitsToday)
				for _, day := range stats.VisitsLast30Days {
					t.add("visits "+day.Date, day.Count)
				}
				return t
			})
		},
	}
}

func (c *cli) reportsCmd() *cobra.Command {
	var params apiclient.ReportParams
	var out string

	download := &cobra.Command{
		Use:       "download KIND",
		Short:     "Download a report: pacientes, profissionais, agendamentos or escalas",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{apiclient.ReportPatients, apiclient.ReportProfessionals, apiclient.ReportAppointments, apiclient.ReportSchedules},
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := c.app.Client.Reports.Download(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}

			path := out
			if path == "" {
				path = fmt.Sprintf("relatorio-%s.%s", report.Kind, report.Format)
			}
			if err := os.WriteFile(path, report.Body, 0o644); err != nil {
				return fmt.Errorf("cant write report. Err: %w", err)
			}

			if report.Format != models.ReportFormatPDF {
				c.app.printf("%s saved, %d bytes", filepath.Base(path), len(report.Body))
				return nil
			}

			pages, err := apiclient.InspectPDF(report.Body)
			if err != nil {
				return err
			}
			c.app.printf("%s saved, %d pages", filepath.Base(path), pages)
			return nil
		},
	}
	download.Flags().StringVar(&params.Format, "format", models.ReportFormatPDF, "pdf, csv or json")
	download.Flags().StringVar(&params.Status, "status", "", "Filter by status")
	download.Flags().StringVar(&params.Specialty, "specialty", "", "Filter by professional specialty")
	download.Flags().StringVar(&params.From, "from", "", "First day as YYYY-MM-DD")
	download.Flags().StringVar(&params.To, "to", "", "Last day as YYYY-MM-DD")
	download.Flags().StringVar(&params.Month, "month", "", "Month as YYYY-MM, schedules only")
	download.Flags().StringVar(&out, "out", "", "File to write, relatorio-KIND.FORMAT by default")

	cmd := &cobra.Command{
		Use:     "reports",
		Aliases: []string{"relatorios"},
		Short:   "Reports generated by the backend",
	}
	cmd.AddCommand(download)
	return cmd
}
