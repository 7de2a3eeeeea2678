package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/tecmax-dev/sisvida-sub017/internal/auth"
	"github.com/tecmax-dev/sisvida-sub017/internal/config"
	"github.com/tecmax-dev/sisvida-sub017/internal/recurrence"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "recorrencia",
		Short:         "Agenda recurrence tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(previewCmd(), rruleCmd(), tokenCmd(), seedCmd())
	return root
}

type recurrenceFlags struct {
	start     string
	frequency string
	limit     string
	sessions  int
	endDate   string
}

func (f *recurrenceFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "first date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.frequency, "frequency", "weekly", "weekly, biweekly or monthly")
	cmd.Flags().StringVar(&f.limit, "limit", "sessions", "sessions or date")
	cmd.Flags().IntVar(&f.sessions, "sessions", recurrence.MinSessions, "number of sessions (2-52)")
	cmd.Flags().StringVar(&f.endDate, "end-date", "", "last allowed date (YYYY-MM-DD) when --limit=date")
	_ = cmd.MarkFlagRequired("start")
}

func (f *recurrenceFlags) parse() (time.Time, recurrence.Config, error) {
	start, err := recurrence.ParseDate(f.start)
	if err != nil {
		return time.Time{}, recurrence.Config{}, fmt.Errorf("invalid --start: %w", err)
	}
	freq, err := recurrence.ParseFrequency(f.frequency)
	if err != nil {
		return time.Time{}, recurrence.Config{}, err
	}
	limit, err := recurrence.ParseLimitType(f.limit)
	if err != nil {
		return time.Time{}, recurrence.Config{}, err
	}
	cfg := recurrence.Config{Enabled: true, Frequency: freq, LimitType: limit, EndDate: f.endDate}
	if limit == recurrence.LimitSessions {
		cfg.Sessions = recurrence.ClampSessions(f.sessions)
	} else if _, err := recurrence.ParseDate(f.endDate); err != nil {
		return time.Time{}, recurrence.Config{}, fmt.Errorf("invalid --end-date: %w", err)
	}
	return start, cfg, nil
}

func previewCmd() *cobra.Command {
	var f recurrenceFlags
	var format string
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "List the dates a recurring booking would create",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, cfg, err := f.parse()
			if err != nil {
				return err
			}
			dates := recurrence.CalculateDates(start, cfg)
			switch format {
			case "json":
				out := make([]string, len(dates))
				for i, d := range dates {
					out[i] = d.Format("2006-01-02")
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{"dates": out, "count": len(out)})
			case "table":
				renderDates(cmd.OutOrStdout(), dates)
				return nil
			}
			return fmt.Errorf("unknown --format %q", format)
		},
	}
	f.bind(cmd)
	cmd.Flags().StringVar(&format, "format", "table", "table or json")
	return cmd
}

var weekdays = [...]string{"domingo", "segunda", "terça", "quarta", "quinta", "sexta", "sábado"}

func renderDates(w io.Writer, dates []time.Time) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Data", "Dia"})
	for i, d := range dates {
		t.AppendRow(table.Row{i + 1, d.Format("02/01/2006"), weekdays[d.Weekday()]})
	}
	t.AppendFooter(table.Row{"", "Total", len(dates)})
	t.Render()
}

func rruleCmd() *cobra.Command {
	var f recurrenceFlags
	cmd := &cobra.Command{
		Use:   "rrule",
		Short: "Print the RFC 5545 RRULE describing the recurrence",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, cfg, err := f.parse()
			if err != nil {
				return err
			}
			rule, err := recurrence.RuleString(start, cfg)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "RRULE:"+rule)
			return err
		},
	}
	f.bind(cmd)
	return cmd
}

func tokenCmd() *cobra.Command {
	var userID, role, clinicID string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a JWT signed with JWT_SECRET (development only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.IsProduction() {
				return fmt.Errorf("refusing to issue tokens with ENV=production")
			}
			var clinic *string
			if clinicID != "" {
				clinic = &clinicID
			}
			tok, err := auth.BuildJWT(cfg.JWTSecret, userID, role, clinic, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "subject (professional id)")
	cmd.Flags().StringVar(&role, "role", auth.RoleProfessional, "PROFESSIONAL, RECEPTIONIST or SUPER_ADMIN")
	cmd.Flags().StringVar(&clinicID, "clinic", "", "clinic id")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
