package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/tecmax-dev/sisvida-sub017/internal/config"
	"github.com/tecmax-dev/sisvida-sub017/internal/migrate"
	"github.com/tecmax-dev/sisvida-sub017/internal/seed"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Apply migrations and create demo clinics, professionals and patients",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}
			db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
			if err != nil {
				return err
			}
			if _, err := migrate.Run(cmd.Context(), db, migrate.Files()); err != nil {
				return err
			}
			rows, err := seed.Run(cmd.Context(), db, nil)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "clinics already present, nothing to do")
				return err
			}
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Clínica", "clinic_id", "professional_id", "patient_ids"})
			for _, r := range rows {
				ids := make([]string, len(r.PatientIDs))
				for i, id := range r.PatientIDs {
					ids[i] = id.String()
				}
				t.AppendRow(table.Row{r.ClinicName, r.ClinicID, r.ProfessionalID, strings.Join(ids, "\n")})
			}
			t.Render()
			return nil
		},
	}
}
