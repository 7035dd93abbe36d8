package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/leafn/app"
	"github.com/kilianp07/leafn/config"
	"github.com/kilianp07/leafn/infra/logger"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Validate the coefficient tables and report their domain",
	RunE:  inspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func inspect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return err
	}
	m, err := app.LoadModels(cfg.Model)
	if err != nil {
		return err
	}
	logg := logger.New("inspect")
	logg.Infof("primary model: %d coefficients over %s (contiguous %t), intercept %g",
		m.Primary.Len(), m.Primary.Domain(), m.Primary.Contiguous(), m.Primary.Intercept())
	logg.Infof("jackknife ensemble: %d folds over %s", m.Ensemble.Folds(), m.Ensemble.Domain())
	if m.Ensemble.Folds() < 2 {
		logg.Warnf("ensemble has %d folds; predict needs at least 2", m.Ensemble.Folds())
	}
	return nil
}
