package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/skycomfort-server/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the staff account and starter catalog if missing",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		if a.db == nil {
			a.log.Warn("seeding the in-memory store only lasts for this process")
		}
		rep, err := seed.Seed(cmd.Context(), a.store, a.cfg.BcryptCost, a.log)
		if err != nil {
			return err
		}
		a.log.Info("seeded", zap.Int("users", rep.Users), zap.Int("services", rep.Services))
		return nil
	},
}
