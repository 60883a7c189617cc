// Package cli defines the calendis command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mbastide/calendis/internal/config"
	"github.com/mbastide/calendis/internal/truth"
)

// #region root

var configPath string

// NewRootCmd assembles the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "calendis",
		Short: "Moteur de décision calendrier pour établissements",
		Long: `calendis répond en français à des questions de planification
("quels sont les meilleurs jours ?", "pourquoi le 14 juin ?") en s'appuyant
exclusivement sur des lignes de vérité pré-calculées.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "chemin du fichier de configuration YAML")

	root.AddCommand(newServeCmd())
	root.AddCommand(newAskCmd())
	root.AddCommand(newSeedCmd())
	return root
}

func truthStore(cfg config.Config) (*truth.Store, error) {
	return truth.NewStore(cfg.DBPath)
}

// #endregion root
