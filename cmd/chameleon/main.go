// Command chameleon substitutes shaders in Quake3-family .map sources.
//
// Usage:
//
//	chameleon scan                          # index textures and shaders
//	chameleon sets                          # list shader sets
//	chameleon members <set>                 # list shaders of a set
//	chameleon info <shader>                 # describe one shader
//	chameleon preview <shader> -o out.png   # render a preview
//	chameleon stats <map>                   # count shaders used by a map
//	chameleon rules add <old> <new>         # add a substitution rule
//	chameleon apply <map> -o <out>          # rewrite a map with the rules
//	chameleon config save --base <dir>      # remember the asset roots
package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/Faultbox/chameleon/internal/config"
	"github.com/Faultbox/chameleon/internal/logger"
)

var (
	flags config.Flags
	cfg   *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "chameleon",
	Short: "Shader substitution for Quake3-family map sources",
	Long: `chameleon rewrites the shaders used by a .map source according to a
rules file, adjusting texture scale, shift and rotation so the new textures
keep the look of the old ones.

Textures and shaders are indexed from the base path (installed game) and the
home path (user data); the index is cached between runs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(&flags)
		if err != nil {
			return err
		}
		if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
			return errors.Wrap(err, "initializing logger")
		}
		logger.Debug("configuration loaded")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	flags.Bind(rootCmd.PersistentFlags())

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(setsCmd)
	rootCmd.AddCommand(membersCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
