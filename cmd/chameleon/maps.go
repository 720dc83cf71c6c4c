package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/chameleon/internal/assets"
	"github.com/Faultbox/chameleon/internal/config"
	"github.com/Faultbox/chameleon/internal/logger"
	"github.com/Faultbox/chameleon/internal/mapdoc"
	"github.com/Faultbox/chameleon/internal/rules"
)

var statsNoAssets bool

var statsCmd = &cobra.Command{
	Use:   "stats <map>",
	Short: "Count the shaders used by a map",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc := mapdoc.New(logger.Named("map"))
		if err := doc.Open(args[0]); err != nil {
			return err
		}

		var store *assets.Store
		if !statsNoAssets {
			store = openStore(false)
		}

		data := pterm.TableData{{"#", "Shader", "Uses", "Resolution"}}
		for row, shader := range doc.Shaders() {
			res := "-"
			if store != nil {
				res = store.Resolution(shader)
			}
			data = append(data, []string{fmt.Sprint(row), shader, fmt.Sprint(doc.Count(shader)), res})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
			return err
		}
		pterm.Info.Printf("%d distinct shaders, %d uses\n", doc.Distinct(), doc.Total())
		return nil
	},
}

var (
	applyRules  string
	applyOutput string
)

var applyCmd = &cobra.Command{
	Use:   "apply <map>",
	Short: "Rewrite a map with the substitution rules applied",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session := loadSession()
		rulesPath := applyRules
		if rulesPath == "" {
			rulesPath = session.LastRules
		}
		if rulesPath == "" {
			return errors.New("no rules file given (use --rules)")
		}
		if applyOutput == "" {
			return errors.New("no output file given (use --output)")
		}

		set := rules.New(logger.Named("rules"))
		if _, err := set.ReadFile(rulesPath); err != nil {
			return err
		}
		if set.Empty() {
			pterm.Warning.Printf("%s holds no rules, the map is copied unchanged\n", rulesPath)
		}

		doc := mapdoc.New(logger.Named("map"))
		if err := doc.Open(args[0]); err != nil {
			return err
		}
		stats, err := doc.Save(applyOutput, set, openStore(false))
		if err != nil {
			return err
		}

		session.LastMap = args[0]
		session.LastRules = rulesPath
		saveSession(session)

		pterm.Success.Printf("Wrote %s: %d brush faces and %d patches replaced\n",
			applyOutput, stats.Faces, stats.Patches)
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsNoAssets, "no-assets", false, "Do not look up texture resolutions")
	applyCmd.Flags().StringVarP(&applyRules, "rules", "r", "", "Rules file (default: last used)")
	applyCmd.Flags().StringVarP(&applyOutput, "output", "o", "", "Output map file")
}

func loadSession() *config.Session {
	s, err := config.LoadSession(config.SessionPath())
	if err != nil {
		logger.Warn("ignoring session file", zap.Error(err))
		return &config.Session{}
	}
	return s
}

func saveSession(s *config.Session) {
	if err := s.SaveTo(config.SessionPath()); err != nil {
		logger.Warn("cannot save session", zap.Error(err))
	}
}
