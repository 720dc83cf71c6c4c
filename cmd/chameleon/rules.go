package main

import (
	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Faultbox/chameleon/internal/logger"
	"github.com/Faultbox/chameleon/internal/rules"
	"github.com/Faultbox/chameleon/internal/transform"
)

var rulesPath string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Edit a substitution rules file",
	Long: `Edit a substitution rules file.

Each rule replaces an old shader with a new one. Scales and rotation are
fitted to the texture dimensions when a rule is added; use "set" and "fit"
to adjust them.

Examples:
  chameleon rules add base/floor custom/tiles -r arena.rules
  chameleon rules fit base/floor --rot 90 -r arena.rules
  chameleon rules set base/floor --h 0.5 -r arena.rules
  chameleon rules show -r arena.rules`,
}

var rulesAddCmd = &cobra.Command{
	Use:   "add <old> <new>",
	Short: "Add or replace a rule, fitted to the texture sizes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editRules(func(set *rules.Set) error {
			r := set.Add(args[0], args[1], openStore(false))
			pterm.Success.Printf("%s -> %s (h %s, v %s, rot %s)\n", r.Old, r.New,
				transform.FormatFloat(r.HScale),
				transform.FormatFloat(r.VScale),
				transform.FormatFloat(r.Rotation))
			return nil
		})
	},
}

var rulesFitRot float64

var rulesFitCmd = &cobra.Command{
	Use:   "fit <old>",
	Short: "Refit a rule's scales, optionally for an explicit rotation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editRules(func(set *rules.Set) error {
			if !set.Contains(args[0]) {
				return errors.Newf("no rule for %q", args[0])
			}
			store := openStore(false)
			if cmd.Flags().Changed("rot") {
				set.SetRotation(args[0], rulesFitRot, store)
			} else {
				set.AutoFit(args[0], store)
			}
			return nil
		})
	},
}

var (
	rulesSetH float64
	rulesSetV float64
)

var rulesSetCmd = &cobra.Command{
	Use:   "set <old>",
	Short: "Set a rule's scales directly",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editRules(func(set *rules.Set) error {
			if !set.Contains(args[0]) {
				return errors.Newf("no rule for %q", args[0])
			}
			if cmd.Flags().Changed("h") {
				set.SetHScale(args[0], rulesSetH)
			}
			if cmd.Flags().Changed("v") {
				set.SetVScale(args[0], rulesSetV)
			}
			return nil
		})
	},
}

var rulesDeleteCmd = &cobra.Command{
	Use:   "delete <old>...",
	Short: "Delete rules",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editRules(func(set *rules.Set) error {
			for _, old := range args {
				set.Delete(old)
			}
			return nil
		})
	},
}

var rulesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all rules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return editRules(func(set *rules.Set) error {
			set.Clear()
			return nil
		})
	},
}

var rulesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the rules in file order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveRulesPath()
		if err != nil {
			return err
		}
		set := rules.New(logger.Named("rules"))
		skipped, err := set.ReadFile(path)
		if err != nil {
			return err
		}

		data := pterm.TableData{{"Old", "New", "H scale", "V scale", "Rotation"}}
		for _, r := range set.Rules() {
			data = append(data, []string{
				r.Old, r.New,
				transform.FormatFloat(r.HScale),
				transform.FormatFloat(r.VScale),
				transform.FormatFloat(r.Rotation),
			})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
			return err
		}
		if skipped > 0 {
			pterm.Warning.Printf("%d malformed lines skipped\n", skipped)
		}
		pterm.Info.Printf("%d rules in %s\n", set.Len(), path)
		return nil
	},
}

func init() {
	rulesCmd.PersistentFlags().StringVarP(&rulesPath, "rules", "r", "", "Rules file (default: last used)")
	rulesFitCmd.Flags().Float64Var(&rulesFitRot, "rot", 0, "Explicit rotation in degrees")
	rulesSetCmd.Flags().Float64Var(&rulesSetH, "h", 1, "Horizontal scale")
	rulesSetCmd.Flags().Float64Var(&rulesSetV, "v", 1, "Vertical scale")

	rulesCmd.AddCommand(rulesAddCmd)
	rulesCmd.AddCommand(rulesFitCmd)
	rulesCmd.AddCommand(rulesSetCmd)
	rulesCmd.AddCommand(rulesDeleteCmd)
	rulesCmd.AddCommand(rulesClearCmd)
	rulesCmd.AddCommand(rulesShowCmd)
}

func resolveRulesPath() (string, error) {
	if rulesPath != "" {
		return rulesPath, nil
	}
	if last := loadSession().LastRules; last != "" {
		return last, nil
	}
	return "", errors.New("no rules file given (use --rules)")
}

// editRules reads the rules file, applies fn and writes the file back. A
// missing file starts an empty set.
func editRules(fn func(set *rules.Set) error) error {
	path, err := resolveRulesPath()
	if err != nil {
		return err
	}
	set := rules.New(logger.Named("rules"))
	if _, err := set.ReadFile(path); err != nil {
		return err
	}
	if err := fn(set); err != nil {
		return err
	}
	if err := set.WriteFile(path); err != nil {
		return err
	}

	session := loadSession()
	session.LastRules = path
	saveSession(session)
	return nil
}
