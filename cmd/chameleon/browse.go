package main

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Faultbox/chameleon/internal/assets"
	"github.com/Faultbox/chameleon/pkg/texture"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Index textures and shaders under the base and home paths",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := openStore(true)
		base, home := store.Roots()
		pterm.Success.Printf("Indexed %d names from %d sources\n", store.Len(), len(store.Sources()))
		pterm.Printf("  base: %s\n  home: %s\n", base, home)
		return nil
	},
}

var setsCmd = &cobra.Command{
	Use:   "sets",
	Short: "List shader sets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := openStore(false)
		data := pterm.TableData{{"Set", "Shaders"}}
		for _, set := range store.Sets() {
			data = append(data, []string{set, fmt.Sprint(len(store.MembersOf(set)))})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

var membersCmd = &cobra.Command{
	Use:   "members [set]...",
	Short: "List the shaders of one or more sets (default: last listed)",
	RunE: func(cmd *cobra.Command, args []string) error {
		session := loadSession()
		sets := args
		if len(sets) == 0 {
			sets = session.LastSets
		}
		if len(sets) == 0 {
			return errors.New("no set given")
		}

		store := openStore(false)
		data := pterm.TableData{{"Shader", "Kind", "Resolution"}}
		for _, set := range sets {
			members := store.MembersOf(set)
			if len(members) == 0 {
				return errors.Newf("no shaders in set %q", set)
			}
			for _, name := range members {
				data = append(data, []string{name, kindOf(store, name), store.Resolution(name)})
			}
		}

		session.LastSets = sets
		saveSession(session)
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

func kindOf(store *assets.Store, name string) string {
	d, _ := store.Lookup(name)
	switch d := d.(type) {
	case *assets.LooseTexture:
		if d.Unsupported() {
			return "texture (unsupported)"
		}
		return "texture"
	case *assets.DeclaredShader:
		return "shader"
	default:
		return "-"
	}
}

var infoCmd = &cobra.Command{
	Use:   "info <shader>",
	Short: "Describe one shader",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := openStore(false)
		name := args[0]
		d, ok := store.Lookup(name)
		if !ok {
			return errors.Newf("unknown shader %q", name)
		}

		pterm.DefaultSection.Println(name)
		switch d := d.(type) {
		case *assets.LooseTexture:
			pterm.Printf("Kind:          texture\n")
			pterm.Printf("Source:        %s\n", d.Source)
			pterm.Printf("Resolution:    %d x %d\n", d.Width, d.Height)
			pterm.Printf("Preview scale: %g\n", d.PreviewScale)
		case *assets.DeclaredShader:
			pterm.Printf("Kind:          shader\n")
			pterm.Printf("Source:        %s\n", d.Source)
			pterm.Printf("Previews as:   %s\n", d.PreviewSource)
			pterm.Printf("Resolution:    %s\n", store.Resolution(name))
			pterm.Println()
			pterm.Println(strings.TrimRight(d.Script, "\n"))
		}
		return nil
	},
}

var (
	previewOut    string
	previewOld    string
	previewHScale float64
	previewVScale float64
	previewRot    float64
)

var previewCmd = &cobra.Command{
	Use:   "preview <shader>",
	Short: "Render the preview of a shader to a PNG file",
	Long: `Render the preview of a shader to a PNG file.

With --old, the preview is scaled and rotated as the shader would appear in
place of the old one under a rule with the given scales and rotation.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := openStore(false)

		var img image.Image
		if previewOld != "" {
			img = store.PreviewTransformed(args[0], previewOld, previewHScale, previewVScale, previewRot)
		} else {
			img, _, _ = store.ResolvePreview(args[0])
		}

		data, err := texture.EncodePNG(img)
		if err != nil {
			return err
		}
		if err := os.WriteFile(previewOut, data, 0644); err != nil {
			return errors.Wrapf(err, "writing %s", previewOut)
		}
		b := img.Bounds()
		pterm.Success.Printf("Wrote %s (%d x %d)\n", previewOut, b.Dx(), b.Dy())
		return nil
	},
}

func init() {
	previewCmd.Flags().StringVarP(&previewOut, "output", "o", "preview.png", "Output PNG file")
	previewCmd.Flags().StringVar(&previewOld, "old", "", "Shader being replaced")
	previewCmd.Flags().Float64Var(&previewHScale, "h", 1, "Horizontal rule scale")
	previewCmd.Flags().Float64Var(&previewVScale, "v", 1, "Vertical rule scale")
	previewCmd.Flags().Float64Var(&previewRot, "rot", 0, "Rule rotation in degrees")
}
