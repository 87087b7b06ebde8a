package main

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/quotewidget/internal/model"
	"github.com/alfredjeanlab/quotewidget/internal/quotes"
	"github.com/alfredjeanlab/quotewidget/internal/render"
	"github.com/alfredjeanlab/quotewidget/internal/settings"
	"github.com/alfredjeanlab/quotewidget/internal/store/memory"
	"github.com/alfredjeanlab/quotewidget/internal/theme"
	"github.com/spf13/cobra"
)

// previewWidgetID is the widget rendered by `qw preview`.
const previewWidgetID = 1

var previewCmd = &cobra.Command{
	Use:     "preview",
	Short:   "Render a widget locally without a server",
	GroupID: "widgets",
	Long: `Render a widget locally without a server.

The widget starts from the built-in defaults (device colours from the theme)
and the settings flags are applied on top, exactly as the server would.`,
	PersistentPreRunE: localPreRun,
	Args:              cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		themeFile, _ := cmd.Flags().GetString("theme")
		quotesFile, _ := cmd.Flags().GetString("quotes")
		mode, _ := cmd.Flags().GetString("mode")

		palette, err := loadPalette(themeFile)
		if err != nil {
			return err
		}
		if mode != "" {
			if err := palette.SetMode(mode); err != nil {
				return err
			}
		}

		var patch *model.SettingsPatch
		if p, err := patchFromFlags(cmd); err == nil {
			patch = p
		} else if err != errNoSettings {
			return err
		}

		var loader quotes.Loader = quotes.Embedded()
		if quotesFile != "" {
			loader = quotes.FileLoader{Path: quotesFile}
		}

		params, assignments, err := previewRender(context.Background(), palette, loader, patch)
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(render.View{Params: params, Assignments: assignments})
			return nil
		}
		printCard(params)
		if verbose, _ := cmd.Flags().GetBool("assignments"); verbose {
			fmt.Println()
			printAssignments(assignments)
		}
		return nil
	},
}

// previewRender seeds a widget in a throwaway store, applies patch and
// computes its render without pushing it anywhere.
func previewRender(ctx context.Context, platform theme.Platform, loader quotes.Loader, patch *model.SettingsPatch) (*model.RenderParams, []model.Assignment, error) {
	st := memory.New()
	resolver := settings.New(st, platform)
	if err := resolver.Seed(ctx, previewWidgetID); err != nil {
		return nil, nil, err
	}
	if patch != nil {
		if err := resolver.ApplyPatch(ctx, previewWidgetID, patch); err != nil {
			return nil, nil, err
		}
	}
	renderer := render.NewRenderer(resolver, quotes.NewPicker(loader))
	return renderer.Preview(ctx, previewWidgetID)
}

func init() {
	addSettingsFlags(previewCmd)
	previewCmd.Flags().String("theme", "", "TOML theme palette (default: built-in)")
	previewCmd.Flags().String("quotes", "", "JSON quote corpus (default: built-in)")
	previewCmd.Flags().String("mode", "", "force the theme mode (light, dark, auto)")
	previewCmd.Flags().Bool("assignments", false, "also print the view assignments")
}
