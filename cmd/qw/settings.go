package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/alfredjeanlab/quotewidget/internal/model"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:     "settings",
	Short:   "Show or change the settings of one widget",
	GroupID: "settings",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <widget-id>",
	Short: "Show the effective settings of a widget",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseWidgetID(args[0])
		if err != nil {
			return err
		}
		s, err := widgetClient.GetSettings(context.Background(), id)
		if err != nil {
			return fmt.Errorf("getting settings: %w", err)
		}
		printSettings(id, s)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <widget-id>",
	Short: "Change settings of a widget and re-render it",
	Long: `Change settings of a widget and re-render it.

Only the flags given are written. Colours take "device" to follow the
platform theme, or a colour such as "#FF336699", "#336699" or "red".
Widget id 0 is the default bucket shared by unconfigured widgets.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseWidgetID(args[0])
		if err != nil {
			return err
		}
		patch, err := patchFromFlags(cmd)
		if err != nil {
			return err
		}
		s, err := widgetClient.UpdateSettings(context.Background(), id, patch)
		if err != nil {
			return fmt.Errorf("updating settings: %w", err)
		}
		printSettings(id, s)
		return nil
	},
}

var defaultsCmd = &cobra.Command{
	Use:     "defaults",
	Short:   "Show or change the default settings",
	GroupID: "settings",
}

var defaultsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := widgetClient.GetDefaults(context.Background())
		if err != nil {
			return fmt.Errorf("getting defaults: %w", err)
		}
		printSettings(model.DefaultWidgetID, s)
		return nil
	},
}

var defaultsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change the default settings and re-render every widget",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := patchFromFlags(cmd)
		if err != nil {
			return err
		}
		s, err := widgetClient.UpdateDefaults(context.Background(), patch)
		if err != nil {
			return fmt.Errorf("updating defaults: %w", err)
		}
		printSettings(model.DefaultWidgetID, s)
		return nil
	},
}

var errNoSettings = errors.New("no settings given; see --help for the available flags")

// addSettingsFlags registers one flag per settings field.
func addSettingsFlags(cmd *cobra.Command) {
	cmd.Flags().String("font-family", "", "font family (e.g. sans-serif, serif, monospace)")
	cmd.Flags().Int("font-size", 0, "quote font size in sp")
	cmd.Flags().String("font-weight", "", "font weight (thin, light, normal, medium, bold, extrabold or 100-900)")
	cmd.Flags().String("text-color", "", `text colour ("device" or a colour)`)
	cmd.Flags().String("background-color", "", `background colour ("device" or a colour)`)
	cmd.Flags().String("background-type", "", "background type (solid, transparent, translucent)")
	cmd.Flags().Float64("opacity", 0, "background opacity in [0,1]")
	cmd.Flags().Int("radius", 0, "background corner radius in dp")
	cmd.Flags().Int("refresh", 0, "refresh interval in minutes")
	cmd.Flags().Bool("auto-theme", false, "follow the platform light/dark mode")
	cmd.Flags().Bool("bold", false, "legacy bold flag")
}

// patchFromFlags builds a settings patch from the flags that were set.
func patchFromFlags(cmd *cobra.Command) (*model.SettingsPatch, error) {
	f := cmd.Flags()
	patch := &model.SettingsPatch{}

	if f.Changed("font-family") {
		v, _ := f.GetString("font-family")
		patch.FontFamily = &v
	}
	if f.Changed("font-size") {
		v, _ := f.GetInt("font-size")
		patch.FontSize = &v
	}
	if f.Changed("font-weight") {
		v, _ := f.GetString("font-weight")
		w := model.FontWeight(v)
		patch.FontWeight = &w
	}
	if f.Changed("text-color") {
		v, _ := f.GetString("text-color")
		patch.TextColor = &v
	}
	if f.Changed("background-color") {
		v, _ := f.GetString("background-color")
		patch.BackgroundColor = &v
	}
	if f.Changed("background-type") {
		v, _ := f.GetString("background-type")
		bt := model.BackgroundType(v)
		patch.BackgroundType = &bt
	}
	if f.Changed("opacity") {
		v, _ := f.GetFloat64("opacity")
		patch.BackgroundOpacity = &v
	}
	if f.Changed("radius") {
		v, _ := f.GetInt("radius")
		patch.BorderRadius = &v
	}
	if f.Changed("refresh") {
		v, _ := f.GetInt("refresh")
		patch.RefreshInterval = &v
	}
	if f.Changed("auto-theme") {
		v, _ := f.GetBool("auto-theme")
		patch.AutoTheme = &v
	}
	if f.Changed("bold") {
		v, _ := f.GetBool("bold")
		patch.IsBold = &v
	}

	if patch.IsEmpty() {
		return nil, errNoSettings
	}
	if err := model.ValidatePatch(patch); err != nil {
		return nil, err
	}
	return patch, nil
}

// parseWidgetID parses a non-negative widget id argument.
func parseWidgetID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid widget id %q", s)
	}
	return id, nil
}

func init() {
	addSettingsFlags(settingsSetCmd)
	addSettingsFlags(defaultsSetCmd)

	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd)
	defaultsCmd.AddCommand(defaultsGetCmd, defaultsSetCmd)
}
