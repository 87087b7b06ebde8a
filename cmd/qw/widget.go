package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var widgetCmd = &cobra.Command{
	Use:     "widget",
	Short:   "Place, remove, list and refresh widgets",
	GroupID: "widgets",
}

var widgetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List placed widget ids",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := widgetClient.ListWidgets(context.Background())
		if err != nil {
			return fmt.Errorf("listing widgets: %w", err)
		}
		printWidgetIDs(ids)
		return nil
	},
}

var widgetAddCmd = &cobra.Command{
	Use:   "add <widget-id>",
	Short: "Place a widget, seeding its settings from the defaults",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseWidgetID(args[0])
		if err != nil {
			return err
		}
		w, err := widgetClient.PlaceWidget(context.Background(), id)
		if err != nil {
			return fmt.Errorf("placing widget: %w", err)
		}
		if jsonOutput {
			printJSON(w)
			return nil
		}
		fmt.Printf("Placed widget %d at %s\n", w.ID, w.PlacedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

var widgetRemoveCmd = &cobra.Command{
	Use:     "rm <widget-id>",
	Aliases: []string{"remove"},
	Short:   "Remove a widget and purge its settings",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseWidgetID(args[0])
		if err != nil {
			return err
		}
		if err := widgetClient.DeleteWidget(context.Background(), id); err != nil {
			return fmt.Errorf("removing widget: %w", err)
		}
		if !jsonOutput {
			fmt.Printf("Removed widget %d\n", id)
		}
		return nil
	},
}

var widgetRefreshCmd = &cobra.Command{
	Use:   "refresh <widget-id>",
	Short: "Re-render a widget now (0 re-renders every widget)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseWidgetID(args[0])
		if err != nil {
			return err
		}
		renders, err := widgetClient.RefreshWidget(context.Background(), id)
		if err != nil {
			return fmt.Errorf("refreshing widget: %w", err)
		}
		printRenders(renders)
		return nil
	},
}

var widgetViewCmd = &cobra.Command{
	Use:   "view <widget-id>",
	Short: "Show the last render pushed to a widget",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseWidgetID(args[0])
		if err != nil {
			return err
		}
		v, err := widgetClient.GetView(context.Background(), id)
		if err != nil {
			return fmt.Errorf("getting view: %w", err)
		}
		if jsonOutput {
			printJSON(v)
			return nil
		}
		printCard(v.Params)
		printAssignments(v.Assignments)
		return nil
	},
}

var widgetScheduleCmd = &cobra.Command{
	Use:   "schedule <widget-id>",
	Short: "Show when a widget refreshes next",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseWidgetID(args[0])
		if err != nil {
			return err
		}
		s, err := widgetClient.GetSchedule(context.Background(), id)
		if err != nil {
			return fmt.Errorf("getting schedule: %w", err)
		}
		if jsonOutput {
			printJSON(s)
			return nil
		}
		fmt.Printf("Widget %d refreshes at %s\n", s.WidgetID, s.Due)
		return nil
	},
}

func init() {
	widgetCmd.AddCommand(
		widgetListCmd,
		widgetAddCmd,
		widgetRemoveCmd,
		widgetRefreshCmd,
		widgetViewCmd,
		widgetScheduleCmd,
	)
}
