package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/alfredjeanlab/quotewidget/internal/model"
	"github.com/alfredjeanlab/quotewidget/internal/ui"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func colorLabel(c model.ColorSetting) string {
	if c.IsDevice() {
		return ui.RenderMuted("device")
	}
	return ui.RenderSwatch(c.Value)
}

func printSettings(id int, s *model.WidgetSettings) {
	if jsonOutput {
		printJSON(s)
		return
	}
	label := fmt.Sprintf("%d", id)
	if id == model.DefaultWidgetID {
		label += " " + ui.RenderMuted("(defaults)")
	}
	fmt.Printf("Widget:           %s\n", label)
	fmt.Printf("Font family:      %s\n", s.FontFamily)
	fmt.Printf("Font size:        %d\n", s.FontSize)
	fmt.Printf("Font weight:      %s\n", s.FontWeight)
	fmt.Printf("Text colour:      %s\n", colorLabel(s.TextColor))
	fmt.Printf("Background:       %s\n", colorLabel(s.BackgroundColor))
	fmt.Printf("Background type:  %s\n", s.BackgroundType)
	fmt.Printf("Opacity:          %.2f\n", s.BackgroundOpacity)
	fmt.Printf("Border radius:    %d\n", s.BorderRadius)
	fmt.Printf("Refresh:          %d min\n", s.RefreshIntervalMinutes)
	fmt.Printf("Auto theme:       %t\n", s.AutoTheme)
	if s.IsBold {
		fmt.Printf("Bold:             %t\n", s.IsBold)
	}
}

func printWidgetIDs(ids []int) {
	if jsonOutput {
		printJSON(map[string][]int{"widget_ids": ids})
		return
	}
	if len(ids) == 0 {
		fmt.Println("No widgets placed.")
		return
	}
	for _, id := range ids {
		fmt.Println(id)
	}
}

func printRenders(renders []*model.RenderParams) {
	if jsonOutput {
		printJSON(renders)
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WIDGET\tRENDER\tAUTHOR\tQUOTE")
	for _, p := range renders {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.WidgetID, p.RenderID, p.QuoteAuthor, truncate(p.QuoteText, 50))
	}
	w.Flush()
	fmt.Printf("\n%d widget(s) rendered\n", len(renders))
}

func printAssignments(as []model.Assignment) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VIEW\tPROPERTY\tVALUE")
	for _, a := range as {
		fmt.Fprintf(w, "%s\t%s\t%v\n", a.View, a.Property, a.Value)
	}
	w.Flush()
}

// printCard draws the rendered widget as a coloured block sized to the
// terminal, followed by the colours that produced it.
func printCard(p *model.RenderParams) {
	width := min(ui.TerminalWidth(80), 64)
	for _, line := range cardLines(p, width) {
		fmt.Println(line)
	}
	fmt.Println()
	fmt.Printf("Text:        %s\n", ui.RenderSwatch(p.TextColor))
	fmt.Printf("Author:      %s\n", ui.RenderSwatch(p.AuthorColor))
	fmt.Printf("Background:  %s alpha %d\n", ui.RenderSwatch(p.BackgroundColor), p.BackgroundAlpha)
	asset := string(p.BackgroundAsset)
	if asset == "" {
		asset = "none"
	}
	fmt.Printf("Asset:       %s\n", asset)
	fmt.Printf("Font:        %s %.0fsp (author %.1fsp)\n", fontLabel(p), p.FontSize, p.AuthorFontSize)
	fmt.Printf("Refresh:     %s\n", p.RefreshInterval)
}

func fontLabel(p *model.RenderParams) string {
	family := p.FontFamily
	if p.FontStyle.Family != "" {
		family = p.FontStyle.Family
	}
	if p.FontStyle.Bold {
		family += " bold"
	}
	return family
}

// cardLines lays out the quote and author inside a box of the given width.
// A transparent background is drawn without fill.
func cardLines(p *model.RenderParams, width int) []string {
	inner := max(width-4, 10)

	body := []string{""}
	body = append(body, ui.Wrap(p.QuoteText, inner)...)
	body = append(body, "", padLeft(p.QuoteAuthor, inner), "")

	lines := make([]string, 0, len(body))
	for i, text := range body {
		row := "  " + padRight(text, inner) + "  "
		fg := p.TextColor
		if i >= len(body)-2 {
			fg = p.AuthorColor
		}
		if p.BackgroundAlpha == 0 {
			lines = append(lines, row)
			continue
		}
		lines = append(lines, ui.RenderText(row, fg, p.BackgroundColor))
	}
	return lines
}

func padRight(s string, n int) string {
	if l := utf8.RuneCountInString(s); l < n {
		return s + strings.Repeat(" ", n-l)
	}
	return s
}

func padLeft(s string, n int) string {
	if l := utf8.RuneCountInString(s); l < n {
		return strings.Repeat(" ", n-l) + s
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
