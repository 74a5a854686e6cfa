package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"mtp/internal/domain"
)

// Formatter formats and displays output
type Formatter struct{}

// NewFormatter creates a new Formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// PrintStats displays a project's aggregate counters and per-module breakdown.
func (f *Formatter) PrintStats(project string, stats domain.Stats, modules []domain.ModuleStats) {
	fmt.Print("\n")
	color.Cyan("╔═══════════════════════════════════════════════════════════════╗")
	color.Cyan("║ %-61s ║", centerText("Project Statistics: "+project, 61))
	color.Cyan("╚═══════════════════════════════════════════════════════════════╝\n")

	fmt.Println("┌─────────────────────────────────┬─────────────────────────────┐")

	fmt.Printf("│ %-31s │ ", "Modules")
	color.White("%-27d │\n", stats.ModuleCount)
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	fmt.Printf("│ %-31s │ ", "Total Cases")
	color.White("%-27d │\n", stats.Total)
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	fmt.Printf("│ %-31s │ ", "Passed")
	color.Green("%-27d │\n", stats.Passed)
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	fmt.Printf("│ %-31s │ ", "Failed")
	color.Red("%-27d │\n", stats.Failed)
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	fmt.Printf("│ %-31s │ ", "Pending")
	color.Yellow("%-27d │\n", stats.Pending)

	fmt.Println("└─────────────────────────────────┴─────────────────────────────┘")

	if len(modules) > 0 {
		fmt.Println()
		color.Cyan("Modules:")
		for i, m := range modules {
			connector := "├──"
			if i == len(modules)-1 {
				connector = "└──"
			}
			fmt.Printf("%s %s  %s / %s / %s\n",
				connector,
				color.WhiteString("%-30s", m.Name),
				color.GreenString("%d passed", m.Passed),
				color.RedString("%d failed", m.Failed),
				color.YellowString("%d pending", m.Pending))
		}
	}

	fmt.Println()
	switch {
	case stats.Total == 0:
		color.Yellow("No cases yet. Run ingest with a requirements document.")
	case stats.Failed == 0 && stats.Pending == 0:
		color.Green("✓ All %d case(s) passed!", stats.Total)
	default:
		color.White("%d of %d case(s) remaining.", stats.Pending+stats.Failed, stats.Total)
	}
}

// PrintCase displays a single case for the tester to run.
func (f *Formatter) PrintCase(c domain.Case, retest bool, position, total int) {
	fmt.Println()
	header := fmt.Sprintf("Case %d of %d", position, total)
	if retest {
		header += " (retest)"
		color.Yellow("── %s ──────────────────────────────", header)
	} else {
		color.Cyan("── %s ──────────────────────────────", header)
	}
	color.White("#%d [%s]", c.ID, c.Module)
	fmt.Println(c.Content)
	if retest && c.BugReport != "" {
		fmt.Println()
		color.Red("Previous bug report:")
		fmt.Println(c.BugReport)
	}
}

// PrintCaseList displays a page of cases grouped under module headers.
func (f *Formatter) PrintCaseList(cases []domain.Case, page, pageSize, total int, modules []string) {
	if total == 0 {
		color.Yellow("No cases found.")
		return
	}

	totalPages := (total + pageSize - 1) / pageSize
	color.Green("Found %d case(s) in %d module(s), page %d/%d:\n", total, len(modules), page, totalPages)

	lastModule := ""
	for i, c := range cases {
		if c.Module != lastModule {
			if lastModule != "" {
				fmt.Println()
			}
			color.Cyan("%s", c.Module)
			lastModule = c.Module
		}

		connector := "├──"
		if i == len(cases)-1 || cases[i+1].Module != c.Module {
			connector = "└──"
		}
		fmt.Printf("%s #%-5d %s %s\n", connector, c.ID, statusBadge(c.Status), firstLine(c.Content))
	}

	if totalPages > 1 {
		fmt.Println()
		color.White("Use --page to see more.")
	}
}

// PrintSearchResults displays full-text search matches.
func (f *Formatter) PrintSearchResults(query string, cases []domain.Case) {
	if len(cases) == 0 {
		color.Yellow("No cases match %q.", query)
		return
	}
	color.Green("Found %d case(s) matching %q:\n", len(cases), query)
	for i, c := range cases {
		connector := "├──"
		if i == len(cases)-1 {
			connector = "└──"
		}
		fmt.Printf("%s #%-5d %s %s  %s\n",
			connector, c.ID, statusBadge(c.Status), color.CyanString("[%s]", c.Module), firstLine(c.Content))
	}
}

// PrintProjects displays all projects with their creation dates.
func (f *Formatter) PrintProjects(projects []domain.Project) {
	if len(projects) == 0 {
		color.Yellow("No projects yet.")
		return
	}
	color.Green("Found %d project(s):\n", len(projects))
	for i, p := range projects {
		connector := "├──"
		if i == len(projects)-1 {
			connector = "└──"
		}
		fmt.Printf("%s %s %s\n",
			connector,
			color.CyanString("%-30s", p.Name),
			color.WhiteString(p.CreatedAt.Format("2006-01-02 15:04")))
	}
}

// PrintPendingModules displays modules with unfinished cases.
func (f *Formatter) PrintPendingModules(pending map[string]int64, order []string) {
	if len(pending) == 0 {
		color.Green("✓ No pending modules.")
		return
	}
	color.Yellow("Modules with pending cases:\n")
	for i, name := range order {
		connector := "├──"
		if i == len(order)-1 {
			connector = "└──"
		}
		fmt.Printf("%s %s %s\n",
			connector,
			color.CyanString("%-30s", name),
			color.WhiteString("next case #%d", pending[name]))
	}
}

// statusBadge renders a fixed-width colored status marker.
func statusBadge(s domain.Status) string {
	switch s {
	case domain.StatusPass:
		return color.GreenString("[PASS]   ")
	case domain.StatusFailed:
		return color.RedString("[FAILED] ")
	default:
		return color.YellowString("[PENDING]")
	}
}

// firstLine truncates multi-line content for list display. Truncation is
// rune-based so non-ASCII case text is never cut mid-character.
func firstLine(content string) string {
	line := content
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i] + " …"
	}
	if runes := []rune(line); len(runes) > 90 {
		line = string(runes[:87]) + "..."
	}
	return line
}

func centerText(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return string(runes[:width])
	}
	left := (width - len(runes)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-len(runes)-left)
}
