package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"mtp/internal/domain"
	"mtp/internal/store"
)

// BugViewer displays failed cases and their bug reports in an interactive TUI
type BugViewer struct {
	store store.Store
}

// NewBugViewer creates a new BugViewer
func NewBugViewer(st store.Store) *BugViewer {
	return &BugViewer{store: st}
}

// View shows the project's failed cases in a two-pane layout: case list on
// the left, the selected bug report on the right. Pressing D deletes the
// selected report in the store; the case stays FAILED.
func (bv *BugViewer) View(project string) error {
	cases, err := bv.store.FailedCasesWithReports(project)
	if err != nil {
		return err
	}
	if len(cases) == 0 {
		color.Green("✓ No failed cases with bug reports in %s.", project)
		return nil
	}

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)

	getListItemText := func(index int) string {
		c := cases[index]
		title := firstLine(c.Content)
		if c.BugReport == "" {
			return fmt.Sprintf("[gray]%d. #%d %s (report deleted)[white]", index+1, c.ID, title)
		}
		return fmt.Sprintf("[yellow]%d.[white] #%d %s", index+1, c.ID, title)
	}

	for i := range cases {
		list.AddItem(getListItemText(i), "", 0, nil)
	}

	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan).
		SetSecondaryTextColor(tview.Styles.SecondaryTextColor)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetWordWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		remaining := 0
		for _, c := range cases {
			if c.BugReport != "" {
				remaining++
			}
		}
		headerView.SetText(fmt.Sprintf(
			" Bug Reports: %s (%d failed, %d with reports) | ↑↓ navigate, → view report, ← back, [yellow]D[white] delete report, Ctrl+C exit ",
			project, len(cases), remaining))
	}
	updateHeader()

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index < 0 || index >= len(cases) {
			return
		}
		c := cases[index]
		statsView.SetText(fmt.Sprintf("[cyan]module:[white] [yellow]%s[white]  [cyan]case:[white] [yellow]#%d[white]", c.Module, c.ID))
		detailsView.SetText(bv.formatReport(c))
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyUp, tcell.KeyDown:
			return event
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'd' || event.Rune() == 'D' {
				index := list.GetCurrentItem()
				if index >= 0 && index < len(cases) && cases[index].BugReport != "" {
					if err := bv.store.DeleteBugReport(cases[index].ID); err == nil {
						cases[index].BugReport = ""
						list.SetItemText(index, getListItemText(index), "")
						updateHeader()
						updateDetails()
					}
				}
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(index int, mainText string, secondaryText string, shortcut rune) {
		updateDetails()
	})
	updateDetails()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// formatReport formats a failed case for the details pane using tview color tags.
func (bv *BugViewer) formatReport(c domain.Case) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "[red]✗ Case #%d[white]\n\n", c.ID)
	fmt.Fprintf(&builder, "[cyan]Module: %s[white]\n\n", c.Module)
	fmt.Fprintf(&builder, "[yellow]Case:[white]\n%s\n\n", c.Content)

	if c.BugReport == "" {
		builder.WriteString("[gray]Report deleted.[white]\n")
	} else {
		fmt.Fprintf(&builder, "[yellow]Bug Report:[white]\n%s\n", c.BugReport)
	}
	return builder.String()
}
