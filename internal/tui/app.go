// Package tui provides the interactive Bubble Tea dashboard for payoff.
package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/config"
	"github.com/theirongolddev/payoff/internal/engine"
	"github.com/theirongolddev/payoff/internal/pipeline"
	"github.com/theirongolddev/payoff/internal/tui/components"
	"github.com/theirongolddev/payoff/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// LoadFunc produces the plan request, typically by reading the portfolio
// file. It is called again on every reload.
type LoadFunc func() (pipeline.Request, error)

// Options configure a new App.
type Options struct {
	Load       LoadFunc
	Portfolio  string          // shown in the status bar
	BudgetStep decimal.Decimal // +/- increment; zero means 50
	NeedSetup  bool
}

// PlanLoadedMsg is sent when a background plan run finishes.
type PlanLoadedMsg struct {
	Request    pipeline.Request
	Result     *pipeline.Result
	Comparison *pipeline.Comparison
	Err        error
	Elapsed    time.Duration
}

// App is the root Bubble Tea model.
type App struct {
	opts Options

	// Plan state
	req        pipeline.Request
	result     *pipeline.Result
	comparison *pipeline.Comparison
	err        error
	budget     *decimal.Decimal // what-if override set with +/-
	loaded     bool
	planning   bool
	planTime   time.Duration
	lastPlan   time.Time

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Per-tab state
	sched    scheduleState
	settings settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues
	needSetup bool

	spinner spinner.Model
}

const (
	minTerminalWidth = 80
	compactWidth     = 110
	maxContentWidth  = 160
	minContentHeight = 5

	tabOverview = 0
	tabSchedule = 1
	tabCompare  = 2
	tabSettings = 3
)

var defaultBudgetStep = decimal.NewFromInt(50)

// loadConfigOrDefault loads config, returning defaults on error.
// This ensures the TUI can always start even if config is corrupted.
func loadConfigOrDefault() config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	if opts.BudgetStep.IsZero() {
		opts.BudgetStep = defaultBudgetStep
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	vals := SetupValuesFrom(loadConfigOrDefault())
	return App{
		opts:      opts,
		needSetup: opts.NeedSetup,
		setupVals: &vals,
		spinner:   sp,
		planning:  true,
		sched:     scheduleState{view: viewport.New(0, 0)},
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		a.spinner.Tick,
		planCmd(a.opts.Load, a.budget),
	)
}

// planCmd loads the request and runs the plan plus the strategy comparison.
func planCmd(load LoadFunc, budget *decimal.Decimal) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		if load == nil {
			return PlanLoadedMsg{Err: errors.New("no portfolio configured")}
		}
		req, err := load()
		if err != nil {
			return PlanLoadedMsg{Err: err, Elapsed: time.Since(start)}
		}
		if budget != nil {
			req.MonthlyBudget = *budget
		}

		res, err := pipeline.Run(req)
		if err != nil {
			return PlanLoadedMsg{Request: req, Err: err, Elapsed: time.Since(start)}
		}
		cmp, err := pipeline.Compare(req)
		if err != nil {
			cmp = nil
		}
		return PlanLoadedMsg{
			Request:    req,
			Result:     res,
			Comparison: cmp,
			Elapsed:    time.Since(start),
		}
	}
}

func (a App) replan() (App, tea.Cmd) {
	a.planning = true
	return a, tea.Batch(a.spinner.Tick, planCmd(a.opts.Load, a.budget))
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		a.syncSchedule()
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
			if a.activeTab == tabSchedule {
				var cmd tea.Cmd
				a.sched.view, cmd = a.sched.view.Update(msg)
				return a, cmd
			}
		case tea.MouseButtonLeft:
			if msg.Action == tea.MouseActionPress && msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case PlanLoadedMsg:
		a.planning = false
		a.loaded = true
		a.planTime = msg.Elapsed
		a.lastPlan = time.Now()
		a.err = msg.Err
		if len(msg.Request.Debts) > 0 {
			a.req = msg.Request
		}
		if msg.Err == nil {
			a.result = msg.Result
			a.comparison = msg.Comparison
		} else {
			a.result = nil
			a.comparison = nil
		}
		a.syncSchedule()

		if a.needSetup && a.setupForm == nil {
			a.setupForm = NewSetupForm(a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case spinner.TickMsg:
		if a.planning {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch a.activeTab {
	case tabSchedule:
		if m, cmd, ok := a.updateScheduleKey(msg); ok {
			return m, cmd
		}
	case tabSettings:
		switch key {
		case "j", "down":
			if a.settings.cursor < settingsFieldCount-1 {
				a.settings.cursor++
			}
			return a, nil
		case "k", "up":
			if a.settings.cursor > 0 {
				a.settings.cursor--
			}
			return a, nil
		case "enter":
			return a.settingsStartEdit()
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if !a.planning {
			return a.replan()
		}
		return a, nil
	case "+", "=":
		return a.adjustBudget(a.opts.BudgetStep)
	case "-", "_":
		return a.adjustBudget(a.opts.BudgetStep.Neg())
	case "0":
		if a.budget != nil {
			a.budget = nil
			return a.replan()
		}
		return a, nil
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	if r := []rune(key); len(r) == 1 {
		if idx := components.TabIdxByKey(r[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

// adjustBudget moves the what-if budget by delta and re-plans. The budget
// never drops below zero; an unfundable budget is shown as an error.
func (a App) adjustBudget(delta decimal.Decimal) (tea.Model, tea.Cmd) {
	if a.planning || len(a.req.Debts) == 0 {
		return a, nil
	}
	next := a.req.MonthlyBudget.Add(delta)
	if next.IsNegative() {
		next = decimal.Zero
	}
	a.budget = &next
	return a.replan()
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.settings.saveErr = a.saveSetupConfig()
		a.needSetup = false
		a.setupForm = nil
		return a.replan()
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  payoff needs at least %d columns.\n",
		a.width, minTerminalWidth)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ payoff"))
	b.WriteString(subtitleStyle.Render(" · debt payoff planner"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(" Simulating payoff plans..."))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings [][2]string
	}{
		{"Navigation", [][2]string{
			{"o s c x", "Jump to tab"},
			{"← → tab", "Previous / Next tab"},
			{"[ ]", "Previous / Next debt (schedule)"},
			{"j k", "Scroll ledger / move cursor"},
		}},
		{"Plan", [][2]string{
			{"+ -", "Raise / lower the monthly budget"},
			{"0", "Reset budget to the portfolio value"},
			{"r", "Reload portfolio and re-plan"},
			{"Enter", "Edit setting"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	for _, sec := range sections {
		b.WriteString("\n\n")
		b.WriteString(sectionStyle.Render(sec.title))
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "\n  %s  %s",
				keyStyle.Render(fmt.Sprintf("%-8s", bind[0])),
				descStyle.Render(bind[1]))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()

	header := components.RenderTabBar(a.activeTab, w)
	statusBar := components.RenderStatusBar(w, a.statusInfo(), a.planning)

	contentH := max(a.height-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch {
	case a.activeTab == tabSettings:
		content = a.renderSettingsTab(cw)
	case a.err != nil:
		content = a.renderPlanError(cw)
	case a.activeTab == tabOverview:
		content = a.renderOverviewTab(cw)
	case a.activeTab == tabSchedule:
		content = a.renderScheduleTab(cw)
	case a.activeTab == tabCompare:
		content = a.renderCompareTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, a.height, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) statusInfo() string {
	var parts []string
	if a.opts.Portfolio != "" {
		parts = append(parts, filepath.Base(a.opts.Portfolio))
	}
	if a.budget != nil {
		parts = append(parts, "what-if "+cli.FormatMoney(*a.budget))
	}
	if !a.lastPlan.IsZero() {
		parts = append(parts, fmt.Sprintf("planned in %dms", a.planTime.Milliseconds()))
	}
	return strings.Join(parts, " · ")
}

// renderPlanError explains why there is no plan to show.
func (a App) renderPlanError(cw int) string {
	t := theme.Active
	badStyle := lipgloss.NewStyle().Foreground(t.Bad).Background(t.Surface).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	var unfundable *engine.UnfundableError
	if errors.As(a.err, &unfundable) {
		b.WriteString(badStyle.Render("The monthly budget does not cover the minimum payments."))
		b.WriteString("\n\n")
		fmt.Fprintf(&b, "%s%s\n", labelStyle.Render("Budget:     "), valueStyle.Render(cli.FormatMoney(unfundable.Budget)))
		fmt.Fprintf(&b, "%s%s\n", labelStyle.Render("Minimums:   "), valueStyle.Render(cli.FormatMoney(unfundable.Minimums)))
		fmt.Fprintf(&b, "%s%s\n\n", labelStyle.Render("Shortfall:  "), badStyle.Render(cli.FormatMoney(unfundable.Shortfall())))
		b.WriteString(labelStyle.Render("Press + to raise the budget or 0 to reset it."))
	} else {
		b.WriteString(badStyle.Render("Could not build a plan"))
		b.WriteString("\n\n")
		b.WriteString(valueStyle.Render(a.err.Error()))
		b.WriteString("\n\n")
		b.WriteString(labelStyle.Render("Fix the portfolio file and press r to reload, or open Settings [x]."))
	}
	return components.ContentCard("Plan", b.String(), cw)
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}
