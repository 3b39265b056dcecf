package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/payoff/internal/config"
	"github.com/theirongolddev/payoff/internal/engine"
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/pipeline"
	"github.com/theirongolddev/payoff/internal/tui/components"
)

var d = decimal.RequireFromString

func testRequest() pipeline.Request {
	return pipeline.Request{
		Debts: []model.Debt{
			{ID: "D1", Name: "Card", Balance: d("500"), APR: d("20"), MinimumPayment: d("50")},
			{ID: "D2", Name: "Loan", Balance: d("2000"), APR: d("10"), MinimumPayment: d("80")},
		},
		Strategy:      "avalanche",
		MonthlyBudget: d("300"),
		Anchor:        time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func newTestApp(t *testing.T, load LoadFunc) App {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	a := NewApp(Options{Load: load, Portfolio: "/tmp/portfolio.toml"})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	a = m.(App)
	m, _ = a.Update(planCmd(load, nil)())
	return m.(App)
}

func press(t *testing.T, a App, key string) App {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	m, _ := a.Update(msg)
	return m.(App)
}

func TestTabAtXMatchesTabWidths(t *testing.T) {
	for active := range components.Tabs {
		a := App{activeTab: active}
		pos := 0
		for i, tab := range components.Tabs {
			w := components.TabVisualWidth(tab, i == active)
			if got := a.tabAtX(pos + w/2); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, pos+w/2, got, i)
			}
			pos += w + 1
		}
		if a.tabAtX(pos+5) != -1 {
			t.Fatalf("x past the last tab should miss")
		}
	}
}

func TestPlanLoadedPopulatesApp(t *testing.T) {
	a := newTestApp(t, func() (pipeline.Request, error) { return testRequest(), nil })

	if !a.loaded || a.planning {
		t.Fatalf("loaded=%v planning=%v", a.loaded, a.planning)
	}
	if a.err != nil {
		t.Fatalf("unexpected error: %v", a.err)
	}
	if a.result == nil || a.comparison == nil {
		t.Fatal("result or comparison missing")
	}
	if got := len(a.comparison.Runs); got != len(model.Strategies) {
		t.Fatalf("comparison runs = %d", got)
	}

	for _, key := range []string{"o", "s", "c", "x"} {
		a = press(t, a, key)
		if view := a.View(); !strings.Contains(view, "Settings") {
			t.Fatalf("tab %q view is missing the tab bar", key)
		}
	}
	if a.activeTab != tabSettings {
		t.Fatalf("activeTab = %d, want settings", a.activeTab)
	}
	a = press(t, a, "right")
	if a.activeTab != tabOverview {
		t.Fatalf("right from settings should wrap to overview, got %d", a.activeTab)
	}
}

func TestUnfundableBudgetShowsShortfall(t *testing.T) {
	req := testRequest()
	req.MonthlyBudget = d("100")
	a := newTestApp(t, func() (pipeline.Request, error) { return req, nil })

	if !errors.Is(a.err, engine.ErrUnfundablePlan) {
		t.Fatalf("err = %v, want unfundable", a.err)
	}
	if a.result != nil {
		t.Fatal("result should be cleared on error")
	}
	if view := a.View(); !strings.Contains(view, "Shortfall") || !strings.Contains(view, "30.00") {
		t.Fatal("overview does not explain the shortfall")
	}
	if len(a.req.Debts) != 2 {
		t.Fatal("request should be kept so the budget can be adjusted")
	}
}

func TestLoadErrorIsShown(t *testing.T) {
	a := newTestApp(t, func() (pipeline.Request, error) { return pipeline.Request{}, errors.New("portfolio not found") })
	if a.err == nil || !strings.Contains(a.View(), "portfolio not found") {
		t.Fatal("load error not shown")
	}
}

func TestAdjustBudgetSetsWhatIf(t *testing.T) {
	a := newTestApp(t, func() (pipeline.Request, error) { return testRequest(), nil })

	m, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("+")})
	a = m.(App)
	if cmd == nil || !a.planning {
		t.Fatal("raising the budget should start a re-plan")
	}
	if a.budget == nil || !a.budget.Equal(d("350")) {
		t.Fatalf("budget override = %v, want 350", a.budget)
	}

	msg := planCmd(a.opts.Load, a.budget)().(PlanLoadedMsg)
	if msg.Err != nil {
		t.Fatal(msg.Err)
	}
	if !msg.Request.MonthlyBudget.Equal(d("350")) {
		t.Fatalf("planned with %s", msg.Request.MonthlyBudget)
	}
	m, _ = a.Update(msg)
	a = m.(App)
	if !strings.Contains(a.statusInfo(), "what-if 350.00") {
		t.Fatalf("status = %q", a.statusInfo())
	}

	a = press(t, a, "0")
	if a.budget != nil {
		t.Fatal("0 should clear the what-if budget")
	}
}

func TestScheduleNavigation(t *testing.T) {
	a := newTestApp(t, func() (pipeline.Request, error) { return testRequest(), nil })
	a = press(t, a, "s")

	d1, _ := a.result.Allocation.Schedule("D1")
	if got := len(a.scheduleLines()); got != len(d1.Entries) {
		t.Fatalf("D1 ledger lines = %d, want %d", got, len(d1.Entries))
	}

	a = press(t, a, "]")
	a = press(t, a, "]")
	if a.sched.debt != 2 {
		t.Fatalf("debt index = %d, want 2 (all debts)", a.sched.debt)
	}
	lines := a.scheduleLines()
	if len(lines) != a.result.Allocation.Months() {
		t.Fatalf("total lines = %d, want %d", len(lines), a.result.Allocation.Months())
	}
	if !strings.Contains(lines[2], "paid off Card") {
		t.Fatalf("month 3 should mark Card paid off: %q", lines[2])
	}

	a = press(t, a, "]")
	if a.sched.debt != 0 {
		t.Fatal("selector should wrap around")
	}
}

func TestBalanceTrajectory(t *testing.T) {
	req := testRequest()
	res, err := pipeline.Run(req)
	if err != nil {
		t.Fatal(err)
	}

	values, labels := balanceTrajectory(res)
	if len(values) != res.Allocation.Months()+1 || len(labels) != len(values) {
		t.Fatalf("got %d values / %d labels", len(values), len(labels))
	}
	if values[0] != 2500 {
		t.Fatalf("start = %v, want 2500", values[0])
	}
	if values[len(values)-1] != 0 {
		t.Fatalf("end = %v, want 0", values[len(values)-1])
	}
	for i := 1; i < len(values); i++ {
		if values[i] > values[i-1] {
			t.Fatalf("balance rose in month %d: %v -> %v", i, values[i-1], values[i])
		}
	}
	if labels[0] != "Jan 2025" {
		t.Fatalf("first label = %q", labels[0])
	}
}

func TestRetiredShare(t *testing.T) {
	paid := engine.Amortize(model.Debt{ID: "a", Balance: d("1200"), APR: d("12"), MinimumPayment: d("200")}, d("200"), 0, time.Time{})
	if got := retiredShare(paid, d("1200"), 12); got != 1 {
		t.Fatalf("paid-off share = %v, want 1", got)
	}
	if got := retiredShare(paid, d("1200"), 1); got <= 0 || got >= 1 {
		t.Fatalf("one-month share = %v", got)
	}

	stuck := model.Schedule{DebtID: "b", Outcome: model.NonAmortizing}
	if got := retiredShare(stuck, d("1000"), 12); got != 0 {
		t.Fatalf("non-amortizing share = %v, want 0", got)
	}
	if got := retiredShare(model.Schedule{}, decimal.Zero, 12); got != 1 {
		t.Fatalf("zero balance share = %v, want 1", got)
	}
}

func TestSetupValuesApply(t *testing.T) {
	cfg := config.DefaultConfig()
	vals := SetupValues{Portfolio: " ~/debts.toml ", Strategy: "snowball", Budget: "812.345", Theme: "tokyo-night"}
	if err := vals.Apply(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.General.Portfolio != "~/debts.toml" || cfg.General.Strategy != "snowball" {
		t.Fatalf("general = %+v", cfg.General)
	}
	if cfg.General.MonthlyBudget == nil || !cfg.General.MonthlyBudget.Equal(d("812.35")) {
		t.Fatalf("budget = %v", cfg.General.MonthlyBudget)
	}
	if cfg.Appearance.Theme != "tokyo-night" {
		t.Fatalf("theme = %q", cfg.Appearance.Theme)
	}

	vals.Budget = ""
	if err := vals.Apply(&cfg); err != nil || cfg.General.MonthlyBudget != nil {
		t.Fatal("empty budget should clear the setting")
	}
	vals.Budget = "-5"
	if err := vals.Apply(&cfg); err == nil {
		t.Fatal("negative budget accepted")
	}
}
