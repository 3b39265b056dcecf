package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/payoff/internal/model"
)

func openTemp(t *testing.T) *History {
	t.Helper()
	h, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func sampleRun(hash string, created time.Time) model.Run {
	d := decimal.RequireFromString
	return model.Run{
		InputHash:         hash,
		CreatedAt:         created,
		Source:            "cli",
		Strategy:          "avalanche",
		RequestedStrategy: "custom",
		FellBack:          true,
		MonthlyBudget:     d("300"),
		Months:            model.Never,
		TotalInterest:     d("1234.56"),
		TotalPaid:         d("9999.99"),
		Debts: []model.RunDebt{
			{DebtID: "d1", Months: 3, TotalInterest: d("14.36"), TotalPaid: d("514.36"),
				PayoffDate: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), Outcome: "paid-off"},
			{DebtID: "d2", Months: model.Never, TotalInterest: d("1220.20"), TotalPaid: d("9485.63"),
				Outcome: "non-amortizing"},
		},
	}
}

func TestSaveAndGetRun(t *testing.T) {
	h := openTemp(t)

	created := time.Date(2025, 1, 10, 8, 30, 0, 0, time.UTC)
	saved, err := h.SaveRun(sampleRun("abc", created))
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("SaveRun did not assign an ID")
	}

	got, err := h.GetRun(saved.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
	if !got.Months.IsNever() {
		t.Errorf("Months = %v, want never", got.Months)
	}
	if !got.FellBack || got.RequestedStrategy != "custom" {
		t.Errorf("fallback fields = %v %q", got.FellBack, got.RequestedStrategy)
	}
	if got.TotalInterest.String() != "1234.56" {
		t.Errorf("TotalInterest = %s", got.TotalInterest)
	}
	if !got.PayoffDate.IsZero() {
		t.Errorf("PayoffDate = %v, want zero", got.PayoffDate)
	}
	if len(got.Debts) != 2 {
		t.Fatalf("got %d debts, want 2", len(got.Debts))
	}
	if got.Debts[0].DebtID != "d1" || got.Debts[0].Months != 3 {
		t.Errorf("debt 0 = %+v", got.Debts[0])
	}
	if !got.Debts[0].PayoffDate.Equal(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("debt 0 payoff = %v", got.Debts[0].PayoffDate)
	}
	if !got.Debts[1].Months.IsNever() {
		t.Errorf("debt 1 months = %v, want never", got.Debts[1].Months)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	h := openTemp(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		// sub-second offsets must still sort correctly
		created := base.Add(time.Duration(i) * 1500 * time.Millisecond)
		if _, err := h.SaveRun(sampleRun("h", created)); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := h.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if !runs[0].CreatedAt.After(runs[1].CreatedAt) {
		t.Errorf("runs not newest first: %v, %v", runs[0].CreatedAt, runs[1].CreatedAt)
	}
	if len(runs[0].Debts) != 0 {
		t.Error("ListRuns should not load per-debt rows")
	}

	all, err := h.ListRuns(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d runs, want 3", len(all))
	}
}

func TestLatestByHash(t *testing.T) {
	h := openTemp(t)

	if _, ok, err := h.LatestByHash("missing"); err != nil || ok {
		t.Fatalf("LatestByHash(missing) = %v, %v", ok, err)
	}

	old, _ := h.SaveRun(sampleRun("same", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	newer, _ := h.SaveRun(sampleRun("same", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)))
	_, _ = h.SaveRun(sampleRun("other", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))

	got, ok, err := h.LatestByHash("same")
	if err != nil || !ok {
		t.Fatalf("LatestByHash = %v, %v", ok, err)
	}
	if got.ID != newer.ID || got.ID == old.ID {
		t.Fatalf("LatestByHash returned %s, want %s", got.ID, newer.ID)
	}
}

func TestDeleteAndPrune(t *testing.T) {
	h := openTemp(t)
	var ids []string
	for i := 0; i < 4; i++ {
		r, err := h.SaveRun(sampleRun("p", time.Date(2025, 1, 1+i, 0, 0, 0, 0, time.UTC)))
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, r.ID)
	}

	if err := h.DeleteRun(ids[0]); err != nil {
		t.Fatalf("DeleteRun: %v", err)
	}
	if err := h.DeleteRun(ids[0]); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("second DeleteRun = %v, want ErrRunNotFound", err)
	}
	if _, err := h.GetRun(ids[0]); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("GetRun after delete = %v", err)
	}

	n, err := h.Prune(1)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 2 {
		t.Fatalf("Prune removed %d, want 2", n)
	}
	count, _ := h.RunCount()
	if count != 1 {
		t.Fatalf("RunCount = %d, want 1", count)
	}
	if _, err := h.GetRun(ids[3]); err != nil {
		t.Fatalf("newest run pruned: %v", err)
	}
}
