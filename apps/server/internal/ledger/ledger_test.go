package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/urbanhobbit/CIOGame04/apps/server/internal/auth"
	"github.com/urbanhobbit/CIOGame04/apps/server/internal/store"
	"github.com/urbanhobbit/CIOGame04/crisis"
	"github.com/urbanhobbit/CIOGame04/metric"
)

func backends(t *testing.T, limit int) map[string]Service {
	t.Helper()
	db, err := store.OpenSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	sqlSvc, err := NewSQLService(db, limit)
	if err != nil {
		t.Fatalf("NewSQLService: %v", err)
	}
	return map[string]Service{"memory": NewMemoryService(limit), "sqlite": sqlSvc}
}

func sampleRun(account uint64, runID string, finished time.Time) RunRecord {
	final := metric.Vector{Security: 60, Freedom: 65, PublicTrust: 55, Resilience: 50, Fatigue: 20}
	return RunRecord{
		RunID:      runID,
		AccountID:  account,
		Mode:       "adult",
		Score:      crisis.LeadershipScore(final),
		Style:      crisis.Classify(final),
		Summary:    crisis.Summarize(final, metric.Pool{Budget: 40, HR: 20}, []metric.Vector{final}),
		FinishedAt: finished,
	}
}

func TestRecordAndGetRun(t *testing.T) {
	finished := time.UnixMilli(1_700_000_000_000).UTC()
	for name, svc := range backends(t, 10) {
		ctx := context.Background()
		for i := 0; i < 2; i++ {
			svc.RecordCrisis(CrisisRecord{
				RunID:        "run-1",
				AccountID:    7,
				Index:        i,
				ScenarioID:   fmt.Sprintf("s%d", i),
				ActionID:     "B",
				Modifiers:    crisis.Modifiers{Scope: crisis.ScopeTargeted, Duration: crisis.DurationShort},
				After:        metric.Vector{Security: 70},
				RandomFactor: 1.1,
				RecordedAt:   finished,
			})
		}
		want := sampleRun(7, "run-1", finished)
		svc.RecordRun(want)

		detail, err := svc.GetRun(ctx, 7, "run-1")
		if err != nil {
			t.Fatalf("%s: GetRun: %v", name, err)
		}
		if diff := cmp.Diff(want, detail.Run); diff != "" {
			t.Fatalf("%s: run mismatch (-want +got):\n%s", name, diff)
		}
		if len(detail.Crises) != 2 || detail.Crises[1].ScenarioID != "s1" || detail.Crises[0].Modifiers.Scope != crisis.ScopeTargeted {
			t.Fatalf("%s: crises = %+v", name, detail.Crises)
		}

		if _, err := svc.GetRun(ctx, 8, "run-1"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("%s: other account GetRun err=%v, want ErrNotFound", name, err)
		}
	}
}

func TestRecentLimitTrimsOldRuns(t *testing.T) {
	base := time.UnixMilli(1_700_000_000_000).UTC()
	for name, svc := range backends(t, 2) {
		ctx := context.Background()
		for i := 0; i < 3; i++ {
			runID := fmt.Sprintf("run-%d", i)
			svc.RecordCrisis(CrisisRecord{RunID: runID, AccountID: 1, ScenarioID: "x"})
			svc.RecordRun(sampleRun(1, runID, base.Add(time.Duration(i)*time.Minute)))
		}
		items, err := svc.ListRecent(ctx, 1, 10)
		if err != nil {
			t.Fatalf("%s: ListRecent: %v", name, err)
		}
		var ids []string
		for _, it := range items {
			ids = append(ids, it.RunID)
		}
		if diff := cmp.Diff([]string{"run-2", "run-1"}, ids); diff != "" {
			t.Fatalf("%s: recent ids (-want +got):\n%s", name, diff)
		}
		if _, err := svc.GetRun(ctx, 1, "run-0"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("%s: trimmed run still present: %v", name, err)
		}
	}
}

func TestRecordIgnoresIncompleteRecords(t *testing.T) {
	for name, svc := range backends(t, 10) {
		svc.RecordRun(RunRecord{RunID: "", AccountID: 1})
		svc.RecordRun(RunRecord{RunID: "x", AccountID: 0})
		svc.RecordCrisis(CrisisRecord{})
		items, err := svc.ListRecent(context.Background(), 1, 10)
		if err != nil || len(items) != 0 {
			t.Fatalf("%s: ListRecent = %v, %v", name, items, err)
		}
	}
}

func TestNewModes(t *testing.T) {
	svc, mode, err := New(Options{Mode: ""}, nil)
	if err != nil || mode != ModeMemory {
		t.Fatalf("New(default) = %v %q %v", svc, mode, err)
	}
	svc, mode, err = New(Options{Mode: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "l.db")}, nil)
	if err != nil || mode != ModeSQLite {
		t.Fatalf("New(sqlite) = %v %q %v", svc, mode, err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, _, err := New(Options{Mode: "redis"}, nil); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestHTTPRecentRequiresSession(t *testing.T) {
	authSvc := auth.NewManager()
	ledgerSvc := NewMemoryService(10)
	accountID, token, _, err := authSvc.Guest("")
	if err != nil {
		t.Fatalf("guest: %v", err)
	}
	ledgerSvc.RecordRun(sampleRun(accountID, "run-a", time.Now()))

	mux := http.NewServeMux()
	NewHTTPHandler(authSvc, ledgerSvc).RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/recent", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("without token: %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/runs/recent?limit=5", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("recent: %d %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Items []RunRecord `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Items) != 1 || body.Items[0].RunID != "run-a" {
		t.Fatalf("items = %+v", body.Items)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/runs/missing", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing run: %d", rec.Code)
	}
}
