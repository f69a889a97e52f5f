package tasks

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Volkan-eles/yatirimx3-sub001/app/cfg"
	"github.com/Volkan-eles/yatirimx3-sub001/app/database"
	"github.com/Volkan-eles/yatirimx3-sub001/app/dataset"
	"github.com/Volkan-eles/yatirimx3-sub001/app/fetch"
)

type fakeLedger struct {
	runs []database.Run
}

func (l *fakeLedger) RecordRun(task string, startedAt, finishedAt time.Time, status, detail string) error {
	l.runs = append(l.runs, database.Run{
		Task:       task,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Status:     status,
		Detail:     detail,
	})
	return nil
}

func (l *fakeLedger) GetRecentRuns(limit int) ([]database.Run, error) {
	return l.runs, nil
}

func (l *fakeLedger) GetRunCount() (int, error) {
	return len(l.runs), nil
}

type flakyTask struct {
	Task
	failures int
	calls    int
}

func newFlakyTask(failures int) *flakyTask {
	return &flakyTask{Task: NewTask(TaskTypeSyncDatasets), failures: failures}
}

func (t *flakyTask) Execute(ctx context.Context) error {
	t.calls++
	if t.calls <= t.failures {
		return fmt.Errorf("attempt %d failed", t.calls)
	}
	return nil
}

func TestRunnerRetriesUntilSuccess(t *testing.T) {
	ledger := &fakeLedger{}
	task := newFlakyTask(1)

	err := NewRunner(ledger).Run(context.Background(), []TaskInterface{task})
	if err != nil {
		t.Fatalf("Expected success after retry, got: %v", err)
	}

	if task.calls != 2 {
		t.Errorf("Expected 2 attempts, got: %d", task.calls)
	}
	if len(ledger.runs) != 2 {
		t.Fatalf("Expected both attempts recorded, got: %d", len(ledger.runs))
	}
	if ledger.runs[0].Status != database.RunStatusError {
		t.Errorf("Expected first attempt recorded as error, got: %q", ledger.runs[0].Status)
	}
	if ledger.runs[1].Status != database.RunStatusSuccess {
		t.Errorf("Expected second attempt recorded as success, got: %q", ledger.runs[1].Status)
	}
}

func TestRunnerReportsExhaustedTask(t *testing.T) {
	failing := newFlakyTask(10)
	failing.MaxRetries = 0
	succeeding := newFlakyTask(0)

	err := NewRunner(&fakeLedger{}).Run(context.Background(),
		[]TaskInterface{failing, succeeding})

	if err == nil || !strings.Contains(err.Error(), string(TaskTypeSyncDatasets)) {
		t.Errorf("Expected aggregate failure naming the task, got: %v", err)
	}
	if succeeding.calls != 1 {
		t.Error("Expected later tasks to run despite the earlier failure")
	}
}

func TestSyncDatasetsTask(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"value":[{"t_bistkod":"THYAO","t_sirket":"TÃ¼rk Hava YollarÄ±"}]}`)
	}))
	defer server.Close()

	cfg.Set(&cfg.Cfg{DividendURL: server.URL})

	store := dataset.NewStore(t.TempDir())
	client := fetch.NewClient(nil, "test-agent", "", 5*time.Second)

	task := NewSyncDatasetsTask(client, store)
	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	items := store.LoadArray("temettu.json")
	if len(items) != 1 {
		t.Fatalf("Expected 1 mirrored record, got: %d", len(items))
	}
	if items[0]["t_sirket"] != "Türk Hava Yolları" {
		t.Errorf("Expected repaired company name, got: %v", items[0]["t_sirket"])
	}
}

func TestSyncDatasetsTaskPartialFailure(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"bistkodu":"GARAN"}]`)
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer bad.Close()

	cfg.Set(&cfg.Cfg{DividendURL: bad.URL, TargetPriceURL: good.URL})

	store := dataset.NewStore(t.TempDir())
	client := fetch.NewClient(nil, "test-agent", "", 5*time.Second)

	task := NewSyncDatasetsTask(client, store)
	if err := task.Execute(context.Background()); err == nil {
		t.Error("Expected error for the failed feed")
	}

	if items := store.LoadArray("halkarz_target_prices.json"); len(items) != 1 {
		t.Errorf("Expected the healthy feed to be mirrored anyway, got: %d items", len(items))
	}
}
