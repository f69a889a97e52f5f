package tasks

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Volkan-eles/yatirimx3-sub001/app/cfg"
	"github.com/Volkan-eles/yatirimx3-sub001/app/dataset"
	"github.com/Volkan-eles/yatirimx3-sub001/app/fetch"
)

const detailPage = `<html><body>
<div class="entry-content">
<p>Halka Arz Fiyatı/Aralığı : 19,50 TL</p>
<p>Dağıtım şekli: Eşit Dağıtım</p>
<p>Sermaye Artırımı : 54.700.000 Lot</p>
<p>Ortak Satışı : 2.000.000 Lot</p>
<p>Talep toplama saatleri 10:00 - 17:00</p>
</div>
</body></html>`

func scrapeTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	var server *httptest.Server
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body>
<article>
<h2>Meysu Gıda Sanayi ve Ticaret A.Ş. (MEYSU)</h2>
<a href="%s/meysu-gida/">detay</a>
<img src="/logo.png">
</article>
<article>
<h2>Halka Arz Rehberi</h2>
<a href="%s/rehber/">oku</a>
</article>
</body></html>`, server.URL, server.URL)
	})

	mux.HandleFunc("/taslak/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body>
<article>
<h3>Kuzey Boru A.Ş.</h3>
<a href="%s/kuzey-boru/">detay</a>
</article>
</body></html>`, server.URL)
	})

	mux.HandleFunc("/meysu-gida/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, detailPage)
	})

	mux.HandleFunc("/kuzey-boru/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusServiceUnavailable)
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestScrapeIPOsTaskEndToEnd(t *testing.T) {
	server := scrapeTestServer(t)

	cfg.Set(&cfg.Cfg{
		SourceURL:          server.URL + "/",
		DraftURL:           server.URL + "/taslak/",
		MaxActive:          4,
		MaxDrafts:          20,
		CheckpointInterval: 5,
		WorkerCount:        1,
	})

	store := dataset.NewStore(t.TempDir())
	client := fetch.NewClient(nil, "test-agent", "", 5*time.Second)

	task := NewScrapeIPOsTask(client, store, nil)
	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	var doc dataset.Document
	if err := store.LoadInto(ipoFile, &doc); err != nil {
		t.Fatal(err)
	}

	if len(doc.Active) != 1 {
		t.Fatalf("Expected 1 active record, got: %d", len(doc.Active))
	}
	if len(doc.Draft) != 1 {
		t.Fatalf("Expected 1 draft record, got: %d", len(doc.Draft))
	}

	active := doc.Active[0]
	if active.Code != "MEYSU" {
		t.Errorf("Expected code MEYSU, got: %q", active.Code)
	}
	if active.Status != "Yeni" {
		t.Errorf("Expected status Yeni, got: %q", active.Status)
	}
	if active.Price != 19.50 {
		t.Errorf("Expected price 19.50, got: %v", active.Price)
	}
	if active.LotCount != "56.7 Milyon" {
		t.Errorf("Expected aggregated lot count, got: %q", active.LotCount)
	}
	if active.DistributionType != "Eşit Dağıtım" {
		t.Errorf("Expected equal distribution, got: %q", active.DistributionType)
	}
	if active.Market != "Yıldız Pazar" {
		t.Errorf("Expected default market, got: %q", active.Market)
	}
	if active.Hours != "10:00-17:00" {
		t.Errorf("Expected normalized hours, got: %q", active.Hours)
	}
	if active.Slug != "meysu-gida" {
		t.Errorf("Expected slug from URL, got: %q", active.Slug)
	}

	// Detail fetch failed with 503, so the draft keeps default fields but
	// still makes it into the dataset.
	draft := doc.Draft[0]
	if draft.Company != "Kuzey Boru A.Ş." {
		t.Errorf("Unexpected draft company: %q", draft.Company)
	}
	if draft.LotCount != "Bilinmiyor" {
		t.Errorf("Expected default lot count for failed detail, got: %q", draft.LotCount)
	}
	if draft.Slug != "kuzey-boru" {
		t.Errorf("Expected slug from URL, got: %q", draft.Slug)
	}
}

func TestScrapeIPOsTaskIndexFailureAborts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg.Set(&cfg.Cfg{
		SourceURL:          server.URL + "/",
		MaxActive:          4,
		MaxDrafts:          20,
		CheckpointInterval: 5,
		WorkerCount:        1,
	})

	store := dataset.NewStore(t.TempDir())
	client := fetch.NewClient(nil, "test-agent", "", 5*time.Second)

	task := NewScrapeIPOsTask(client, store, nil)
	if err := task.Execute(context.Background()); err == nil {
		t.Error("Expected error when the listing page fetch fails")
	}
}

func TestScrapeIPOsTaskActiveLimit(t *testing.T) {
	var server *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			fmt.Fprint(w, `<html><body><div class="entry-content">boş</div></body></html>`)
			return
		}
		fmt.Fprint(w, "<html><body>")
		for i := 0; i < 6; i++ {
			fmt.Fprintf(w, `<article><h2>Şirket %d A.Ş.</h2><a href="%s/detay-%d/">x</a></article>`,
				i, server.URL, i)
		}
		fmt.Fprint(w, "</body></html>")
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	cfg.Set(&cfg.Cfg{
		SourceURL:          server.URL + "/",
		MaxActive:          4,
		MaxDrafts:          20,
		CheckpointInterval: 5,
		WorkerCount:        2,
	})

	store := dataset.NewStore(t.TempDir())
	client := fetch.NewClient(nil, "test-agent", "", 5*time.Second)

	task := NewScrapeIPOsTask(client, store, nil)
	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	var doc dataset.Document
	if err := store.LoadInto(ipoFile, &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Active) != 4 {
		t.Errorf("Expected active records capped at 4, got: %d", len(doc.Active))
	}
}
