package testutils

import (
	"embed"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"
)

//go:embed sitedata
var sitedata embed.FS

// FakeLeagueSite serves canned league pages on the upstream paths. Division pages are
// picked by DivisionId, team pages by TeamId; anything without a file is a 404.
type FakeLeagueSite struct {
	s *httptest.Server

	mu       sync.Mutex
	failures map[string]int // page key -> status to answer with
	hits     map[string]int
}

func NewFakeLeagueSite() *FakeLeagueSite {
	f := &FakeLeagueSite{
		failures: make(map[string]int),
		hits:     make(map[string]int),
	}

	r := chi.NewRouter()
	r.Route("/External/Fixtures", func(r chi.Router) {
		r.Get("/Default.aspx", f.page(func(*http.Request) string { return "league_list" }))
		r.Get("/Standings.aspx", f.page(byParam("standings", "DivisionId")))
		r.Get("/Fixtures.aspx", f.page(byParam("fixtures", "DivisionId")))
		r.Get("/Statistics.aspx", f.page(byParam("statistics", "DivisionId")))
		r.Get("/Team.aspx", f.page(byParam("team", "TeamId")))
	})

	f.s = httptest.NewServer(r)
	return f
}

func (f *FakeLeagueSite) Close() {
	f.s.Close()
}

func (f *FakeLeagueSite) URL() string {
	return f.s.URL
}

// Fail makes the page with the given key (e.g. "standings_202") answer with status.
func (f *FakeLeagueSite) Fail(key string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[key] = status
}

// Hits returns how many requests the page with the given key received.
func (f *FakeLeagueSite) Hits(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[key]
}

func byParam(prefix, param string) func(*http.Request) string {
	return func(r *http.Request) string {
		return fmt.Sprintf("%s_%s", prefix, r.URL.Query().Get(param))
	}
}

func (f *FakeLeagueSite) page(keyOf func(*http.Request) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := keyOf(r)

		f.mu.Lock()
		f.hits[key]++
		status, failing := f.failures[key]
		f.mu.Unlock()

		if failing {
			w.WriteHeader(status)
			return
		}
		serveFile(w, key+".html")
	}
}

func serveFile(w http.ResponseWriter, name string) {
	b, err := sitedata.ReadFile(fmt.Sprintf("sitedata/%s", name))
	if err != nil {
		log.Printf("no sitedata/%s: %v", name, err)
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
