package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/lionpath-labs/coursecrawl/internal/config"
	"github.com/lionpath-labs/coursecrawl/internal/portal"
	"github.com/lionpath-labs/coursecrawl/internal/ratelimit"
)

// fakePortal simulates the whole search flow: a search page with two
// subjects, per-subject listings, and per-class detail pages.
func fakePortal(t *testing.T) *httptest.Server {
	t.Helper()

	searchPage := `<html><body>
<input type="hidden" name="ICSID" value="s1"/>
<input type="checkbox" id="PTS_SELECT$0"/>
<label id="PTS_SELECT_LBL$0">CMPSC / Computer Science</label>
<input type="checkbox" id="PTS_SELECT$1"/>
<label id="PTS_SELECT_LBL$1">MATH / Mathematics</label>
</body></html>`

	listings := map[string]string{
		"PTS_SELECT$0": `<input type="hidden" name="ICSID" value="s1"/>
<a href="javascript:showClassDetails(2251,11111)">CMPSC 121 - 001 Lecture</a>
<a href="javascript:showClassDetails(2251,11112)">CMPSC 121 - 002 Lecture</a>`,
		"PTS_SELECT$1": `<input type="hidden" name="ICSID" value="s1"/>
<a href="javascript:showClassDetails(2251,22222)">MATH 140 - 001 Lecture</a>
<a href="javascript:showClassDetails(2251,22223)">MATH 140 - 001W Lecture World Campus</a>`,
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/search" && r.Method == http.MethodGet:
			fmt.Fprint(w, searchPage)
		case r.URL.Path == "/search" && r.Method == http.MethodPost:
			body, ok := listings[r.FormValue("ICAction")]
			if !ok {
				http.Error(w, "unknown action", http.StatusBadRequest)
				return
			}
			fmt.Fprint(w, body)
		case r.URL.Path == "/detail":
			fmt.Fprintf(w, `<html><body>
<h1>%[1]s</h1>
<table>
<tr><td>Status</td><td>Open</td></tr>
<tr><td>Units</td><td>3.00</td></tr>
<tr><td>Class Capacity</td><td>100</td></tr>
<tr><td>Enrollment Total</td><td>60</td></tr>
<tr><td>Instructor</td><td>Staff</td></tr>
</table>
</body></html>`, r.URL.Query().Get("CLASS_NBR"))
		default:
			http.NotFound(w, r)
		}
	}))
}

func testPipeline(t *testing.T, baseURL string) *Pipeline {
	t.Helper()

	cfg := &config.Config{
		BaseURL:        baseURL,
		SearchPath:     "/search",
		DetailPath:     "/detail",
		Career:         "UGRD",
		Campus:         "UP",
		UserAgent:      "coursecrawl-test",
		HTTPTimeout:    5 * time.Second,
		MaxRetries:     2,
		SubjectWorkers: 2,
		DetailWorkers:  4,
		CacheTTL:       time.Minute,
	}

	client, err := portal.New(cfg, ratelimit.NewHostLimiter(1000, 1000), nil, nil)
	if err != nil {
		t.Fatalf("portal.New: %v", err)
	}
	return New(cfg, client)
}

func TestRun(t *testing.T) {
	srv := fakePortal(t)
	defer srv.Close()

	p := testPipeline(t, srv.URL)
	result, err := p.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Stats.ProcessedSubjects != 2 {
		t.Errorf("ProcessedSubjects = %d", result.Stats.ProcessedSubjects)
	}
	// The World Campus section is filtered out under the default campus
	if result.Stats.TotalSections != 3 {
		t.Errorf("TotalSections = %d, want 3", result.Stats.TotalSections)
	}
	if len(result.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(result.Records))
	}

	cmpsc := result.Records[0]
	if cmpsc.Course.Code != "CMPSC 121" {
		t.Fatalf("first record = %q", cmpsc.Course.Code)
	}
	if cmpsc.Course.Units != "3.00" {
		t.Errorf("course detail not applied: %+v", cmpsc.Course)
	}
	if len(cmpsc.Sections) != 2 {
		t.Fatalf("sections = %d", len(cmpsc.Sections))
	}
	for _, sec := range cmpsc.Sections {
		if sec.Status != "Open" || sec.Instructor != "Staff" {
			t.Errorf("section not enriched: %+v", sec)
		}
		if sec.AvailableSeats != 40 {
			t.Errorf("AvailableSeats = %d, want 40", sec.AvailableSeats)
		}
	}
	if cmpsc.Stats.SectionCount != 2 || cmpsc.Stats.TotalCapacity != 200 {
		t.Errorf("stats = %+v", cmpsc.Stats)
	}
	if result.Stats.DetailedSections != 3 || result.Stats.FailedDetails != 0 {
		t.Errorf("detail stats = %+v", result.Stats)
	}
}

func TestRunSubjectFilter(t *testing.T) {
	srv := fakePortal(t)
	defer srv.Close()

	p := testPipeline(t, srv.URL)
	result, err := p.Run(context.Background(), Options{Subjects: []string{"math"}, SkipDetails: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.Records) != 1 || result.Records[0].Course.Subject != "MATH" {
		t.Fatalf("records = %+v", result.Records)
	}
	// SkipDetails leaves listing-level fields only
	if result.Records[0].Course.Units != "" {
		t.Errorf("details fetched despite SkipDetails")
	}
}

func TestRunSurvivesFailedSubject(t *testing.T) {
	srv := fakePortal(t)
	defer srv.Close()

	// Wrap the fake portal: listing posts for MATH fail with 500s.
	wrapped := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_ = r.ParseForm()
			if r.FormValue("ICAction") == "PTS_SELECT$1" {
				http.Error(w, "boom", http.StatusInternalServerError)
				return
			}
		}
		proxyTo(t, srv.URL, w, r)
	}))
	defer wrapped.Close()

	p := testPipeline(t, wrapped.URL)
	result, err := p.Run(context.Background(), Options{SkipDetails: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Stats.ProcessedSubjects != 1 {
		t.Errorf("ProcessedSubjects = %d", result.Stats.ProcessedSubjects)
	}
	if len(result.Stats.FailedSubjects) != 1 || result.Stats.FailedSubjects[0] != "MATH" {
		t.Errorf("FailedSubjects = %v", result.Stats.FailedSubjects)
	}
	if len(result.Records) != 1 || result.Records[0].Course.Subject != "CMPSC" {
		t.Errorf("records = %+v", result.Records)
	}
}

func TestRunCancelled(t *testing.T) {
	srv := fakePortal(t)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := testPipeline(t, srv.URL)
	if _, err := p.Run(ctx, Options{}); err == nil {
		t.Error("expected error from cancelled run")
	}
}

func TestRunCancelledMidRunKeepsRecords(t *testing.T) {
	srv := fakePortal(t)
	defer srv.Close()

	firstDetail := make(chan struct{})
	var once sync.Once

	// Listings flow through untouched; the first detail request triggers
	// the interrupt, and detail responses stall so the cancel lands while
	// the detail stage is still in flight.
	wrapped := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/detail" {
			once.Do(func() { close(firstDetail) })
			time.Sleep(200 * time.Millisecond)
		}
		proxyTo(t, srv.URL, w, r)
	}))
	defer wrapped.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-firstDetail
		cancel()
	}()

	p := testPipeline(t, wrapped.URL)
	result, err := p.Run(ctx, Options{})
	if err == nil {
		t.Error("expected error from interrupted run")
	}
	if result == nil {
		t.Fatal("interrupted run must still return its result")
	}

	// Everything aggregated from the listing stage survives the interrupt
	if len(result.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(result.Records))
	}
	for _, rec := range result.Records {
		if len(rec.Sections) == 0 {
			t.Errorf("%s lost its sections", rec.Course.Code)
		}
		for _, sec := range rec.Sections {
			if sec.ClassNumber == "" {
				t.Errorf("%s has a section without a class number", rec.Course.Code)
			}
		}
	}
}

// proxyTo replays a request against the real fake portal and copies back
// the response.
func proxyTo(t *testing.T, base string, w http.ResponseWriter, r *http.Request) {
	t.Helper()

	_ = r.ParseForm()
	var (
		resp *http.Response
		err  error
	)
	if r.Method == http.MethodPost {
		resp, err = http.PostForm(base+r.URL.Path, r.PostForm)
	} else {
		resp, err = http.Get(base + r.URL.String())
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}
