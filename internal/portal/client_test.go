package portal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lionpath-labs/coursecrawl/internal/cache"
	"github.com/lionpath-labs/coursecrawl/internal/config"
	"github.com/lionpath-labs/coursecrawl/internal/ratelimit"
	"github.com/lionpath-labs/coursecrawl/internal/retry"
	"github.com/lionpath-labs/coursecrawl/pkg/models"
)

const fakeSearchPage = `<html><body><form>
<input type="hidden" name="ICSID" value="sid-42"/>
<input type="hidden" name="ICStateNum" value="1"/>
<input type="checkbox" id="PTS_SELECT$0"/>
<label id="PTS_SELECT_LBL$0">CMPSC / Computer Science</label>
<input type="checkbox" id="PTS_SELECT$1"/>
<label id="PTS_SELECT_LBL$1">MATH / Mathematics</label>
</form></body></html>`

const fakeListingPage = `<html><body>
<input type="hidden" name="ICSID" value="sid-42"/>
<a href="javascript:showClassDetails(2251,12345)">CMPSC 121 - 001 Lecture</a>
<a href="javascript:showClassDetails(2251,12346)">CMPSC 122 - 001 Lecture</a>
</body></html>`

// newPortalServer stands in for the class-search servlet: a GET returns the
// search page, a POST echoing the servlet state returns the listing.
func newPortalServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/search" && r.Method == http.MethodGet:
			fmt.Fprint(w, fakeSearchPage)
		case r.URL.Path == "/search" && r.Method == http.MethodPost:
			if r.FormValue("ICSID") != "sid-42" {
				http.Error(w, "state mismatch", http.StatusBadRequest)
				return
			}
			if r.FormValue("ICAction") == "" {
				http.Error(w, "no action", http.StatusBadRequest)
				return
			}
			fmt.Fprint(w, fakeListingPage)
		case r.URL.Path == "/detail":
			fmt.Fprintf(w, "<html><body><h1>Class %s</h1><table><tr><td>Status</td><td>Open</td></tr></table></body></html>",
				r.URL.Query().Get("CLASS_NBR"))
		default:
			http.NotFound(w, r)
		}
	}))
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		BaseURL:     baseURL,
		SearchPath:  "/search",
		DetailPath:  "/detail",
		Career:      "UGRD",
		UserAgent:   "coursecrawl-test",
		HTTPTimeout: 5 * time.Second,
		MaxRetries:  3,
		CacheTTL:    time.Minute,
	}
}

func testClient(t *testing.T, baseURL string, pages cache.Cache) *Client {
	t.Helper()
	c, err := New(testConfig(baseURL), ratelimit.NewHostLimiter(1000, 1000), pages, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Keep test failures fast
	c.retry.InitialBackoff = time.Millisecond
	c.retry.MaxBackoff = 5 * time.Millisecond
	return c
}

func TestSubjects(t *testing.T) {
	srv := newPortalServer(t)
	defer srv.Close()

	c := testClient(t, srv.URL, nil)
	subjects, err := c.Subjects(context.Background())
	if err != nil {
		t.Fatalf("Subjects: %v", err)
	}

	if len(subjects) != 2 {
		t.Fatalf("expected 2 subjects, got %d", len(subjects))
	}
	if subjects[0].Code != "CMPSC" || subjects[1].Code != "MATH" {
		t.Errorf("unexpected subjects: %v", subjects)
	}
}

func TestSubjectsEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>Scheduled Maintenance</body></html>")
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, nil)
	if _, err := c.Subjects(context.Background()); !errors.Is(err, ErrNoSubjects) {
		t.Errorf("expected ErrNoSubjects, got %v", err)
	}
}

func TestSubjectListing(t *testing.T) {
	srv := newPortalServer(t)
	defer srv.Close()

	c := testClient(t, srv.URL, nil)
	subjects, err := c.Subjects(context.Background())
	if err != nil {
		t.Fatalf("Subjects: %v", err)
	}

	listing, err := c.SubjectListing(context.Background(), subjects[0])
	if err != nil {
		t.Fatalf("SubjectListing: %v", err)
	}

	if len(listing.Summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(listing.Summaries))
	}
	if listing.Summaries[0].ClassNumber != "12345" {
		t.Errorf("unexpected first summary: %+v", listing.Summaries[0])
	}
	if listing.FormState["ICSID"] != "sid-42" {
		t.Errorf("listing form state not captured: %v", listing.FormState)
	}
}

func TestSubjectListingMissingState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>no hidden inputs here</body></html>")
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, nil)
	_, err := c.SubjectListing(context.Background(), subjectFixture())
	if !errors.Is(err, ErrFormState) {
		t.Errorf("expected ErrFormState, got %v", err)
	}
}

func TestCourseDetail(t *testing.T) {
	var gotQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query().Encode())
		fmt.Fprint(w, "<html><body>detail</body></html>")
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, nil)
	page, err := c.CourseDetail(context.Background(), "2251", "12345")
	if err != nil {
		t.Fatalf("CourseDetail: %v", err)
	}
	if page.StatusCode != http.StatusOK {
		t.Errorf("status = %d", page.StatusCode)
	}

	q := gotQuery.Load().(string)
	for _, want := range []string{"STRM=2251", "CLASS_NBR=12345", "ACAD_CAREER=UGRD", "Page=SSR_SSENRL_DETAIL"} {
		if !strings.Contains(q, want) {
			t.Errorf("query %q missing %q", q, want)
		}
	}
}

func TestDoRetriesTransientErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) <= 2 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, nil)
	page, err := c.get(context.Background(), "/anything", nil)
	if err != nil {
		t.Fatalf("get after retries: %v", err)
	}
	if page.Body != "ok" {
		t.Errorf("body = %q", page.Body)
	}
	if hits.Load() != 3 {
		t.Errorf("server hit %d times, want 3", hits.Load())
	}
}

func TestDoGivesUpOnPermanentError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, nil)
	_, err := c.get(context.Background(), "/missing", nil)

	var httpErr retry.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 HTTPError, got %v", err)
	}
	// 404 is not retryable
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1", hits.Load())
	}
}

func TestDoServesFromCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, "cached-me")
	}))
	defer srv.Close()

	pages := cache.NewMemoryCache(1 << 20)
	defer pages.Close()

	c := testClient(t, srv.URL, pages)
	first, err := c.get(context.Background(), "/page", nil)
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	if first.FromCache {
		t.Error("first fetch should not be cached")
	}

	second, err := c.get(context.Background(), "/page", nil)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if !second.FromCache {
		t.Error("second fetch should come from cache")
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1", hits.Load())
	}
}

func TestDoConcurrentCacheHits(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, "shared")
	}))
	defer srv.Close()

	pages := cache.NewMemoryCache(1 << 20)
	defer pages.Close()

	c := testClient(t, srv.URL, pages)
	warm, err := c.get(context.Background(), "/page", nil)
	if err != nil {
		t.Fatalf("warm get: %v", err)
	}

	// Every subject worker refetches the same search page, so identical
	// keys get hit from many goroutines at once.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			page, err := c.get(context.Background(), "/page", nil)
			if err != nil {
				t.Errorf("concurrent get: %v", err)
				return
			}
			if !page.FromCache {
				t.Error("expected cache hit")
			}
			if page.Body != "shared" {
				t.Errorf("body = %q", page.Body)
			}
		}()
	}
	wg.Wait()

	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1", hits.Load())
	}
	if warm.FromCache {
		t.Error("warm fetch must not be marked as cached")
	}

	// The object held by the cache stays unflagged; hits get copies.
	stored, ok := pages.Get(cache.RequestKey("GET", srv.URL+"/page", nil))
	if !ok {
		t.Fatal("page missing from cache")
	}
	if stored.FromCache {
		t.Error("cached object was mutated by a hit")
	}
}

func TestSectionDetailForm(t *testing.T) {
	var gotAction, gotClassNbr atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			gotAction.Store(r.FormValue("ICAction"))
			gotClassNbr.Store(r.FormValue("SSR_CLS_DTL_WRK_CLASS_NBR"))
		}
		fmt.Fprint(w, "<html><body>section</body></html>")
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, nil)
	listing := &Listing{FormState: map[string]string{"ICSID": "sid-42"}}
	if _, err := c.SectionDetail(context.Background(), listing, "2251", "98765"); err != nil {
		t.Fatalf("SectionDetail: %v", err)
	}

	if gotAction.Load() != "DERIVED_CLSRCH_SSR_CLASSNAME_LONG$98765" {
		t.Errorf("ICAction = %v", gotAction.Load())
	}
	if gotClassNbr.Load() != "98765" {
		t.Errorf("class number = %v", gotClassNbr.Load())
	}
}

func subjectFixture() models.Subject {
	return models.Subject{Code: "CMPSC", Name: "Computer Science", CheckboxID: "PTS_SELECT$0"}
}
