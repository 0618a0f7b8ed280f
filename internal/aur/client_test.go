package aur

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenk/backoff"
)

func zeroBackOff() backoff.BackOff {
	return &backoff.ZeroBackOff{}
}

func newTestClient(server *httptest.Server, opts ...Option) *Client {
	base := []Option{
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
		WithBackOff(zeroBackOff),
	}
	return NewClient(append(base, opts...)...)
}

func writeEnvelope(t *testing.T, w http.ResponseWriter, env response) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(env); err != nil {
		t.Errorf("encoding response: %v", err)
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient()
	if c.BaseURL() != DefaultBaseURL {
		t.Errorf("expected base URL %s, got %s", DefaultBaseURL, c.BaseURL())
	}
	if c.chunkSize != DefaultChunkSize || c.maxRetries != DefaultMaxRetries {
		t.Errorf("unexpected defaults: chunk %d retries %d", c.chunkSize, c.maxRetries)
	}
	if c.httpClient.Timeout != DefaultTimeout {
		t.Errorf("expected timeout %v, got %v", DefaultTimeout, c.httpClient.Timeout)
	}

	c = NewClient(WithBaseURL("https://aur.example.org/"), WithTimeout(5*time.Second), WithMaxRetries(0))
	if c.BaseURL() != "https://aur.example.org" {
		t.Errorf("trailing slash not trimmed: %s", c.BaseURL())
	}
	if c.httpClient.Timeout != 5*time.Second || c.maxRetries != 0 {
		t.Errorf("options not applied: %v %d", c.httpClient.Timeout, c.maxRetries)
	}
}

func TestInfo(t *testing.T) {
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rpc/v5/info" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		userAgent = r.Header.Get("User-Agent")

		var results []Package
		for _, name := range r.URL.Query()["arg[]"] {
			if name == "missing" {
				continue
			}
			results = append(results, Package{Name: name, Version: "2.0-1"})
		}
		writeEnvelope(t, w, response{Version: 5, Type: "multiinfo", ResultCount: len(results), Results: results})
	}))
	defer server.Close()

	client := newTestClient(server, WithUserAgent("qmaur/test"))
	pkgs, err := client.Info(context.Background(), []string{"yay", "missing", "paru"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var names []string
	for _, p := range pkgs {
		names = append(names, p.Name)
	}
	if !reflect.DeepEqual(names, []string{"yay", "paru"}) {
		t.Errorf("unexpected results %v", names)
	}
	if userAgent != "qmaur/test" {
		t.Errorf("expected user agent qmaur/test, got %q", userAgent)
	}
}

func TestInfoEmptyNamesMakesNoRequest(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	pkgs, err := newTestClient(server).Info(context.Background(), nil)
	if err != nil || len(pkgs) != 0 {
		t.Errorf("expected empty result, got %v, %v", pkgs, err)
	}
	if calls != 0 {
		t.Errorf("expected no requests, got %d", calls)
	}
}

func TestInfoChunking(t *testing.T) {
	var sizes []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		args := r.URL.Query()["arg[]"]
		sizes = append(sizes, len(args))
		var results []Package
		for _, name := range args {
			results = append(results, Package{Name: name, Version: "1"})
		}
		writeEnvelope(t, w, response{Version: 5, Type: "multiinfo", ResultCount: len(results), Results: results})
	}))
	defer server.Close()

	names := make([]string, 7)
	for i := range names {
		names[i] = fmt.Sprintf("pkg%d", i)
	}

	pkgs, err := newTestClient(server, WithChunkSize(3)).Info(context.Background(), names)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pkgs) != 7 {
		t.Errorf("expected 7 results, got %d", len(pkgs))
	}
	if !reflect.DeepEqual(sizes, []int{3, 3, 1}) {
		t.Errorf("expected chunks [3 3 1], got %v", sizes)
	}
}

func TestInfoChunkFailureAborts(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 2 {
			writeEnvelope(t, w, response{Version: 5, Type: "error", Error: "Incorrect request type specified."})
			return
		}
		writeEnvelope(t, w, response{Version: 5, Type: "multiinfo"})
	}))
	defer server.Close()

	pkgs, err := newTestClient(server, WithChunkSize(1)).Info(context.Background(), []string{"a", "b", "c"})
	if !errors.Is(err, ErrService) {
		t.Fatalf("expected ErrService, got %v", err)
	}
	if pkgs != nil {
		t.Errorf("expected no partial results, got %v", pkgs)
	}
	if calls != 2 {
		t.Errorf("expected requests to stop after the failing chunk, got %d", calls)
	}
}

func TestSearch(t *testing.T) {
	var gotPath, gotBy string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBy = r.URL.Query().Get("by")
		writeEnvelope(t, w, response{
			Version:     5,
			Type:        "search",
			ResultCount: 2,
			Results: []Package{
				{Name: "yay", Version: "12.4.2-1", NumVotes: 2000},
				{Name: "yay-bin", Version: "12.4.2-1", NumVotes: 800},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server)

	pkgs, err := client.Search(context.Background(), "yay helper", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pkgs) != 2 {
		t.Errorf("expected 2 results, got %d", len(pkgs))
	}
	if gotPath != "/rpc/v5/search/yay helper" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotBy != string(ByNameDesc) {
		t.Errorf("expected default by=name-desc, got %q", gotBy)
	}

	if _, err := client.Search(context.Background(), "jguer", ByMaintainer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotBy != "maintainer" {
		t.Errorf("expected by=maintainer, got %q", gotBy)
	}
}

func TestSearchValidation(t *testing.T) {
	client := NewClient(WithBaseURL("http://127.0.0.1:0"))

	if _, err := client.Search(context.Background(), "   ", ByName); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
	if _, err := client.Search(context.Background(), "yay", SearchBy("color")); !errors.Is(err, ErrInvalidSearchField) {
		t.Errorf("expected ErrInvalidSearchField, got %v", err)
	}
}

func TestServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, response{Version: 5, Type: "error", Error: "Too many package results."})
	}))
	defer server.Close()

	_, err := newTestClient(server).Search(context.Background(), "a", ByName)
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected *ServiceError, got %v", err)
	}
	if svcErr.Message != "Too many package results." {
		t.Errorf("unexpected message %q", svcErr.Message)
	}
	if !strings.Contains(err.Error(), "Too many package results.") {
		t.Errorf("message missing from error string: %s", err)
	}
}

func TestRetryOnServerError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeEnvelope(t, w, response{Version: 5, Type: "multiinfo", Results: []Package{{Name: "yay", Version: "1"}}})
	}))
	defer server.Close()

	pkgs, err := newTestClient(server, WithMaxRetries(2)).Info(context.Background(), []string{"yay"})
	if err != nil {
		t.Fatalf("unexpected error after retries: %v", err)
	}
	if len(pkgs) != 1 || calls != 3 {
		t.Errorf("expected success on 3rd attempt, got %d results after %d calls", len(pkgs), calls)
	}
}

func TestRetriesExhausted(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(server, WithMaxRetries(1)).Info(context.Background(), []string{"yay"})
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected HTTP 429 error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := newTestClient(server, WithMaxRetries(3)).Info(context.Background(), []string{"yay"})
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected HTTP 400 error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single attempt, got %d", calls)
	}
}

func TestErrorEnvelopeWithStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"version":5,"type":"error","resultcount":0,"results":[],"error":"Query arg too small."}`)
	}))
	defer server.Close()

	_, err := newTestClient(server).Search(context.Background(), "a", ByName)
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) || svcErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected service error with status 400, got %v", err)
	}
}

func TestDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>maintenance</html>")
	}))
	defer server.Close()

	_, err := newTestClient(server).Info(context.Background(), []string{"yay"})
	if !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}

func TestTransportErrorIsRetried(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(WithBaseURL(url), WithMaxRetries(1), WithBackOff(zeroBackOff), WithTimeout(2*time.Second))
	_, err := client.Info(context.Background(), []string{"yay"})
	if err == nil {
		t.Fatal("expected error for closed server")
	}
	if !isRetryable(err) {
		t.Errorf("connection failures should be retryable: %v", err)
	}
}

func TestCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, response{Version: 5, Type: "multiinfo"})
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(server).Info(ctx, []string{"yay"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPackageHelpers(t *testing.T) {
	flagged := int64(1700000000)
	p := Package{
		Name:           "yay",
		Version:        "12.4.2-1",
		URLPath:        "/cgit/aur.git/snapshot/yay.tar.gz",
		OutOfDate:      &flagged,
		FirstSubmitted: 1475688004,
		LastModified:   1728000000,
	}

	if !p.IsOutOfDate() || !p.OutOfDateSince().Equal(time.Unix(flagged, 0)) {
		t.Error("expected flagged package")
	}
	if !p.IsOrphan() {
		t.Error("package without maintainer should be orphan")
	}
	if got := p.PURL(); got != "pkg:alpm/aur/yay@12.4.2-1" {
		t.Errorf("unexpected PURL %q", got)
	}
	if got := p.PageURL(DefaultBaseURL); got != "https://aur.archlinux.org/packages/yay" {
		t.Errorf("unexpected page URL %q", got)
	}
	if got := p.SnapshotURL(DefaultBaseURL); got != "https://aur.archlinux.org/cgit/aur.git/snapshot/yay.tar.gz" {
		t.Errorf("unexpected snapshot URL %q", got)
	}
	if p.FirstSubmittedTime().Unix() != 1475688004 || p.LastModifiedTime().Unix() != 1728000000 {
		t.Error("unexpected timestamps")
	}

	var none Package
	if none.IsOutOfDate() || !none.OutOfDateSince().IsZero() || none.SnapshotURL(DefaultBaseURL) != "" {
		t.Error("zero package should have no flag and no snapshot")
	}
}

func TestPackageDecoding(t *testing.T) {
	raw := `{"ID":1,"Name":"yay","PackageBaseID":2,"PackageBase":"yay","Version":"12.4.2-1",
		"Description":"Yet another yogurt","URL":"https://github.com/Jguer/yay","NumVotes":2400,
		"Popularity":21.5,"OutOfDate":null,"Maintainer":null,"Submitter":"jguer",
		"FirstSubmitted":1475688004,"LastModified":1728000000,"URLPath":"/cgit/aur.git/snapshot/yay.tar.gz",
		"Depends":["pacman>6.1","git"],"MakeDepends":["go>=1.21"],"License":["GPL-3.0-or-later"]}`

	var p Package
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if p.OutOfDate != nil || p.Maintainer != "" {
		t.Errorf("null fields should decode to zero values: %+v", p)
	}
	if !reflect.DeepEqual(p.Depends, []string{"pacman>6.1", "git"}) || p.Popularity != 21.5 {
		t.Errorf("unexpected decode %+v", p)
	}
}

func TestSearchByValid(t *testing.T) {
	for _, f := range SearchFields {
		if !f.Valid() {
			t.Errorf("%s should be valid", f)
		}
	}
	if SearchBy("").Valid() || SearchBy("popularity").Valid() {
		t.Error("unexpected valid search field")
	}
}

func TestMockIndex(t *testing.T) {
	mock := NewMockIndex(Package{Name: "yay", Version: "1"}, Package{Name: "paru", Version: "2"})

	pkgs, _ := mock.Info(context.Background(), []string{"paru", "nope"})
	if len(pkgs) != 1 || pkgs[0].Name != "paru" {
		t.Errorf("unexpected info result %v", pkgs)
	}
	pkgs, _ = mock.Search(context.Background(), "ya", ByName)
	if len(pkgs) != 1 || pkgs[0].Name != "yay" {
		t.Errorf("unexpected search result %v", pkgs)
	}
	if len(mock.InfoCalls) != 1 || len(mock.SearchCalls) != 1 {
		t.Errorf("calls not recorded: %v %v", mock.InfoCalls, mock.SearchCalls)
	}
}
