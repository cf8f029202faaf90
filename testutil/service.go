package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
)

// RecordedRequest captures one request the fake service received.
type RecordedRequest struct {
	Method   string
	Endpoint string
	Query    url.Values
	// Form holds multipart or urlencoded form fields for POSTs.
	Form map[string]string
}

// Script describes how the fake service answers one endpoint. Statuses are
// consumed in order; once exhausted, every further request gets the last
// status. An empty Statuses slice means always 200.
type Script struct {
	Statuses []int
	Body     string
	// Header is attached to every response for this endpoint.
	Header map[string]string
}

// FakeService is an httptest-backed census API double with scripted
// per-endpoint responses. Safe for concurrent use.
type FakeService struct {
	mu       sync.Mutex
	scripts  map[string]*Script
	served   map[string]int
	requests []RecordedRequest
	server   *httptest.Server
}

// NewFakeService starts the service. Callers own shutdown via Close.
func NewFakeService() *FakeService {
	f := &FakeService{
		scripts: map[string]*Script{},
		served:  map[string]int{},
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

// URL returns the service's base URL, ready for config.Config.BaseURL.
func (f *FakeService) URL() string { return f.server.URL + "/" }

// Close shuts the underlying server down.
func (f *FakeService) Close() { f.server.Close() }

// Respond scripts endpoint to always answer 200 with body.
func (f *FakeService) Respond(endpoint, body string) {
	f.Script(endpoint, &Script{Body: body})
}

// Script installs a full script for endpoint.
func (f *FakeService) Script(endpoint string, s *Script) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts[strings.TrimPrefix(endpoint, "/")] = s
	f.served[strings.TrimPrefix(endpoint, "/")] = 0
}

// Requests returns a copy of everything received so far.
func (f *FakeService) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}

// Count returns how many requests hit endpoint.
func (f *FakeService) Count(endpoint string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.Endpoint == endpoint {
			n++
		}
	}
	return n
}

func (f *FakeService) handle(w http.ResponseWriter, r *http.Request) {
	endpoint := strings.TrimPrefix(r.URL.Path, "/")

	rec := RecordedRequest{
		Method:   r.Method,
		Endpoint: endpoint,
		Query:    r.URL.Query(),
		Form:     map[string]string{},
	}
	if r.Method == http.MethodPost {
		ct := r.Header.Get("Content-Type")
		if strings.HasPrefix(ct, "multipart/form-data") {
			if err := r.ParseMultipartForm(32 << 20); err == nil {
				for k, vs := range r.MultipartForm.Value {
					if len(vs) > 0 {
						rec.Form[k] = vs[0]
					}
				}
			}
		} else if err := r.ParseForm(); err == nil {
			for k, vs := range r.PostForm {
				if len(vs) > 0 {
					rec.Form[k] = vs[0]
				}
			}
		}
	} else {
		io.Copy(io.Discard, r.Body)
	}

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	script := f.scripts[endpoint]
	n := f.served[endpoint]
	f.served[endpoint] = n + 1
	f.mu.Unlock()

	if script == nil {
		http.NotFound(w, r)
		return
	}
	for k, v := range script.Header {
		w.Header().Set(k, v)
	}
	status := http.StatusOK
	if len(script.Statuses) > 0 {
		if n >= len(script.Statuses) {
			n = len(script.Statuses) - 1
		}
		status = script.Statuses[n]
	}
	w.WriteHeader(status)
	if status >= 200 && status < 300 {
		io.WriteString(w, script.Body)
	}
}
