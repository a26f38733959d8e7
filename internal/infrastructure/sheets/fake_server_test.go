package sheets

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// ---------------------------------------------------------------------------
// In-memory stand-in for the script endpoint.
// ---------------------------------------------------------------------------

type fakeEndpoint struct {
	mu      sync.Mutex
	sheets  map[string][]map[string]any
	posts   []request
	status  int // forced status for every request when non-zero
	uploads int
	seq     int
}

func newFakeEndpoint() *fakeEndpoint {
	return &fakeEndpoint{sheets: make(map[string][]map[string]any)}
}

func (f *fakeEndpoint) seed(sheet string, rows ...map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sheets[sheet] = append(f.sheets[sheet], rows...)
}

func (f *fakeEndpoint) rows(sheet string) []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.sheets[sheet]...)
}

func (f *fakeEndpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status != 0 {
		w.WriteHeader(f.status)
		return
	}

	if r.Method == http.MethodGet {
		writeJSON(w, f.list(r.URL.Query().Get("sheet")))
		return
	}

	var req struct {
		Action string          `json:"action"`
		Sheet  string          `json:"sheet"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	f.posts = append(f.posts, request{Action: req.Action, Sheet: req.Sheet})

	var data map[string]any
	_ = json.Unmarshal(req.Data, &data)

	switch req.Action {
	case ActionSave:
		f.upsert(req.Sheet, data)
		writeJSON(w, map[string]string{"status": "ok"})
	case ActionDelete:
		f.remove(req.Sheet, stringify(data["id"]))
		writeJSON(w, map[string]string{"status": "ok"})
	case ActionChatGet:
		writeJSON(w, f.list(req.Sheet))
	case ActionChatSave:
		f.seq++
		data["id"] = "m" + strconv.Itoa(f.seq)
		f.sheets[req.Sheet] = append(f.sheets[req.Sheet], data)
		writeJSON(w, map[string]string{"status": "ok"})
	case ActionGroupCreate:
		f.sheets[SheetGroups] = append(f.sheets[SheetGroups], data)
		writeJSON(w, map[string]string{"status": "ok"})
	case ActionUpload:
		f.uploads++
		writeJSON(w, map[string]string{"id": "file-" + strconv.Itoa(f.uploads)})
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func (f *fakeEndpoint) list(sheet string) []map[string]any {
	rows := f.sheets[sheet]
	if rows == nil {
		return []map[string]any{}
	}
	return rows
}

func (f *fakeEndpoint) upsert(sheet string, data map[string]any) {
	id := stringify(data["ID"])
	for i, row := range f.sheets[sheet] {
		if stringify(row["ID"]) == id {
			f.sheets[sheet][i] = data
			return
		}
	}
	f.sheets[sheet] = append(f.sheets[sheet], data)
}

func (f *fakeEndpoint) remove(sheet, id string) {
	rows := f.sheets[sheet][:0]
	for _, row := range f.sheets[sheet] {
		if stringify(row["ID"]) != id {
			rows = append(rows, row)
		}
	}
	f.sheets[sheet] = rows
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// flakyTransport fails the first n round trips with a transport error.
type flakyTransport struct {
	failures int32
	calls    atomic.Int32
	base     http.RoundTripper
}

var errConnReset = errors.New("connection reset by peer")

func (t *flakyTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if t.calls.Add(1) <= t.failures {
		return nil, errConnReset
	}
	return t.base.RoundTrip(r)
}

func newTestClient(t *testing.T, f *fakeEndpoint, transport http.RoundTripper) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	if transport == nil {
		transport = http.DefaultTransport
	}
	return NewClient(Config{
		Endpoint:   srv.URL,
		Backoff:    time.Millisecond,
		HTTPClient: &http.Client{Transport: transport},
	}, zerolog.Nop())
}
