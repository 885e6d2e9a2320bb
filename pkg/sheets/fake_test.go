package sheets_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// fakeSheets emulates the subset of the Sheets v4 REST API the backend uses.
type fakeSheets struct {
	mu       sync.Mutex
	tabs     map[string][][]string
	order    []string
	denied   bool
	inputOpt []string
}

func newFakeSheets(t *testing.T, tabs ...string) (*fakeSheets, *httptest.Server) {
	t.Helper()
	f := &fakeSheets{tabs: make(map[string][][]string)}
	for _, tab := range tabs {
		f.addTab(tab)
	}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeSheets) addTab(name string) {
	if _, ok := f.tabs[name]; ok {
		return
	}
	f.tabs[name] = nil
	f.order = append(f.order, name)
}

func (f *fakeSheets) inputOptions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.inputOpt...)
}

func (f *fakeSheets) deny() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.denied = true
}

func (f *fakeSheets) rows(tab string) [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tabs[tab]
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.denied {
		writeJSON(w, http.StatusForbidden, map[string]any{
			"error": map[string]any{"code": 403, "message": "The caller does not have permission", "status": "PERMISSION_DENIED"},
		})
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets/")
	id, rest, hasValues := strings.Cut(path, "/values/")
	switch {
	case hasValues:
		f.values(w, r, rest)
	case strings.HasSuffix(id, ":batchUpdate"):
		f.batchUpdate(w, r)
	case r.Method == http.MethodGet:
		sheets := make([]map[string]any, 0, len(f.order))
		for _, name := range f.order {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": name}})
		}
		writeJSON(w, http.StatusOK, map[string]any{"sheets": sheets})
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeSheets) values(w http.ResponseWriter, r *http.Request, rng string) {
	rng, isAppend := strings.CutSuffix(rng, ":append")
	title, pos := parseRange(rng)
	if _, ok := f.tabs[title]; !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": map[string]any{"code": 400, "message": "Unable to parse range: " + rng},
		})
		return
	}

	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, map[string]any{"range": rng, "majorDimension": "ROWS", "values": f.tabs[title]})
		return
	}

	f.inputOpt = append(f.inputOpt, r.URL.Query().Get("valueInputOption"))
	var body struct {
		Values [][]string `json:"values"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Values) != 1 {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}

	if isAppend {
		f.tabs[title] = append(f.tabs[title], body.Values[0])
	} else {
		for len(f.tabs[title]) < pos {
			f.tabs[title] = append(f.tabs[title], []string{})
		}
		f.tabs[title][pos-1] = body.Values[0]
	}
	writeJSON(w, http.StatusOK, map[string]any{"spreadsheetId": "sheet-id"})
}

func (f *fakeSheets) batchUpdate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Requests []struct {
			AddSheet struct {
				Properties struct {
					Title string `json:"title"`
				} `json:"properties"`
			} `json:"addSheet"`
		} `json:"requests"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}
	for _, req := range body.Requests {
		f.addTab(req.AddSheet.Properties.Title)
	}
	writeJSON(w, http.StatusOK, map[string]any{"spreadsheetId": "sheet-id"})
}

// parseRange understands 'Title', 'Title'!A5 and 'Title'!A1.
func parseRange(rng string) (string, int) {
	title, cell, _ := strings.Cut(rng, "!")
	title = strings.TrimSuffix(strings.TrimPrefix(title, "'"), "'")
	title = strings.ReplaceAll(title, "''", "'")
	pos, _ := strconv.Atoi(strings.TrimPrefix(cell, "A"))
	return title, pos
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
