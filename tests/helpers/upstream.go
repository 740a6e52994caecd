// upstream.go
//
// In-memory stand-in for the hosted no-code data API. Implements the
// /create /read /update /delete surface with the success envelope and the
// filter/sort/limit read parameters, plus request capture and error
// injection for failure-path tests.
package helpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Upstream is a fake data API bound to an httptest server.
type Upstream struct {
	server *httptest.Server

	mu           sync.Mutex
	tables       map[string][]map[string]any
	nextID       map[string]uint64
	requests     int
	lastInstance string
	lastAuth     string
	forcedStatus int
	forcedBody   string
}

// NewUpstream starts the fake upstream. Callers must Close it.
func NewUpstream() *Upstream {
	u := &Upstream{
		tables: make(map[string][]map[string]any),
		nextID: make(map[string]uint64),
	}
	u.server = httptest.NewServer(http.HandlerFunc(u.handle))
	return u
}

// URL returns the base URL clients should target.
func (u *Upstream) URL() string {
	return u.server.URL
}

// Close shuts the server down.
func (u *Upstream) Close() {
	u.server.Close()
}

// Requests returns how many calls the upstream has served.
func (u *Upstream) Requests() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.requests
}

// LastInstance returns the Instance header of the most recent request.
func (u *Upstream) LastInstance() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lastInstance
}

// LastAuth returns the Authorization header of the most recent request.
func (u *Upstream) LastAuth() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lastAuth
}

// ForceStatus makes every subsequent request answer with the given status
// and body until cleared with status 0.
func (u *Upstream) ForceStatus(status int, body string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.forcedStatus = status
	u.forcedBody = body
}

// Seed inserts a record directly, assigning and returning its id.
func (u *Upstream) Seed(resource string, record map[string]any) uint64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.insert(resource, record)
}

// Rows returns a copy of the stored records for a resource.
func (u *Upstream) Rows(resource string) []map[string]any {
	u.mu.Lock()
	defer u.mu.Unlock()
	rows := make([]map[string]any, len(u.tables[resource]))
	for i, row := range u.tables[resource] {
		copied := make(map[string]any, len(row))
		for k, v := range row {
			copied[k] = v
		}
		rows[i] = copied
	}
	return rows
}

func (u *Upstream) insert(resource string, record map[string]any) uint64 {
	u.nextID[resource]++
	id := u.nextID[resource]
	record["id"] = float64(id)
	if resource == "comments" {
		if _, ok := record["created_at"]; !ok {
			record["created_at"] = time.Now().UTC().Format("2006-01-02 15:04:05")
		}
	}
	u.tables[resource] = append(u.tables[resource], record)
	return id
}

func (u *Upstream) handle(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.requests++
	u.lastInstance = r.Header.Get("Instance")
	u.lastAuth = r.Header.Get("Authorization")

	if u.forcedStatus != 0 {
		w.WriteHeader(u.forcedStatus)
		fmt.Fprint(w, u.forcedBody)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 {
		http.Error(w, `{"status":"error"}`, http.StatusNotFound)
		return
	}
	verb, resource := parts[0], parts[1]

	w.Header().Set("Content-Type", "application/json")

	switch verb {
	case "create":
		var record map[string]any
		if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
			http.Error(w, `{"status":"error"}`, http.StatusBadRequest)
			return
		}
		id := u.insert(resource, record)
		json.NewEncoder(w).Encode(map[string]any{"status": "success", "id": id})

	case "read":
		rows := u.filter(resource, r.URL.Query())
		total := len(rows)
		rows = u.shape(rows, r.URL.Query())
		resp := map[string]any{"status": "success", "data": rows}
		if r.URL.Query().Get("includeTotal") == "true" {
			resp["total"] = total
		}
		json.NewEncoder(w).Encode(resp)

	case "update":
		id, _ := strconv.ParseUint(parts[2], 10, 64)
		var patch map[string]any
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, `{"status":"error"}`, http.StatusBadRequest)
			return
		}
		for _, row := range u.tables[resource] {
			if row["id"] == float64(id) {
				for k, v := range patch {
					row[k] = v
				}
				json.NewEncoder(w).Encode(map[string]any{"status": "success"})
				return
			}
		}
		http.Error(w, `{"status":"error","message":"Record not found"}`, http.StatusNotFound)

	case "delete":
		id, _ := strconv.ParseUint(parts[2], 10, 64)
		rows := u.tables[resource]
		for i, row := range rows {
			if row["id"] == float64(id) {
				u.tables[resource] = append(rows[:i], rows[i+1:]...)
				break
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"status": "success"})

	default:
		http.Error(w, `{"status":"error"}`, http.StatusNotFound)
	}
}

var reservedParams = map[string]bool{
	"sort": true, "order": true, "limit": true, "includeTotal": true,
}

func (u *Upstream) filter(resource string, query map[string][]string) []map[string]any {
	var rows []map[string]any
	for _, row := range u.tables[resource] {
		matched := true
		for key, values := range query {
			if reservedParams[key] || len(values) == 0 {
				continue
			}
			if field, found := strings.CutSuffix(key, "[in]"); found {
				if !matchIn(row[field], values[0]) {
					matched = false
					break
				}
				continue
			}
			if !matchValue(row[key], values[0]) {
				matched = false
				break
			}
		}
		if matched {
			rows = append(rows, row)
		}
	}
	return rows
}

func (u *Upstream) shape(rows []map[string]any, query map[string][]string) []map[string]any {
	shaped := append([]map[string]any(nil), rows...)

	if field := first(query, "sort"); field != "" {
		desc := first(query, "order") == "desc"
		sort.SliceStable(shaped, func(i, j int) bool {
			if desc {
				return lessValue(shaped[j][field], shaped[i][field])
			}
			return lessValue(shaped[i][field], shaped[j][field])
		})
	}

	if limit, err := strconv.Atoi(first(query, "limit")); err == nil && limit > 0 && limit < len(shaped) {
		shaped = shaped[:limit]
	}
	return shaped
}

func first(query map[string][]string, key string) string {
	if values := query[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

func matchIn(stored any, csv string) bool {
	for _, candidate := range strings.Split(csv, ",") {
		if matchValue(stored, candidate) {
			return true
		}
	}
	return false
}

// matchValue compares a stored JSON value against a query-string filter.
// Flags are filtered as 0/1 even when stored as booleans.
func matchValue(stored any, qv string) bool {
	switch v := stored.(type) {
	case bool:
		want := qv == "1" || strings.EqualFold(qv, "true")
		return v == want
	case float64:
		parsed, err := strconv.ParseFloat(qv, 64)
		if err != nil {
			return false
		}
		return v == parsed
	case string:
		return v == qv
	case nil:
		return qv == ""
	default:
		return fmt.Sprint(v) == qv
	}
}

func lessValue(a, b any) bool {
	af, aok := a.(float64)
	bf, bok := b.(float64)
	if aok && bok {
		return af < bf
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}
