// Package apitest runs an in-memory stand-in for the TaskMate REST backend.
// It mirrors the routes, envelopes and 422 validation payloads closely enough
// for client, session and TUI tests to drive real HTTP round trips.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gorilla/mux"

	"taskmate/internal/domain"
	"taskmate/internal/theme"
)

type account struct {
	user     domain.User
	password string
}

// Server is the fake backend. The zero value is not usable; call NewServer.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	nextUser int64
	nextTask int64
	accounts map[int64]*account
	tasks    map[int64]domain.Task

	requests  atomic.Int64
	lastReqID atomic.Value
}

// NewServer starts a fake backend. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		accounts: make(map[int64]*account),
		tasks:    make(map[int64]domain.Task),
	}
	s.lastReqID.Store("")
	s.Server = httptest.NewServer(s.Router())
	return s
}

// Router returns the route table without starting a listener.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.count)
	r.HandleFunc("/user/store", s.register).Methods(http.MethodPost)
	r.HandleFunc("/user/login", s.login).Methods(http.MethodPost)
	r.HandleFunc("/user/update/{id:[0-9]+}", s.updateUser).Methods(http.MethodPut)
	r.HandleFunc("/user/delete/{id:[0-9]+}", s.deleteUser).Methods(http.MethodDelete)
	r.HandleFunc("/index/{id:[0-9]+}", s.listTasks).Methods(http.MethodGet)
	r.HandleFunc("/store", s.createTask).Methods(http.MethodPost)
	r.HandleFunc("/get/{id:[0-9]+}", s.getTask).Methods(http.MethodGet)
	r.HandleFunc("/update/{id:[0-9]+}", s.updateTask).Methods(http.MethodPut)
	r.HandleFunc("/delete/{id:[0-9]+}", s.deleteTask).Methods(http.MethodDelete)
	return r
}

// Requests reports how many requests reached the server.
func (s *Server) Requests() int64 { return s.requests.Load() }

// LastRequestID returns the X-Request-ID of the most recent request.
func (s *Server) LastRequestID() string {
	id, _ := s.lastReqID.Load().(string)
	return id
}

// SeedUser stores an account directly and returns it.
func (s *Server) SeedUser(name, email, password string, pref theme.Preference) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUser++
	u := domain.User{ID: s.nextUser, Name: name, Email: email, Theme: pref}
	s.accounts[u.ID] = &account{user: u, password: password}
	return u
}

// SeedTask stores a task directly and returns it with its assigned ID.
func (s *Server) SeedTask(t domain.Task) domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTask++
	t.ID = s.nextTask
	if t.Status == "" {
		t.Status = domain.StatusPending
	}
	s.tasks[t.ID] = t
	return t
}

// User returns the stored record for id.
func (s *Server) User(id int64) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return domain.User{}, false
	}
	return a.user, true
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		s.lastReqID.Store(r.Header.Get("X-Request-ID"))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	fields := map[string][]string{}
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = []string{"The name field is required."}
	}
	if strings.TrimSpace(req.Email) == "" {
		fields["email"] = []string{"The email field is required."}
	}
	if req.Password == "" {
		fields["password"] = []string{"The password field is required."}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmailLocked(req.Email); taken && req.Email != "" {
		fields["email"] = []string{"The email has already been taken."}
	}
	if len(fields) > 0 {
		writeValidation(w, fields)
		return
	}
	s.nextUser++
	u := domain.User{ID: s.nextUser, Name: req.Name, Email: req.Email, Theme: theme.PreferenceLight}
	s.accounts[u.ID] = &account{user: u, password: req.Password}
	writeJSON(w, http.StatusCreated, map[string]any{"data": u})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byEmailLocked(req.Email)
	if !ok || a.password != req.Password {
		writeErr(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": a.user})
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	var upd domain.ProfileUpdate
	if !decode(w, r, &upd) {
		return
	}
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		writeErr(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		return
	}
	if other, taken := s.byEmailLocked(upd.Email); taken && other.user.ID != id {
		writeValidation(w, map[string][]string{"email": {"The email has already been taken."}})
		return
	}
	a.user.Name = upd.Name
	a.user.Email = upd.Email
	a.user.Theme = upd.Theme
	writeJSON(w, http.StatusOK, map[string]any{"data": a.user})
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		writeErr(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		return
	}
	delete(s.accounts, id)
	for tid, t := range s.tasks {
		if t.UserID == id {
			delete(s.tasks, tid)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "User deleted"})
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	owner := pathID(r)
	s.mu.Lock()
	out := make([]domain.Task, 0)
	for _, t := range s.tasks {
		if t.UserID == owner {
			out = append(out, t)
		}
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	// The index route answers with a bare array.
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var draft domain.TaskDraft
	if !decode(w, r, &draft) {
		return
	}
	if draft.Title == nil || strings.TrimSpace(*draft.Title) == "" {
		writeValidation(w, map[string][]string{"title": {"The title field is required."}})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[draft.UserID]; !ok {
		writeValidation(w, map[string][]string{"user_id": {"The selected user id is invalid."}})
		return
	}
	s.nextTask++
	t := domain.Task{ID: s.nextTask, UserID: draft.UserID, Status: domain.StatusPending}
	apply(&t, draft)
	s.tasks[t.ID] = t
	writeJSON(w, http.StatusCreated, map[string]any{"data": t})
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	t, ok := s.tasks[pathID(r)]
	s.mu.Unlock()
	if !ok {
		writeErr(w, http.StatusNotFound, "NOT_FOUND", "Task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	var draft domain.TaskDraft
	if !decode(w, r, &draft) {
		return
	}
	if draft.Title != nil && strings.TrimSpace(*draft.Title) == "" {
		writeValidation(w, map[string][]string{"title": {"The title field is required."}})
		return
	}
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		writeErr(w, http.StatusNotFound, "NOT_FOUND", "Task not found")
		return
	}
	apply(&t, draft)
	s.tasks[id] = t
	writeJSON(w, http.StatusOK, map[string]any{"data": t})
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		writeErr(w, http.StatusNotFound, "NOT_FOUND", "Task not found")
		return
	}
	delete(s.tasks, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) byEmailLocked(email string) (*account, bool) {
	for _, a := range s.accounts {
		if strings.EqualFold(a.user.Email, email) {
			return a, true
		}
	}
	return nil, false
}

func apply(t *domain.Task, d domain.TaskDraft) {
	if d.Title != nil {
		t.Title = *d.Title
	}
	if d.Description != nil {
		t.Description = *d.Description
	}
	if d.Status != nil {
		t.Status = *d.Status
	}
	if d.Due != nil {
		due := d.Due.UTC()
		t.Due = &due
	}
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64*1024)).Decode(dst); err != nil {
		writeErr(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body")
		return false
	}
	return true
}

func writeValidation(w http.ResponseWriter, fields map[string][]string) {
	msg := "The given data was invalid."
	if m := fields["email"]; len(m) > 0 {
		msg = m[0]
	}
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"message": msg, "errors": fields})
}

func writeErr(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"code": code, "message": message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
