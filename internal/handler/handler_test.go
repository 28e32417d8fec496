package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"workforce/internal/attendance"
	"workforce/internal/config"
	"workforce/internal/daykey"
	"workforce/internal/queue"
	"workforce/internal/report"
	"workforce/internal/task"
	"workforce/internal/user"
)

// In-memory doubles for the persistence interfaces so the HTTP surface can
// be exercised without postgres.

type memLedger struct {
	records map[string]*attendance.Record
}

func ledgerKey(userID string, day daykey.Key) string {
	return userID + "|" + day.String()
}

func (l *memLedger) Find(_ context.Context, userID string, day daykey.Key) (*attendance.Record, error) {
	rec, ok := l.records[ledgerKey(userID, day)]
	if !ok {
		return nil, attendance.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (l *memLedger) CheckIn(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	key := ledgerKey(rec.UserID, rec.Day)
	if _, ok := l.records[key]; ok {
		return attendance.Record{}, attendance.ErrAlreadyCheckedIn
	}
	stored := rec
	l.records[key] = &stored
	return rec, nil
}

func (l *memLedger) CheckOut(_ context.Context, userID string, day daykey.Key, at time.Time) (*attendance.Record, error) {
	rec, ok := l.records[ledgerKey(userID, day)]
	if !ok {
		return nil, attendance.ErrNotCheckedIn
	}
	if rec.CheckOutTime != nil {
		return nil, attendance.ErrAlreadyCheckedOut
	}
	t := at
	rec.CheckOutTime = &t
	cp := *rec
	return &cp, nil
}

type memUsers struct {
	users map[string]*user.User
}

func (s *memUsers) Create(_ context.Context, u user.User) (user.User, error) {
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return user.User{}, user.ErrEmailTaken
		}
	}
	stored := u
	s.users[u.ID] = &stored
	return u, nil
}

func (s *memUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *memUsers) List(_ context.Context) ([]user.User, error) {
	var out []user.User
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *memUsers) Update(_ context.Context, id string, name, email, passwordHash *string, role *user.Role) (*user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	if name != nil {
		u.Name = *name
	}
	if email != nil {
		u.Email = *email
	}
	if passwordHash != nil {
		u.PasswordHash = *passwordHash
	}
	if role != nil {
		u.Role = *role
	}
	cp := *u
	return &cp, nil
}

func (s *memUsers) Delete(_ context.Context, id string) error {
	if _, ok := s.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

type memTasks struct {
	tasks map[string]*task.Task
}

func (s *memTasks) Create(_ context.Context, t task.Task) (task.Task, error) {
	stored := t
	s.tasks[t.ID] = &stored
	return t, nil
}

func (s *memTasks) GetByID(_ context.Context, id string) (*task.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, task.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *memTasks) List(_ context.Context, userID string) ([]task.Task, error) {
	var out []task.Task
	for _, t := range s.tasks {
		if userID == "" || t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *memTasks) Save(_ context.Context, t task.Task) error {
	if _, ok := s.tasks[t.ID]; !ok {
		return task.ErrNotFound
	}
	stored := t
	s.tasks[t.ID] = &stored
	return nil
}

func (s *memTasks) Delete(_ context.Context, id string) error {
	if _, ok := s.tasks[id]; !ok {
		return task.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

type env struct {
	router *gin.Engine
	users  *memUsers
	ledger *memLedger
}

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	return string(h)
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.App{
		JWTIssuer:     "workforce-test",
		JWTSigningKey: "test-signing-key",
		TokenTTL:      time.Hour,
	}

	users := &memUsers{users: map[string]*user.User{
		"u1": {ID: "u1", Name: "Ana", Email: "ana@example.com", PasswordHash: hash(t, "secret"), Role: user.RoleUser},
		"a1": {ID: "a1", Name: "Root", Email: "root@example.com", PasswordHash: hash(t, "secret"), Role: user.RoleAdmin},
	}}
	ledger := &memLedger{records: map[string]*attendance.Record{}}
	tasks := &memTasks{tasks: map[string]*task.Task{}}

	h := New(
		cfg,
		nil,
		user.NewService(users, bcrypt.MinCost),
		attendance.NewService(ledger, nil),
		task.NewService(tasks),
		nil,
		report.NewAggregator(nil, nil, nil, nil),
		queue.NewInMemory(8),
		nil,
		nil,
	)

	r := gin.New()
	h.Register(r)
	return &env{router: r, users: users, ledger: ledger}
}

func (e *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		payload = bytes.NewBuffer(raw)
	} else {
		payload = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *env) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": password})
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed with %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return body.Token
}

func errCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error response %q: %v", rec.Body.String(), err)
	}
	return body.Error
}

func TestLoginInvalidCredentials(t *testing.T) {
	e := newEnv(t)

	// Unknown email and wrong password produce the same answer.
	for _, creds := range []gin.H{
		{"email": "nobody@example.com", "password": "secret"},
		{"email": "ana@example.com", "password": "wrong"},
	} {
		rec := e.do(t, http.MethodPost, "/api/auth/login", "", creds)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if code := errCode(t, rec); code != "InvalidCredentials" {
			t.Fatalf("expected InvalidCredentials, got %q", code)
		}
	}
}

func TestLoginAndMe(t *testing.T) {
	e := newEnv(t)
	token := e.login(t, "ana@example.com", "secret")

	rec := e.do(t, http.MethodGet, "/api/auth/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me failed with %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		User user.User `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode me response: %v", err)
	}
	if body.User.ID != "u1" || body.User.Email != "ana@example.com" {
		t.Fatalf("unexpected identity %+v", body.User)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	e := newEnv(t)

	for _, path := range []string{"/api/auth/me", "/api/todos"} {
		if rec := e.do(t, http.MethodGet, path, "", nil); rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s without token: expected 401, got %d", path, rec.Code)
		}
	}
	if rec := e.do(t, http.MethodPost, "/api/checkin", "garbage.token.here", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: expected 401, got %d", rec.Code)
	}
}

func TestCheckStatusAnonymous(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/api/check-status", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		CheckedIn  bool `json:"checkedIn"`
		CheckedOut bool `json:"checkedOut"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.CheckedIn || body.CheckedOut {
		t.Fatalf("anonymous caller must read absent: %+v", body)
	}
}

func TestAttendanceLifecycle(t *testing.T) {
	e := newEnv(t)
	token := e.login(t, "ana@example.com", "secret")

	if rec := e.do(t, http.MethodPost, "/api/checkout", token, nil); rec.Code != http.StatusBadRequest || errCode(t, rec) != "NotCheckedInToday" {
		t.Fatalf("checkout before checkin: got %d %s", rec.Code, rec.Body.String())
	}

	if rec := e.do(t, http.MethodPost, "/api/checkin", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("checkin failed: %d %s", rec.Code, rec.Body.String())
	}
	if rec := e.do(t, http.MethodPost, "/api/checkin", token, nil); rec.Code != http.StatusBadRequest || errCode(t, rec) != "AlreadyCheckedInToday" {
		t.Fatalf("double checkin: got %d %s", rec.Code, rec.Body.String())
	}

	if rec := e.do(t, http.MethodPost, "/api/checkout", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("checkout failed: %d %s", rec.Code, rec.Body.String())
	}
	if rec := e.do(t, http.MethodPost, "/api/checkout", token, nil); rec.Code != http.StatusBadRequest || errCode(t, rec) != "AlreadyCheckedOutToday" {
		t.Fatalf("double checkout: got %d %s", rec.Code, rec.Body.String())
	}

	rec := e.do(t, http.MethodGet, "/api/check-status", token, nil)
	var status struct {
		CheckedIn  bool `json:"checkedIn"`
		CheckedOut bool `json:"checkedOut"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.CheckedIn || !status.CheckedOut {
		t.Fatalf("expected both flags set after checkout: %+v", status)
	}
}

func TestTodosCrudAndOwnership(t *testing.T) {
	e := newEnv(t)
	ana := e.login(t, "ana@example.com", "secret")
	admin := e.login(t, "root@example.com", "secret")

	rec := e.do(t, http.MethodPost, "/api/todos", ana, gin.H{"text": "write handoff doc", "priority": "high"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", rec.Code, rec.Body.String())
	}
	var created task.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created task: %v", err)
	}
	if created.UserID != "u1" || created.Status != task.StatusTodo {
		t.Fatalf("unexpected task %+v", created)
	}

	if rec := e.do(t, http.MethodPost, "/api/todos", ana, gin.H{"text": "   "}); rec.Code != http.StatusBadRequest || errCode(t, rec) != "MissingText" {
		t.Fatalf("blank text: got %d %s", rec.Code, rec.Body.String())
	}

	// Another user's board is off limits; an admin's is not.
	otherToken := admin
	if rec := e.do(t, http.MethodPatch, "/api/todos/"+created.ID, otherToken, gin.H{"status": "done"}); rec.Code != http.StatusOK {
		t.Fatalf("admin edit should pass: %d %s", rec.Code, rec.Body.String())
	}

	rec = e.do(t, http.MethodPost, "/api/todos", admin, gin.H{"text": "admin chore"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin create failed: %d", rec.Code)
	}
	var adminTask task.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &adminTask); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec := e.do(t, http.MethodPatch, "/api/todos/"+adminTask.ID, ana, gin.H{"status": "done"}); rec.Code != http.StatusForbidden {
		t.Fatalf("cross-user edit should 403, got %d", rec.Code)
	}

	if rec := e.do(t, http.MethodDelete, "/api/todos/"+created.ID, ana, nil); rec.Code != http.StatusOK {
		t.Fatalf("delete failed: %d %s", rec.Code, rec.Body.String())
	}
	if rec := e.do(t, http.MethodDelete, "/api/todos/"+created.ID, ana, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("deleting twice should 404, got %d", rec.Code)
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	e := newEnv(t)
	ana := e.login(t, "ana@example.com", "secret")
	admin := e.login(t, "root@example.com", "secret")

	if rec := e.do(t, http.MethodGet, "/api/admin/users", ana, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("member on admin route: expected 403, got %d", rec.Code)
	}

	rec := e.do(t, http.MethodGet, "/api/admin/users", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin list users failed: %d %s", rec.Code, rec.Body.String())
	}
	var users []user.User
	if err := json.Unmarshal(rec.Body.Bytes(), &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
}

func TestOverviewRejectsInvalidRange(t *testing.T) {
	e := newEnv(t)
	admin := e.login(t, "root@example.com", "secret")

	rec := e.do(t, http.MethodGet, "/api/admin/overview?from=2025-11-16&to=2025-11-10", admin, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("inverted range: expected 400, got %d %s", rec.Code, rec.Body.String())
	}
	if code := errCode(t, rec); code != "InvalidRange" {
		t.Fatalf("expected InvalidRange, got %q", code)
	}
}

func TestOverviewRejectsMalformedDates(t *testing.T) {
	e := newEnv(t)
	admin := e.login(t, "root@example.com", "secret")

	for _, query := range []string{"from=14-11-2025", "to=nope", "dailyDate=2025-13-01"} {
		rec := e.do(t, http.MethodGet, "/api/admin/overview?"+query, admin, nil)
		if rec.Code != http.StatusBadRequest || errCode(t, rec) != "InvalidDate" {
			t.Fatalf("%s: expected 400 InvalidDate, got %d %s", query, rec.Code, rec.Body.String())
		}
	}
}

func TestAdminCreateUser(t *testing.T) {
	e := newEnv(t)
	admin := e.login(t, "root@example.com", "secret")

	rec := e.do(t, http.MethodPost, "/api/admin/users", admin, gin.H{
		"name":     "Bo",
		"email":    "bo@example.com",
		"password": "welcome1",
		"role":     "user",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create user failed: %d %s", rec.Code, rec.Body.String())
	}

	// The new account can log in right away.
	e.login(t, "bo@example.com", "welcome1")

	rec = e.do(t, http.MethodPost, "/api/admin/users", admin, gin.H{
		"name":     "Bo2",
		"email":    "bo@example.com",
		"password": "welcome1",
	})
	if rec.Code != http.StatusConflict || errCode(t, rec) != "EmailTaken" {
		t.Fatalf("duplicate email: got %d %s", rec.Code, rec.Body.String())
	}

	rec = e.do(t, http.MethodPost, "/api/admin/users", admin, gin.H{"name": "NoPw", "email": "x@y.com"})
	if rec.Code != http.StatusBadRequest || errCode(t, rec) != "MissingFields" {
		t.Fatalf("missing password: got %d %s", rec.Code, rec.Body.String())
	}
}
