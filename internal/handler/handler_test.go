package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/taskhive/taskhive-go/internal/middleware"
	"github.com/taskhive/taskhive-go/internal/model"
	"github.com/taskhive/taskhive-go/internal/repository"
	"github.com/taskhive/taskhive-go/internal/service"
)

const testSecret = "test-secret"

type memUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]model.User
}

func (s *memUserStore) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	s.nextID++
	user.ID = s.nextID
	s.users[user.ID] = *user
	return nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *memUserStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	found := u
	return &found, nil
}

type memTaskStore struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]model.Task
}

func (s *memTaskStore) Insert(_ context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	task.ID = s.nextID
	task.CreatedAt = time.Now().UTC()
	task.UpdatedAt = task.CreatedAt
	s.tasks[task.ID] = *task
	return nil
}

func (s *memTaskStore) List(_ context.Context) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Task
	for id := int64(1); id <= s.nextID; id++ {
		if t, ok := s.tasks[id]; ok {
			result = append(result, t)
		}
	}
	return result, nil
}

func (s *memTaskStore) GetByID(_ context.Context, id int64) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, repository.ErrTaskNotFound
	}
	found := t
	return &found, nil
}

func (s *memTaskStore) Update(_ context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; !ok {
		return repository.ErrTaskNotFound
	}
	s.tasks[task.ID] = *task
	return nil
}

func (s *memTaskStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return repository.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

// newTestRouter builds the API routes over in-memory stores, wired the
// same way as cmd/api.
func newTestRouter() http.Handler {
	users := &memUserStore{users: make(map[int64]model.User)}
	tasks := &memTaskStore{tasks: make(map[int64]model.Task)}

	authHandler := NewAuthHandler(service.NewAuthService(users, testSecret, time.Hour))
	taskHandler := NewTaskHandler(service.NewTaskService(tasks))

	r := chi.NewRouter()
	r.Post("/api/auth/register", authHandler.HandleRegister)
	r.Post("/api/auth/login", authHandler.HandleLogin)
	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(testSecret))
		r.Get("/api/auth/profile", authHandler.HandleProfile)
		r.Get("/api/tasks", taskHandler.HandleList)
		r.Post("/api/tasks", taskHandler.HandleCreate)
		r.Get("/api/tasks/{task_id}", taskHandler.HandleGet)
		r.Put("/api/tasks/{task_id}", taskHandler.HandleUpdate)
		r.Delete("/api/tasks/{task_id}", taskHandler.HandleDelete)
	})
	return r
}

// doJSON performs a request against the router and decodes the JSON response
// into a generic map.
func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp map[string]any
	if len(rec.Body.Bytes()) > 0 && rec.Body.Bytes()[0] == '{' {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding response body %q: %v", rec.Body.String(), err)
		}
	}

	return rec.Code, resp
}

// register creates a user through the API and returns the issued token.
func register(t *testing.T, router http.Handler, username, email, password string) string {
	t.Helper()

	code, resp := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	if code != http.StatusCreated {
		t.Fatalf("register: status = %d, want %d (body %v)", code, http.StatusCreated, resp)
	}

	token, _ := resp["token"].(string)
	if token == "" {
		t.Fatal("register: response missing token")
	}
	return token
}
