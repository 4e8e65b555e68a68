package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/MohiniChauhan09/Task-Management-System/backend/internal/model"
	"github.com/MohiniChauhan09/Task-Management-System/backend/internal/service"
)

type fakeAuthService struct {
	registerRes *service.AuthResult
	loginRes    *service.AuthResult
	resetRes    *service.ResetRequestResult
	consumeMsg  string
	err         error

	gotEmail  string
	gotSecret string
}

func (f *fakeAuthService) Register(_ context.Context, _, email, _ string) (*service.AuthResult, error) {
	f.gotEmail = email
	return f.registerRes, f.err
}

func (f *fakeAuthService) Login(_ context.Context, email, _ string) (*service.AuthResult, error) {
	f.gotEmail = email
	return f.loginRes, f.err
}

func (f *fakeAuthService) RequestReset(_ context.Context, email string) (*service.ResetRequestResult, error) {
	f.gotEmail = email
	return f.resetRes, f.err
}

func (f *fakeAuthService) ConsumeReset(_ context.Context, secret, _ string) (string, error) {
	f.gotSecret = secret
	return f.consumeMsg, f.err
}

type fakeVerifier struct {
	user *model.AuthUser
}

func (f *fakeVerifier) VerifySession(token string) (*model.AuthUser, error) {
	if f.user == nil || token != "good-token" {
		return nil, service.ErrUnauthorized
	}
	return f.user, nil
}

type fakeTaskService struct {
	tasks     []model.Task
	task      *model.Task
	err       error
	gotStatus string
	gotUser   uuid.UUID
}

func (f *fakeTaskService) List(_ context.Context, userID uuid.UUID, status string) ([]model.Task, error) {
	f.gotUser, f.gotStatus = userID, status
	return f.tasks, f.err
}

func (f *fakeTaskService) Create(_ context.Context, userID uuid.UUID, _, _ string) (*model.Task, error) {
	f.gotUser = userID
	return f.task, f.err
}

func (f *fakeTaskService) Complete(_ context.Context, userID, _ uuid.UUID) (*model.Task, error) {
	f.gotUser = userID
	return f.task, f.err
}

func (f *fakeTaskService) Delete(_ context.Context, userID, _ uuid.UUID) error {
	f.gotUser = userID
	return f.err
}

type testServer struct {
	router *gin.Engine
	auth   *fakeAuthService
	tasks  *fakeTaskService
	user   *model.AuthUser
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	user := &model.AuthUser{ID: uuid.New(), Email: "ada@example.com"}
	auth := &fakeAuthService{}
	tasks := &fakeTaskService{}

	router := NewRouter(RouterDeps{
		Auth:           NewAuthHandler(auth),
		Tasks:          NewTaskHandler(tasks),
		Sessions:       &fakeVerifier{user: user},
		AllowedOrigins: []string{"http://localhost:5173"},
		StartedAt:      time.Now(),
	})

	return &testServer{router: router, auth: auth, tasks: tasks, user: user}
}

func (s *testServer) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body == "" {
		reader = &bytes.Buffer{}
	} else {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) authed(method, path, body string) *httptest.ResponseRecorder {
	return s.do(method, path, body, "Authorization", "Bearer good-token")
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}
