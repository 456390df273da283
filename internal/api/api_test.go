package api_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/marcodd23/go-todo-service/internal/api"
	"github.com/marcodd23/go-todo-service/internal/domain/todo"
	"github.com/marcodd23/go-todo-service/internal/domain/todo/todotest"
	"github.com/marcodd23/go-todo-service/internal/domain/user"
	"github.com/marcodd23/go-todo-service/internal/domain/user/usertest"
	"github.com/marcodd23/go-todo-service/internal/metrics"
	"github.com/marcodd23/go-todo-service/pkg/configmgr"
	"github.com/marcodd23/go-todo-service/pkg/extconn"
	"github.com/marcodd23/go-todo-service/pkg/extconn/extconntest"
	"github.com/marcodd23/go-todo-service/pkg/serverx/fibersrv"
	"github.com/marcodd23/go-todo-service/pkg/utilx"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	app    *fiber.App
	ext    *extconntest.FakeExternalConnectivity
	users  *usertest.InMemoryPersistence
	tasks  *todotest.InMemoryPersistence
	health error
}

func newTestApp(t *testing.T, users ...user.CreateUser) *testApp {
	t.Helper()

	return newCustomTestApp(t, nil, users...)
}

// newCustomTestApp lets customize swap dependencies before the routes are mounted.
func newCustomTestApp(t *testing.T, customize func(ta *testApp, deps *api.Dependencies), users ...user.CreateUser) *testApp {
	t.Helper()

	ta := &testApp{
		ext:   extconntest.New(),
		users: usertest.NewWithUsers(users...),
		tasks: todotest.New(),
	}

	deps := api.Dependencies{
		Ext:       ta.ext,
		Users:     user.Service{},
		Tasks:     todo.Service{},
		UserStore: ta.users,
		TaskStore: ta.tasks,
		Metrics:   metrics.NewWithRegistry(prometheus.NewRegistry()),
		Health: func(context.Context, extconn.ExternalConnectivity) error {
			return ta.health
		},
	}
	if customize != nil {
		customize(ta, &deps)
	}

	handler := api.NewHandler(deps)

	srv := fibersrv.NewFiberServer(configmgr.BaseConfig{Name: "todo-api-test"}, fibersrv.WithErrorHandler(api.ErrorHandler))
	srv.Setup(context.Background(), handler.Register)
	ta.app = srv.GetServer()

	return ta
}

func (ta *testApp) do(t *testing.T, method, path, body string) (int, []byte, http.Header) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, data, resp.Header
}

func decodeError(t *testing.T, body []byte) api.ErrorResponse {
	t.Helper()

	var errResp api.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))

	return errResp
}

func TestGetUsers(t *testing.T) {
	ta := newTestApp(t, usertest.DefaultCreateUser(), user.CreateUser{FirstName: "Grace", LastName: "Hopper"})

	status, body, _ := ta.do(t, "GET", "/users", "")
	require.Equal(t, fiber.StatusOK, status)

	var users []api.UserResponse
	require.NoError(t, json.Unmarshal(body, &users))
	require.Len(t, users, 2)
	assert.Equal(t, api.UserResponse{ID: 2, FirstName: "Grace", LastName: "Hopper"}, users[1])
}

func TestGetUsers_EmptyIsArray(t *testing.T) {
	ta := newTestApp(t)

	status, body, _ := ta.do(t, "GET", "/users", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, "[]", string(body))
}

func TestGetUsers_PersistenceFailure(t *testing.T) {
	ta := newTestApp(t)
	ta.users.Disconnect()

	status, body, _ := ta.do(t, "GET", "/users", "")
	require.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, api.CodeInternalError, decodeError(t, body).ErrorCode)
}

func TestCreateUser_CommitsTransaction(t *testing.T) {
	ta := newTestApp(t)

	status, body, _ := ta.do(t, "POST", "/users", `{"first_name":"Ada","last_name":"Lovelace"}`)
	require.Equal(t, fiber.StatusCreated, status)
	assert.JSONEq(t, `{"id":1}`, string(body))

	assert.True(t, ta.ext.DidTransactionCommit())
	assert.Len(t, ta.users.Users(), 1)
}

func TestCreateUser_Duplicate(t *testing.T) {
	ta := newTestApp(t, user.CreateUser{FirstName: "Ada", LastName: "Lovelace"})

	status, body, _ := ta.do(t, "POST", "/users", `{"first_name":"Ada","last_name":"Lovelace"}`)
	require.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, api.CodeAlreadyExists, decodeError(t, body).ErrorCode)

	assert.False(t, ta.ext.DidTransactionCommit())
	assert.True(t, ta.ext.DidTransactionAbandon())
}

func TestCreateUser_InvalidInput(t *testing.T) {
	ta := newTestApp(t)

	cases := map[string]string{
		"first name too long": `{"first_name":"` + strings.Repeat("a", 31) + `","last_name":"Lovelace"}`,
		"last name too long":  `{"first_name":"Ada","last_name":"` + strings.Repeat("l", 51) + `"}`,
		"malformed json":      `{"first_name":`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			status, resp, _ := ta.do(t, "POST", "/users", body)
			require.Equal(t, fiber.StatusBadRequest, status)

			errResp := decodeError(t, resp)
			assert.Equal(t, api.CodeInvalidInput, errResp.ErrorCode)
			assert.NotNil(t, errResp.ExtraInfo)
		})
	}

	assert.Zero(t, ta.ext.TransactionsStarted())
}

func TestCreateUser_EmptyNamesAccepted(t *testing.T) {
	ta := newTestApp(t)

	status, body, _ := ta.do(t, "POST", "/users", `{"first_name":"","last_name":""}`)
	require.Equal(t, fiber.StatusCreated, status)
	assert.JSONEq(t, `{"id":1}`, string(body))

	status, body, _ = ta.do(t, "POST", "/users", `{"first_name":"`+strings.Repeat("a", 30)+`","last_name":"`+strings.Repeat("l", 50)+`"}`)
	require.Equal(t, fiber.StatusCreated, status)
	assert.JSONEq(t, `{"id":2}`, string(body))
}

func TestCreateUser_CommitFailure(t *testing.T) {
	ta := newTestApp(t)
	ta.ext.CommitErr = errors.New("could not serialize access")

	status, body, _ := ta.do(t, "POST", "/users", `{"first_name":"Ada","last_name":"Lovelace"}`)
	require.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, api.CodeTransactionFailed, decodeError(t, body).ErrorCode)
}

func TestCreateUser_BeginFailure(t *testing.T) {
	ta := newTestApp(t)
	ta.ext.BeginErr = errors.New("pool exhausted")

	status, body, _ := ta.do(t, "POST", "/users", `{"first_name":"Ada","last_name":"Lovelace"}`)
	require.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, api.CodeInternalError, decodeError(t, body).ErrorCode)
	assert.Empty(t, ta.users.Users())
}

func TestTasksForUser(t *testing.T) {
	ta := newTestApp(t, usertest.DefaultCreateUser())

	status, body, _ := ta.do(t, "POST", "/users/1/tasks", `{"item_desc":"write tests"}`)
	require.Equal(t, fiber.StatusCreated, status)
	assert.JSONEq(t, `{"id":1}`, string(body))

	status, body, _ = ta.do(t, "GET", "/users/1/tasks", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `[{"id":1,"description":"write tests"}]`, string(body))

	status, body, _ = ta.do(t, "GET", "/users/1/tasks/1", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"id":1,"description":"write tests"}`, string(body))
}

func TestTasksForUser_UnknownUser(t *testing.T) {
	ta := newTestApp(t)

	for _, path := range []string{"/users/9/tasks", "/users/9/tasks/1"} {
		status, body, _ := ta.do(t, "GET", path, "")
		require.Equal(t, fiber.StatusNotFound, status, path)
		assert.Equal(t, api.CodeNotFound, decodeError(t, body).ErrorCode)
	}

	status, _, _ := ta.do(t, "POST", "/users/9/tasks", `{"item_desc":"orphan"}`)
	require.Equal(t, fiber.StatusNotFound, status)
	assert.True(t, ta.ext.DidTransactionAbandon())
	assert.Empty(t, ta.tasks.Tasks())
}

func TestGetTask_Missing(t *testing.T) {
	ta := newTestApp(t, usertest.DefaultCreateUser())

	status, body, _ := ta.do(t, "GET", "/users/1/tasks/5", "")
	require.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "The specified task does not exist.", decodeError(t, body).ErrorDescription)
}

func TestInvalidPathParameter(t *testing.T) {
	ta := newTestApp(t)

	for _, path := range []string{"/users/abc/tasks", "/users/0/tasks", "/users/1/tasks/-3"} {
		status, body, _ := ta.do(t, "GET", path, "")
		require.Equal(t, fiber.StatusBadRequest, status, path)
		assert.Equal(t, api.CodeInvalidInput, decodeError(t, body).ErrorCode)
	}
}

func TestCreateTask_EmptyDescription(t *testing.T) {
	ta := newTestApp(t, usertest.DefaultCreateUser())

	status, body, _ := ta.do(t, "POST", "/users/1/tasks", `{"item_desc":""}`)
	require.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, api.CodeInvalidInput, decodeError(t, body).ErrorCode)
}

func TestUpdateAndDeleteTask(t *testing.T) {
	ta := newTestApp(t, usertest.DefaultCreateUser())

	status, _, _ := ta.do(t, "POST", "/users/1/tasks", `{"item_desc":"first"}`)
	require.Equal(t, fiber.StatusCreated, status)

	status, _, _ = ta.do(t, "PATCH", "/tasks/1", `{"description":"second"}`)
	require.Equal(t, fiber.StatusNoContent, status)
	assert.Equal(t, "second", ta.tasks.Tasks()[0].Description)

	status, _, _ = ta.do(t, "DELETE", "/tasks/1", "")
	require.Equal(t, fiber.StatusNoContent, status)
	assert.Empty(t, ta.tasks.Tasks())

	status, body, _ := ta.do(t, "DELETE", "/tasks/1", "")
	require.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, api.CodeNotFound, decodeError(t, body).ErrorCode)

	status, _, _ = ta.do(t, "PATCH", "/tasks/1", `{"description":"third"}`)
	require.Equal(t, fiber.StatusNotFound, status)
}

func TestHealth(t *testing.T) {
	ta := newTestApp(t)

	status, body, _ := ta.do(t, "GET", "/health", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	ta.health = errors.New("connection refused")
	status, body, _ = ta.do(t, "GET", "/health", "")
	require.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, api.CodeUnavailable, decodeError(t, body).ErrorCode)
}

func TestRequestID(t *testing.T) {
	ta := newTestApp(t)

	_, _, header := ta.do(t, "GET", "/health", "")
	assert.NotEmpty(t, header.Get(api.HeaderRequestID))

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set(api.HeaderRequestID, "req-42")
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "req-42", resp.Header.Get(api.HeaderRequestID))
}

func TestMetricsEndpoint(t *testing.T) {
	ta := newTestApp(t)

	status, _, _ := ta.do(t, "POST", "/users", `{"first_name":"Ada","last_name":"Lovelace"}`)
	require.Equal(t, fiber.StatusCreated, status)

	status, body, _ := ta.do(t, "GET", "/metrics", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), `todo_transactions_total{operation="create_user",outcome="committed"} 1`)
	assert.Contains(t, string(body), `http_requests_total{method="POST",path="/users",status_code="201"} 1`)
}

func TestMetricsEndpoint_LabelsSurviveLaterRequests(t *testing.T) {
	ta := newTestApp(t, usertest.DefaultCreateUser())

	status, _, _ := ta.do(t, "POST", "/users", `{"first_name":"Grace","last_name":"Hopper"}`)
	require.Equal(t, fiber.StatusCreated, status)

	for _, path := range []string{"/health", "/users", "/users/1/tasks", "/health"} {
		status, _, _ = ta.do(t, "GET", path, "")
		require.Equal(t, fiber.StatusOK, status, path)
	}

	status, body, _ := ta.do(t, "GET", "/metrics", "")
	require.Equal(t, fiber.StatusOK, status)

	scraped := string(body)
	assert.Contains(t, scraped, `http_requests_total{method="POST",path="/users",status_code="201"} 1`)
	assert.Contains(t, scraped, `http_requests_total{method="GET",path="/health",status_code="200"} 2`)
	assert.Contains(t, scraped, `http_requests_total{method="GET",path="/users/:user_id/tasks",status_code="200"} 1`)
	assert.NotContains(t, scraped, `method="GETT"`)
}

func TestMetricsEndpoint_UnknownRoutesShareOneSeries(t *testing.T) {
	ta := newTestApp(t)

	for _, path := range []string{"/nope-" + utilx.GenerateUUID().String(), "/nope-" + utilx.GenerateUUID().String()} {
		status, _, _ := ta.do(t, "GET", path, "")
		require.Equal(t, fiber.StatusNotFound, status)
	}

	status, body, _ := ta.do(t, "GET", "/metrics", "")
	require.Equal(t, fiber.StatusOK, status)

	scraped := string(body)
	assert.Contains(t, scraped, `http_requests_total{method="GET",path="unmatched",status_code="404"} 2`)
	assert.NotContains(t, scraped, `path="/nope-`)
}

type panickingUsers struct {
	*usertest.InMemoryPersistence
}

func (panickingUsers) All(context.Context, extconn.ExternalConnectivity) ([]user.TodoUser, error) {
	panic("users table is gone")
}

func TestMetricsEndpoint_CountsPanics(t *testing.T) {
	ta := newCustomTestApp(t, func(ta *testApp, deps *api.Dependencies) {
		deps.UserStore = panickingUsers{ta.users}
	})

	status, body, _ := ta.do(t, "GET", "/users", "")
	require.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, api.CodeInternalError, decodeError(t, body).ErrorCode)

	status, body, _ = ta.do(t, "GET", "/metrics", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), `http_requests_total{method="GET",path="/users",status_code="500"} 1`)
}

func TestUnknownRoute(t *testing.T) {
	ta := newTestApp(t)

	status, body, _ := ta.do(t, "GET", "/nope", "")
	require.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, api.CodeNotFound, decodeError(t, body).ErrorCode)
}
