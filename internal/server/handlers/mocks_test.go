package handlers

import (
	"context"
	"time"

	"github.com/pyrus-tasks/backend/internal/models"
	"github.com/pyrus-tasks/backend/internal/pyrus"
	"github.com/pyrus-tasks/backend/internal/server/storage"
)

// mockUserStorage реализует storage.UserStorage для тестов
type mockUserStorage struct {
	users          map[string]*models.User
	createErr      error
	getErr         error
	listErr        error
	created        []*models.User
	lastLoginCalls []int64
	lastLoginErr   error
}

func newMockUserStorage(users ...*models.User) *mockUserStorage {
	m := &mockUserStorage{users: make(map[string]*models.User)}
	for _, u := range users {
		m.users[u.Login] = u
	}
	return m
}

func (m *mockUserStorage) CreateUser(_ context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.users[user.Login]; exists {
		return storage.ErrUserAlreadyExists
	}
	user.ID = int64(len(m.users) + 1)
	m.users[user.Login] = user
	m.created = append(m.created, user)
	return nil
}

func (m *mockUserStorage) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	user, ok := m.users[login]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserStorage) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *mockUserStorage) ListUsers(_ context.Context, _, _ int) ([]*models.User, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	users := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	return users, nil
}

func (m *mockUserStorage) UpdateLastLogin(_ context.Context, id int64, _ time.Time) error {
	if m.lastLoginErr != nil {
		return m.lastLoginErr
	}
	m.lastLoginCalls = append(m.lastLoginCalls, id)
	return nil
}

func (m *mockUserStorage) Close() error { return nil }

// mockPyrusAPI реализует PyrusAPI с фиксированными ответами
type mockPyrusAPI struct {
	forms    []pyrus.Form
	formsErr error

	formByID map[int]*pyrus.Form
	formErr  error

	registry     []pyrus.Task
	registryErr  error
	registryReqs []pyrus.RegistryRequest

	task    *pyrus.Task
	taskErr error

	inbox      []pyrus.Task
	inboxErr   error
	inboxCount int

	commented   *pyrus.Task
	commentErr  error
	commentReqs []pyrus.CommentRequest

	created    *pyrus.Task
	createErr  error
	createReqs []pyrus.CreateTaskRequest

	catalogs   map[int]*pyrus.Catalog
	catalogErr error
}

func (m *mockPyrusAPI) GetForms(_ context.Context) ([]pyrus.Form, error) {
	return m.forms, m.formsErr
}

func (m *mockPyrusAPI) GetForm(_ context.Context, formID int) (*pyrus.Form, error) {
	if m.formErr != nil {
		return nil, m.formErr
	}
	form, ok := m.formByID[formID]
	if !ok {
		return nil, pyrus.ErrNotFound
	}
	return form, nil
}

func (m *mockPyrusAPI) GetRegistry(_ context.Context, _ int, req pyrus.RegistryRequest) ([]pyrus.Task, error) {
	m.registryReqs = append(m.registryReqs, req)
	return m.registry, m.registryErr
}

func (m *mockPyrusAPI) GetTask(_ context.Context, _ int) (*pyrus.Task, error) {
	return m.task, m.taskErr
}

func (m *mockPyrusAPI) GetInbox(_ context.Context, tasksCount int) ([]pyrus.Task, error) {
	m.inboxCount = tasksCount
	return m.inbox, m.inboxErr
}

func (m *mockPyrusAPI) CommentTask(_ context.Context, _ int, req pyrus.CommentRequest) (*pyrus.Task, error) {
	m.commentReqs = append(m.commentReqs, req)
	return m.commented, m.commentErr
}

func (m *mockPyrusAPI) CreateTask(_ context.Context, req pyrus.CreateTaskRequest) (*pyrus.Task, error) {
	m.createReqs = append(m.createReqs, req)
	return m.created, m.createErr
}

func (m *mockPyrusAPI) GetCatalog(_ context.Context, catalogID int) (*pyrus.Catalog, error) {
	if m.catalogErr != nil {
		return nil, m.catalogErr
	}
	catalog, ok := m.catalogs[catalogID]
	if !ok {
		return nil, pyrus.ErrNotFound
	}
	return catalog, nil
}

// mockGateway реализует Gateway поверх mockPyrusAPI
type mockGateway struct {
	api        PyrusAPI
	clientErr  error
	checkErr   error
	checkCalls []string
}

func (g *mockGateway) Client(_ context.Context, _ *models.User) (PyrusAPI, error) {
	if g.clientErr != nil {
		return nil, g.clientErr
	}
	return g.api, nil
}

func (g *mockGateway) Check(_ context.Context, login, _ string) error {
	g.checkCalls = append(g.checkCalls, login)
	return g.checkErr
}
