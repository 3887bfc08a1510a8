package pyrus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL адрес API Pyrus v4 по умолчанию.
const DefaultBaseURL = "https://api.pyrus.com/v4"

// Client представляет HTTP клиент для API Pyrus v4.
// Клиент создается на один запрос пользователя и не разделяется между
// горутинами: Auth записывает access token без синхронизации.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	login       string
	securityKey string
	accessToken string
}

// NewClient создает новый клиент Pyrus для пары логин/ключ безопасности.
// Перед вызовами API необходимо выполнить Auth.
func NewClient(baseURL, login, securityKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:     baseURL,
		login:       login,
		securityKey: securityKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type authRequest struct {
	Login       string `json:"login"`
	SecurityKey string `json:"security_key"`
}

type authResponse struct {
	AccessToken string `json:"access_token"`
}

// errorResponse представляет тело ошибки Pyrus
type errorResponse struct {
	Error     string `json:"error"`
	ErrorCode string `json:"error_code"`
}

// Auth выполняет аутентификацию и сохраняет access token для
// последующих вызовов. Возвращает ErrAuth, если Pyrus отверг пару
// логин/ключ, и ErrTransport при сетевой ошибке.
func (c *Client) Auth(ctx context.Context) error {
	body, err := json.Marshal(authRequest{Login: c.login, SecurityKey: c.securityKey})
	if err != nil {
		return fmt.Errorf("failed to marshal auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read auth response: %v", ErrTransport, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", ErrAuth, upstreamMessage(resp.StatusCode, respBody))
	}

	var authResp authResponse
	if err := json.Unmarshal(respBody, &authResp); err != nil {
		return fmt.Errorf("%w: failed to decode auth response: %v", ErrUpstream, err)
	}
	if authResp.AccessToken == "" {
		return fmt.Errorf("%w: empty access token in auth response", ErrAuth)
	}

	c.accessToken = authResp.AccessToken
	return nil
}

// GetForms возвращает список форм, доступных пользователю.
func (c *Client) GetForms(ctx context.Context) ([]Form, error) {
	var resp struct {
		Forms []Form `json:"forms"`
	}
	if err := c.doRequest(ctx, http.MethodGet, "/forms", nil, &resp); err != nil {
		return nil, fmt.Errorf("get forms request failed: %w", err)
	}
	return resp.Forms, nil
}

// GetForm возвращает структуру формы по ID.
func (c *Client) GetForm(ctx context.Context, formID int) (*Form, error) {
	var form Form
	if err := c.doRequest(ctx, http.MethodGet, "/forms/"+strconv.Itoa(formID), nil, &form); err != nil {
		return nil, fmt.Errorf("get form request failed: %w", err)
	}
	return &form, nil
}

// GetRegistry возвращает задачи реестра формы с учетом фильтров запроса.
func (c *Client) GetRegistry(ctx context.Context, formID int, req RegistryRequest) ([]Task, error) {
	var resp struct {
		Tasks []Task `json:"tasks"`
	}
	path := "/forms/" + strconv.Itoa(formID) + "/register"
	if err := c.doRequest(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, fmt.Errorf("get registry request failed: %w", err)
	}
	return resp.Tasks, nil
}

// GetTask возвращает задачу по ID вместе с комментариями.
// Возвращает ErrNotFound, если задачи нет или она недоступна пользователю.
func (c *Client) GetTask(ctx context.Context, taskID int) (*Task, error) {
	var resp struct {
		Task *Task `json:"task"`
	}
	if err := c.doRequest(ctx, http.MethodGet, "/tasks/"+strconv.Itoa(taskID), nil, &resp); err != nil {
		return nil, fmt.Errorf("get task request failed: %w", err)
	}
	if resp.Task == nil {
		return nil, ErrNotFound
	}
	return resp.Task, nil
}

// GetInbox возвращает задачи из входящих, не более tasksCount штук.
func (c *Client) GetInbox(ctx context.Context, tasksCount int) ([]Task, error) {
	var resp struct {
		Tasks []Task `json:"tasks"`
	}
	path := "/inbox?item_count=" + url.QueryEscape(strconv.Itoa(tasksCount))
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("get inbox request failed: %w", err)
	}
	return resp.Tasks, nil
}

// CommentTask добавляет комментарий к задаче и возвращает обновленную задачу.
func (c *Client) CommentTask(ctx context.Context, taskID int, req CommentRequest) (*Task, error) {
	var resp struct {
		Task *Task `json:"task"`
	}
	path := "/tasks/" + strconv.Itoa(taskID) + "/comments"
	if err := c.doRequest(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, fmt.Errorf("comment task request failed: %w", err)
	}
	if resp.Task == nil {
		return nil, ErrNotFound
	}
	return resp.Task, nil
}

// CreateTask создает новую задачу и возвращает ее.
func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (*Task, error) {
	var resp struct {
		Task *Task `json:"task"`
	}
	if err := c.doRequest(ctx, http.MethodPost, "/tasks", req, &resp); err != nil {
		return nil, fmt.Errorf("create task request failed: %w", err)
	}
	if resp.Task == nil {
		return nil, fmt.Errorf("%w: empty task in create response", ErrUpstream)
	}
	return resp.Task, nil
}

// GetCatalog возвращает справочник по ID.
func (c *Client) GetCatalog(ctx context.Context, catalogID int) (*Catalog, error) {
	var catalog Catalog
	if err := c.doRequest(ctx, http.MethodGet, "/catalogs/"+strconv.Itoa(catalogID), nil, &catalog); err != nil {
		return nil, fmt.Errorf("get catalog request failed: %w", err)
	}
	return &catalog, nil
}

// doRequest выполняет HTTP запрос к API с access token
func (c *Client) doRequest(ctx context.Context, method, path string, body, result interface{}) error {
	reqURL := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response body: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := upstreamMessage(resp.StatusCode, respBody)
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrAuth, msg)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrNotFound, msg)
		default:
			return fmt.Errorf("%w: %s", ErrUpstream, msg)
		}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", ErrUpstream, err)
		}
	}

	return nil
}

// upstreamMessage извлекает человекочитаемый текст ошибки из ответа Pyrus
func upstreamMessage(statusCode int, body []byte) string {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return errResp.Error
	}
	if len(body) > 0 {
		return fmt.Sprintf("status %d: %s", statusCode, string(body))
	}
	return fmt.Sprintf("status %d", statusCode)
}
