package teamboardsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal Teamboard HTTP API client.
type Client struct {
	BaseURL     string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// User is the public view of an account.
type User struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

type Campaign struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Progress  int        `json:"progress"`
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	Status    string     `json:"status"`
}

type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	UserID      int64      `json:"userId"`
	CampaignID  *int64     `json:"campaignId,omitempty"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type Metric struct {
	ID                int64 `json:"id"`
	UserID            int64 `json:"userId"`
	TasksCompleted    int   `json:"tasksCompleted"`
	TasksTotal        int   `json:"tasksTotal"`
	OnTimeRate        int   `json:"onTimeRate"`
	ProductivityScore int   `json:"productivityScore"`
}

type Activity struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"userId"`
	Action       string    `json:"action"`
	Timestamp    time.Time `json:"timestamp"`
	ResourceType string    `json:"resourceType,omitempty"`
	ResourceID   *int64    `json:"resourceId,omitempty"`
}

type Role struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

type TeamMember struct {
	User
	TasksCompleted    int `json:"tasksCompleted"`
	TasksTotal        int `json:"tasksTotal"`
	OnTimeRate        int `json:"onTimeRate"`
	ProductivityScore int `json:"productivityScore"`
}

type PerformanceData struct {
	Campaigns        int          `json:"campaigns"`
	ActiveCampaigns  int          `json:"activeCampaigns"`
	OpenTasks        int          `json:"openTasks"`
	CompletedTasks   int          `json:"completedTasks"`
	TeamProductivity int          `json:"teamProductivity"`
	TeamMembers      []TeamMember `json:"teamMembers"`
}

// Dashboard is the aggregated home-screen payload.
type Dashboard struct {
	Campaigns       []Campaign      `json:"campaigns"`
	Metrics         []Metric        `json:"metrics"`
	Activities      []Activity      `json:"activities"`
	Roles           []Role          `json:"roles"`
	PerformanceData PerformanceData `json:"performanceData"`
}

// Session is the result of register and login.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error: status=%d message=%s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var resp Session
	err := c.do(ctx, http.MethodPost, "auth/login", map[string]any{
		"email":    email,
		"password": password,
	}, &resp)
	if err == nil {
		c.BearerToken = resp.Token
	}
	return resp, err
}

// Register creates an account and stores the returned token on the client.
func (c *Client) Register(ctx context.Context, name, email, password, role string) (Session, error) {
	body := map[string]any{
		"name":     name,
		"email":    email,
		"password": password,
	}
	if role != "" {
		body["role"] = role
	}
	var resp Session
	err := c.do(ctx, http.MethodPost, "auth/register", body, &resp)
	if err == nil {
		c.BearerToken = resp.Token
	}
	return resp, err
}

func (c *Client) Me(ctx context.Context) (User, error) {
	var resp User
	err := c.do(ctx, http.MethodGet, "auth/me", nil, &resp)
	return resp, err
}

func (c *Client) Dashboard(ctx context.Context) (Dashboard, error) {
	var resp Dashboard
	err := c.do(ctx, http.MethodGet, "dashboard", nil, &resp)
	return resp, err
}

// Tasks lists tasks. A non-zero userID or campaignID filters the result.
func (c *Client) Tasks(ctx context.Context, userID, campaignID int64) ([]Task, error) {
	q := url.Values{}
	if userID != 0 {
		q.Set("userId", fmt.Sprint(userID))
	}
	if campaignID != 0 {
		q.Set("campaignId", fmt.Sprint(campaignID))
	}
	var resp []Task
	err := c.do(ctx, http.MethodGet, withQuery("tasks", q), nil, &resp)
	return resp, err
}

// CreateTask creates a task owned by userID.
func (c *Client) CreateTask(ctx context.Context, title string, userID int64, campaignID *int64) (Task, error) {
	body := map[string]any{
		"title":  title,
		"userId": userID,
	}
	if campaignID != nil {
		body["campaignId"] = *campaignID
	}
	var resp Task
	err := c.do(ctx, http.MethodPost, "tasks", body, &resp)
	return resp, err
}

// SetTaskStatus changes the status of a task.
func (c *Client) SetTaskStatus(ctx context.Context, id int64, status string) (Task, error) {
	var resp Task
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("tasks/%d", id), map[string]any{"status": status}, &resp)
	return resp, err
}

// Activities lists activities, newest first. A non-zero userID scopes the list.
func (c *Client) Activities(ctx context.Context, userID int64) ([]Activity, error) {
	q := url.Values{}
	if userID != 0 {
		q.Set("userId", fmt.Sprint(userID))
	}
	var resp []Activity
	err := c.do(ctx, http.MethodGet, withQuery("activities", q), nil, &resp)
	return resp, err
}

func (c *Client) UserMetrics(ctx context.Context, userID int64) (Metric, error) {
	var resp Metric
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("metrics/%d", userID), nil, &resp)
	return resp, err
}

func (c *Client) Metrics(ctx context.Context) ([]Metric, error) {
	var resp []Metric
	err := c.do(ctx, http.MethodGet, "metrics", nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/api/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(b)}
		var envelope struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(b, &envelope) == nil {
			apiErr.Message = envelope.Message
		}
		return apiErr
	}
	if out != nil && resp.StatusCode != http.StatusNoContent {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func withQuery(endpoint string, q url.Values) string {
	if len(q) == 0 {
		return endpoint
	}
	return endpoint + "?" + q.Encode()
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
