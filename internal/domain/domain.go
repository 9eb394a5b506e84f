package domain

import "time"

// Task statuses.
const (
	TaskPending    = "pending"
	TaskInProgress = "in_progress"
	TaskCompleted  = "completed"
)

// Built-in role names carried in User.Role and in bearer token claims.
const (
	RoleAdmin            = "admin"
	RoleMarketingManager = "marketing_manager"
	RoleContentCreator   = "content_creator"
	RoleDefault          = "user"
)

const CampaignActive = "active"

type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"-"`
	Role     string `json:"role"`
	Avatar   string `json:"avatar,omitempty"`
}

type UserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Avatar   string
}

type Role struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

type RoleInput struct {
	Name        string
	Description string
	Permissions []string
}

// RolePatch carries the fields of a partial role update; nil means unchanged.
type RolePatch struct {
	Name        *string
	Description *string
	Permissions []string
}

type Campaign struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Progress  int        `json:"progress"`
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	Status    string     `json:"status"`
}

type CampaignInput struct {
	Name      string
	Progress  int
	StartDate time.Time
	EndDate   *time.Time
	Status    string
}

type CampaignPatch struct {
	Name      *string
	Progress  *int
	StartDate *time.Time
	EndDate   *time.Time
	Status    *string
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

type TaskInput struct {
	Title       string
	Description *string
	UserID      int64
	CampaignID  *int64
	Status      string
	DueDate     *time.Time
	CompletedAt *time.Time
}

type TaskPatch struct {
	Title       *string
	Description *string
	UserID      *int64
	CampaignID  *int64
	Status      *string
	DueDate     *time.Time
	CompletedAt *time.Time
}

// Metric holds the per-user task counters. ProductivityScore is derived and
// never set directly through a patch.
type Metric struct {
	ID                int64 `json:"id"`
	UserID            int64 `json:"userId"`
	TasksCompleted    int   `json:"tasksCompleted"`
	TasksTotal        int   `json:"tasksTotal"`
	OnTimeRate        int   `json:"onTimeRate"`
	ProductivityScore int   `json:"productivityScore"`
}

type MetricInput struct {
	UserID            int64
	TasksCompleted    int
	TasksTotal        int
	OnTimeRate        int
	ProductivityScore int
}

type MetricPatch struct {
	TasksCompleted *int
	TasksTotal     *int
	OnTimeRate     *int
}

type Activity struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"userId"`
	Action       string    `json:"action"`
	Timestamp    time.Time `json:"timestamp"`
	ResourceType *string   `json:"resourceType,omitempty"`
	ResourceID   *int64    `json:"resourceId,omitempty"`
}

type ActivityInput struct {
	UserID       int64
	Action       string
	Timestamp    time.Time
	ResourceType *string
	ResourceID   *int64
}
