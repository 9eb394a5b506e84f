package server

import (
	"time"

	"teamboard/internal/domain"
	"teamboard/internal/engine"
)

// Request payloads

type RegisterRequest struct {
	Name     string `json:"name" minLength:"1"`
	Email    string `json:"email" format:"email"`
	Password string `json:"password" minLength:"1"`
	Role     string `json:"role,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" format:"email"`
	Password string `json:"password" minLength:"6"`
}

type CreateRoleRequest struct {
	Name        string   `json:"name" minLength:"1"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions,omitempty"`
}

type UpdateRoleRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

type CreateCampaignRequest struct {
	Name      string     `json:"name" minLength:"1"`
	Progress  int        `json:"progress,omitempty"`
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	Status    string     `json:"status,omitempty"`
}

type UpdateCampaignRequest struct {
	Name      *string    `json:"name,omitempty"`
	Progress  *int       `json:"progress,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	Status    *string    `json:"status,omitempty"`
}

type CreateTaskRequest struct {
	Title       string     `json:"title" minLength:"1"`
	Description *string    `json:"description,omitempty"`
	UserID      int64      `json:"userId" minimum:"1"`
	CampaignID  *int64     `json:"campaignId,omitempty"`
	Status      string     `json:"status,omitempty" enum:"pending,in_progress,completed"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	UserID      *int64     `json:"userId,omitempty"`
	CampaignID  *int64     `json:"campaignId,omitempty"`
	Status      *string    `json:"status,omitempty" enum:"pending,in_progress,completed"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type UpdateMetricRequest struct {
	TasksCompleted *int `json:"tasksCompleted,omitempty" minimum:"0"`
	TasksTotal     *int `json:"tasksTotal,omitempty" minimum:"0"`
	OnTimeRate     *int `json:"onTimeRate,omitempty" minimum:"0" maximum:"100"`
}

// Response payloads

type AuthResponse struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

type UserWithMetricsResponse struct {
	ID      int64          `json:"id"`
	Name    string         `json:"name"`
	Email   string         `json:"email"`
	Role    string         `json:"role"`
	Avatar  string         `json:"avatar,omitempty"`
	Metrics *domain.Metric `json:"metrics,omitempty"`
}

type TeamMemberResponse struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	Role              string `json:"role"`
	Avatar            string `json:"avatar,omitempty"`
	TasksCompleted    int    `json:"tasksCompleted"`
	TasksTotal        int    `json:"tasksTotal"`
	OnTimeRate        int    `json:"onTimeRate"`
	ProductivityScore int    `json:"productivityScore"`
}

type PerformanceDataResponse struct {
	Campaigns        int                  `json:"campaigns"`
	ActiveCampaigns  int                  `json:"activeCampaigns"`
	OpenTasks        int                  `json:"openTasks"`
	CompletedTasks   int                  `json:"completedTasks"`
	TeamProductivity int                  `json:"teamProductivity"`
	TeamMembers      []TeamMemberResponse `json:"teamMembers"`
}

type DashboardResponse struct {
	Campaigns       []domain.Campaign       `json:"campaigns"`
	Metrics         []domain.Metric         `json:"metrics"`
	Activities      []domain.Activity       `json:"activities"`
	Roles           []domain.Role           `json:"roles"`
	PerformanceData PerformanceDataResponse `json:"performanceData"`
}

func authResponse(s engine.Session) AuthResponse {
	return AuthResponse{User: s.User, Token: s.Token}
}

func usersWithMetricsResponse(in []engine.UserWithMetrics) []UserWithMetricsResponse {
	out := make([]UserWithMetricsResponse, 0, len(in))
	for _, u := range in {
		out = append(out, UserWithMetricsResponse{
			ID:      u.User.ID,
			Name:    u.User.Name,
			Email:   u.User.Email,
			Role:    u.User.Role,
			Avatar:  u.User.Avatar,
			Metrics: u.Metrics,
		})
	}
	return out
}

func dashboardResponse(d engine.Dashboard) DashboardResponse {
	perf := d.PerformanceData
	members := make([]TeamMemberResponse, 0, len(perf.TeamMembers))
	for _, m := range perf.TeamMembers {
		members = append(members, TeamMemberResponse{
			ID:                m.User.ID,
			Name:              m.User.Name,
			Email:             m.User.Email,
			Role:              m.User.Role,
			Avatar:            m.User.Avatar,
			TasksCompleted:    m.Metric.TasksCompleted,
			TasksTotal:        m.Metric.TasksTotal,
			OnTimeRate:        m.Metric.OnTimeRate,
			ProductivityScore: m.Metric.ProductivityScore,
		})
	}
	return DashboardResponse{
		Campaigns:  nonNilSlice(d.Campaigns),
		Metrics:    nonNilSlice(d.Metrics),
		Activities: nonNilSlice(d.Activities),
		Roles:      nonNilSlice(d.Roles),
		PerformanceData: PerformanceDataResponse{
			Campaigns:        perf.Campaigns,
			ActiveCampaigns:  perf.ActiveCampaigns,
			OpenTasks:        perf.OpenTasks,
			CompletedTasks:   perf.CompletedTasks,
			TeamProductivity: perf.TeamProductivity,
			TeamMembers:      members,
		},
	}
}

func rolePatch(in UpdateRoleRequest) domain.RolePatch {
	return domain.RolePatch{Name: in.Name, Description: in.Description, Permissions: in.Permissions}
}

func campaignPatch(in UpdateCampaignRequest) domain.CampaignPatch {
	return domain.CampaignPatch{
		Name:      in.Name,
		Progress:  in.Progress,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Status:    in.Status,
	}
}

func taskInput(in CreateTaskRequest) domain.TaskInput {
	return domain.TaskInput{
		Title:       in.Title,
		Description: in.Description,
		UserID:      in.UserID,
		CampaignID:  in.CampaignID,
		Status:      in.Status,
		DueDate:     in.DueDate,
		CompletedAt: in.CompletedAt,
	}
}

func taskPatch(in UpdateTaskRequest) domain.TaskPatch {
	return domain.TaskPatch{
		Title:       in.Title,
		Description: in.Description,
		UserID:      in.UserID,
		CampaignID:  in.CampaignID,
		Status:      in.Status,
		DueDate:     in.DueDate,
		CompletedAt: in.CompletedAt,
	}
}

func nonNilSlice[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
