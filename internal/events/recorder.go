// Package events appends audit activities for mutations performed through the
// API.
package events

import (
	"context"
	"time"

	"go.uber.org/zap"

	"teamboard/internal/domain"
	"teamboard/internal/repo"
)

// Resource types carried on activities.
const (
	ResourceUser     = "user"
	ResourceRole     = "role"
	ResourceCampaign = "campaign"
	ResourceTask     = "task"
	ResourceMetric   = "metric"
)

type Recorder struct {
	Repo   *repo.Repo
	Now    func() time.Time
	Logger *zap.Logger
}

// Record appends one activity attributed to userID. An empty resourceType
// leaves the activity without a resource reference.
func (r Recorder) Record(ctx context.Context, userID int64, action, resourceType string, resourceID *int64) domain.Activity {
	in := domain.ActivityInput{
		UserID:     userID,
		Action:     action,
		ResourceID: resourceID,
	}
	if resourceType != "" {
		in.ResourceType = &resourceType
	}
	if r.Now != nil {
		in.Timestamp = r.Now().UTC()
	}
	a := r.Repo.CreateActivity(in)
	if r.Logger != nil {
		fields := []zap.Field{
			zap.Int64("activity_id", a.ID),
			zap.Int64("user_id", a.UserID),
			zap.String("action", a.Action),
		}
		if a.ResourceType != nil {
			fields = append(fields, zap.String("resource_type", *a.ResourceType))
		}
		if a.ResourceID != nil {
			fields = append(fields, zap.Int64("resource_id", *a.ResourceID))
		}
		r.Logger.Debug("activity recorded", fields...)
	}
	return a
}
