package engine

import (
	"context"
	"strings"

	"teamboard/internal/domain"
	"teamboard/internal/engine/auth"
	"teamboard/internal/events"
)

func (e Engine) ListCampaigns(ctx context.Context, p auth.Principal) ([]domain.Campaign, error) {
	return e.Repo.ListCampaigns(), nil
}

func (e Engine) GetCampaign(ctx context.Context, p auth.Principal, id int64) (domain.Campaign, error) {
	c, ok := e.Repo.GetCampaign(id)
	if !ok {
		return domain.Campaign{}, NotFoundError{Resource: "Campaign"}
	}
	return c, nil
}

func (e Engine) CreateCampaign(ctx context.Context, p auth.Principal, in domain.CampaignInput) (domain.Campaign, error) {
	if err := auth.Require(p.Role, denyRoles, auth.Managers...); err != nil {
		return domain.Campaign{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := required("name", in.Name); err != nil {
		return domain.Campaign{}, err
	}
	if in.StartDate.IsZero() {
		return domain.Campaign{}, ValidationError{Field: "startDate", Message: "is required"}
	}
	c := e.Repo.CreateCampaign(in)
	e.Events.Record(ctx, p.UserID, "Created campaign", events.ResourceCampaign, ptr(c.ID))
	return c, nil
}

func (e Engine) UpdateCampaign(ctx context.Context, p auth.Principal, id int64, patch domain.CampaignPatch) (domain.Campaign, error) {
	if err := auth.Require(p.Role, denyRoles, auth.Managers...); err != nil {
		return domain.Campaign{}, err
	}
	c, ok := e.Repo.UpdateCampaign(id, patch)
	if !ok {
		return domain.Campaign{}, NotFoundError{Resource: "Campaign"}
	}
	e.Events.Record(ctx, p.UserID, "Updated campaign", events.ResourceCampaign, ptr(id))
	return c, nil
}

func (e Engine) DeleteCampaign(ctx context.Context, p auth.Principal, id int64) error {
	if err := auth.Require(p.Role, denyRoles, auth.Managers...); err != nil {
		return err
	}
	if !e.Repo.DeleteCampaign(id) {
		return NotFoundError{Resource: "Campaign"}
	}
	e.Events.Record(ctx, p.UserID, "Deleted campaign", events.ResourceCampaign, ptr(id))
	return nil
}
