package repo

import "teamboard/internal/domain"

func (r *Repo) CreateCampaign(in domain.CampaignInput) domain.Campaign {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := domain.Campaign{
		ID:        r.campaigns.nextID(),
		Name:      in.Name,
		Progress:  in.Progress,
		StartDate: in.StartDate,
		EndDate:   clonePtr(in.EndDate),
		Status:    in.Status,
	}
	if c.Status == "" {
		c.Status = domain.CampaignActive
	}
	r.campaigns.insert(c.ID, c)
	return c
}

func (r *Repo) GetCampaign(id int64) (domain.Campaign, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.campaigns.get(id)
}

func (r *Repo) ListCampaigns() []domain.Campaign {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.campaigns.values()
}

func (r *Repo) UpdateCampaign(id int64, patch domain.CampaignPatch) (domain.Campaign, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns.get(id)
	if !ok {
		return domain.Campaign{}, false
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Progress != nil {
		c.Progress = *patch.Progress
	}
	if patch.StartDate != nil {
		c.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		c.EndDate = clonePtr(patch.EndDate)
	}
	if patch.Status != nil {
		c.Status = *patch.Status
	}
	r.campaigns.put(id, c)
	return c, true
}

func (r *Repo) DeleteCampaign(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.campaigns.remove(id)
}
