package store

import (
	"context"

	"localchef-api/models"

	"gorm.io/gorm"
)

// Requests is the handle on the role requests collection
type Requests struct {
	db *gorm.DB
}

func (r *Requests) Create(ctx context.Context, req *models.RoleRequest) error {
	if req.ID == "" {
		req.ID = newID()
	}
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *Requests) Get(ctx context.Context, id string) (*models.RoleRequest, error) {
	var req models.RoleRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &req, nil
}

func (r *Requests) List(ctx context.Context) ([]models.RoleRequest, error) {
	reqs := []models.RoleRequest{}
	err := r.db.WithContext(ctx).Order("request_time desc").Find(&reqs).Error
	return reqs, err
}

// SetStatus moves the request to status `to` only while it is still in `from`.
// It reports false when the request is missing or was resolved meanwhile.
func (r *Requests) SetStatus(ctx context.Context, id string, from, to models.RequestStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.RoleRequest{}).
		Where("id = ? AND request_status = ?", id, from).
		Update("request_status", to)
	return res.RowsAffected > 0, res.Error
}
