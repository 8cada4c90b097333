package repo

import (
	"errors"

	"gorm.io/gorm"

	"rewear-api/internal/domain"
)

type SwapRepo struct{ db *gorm.DB }

func NewSwapRepo(db *gorm.DB) *SwapRepo { return &SwapRepo{db: db} }

func (r *SwapRepo) Create(s *domain.Swap) error { return r.db.Create(s).Error }

func (r *SwapRepo) FindByID(id string) (*domain.Swap, error) {
	var s domain.Swap
	err := r.db.First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &s, err
}

func (r *SwapRepo) HasPendingRequest(requesterID, requestedItemID string) (bool, error) {
	var n int64
	err := r.db.Model(&domain.Swap{}).
		Where("requester_id = ? AND requested_item_id = ? AND status = ?",
			requesterID, requestedItemID, domain.SwapPending).
		Count(&n).Error
	return n > 0, err
}

// UpdateStatusIf 状态迁移必须走这里：带当前状态条件的单条 UPDATE，
// 两个并发 accept 只有一个能命中 pending
func (r *SwapRepo) UpdateStatusIf(id, from, to string, extra map[string]any) (bool, error) {
	set := map[string]any{"status": to}
	for k, v := range extra {
		set[k] = v
	}
	res := r.db.Model(&domain.Swap{}).
		Where("id = ? AND status = ?", id, from).
		Updates(set)
	return res.RowsAffected > 0, res.Error
}

func (r *SwapRepo) ListForUser(userID, status string, offset, limit int) ([]domain.Swap, int64, error) {
	q := r.db.Model(&domain.Swap{}).
		Where("requester_id = ? OR owner_id = ?", userID, userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var swaps []domain.Swap
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&swaps).Error; err != nil {
		return nil, 0, err
	}
	return swaps, total, nil
}
