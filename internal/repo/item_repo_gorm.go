package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rewear-api/internal/domain"
)

type ItemRepo struct{ db *gorm.DB }

func NewItemRepo(db *gorm.DB) *ItemRepo { return &ItemRepo{db: db} }

func (r *ItemRepo) Create(i *domain.Item) error { return r.db.Create(i).Error }

func (r *ItemRepo) FindByID(id string) (*domain.Item, error) {
	var i domain.Item
	err := r.db.First(&i, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &i, err
}

func (r *ItemRepo) Update(i *domain.Item) error { return r.db.Save(i).Error }

func (r *ItemRepo) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&domain.Item{}).Error
}

// ListPublic 公开橱窗：只出审核通过且在架的
func (r *ItemRepo) ListPublic(f domain.ItemFilter, offset, limit int) ([]domain.Item, int64, error) {
	q := r.db.Model(&domain.Item{}).
		Where("is_approved = ? AND status = ?", true, domain.ItemAvailable)

	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Size != "" {
		q = q.Where("size = ?", f.Size)
	}
	if f.Condition != "" {
		// condition 是各家 SQL 的保留字，走 clause 让方言自己加引号
		q = q.Where(clause.Eq{Column: clause.Column{Name: "condition"}, Value: f.Condition})
	}
	if f.Color != "" {
		q = q.Where("color LIKE ?", "%"+f.Color+"%")
	}
	if f.Brand != "" {
		q = q.Where("brand LIKE ?", "%"+f.Brand+"%")
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + s + "%"
		q = q.Where("title LIKE ? OR description LIKE ? OR tags LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch f.SortBy {
	case "oldest":
		q = q.Order("created_at ASC")
	case "points-low":
		q = q.Order("point_value ASC")
	case "points-high":
		q = q.Order("point_value DESC")
	default: // newest
		q = q.Order("created_at DESC")
	}

	var items []domain.Item
	if err := q.Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *ItemRepo) ListByOwner(ownerID string, offset, limit int) ([]domain.Item, int64, error) {
	q := r.db.Model(&domain.Item{}).Where("owner_id = ?", ownerID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []domain.Item
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListUnapproved 审核队列
func (r *ItemRepo) ListUnapproved(offset, limit int) ([]domain.Item, int64, error) {
	q := r.db.Model(&domain.Item{}).Where("is_approved = ?", false)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []domain.Item
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *ItemRepo) SetStatusIf(id string, from []string, to string) (bool, error) {
	res := r.db.Model(&domain.Item{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	return res.RowsAffected > 0, res.Error
}
