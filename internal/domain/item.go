package domain

import (
	"math"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Item 状态机：available → pending → swapped；rejected 由审核打回
const (
	ItemAvailable = "available"
	ItemPending   = "pending"
	ItemSwapped   = "swapped"
	ItemRejected  = "rejected"
)

const (
	ConditionNew     = "new"
	ConditionLikeNew = "like-new"
	ConditionGood    = "good"
	ConditionFair    = "fair"
)

type Item struct {
	ID          string   `gorm:"primaryKey;size:36" json:"id"`
	OwnerID     string   `gorm:"size:36;not null;index" json:"ownerId"`
	Title       string   `gorm:"size:100;not null" json:"title"`
	Description string   `gorm:"size:1000;not null" json:"description"`
	Category    string   `gorm:"size:32;not null;index:idx_items_browse" json:"category"`
	Type        string   `gorm:"size:64;not null" json:"type"`
	Size        string   `gorm:"size:8;not null" json:"size"`
	Condition   string   `gorm:"size:16;not null" json:"condition"`
	Color       string   `gorm:"size:32;not null" json:"color"`
	Brand       string   `gorm:"size:64" json:"brand,omitempty"`
	Tags        []string `gorm:"serializer:json" json:"tags"`
	Images      []string `gorm:"serializer:json" json:"images"`

	// 创建时按成色/品牌计算，编辑后重算，其余时候不可变
	PointValue int `gorm:"not null" json:"pointValue"`

	Status          string `gorm:"size:16;not null;default:available;index:idx_items_browse" json:"status"`
	IsApproved      bool   `gorm:"not null;default:false;index:idx_items_browse" json:"isApproved"`
	RejectionReason string `gorm:"size:300" json:"rejectionReason,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Item) TableName() string { return "items" }

// Swappable 是否可被发起 swap（上架 + 审核通过）
func (i *Item) Swappable() bool { return i.Status == ItemAvailable && i.IsApproved }

var premiumBrands = map[string]struct{}{
	"nike": {}, "adidas": {}, "gucci": {}, "prada": {}, "levi": {}, "zara": {}, "h&m": {},
}

// ComputePointValue 基础分 10，按成色加权，认证品牌再乘 1.3
func ComputePointValue(condition, brand string) int {
	base := 10.0
	switch condition {
	case ConditionNew:
		base *= 2
	case ConditionLikeNew:
		base *= 1.5
	case ConditionGood:
		base *= 1.2
	}
	if _, ok := premiumBrands[strings.ToLower(brand)]; ok && brand != "" {
		base *= 1.3
	}
	return int(math.Round(base))
}

// ItemFilter 公开列表的筛选条件（handler 绑定后传入）
type ItemFilter struct {
	Category  string
	Size      string
	Condition string
	Color     string
	Brand     string
	Search    string
	SortBy    string // newest / oldest / points-low / points-high
}

type ItemRepository interface {
	Create(i *Item) error
	FindByID(id string) (*Item, error)
	Update(i *Item) error
	Delete(id string) error
	ListPublic(f ItemFilter, offset, limit int) ([]Item, int64, error)
	ListByOwner(ownerID string, offset, limit int) ([]Item, int64, error)
	ListUnapproved(offset, limit int) ([]Item, int64, error)
	// SetStatusIf 条件迁移：当前状态命中 from 才写入 to，返回是否生效
	SetStatusIf(id string, from []string, to string) (bool, error)
}
