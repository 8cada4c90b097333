package domain

import (
	"time"

	"gorm.io/gorm"
)

// Swap 状态机：pending → accepted → completed；pending → rejected
// rejected / completed 为终态，之后任何变更都拒绝
const (
	SwapPending   = "pending"
	SwapAccepted  = "accepted"
	SwapRejected  = "rejected"
	SwapCompleted = "completed"
)

type Swap struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	RequesterID string `gorm:"size:36;not null;index:idx_swaps_requester" json:"requesterId"`
	OwnerID     string `gorm:"size:36;not null;index:idx_swaps_owner" json:"ownerId"`

	RequestedItemID string `gorm:"size:36;not null;index" json:"requestedItemId"`
	// 二选一：要么押物品，要么押积分（创建时校验）
	OfferedItemID string `gorm:"size:36" json:"offeredItemId,omitempty"`
	PointsOffered int    `gorm:"not null;default:0" json:"pointsOffered,omitempty"`

	Status          string     `gorm:"size:16;not null;default:pending;index:idx_swaps_requester;index:idx_swaps_owner" json:"status"`
	Message         string     `gorm:"size:500" json:"message,omitempty"`
	RejectionReason string     `gorm:"size:300" json:"rejectionReason,omitempty"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// 列表接口回填，不落库
	Requester     *User `gorm:"-" json:"requester,omitempty"`
	Owner         *User `gorm:"-" json:"owner,omitempty"`
	RequestedItem *Item `gorm:"-" json:"requestedItem,omitempty"`
	OfferedItem   *Item `gorm:"-" json:"offeredItem,omitempty"`
}

func (Swap) TableName() string { return "swaps" }

func (s *Swap) Terminal() bool {
	return s.Status == SwapRejected || s.Status == SwapCompleted
}

type SwapRepository interface {
	Create(s *Swap) error
	FindByID(id string) (*Swap, error)
	// HasPendingRequest 同一 requester 对同一物品是否已有 pending 请求
	HasPendingRequest(requesterID, requestedItemID string) (bool, error)
	// UpdateStatusIf CAS：status == from 时迁移到 to 并合并 extra 字段，返回是否生效
	UpdateStatusIf(id, from, to string, extra map[string]any) (bool, error)
	ListForUser(userID, status string, offset, limit int) ([]Swap, int64, error)
}
