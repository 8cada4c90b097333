package domain

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string `gorm:"primaryKey;size:36" json:"id"`
	Email        string `gorm:"uniqueIndex;size:191;not null" json:"email"`
	FullName     string `gorm:"size:64;not null" json:"fullName"`
	PasswordHash string `gorm:"size:100;not null" json:"-"`
	Phone        string `gorm:"size:32" json:"phone,omitempty"`
	City         string `gorm:"size:64" json:"city,omitempty"`
	State        string `gorm:"size:64" json:"state,omitempty"`

	// 积分余额：只通过 swap 结算变动，任何时刻 >= 0
	Points int    `gorm:"not null;default:0" json:"points"`
	Role   string `gorm:"size:16;not null;default:user" json:"role"` // "user"/"admin"

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

type UserRepository interface {
	Create(u *User) error
	FindByID(id string) (*User, error)
	FindByEmail(email string) (*User, error)
	Update(u *User) error
	List(offset, limit int) ([]User, int64, error)
	// Debit 条件扣减：余额不足不落库，返回 false
	Debit(id string, amount int) (bool, error)
	Credit(id string, amount int) error
}
