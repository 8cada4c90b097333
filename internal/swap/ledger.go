package swap

import (
	"gorm.io/gorm"

	"rewear-api/internal/domain"
	"rewear-api/internal/repo"
)

// Ledger 积分账本。金额一律服务端校验，转账只发生在 accept 里
type Ledger struct{ users *repo.UserRepo }

func NewLedger(tx *gorm.DB) *Ledger { return &Ledger{users: repo.NewUserRepo(tx)} }

func (l *Ledger) Get(id string) (*domain.User, error) { return l.users.FindByID(id) }

func (l *Ledger) Balance(id string) (int, error) {
	u, err := l.users.FindByID(id)
	if err != nil {
		return 0, err
	}
	if u == nil {
		return 0, gorm.ErrRecordNotFound
	}
	return u.Points, nil
}

// Debit 余额不足返回 false，余额永远不会被打到负数
func (l *Ledger) Debit(id string, amount int) (bool, error) {
	if amount <= 0 {
		return false, nil
	}
	return l.users.Debit(id, amount)
}

func (l *Ledger) Credit(id string, amount int) error {
	if amount <= 0 {
		return nil
	}
	return l.users.Credit(id, amount)
}
