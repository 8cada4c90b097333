package swap

import (
	"gorm.io/gorm"

	"rewear-api/internal/domain"
	"rewear-api/internal/repo"
)

// Catalog 物品可用性状态在工作流里的视图。
// 协商中的物品只有工作流引擎写 status，审核/编辑走管理侧
type Catalog struct{ items *repo.ItemRepo }

func NewCatalog(tx *gorm.DB) *Catalog { return &Catalog{items: repo.NewItemRepo(tx)} }

func (c *Catalog) Get(id string) (*domain.Item, error) { return c.items.FindByID(id) }

// Lock 只允许从 available 锁出，双重预订时返回 false
func (c *Catalog) Lock(id, to string) (bool, error) {
	return c.items.SetStatusIf(id, []string{domain.ItemAvailable}, to)
}

// Release 完成阶段：协商中的物品落到终态
func (c *Catalog) Release(id, to string) (bool, error) {
	return c.items.SetStatusIf(id, []string{domain.ItemAvailable, domain.ItemPending}, to)
}

func newSwapRepo(tx *gorm.DB) *repo.SwapRepo { return repo.NewSwapRepo(tx) }
