package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rewear-api/internal/core/cache"
	"rewear-api/internal/domain"
	"rewear-api/internal/notify"
	"rewear-api/internal/repo"
	"rewear-api/internal/transport/http/ez"
	resp "rewear-api/internal/transport/http/response"
)

const statsCacheTTL = 30 * time.Second

// AdminHandler 管理端：用户管理 + 审核队列 + 平台统计。
// 分组已由 AuthJWT("admin") 保证角色，这里不再重复校验
type AdminHandler struct {
	db    *gorm.DB
	cache *cache.Cache // 可为 nil
	log   *zap.Logger
	sink  notify.Sink
}

func NewAdminHandler(db *gorm.DB, ch *cache.Cache, log *zap.Logger, sink notify.Sink) *AdminHandler {
	return &AdminHandler{db: db, cache: ch, log: log, sink: sink}
}

func (h *AdminHandler) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g)

	ez.RegisterAction(e, h.db, ez.Action[userListIn, gin.H]{
		Method: "GET", Path: "/users", Binder: ez.BindQuery,
		Handler: h.listUsers,
	})
	ez.RegisterAction(e, h.db, ez.Action[roleIn, gin.H]{
		Method: "PUT", Path: "/users/:id/role", Binder: ez.BindJSON, UseTx: true,
		OKMsg:   "User role updated successfully",
		Handler: h.setRole,
	})
	ez.RegisterAction(e, h.db, ez.Action[ez.NoInput, gin.H]{
		Method: "POST", Path: "/users/:id/ban", Binder: ez.BindNone, UseTx: true,
		OKMsg:   "User banned successfully",
		Handler: h.banUser,
	})

	ez.RegisterAction(e, h.db, ez.Action[pageIn, gin.H]{
		Method: "GET", Path: "/items/pending", Binder: ez.BindQuery,
		Handler: h.pendingItems,
	})
	ez.RegisterAction(e, h.db, ez.Action[ez.NoInput, gin.H]{
		Method: "PUT", Path: "/items/:id/approve", Binder: ez.BindNone, UseTx: true,
		OKMsg:   "Item approved successfully",
		Handler: h.approveItem,
	})
	ez.RegisterAction(e, h.db, ez.Action[rejectItemIn, gin.H]{
		Method: "PUT", Path: "/items/:id/reject", Binder: ez.BindJSON, UseTx: true,
		OKMsg:   "Item rejected",
		Handler: h.rejectItem,
	})
	ez.RegisterAction(e, h.db, ez.Action[ez.NoInput, gin.H]{
		Method: "DELETE", Path: "/items/:id", Binder: ez.BindNone, UseTx: true,
		OKMsg:   "Item deleted successfully",
		Handler: h.deleteItem,
	})

	g.GET("/stats", h.Stats)
}

type userListIn struct {
	Page        int    `form:"page"`
	Limit       int    `form:"limit"`
	Q           string `form:"q"`
	WithDeleted bool   `form:"with_deleted"`
}

func (h *AdminHandler) listUsers(c *gin.Context, db *gorm.DB, in *userListIn) (gin.H, error) {
	page, limit := in.Page, in.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	q := db.Model(&domain.User{})
	if in.WithDeleted {
		q = q.Unscoped()
	}
	if in.Q != "" {
		like := "%" + in.Q + "%"
		q = q.Where("email LIKE ? OR full_name LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}
	var users []domain.User
	if err := q.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&users).Error; err != nil {
		return nil, err
	}
	return gin.H{
		"users":      users,
		"pagination": resp.NewPagination(page, limit, total),
	}, nil
}

type roleIn struct {
	Role string `json:"role" binding:"required,oneof=user admin"`
}

func (h *AdminHandler) setRole(c *gin.Context, tx *gorm.DB, in *roleIn) (gin.H, error) {
	users := repo.NewUserRepo(tx)
	u, err := users.FindByID(c.Param("id"))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ez.NotFound("User not found")
	}
	u.Role = in.Role
	if err := users.Update(u); err != nil {
		return nil, err
	}
	return gin.H{"user": u}, nil
}

func (h *AdminHandler) banUser(c *gin.Context, tx *gorm.DB, _ *ez.NoInput) (gin.H, error) {
	users := repo.NewUserRepo(tx)
	u, err := users.FindByID(c.Param("id"))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ez.NotFound("User not found")
	}
	if u.Role == domain.RoleAdmin {
		return nil, ez.BadRequest("Cannot ban an admin account")
	}
	// 软删：登录与 profile 都查不到了，历史换物记录保留
	if err := tx.Delete(u).Error; err != nil {
		return nil, err
	}
	return gin.H{}, nil
}

type pageIn struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

func (h *AdminHandler) pendingItems(c *gin.Context, db *gorm.DB, in *pageIn) (gin.H, error) {
	page, limit := in.Page, in.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	list, total, err := repo.NewItemRepo(db).ListUnapproved((page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return gin.H{
		"items":      list,
		"pagination": resp.NewPagination(page, limit, total),
	}, nil
}

func (h *AdminHandler) approveItem(c *gin.Context, tx *gorm.DB, _ *ez.NoInput) (gin.H, error) {
	items := repo.NewItemRepo(tx)
	item, err := items.FindByID(c.Param("id"))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ez.NotFound("Item not found")
	}
	if item.IsApproved {
		return nil, ez.BadRequest("Item is already approved")
	}
	item.IsApproved = true
	item.Status = domain.ItemAvailable
	item.RejectionReason = ""
	if err := items.Update(item); err != nil {
		return nil, err
	}
	h.invalidateItem(c, item.ID)
	h.notifyOwner(item, func(email string) notify.Message {
		return notify.ItemApproved(email, item.Title)
	})
	return gin.H{"item": item}, nil
}

type rejectItemIn struct {
	Reason string `json:"rejectionReason" binding:"required,min=1,max=300"`
}

func (h *AdminHandler) rejectItem(c *gin.Context, tx *gorm.DB, in *rejectItemIn) (gin.H, error) {
	items := repo.NewItemRepo(tx)
	item, err := items.FindByID(c.Param("id"))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ez.NotFound("Item not found")
	}
	if item.Status == domain.ItemPending {
		return nil, ez.BadRequest("Item is locked by an active swap")
	}
	item.IsApproved = false
	item.Status = domain.ItemRejected
	item.RejectionReason = in.Reason
	if err := items.Update(item); err != nil {
		return nil, err
	}
	h.invalidateItem(c, item.ID)
	reason := in.Reason
	h.notifyOwner(item, func(email string) notify.Message {
		return notify.ItemRejected(email, item.Title, reason)
	})
	return gin.H{"item": item}, nil
}

func (h *AdminHandler) deleteItem(c *gin.Context, tx *gorm.DB, _ *ez.NoInput) (gin.H, error) {
	items := repo.NewItemRepo(tx)
	item, err := items.FindByID(c.Param("id"))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ez.NotFound("Item not found")
	}
	if item.Status == domain.ItemPending {
		return nil, ez.BadRequest("Item is locked by an active swap")
	}
	if err := items.Delete(item.ID); err != nil {
		return nil, err
	}
	h.invalidateItem(c, item.ID)
	return gin.H{}, nil
}

// PlatformStats 看板数据，30 秒缓存一份
type PlatformStats struct {
	TotalUsers     int64            `json:"totalUsers"`
	TotalItems     int64            `json:"totalItems"`
	TotalSwaps     int64            `json:"totalSwaps"`
	CompletedSwaps int64            `json:"completedSwaps"`
	PendingReviews int64            `json:"pendingReviews"`
	RecentUsers    int64            `json:"recentUsers"`
	RecentSwaps    int64            `json:"recentSwaps"`
	Categories     map[string]int64 `json:"categories"`
	TopUsers       []domain.User    `json:"topUsers"`
}

func (h *AdminHandler) Stats(c *gin.Context) {
	load := func(ctx context.Context) (*PlatformStats, error) {
		return h.loadStats(h.db.WithContext(ctx))
	}

	var s *PlatformStats
	var err error
	if h.cache != nil {
		s, err = cache.GetOrLoadJSON[PlatformStats](h.cache, c, "admin:stats", statsCacheTTL, load)
	} else {
		s, err = load(c)
	}
	if err != nil {
		h.log.Error("load stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, resp.Fail("Server error"))
		return
	}
	c.JSON(http.StatusOK, resp.OK("OK", gin.H{"stats": s}))
}

func (h *AdminHandler) loadStats(db *gorm.DB) (*PlatformStats, error) {
	s := &PlatformStats{Categories: map[string]int64{}}
	since := time.Now().AddDate(0, 0, -30)

	if err := db.Model(&domain.User{}).Count(&s.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Item{}).Count(&s.TotalItems).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Swap{}).Count(&s.TotalSwaps).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Swap{}).Where("status = ?", domain.SwapCompleted).Count(&s.CompletedSwaps).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Item{}).Where("is_approved = ? AND status <> ?", false, domain.ItemRejected).Count(&s.PendingReviews).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.User{}).Where("created_at >= ?", since).Count(&s.RecentUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Swap{}).Where("created_at >= ?", since).Count(&s.RecentSwaps).Error; err != nil {
		return nil, err
	}

	type catRow struct {
		Category string
		N        int64
	}
	var rows []catRow
	if err := db.Model(&domain.Item{}).
		Select("category, COUNT(*) AS n").
		Group("category").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		s.Categories[r.Category] = r.N
	}

	if err := db.Model(&domain.User{}).
		Order("points DESC").Limit(10).
		Find(&s.TopUsers).Error; err != nil {
		return nil, err
	}
	return s, nil
}

func (h *AdminHandler) invalidateItem(c *gin.Context, id string) {
	if h.cache != nil {
		h.cache.Invalidate(c, ItemCacheKey(id))
	}
}

func (h *AdminHandler) notifyOwner(item *domain.Item, build func(email string) notify.Message) {
	owner, err := repo.NewUserRepo(h.db).FindByID(item.OwnerID)
	if err != nil || owner == nil {
		return
	}
	notify.Dispatch(h.log, h.sink, build(owner.Email))
}
