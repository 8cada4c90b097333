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
	"rewear-api/internal/repo"
	resp "rewear-api/internal/transport/http/response"
	"rewear-api/pkg/utils"
)

const itemCacheTTL = 5 * time.Minute

type ItemHandler struct {
	db    *gorm.DB
	cache *cache.Cache // 可为 nil（未配置 redis 时直连 DB）
	log   *zap.Logger
}

func NewItemHandler(db *gorm.DB, ch *cache.Cache, log *zap.Logger) *ItemHandler {
	return &ItemHandler{db: db, cache: ch, log: log}
}

func (h *ItemHandler) MountAPI(pub, authed *gin.RouterGroup) {
	pub.GET("/items", h.List)
	pub.GET("/items/:id", h.Get)
	authed.POST("/items", h.Create)
	authed.PUT("/items/:id", h.Update)
	authed.DELETE("/items/:id", h.Delete)
	authed.GET("/users/items", h.Mine)
}

func ItemCacheKey(id string) string { return "item:" + id }

func (h *ItemHandler) invalidate(c *gin.Context, id string) {
	if h.cache != nil {
		h.cache.Invalidate(c, ItemCacheKey(id))
	}
}

// List 公开橱窗：只有审核通过且在架的物品
func (h *ItemHandler) List(c *gin.Context) {
	page, limit, offset := pageParams(c, 12)
	f := domain.ItemFilter{
		Category:  c.Query("category"),
		Size:      c.Query("size"),
		Condition: c.Query("condition"),
		Color:     c.Query("color"),
		Brand:     c.Query("brand"),
		Search:    c.Query("search"),
		SortBy:    c.Query("sortBy"),
	}
	items := repo.NewItemRepo(h.db.WithContext(c))
	list, total, err := items.ListPublic(f, offset, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, resp.Fail("Server error"))
		return
	}
	c.JSON(http.StatusOK, resp.OK("OK", gin.H{
		"items":      list,
		"pagination": resp.NewPagination(page, limit, total),
	}))
}

func (h *ItemHandler) Get(c *gin.Context) {
	id := c.Param("id")
	load := func(ctx context.Context) (*domain.Item, error) {
		return repo.NewItemRepo(h.db.WithContext(ctx)).FindByID(id)
	}

	var item *domain.Item
	var err error
	if h.cache != nil {
		item, err = cache.GetOrLoadJSON[domain.Item](h.cache, c, ItemCacheKey(id), itemCacheTTL, load)
	} else {
		item, err = load(c)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, resp.Fail("Server error"))
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, resp.Fail("Item not found"))
		return
	}
	c.JSON(http.StatusOK, resp.OK("OK", gin.H{"item": item}))
}

type itemIn struct {
	Title       string   `json:"title" binding:"required,max=100"`
	Description string   `json:"description" binding:"required,max=1000"`
	Category    string   `json:"category" binding:"required,oneof=dresses tops bottoms accessories shoes outerwear"`
	Type        string   `json:"type" binding:"required,max=64"`
	Size        string   `json:"size" binding:"required,oneof=XS S M L XL XXL"`
	Condition   string   `json:"condition" binding:"required,oneof=new like-new good fair"`
	Color       string   `json:"color" binding:"required,max=32"`
	Brand       string   `json:"brand" binding:"omitempty,max=64"`
	Tags        []string `json:"tags" binding:"omitempty,dive,max=32"`
	Images      []string `json:"images" binding:"omitempty,dive,max=255"`
}

func (h *ItemHandler) Create(c *gin.Context) {
	var in itemIn
	if !bindJSON(c, &in) {
		return
	}

	item := &domain.Item{
		ID:          utils.NewID(),
		OwnerID:     userID(c),
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Type:        in.Type,
		Size:        in.Size,
		Condition:   in.Condition,
		Color:       in.Color,
		Brand:       in.Brand,
		Tags:        in.Tags,
		Images:      in.Images,
		PointValue:  domain.ComputePointValue(in.Condition, in.Brand),
		Status:      domain.ItemAvailable,
		IsApproved:  false, // 上架前必须过审
	}
	if err := repo.NewItemRepo(h.db.WithContext(c)).Create(item); err != nil {
		c.JSON(http.StatusInternalServerError, resp.Fail("Server error"))
		return
	}
	c.JSON(http.StatusCreated, resp.OK(
		"Item created successfully. It will be reviewed before appearing on the platform.",
		gin.H{"item": item}))
}

func (h *ItemHandler) Update(c *gin.Context) {
	var in itemIn
	if !bindJSON(c, &in) {
		return
	}

	items := repo.NewItemRepo(h.db.WithContext(c))
	item, err := items.FindByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, resp.Fail("Server error"))
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, resp.Fail("Item not found"))
		return
	}
	if item.OwnerID != userID(c) {
		c.JSON(http.StatusForbidden, resp.Fail("Not authorized to update this item"))
		return
	}
	// 协商中/已换出的物品不让改
	if item.Status != domain.ItemAvailable && item.Status != domain.ItemRejected {
		c.JSON(http.StatusBadRequest, resp.Fail("Item is locked by an active swap"))
		return
	}

	item.Title = in.Title
	item.Description = in.Description
	item.Category = in.Category
	item.Type = in.Type
	item.Size = in.Size
	item.Condition = in.Condition
	item.Color = in.Color
	item.Brand = in.Brand
	item.Tags = in.Tags
	item.Images = in.Images
	item.PointValue = domain.ComputePointValue(in.Condition, in.Brand)
	item.IsApproved = false // 编辑后重新过审
	item.Status = domain.ItemAvailable
	item.RejectionReason = ""

	if err := items.Update(item); err != nil {
		c.JSON(http.StatusInternalServerError, resp.Fail("Server error"))
		return
	}
	h.invalidate(c, item.ID)
	c.JSON(http.StatusOK, resp.OK(
		"Item updated successfully. It will need to be re-approved.",
		gin.H{"item": item}))
}

func (h *ItemHandler) Delete(c *gin.Context) {
	items := repo.NewItemRepo(h.db.WithContext(c))
	item, err := items.FindByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, resp.Fail("Server error"))
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, resp.Fail("Item not found"))
		return
	}
	if item.OwnerID != userID(c) && c.GetString("role") != domain.RoleAdmin {
		c.JSON(http.StatusForbidden, resp.Fail("Not authorized to delete this item"))
		return
	}
	if item.Status == domain.ItemPending {
		c.JSON(http.StatusBadRequest, resp.Fail("Item is locked by an active swap"))
		return
	}
	if err := items.Delete(item.ID); err != nil {
		c.JSON(http.StatusInternalServerError, resp.Fail("Server error"))
		return
	}
	h.invalidate(c, item.ID)
	c.JSON(http.StatusOK, resp.OK("Item deleted successfully", nil))
}

func (h *ItemHandler) Mine(c *gin.Context) {
	page, limit, offset := pageParams(c, 10)
	items := repo.NewItemRepo(h.db.WithContext(c))
	list, total, err := items.ListByOwner(userID(c), offset, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, resp.Fail("Server error"))
		return
	}
	c.JSON(http.StatusOK, resp.OK("OK", gin.H{
		"items":      list,
		"pagination": resp.NewPagination(page, limit, total),
	}))
}
