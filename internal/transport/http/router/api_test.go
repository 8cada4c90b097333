package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"rewear-api/internal/core/auth"
	"rewear-api/internal/domain"
	"rewear-api/internal/notify"
	"rewear-api/pkg/utils"
)

func init() { gin.SetMode(gin.TestMode) }

var testJWTer = &auth.JWTer{Secret: []byte("test-secret"), Issuer: "rewear-api", TTL: time.Hour}

func openTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Item{}, &domain.Swap{}))
	return db
}

func newTestAPI(t *testing.T, name string) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := openTestDB(t, name)
	log := zap.NewNop()
	r := NewAPIEngine(APIDeps{
		Log:            log,
		DB:             db,
		JWTer:          testJWTer,
		Sink:           notify.LogSink{Log: log},
		StartingPoints: 100,
	})
	return r, db
}

// envelope 统一响应壳的测试视图
type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    map[string]any      `json:"data"`
	Errors  []map[string]string `json:"errors"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return w.Code, env
}

func registerUser(t *testing.T, r *gin.Engine, email string) (userID, token string) {
	t.Helper()
	code, env := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"fullName": "Test User",
		"email":    email,
		"password": "s3cret!",
	})
	require.Equal(t, http.StatusCreated, code)
	user := env.Data["user"].(map[string]any)
	return user["id"].(string), env.Data["token"].(string)
}

func seedApprovedItem(t *testing.T, db *gorm.DB, ownerID string) *domain.Item {
	t.Helper()
	i := &domain.Item{
		ID:          utils.NewID(),
		OwnerID:     ownerID,
		Title:       "Vintage Tee",
		Description: "Soft cotton",
		Category:    "tops",
		Type:        "t-shirt",
		Size:        "L",
		Condition:   domain.ConditionGood,
		Color:       "white",
		PointValue:  12,
		Status:      domain.ItemAvailable,
		IsApproved:  true,
	}
	require.NoError(t, db.Create(i).Error)
	return i
}

func TestAuthFlow(t *testing.T) {
	r, _ := newTestAPI(t, "api_auth")

	code, env := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"fullName": "Alice",
		"email":    "alice@test.local",
		"password": "s3cret!",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.True(t, env.Success)
	assert.Equal(t, "User registered successfully", env.Message)
	user := env.Data["user"].(map[string]any)
	assert.EqualValues(t, 100, user["points"])
	assert.NotEmpty(t, env.Data["token"])
	_, hasHash := user["passwordHash"]
	assert.False(t, hasHash)

	// 重复注册
	code, env = doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"fullName": "Alice Again",
		"email":    "alice@test.local",
		"password": "s3cret!",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)
	assert.Equal(t, "User already exists with this email", env.Message)

	// 字段校验失败
	code, env = doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"fullName": "Bob",
		"email":    "not-an-email",
		"password": "s3cret!",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Validation error", env.Message)
	assert.NotEmpty(t, env.Errors)

	// 登录
	code, env = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "alice@test.local",
		"password": "s3cret!",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Login successful", env.Message)
	token := env.Data["token"].(string)

	code, env = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "alice@test.local",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid credentials", env.Message)

	// profile：无 token 401，有 token 200
	code, _ = doJSON(t, r, http.MethodGet, "/api/v1/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = doJSON(t, r, http.MethodGet, "/api/v1/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alice@test.local", env.Data["user"].(map[string]any)["email"])

	code, env = doJSON(t, r, http.MethodPut, "/api/v1/auth/profile", token, gin.H{
		"city": "Berlin",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Profile updated successfully", env.Message)
	assert.Equal(t, "Berlin", env.Data["user"].(map[string]any)["city"])
}

func TestItemLifecycle(t *testing.T) {
	r, db := newTestAPI(t, "api_items")
	_, token := registerUser(t, r, "seller@test.local")
	_, otherToken := registerUser(t, r, "other@test.local")

	code, env := doJSON(t, r, http.MethodPost, "/api/v1/items", token, gin.H{
		"title":       "Denim Jacket",
		"description": "Barely worn",
		"category":    "outerwear",
		"type":        "jacket",
		"size":        "M",
		"condition":   "new",
		"color":       "blue",
		"brand":       "Levi",
	})
	require.Equal(t, http.StatusCreated, code)
	item := env.Data["item"].(map[string]any)
	itemID := item["id"].(string)
	assert.Equal(t, false, item["isApproved"])
	assert.EqualValues(t, 26, item["pointValue"]) // new + 认证品牌

	// 未过审：公开列表不可见
	code, env = doJSON(t, r, http.MethodGet, "/api/v1/items", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, env.Data["items"])

	require.NoError(t, db.Model(&domain.Item{}).Where("id = ?", itemID).
		Update("is_approved", true).Error)

	code, env = doJSON(t, r, http.MethodGet, "/api/v1/items?category=outerwear", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, env.Data["items"], 1)

	code, env = doJSON(t, r, http.MethodGet, "/api/v1/items/"+itemID, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Denim Jacket", env.Data["item"].(map[string]any)["title"])

	code, env = doJSON(t, r, http.MethodGet, "/api/v1/items/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Item not found", env.Message)

	// 非物主不能编辑
	code, env = doJSON(t, r, http.MethodPut, "/api/v1/items/"+itemID, otherToken, gin.H{
		"title":       "Hijacked",
		"description": "x",
		"category":    "outerwear",
		"type":        "jacket",
		"size":        "M",
		"condition":   "good",
		"color":       "blue",
	})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Not authorized to update this item", env.Message)

	// 物主编辑后重新过审
	code, env = doJSON(t, r, http.MethodPut, "/api/v1/items/"+itemID, token, gin.H{
		"title":       "Denim Jacket v2",
		"description": "Barely worn",
		"category":    "outerwear",
		"type":        "jacket",
		"size":        "M",
		"condition":   "good",
		"color":       "blue",
	})
	require.Equal(t, http.StatusOK, code)
	updated := env.Data["item"].(map[string]any)
	assert.Equal(t, false, updated["isApproved"])
	assert.EqualValues(t, 12, updated["pointValue"])

	// 我的物品
	code, env = doJSON(t, r, http.MethodGet, "/api/v1/users/items", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, env.Data["items"], 1)

	code, env = doJSON(t, r, http.MethodDelete, "/api/v1/items/"+itemID, token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Item deleted successfully", env.Message)
}

func TestSwapFlowOverHTTP(t *testing.T) {
	r, db := newTestAPI(t, "api_swaps")
	ownerID, ownerToken := registerUser(t, r, "owner@test.local")
	_, reqToken := registerUser(t, r, "requester@test.local")

	item := seedApprovedItem(t, db, ownerID)

	code, env := doJSON(t, r, http.MethodPost, "/api/v1/swaps", reqToken, gin.H{
		"requestedItem": item.ID,
		"pointsOffered": 30,
		"message":       "interested!",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Swap request created successfully", env.Message)
	swapID := env.Data["swap"].(map[string]any)["id"].(string)

	// 双方都能在列表里看到
	code, env = doJSON(t, r, http.MethodGet, "/api/v1/swaps", ownerToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, env.Data["swaps"], 1)

	// requester 不能 accept
	code, env = doJSON(t, r, http.MethodPut, "/api/v1/swaps/"+swapID+"/accept", reqToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Not authorized to accept this swap", env.Message)

	code, env = doJSON(t, r, http.MethodPut, "/api/v1/swaps/"+swapID+"/accept", ownerToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Swap request accepted successfully", env.Message)

	// 积分已结算
	code, env = doJSON(t, r, http.MethodGet, "/api/v1/auth/profile", reqToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 70, env.Data["user"].(map[string]any)["points"])

	code, env = doJSON(t, r, http.MethodGet, "/api/v1/auth/profile", ownerToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 130, env.Data["user"].(map[string]any)["points"])

	// 重复 accept 被挡
	code, env = doJSON(t, r, http.MethodPut, "/api/v1/swaps/"+swapID+"/accept", ownerToken, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Swap request is no longer pending", env.Message)

	code, env = doJSON(t, r, http.MethodPut, "/api/v1/swaps/"+swapID+"/complete", reqToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Swap completed successfully", env.Message)

	code, env = doJSON(t, r, http.MethodGet, "/api/v1/swaps?status=completed", ownerToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, env.Data["swaps"], 1)
}

func TestSwapRejectOverHTTP(t *testing.T) {
	r, db := newTestAPI(t, "api_reject")
	ownerID, ownerToken := registerUser(t, r, "owner2@test.local")
	_, reqToken := registerUser(t, r, "requester2@test.local")

	item := seedApprovedItem(t, db, ownerID)

	code, env := doJSON(t, r, http.MethodPost, "/api/v1/swaps", reqToken, gin.H{
		"requestedItem": item.ID,
		"pointsOffered": 10,
	})
	require.Equal(t, http.StatusCreated, code)
	swapID := env.Data["swap"].(map[string]any)["id"].(string)

	// 理由缺失在绑定层就被拦下
	code, env = doJSON(t, r, http.MethodPut, "/api/v1/swaps/"+swapID+"/reject", ownerToken, gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Validation error", env.Message)

	code, env = doJSON(t, r, http.MethodPut, "/api/v1/swaps/"+swapID+"/reject", ownerToken, gin.H{
		"rejectionReason": "already promised",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Swap request rejected successfully", env.Message)
	assert.Equal(t, "already promised", env.Data["swap"].(map[string]any)["rejectionReason"])

	code, env = doJSON(t, r, http.MethodGet, "/api/v1/swaps?status=rejected", reqToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, env.Data["swaps"], 1)
}

func TestHealth(t *testing.T) {
	r, _ := newTestAPI(t, "api_health")
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
