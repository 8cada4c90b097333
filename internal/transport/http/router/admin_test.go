package router

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rewear-api/internal/domain"
	"rewear-api/internal/notify"
	"rewear-api/pkg/utils"
)

func newTestAdmin(t *testing.T, name string) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := openTestDB(t, name)
	log := zap.NewNop()
	r := NewAdminEngine(AdminDeps{
		Log:   log,
		DB:    db,
		JWTer: testJWTer,
		Sink:  notify.LogSink{Log: log},
	})
	return r, db
}

func seedAccount(t *testing.T, db *gorm.DB, role string) (*domain.User, string) {
	t.Helper()
	u := &domain.User{
		ID:           utils.NewID(),
		Email:        utils.NewID() + "@test.local",
		FullName:     "Seeded",
		PasswordHash: "x",
		Points:       100,
		Role:         role,
	}
	require.NoError(t, db.Create(u).Error)
	token, err := testJWTer.Issue(u.ID, u.Role)
	require.NoError(t, err)
	return u, token
}

func seedPendingItem(t *testing.T, db *gorm.DB, ownerID string) *domain.Item {
	t.Helper()
	i := &domain.Item{
		ID:          utils.NewID(),
		OwnerID:     ownerID,
		Title:       "Wool Coat",
		Description: "Winter ready",
		Category:    "outerwear",
		Type:        "coat",
		Size:        "S",
		Condition:   domain.ConditionLikeNew,
		Color:       "gray",
		PointValue:  15,
		Status:      domain.ItemAvailable,
		IsApproved:  false,
	}
	require.NoError(t, db.Create(i).Error)
	return i
}

func TestAdminRequiresRole(t *testing.T) {
	r, db := newTestAdmin(t, "admin_role")
	_, userToken := seedAccount(t, db, domain.RoleUser)

	code, _ := doJSON(t, r, http.MethodGet, "/admin/v1/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = doJSON(t, r, http.MethodGet, "/admin/v1/users", userToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestAdminModeration(t *testing.T) {
	r, db := newTestAdmin(t, "admin_mod")
	owner, _ := seedAccount(t, db, domain.RoleUser)
	_, adminToken := seedAccount(t, db, domain.RoleAdmin)
	item := seedPendingItem(t, db, owner.ID)

	code, env := doJSON(t, r, http.MethodGet, "/admin/v1/items/pending", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, env.Data["items"], 1)

	code, env = doJSON(t, r, http.MethodPut, "/admin/v1/items/"+item.ID+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Item approved successfully", env.Message)
	assert.Equal(t, true, env.Data["item"].(map[string]any)["isApproved"])

	// 重复 approve
	code, env = doJSON(t, r, http.MethodPut, "/admin/v1/items/"+item.ID+"/approve", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Item is already approved", env.Message)

	// 审核打回需要理由
	code, env = doJSON(t, r, http.MethodPut, "/admin/v1/items/"+item.ID+"/reject", adminToken, gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = doJSON(t, r, http.MethodPut, "/admin/v1/items/"+item.ID+"/reject", adminToken, gin.H{
		"rejectionReason": "photos too dark",
	})
	require.Equal(t, http.StatusOK, code)
	got := env.Data["item"].(map[string]any)
	assert.Equal(t, false, got["isApproved"])
	assert.Equal(t, domain.ItemRejected, got["status"])
	assert.Equal(t, "photos too dark", got["rejectionReason"])

	code, env = doJSON(t, r, http.MethodDelete, "/admin/v1/items/"+item.ID, adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Item deleted successfully", env.Message)

	code, _ = doJSON(t, r, http.MethodPut, "/admin/v1/items/nope/approve", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAdminUsers(t *testing.T) {
	r, db := newTestAdmin(t, "admin_users")
	target, _ := seedAccount(t, db, domain.RoleUser)
	admin, adminToken := seedAccount(t, db, domain.RoleAdmin)

	code, env := doJSON(t, r, http.MethodGet, "/admin/v1/users", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, env.Data["users"], 2)

	code, env = doJSON(t, r, http.MethodGet, "/admin/v1/users?q="+target.Email, adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, env.Data["users"], 1)

	code, env = doJSON(t, r, http.MethodPut, "/admin/v1/users/"+target.ID+"/role", adminToken, gin.H{
		"role": "admin",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "User role updated successfully", env.Message)
	assert.Equal(t, "admin", env.Data["user"].(map[string]any)["role"])

	code, env = doJSON(t, r, http.MethodPut, "/admin/v1/users/"+target.ID+"/role", adminToken, gin.H{
		"role": "user",
	})
	require.Equal(t, http.StatusOK, code)

	// 管理员账号不能被 ban
	code, env = doJSON(t, r, http.MethodPost, "/admin/v1/users/"+admin.ID+"/ban", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Cannot ban an admin account", env.Message)

	code, env = doJSON(t, r, http.MethodPost, "/admin/v1/users/"+target.ID+"/ban", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "User banned successfully", env.Message)

	// 软删之后默认列表查不到，with_deleted 能看到
	code, env = doJSON(t, r, http.MethodGet, "/admin/v1/users", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, env.Data["users"], 1)

	code, env = doJSON(t, r, http.MethodGet, "/admin/v1/users?with_deleted=true", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, env.Data["users"], 2)
}

func TestAdminStats(t *testing.T) {
	r, db := newTestAdmin(t, "admin_stats")
	owner, _ := seedAccount(t, db, domain.RoleUser)
	_, adminToken := seedAccount(t, db, domain.RoleAdmin)
	seedPendingItem(t, db, owner.ID)

	code, env := doJSON(t, r, http.MethodGet, "/admin/v1/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	stats := env.Data["stats"].(map[string]any)
	assert.EqualValues(t, 2, stats["totalUsers"])
	assert.EqualValues(t, 1, stats["totalItems"])
	assert.EqualValues(t, 1, stats["pendingReviews"])
	cats := stats["categories"].(map[string]any)
	assert.EqualValues(t, 1, cats["outerwear"])
	assert.NotEmpty(t, stats["topUsers"])
}
