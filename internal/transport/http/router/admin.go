package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rewear-api/internal/core/auth"
	"rewear-api/internal/core/cache"
	"rewear-api/internal/notify"
	"rewear-api/internal/transport/http/handler"
	mdw "rewear-api/internal/transport/http/middleware"
)

type AdminDeps struct {
	Log   *zap.Logger
	DB    *gorm.DB
	Cache *cache.Cache // 可为 nil
	JWTer *auth.JWTer
	Sink  notify.Sink
}

// NewAdminEngine 管理端独立进程，内网部署，不挂 CORS
func NewAdminEngine(d AdminDeps) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(50, 100),
		mdw.ConcurrencyLimit(100),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(15*time.Second),
		mdw.SimpleRecovery(),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(d.JWTer, "admin"))

	reg := &Registry{}
	reg.Register(handler.NewAdminHandler(d.DB, d.Cache, d.Log, d.Sink))
	reg.MountAllAdmin(admin)

	return r
}
