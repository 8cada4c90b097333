package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rewear-api/internal/core/auth"
	"rewear-api/internal/core/cache"
	"rewear-api/internal/notify"
	"rewear-api/internal/swap"
	"rewear-api/internal/transport/http/handler"
	mdw "rewear-api/internal/transport/http/middleware"
)

type APIDeps struct {
	Log            *zap.Logger
	DB             *gorm.DB
	Cache          *cache.Cache // 可为 nil
	JWTer          *auth.JWTer
	Sink           notify.Sink
	StartingPoints int
}

func NewAPIEngine(d APIDeps) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimitPerIP(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		ginzap.RecoveryWithZap(d.Log, true),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
		cors.Default(),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	authed := api.Group("")
	authed.Use(mdw.AuthJWT(d.JWTer, ""))

	engine := swap.NewEngine(d.DB, d.Log, d.Sink)
	if d.Cache != nil {
		// accept/complete 改了物品状态，详情缓存跟着剔
		engine.OnItemStatusChange(func(ctx context.Context, ids ...string) {
			keys := make([]string, len(ids))
			for i, id := range ids {
				keys[i] = handler.ItemCacheKey(id)
			}
			d.Cache.Invalidate(ctx, keys...)
		})
	}

	reg := &Registry{}
	reg.Register(handler.NewAuthHandler(d.DB, d.JWTer, d.Log, d.Sink, d.StartingPoints))
	reg.Register(handler.NewItemHandler(d.DB, d.Cache, d.Log))
	reg.Register(handler.NewSwapHandler(engine))
	reg.MountAllAPI(api, authed)

	return r
}
