package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AlvaritoMP/OpsFlow-sub000/config"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/api/handler"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/api/middleware"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/model"
	"github.com/AlvaritoMP/OpsFlow-sub000/pkg/jwt"
	"github.com/AlvaritoMP/OpsFlow-sub000/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 单位模块
			units := authorized.Group("/units")
			{
				units.GET("", h.Unit.List)
				units.GET("/:id", h.Unit.Get)
				units.POST("", middleware.RoleAuth(model.RoleAdmin, model.RoleOperaciones), h.Unit.Create)
				units.PUT("/:id", middleware.RoleAuth(model.RoleAdmin, model.RoleOperaciones), h.Unit.Update)
				units.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.Unit.Delete)
				units.GET("/:id/resources", h.Resource.ListByUnit)
				units.GET("/:id/night-workers", h.Resource.ListNightWorkers)
			}

			// 人员模块
			resources := authorized.Group("/resources")
			{
				resources.GET("/:id", h.Resource.Get)
				resources.POST("", middleware.RoleAuth(model.RoleAdmin, model.RoleOperaciones), h.Resource.Create)
				resources.PUT("/:id", middleware.RoleAuth(model.RoleAdmin, model.RoleOperaciones), h.Resource.Update)
				resources.POST("/:id/contract", middleware.RoleAuth(model.RoleAdmin, model.RoleOperaciones), h.Resource.GenerateContract)
				resources.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.Resource.Delete)
			}

			// 班次模块
			shifts := authorized.Group("/shifts")
			{
				shifts.GET("", h.Shift.List)
				shifts.GET("/:id", h.Shift.Get)
				shifts.POST("", h.Shift.Create)
				shifts.POST("/:id/cancel", h.Shift.Cancel)
				shifts.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin, model.RoleOperaciones), h.Shift.Delete)
				shifts.GET("/:id/calendar.ics", h.Shift.Calendar)

				// 检查点
				shifts.POST("/:id/calls", h.Checkpoint.CreateCall)
				shifts.PUT("/:id/camera-reviews/:number", h.Checkpoint.UpsertCameraReview)

				// 告警
				shifts.GET("/:id/alerts", h.Alert.ListByShift)
			}
			authorized.PUT("/calls/:id", h.Checkpoint.UpdateCall)
			authorized.DELETE("/calls/:id", h.Checkpoint.DeleteCall)

			// 告警模块
			alerts := authorized.Group("/alerts")
			{
				alerts.POST("/:id/resolve", h.Alert.Resolve)
				alerts.GET("/contracts", middleware.RoleAuth(model.RoleAdmin, model.RoleOperaciones), h.Alert.ContractAlerts)
			}

			// 历史报表模块
			reports := authorized.Group("/reports")
			{
				reports.GET("/workers/:id", h.Report.ByWorker)
				reports.GET("/units/:id", h.Report.ByUnit)
			}
		}
	}

	return r
}
