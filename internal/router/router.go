package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/localdeals/residence/internal/config"
	"github.com/localdeals/residence/internal/handler"
	"github.com/localdeals/residence/internal/middleware"
	"github.com/localdeals/residence/internal/model"
	"github.com/localdeals/residence/internal/repository"
)

// New builds the Echo instance with every route registered. All wiring is
// explicit: repositories are constructed here from the shared *sql.DB and
// injected into the handlers, so tests can assemble the same graph against
// their own store.
func New(cfg config.Config, db *sql.DB, rdb *redis.Client) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	demandes := repository.NewDemandeRepo(db)
	reponses := repository.NewReponseRepo(db)
	messages := repository.NewMessageRepo(db)
	notifications := repository.NewNotificationRepo(db)

	ah := handler.NewAuthHandler(cfg, users, tokens)
	dh := handler.NewDemandeHandler(demandes, notifications)
	rh := handler.NewReponseHandler(demandes, reponses, notifications)
	mh := handler.NewMessageHandler(users, demandes, messages, notifications)
	nh := handler.NewNotificationHandler(notifications)
	adh := handler.NewAdminHandler(users, notifications)

	v1 := e.Group("/v1")
	v1.GET("/healthz", handler.Health)

	// Public surface: account creation and the demande catalog. The listing
	// is the hottest read, so it sits behind the Redis response cache.
	v1.POST("/auth/register", ah.Register)
	v1.POST("/auth/login", ah.Login)
	v1.POST("/auth/refresh", ah.Refresh)
	v1.POST("/auth/token", ah.RefreshAccess)
	v1.GET("/demandes", dh.List, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	v1.GET("/demandes/:id", dh.Get)

	priv := v1.Group("", middleware.JWTAuth(cfg.JWTSecret), middleware.BanGuard(users))

	priv.POST("/auth/logout", ah.Logout)
	priv.GET("/users/me", ah.Me)
	priv.PUT("/users/me", ah.UpdateMe)

	priv.POST("/demandes", dh.Create, middleware.RequireRole(model.RoleAcheteur))
	priv.PUT("/demandes/:id/cloture", dh.Close)
	priv.DELETE("/demandes/:id", dh.Delete)

	priv.POST("/demandes/:id/reponses", rh.Create, middleware.RequireRole(model.RoleVendeur))
	priv.GET("/reponses", rh.List)

	priv.POST("/messages", mh.Create)
	priv.GET("/messages/:conversationId", mh.ListConversation)
	priv.DELETE("/messages/:messageId", mh.DeleteMessage)
	priv.GET("/conversations/:userId", mh.Conversations)
	priv.DELETE("/conversations/:conversationId", mh.DeleteConversation)

	priv.GET("/notifications/:userId", nh.List)
	priv.GET("/notifications/:userId/unread", nh.ListUnread)
	priv.GET("/notifications/:userId/count", nh.CountUnread)
	priv.PUT("/notifications/:id/read", nh.MarkRead)
	priv.PUT("/notifications/:userId/read-all", nh.MarkAllRead)

	admin := priv.Group("/admin", middleware.RequireRole(model.RoleAdmin))
	admin.GET("/users", adh.ListUsers)
	admin.PUT("/users/:userId/ban", adh.BanUser)
	admin.PUT("/users/:userId/unban", adh.UnbanUser)

	return e
}
