package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/lead-qualifier/internal/auth"
	"github.com/octobees/lead-qualifier/internal/config"
	"github.com/octobees/lead-qualifier/internal/handler"
	middlewarepkg "github.com/octobees/lead-qualifier/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth        *handler.AuthHandler
	Users       *handler.UserAdminHandler
	Leads       *handler.LeadsHandler
	AdminUpload *handler.AdminUploadHandler
	Playlists   *handler.PlaylistsHandler
	JobChange   *handler.JobChangeHandler
	CRMSync     *handler.CRMSyncHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	e.POST("/auth/register", handlers.Auth.Register)
	e.POST("/auth/login", handlers.Auth.Login)

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	secured.GET("/leads", handlers.Leads.List)
	secured.GET("/leads/export", handlers.Leads.Export)
	secured.GET("/leads/:id", handlers.Leads.Get)
	secured.POST("/leads/qualify", handlers.Leads.Qualify)

	secured.GET("/playlists", handlers.Playlists.List)
	secured.POST("/playlists", handlers.Playlists.Create)
	secured.GET("/playlists/recommendations", handlers.Playlists.Recommendations)
	secured.POST("/playlists/:id/refresh", handlers.Playlists.Refresh)
	secured.GET("/playlists/:id/leads", handlers.Playlists.Leads)
	secured.GET("/playlists/:id/stats", handlers.Playlists.Stats)
	secured.DELETE("/playlists/:id", handlers.Playlists.Archive)

	secured.GET("/recommendations/daily", handlers.Playlists.Daily)
	secured.POST("/recommendations/engagement", handlers.Playlists.TrackEngagement)
	secured.PUT("/recommendations/preferences", handlers.Playlists.SetPreferences)

	secured.POST("/jobchange/contacts", handlers.JobChange.TrackContact)
	secured.GET("/jobchange/contacts", handlers.JobChange.ListContacts)
	secured.POST("/jobchange/poll", handlers.JobChange.Poll)
	secured.GET("/jobchange/alerts", handlers.JobChange.Alerts)
	secured.PATCH("/jobchange/alerts/:id", handlers.JobChange.UpdateAlert)

	if handlers.CRMSync != nil {
		secured.POST("/crm/sync", handlers.CRMSync.Sync, middlewarepkg.SyncRateLimiter(cfg.RateLimitSync))
	}

	admin := secured.Group("/admin", middlewarepkg.RequireRole("admin"))
	admin.GET("/leads", handlers.Leads.ListAdmin)
	admin.POST("/upload-csv", handlers.AdminUpload.UploadCSV)
	admin.GET("/users", handlers.Users.List)
	admin.POST("/users", handlers.Users.Create)
	admin.PATCH("/users/:id", handlers.Users.Update)
	admin.DELETE("/users/:id", handlers.Users.Delete)
}
