package bootstrap

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httpapi "github.com/taskverse/taskverse-backend/internal/api/http"
	"github.com/taskverse/taskverse-backend/internal/api/http/middleware"
	"github.com/taskverse/taskverse-backend/internal/api/http/respond"
	"github.com/taskverse/taskverse-backend/internal/ratelimit"

	notificationshttp "github.com/taskverse/taskverse-backend/internal/notifications/http"
	notificationsrepo "github.com/taskverse/taskverse-backend/internal/notifications/repository"
	projectshttp "github.com/taskverse/taskverse-backend/internal/projects/http"
	projectsrepo "github.com/taskverse/taskverse-backend/internal/projects/repository"
	taskshttp "github.com/taskverse/taskverse-backend/internal/tasks/http"
	tasksrepo "github.com/taskverse/taskverse-backend/internal/tasks/repository"
	usershttp "github.com/taskverse/taskverse-backend/internal/users/http"
	usersrepo "github.com/taskverse/taskverse-backend/internal/users/repository"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	DB          *sql.DB
	Limiter     *ratelimit.Limiter
	Log         *zap.Logger
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	respond.SetAPIVersion(dep.Version)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(dep.Log))
	r.Use(middleware.SecureHeaders())
	r.Use(middleware.Metrics())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "X-Requested-With", "Authorization", middleware.SessionHeader},
		MaxAge:          24 * time.Hour,
		// Preflight has always answered 200 with no body.
		OptionsResponseStatusCode: http.StatusOK,
	}))

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		respond.Error(c, http.StatusMethodNotAllowed, "Invalid request method")
	})
	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "Invalid endpoint or HTTP method")
	})

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB)
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(dep.Limiter, dep.Log))

	projectRepo := projectsrepo.NewRepo(dep.DB, dep.Log)
	projectsGroup := api.Group("/projects")
	projectsHandler := projectshttp.New(projectRepo, dep.Log)
	projectsHandler.Register(projectsGroup)

	taskRepo := tasksrepo.NewRepo(dep.DB, dep.Log)
	tasksHandler := taskshttp.New(taskRepo, projectRepo, dep.Log)
	tasksHandler.Register(projectsGroup)

	userRepo := usersrepo.NewRepo(dep.DB, dep.Log)
	usersHandler := usershttp.New(userRepo, dep.Log)
	usersHandler.Register(api.Group("/users"))

	notificationRepo := notificationsrepo.NewRepo(dep.DB, dep.Log)
	notificationsHandler := notificationshttp.New(notificationRepo, dep.Log)
	notificationsHandler.Register(api.Group("/notifications"))

	return r
}
