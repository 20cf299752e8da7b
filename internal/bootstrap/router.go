package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/webstudio-labs/studio-backend/internal/api/http"
	studiohttp "github.com/webstudio-labs/studio-backend/internal/studio/http"
	"github.com/webstudio-labs/studio-backend/internal/studio/service"
)

type RouterDeps struct {
	ServiceName  string
	Version      string
	AllowOrigins []string
	Redis        *redis.Client
	DB           *pgxpool.Pool
	Sessions     *service.SessionManager
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	if len(dep.AllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     dep.AllowOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Redis, dep.DB)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")

	studioHandler := studiohttp.NewHandler(dep.Sessions)
	studioHandler.Register(api.Group("/studio"))

	return r
}
