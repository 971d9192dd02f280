package webserver

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/fan-arena/arena-gov/src/api/config"
	"github.com/fan-arena/arena-gov/src/ledger"
)

func attachRoutes(r *gin.Engine, cfg config.Config, eng *ledger.Engine, qry *ledger.Query, rdb *redis.Client) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	authH := NewAuth(rdb, []byte(cfg.JWTSecret))
	propH := NewProposals(eng, qry)
	voteH := NewVotes(eng, qry)
	limiter := NewRateLimiter(cfg.RateLimit, time.Minute)

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/challenge", authH.Challenge)
		v1.POST("/auth/verify", authH.Verify)

		// Reads are public; the front end lists proposals before any
		// wallet is connected.
		v1.GET("/proposals", propH.List)
		v1.GET("/proposals/:id", propH.Get)

		secured := v1.Group("")
		secured.Use(JWTMiddleware([]byte(cfg.JWTSecret)))
		secured.GET("/votes/:id/status", voteH.Status)

		mutating := secured.Group("")
		mutating.Use(RateLimitMiddleware(limiter))
		mutating.POST("/proposals", propH.Create)
		mutating.POST("/votes", voteH.Cast)
	}
}
