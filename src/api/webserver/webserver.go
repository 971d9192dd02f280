package webserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/fan-arena/arena-gov/src/api/config"
	"github.com/fan-arena/arena-gov/src/ledger"
)

func New(cfg config.Config, eng *ledger.Engine, qry *ledger.Query, rdb *redis.Client) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	attachRoutes(g, cfg, eng, qry, rdb)
	return g
}

// statusFor maps the ledger failure taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrProposalClosed), errors.Is(err, ledger.ErrDuplicateVote):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
