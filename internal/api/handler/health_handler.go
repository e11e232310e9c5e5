package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthHandler serves the liveness probe.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Liveness handles GET /health: is the process alive?
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// HealthDependenciesHandler serves the readiness probe. Either dependency may
// be nil (localstore mode, Redis disabled) and is then reported as skipped.
type HealthDependenciesHandler struct {
	db  *mongo.Database
	rdb *redis.Client
}

func NewHealthDependenciesHandler(db *mongo.Database, rdb *redis.Client) *HealthDependenciesHandler {
	return &HealthDependenciesHandler{db: db, rdb: rdb}
}

// Readiness handles GET /health/ready: are dependencies reachable?
func (h *HealthDependenciesHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	status := map[string]string{}
	healthy := true

	if h.db != nil {
		if err := h.db.Client().Ping(ctx, nil); err != nil {
			status["mongo"] = "down"
			healthy = false
		} else {
			status["mongo"] = "up"
		}
	} else {
		status["mongo"] = "skipped"
	}

	if h.rdb != nil {
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			status["redis"] = "down"
			healthy = false
		} else {
			status["redis"] = "up"
		}
	} else {
		status["redis"] = "skipped"
	}

	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, status)
}
