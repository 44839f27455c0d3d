package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
)

// Handler exposes HTTP handlers for liveness and readiness.
type Handler struct {
	Pool         *pgxpool.Pool
	Redis        *redis.Client
	DBTimeout    time.Duration
	RedisTimeout time.Duration
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness based on dependency probes.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dbStatus := "ok"
	if err := h.pingDB(ctx); err != nil {
		dbStatus = err.Error()
	}
	redisStatus := "ok"
	if err := h.pingRedis(ctx); err != nil {
		redisStatus = err.Error()
	}
	status := map[string]string{
		"db":    dbStatus,
		"redis": redisStatus,
	}
	w.Header().Set("Content-Type", "application/json")
	if dbStatus != "ok" || redisStatus != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(status)
}

func (h Handler) pingDB(ctx context.Context) error {
	if h.Pool == nil {
		return errNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, h.dbTimeout())
	defer cancel()
	return h.Pool.Ping(ctx)
}

func (h Handler) pingRedis(ctx context.Context) error {
	if h.Redis == nil {
		return errNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, h.redisTimeout())
	defer cancel()
	return h.Redis.Ping(ctx).Err()
}

func (h Handler) dbTimeout() time.Duration {
	if h.DBTimeout <= 0 {
		return 500 * time.Millisecond
	}
	return h.DBTimeout
}

func (h Handler) redisTimeout() time.Duration {
	if h.RedisTimeout <= 0 {
		return 300 * time.Millisecond
	}
	return h.RedisTimeout
}
