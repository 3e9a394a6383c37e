package db

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Counter reports per-collection document counts. Satisfied by the records
// repository; kept as an interface so the health endpoint stays testable
// without a live database.
type Counter interface {
	CollectionCounts(ctx context.Context) (map[string]int64, error)
}

// HealthHandler returns a handler for the database health check endpoint:
// a ping plus raw per-collection counts.
func HealthHandler(client *mongo.Client, counter Counter) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			})
		}

		body := map[string]interface{}{"status": "healthy"}
		if counter != nil {
			if counts, err := counter.CollectionCounts(ctx); err == nil {
				body["collections"] = counts
			}
		}
		return c.JSON(http.StatusOK, body)
	}
}
