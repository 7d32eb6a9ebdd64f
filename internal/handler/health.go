package handler // handler package also exposes the liveness endpoint

import (
	"context"  // context bounds the database ping
	"net/http" // http provides status code constants
	"time"     // time supplies the ping timeout

	"github.com/labstack/echo/v4" // echo is the web framework used for handlers
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health returns a liveness handler for load balancers.  It answers "ok"
// while db responds to a ping and 503 otherwise.  A nil db only reports
// that the process is up.
func Health(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error { // begin health handler
		if db != nil { // only ping when a database is wired
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second) // ping must answer within two seconds
			defer cancel()
			if err := db.PingContext(ctx); err != nil { // database unreachable
				return c.String(http.StatusServiceUnavailable, "database unavailable") // respond with 503
			}
		}
		return c.String(http.StatusOK, "ok") // process and database are up
	}
}
