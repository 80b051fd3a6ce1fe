package sim

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/satlink/internal/observability"
)

// adminRouter exposes the read-only run surface: liveness, a metrics
// snapshot, and the prometheus scrape endpoint.
func (s *Service) adminRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"http://localhost", "http://127.0.0.1"},
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"uptime": s.Summary().Uptime.String(),
		})
	})

	r.GET("/status", func(c *gin.Context) {
		sum := s.Summary()
		c.JSON(http.StatusOK, gin.H{
			"uptime": sum.Uptime.String(),
			"satellite": gin.H{
				"sent":              sum.Satellite.Sent,
				"received":          sum.Satellite.Received,
				"retries":           sum.Satellite.Retries,
				"naks_sent":         sum.Satellite.NaksSent,
				"delivery_failures": sum.Satellite.DeliveryFailures,
				"safe_mode":         sum.SatelliteState.SafeMode,
				"battery_pct":       sum.SatelliteState.BatteryPct,
				"altitude_km":       sum.SatelliteState.AltitudeKm,
				"commands_executed": sum.CommandsExecuted,
			},
			"ground": gin.H{
				"sent":              sum.Ground.Sent,
				"received":          sum.Ground.Received,
				"retries":           sum.Ground.Retries,
				"naks_sent":         sum.Ground.NaksSent,
				"delivery_failures": sum.Ground.DeliveryFailures,
				"readings_logged":   sum.ReadingsLogged,
			},
			"link": gin.H{
				"sent":    sum.LinkSent,
				"dropped": sum.LinkDropped,
			},
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// serveAdmin blocks until ctx is cancelled, then shuts the listener down.
func (s *Service) serveAdmin(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.adminRouter(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info().Str("addr", addr).Msg("admin surface listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
