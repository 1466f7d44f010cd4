package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thorrangonak/ucustazminati-sub002/api"
	"github.com/thorrangonak/ucustazminati-sub002/config"
	"github.com/thorrangonak/ucustazminati-sub002/internal/service/claims"
	"github.com/thorrangonak/ucustazminati-sub002/internal/service/eligibility"
)

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails.
func Run(ctx context.Context, cfg *config.Config, eligibilitySvc eligibility.EligibilityUseCase, claimSvc claims.ClaimUseCase) error {
	router := gin.New()
	router.Use(gin.Recovery())

	api.NewEligibilityHandler(eligibilitySvc).Register(router.Group("/eligibility"))
	api.NewClaimHandler(claimSvc, eligibilitySvc).Register(router.Group("/claims"))
	api.NewAirportHandler(eligibilitySvc).Register(router.Group("/airports"))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}
