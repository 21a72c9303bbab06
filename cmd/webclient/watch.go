package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/slotlist/slotlist/frontend/go-client/internal/session"
	"github.com/slotlist/slotlist/frontend/go-client/pkg/logger"
	"github.com/slotlist/slotlist/frontend/go-client/pkg/metrics"
	"github.com/spf13/cobra"
)

var watchLog = logger.Named("watch")

// keepAlive refreshes s when its token expires within refreshBefore. It
// reports false once the session is gone.
func keepAlive(ctx context.Context, s *session.Store, now time.Time, refreshBefore time.Duration) bool {
	if s.CheckExpiry(ctx) || !s.LoggedIn() {
		return false
	}
	exp := s.DecodedToken().Expiry()
	if exp.IsZero() || exp.Sub(now) > refreshBefore {
		return true
	}
	watchLog.Infof("token expires at %s, refreshing", exp.Format(time.RFC3339))
	return s.RefreshToken(ctx) == nil
}

func newWatchCmd(a *app) *cobra.Command {
	var (
		interval      time.Duration
		refreshBefore time.Duration
		metricsAddr   string
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the session alive, refreshing the token before it expires",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				return fmt.Errorf("--interval must be positive, got %s", interval)
			}
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx := cmd.Context()

			if metricsAddr != "" {
				reg := prometheus.NewRegistry()
				reg.MustRegister(collectors.NewGoCollector())
				metrics.RegisterClientCollectors(reg)
				srv := &http.Server{Addr: metricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), ReadHeaderTimeout: 5 * time.Second}
				go func() {
					watchLog.Infof("serving metrics on %s/metrics", metricsAddr)
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						watchLog.Errorf("metrics server: %v", err)
					}
				}()
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
			}

			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				if !keepAlive(ctx, a.session, time.Now(), refreshBefore) {
					return errors.New("session ended, log in again")
				}
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", time.Minute, "how often to check the token")
	cmd.Flags().DurationVar(&refreshBefore, "refresh-before", 5*time.Minute, "refresh when the token expires within this window")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	return cmd
}
