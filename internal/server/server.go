package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/alanmeadows/coabot/internal/bot"
)

// Serve runs the notification loop and, when port is non-zero, the status
// API. It returns when ctx is cancelled or the loop stops on its own.
func Serve(ctx context.Context, port int, b *bot.Bot, records HistoryLister) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	var srv *http.Server

	if port != 0 {
		api := NewAPI(b, records)
		srv = &http.Server{
			Addr:              fmt.Sprintf("127.0.0.1:%d", port),
			Handler:           api.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			slog.Info("starting status API", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("status API stopped", "error", err)
			}
		}()

		go func() {
			<-ctx.Done()
			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Warn("status API shutdown error", "error", err)
			}
		}()
	}

	err := b.Run(ctx)
	cancel()
	wg.Wait()
	return err
}
