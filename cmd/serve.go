package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/testdrill/internal/api"
	"github.com/abhisek/testdrill/internal/assessment"
	"github.com/abhisek/testdrill/internal/catalog"
	"github.com/abhisek/testdrill/internal/logging"
	"github.com/abhisek/testdrill/internal/store"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the test API over HTTP",
	Long: "Serve the test API over HTTP. Requests carry an HS256 bearer token whose subject " +
		"is the student id; TESTDRILL_JWT_SECRET verifies it.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateServer(); err != nil {
			return err
		}
		ctx := cmd.Context()

		backend, err := serveBackend(cmd)
		if err != nil {
			return err
		}
		defer backend.Close()

		seeds, _ := cmd.Flags().GetStringSlice("seed")
		if err := seed(ctx, backend.Catalog(), seeds); err != nil {
			return err
		}

		engine := assessment.NewEngine(backend.Repos())
		srv := &http.Server{
			Addr: cfg.Server.Addr,
			Handler: api.New(engine, api.Options{
				Secret:  []byte(cfg.Server.JWTSecret),
				Timeout: cfg.Server.RequestTimeout,
			}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		return listen(srv)
	},
}

func init() {
	serveCmd.Flags().Bool("memory", false, "Keep all data in memory instead of SQLite")
	serveCmd.Flags().StringSlice("seed", nil, "Test definition files to import and publish on startup")
}

func serveBackend(cmd *cobra.Command) (store.Backend, error) {
	if mem, _ := cmd.Flags().GetBool("memory"); mem {
		logging.Logger().Warn("using in-memory store; data is lost on exit")
		return store.NewMemory(), nil
	}
	return openStore(cmd)
}

func seed(ctx context.Context, repo store.CatalogRepo, files []string) error {
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open seed: %w", err)
		}
		t, err := catalog.Import(ctx, repo, f, true)
		f.Close()
		if err != nil {
			return fmt.Errorf("seed %s: %w", path, err)
		}
		logging.Logger().WithFields(logrus.Fields{
			"test_id": t.ID,
			"title":   t.Title,
		}).Info("seeded test")
	}
	return nil
}

// listen serves until SIGINT or SIGTERM, then drains requests.
func listen(srv *http.Server) error {
	log := logging.Logger()
	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("listening")
		errc <- srv.ListenAndServe()
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigc)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-sigc:
		log.Infof("%v: start shutdown", sig)

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.WithError(err).Error("could not stop server gracefully")
			return srv.Close()
		}
	}
	return nil
}
