package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/teleskin-lab/teleskin/pkg/cli/config"
	httpctrl "github.com/teleskin-lab/teleskin/pkg/controller/http"
	"github.com/teleskin-lab/teleskin/pkg/domain/model"
	"github.com/teleskin-lab/teleskin/pkg/domain/types"
	"github.com/teleskin-lab/teleskin/pkg/service/ai"
	"github.com/teleskin-lab/teleskin/pkg/service/feed"
	"github.com/teleskin-lab/teleskin/pkg/usecase"
	"github.com/teleskin-lab/teleskin/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var imagesCfg config.Images
	var clinicCfg config.Clinic

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("TELESKIN_ADDR"),
			Destination: &addr,
		},
	}

	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, imagesCfg.Flags()...)
	flags = append(flags, clinicCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			clinic, err := clinicCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load clinic config")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			llmClient, err := geminiCfg.ConfigureChat(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure Gemini chat client")
			}
			if llmClient == nil {
				logging.Default().Info("Gemini project not configured, chat uses the offline fallback")
			}

			visionClient, err := geminiCfg.ConfigureVision()
			if err != nil {
				return goerr.Wrap(err, "failed to configure Gemini vision client")
			}
			if visionClient == nil {
				logging.Default().Info("Gemini API key not configured, image operations use their fallbacks")
			}

			images, err := imagesCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize photo store")
			}

			gateway := ai.New(llmClient, visionClient,
				ai.WithConditionCatalog(clinic.ConditionNames()))

			feeds := feed.NewRegistry()
			scheduler := feed.NewScheduler(feeds)
			scheduler.Start(ctx)
			defer scheduler.Stop()

			for _, rem := range clinic.Reminders {
				delay, err := rem.Delay()
				if err != nil {
					return goerr.Wrap(err, "invalid reminder schedule")
				}
				role, err := types.ParseRole(rem.Role)
				if err != nil {
					return goerr.Wrap(err, "invalid reminder role")
				}
				scheduler.ScheduleOnce(ctx, delay, feed.Event{
					Role:      role,
					PatientID: types.PatientID(rem.PatientID),
					Notification: model.NewNotification(
						types.NotificationType(rem.Type), rem.Title, rem.Message),
				})
			}

			uc := usecase.New(repo,
				usecase.WithGateway(gateway),
				usecase.WithImageStore(images),
				usecase.WithFeeds(feeds),
			)

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, feeds, httpctrl.WithImageStore(images)),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
