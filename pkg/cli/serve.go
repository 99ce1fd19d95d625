package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/launch-dso/hookrelay/pkg/cli/config"
	controller "github.com/launch-dso/hookrelay/pkg/controller/http"
	"github.com/launch-dso/hookrelay/pkg/domain/interfaces"
	"github.com/launch-dso/hookrelay/pkg/domain/types"
	awsinfra "github.com/launch-dso/hookrelay/pkg/infra/aws"
	"github.com/launch-dso/hookrelay/pkg/usecase"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg config.Server
		awsCfg    config.AWS
		rulesCfg  config.Rules
	)

	flags := append(serverCfg.Flags(), awsCfg.Flags()...)
	flags = append(flags, rulesCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			// Fail fast: any rule defect (bad pattern, transform
			// contract, unresolvable reference) aborts startup.
			rules, err := rulesCfg.Load()
			if err != nil {
				return goerr.Wrap(err, "failed to load rules")
			}

			awsConf, err := awsCfg.Load(ctx)
			if err != nil {
				return err
			}

			broker := awsinfra.NewCredentialBroker(awsConf, awsCfg.SessionDuration)
			secrets := awsinfra.NewSecretSource(awsConf)
			dispatcher := usecase.NewDispatcher(broker, map[types.DestinationType]interfaces.ActionProvider{
				types.DestNone:         usecase.NoopProvider{},
				types.DestCodeBuild:    awsinfra.NewCodeBuildProvider(awsConf),
				types.DestCodePipeline: awsinfra.NewCodePipelineProvider(awsConf),
				types.DestLambda:       awsinfra.NewLambdaProvider(awsConf),
			})

			processor := usecase.NewProcessor(rules, secrets, dispatcher,
				usecase.WithConcurrency(serverCfg.DispatchLimit))

			logger.Info("Starting hookrelay server",
				slog.String("addr", serverCfg.Addr),
				slog.Int("rules", len(rules)),
			)

			server, err := controller.NewServer(
				ctx,
				processor,
				controller.WithAddr(serverCfg.Addr),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
