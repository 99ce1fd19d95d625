package cli

import (
	"context"
	"log/slog"

	"github.com/launch-dso/hookrelay/pkg/cli/config"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// cmdValidate loads a rule document and reports construction-time
// defects without starting the server. The same fail-fast path runs on
// serve; this just exposes it for CI and pre-deploy checks.
func cmdValidate() *cli.Command {
	var rulesCfg config.Rules

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate a rule document without serving",
		Flags:   rulesCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			rules, err := rulesCfg.Load()
			if err != nil {
				return goerr.Wrap(err, "rule document is invalid")
			}

			ctxlog.From(ctx).Info("rule document is valid",
				slog.String("path", rulesCfg.Path),
				slog.Int("rules", len(rules)),
			)
			return nil
		},
	}
}
