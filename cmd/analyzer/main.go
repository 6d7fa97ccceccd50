package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rxtech-lab/argo-analysis/internal/version"
	"github.com/urfave/cli/v3"
)

// globalFlags are shared by every subcommand.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the YAML configuration `FILE`",
			Sources: cli.EnvVars("ANALYZER_CONFIG"),
		},
		&cli.StringFlag{
			Name:    "provider",
			Aliases: []string{"p"},
			Usage:   "Market data provider (yahoo, polygon, binance, parquet)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level (debug, info, warn, error)",
		},
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "analyzer",
		Usage:   "Technical analysis of OHLCV price series",
		Version: version.GetVersion(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Usage:     "Analyze one ticker, or summarize a comma separated list",
				ArgsUsage: "[TICKERS] [PERIOD]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write report files to `DIR`",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Report format (text, json)",
					},
				},
				Action: analyzeAction,
			},
			{
				Name:      "compare",
				Usage:     "Compare normalized performance of two or more tickers",
				ArgsUsage: "TICKERS [PERIOD]",
				Action:    compareAction,
			},
			{
				Name:      "export",
				Usage:     "Export a ticker's indicator table to parquet",
				ArgsUsage: "TICKER [PERIOD]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "out",
						Usage:    "Output parquet `FILE`",
						Required: true,
					},
				},
				Action: exportAction,
			},
			{
				Name:  "serve",
				Usage: "Serve the JSON API and metrics over HTTP",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address, overrides server.addr",
					},
					&cli.BoolFlag{
						Name:  "watch",
						Usage: "Run the watch schedule and stream its results on /api/v1/stream",
					},
					&cli.StringFlag{
						Name:  "schedule",
						Usage: "Cron expression, overrides watch.schedule",
					},
					&cli.StringFlag{
						Name:  "symbols",
						Usage: "Comma separated tickers, overrides watch.symbols",
					},
				},
				Action: serveAction,
			},
			{
				Name:  "watch",
				Usage: "Re-run the configured watch list on a schedule",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "schedule",
						Usage: "Cron expression, overrides watch.schedule",
					},
					&cli.StringFlag{
						Name:  "symbols",
						Usage: "Comma separated tickers, overrides watch.symbols",
					},
					&cli.BoolFlag{
						Name:  "now",
						Usage: "Run once immediately before waiting for the schedule",
					},
				},
				Action: watchAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the configuration JSON schema",
				Action: schemaAction,
			},
			{
				Name:  "version",
				Usage: "Print the version",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Println(version.GetVersion())

					return nil
				},
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}
}
