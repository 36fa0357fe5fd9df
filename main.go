package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configFlag := &cli.StringFlag{
		Name:  "config",
		Usage: "path to config.yaml (optional)",
		Value: "config.yaml",
	}

	app := &cli.Command{
		Name:  "nexletter",
		Usage: "generate LinkedIn messages, referral emails and cover letters for a job opening",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "start the HTTP API",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:  "addr",
						Usage: "listen address (overrides server_addr)",
					},
				},
				Action: serveAction,
			},
			{
				Name:  "generate",
				Usage: "generate all documents for one job and print them",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{Name: "position", Usage: "job title", Required: true},
					&cli.StringFlag{Name: "company", Usage: "company name", Required: true},
					&cli.StringFlag{Name: "url", Usage: "job posting URL"},
					&cli.StringFlag{Name: "description", Usage: "job description, or @file to read it from a file", Required: true},
					&cli.StringFlag{Name: "type", Usage: "document to show: linkedinMessage, email or coverLetter", Value: "linkedinMessage"},
					&cli.BoolFlag{Name: "all", Usage: "print every document instead of the selected one"},
					&cli.BoolFlag{Name: "copy", Usage: "copy the selected document to the system clipboard"},
					&cli.BoolFlag{Name: "save", Usage: "save the documents with the configured storage"},
				},
				Action: generateAction,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
