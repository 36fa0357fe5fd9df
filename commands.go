package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"nexletter/config"
	"nexletter/generator"
	"nexletter/logging"
	"nexletter/notify"
	"nexletter/publisher"
	"nexletter/server"
)

func loadConfig(cmd *cli.Command) (config.Config, zerolog.Logger, error) {
	cfg, warnings, err := config.Load(cmd.String("config"))
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	logger := logging.New(cfg.AppEnv, cfg.LogLevel)
	for _, w := range warnings {
		logger.Warn().Msg(w)
	}
	return cfg, logger, nil
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	agent, err := buildAgent(ctx, cfg, logger)
	if err != nil {
		return err
	}
	saver, closeSaver, err := buildSaver(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSaver()
	sinks, err := buildSinks(cfg, logger)
	if err != nil {
		return err
	}

	api, err := server.New(server.Options{
		Generator:          agent,
		Saver:              saver,
		Sinks:              sinks,
		NotifyWindow:       cfg.Notify.Window,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	})
	if err != nil {
		return err
	}
	defer api.Close()

	listen := cfg.ServerAddr
	if addr := cmd.String("addr"); addr != "" {
		listen = addr
	}
	srv := &http.Server{
		Addr:              listen,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// generation is asynchronous, so handlers return quickly
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", listen).Str("provider", cfg.LLM.Provider).Msg("API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
	return nil
}

func generateAction(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	agent, err := buildAgent(ctx, cfg, logger)
	if err != nil {
		return err
	}

	deps := generator.SessionDeps{
		Notifier: consoleNotifier{w: os.Stderr},
		Logger:   logger,
	}
	if cmd.Bool("copy") {
		deps.Clipboard = publisher.SystemClipboard{}
	}
	if cmd.Bool("save") {
		saver, closeSaver, err := buildSaver(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeSaver()
		deps.Saver = saver
	}

	sess, err := generator.NewSession("cli", agent, deps)
	if err != nil {
		return err
	}

	description, err := readArg(cmd.String("description"))
	if err != nil {
		return err
	}
	req, err := sess.Submit(ctx, generator.RawFields{
		Position:    cmd.String("position"),
		Company:     cmd.String("company"),
		URL:         cmd.String("url"),
		Description: description,
		ContentType: cmd.String("type"),
	})
	if err != nil {
		return err
	}
	if err := req.Wait(ctx); err != nil {
		return err
	}

	st := sess.State()
	if st.Phase == generator.PhaseFailed {
		return st.Failure
	}
	if err := printDrafts(os.Stdout, sess.Drafts(), cmd.Bool("all")); err != nil {
		return err
	}
	if cmd.Bool("copy") {
		if err := sess.Copy(sess.Drafts().Selected()); err != nil {
			return err
		}
	}
	if cmd.Bool("save") {
		if err := sess.Save(ctx); err != nil {
			return err
		}
	}
	return nil
}

func printDrafts(w io.Writer, c *generator.Collection, all bool) error {
	types := []generator.DocumentType{c.Selected()}
	if all {
		types = generator.DocumentTypes
	}
	for i, t := range types {
		text, ok := c.Get(t)
		if !ok {
			return generator.ErrNoDrafts
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		if all {
			fmt.Fprintf(w, "=== %s ===\n", t.Label())
		}
		fmt.Fprintln(w, text)
	}
	return nil
}

// readArg returns s, or the contents of the file when s is "@path".
func readArg(s string) (string, error) {
	path, ok := strings.CutPrefix(s, "@")
	if !ok {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// consoleNotifier prints notifications synchronously; the CLI exits before an
// asynchronous sink would run.
type consoleNotifier struct {
	w io.Writer
}

func (n consoleNotifier) Success(msg string) { fmt.Fprintln(n.w, msg) }
func (n consoleNotifier) Error(msg string)   { fmt.Fprintln(n.w, "error: "+msg) }

var _ generator.Notifier = consoleNotifier{}
var _ generator.Notifier = (*notify.Notifier)(nil)
