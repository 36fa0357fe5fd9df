package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"nexletter/config"
	"nexletter/generator"
	"nexletter/notify"
	"nexletter/publisher"
)

func buildLLM(ctx context.Context, cfg config.LLMConfig) (generator.LLMClient, error) {
	settings := &generator.LLMSettings{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
		Timeout:  cfg.Timeout,
	}
	switch cfg.Provider {
	case "openai", "deepseek":
		return generator.NewOpenAILLMFromConfig(settings)
	case "gemini":
		return generator.NewGeminiLLMFromConfig(ctx, settings)
	case "mock":
		return generator.MockLLM{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.Provider)
	}
}

func buildAgent(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*generator.Agent, error) {
	llm, err := buildLLM(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}
	return generator.NewAgent(llm,
		generator.WithTimeout(cfg.LLM.Timeout),
		generator.WithLogger(logger.With().Str("provider", cfg.LLM.Provider).Logger()),
	)
}

func buildSaver(ctx context.Context, cfg config.Config, logger zerolog.Logger) (generator.DraftSaver, func(), error) {
	switch cfg.Storage.Driver {
	case "postgres":
		s, err := publisher.NewPGSaver(ctx, cfg.Storage.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		s, err := publisher.NewFileSaver(cfg.Storage.Dir, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	}
}

func buildSinks(cfg config.Config, logger zerolog.Logger) ([]notify.Sink, error) {
	sinks := []notify.Sink{notify.LogSink{Logger: logger}}
	if cfg.Notify.TelegramToken == "" {
		return sinks, nil
	}
	tg, err := notify.NewTelegramSink(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID)
	if err != nil {
		return nil, err
	}
	return append(sinks, tg), nil
}
