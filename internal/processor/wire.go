package processor

import (
	"denuncias-go/internal/actionable"
	"denuncias-go/internal/config"
	"denuncias-go/internal/extractor"
	"denuncias-go/internal/forwarder"
	"denuncias-go/internal/gemini"
	"denuncias-go/internal/logger"
)

// Wire builds a Session and its credential resolver from settings.
func Wire(s *config.Settings, log *logger.Logger) (*Session, *config.Resolver) {
	resolver := config.NewResolver(config.NewStore(s.SettingsFile), log)
	client := gemini.NewClient(gemini.Options{
		BaseURL: s.GeminiBaseURL,
		Model:   s.GeminiModel,
		Timeout: s.HTTPTimeout,
	}, func() string { return resolver.Resolve().APIKey }, log)

	session := NewSession(Deps{
		Extractor:   extractor.New(client, log),
		Generator:   client,
		Planner:     actionable.NewPlanner(client, log),
		Forwarder:   forwarder.New(s.HTTPTimeout, log),
		Credentials: resolver,
		Enricher:    NewEnricher(),
	}, log)
	return session, resolver
}
