package main

import (
	"fmt"
	"net/http"
	"time"

	"denuncias-go/internal/config"
	"denuncias-go/internal/logger"
	"denuncias-go/internal/processor"
	"denuncias-go/internal/server"
)

func main() {
	settings, err := config.LoadSettings() // loads .env
	log := logger.New()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	log.WithField("service", "denuncias-api").Info("starting service")

	session, resolver := processor.Wire(settings, log)

	eff := resolver.Resolve()
	log.WithField("settings_file", settings.SettingsFile).
		WithField("api_key_configured", eff.HasAPIKey()).
		WithField("script_url_configured", eff.HasScriptURL()).
		WithField("using_static_key", resolver.UsingStaticKey()).
		Info("credentials resolved")
	if !eff.HasAPIKey() {
		log.Warn("no Gemini API key yet; POST /config to store one")
	}

	addr := fmt.Sprintf(":%s", settings.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.New(session, resolver, log).Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}
