package main

import (
	"fmt"
	"net/http"
	"time"

	"denuncias-go/internal/config"
	"denuncias-go/internal/dataset"
	"denuncias-go/internal/logger"
	"denuncias-go/internal/sink"
)

func main() {
	settings, err := config.LoadSettings()
	log := logger.New()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	book := dataset.NewBook(settings.SheetFile, settings.SheetName, settings.SheetLocation(), log)
	log.WithField("service", "denuncias-sheetsink").
		WithField("sheet_file", book.Path()).
		WithField("sheet", settings.SheetName).
		Info("starting service")

	addr := fmt.Sprintf(":%s", settings.SinkPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      sink.NewHandler(book, log).Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}
