package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/campus-housing/internal/application"
	"github.com/example/campus-housing/internal/config"
	"github.com/example/campus-housing/internal/docstore/sqlitestore"
	httptransport "github.com/example/campus-housing/internal/http"
	"github.com/example/campus-housing/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info", "json").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlitestore.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open document store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close document store", "error", cerr)
		}
	}()

	idGenerator := func() string { return uuid.NewString() }
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	directory := application.NewDirectory(store)
	warnings := application.NewWarningCache(cfg.WarningTTL, 0, now)

	authService := application.NewAuthService(directory, store, idGenerator, tokenGenerator, now, cfg.SessionTTL, logger)
	profileService := application.NewProfileService(directory, store, now, logger)
	roommateService := application.NewRoommateServiceWithLogger(directory, store, now, logger)
	reservationService := application.NewReservationService(directory, store, now, application.ReservationServiceOptions{
		EnforceTimeSlots: cfg.EnforceTimeSlots,
		Warnings:         warnings,
		Logger:           logger,
	})
	adminService := application.NewAdminService(directory, store, warnings, idGenerator, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:         httptransport.NewAuthHandler(authService, logger),
		Profile:      httptransport.NewProfileHandler(profileService, logger),
		Roommates:    httptransport.NewRoommateHandler(roommateService, logger),
		Reservations: httptransport.NewReservationHandler(reservationService, directory, logger),
		Admin:        httptransport.NewAdminHandler(adminService, logger),
	})

	protected := httptransport.RequireSession(authService, logger)(router)
	handler := httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.EqualFold(r.URL.Path, "/signup") || strings.EqualFold(r.URL.Path, "/login") {
			router.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	}))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("housing API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
