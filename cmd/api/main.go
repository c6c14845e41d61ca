package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"dlvrit-backend/internal/config"
	"dlvrit-backend/internal/db"
	"dlvrit-backend/internal/httpserver"
	"dlvrit-backend/internal/notify"
	"dlvrit-backend/internal/payment"
	orderrepo "dlvrit-backend/internal/repository/order"
	checkoutsvc "dlvrit-backend/internal/service/checkout"
	promosvc "dlvrit-backend/internal/service/promo"
	"dlvrit-backend/internal/transfer"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	payments := payment.NewStripe(cfg.StripeSecretKey, logger)

	var packages transfer.Provisioner
	switch cfg.TransferMode {
	case config.TransferModePortal:
		packages = transfer.NewPortal(cfg.PortalHost)
	default:
		packages = transfer.NewMASV(cfg.MASVAPIBase, cfg.MASVTeamID, cfg.MASVAPIKey, cfg.PortalHost, cfg.OutboundTimeout, logger)
	}

	mailer := notify.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)

	checkoutService := checkoutsvc.New(payments, packages, mailer, orderRepo, checkoutsvc.Options{
		PriceMode:       cfg.PriceMode,
		UnitPriceMinor:  cfg.UnitPriceMinor,
		Currency:        cfg.Currency,
		TransferMode:    cfg.TransferMode,
		PortalPassword:  cfg.PortalPassword,
		MailFrom:        cfg.MailFrom,
		MailBCC:         cfg.MailBCC,
		FrontendBaseURL: cfg.FrontendBaseURL,
		OutboundTimeout: cfg.OutboundTimeout,
	}, logger)
	promoService := promosvc.New(payments, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Checkout:    checkoutService,
		Promo:       promoService,
		PaymentMode: cfg.PaymentMode,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s payment_mode=%s transfer_mode=%s", cfg.HTTPAddr, cfg.PaymentMode, cfg.TransferMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
