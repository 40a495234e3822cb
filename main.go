package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moyoez/filemigrate/api"
	"github.com/moyoez/filemigrate/api/models"
	"github.com/moyoez/filemigrate/api/notifyhub"
	"github.com/moyoez/filemigrate/notify"
	"github.com/moyoez/filemigrate/share"
	"github.com/moyoez/filemigrate/status"
	"github.com/moyoez/filemigrate/tool"
	"github.com/moyoez/filemigrate/transfer"
)

func main() {
	cfg := tool.SetFlags()

	// initialize logger
	tool.InitLogger()
	tool.SetLogMode(cfg.Log)

	appCfg, err := tool.LoadConfig(cfg.UseConfigPath)
	if err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}
	if err := tool.ApplyFlags(&appCfg, cfg); err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}
	tool.InitHTTPClient(time.Duration(appCfg.HTTPTimeout) * time.Second)

	hub := notifyhub.New()
	models.SetNotifyHub(hub)
	dispatcher := notify.NewDispatcher(hub, appCfg.UseNotify, appCfg.NotifySocket)

	models.SetCoordinator(transfer.NewCoordinator(tool.GetHttpClient(), dispatcher))
	models.SetBatchRegistry(share.NewBatchRegistry(time.Duration(appCfg.BatchTTL) * time.Minute))
	models.SetDefaultDestination(appCfg.Destination)
	tool.DefaultLogger.Infof("Uploads go to %s via %s", appCfg.Destination.URL, appCfg.Destination.Kind)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if appCfg.StatusURL != "" {
		models.SetStatusURL(appCfg.StatusURL)
		poller := &status.Poller{
			URL:        appCfg.StatusURL,
			Interval:   time.Duration(appCfg.PollInterval) * time.Second,
			Client:     tool.GetHttpClient(),
			Aggregator: status.NewAggregator(),
			StopOnDone: appCfg.StopOnDone,
		}
		go func() {
			err := poller.Run(ctx, func(res status.PollResult) {
				models.RecordPoll(res)
				dispatcher.OnPoll(res)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				tool.DefaultLogger.Errorf("Status polling stopped: %v", err)
			}
		}()
	}

	apiServer := api.NewServer(appCfg.Port)
	go func() {
		if err := apiServer.Start(); err != nil {
			tool.DefaultLogger.Fatalf("API server startup failed: %v", err)
		}
	}()

	<-ctx.Done()
	tool.DefaultLogger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		tool.DefaultLogger.Errorf("API server shutdown failed: %v", err)
	}
	dispatcher.Close()
}
