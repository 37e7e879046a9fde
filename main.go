package main

import (
	"botportal/config"
	"botportal/database"
	"botportal/notifier"
	"botportal/routers"
	"botportal/scheduler"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
)

func main() {
	config.LoadConfig()

	if config.AppConfig.Production {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	database.ConnectDb()

	if err := notifier.Init(config.AppConfig); err != nil {
		logrus.Errorf("Telegram notifier unavailable, continuing without it: %v", err)
	}

	jobs, err := scheduler.Start(database.Database.Db)
	if err != nil {
		logrus.Fatalf("Failed to start schedulers: %v", err)
	}

	app := routers.New()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		logrus.Info("Shutting down...")
		<-jobs.Stop().Done()
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("Error during shutdown: %v", err)
		}
	}()

	logrus.Infof("Server is running on port %s", config.AppConfig.Port)
	if err := app.Listen(":" + config.AppConfig.Port); err != nil {
		logrus.Fatal(err)
	}
}
