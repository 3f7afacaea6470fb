package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/senomas/bookloader/config"
	"github.com/senomas/bookloader/data"
	"github.com/senomas/bookloader/graph"
)

const appName = "bookloader"

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
		TimestampFormat: time.RFC3339,
	})

	conf, err := config.Load(appName)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize config")
		return
	}
	if level, err := logrus.ParseLevel(conf.LogLevel); err != nil {
		logrus.WithError(err).Warn("invalid log level")
	} else {
		logrus.SetLevel(level)
	}

	if _, err := maxprocs.Set(maxprocs.Logger(logrus.Printf)); err != nil {
		logrus.WithError(err).Error("failed to set maxprocs")
		return
	}

	store, err := openStore(conf)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize store")
		return
	}
	defer store.Close()

	if conf.Seed {
		if err := store.Seed(context.Background(), data.DefaultCatalog()); err != nil {
			logrus.WithError(err).Fatal("failed to seed catalog")
			return
		}
	}

	exec, err := graph.NewExecutor(store, graph.Options{
		MaxBatch: conf.Loader.MaxBatch,
		Prefetch: conf.Loader.Prefetch,
	})
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize executor")
		return
	}

	httpServer := http.Server{
		Addr:    conf.HttpServer.Address(),
		Handler: NewRouter(conf.CorsAllowedOrigins, exec),
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		logrus.WithField("address", conf.HttpServer.Address()).Info("starting http server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("failed to listen and serve http server")
		}
	}()

	<-shutdownChan
	logrus.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.WithError(err).Error("failed to shutdown http server")
	}
}

func openStore(conf *config.Config) (data.Store, error) {
	if conf.Store == "postgres" {
		logrus.Info("connecting to postgres..")
		db, err := data.OpenPostgres(conf.Database.DSN, conf.Database.LogQueries)
		if err != nil {
			return nil, err
		}
		if conf.Database.Migrate {
			if err := data.Migrate(db); err != nil {
				return nil, err
			}
		}
		return data.NewGormStore(db), nil
	}
	logrus.WithField("path", conf.BoltDB.Path).Info("opening bolt database..")
	return data.OpenBolt(conf.BoltDB.Path, conf.BoltDB.Timeout)
}
