package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fan-arena/arena-gov/src/api/config"
	"github.com/fan-arena/arena-gov/src/api/data"
	"github.com/fan-arena/arena-gov/src/api/webserver"
	"github.com/fan-arena/arena-gov/src/ledger"
)

func main() {
	cfg := config.Load()

	db := data.MustMySQL(cfg.MySQLDSN)
	if err := db.AutoMigrate(ledger.MigrateModels...); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb := data.MustRedis(cfg.RedisURL)

	ctx, cancel := context.WithCancel(context.Background())

	store := ledger.NewGormStore(db)
	index := ledger.NewVoteIndex()
	bus := ledger.NewBus()
	eng, err := ledger.NewEngine(ctx, store, index, nil, bus)
	if err != nil {
		log.Fatalf("ledger: %v", err)
	}
	qry := ledger.NewQuery(store, index)

	go data.ForwardEvents(ctx, rdb, bus.Subscribe(256))

	router := webserver.New(cfg, eng, qry, rdb)
	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()
	log.Printf("Arena governance API listening on %s", cfg.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	cancel()
	bus.Close()

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
}
