package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/config"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/adminapi"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/app"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/ledger"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/webserver"
	"go.uber.org/zap"
)

var (
	version  = "1.0.0"
	h        = flag.Bool("h", false, "help usage")
	showVer  = flag.Bool("v", false, "show version")
	conffile = flag.String("c", "", "config yaml file")
	initdb   = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
	seed     = flag.Bool("seed", false, "write the default products into an empty catalogue, then exit")
	balance  = flag.Bool("balance", false, "print the current balance and recent records, then exit")
)

func printHelp() {
	if *h {
		ustr := fmt.Sprintf("hotelledger version: %s, Usage: hotelledger -h\nOptions:", version)
		_, _ = fmt.Fprintln(os.Stderr, ustr)
		flag.PrintDefaults()
		os.Exit(0)
	}
}

func main() {
	flag.Parse()
	if *showVer {
		fmt.Println(version)
		os.Exit(0)
	}
	printHelp()

	cfg := config.LoadConfig(*conffile)
	application := app.NewApplication(cfg)
	if err := application.Init(cfg); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "init failed:", err)
		os.Exit(1)
	}
	defer application.Release()

	switch {
	case *initdb:
		application.InitDb()
		zap.S().Info("database tables recreated")
		return
	case *seed:
		n, err := application.SeedProducts(context.Background())
		if err != nil {
			zap.S().Errorf("seed products failed: %v", err)
			return
		}
		fmt.Printf("%d products written\n", n)
		return
	case *balance:
		monitor := application.Monitor()
		monitor.SetDetailVisible(true)
		fmt.Print(ledger.RenderBalanceText(monitor.Balance()))
		if d, ok := monitor.Detail(); ok {
			fmt.Print(ledger.RenderDetailText(d, time.Local))
		}
		return
	}

	webserver.Init(application)
	adminapi.Init()

	go func() {
		if err := webserver.Listen(); err != nil {
			zap.S().Errorf("admin server error: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.S().Info("shutting down")
	if err := webserver.Shutdown(context.Background()); err != nil {
		zap.S().Errorf("admin server shutdown: %v", err)
	}
}
