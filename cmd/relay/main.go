package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"probe-relay/checker"
	"probe-relay/config"
	"probe-relay/logger"
	"probe-relay/notifier"
	"probe-relay/probe"
)

const defaultConfigPath = "./config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(config.UserAgent())
		return
	}

	created, err := config.EnsureConfig(*configPath)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	if created {
		os.Exit(0)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	level, err := logger.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	logs := logger.New(level, os.Stderr)

	logs.Info("starting up %s with config: %s", config.UserAgent(), *configPath)
	if cfg.Metrics.PollHTTPBodyHealthyMatch != nil {
		logs.Warn("metrics.poll_http_body_healthy_match is set but http replicas are judged on status code only")
	}

	dispatcher := probe.NewDispatcher(
		checker.New(cfg.Metrics, config.UserAgent(), logs),
		checker.NewScriptRunner(logs),
		notifier.NewReporter(cfg.Report, config.UserAgent(), logs),
		logs,
	)
	manager := probe.NewManager(cfg, dispatcher, logs)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		probe.Supervise(stop, probe.RespawnDelay, logs, manager.Run)
		close(done)
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-signals:
		logs.Info("received signal %v, shutting down", sig)
		close(stop)
	case <-done:
		logs.Error("probe loop exited unexpectedly")
		os.Exit(1)
	}
}
