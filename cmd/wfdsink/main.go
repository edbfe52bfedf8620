package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/wfdstack/wfdcast/internal/config"
	"github.com/wfdstack/wfdcast/internal/logger"
	"github.com/wfdstack/wfdcast/internal/media"
	"github.com/wfdstack/wfdcast/internal/session"
)

func main() {
	fs := flag.NewFlagSet("wfdsink", flag.ExitOnError)
	logFlags := logger.RegisterFlags(fs)

	listenAddr := fs.String("listen", ":7236", "TCP address to accept a Source connection on")
	envPath := fs.String("config", "", "optional .env-style config file")
	rtpMin := fs.Uint("rtp-port-min", 19000, "lower bound of the RTP port allocation range (min and max both 0 = ephemeral)")
	rtpMax := fs.Uint("rtp-port-max", 19999, "upper bound of the RTP port allocation range (min and max both 0 = ephemeral)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\nWi-Fi Display Sink control-plane peer\n\nOptions:\n", os.Args[0])
		fs.PrintDefaults()
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error parsing flags: %v\n", err)
		os.Exit(1)
	}

	logConfig, err := logFlags.ToConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error configuring logger: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(logConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()
	logger.SetDefault(log)

	cfg := config.Default(config.RoleSink)
	cfg.ListenAddr = *listenAddr
	cfg.RTPPortMin, cfg.RTPPortMax = uint16(*rtpMin), uint16(*rtpMax)
	if *envPath != "" {
		if err := config.Load(*envPath, cfg); err != nil {
			log.Error("failed to load config file", "error", err)
			os.Exit(1)
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log.Info("starting WFD sink", "listen_addr", cfg.ListenAddr, "log_config", logFlags.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		log.Error("failed to listen", "error", err)
		os.Exit(1)
	}
	defer ln.Close()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	log.Info("waiting for a source to connect")
	conn, err := ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			log.Info("shutdown before a source connected")
			return
		}
		log.Error("accept failed", "error", err)
		os.Exit(1)
	}
	log.Info("source connected", "peer", conn.RemoteAddr().String())

	mediaMgr, err := media.NewUDPSinkMediaManager(log, cfg.RTPPortMin, cfg.RTPPortMax)
	if err != nil {
		log.Error("failed to allocate media resources", "error", err)
		os.Exit(1)
	}
	defer mediaMgr.Teardown()

	transport := session.NewTCPTransport(conn, log)
	defer transport.Close()

	machine := session.NewSinkMachine(transport, mediaMgr, log)
	if err := machine.Start(ctx); err != nil {
		log.Error("failed to start session", "error", err)
		os.Exit(1)
	}

	err = transport.ReadLoop(ctx, machine.OnBytes)
	if err != nil && ctx.Err() == nil {
		log.Error("session ended with error", "error", err)
		os.Exit(1)
	}
	log.Info("session closed")
}
