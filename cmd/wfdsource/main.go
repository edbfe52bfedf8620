package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/wfdstack/wfdcast/internal/config"
	"github.com/wfdstack/wfdcast/internal/logger"
	"github.com/wfdstack/wfdcast/internal/media"
	"github.com/wfdstack/wfdcast/internal/session"
)

func main() {
	fs := flag.NewFlagSet("wfdsource", flag.ExitOnError)
	logFlags := logger.RegisterFlags(fs)

	dialAddr := fs.String("dial", "", "TCP address of the Sink's control-plane port (required)")
	envPath := fs.String("config", "", "optional .env-style config file")
	rtpMin := fs.Uint("rtp-port-min", 19000, "lower bound of the RTP port allocation range (min and max both 0 = ephemeral)")
	rtpMax := fs.Uint("rtp-port-max", 19999, "upper bound of the RTP port allocation range (min and max both 0 = ephemeral)")
	presentationURL := fs.String("presentation-url", "rtsp://localhost/wfd1.0", "presentation URL advertised in M4")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -dial host:port [options]\n\nWi-Fi Display Source control-plane peer\n\nOptions:\n", os.Args[0])
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

	cfg := config.Default(config.RoleSource)
	cfg.DialAddr = *dialAddr
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

	log.Info("starting WFD source", "dial_addr", cfg.DialAddr, "log_config", logFlags.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	transport, err := session.DialTCPTransport(ctx, cfg.DialAddr, log)
	if err != nil {
		log.Error("failed to connect to sink", "error", err)
		os.Exit(1)
	}
	defer transport.Close()
	log.Info("connected to sink", "peer", transport.PeerAddress())

	mediaMgr, err := media.NewUDPSourceMediaManager(log, cfg.RTPPortMin, cfg.RTPPortMax)
	if err != nil {
		log.Error("failed to allocate media resources", "error", err)
		os.Exit(1)
	}
	defer mediaMgr.Teardown()

	machine := session.NewSourceMachine(transport, mediaMgr, log)
	machine.PresentationURLHint = *presentationURL

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
