package main

import (
	"flag"
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/hamed0406/smokecheck/internal/logging"
	"github.com/hamed0406/smokecheck/internal/target"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:9090", "listen address")
	logDir := flag.String("log-dir", "", "log directory; empty logs to stderr")
	rpm := flag.Int("limit-rpm", 6, "requests per minute allowed on /limited")
	burst := flag.Int("limit-burst", 2, "burst allowed on /limited")
	flag.Parse()

	logger, err := logging.NewLogger(*logDir, "debug")
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	srv := target.NewServer(logger, *rpm, *burst)

	logger.Info("target_listen",
		zap.String("addr", *addr),
		zap.Strings("endpoints", []string{"/healthz", "/status/{code}", "/slow", "/flap", "/limited"}),
	)
	if err := http.ListenAndServe(*addr, srv.Router()); err != nil {
		log.Fatal(err)
	}
}
