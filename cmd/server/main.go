// cmd/server wires a single cluster node together: load config, stand up
// the store, the Raft consensus engine, and the commit processor, and
// serve Prometheus metrics. It does not speak the client wire protocol;
// that layer is out of scope for this module.
package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/raftzoo/zoocore/pkg/commitproc"
	"github.com/raftzoo/zoocore/pkg/config"
	"github.com/raftzoo/zoocore/pkg/consensus/raftconsensus"
	"github.com/raftzoo/zoocore/pkg/metrics"
	"github.com/raftzoo/zoocore/pkg/store"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	cfg, err := config.Load(os.Getenv("ZOOCORE_CONFIG"), os.Args[1:])
	if err != nil {
		log.WithError(err).Fatal("main: failed to load config")
	}
	log.WithFields(log.Fields{
		"node_id":   cfg.NodeID,
		"bind_addr": cfg.BindAddr,
		"data_dir":  cfg.DataDir,
	}).Info("main: starting node")

	for _, c := range metrics.Collectors() {
		if err := prometheus.Register(c); err != nil {
			log.WithError(err).Fatal("main: failed to register metrics")
		}
	}
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(":9090", nil); err != nil {
			log.WithError(err).Error("main: metrics server stopped")
		}
	}()

	st := store.NewMemStore()
	processor := commitproc.New(st, nil, cfg.InputQueueBound)

	fsm := raftconsensus.NewFSM(processor, st, cfg.BatchSize)
	node, err := raftconsensus.NewNode(raftconsensus.Config{
		NodeID:       cfg.NodeID,
		BindAddr:     cfg.BindAddr,
		DataDir:      cfg.DataDir,
		Bootstrap:    cfg.Bootstrap,
		BatchSize:    cfg.BatchSize,
		ApplyTimeout: cfg.ApplyTimeout,
	}, fsm)
	if err != nil {
		log.WithError(err).Fatal("main: failed to start raft node")
	}
	processor.SetEngine(node)

	go processor.Run()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("main: shutting down")
	processor.Shutdown()
	if err := node.Close(); err != nil {
		log.WithError(err).Warn("main: error closing raft node")
	}
}
