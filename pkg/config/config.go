// Package config loads this node's configuration from a TOML file, with
// CLI flags able to override any field.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	flags "github.com/jessevdk/go-flags"
)

// Config holds everything cmd/server needs to start a node: identity,
// storage paths, the commit processor's tuning knobs, and the addresses
// of its Raft peers.
type Config struct {
	NodeID   string `toml:"node_id" long:"node-id" description:"unique Raft server id for this node"`
	DataDir  string `toml:"data_dir" long:"data-dir" description:"directory for Raft log/stable/snapshot stores"`
	BindAddr string `toml:"bind_addr" long:"bind-addr" description:"address this node's Raft transport binds to"`

	// BatchSize bounds how many records the snapshot serializers pack
	// into one on-disk batch.
	BatchSize int `toml:"batch_size" long:"batch-size" description:"snapshot batch size"`

	// InputQueueBound bounds the commit processor's input queue.
	InputQueueBound int `toml:"input_queue_bound" long:"input-queue-bound" description:"commit processor input queue capacity"`

	// Bootstrap marks this node as the one that bootstraps a new
	// single-node (or seed) Raft cluster on first start.
	Bootstrap bool `toml:"bootstrap" long:"bootstrap" description:"bootstrap a new Raft cluster on this node"`

	// Peers lists the other members of the Raft cluster, as
	// "node_id=host:port" pairs. Load only parses the list; cmd/server
	// does not add these peers to the cluster.
	Peers []string `toml:"peers" long:"peer" description:"other cluster members, as node_id=host:port"`

	// ApplyTimeout bounds how long a proposed write may wait to be
	// accepted by Raft; it does not bound the wait for commit.
	ApplyTimeout time.Duration `toml:"apply_timeout" long:"apply-timeout" description:"timeout for a proposed write to be accepted by Raft"`

	// ConfigPath is the TOML file this Config was loaded from, if any.
	// It is not itself a TOML field.
	ConfigPath string `toml:"-" long:"config" description:"path to a TOML config file"`
}

// Defaults returns a Config populated with this module's defaults before
// a file or flags are applied: batch_size=1000, input_queue_bound=20000,
// matching spec.md §5's "nominally 20,000."
func Defaults() Config {
	return Config{
		BatchSize:       1000,
		InputQueueBound: 20000,
		ApplyTimeout:    5 * time.Second,
	}
}

// Load starts from Defaults, overlays path's TOML contents if path is
// non-empty, then overlays any flags present in args. Flags not present
// in args leave the TOML/default value untouched, since go-flags only
// writes fields for options it actually parsed.
func Load(path string, args []string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
		}
		cfg.ConfigPath = path
	}

	parser := flags.NewParser(&cfg, flags.Default&^flags.HelpFlag|flags.IgnoreUnknown)
	if _, err := parser.ParseArgs(args); err != nil {
		return Config{}, fmt.Errorf("config: parse args: %w", err)
	}

	if cfg.NodeID == "" {
		return Config{}, fmt.Errorf("config: node_id is required")
	}
	if cfg.DataDir == "" {
		return Config{}, fmt.Errorf("config: data_dir is required")
	}
	if cfg.BindAddr == "" {
		return Config{}, fmt.Errorf("config: bind_addr is required")
	}

	return cfg, nil
}
