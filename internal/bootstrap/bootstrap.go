// Package bootstrap opens the configured document store and assembles the
// sync service on top of it. The server and syncctl share it.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/application"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/config"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/convindex"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/directory"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/docstore"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/docstore/pebblestore"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/docstore/postgres"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/events"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/messagelog"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/storage"
)

func OpenStore(ctx context.Context, backend, pebblePath, databaseURL string, log *zap.Logger) (docstore.Store, error) {
	switch backend {
	case config.BackendMemory, "":
		return docstore.NewMemory(), nil
	case config.BackendPebble:
		s, err := pebblestore.Open(pebblePath, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendPostgres:
		s, err := postgres.Open(ctx, databaseURL, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

type Options struct {
	Backend     string
	OpTimeout   time.Duration
	MaxAttempts int
	Cache       convindex.Cache
	Emitter     *events.Emitter
}

// NewService wires the managers over store. Zero options keep the gateway
// defaults.
func NewService(store docstore.Store, opts Options, log *zap.Logger) (*application.Service, *storage.Gateway) {
	var gwOpts []storage.Option
	if opts.Backend != "" {
		gwOpts = append(gwOpts, storage.WithBackend(opts.Backend))
	}
	if opts.OpTimeout > 0 {
		gwOpts = append(gwOpts, storage.WithTimeout(opts.OpTimeout))
	}
	if opts.MaxAttempts > 0 {
		gwOpts = append(gwOpts, storage.WithMaxAttempts(opts.MaxAttempts))
	}
	gw := storage.New(store, gwOpts...)

	var indexOpts []convindex.Option
	if opts.Cache != nil {
		indexOpts = append(indexOpts, convindex.WithCache(opts.Cache))
	}

	svc := application.New(
		messagelog.New(gw, log),
		convindex.New(gw, log, indexOpts...),
		directory.New(gw, log),
		opts.Emitter,
		log,
	)
	return svc, gw
}
