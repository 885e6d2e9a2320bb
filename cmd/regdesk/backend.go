package main

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/regdesk/pkg/config"
	"github.com/dmitrymomot/regdesk/pkg/httpserver"
	"github.com/dmitrymomot/regdesk/pkg/logger"
	"github.com/dmitrymomot/regdesk/pkg/mongo"
	"github.com/dmitrymomot/regdesk/pkg/pg"
	"github.com/dmitrymomot/regdesk/pkg/records"
	"github.com/dmitrymomot/regdesk/pkg/sheets"
)

// openBackend connects the table backend named by STORE_BACKEND and
// registers its readiness probe and cleanup.
func (a *app) openBackend(ctx context.Context) (records.Backend, error) {
	cfg := a.cfg
	log := a.log.With(logger.Component("store"))

	switch cfg.Store.Backend {
	case config.BackendMemory, "":
		log.WarnContext(ctx, "using in-memory store; data is lost on restart")
		return records.NewMemoryBackend(), nil

	case config.BackendSheets:
		b, err := sheets.New(ctx, cfg.Sheets, sheets.WithLogger(a.log))
		if err != nil {
			return nil, err
		}
		a.probes = append(a.probes, httpserver.Probe{Name: "sheets", Check: func(ctx context.Context) error {
			_, err := b.OpenTable(ctx, cfg.Store.UsersTable)
			return err
		}})
		return b, nil

	case config.BackendPostgres:
		pool, err := pg.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		a.onClose(func(context.Context) error {
			pool.Close()
			return nil
		})
		if err := pg.Migrate(ctx, pool, cfg.Postgres, log); err != nil {
			return nil, err
		}
		a.probes = append(a.probes, httpserver.Probe{Name: "postgres", Check: pg.Healthcheck(pool)})
		return pg.NewBackend(pool), nil

	case config.BackendMongo:
		db, err := mongo.NewWithDatabase(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		client := db.Client()
		a.onClose(client.Disconnect)
		a.probes = append(a.probes, httpserver.Probe{Name: "mongo", Check: mongo.Healthcheck(client)})
		b, err := mongo.NewBackend(ctx, db)
		if err != nil {
			return nil, err
		}
		return b, nil

	default:
		return nil, fmt.Errorf("%w: unknown STORE_BACKEND %q", config.ErrInvalidConfig, cfg.Store.Backend)
	}
}
