// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/jazcoin/node/app/services/node/handlers/v1/ledgergrp"
	"github.com/jazcoin/node/foundation/blockchain/state"
	"github.com/jazcoin/node/foundation/events"
	"github.com/jazcoin/node/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	Evts  *events.Events
}

// Routes binds all the version 1 routes.
func Routes(app *web.App, cfg Config) {
	lgh := ledgergrp.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", lgh.Events)
	app.Handle(http.MethodGet, version, "/mine", lgh.Mine)
	app.Handle(http.MethodGet, version, "/chain", lgh.Chain)
	app.Handle(http.MethodGet, version, "/chain/valid", lgh.IsValid)
	app.Handle(http.MethodGet, version, "/tx/uncommitted/list", lgh.Mempool)
	app.Handle(http.MethodPost, version, "/tx/add", lgh.AddTransaction)
	app.Handle(http.MethodGet, version, "/node/list", lgh.Peers)
	app.Handle(http.MethodPost, version, "/node/connect", lgh.ConnectNodes)
	app.Handle(http.MethodGet, version, "/node/resolve", lgh.ResolveConsensus)
}
