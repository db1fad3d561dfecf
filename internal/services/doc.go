// Package services implements the business logic between the HTTP handlers
// and the poll data pipeline.
//
// # Poll data
//
// PollService owns the current snapshot of the published poll table. A
// refresh runs fetch, normalize and index, then swaps the snapshot pointer
// atomically. Readers never observe a half-built dataset. A newer refresh
// cancels an older in-flight one, and the older result is discarded with
// ErrSuperseded. A failed refresh keeps the previous snapshot current.
//
//	polls := services.NewPollService(f, logger, services.WithRefreshTimeout(20*time.Second))
//	if _, err := polls.Refresh(ctx); err != nil {
//	    // transport failure, previous snapshot still served
//	}
//	view, err := polls.Ranking("DATUM")
//
// View accessors return ErrNotLoaded before the first successful refresh and
// ErrSourceNotFound for unknown pollsters.
//
// # Scheduling
//
// Scheduler calls Refresh every configured interval until its context ends.
//
// # Health
//
// HealthService reports liveness, and readiness once poll data is loaded.
package services
