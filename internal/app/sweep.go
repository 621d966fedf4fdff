package app

import (
	"context"
	"fmt"
	"os"
)

// Sweep runs the expire and cleanup passes once and exits.
func (a *App) Sweep(ctx context.Context, opts SweepOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	manager := a.newManager(store)

	if !opts.SkipExpire {
		expired, err := manager.ExpireOldAlerts(ctx, a.Config.Scheduler.ExpireHorizon)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "expired %d stale alerts\n", expired)
	}

	if !opts.SkipCleanup {
		removed, err := manager.CleanupOldAlerts(ctx, a.Config.Scheduler.CleanupRetention)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "removed %d old resolved alerts\n", removed)
	}

	return nil
}

// Resolve marks a single alert inactive.
func (a *App) Resolve(ctx context.Context, id int64) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	resolved, err := a.newManager(store).Resolve(ctx, id)
	if err != nil {
		return err
	}
	if !resolved {
		fmt.Fprintf(os.Stdout, "alert %d not found or already resolved\n", id)
		return nil
	}
	fmt.Fprintf(os.Stdout, "alert %d resolved\n", id)
	return nil
}

// Acknowledge flags a single alert as seen without resolving it.
func (a *App) Acknowledge(ctx context.Context, id int64) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	ok, err := a.newManager(store).Acknowledge(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(os.Stdout, "alert %d not found\n", id)
		return nil
	}
	fmt.Fprintf(os.Stdout, "alert %d acknowledged\n", id)
	return nil
}
