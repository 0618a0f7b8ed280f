// Package updates runs the foreign package update check.
package updates

import (
	"context"
	"fmt"

	"github.com/obentoo/qmaur/internal/aur"
	"github.com/obentoo/qmaur/internal/common/logger"
	"github.com/obentoo/qmaur/internal/pacman"
	"github.com/obentoo/qmaur/internal/report"
)

// Options configures a check
type Options struct {
	// Ignore holds package names left out of the check
	Ignore map[string]bool
}

// Check reads the foreign package inventory, looks the remaining names up
// in the AUR and compares versions. Nothing is returned on a fatal error,
// so callers never print a partial report.
func Check(ctx context.Context, executor pacman.Executor, lookup aur.Lookup, opts Options) (*report.Report, error) {
	inv, err := executor.ForeignPackages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read foreign packages: %w", err)
	}
	logger.Debug("found %d foreign packages", len(inv))

	if len(opts.Ignore) > 0 {
		before := len(inv)
		inv = inv.Without(opts.Ignore)
		logger.Debug("ignoring %d packages", before-len(inv))
	}

	if len(inv) == 0 {
		logger.Info("no foreign packages to check")
		return report.Compare(inv, nil), nil
	}

	names := inv.Names()
	logger.Info("querying AUR for %d packages", len(names))
	remote, err := lookup.Info(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("failed to query AUR: %w", err)
	}
	logger.Debug("AUR returned %d packages", len(remote))

	return report.Compare(inv, remote), nil
}
