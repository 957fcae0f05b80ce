package app

import (
	"context"
	"fmt"
)

// Export renders the archive as the configured Excel workbook.
func (a *App) Export(ctx context.Context) error {
	if !a.store.Exists() {
		a.logger.Warn().
			Str("path", a.store.Path()).
			Msg("No archive on disk, nothing to export")
		return nil
	}

	records, version, err := a.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load archive: %w", err)
	}

	a.logger.Info().
		Int("rows", len(records)).
		Int("schema_version", version).
		Str("output", a.config.Report.Path).
		Msg("Exporting report")

	return a.exporter.Export(records)
}
