package settings

import (
	"context"
	"fmt"

	"github.com/colorkeep/colorkeep/pkg/logger"
	"github.com/colorkeep/colorkeep/pkg/models"
	"github.com/colorkeep/colorkeep/pkg/prefs"
)

// MigrateLegacyDeletedColors converts the pre-JSON-list persistence format -
// a plain JSON array of catalog ids under deleted_color_ids - into the
// current deleted_colors_json format. Ids are resolved against the catalog;
// ids that no longer resolve are dropped with a warning. The conversion is
// keyed by a completion flag, so it runs at most once per preference file
// and is a no-op on every later startup.
func (r *Repository) MigrateLegacyDeletedColors(ctx context.Context, catalog models.ColorReader) error {
	snap := r.store.ReadOnce()
	if snap.Bool(keyDeletedMigrated, false) {
		return nil
	}

	rawIDs := snap.String(keyLegacyDeletedIDs, "")
	if rawIDs == "" {
		return r.store.Edit(func(e *prefs.Editor) error {
			e.Set(keyDeletedMigrated, true)
			return nil
		})
	}

	var ids []int
	if err := json.UnmarshalFromString(rawIDs, &ids); err != nil {
		logger.Warnf("settings: malformed %s value, dropping legacy deleted ids: %v", keyLegacyDeletedIDs, err)
		ids = nil
	}

	var records []models.ColorRecord
	for _, id := range ids {
		record, err := catalog.Find(ctx, id)
		if err != nil {
			return fmt.Errorf("resolving legacy deleted color %d: %w", id, err)
		}
		if record == nil {
			logger.Warnf("settings: legacy deleted color %d no longer exists, skipping", id)
			continue
		}
		records = append(records, *record)
	}

	return r.store.Edit(func(e *prefs.Editor) error {
		merged := append(deletedColorsFrom(e.Snapshot()), records...)
		raw, err := encodeDeletedColors(merged)
		if err != nil {
			return fmt.Errorf("encoding deleted colors: %w", err)
		}
		e.Set(KeyDeletedColors, raw)
		e.Delete(keyLegacyDeletedIDs)
		e.Set(keyDeletedMigrated, true)
		return nil
	})
}
