// Package settings exposes strongly typed application settings over a
// preference store, including the deleted-color recovery list persisted as a
// JSON-encoded value.
package settings

import (
	"context"
	"fmt"
	"slices"

	jsoniter "github.com/json-iterator/go"

	"github.com/colorkeep/colorkeep/pkg/logger"
	"github.com/colorkeep/colorkeep/pkg/models"
	"github.com/colorkeep/colorkeep/pkg/prefs"
)

// Preference keys. These are the persisted wire names; renaming one orphans
// the values in existing preference files.
const (
	KeyNameQuery     = "name_query"
	KeyMinHue        = "min_hue"
	KeyMaxHue        = "max_hue"
	KeyShowFavorites = "show_favorites"
	KeyTheme         = "theme"
	KeyDeletedColors = "deleted_colors_json"

	// pre-JSON-list persistence format, converted by MigrateLegacyDeletedColors
	keyLegacyDeletedIDs = "deleted_color_ids"
	keyDeletedMigrated  = "deleted_colors_migrated"
)

// Defaults returned when a key has never been written.
const (
	DefaultNameQuery     = ""
	DefaultMinHue        = 0.0
	DefaultMaxHue        = 360.0
	DefaultShowFavorites = false
)

const emptyDeletedColors = "[]"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// HueRange is a hue window in degrees, min inclusive and max exclusive.
type HueRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Repository wraps a preference store with typed accessors. It holds no
// state of its own; it is a stateless projection over the store, so a single
// store instance may back any number of repositories.
type Repository struct {
	store *prefs.Store
}

func NewRepository(store *prefs.Store) *Repository {
	return &Repository{store: store}
}

// --- one-shot reads ---

func (r *Repository) GetNameQuery() string {
	return r.store.ReadOnce().String(KeyNameQuery, DefaultNameQuery)
}

// GetHueRange returns the persisted bounds verbatim. An inverted range
// (min > max) is returned as stored; normalization is the caller's contract.
func (r *Repository) GetHueRange() HueRange {
	return hueRangeFrom(r.store.ReadOnce())
}

func (r *Repository) GetShowFavorites() bool {
	return r.store.ReadOnce().Bool(KeyShowFavorites, DefaultShowFavorites)
}

func (r *Repository) GetTheme() models.Theme {
	return themeFrom(r.store.ReadOnce())
}

// GetSettings extracts all five scalar settings from a single store read, so
// a concurrent write cannot produce a torn combination.
func (r *Repository) GetSettings() models.Settings {
	return settingsFrom(r.store.ReadOnce())
}

func (r *Repository) GetDeletedColors() []models.ColorRecord {
	return deletedColorsFrom(r.store.ReadOnce())
}

// --- reactive reads ---
//
// All typed watches are projections of the store's single snapshot stream;
// consecutive duplicate values are suppressed.

func (r *Repository) WatchNameQuery(ctx context.Context) <-chan string {
	return watch(ctx, r.store, func(s prefs.Snapshot) string {
		return s.String(KeyNameQuery, DefaultNameQuery)
	}, eq[string])
}

func (r *Repository) WatchHueRange(ctx context.Context) <-chan HueRange {
	return watch(ctx, r.store, hueRangeFrom, eq[HueRange])
}

func (r *Repository) WatchShowFavorites(ctx context.Context) <-chan bool {
	return watch(ctx, r.store, func(s prefs.Snapshot) bool {
		return s.Bool(KeyShowFavorites, DefaultShowFavorites)
	}, eq[bool])
}

func (r *Repository) WatchTheme(ctx context.Context) <-chan models.Theme {
	return watch(ctx, r.store, themeFrom, eq[models.Theme])
}

func (r *Repository) WatchSettings(ctx context.Context) <-chan models.Settings {
	return watch(ctx, r.store, settingsFrom, eq[models.Settings])
}

func (r *Repository) WatchDeletedColors(ctx context.Context) <-chan []models.ColorRecord {
	return watch(ctx, r.store, deletedColorsFrom, func(a, b []models.ColorRecord) bool {
		return slices.Equal(a, b)
	})
}

// --- writes ---

func (r *Repository) SetNameQuery(value string) error {
	return r.store.Edit(func(e *prefs.Editor) error {
		e.Set(KeyNameQuery, value)
		return nil
	})
}

// SetHueRange persists both bounds in a single edit so a reader can never
// observe one bound updated without the other. Bounds are stored verbatim;
// callers normalize min <= max before calling.
func (r *Repository) SetHueRange(min, max float64) error {
	return r.store.Edit(func(e *prefs.Editor) error {
		e.Set(KeyMinHue, min)
		e.Set(KeyMaxHue, max)
		return nil
	})
}

func (r *Repository) SetShowFavorites(value bool) error {
	return r.store.Edit(func(e *prefs.Editor) error {
		e.Set(KeyShowFavorites, value)
		return nil
	})
}

func (r *Repository) SetTheme(theme models.Theme) error {
	if !theme.IsValid() {
		return fmt.Errorf("invalid theme %q", theme)
	}
	return r.store.Edit(func(e *prefs.Editor) error {
		e.Set(KeyTheme, string(theme))
		return nil
	})
}

// --- deleted colors ---

// AddDeletedColor appends record to the recovery list. The decode, append
// and re-encode all happen inside one store edit, so two concurrent
// deletions both land in the final list.
func (r *Repository) AddDeletedColor(record models.ColorRecord) error {
	return r.store.Edit(func(e *prefs.Editor) error {
		list := append(deletedColorsFrom(e.Snapshot()), record)
		raw, err := encodeDeletedColors(list)
		if err != nil {
			return fmt.Errorf("encoding deleted colors: %w", err)
		}
		e.Set(KeyDeletedColors, raw)
		return nil
	})
}

// ClearDeletedColors discards every recoverable entry unconditionally.
func (r *Repository) ClearDeletedColors() error {
	return r.store.Edit(func(e *prefs.Editor) error {
		e.Set(KeyDeletedColors, emptyDeletedColors)
		return nil
	})
}

// RestoreDeletedColors empties the recovery list and returns what it held,
// in insertion order. Capture and clear happen in the same edit, so every
// entry is handed out exactly once even under concurrent callers.
func (r *Repository) RestoreDeletedColors() ([]models.ColorRecord, error) {
	var restored []models.ColorRecord
	err := r.store.Edit(func(e *prefs.Editor) error {
		restored = deletedColorsFrom(e.Snapshot())
		e.Set(KeyDeletedColors, emptyDeletedColors)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return restored, nil
}

// --- projections ---

func settingsFrom(snap prefs.Snapshot) models.Settings {
	return models.Settings{
		NameQuery:         snap.String(KeyNameQuery, DefaultNameQuery),
		MinHue:            snap.Float(KeyMinHue, DefaultMinHue),
		MaxHue:            snap.Float(KeyMaxHue, DefaultMaxHue),
		ShowOnlyFavorites: snap.Bool(KeyShowFavorites, DefaultShowFavorites),
		Theme:             themeFrom(snap),
	}
}

func hueRangeFrom(snap prefs.Snapshot) HueRange {
	return HueRange{
		Min: snap.Float(KeyMinHue, DefaultMinHue),
		Max: snap.Float(KeyMaxHue, DefaultMaxHue),
	}
}

func themeFrom(snap prefs.Snapshot) models.Theme {
	t := models.Theme(snap.String(KeyTheme, string(models.ThemeSystem)))
	if !t.IsValid() {
		return models.ThemeSystem
	}
	return t
}

func deletedColorsFrom(snap prefs.Snapshot) []models.ColorRecord {
	return decodeDeletedColors(snap.String(KeyDeletedColors, emptyDeletedColors))
}

// decodeDeletedColors decodes the persisted JSON list. A malformed payload
// is treated as an empty list: losing the recovery buffer is preferred over
// making every settings read fail.
func decodeDeletedColors(raw string) []models.ColorRecord {
	if raw == "" || raw == emptyDeletedColors {
		return nil
	}
	var out []models.ColorRecord
	if err := json.UnmarshalFromString(raw, &out); err != nil {
		logger.Warnf("settings: malformed %s value, treating as empty: %v", KeyDeletedColors, err)
		return nil
	}
	return out
}

func encodeDeletedColors(list []models.ColorRecord) (string, error) {
	if len(list) == 0 {
		return emptyDeletedColors, nil
	}
	return json.MarshalToString(list)
}

func eq[T comparable](a, b T) bool {
	return a == b
}

// watch projects the store's snapshot stream through extract, suppressing
// consecutive duplicates. The returned channel conflates like the store's
// own watch: a slow receiver always finds the latest value pending. Closed
// when ctx is cancelled.
func watch[T any](ctx context.Context, store *prefs.Store, extract func(prefs.Snapshot) T, equal func(a, b T) bool) <-chan T {
	out := make(chan T, 1)
	in := store.Watch(ctx)

	go func() {
		defer close(out)

		var last T
		first := true
		for snap := range in {
			v := extract(snap)
			if !first && equal(last, v) {
				continue
			}
			last, first = v, false

			select {
			case out <- v:
			default:
				select {
				case <-out:
				default:
				}
				select {
				case out <- v:
				default:
				}
			}
		}
	}()

	return out
}
