package catalog

import (
	"context"

	"github.com/colorkeep/colorkeep/pkg/logger"
	"github.com/colorkeep/colorkeep/pkg/models"
)

// defaultPalette seeds an empty catalog so a fresh install has something to
// show. Values are packed ARGB.
var defaultPalette = []struct {
	name  string
	color int
}{
	{"Crimson", 0xffdc143c},
	{"Coral", 0xffff7f50},
	{"Amber", 0xffffbf00},
	{"Chartreuse", 0xff7fff00},
	{"Emerald", 0xff50c878},
	{"Teal", 0xff008080},
	{"Cerulean", 0xff2a52be},
	{"Indigo", 0xff4b0082},
	{"Violet", 0xff8f00ff},
	{"Magenta", 0xffff00ff},
	{"Slate", 0xff708090},
	{"Charcoal", 0xff36454f},
}

// SeedIfEmpty inserts the default palette when the catalog has no rows.
func (s *Service) SeedIfEmpty(ctx context.Context) error {
	existing, err := s.ListAllOnce(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	records := make([]models.ColorRecord, 0, len(defaultPalette))
	for _, p := range defaultPalette {
		records = append(records, models.NewColorRecord(p.name, p.color))
	}

	logger.Infof("catalog: seeding %d default colors", len(records))
	_, err = s.InsertAll(ctx, records)
	return err
}
