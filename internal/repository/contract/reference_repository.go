package contract

import (
	"context"

	"quran-irc-bot/internal/entity"
	"quran-irc-bot/pkg/ai/reference"
)

// IReferenceRepository turns references into formatted display lines.
type IReferenceRepository interface {
	// Resolve keeps the order of refs. Records that cannot be found are
	// skipped; unknown languages use the default translation table.
	Resolve(ctx context.Context, refs []reference.Reference, language string, rtl bool) ([]entity.DisplayLine, error)
}

// IReferenceCache holds read-only records between lookups.
type IReferenceCache interface {
	GetSurah(ctx context.Context, id int) (*entity.Surah, bool)
	SetSurah(ctx context.Context, surah *entity.Surah)
	GetVerse(ctx context.Context, table string, ref reference.Reference) (*entity.Verse, bool)
	SetVerse(ctx context.Context, table string, ref reference.Reference, verse *entity.Verse)
}
