package implementation

import (
	"context"
	"errors"
	"fmt"

	"quran-irc-bot/internal/constant"
	"quran-irc-bot/internal/entity"
	"quran-irc-bot/internal/mapper"
	"quran-irc-bot/internal/model"
	"quran-irc-bot/internal/pkg/logger"
	"quran-irc-bot/internal/repository/contract"
	"quran-irc-bot/pkg/ai/reference"

	"gorm.io/gorm"
)

// Bidirectional embedding marks for right-to-left output.
const (
	rtlEmbedding = "\u202B"
	ltrEmbedding = "\u202A"
	popDirection = "\u202C"
)

const translationUnavailable = "Translation not available"

type referenceRepository struct {
	db     *gorm.DB
	cache  contract.IReferenceCache
	mapper *mapper.QuranMapper
	logger logger.ILogger
}

// NewReferenceRepository creates a reference repository. cache may be nil.
func NewReferenceRepository(db *gorm.DB, cache contract.IReferenceCache, log logger.ILogger) contract.IReferenceRepository {
	return &referenceRepository{
		db:     db,
		cache:  cache,
		mapper: mapper.NewQuranMapper(),
		logger: log,
	}
}

type surahGroup struct {
	surah *entity.Surah
	lines []string
}

func (r *referenceRepository) Resolve(ctx context.Context, refs []reference.Reference, language string, rtl bool) ([]entity.DisplayLine, error) {
	table := constant.TranslationTable(language)
	r.logger.Info(logger.ModuleStorage, "Resolving references", map[string]interface{}{
		"count":    len(refs),
		"language": language,
		"table":    table,
		"rtl":      rtl,
	})

	var groups []*surahGroup
	index := make(map[int]*surahGroup)

	for _, ref := range refs {
		verse, err := r.findVerse(ctx, table, ref)
		if err != nil {
			return nil, err
		}
		if verse == nil {
			r.logger.Warn(logger.ModuleStorage, "No original text found", map[string]interface{}{
				"reference": ref.String(),
			})
			continue
		}

		group, ok := index[ref.Collection]
		if !ok {
			surah, err := r.findSurah(ctx, ref.Collection)
			if err != nil {
				return nil, err
			}
			if surah == nil {
				r.logger.Warn(logger.ModuleStorage, "No collection metadata found", map[string]interface{}{
					"surah": ref.Collection,
				})
				continue
			}
			group = &surahGroup{surah: surah}
			index[ref.Collection] = group
			groups = append(groups, group)
		}

		text, translation := verse.Text, translationUnavailable
		if verse.HasTranslation {
			translation = verse.Translation
		}
		if rtl {
			text = rtlEmbedding + text + popDirection
			translation = ltrEmbedding + translation + popDirection
		}
		group.lines = append(group.lines,
			fmt.Sprintf("Ayat %d: %s", ref.Item, text),
			fmt.Sprintf("Translation: %s", translation),
		)
	}

	var out []entity.DisplayLine
	for _, g := range groups {
		out = append(out, entity.DisplayLine{Kind: entity.LineHeader, Text: formatHeader(g.surah)})
		for _, line := range g.lines {
			out = append(out, entity.DisplayLine{Kind: entity.LineContent, Text: line})
		}
	}
	return out, nil
}

func formatHeader(s *entity.Surah) string {
	return fmt.Sprintf("Surah %s (%s) - %s - %s", s.NameEn, s.NameEnTranslation, s.Type, s.NameAr)
}

// findVerse returns nil without error when the item does not exist.
func (r *referenceRepository) findVerse(ctx context.Context, table string, ref reference.Reference) (*entity.Verse, error) {
	if r.cache != nil {
		if v, ok := r.cache.GetVerse(ctx, table, ref); ok {
			return v, nil
		}
	}

	var ayah model.Ayah
	err := r.db.WithContext(ctx).
		Where("surah_id = ? AND number_in_surah = ?", ref.Collection, ref.Item).
		First(&ayah).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find ayah %s: %w", ref, err)
	}

	var translation *model.Translation
	var t model.Translation
	cacheable := true
	err = r.db.WithContext(ctx).Table(table).Where("ayah_id = ?", ayah.Number).Take(&t).Error
	switch {
	case err == nil:
		translation = &t
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		cacheable = false
		r.logger.Warn(logger.ModuleStorage, "Translation lookup failed", map[string]interface{}{
			"reference": ref.String(),
			"table":     table,
			"error":     err.Error(),
		})
	}

	verse := r.mapper.VerseToEntity(&ayah, translation)
	if r.cache != nil && cacheable {
		r.cache.SetVerse(ctx, table, ref, verse)
	}
	return verse, nil
}

func (r *referenceRepository) findSurah(ctx context.Context, id int) (*entity.Surah, error) {
	if r.cache != nil {
		if s, ok := r.cache.GetSurah(ctx, id); ok {
			return s, nil
		}
	}

	var m model.Surah
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find surah %d: %w", id, err)
	}

	surah := r.mapper.SurahToEntity(&m)
	if r.cache != nil {
		r.cache.SetSurah(ctx, surah)
	}
	return surah, nil
}
