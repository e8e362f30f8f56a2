// FILE: internal/mapper/quran_mapper.go
// Mapper for reference text model -> entity conversion
package mapper

import (
	"quran-irc-bot/internal/entity"
	"quran-irc-bot/internal/model"
)

type QuranMapper struct{}

func NewQuranMapper() *QuranMapper {
	return &QuranMapper{}
}

func (m *QuranMapper) SurahToEntity(s *model.Surah) *entity.Surah {
	if s == nil {
		return nil
	}
	return &entity.Surah{
		Id:                s.Id,
		NameAr:            s.NameAr,
		NameEn:            s.NameEn,
		NameEnTranslation: s.NameEnTranslation,
		Type:              s.Type,
	}
}

// VerseToEntity joins an ayah with its translation row, which may be nil.
func (m *QuranMapper) VerseToEntity(a *model.Ayah, t *model.Translation) *entity.Verse {
	if a == nil {
		return nil
	}
	v := &entity.Verse{
		SurahId:       a.SurahId,
		NumberInSurah: a.NumberInSurah,
		Number:        a.Number,
		Text:          a.Text,
	}
	if t != nil {
		v.Translation = t.Data
		v.HasTranslation = true
	}
	return v
}
