package implementation

import (
	"testing"

	"quran-irc-bot/internal/model"
	"quran-irc-bot/pkg/database"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewGormDBFromDSN("file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	require.NoError(t, db.AutoMigrate(&model.Surah{}, &model.Ayah{}))
	require.NoError(t, db.AutoMigrate(model.StatsModels()...))
	for _, table := range []string{"english", "urdu"} {
		require.NoError(t, db.Exec("CREATE TABLE " + table + " (id INTEGER PRIMARY KEY, ayah_id INTEGER NOT NULL, data TEXT)").Error)
	}
	return db
}

func seedReferences(t *testing.T, db *gorm.DB) {
	t.Helper()
	surahs := []model.Surah{
		{Id: 1, NameAr: "الفاتحة", NameEn: "Al-Faatiha", NameEnTranslation: "The Opening", Type: "Meccan"},
		{Id: 2, NameAr: "البقرة", NameEn: "Al-Baqara", NameEnTranslation: "The Cow", Type: "Medinan"},
	}
	require.NoError(t, db.Create(&surahs).Error)

	ayahs := []model.Ayah{
		{Id: 1, SurahId: 1, NumberInSurah: 1, Number: 1, Text: "bismillah"},
		{Id: 2, SurahId: 1, NumberInSurah: 2, Number: 2, Text: "alhamdulillah"},
		{Id: 3, SurahId: 1, NumberInSurah: 3, Number: 3, Text: "ar-rahman"},
		{Id: 262, SurahId: 2, NumberInSurah: 255, Number: 262, Text: "allahu la ilaha illa huwa"},
		// Item without collection metadata.
		{Id: 800, SurahId: 5, NumberInSurah: 1, Number: 670, Text: "orphan"},
	}
	require.NoError(t, db.Create(&ayahs).Error)

	translations := map[string][]model.Translation{
		"english": {
			{Id: 1, AyahId: 1, Data: "In the name of God"},
			{Id: 2, AyahId: 2, Data: "All praise is due to God"},
			{Id: 3, AyahId: 262, Data: "God, there is no deity except Him"},
		},
		"urdu": {
			{Id: 1, AyahId: 262, Data: "اللہ"},
		},
	}
	for table, rows := range translations {
		require.NoError(t, db.Table(table).Create(&rows).Error)
	}
}
