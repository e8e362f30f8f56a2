package model

// Surah rows are read-only reference data.
type Surah struct {
	Id                int    `gorm:"primaryKey"`
	NameAr            string `gorm:"column:name_ar"`
	NameEn            string `gorm:"column:name_en"`
	NameEnTranslation string `gorm:"column:name_en_translation"`
	Type              string `gorm:"column:type"`
}

func (Surah) TableName() string {
	return "surahs"
}

// Ayah holds the original text.
type Ayah struct {
	Id            int    `gorm:"primaryKey"`
	SurahId       int    `gorm:"not null;index:idx_arabic_surah_ayah"`
	NumberInSurah int    `gorm:"not null;index:idx_arabic_surah_ayah"`
	Number        int    `gorm:"not null;uniqueIndex"`
	Text          string `gorm:"type:text"`
}

func (Ayah) TableName() string {
	return "arabic"
}

// Translation rows live in one table per language; callers pick the table
// with db.Table.
type Translation struct {
	Id     int    `gorm:"primaryKey"`
	AyahId int    `gorm:"not null;index"`
	Data   string `gorm:"type:text"`
}
