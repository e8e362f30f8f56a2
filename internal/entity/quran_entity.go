// FILE: internal/entity/quran_entity.go
// Domain entities for resolved reference text
package entity

// Surah is the metadata of one collection.
type Surah struct {
	Id                int
	NameAr            string
	NameEn            string
	NameEnTranslation string
	Type              string // Meccan or Medinan
}

// Verse is one item with its translation in a single language.
type Verse struct {
	SurahId        int
	NumberInSurah  int
	Number         int // Global item number, key of every translation table
	Text           string
	Translation    string
	HasTranslation bool
}

type LineKind int

const (
	LineHeader LineKind = iota
	LineContent
)

// DisplayLine is one formatted output line. A header opens a group; content
// lines belong to the most recent header.
type DisplayLine struct {
	Kind LineKind
	Text string
}
