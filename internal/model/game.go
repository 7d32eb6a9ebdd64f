package model

import "time"

// Game is a catalog entry.  Each game belongs to exactly one category and
// owns its comments.  CoverImage is an opaque storage reference resolved
// to a URL by the asset storage.
//
// Fields:
//  ID              – primary key identifier.
//  CategoryID      – owning category.
//  Title           – required title (at most 200 characters).
//  Description     – required long description (markdown).
//  MinRequirements – optional minimum system requirements.
//  MaxRequirements – optional recommended system requirements.
//  CoverImage      – storage reference of the cover image, may be empty.
//  TrailerURL      – optional trailer link.
//  DownloadLink    – required download link.
//  ReleaseDate     – calendar date of release (time part is zero, UTC).
type Game struct {
	ID              uint64    `json:"id"`               // games.id
	CategoryID      uint64    `json:"category_id"`      // games.category_id
	Title           string    `json:"title"`            // games.title
	Description     string    `json:"description"`      // games.description
	MinRequirements *string   `json:"min_requirements"` // games.min_requirements (nullable)
	MaxRequirements *string   `json:"max_requirements"` // games.max_requirements (nullable)
	CoverImage      string    `json:"cover_image"`      // games.cover_image
	TrailerURL      *string   `json:"trailer_url"`      // games.trailer_url (nullable)
	DownloadLink    string    `json:"download_link"`    // games.download_link
	ReleaseDate     time.Time `json:"-"`                // games.release_date
}

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

// ReleaseDay formats the release date as YYYY-MM-DD.
func (g Game) ReleaseDay() string { return g.ReleaseDate.Format(DateLayout) }

// String returns the game title.
func (g Game) String() string { return g.Title }
