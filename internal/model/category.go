package model

// Category groups games.  It corresponds to a row in the `categories`
// table and owns its games: deleting a category deletes them too.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – required display name (at most 100 characters).
//  Description – optional free text.
type Category struct {
	ID          uint64  `json:"id"`          // categories.id
	Name        string  `json:"name"`        // categories.name
	Description *string `json:"description"` // categories.description (nullable)
}

// String returns the category name, mirroring how it is shown in listings.
func (c Category) String() string { return c.Name }
