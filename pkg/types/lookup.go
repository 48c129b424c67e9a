package types

// Category is a flat lookup entity (sector classification). Names are
// unique; deleting a category nulls the reference on all items instead of
// cascading.
type Category struct {
	CategoryID string
	Name       string
}

// Series is a flat lookup entity grouping two or more catalog items.
// Same uniqueness and deletion rules as Category.
type Series struct {
	SeriesID string
	Name     string
}

// NoLookupName is the display name used when an item has no category or
// series assigned.
const NoLookupName = "none"
