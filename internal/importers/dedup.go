package importers

import "github.com/mrlokans/readinglog/internal/entities"

// DuplicateIndex is the set of duplicate keys seen during one import call.
// It is built per call and never shared between requests.
type DuplicateIndex struct {
	keys map[entities.DuplicateKey]struct{}
}

func NewDuplicateIndex() *DuplicateIndex {
	return &DuplicateIndex{keys: make(map[entities.DuplicateKey]struct{})}
}

// Seed adds the keys of books already stored for the caller.
func (d *DuplicateIndex) Seed(existing []entities.TitleAuthor) {
	for _, ta := range existing {
		author := ""
		if ta.Author != nil {
			author = *ta.Author
		}
		d.keys[entities.NewDuplicateKey(ta.Title, author)] = struct{}{}
	}
}

// CheckAndInsert returns true and records the key if it was not seen yet.
func (d *DuplicateIndex) CheckAndInsert(key entities.DuplicateKey) bool {
	if _, exists := d.keys[key]; exists {
		return false
	}
	d.keys[key] = struct{}{}
	return true
}
