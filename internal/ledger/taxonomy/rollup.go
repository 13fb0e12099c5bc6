package taxonomy

import "github.com/moneyd/moneyd/internal/ledger/shared"

// Rollup resolves tag ancestor chains from an in-memory tag set. Storage
// does not enforce acyclicity, so every traversal carries an explicit
// cycle guard and returns shared.ErrTagCycle instead of spinning.
type Rollup struct {
	byID   map[int64]Tag
	byName map[string]Tag
}

// NewRollup indexes tags for ancestor traversal.
func NewRollup(tags []Tag) *Rollup {
	r := &Rollup{
		byID:   make(map[int64]Tag, len(tags)),
		byName: make(map[string]Tag, len(tags)),
	}
	for _, t := range tags {
		r.byID[t.ID] = t
		r.byName[t.Name] = t
	}
	return r
}

// Ancestry returns the tag's name followed by every ancestor name, nearest
// first.
func (r *Rollup) Ancestry(id int64) ([]string, error) {
	tag, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	names := []string{tag.Name}
	visited := map[int64]bool{tag.ID: true}
	for tag.ParentID != nil {
		parent, ok := r.byID[*tag.ParentID]
		if !ok {
			break
		}
		if visited[parent.ID] {
			return nil, shared.ErrTagCycle
		}
		visited[parent.ID] = true
		names = append(names, parent.Name)
		tag = parent
	}
	return names, nil
}

// GroupingName maps a tag name to its nearest ancestor (or itself) flagged
// for grouping. Unknown tags group under themselves, keeping missing
// taxonomy data permissive rather than fatal.
func (r *Rollup) GroupingName(name string) (string, error) {
	tag, ok := r.byName[name]
	if !ok {
		return name, nil
	}
	visited := map[int64]bool{}
	for {
		if visited[tag.ID] {
			return "", shared.ErrTagCycle
		}
		visited[tag.ID] = true
		if tag.UsedForGrouping {
			return tag.Name, nil
		}
		if tag.ParentID == nil {
			return name, nil
		}
		parent, ok := r.byID[*tag.ParentID]
		if !ok {
			return name, nil
		}
		tag = parent
	}
}
