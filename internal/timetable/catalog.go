package timetable

import (
	"strconv"

	"github.com/JameDevOfficial/WebUntisTest/internal/untis"
)

// ElementKind distinguishes the two reference entity types
type ElementKind int

const (
	KindRoom ElementKind = iota + 1
	KindCourse
)

// String returns a human readable kind name
func (k ElementKind) String() string {
	switch k {
	case KindRoom:
		return "room"
	case KindCourse:
		return "course"
	default:
		return "unknown"
	}
}

// Element is a deduplicated reference entity (a room or a course).
// Immutable once inserted into the catalog.
type Element struct {
	Kind          ElementKind
	ID            int
	Name          string // short name
	LongName      string
	DisplayName   string
	AlternateName string
	Capacity      int
}

type catalogKey struct {
	kind ElementKind
	id   int
}

// Catalog holds deduplicated reference entities keyed by (kind, id).
// First-seen wins: re-ingesting an identifier from a later week never
// creates a duplicate or mutates the stored entity.
type Catalog struct {
	entities    map[catalogKey]*Element
	order       []catalogKey // insertion order
	courseNames map[string]string
}

// NewCatalog creates an empty catalog. courseNames maps a course short
// name to a replacement long name applied once, at insertion time.
func NewCatalog(courseNames map[string]string) *Catalog {
	return &Catalog{
		entities:    make(map[catalogKey]*Element),
		courseNames: courseNames,
	}
}

// AddIfAbsent inserts an entity unless one with the same (kind, id)
// already exists. Returns true when the entity was inserted.
func (c *Catalog) AddIfAbsent(e Element) bool {
	key := catalogKey{kind: e.Kind, id: e.ID}
	if _, ok := c.entities[key]; ok {
		return false
	}

	if e.Kind == KindCourse {
		if replacement, ok := c.courseNames[e.Name]; ok {
			e.LongName = replacement
		}
	}

	c.entities[key] = &e
	c.order = append(c.order, key)
	return true
}

// Ingest adds every room and course of a raw element list. Elements of
// other types (classes, teachers) are not referenced by the converter
// and are skipped.
func (c *Catalog) Ingest(elements []untis.RawElement) {
	for _, raw := range elements {
		var kind ElementKind
		switch raw.Type {
		case untis.ElementTypeRoom:
			kind = KindRoom
		case untis.ElementTypeCourse:
			kind = KindCourse
		default:
			continue
		}

		c.AddIfAbsent(Element{
			Kind:          kind,
			ID:            raw.ID,
			Name:          raw.Name,
			LongName:      raw.LongName,
			DisplayName:   raw.DisplayName,
			AlternateName: raw.AlternateName,
			Capacity:      raw.RoomCapacity,
		})
	}
}

// Resolve returns the entity with the given kind and identifier.
// Failure is a hard error, never a skip.
func (c *Catalog) Resolve(kind ElementKind, id int) (*Element, error) {
	e, ok := c.entities[catalogKey{kind: kind, id: id}]
	if !ok {
		return nil, &NotFoundError{Kind: kind, Key: "id " + strconv.Itoa(id)}
	}
	return e, nil
}

// ResolveByLongName returns the unique entity of the given kind whose
// long name equals name. Used by the round-trip path, where only the
// rendered text survives. Zero or multiple matches fail.
func (c *Catalog) ResolveByLongName(kind ElementKind, name string) (*Element, error) {
	var found *Element
	matches := 0
	for _, key := range c.order {
		e := c.entities[key]
		if e.Kind == kind && e.LongName == name {
			found = e
			matches++
		}
	}

	switch matches {
	case 0:
		return nil, &NotFoundError{Kind: kind, Key: "long name " + strconv.Quote(name)}
	case 1:
		return found, nil
	default:
		return nil, &AmbiguousError{Kind: kind, Key: "long name " + strconv.Quote(name), Matches: matches}
	}
}

// Len returns the number of stored entities
func (c *Catalog) Len() int {
	return len(c.entities)
}
