package timetable

import (
	"errors"
	"testing"

	"github.com/JameDevOfficial/WebUntisTest/internal/untis"
)

func TestCatalogAddIfAbsent(t *testing.T) {
	c := NewCatalog(nil)

	first := Element{Kind: KindRoom, ID: 10, Name: "R101", LongName: "Raum 101"}
	if !c.AddIfAbsent(first) {
		t.Fatal("first insert should succeed")
	}

	// Same identifier from a later week: silently dropped, first-seen wins
	duplicate := Element{Kind: KindRoom, ID: 10, Name: "R101-renamed", LongName: "Other"}
	if c.AddIfAbsent(duplicate) {
		t.Error("duplicate insert should be dropped")
	}

	got, err := c.Resolve(KindRoom, 10)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.Name != "R101" || got.LongName != "Raum 101" {
		t.Errorf("first-seen entity mutated: %+v", got)
	}

	// Same identifier, different kind, is a distinct entity
	if !c.AddIfAbsent(Element{Kind: KindCourse, ID: 10, Name: "GK"}) {
		t.Error("same id under different kind should insert")
	}
	if c.Len() != 2 {
		t.Errorf("catalog size = %d, want 2", c.Len())
	}
}

func TestCatalogCourseNameOverride(t *testing.T) {
	c := NewCatalog(map[string]string{"GK": "Gemeinschaftskunde"})

	c.AddIfAbsent(Element{Kind: KindCourse, ID: 1, Name: "GK", LongName: "GK lang"})
	c.AddIfAbsent(Element{Kind: KindCourse, ID: 2, Name: "Wi", LongName: "Wirtschaft"})
	c.AddIfAbsent(Element{Kind: KindRoom, ID: 3, Name: "GK", LongName: "GK Raum"})

	gk, _ := c.Resolve(KindCourse, 1)
	if gk.LongName != "Gemeinschaftskunde" {
		t.Errorf("override not applied, long name = %q", gk.LongName)
	}

	wi, _ := c.Resolve(KindCourse, 2)
	if wi.LongName != "Wirtschaft" {
		t.Errorf("unmapped course renamed, long name = %q", wi.LongName)
	}

	// Overrides only apply to courses
	room, _ := c.Resolve(KindRoom, 3)
	if room.LongName != "GK Raum" {
		t.Errorf("room renamed by course override, long name = %q", room.LongName)
	}
}

func TestCatalogResolveNotFound(t *testing.T) {
	c := NewCatalog(nil)

	_, err := c.Resolve(KindRoom, 99)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Resolve(99) error = %v, want NotFoundError", err)
	}
}

func TestCatalogResolveByLongName(t *testing.T) {
	c := NewCatalog(nil)
	c.AddIfAbsent(Element{Kind: KindCourse, ID: 1, Name: "D", LongName: "Deutsch"})
	c.AddIfAbsent(Element{Kind: KindCourse, ID: 2, Name: "D2", LongName: "Deutsch"})
	c.AddIfAbsent(Element{Kind: KindCourse, ID: 3, Name: "M", LongName: "Mathematik"})

	t.Run("unique match", func(t *testing.T) {
		got, err := c.ResolveByLongName(KindCourse, "Mathematik")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID != 3 {
			t.Errorf("resolved id = %d, want 3", got.ID)
		}
	})

	t.Run("ambiguous match", func(t *testing.T) {
		_, err := c.ResolveByLongName(KindCourse, "Deutsch")
		var ambiguous *AmbiguousError
		if !errors.As(err, &ambiguous) {
			t.Fatalf("error = %v, want AmbiguousError", err)
		}
		if ambiguous.Matches != 2 {
			t.Errorf("Matches = %d, want 2", ambiguous.Matches)
		}
	})

	t.Run("no match", func(t *testing.T) {
		_, err := c.ResolveByLongName(KindRoom, "Mathematik")
		var notFound *NotFoundError
		if !errors.As(err, &notFound) {
			t.Fatalf("error = %v, want NotFoundError", err)
		}
	})
}

func TestCatalogIngest(t *testing.T) {
	c := NewCatalog(nil)

	elements := []untis.RawElement{
		{Type: untis.ElementTypeRoom, ID: 10, Name: "R101", LongName: "Raum 101", RoomCapacity: 30},
		{Type: untis.ElementTypeCourse, ID: 20, Name: "GK", LongName: "Gemeinschaftskunde"},
		{Type: 1, ID: 30, Name: "10a"}, // class, not referenced by the converter
		{Type: untis.ElementTypeRoom, ID: 10, Name: "R101-other"}, // duplicate week
	}

	c.Ingest(elements)
	c.Ingest(elements) // second week re-ingests everything

	if c.Len() != 2 {
		t.Fatalf("catalog size = %d, want 2", c.Len())
	}

	room, err := c.Resolve(KindRoom, 10)
	if err != nil {
		t.Fatalf("room not ingested: %v", err)
	}
	if room.Capacity != 30 || room.Name != "R101" {
		t.Errorf("room fields wrong: %+v", room)
	}

	if _, err := c.Resolve(KindCourse, 20); err != nil {
		t.Errorf("course not ingested: %v", err)
	}
}
