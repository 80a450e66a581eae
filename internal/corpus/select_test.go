package corpus

import (
	"reflect"
	"testing"
)

func selectorFixture() []Record {
	return []Record{
		{UserID: "carol", Text: "c1"},
		{UserID: "alice", Text: "a1"},
		{UserID: "bob", Text: "b1"},
		{UserID: "alice", Text: "a2"},
		{UserID: "bob", Text: "b2"},
		{UserID: "alice", Text: "a3"},
		{UserID: "bob", Text: "b3"},
		{UserID: "dave", Text: "d1"},
	}
}

func TestSelectTopAuthorsRankAndCap(t *testing.T) {
	recs := selectorFixture()
	c, err := Aggregate(recs, nil)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	samples, ranked, err := SelectTopAuthors(c, recs, 2, 2)
	if err != nil {
		t.Fatalf("select: %v", err)
	}

	// alice and bob both have 3 records; tie broken lexically.
	if !reflect.DeepEqual(ranked, []string{"alice", "bob"}) {
		t.Fatalf("expected ranked [alice bob], got %v", ranked)
	}

	want := []LabeledText{
		{Author: "alice", Text: "a1"},
		{Author: "bob", Text: "b1"},
		{Author: "alice", Text: "a2"},
		{Author: "bob", Text: "b2"},
	}
	if !reflect.DeepEqual(samples, want) {
		t.Fatalf("expected capped samples in original order, got %v", samples)
	}
}

func TestSelectTopAuthorsDeterministic(t *testing.T) {
	recs := selectorFixture()
	c, err := Aggregate(recs, nil)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	_, first, err := SelectTopAuthors(c, recs, 3, 10)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	for n := 0; n < 5; n++ {
		_, again, err := SelectTopAuthors(c, recs, 3, 10)
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("ranking changed between runs: %v vs %v", first, again)
		}
	}
}

func TestSelectTopAuthorsTooFew(t *testing.T) {
	recs := []Record{{UserID: "only", Text: "x"}}
	c, err := Aggregate(recs, nil)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if _, _, err := SelectTopAuthors(c, recs, 5, 10); err == nil {
		t.Fatal("expected error when corpus has fewer authors than requested")
	}
}

func TestFilterByLength(t *testing.T) {
	recs := []Record{
		{UserID: "long", Text: "0123456789"},
		{UserID: "short", Text: "0123"},
	}
	c, err := Aggregate(recs, nil)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	kept := FilterByLength(c, 5)
	if kept.Len() != 1 || kept.Authors[0] != "long" {
		t.Fatalf("expected only long author kept, got %v", kept.Authors)
	}

	// Threshold is strict: an author at exactly the threshold is dropped.
	kept = FilterByLength(c, 10)
	if kept.Len() != 0 {
		t.Fatalf("expected no authors at strict threshold, got %v", kept.Authors)
	}
}
