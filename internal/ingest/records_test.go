package ingest

import (
	"errors"
	"strings"
	"testing"

	"authorid/internal/corpus"
)

func TestReadRecords(t *testing.T) {
	input := strings.Join([]string{
		`{"user_id":"u1","text":"Great tacos.","stars":5,"business_id":"b9"}`,
		``,
		`{"user_id":"u2","text":"Never again."}`,
	}, "\n")

	recs, err := ReadRecords(strings.NewReader(input), Options{})
	if err != nil {
		t.Fatalf("read records: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].UserID != "u1" || recs[0].Text != "Great tacos." {
		t.Fatalf("unexpected first record: %+v", recs[0])
	}
}

func TestReadRecordsMalformedLineNumber(t *testing.T) {
	input := strings.Join([]string{
		`{"user_id":"u1","text":"fine"}`,
		`{"user_id":"u2"}`,
	}, "\n")

	_, err := ReadRecords(strings.NewReader(input), Options{})
	if !errors.Is(err, corpus.ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected line number in error, got %v", err)
	}
}

func TestReadRecordsSkipMalformed(t *testing.T) {
	input := strings.Join([]string{
		`{"user_id":"u1","text":"fine"}`,
		`not json at all`,
		`{"user_id":"u3","text":"also fine"}`,
	}, "\n")

	recs, err := ReadRecords(strings.NewReader(input), Options{SkipMalformed: true})
	if err != nil {
		t.Fatalf("read records: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 kept records, got %d", len(recs))
	}
}

func TestReadRecordsStripHTML(t *testing.T) {
	input := `{"user_id":"u1","text":"Nice place.<br /><br />Loud &amp; crowded though."}`

	recs, err := ReadRecords(strings.NewReader(input), Options{StripHTML: true})
	if err != nil {
		t.Fatalf("read records: %v", err)
	}
	want := "Nice place. Loud & crowded though."
	if recs[0].Text != want {
		t.Fatalf("expected %q, got %q", want, recs[0].Text)
	}
}

func TestStripTagsPlainTextUntouched(t *testing.T) {
	if got := StripTags("no markup here"); got != "no markup here" {
		t.Fatalf("plain text changed: %q", got)
	}
}
