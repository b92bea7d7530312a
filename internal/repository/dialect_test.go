package repository

import (
	"database/sql"
	"testing"
	"time"
)

func TestDialect_Rebind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		d    Dialect
		in   string
		want string
	}{
		{"sqlite untouched", SQLite, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = ? AND b = ?"},
		{"postgres numbered", Postgres, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = $1 AND b = $2"},
		{"postgres skips literals", Postgres, "UPDATE t SET s = 'why?' WHERE id = ?", "UPDATE t SET s = 'why?' WHERE id = $1"},
		{"no placeholders", Postgres, "SELECT COUNT(*) FROM t", "SELECT COUNT(*) FROM t"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.d.Rebind(tt.in); got != tt.want {
				t.Fatalf("Rebind(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDialectFor(t *testing.T) {
	t.Parallel()
	if DialectFor(" Postgres ") != Postgres {
		t.Fatalf("postgres driver not recognised")
	}
	if DialectFor("sqlite") != SQLite || DialectFor("") != SQLite {
		t.Fatalf("sqlite should be the fallback dialect")
	}
}

func TestFormatTime_FixedWidthUTC(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+3", 3*3600)
	in := time.Date(2025, 6, 1, 12, 0, 0, 5, loc)

	got := formatTime(in)
	if got != "2025-06-01T09:00:00.000000005Z" {
		t.Fatalf("formatTime = %q", got)
	}
	back, err := parseTime(got)
	if err != nil || !back.Equal(in) || back.Location() != time.UTC {
		t.Fatalf("parseTime round trip: %v, %v", back, err)
	}

	// lexical order must match chronological order
	if formatTime(in.Add(time.Second)) <= got {
		t.Fatalf("later time should sort after earlier time")
	}
}

func TestParseNullTime(t *testing.T) {
	t.Parallel()

	if ts, err := parseNullTime(sql.NullString{}); ts != nil || err != nil {
		t.Fatalf("NULL should parse to nil, got %v, %v", ts, err)
	}
	if _, err := parseNullTime(sql.NullString{String: "garbage", Valid: true}); err == nil {
		t.Fatalf("expected error for garbage timestamp")
	}
	ts, err := parseNullTime(sql.NullString{String: "2025-01-02T03:04:05Z", Valid: true})
	if err != nil || ts == nil || ts.Hour() != 3 {
		t.Fatalf("RFC3339 fallback failed: %v, %v", ts, err)
	}
}

func TestPageArgs(t *testing.T) {
	t.Parallel()
	if l, o := pageArgs(0, -5); l != 100 || o != 0 {
		t.Fatalf("pageArgs defaults = %d, %d", l, o)
	}
	if l, o := pageArgs(10, 30); l != 10 || o != 30 {
		t.Fatalf("pageArgs passthrough = %d, %d", l, o)
	}
}
