package database

import (
	"testing"
	"testing/fstest"
)

func TestPendingMigrations(t *testing.T) {
	files := fstest.MapFS{
		"002_console_login_logs.sql": {Data: []byte("CREATE TABLE b();")},
		"001_console_sessions.sql":   {Data: []byte("CREATE TABLE a();")},
		"999_reset_everything.sql":   {Data: []byte("DROP TABLE a;")},
		"embed.go":                   {Data: []byte("package migrations")},
	}

	got, err := PendingMigrations(files, map[string]bool{})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"001_console_sessions.sql", "002_console_login_logs.sql"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pending[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	got, err = PendingMigrations(files, map[string]bool{"001_console_sessions.sql": true})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "002_console_login_logs.sql" {
		t.Errorf("after applying 001: %v", got)
	}
}
