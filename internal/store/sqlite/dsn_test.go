package sqlite

import "testing"

func TestParseDSN(t *testing.T) {
	tests := []struct {
		name    string
		dsn     string
		want    string
		wantErr bool
	}{
		{name: "absolute path", dsn: "sqlite:///var/lib/sprites.sqlite", want: "/var/lib/sprites.sqlite"},
		{name: "relative path", dsn: "sqlite://sprites.sqlite", want: "./sprites.sqlite"},
		{name: "explicit relative path", dsn: "sqlite://./data/sprites.sqlite", want: "./data/sprites.sqlite"},
		{name: "memory", dsn: "sqlite://:memory:", want: ":memory:"},
		{name: "query options kept", dsn: "sqlite:///tmp/s.sqlite?mode=ro", want: "/tmp/s.sqlite?mode=ro"},
		{name: "escaped path", dsn: "sqlite:///tmp/my%20sprites.sqlite", want: "/tmp/my sprites.sqlite"},
		{name: "wrong scheme", dsn: "postgres://localhost/sprites", wantErr: true},
		{name: "bad escape", dsn: "sqlite:///tmp/%zz.sqlite", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDSN(tt.dsn)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseDSN(%q): %v", tt.dsn, err)
			}
			if got != tt.want {
				t.Fatalf("parseDSN(%q) = %q, want %q", tt.dsn, got, tt.want)
			}
		})
	}
}

func TestStorePath(t *testing.T) {
	if got := storePath("/tmp/s.sqlite?mode=ro"); got != "/tmp/s.sqlite" {
		t.Fatalf("storePath stripped to %q", got)
	}
	if got := storePath("/tmp/s.sqlite"); got != "/tmp/s.sqlite" {
		t.Fatalf("storePath changed plain path to %q", got)
	}
	if !isMemory(":memory:") || isMemory("/tmp/s.sqlite") {
		t.Fatal("isMemory misclassified DSN")
	}
}
