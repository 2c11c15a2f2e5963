package command

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePastaFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "copypasta.toml")
	content := "rust = \"memory safety for everyone\"\nlinux = \"I'd like to interject for a moment\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPastaByName(t *testing.T) {
	cmd := &PastaCommand{Path: writePastaFile(t)}
	payload, err := cmd.Run(&Context{Args: "rust"})
	if err != nil {
		t.Fatal(err)
	}
	if payload != "memory safety for everyone" {
		t.Fatalf("payload = %v", payload)
	}
}

func TestPastaList(t *testing.T) {
	cmd := &PastaCommand{Path: writePastaFile(t)}
	for _, args := range []string{"list", ""} {
		payload, err := cmd.Run(&Context{Args: args})
		if err != nil {
			t.Fatal(err)
		}
		text, ok := payload.(string)
		if !ok {
			t.Fatalf("payload type %T", payload)
		}
		if !strings.Contains(text, "🍝") || !strings.Contains(text, "`linux`") || !strings.Contains(text, "`rust`") {
			t.Fatalf("menu = %q", text)
		}
	}
}

func TestPastaUnknownName(t *testing.T) {
	cmd := &PastaCommand{Path: writePastaFile(t)}
	payload, err := cmd.Run(&Context{Args: "nonexistent"})
	if err != nil {
		t.Fatal(err)
	}
	if payload != "try again loser" {
		t.Fatalf("payload = %v", payload)
	}
}

func TestPastaMissingFileIsEmptyMenu(t *testing.T) {
	cmd := &PastaCommand{Path: filepath.Join(t.TempDir(), "nope.toml")}
	payload, err := cmd.Run(&Context{Args: "list"})
	if err != nil {
		t.Fatal(err)
	}
	if payload != "🍝 the pantry is empty" {
		t.Fatalf("payload = %v", payload)
	}
}
