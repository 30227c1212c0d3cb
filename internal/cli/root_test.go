package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/objview/pkg/errors"
	"github.com/matzehuels/objview/pkg/export"
)

const listImage = "../../pkg/target/image/testdata/list.yaml"

// execute runs the root command with args and returns what it printed.
// The user config directory points at an empty temp dir.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var out bytes.Buffer
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	want := []string{"completion", "export", "serve", "view", "walk"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("--config flag missing")
	}
}

func TestVersionTemplate(t *testing.T) {
	out, err := execute(t, "--version")
	if err != nil {
		t.Fatalf("--version: %v", err)
	}
	if !strings.HasPrefix(out, "objview dev") {
		t.Errorf("version output = %q", out)
	}
}

func TestCompletion(t *testing.T) {
	out, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion bash: %v", err)
	}
	if !strings.Contains(out, "objview") {
		t.Error("bash completion does not mention objview")
	}

	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("completion tcsh: expected error")
	}
}

func TestWalkCommand(t *testing.T) {
	out, err := execute(t, "walk", "-i", listImage)
	if err != nil {
		t.Fatalf("walk: %v", err)
	}

	for _, want := range []string{
		"heap",
		"object root@0x1000 (18 bytes)",
		"object list@0x1040 (16 bytes)",
		"object list@0x1060 (16 bytes)",
		"-> list@0x1060.next",
		"3 nodes",
		`view -i ` + listImage + ` -r 0x1000 -t "root"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWalkCommandFlags(t *testing.T) {
	out, err := execute(t, "walk", "-i", listImage, "-r", "0x1060", "-t", "struct list", "-q")
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if strings.Contains(out, "object ") {
		t.Error("--quiet still dumped objects")
	}
	if !strings.Contains(out, "list@0x1060") || !strings.Contains(out, "2 nodes") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = execute(t, "walk", "-i", listImage, "--max-depth", "1", "-q")
	if err != nil {
		t.Fatalf("walk --max-depth: %v", err)
	}
	if !strings.Contains(out, "2 nodes") {
		t.Errorf("max depth 1 should stop below the first list element:\n%s", out)
	}
}

func TestWalkCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"missing image flag", []string{"walk"}, ""},
		{"root and register", []string{"walk", "-i", listImage, "-r", "root", "--register", "rdi"}, ""},
		{"missing image file", []string{"walk", "-i", "nope.yaml"}, errors.ErrCodeInvalidImage},
		{"bad address", []string{"walk", "-i", listImage, "-r", "nowhere"}, errors.ErrCodeInvalidAddress},
		{"unknown register", []string{"walk", "-i", listImage, "--register", "r15"}, errors.ErrCodeInvalidAddress},
		{"undefined type", []string{"walk", "-i", listImage, "-t", "ghost"}, errors.ErrCodeObjectNotDefined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.code != "" && !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestWalkCommandBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("grid_size = -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := execute(t, "--config", path, "walk", "-i", listImage)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestExportCommandJSON(t *testing.T) {
	out, err := execute(t, "export", "-i", listImage)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	var snap export.Snapshot
	if err := json.Unmarshal([]byte(out), &snap); err != nil {
		t.Fatalf("output is not a snapshot: %v\n%s", err, out)
	}
	if len(snap.Nodes) != 3 {
		t.Errorf("nodes = %d, want 3", len(snap.Nodes))
	}
	if len(snap.Edges) != 2 {
		t.Errorf("edges = %d, want 2", len(snap.Edges))
	}
	if snap.Session == "" {
		t.Error("snapshot has no session id")
	}
}

func TestExportCommandFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.dot")
	out, err := execute(t, "export", "-i", listImage, "-f", "DOT", "-o", path)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("output does not name the file:\n%s", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "digraph G {") {
		t.Errorf("not a DOT file:\n%s", data)
	}
	if !strings.Contains(string(data), `"list@0x1040"`) {
		t.Error("DOT misses list@0x1040")
	}
}

func TestExportCommandUnknownFormat(t *testing.T) {
	_, err := execute(t, "export", "-i", listImage, "-f", "png")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}
