package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCommandDebugFrames(t *testing.T) {
	out, _, err := execute(t, "test\nTest\ntest\n", "-i", "--debug")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if want := "1\ttest\n2\ttest\n3\ttest\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestCommandInteractiveFrames(t *testing.T) {
	out, _, err := execute(t, "b\na\na\n", "-r")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	const erase = "\x1b[F\x1b[K"
	want := "1\tb\n" +
		erase + "1\tb\n1\ta\n" +
		erase + erase + "1\tb\n2\ta\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestCommandSkipAndHead(t *testing.T) {
	in := "1 x\n2 y\n3 x\n4 z\n5 x\n6 y\n"
	out, _, err := execute(t, in, "-f", "1", "-n", "2", "--debug", "--max-lines", "6")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	frames := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	last := strings.Join(frames[len(frames)-2:], "\n")
	if want := "3\tx\n2\ty"; last != want {
		t.Errorf("last frame = %q, want %q", last, want)
	}
}

func TestCommandFiles(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.txt")
	outPath := filepath.Join(dir, "out.txt")
	if err := os.WriteFile(inPath, []byte("a\r\nb\r\na\r\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := execute(t, "", "--debug", inPath, outPath)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want nothing", stdout)
	}
	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if want := "1\ta\n1\ta\n1\tb\n2\ta\n1\tb\n"; string(got) != want {
		t.Errorf("output file = %q, want %q", got, want)
	}
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"negative fields", "", []string{"-f=-1"}, "-f must be >= 0"},
		{"negative chars", "", []string{"-s=-2"}, "-s must be >= 0"},
		{"negative head", "", []string{"-n=-1"}, "-n must be >= 0"},
		{"bad sketch", "", []string{"--approx-k", "5", "--sketch-depth", "0"}, "depth must be >= 1"},
		{"tui with output", "", []string{"--tui", "-", "out.txt"}, "choose only one"},
		{"missing input", "", []string{filepath.Join(t.TempDir(), "nope")}, "open input"},
		{"invalid encoding", "ok\n\xff\n", []string{"--debug"}, "invalid UTF-8"},
		{"too many args", "", []string{"a", "b", "c"}, "accepts at most 2 arg(s)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.stdin, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestValidateAndNormalizeConfig(t *testing.T) {
	config := defaultConfig()
	config.InputPath = "-"
	config.ApproxK = 7
	config.StatsWindow = 1
	if err := validateAndNormalizeConfig(&config); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if config.InputPath != "" {
		t.Errorf("InputPath = %q, want stdin", config.InputPath)
	}
	if config.Sketch.K != 7 {
		t.Errorf("Sketch.K = %d, want 7", config.Sketch.K)
	}
	if config.StatsWindow != 16 {
		t.Errorf("StatsWindow = %d, want 16", config.StatsWindow)
	}
}

func TestRunApproximate(t *testing.T) {
	config := defaultConfig()
	config.Debug = true
	config.ApproxK = 2
	if err := validateAndNormalizeConfig(&config); err != nil {
		t.Fatalf("validate: %v", err)
	}

	var out bytes.Buffer
	if err := run(config, strings.NewReader("a\na\nb\n"), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if want := "1\ta\n2\ta\n2\ta\n1\tb\n"; out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}
