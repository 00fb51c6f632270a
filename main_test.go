package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunQuit(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run(nil, strings.NewReader("uci\nisready\nquit\n"), &out, &errOut)
	if code != exitOK {
		t.Fatalf("exit code %d, stderr:\n%s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "uciok") || !strings.Contains(out.String(), "readyok") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestRunEndOfInputFinishesSearch(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run(nil, strings.NewReader("position startpos\ngo depth 3\n"), &out, &errOut)
	if code != exitOK {
		t.Fatalf("exit code %d", code)
	}
	if !strings.Contains(out.String(), "bestmove ") {
		t.Fatalf("no bestmove before exit:\n%s", out.String())
	}
}

func TestRunLogsOnlyToStderr(t *testing.T) {
	var out, errOut bytes.Buffer
	run([]string{"-log-level", "debug"}, strings.NewReader("bogus\nquit\n"), &out, &errOut)
	if strings.Contains(out.String(), "command-failed") {
		t.Fatal("log line leaked to stdout")
	}
	if !strings.Contains(errOut.String(), "command-failed") {
		t.Fatalf("warning missing from stderr:\n%s", errOut.String())
	}
}

func TestRunBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"engine": {"hash_mb": -3}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	var out, errOut bytes.Buffer
	if code := run([]string{"-config", path}, strings.NewReader("quit\n"), &out, &errOut); code != exitConfig {
		t.Fatalf("exit code %d, want %d", code, exitConfig)
	}
	if out.Len() != 0 {
		t.Fatalf("bad config wrote to stdout: %s", out.String())
	}
	if code := run([]string{"-log-level", "shouty"}, strings.NewReader("quit\n"), &out, &errOut); code != exitConfig {
		t.Fatalf("bad log level exit code %d, want %d", code, exitConfig)
	}
}

func TestRunBadFlag(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := run([]string{"-threads", "4"}, strings.NewReader(""), &out, &errOut); code != exitUsage {
		t.Fatalf("exit code %d, want %d", code, exitUsage)
	}
}
