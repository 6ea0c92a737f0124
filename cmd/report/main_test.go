package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "urls.cfg"), "web=https://web.example\nbad=https://bad.example\n")
	now := time.Now().UTC().Truncate(time.Second)
	web := now.Format("2006-01-02 15:04:05") + ",success\n" + now.Add(-time.Minute).Format("2006-01-02 15:04:05") + ",failure\n"
	writeFile(t, filepath.Join(dir, "web_report.log"), web)
	writeFile(t, filepath.Join(dir, "bad_report.log"), "2024-01-15 10:00:00 success\n")

	t.Setenv("LOG_SOURCE", "file")
	t.Setenv("LOGS_DIR", dir)
	t.Setenv("TARGETS_FILE", filepath.Join(dir, "urls.cfg"))
	t.Setenv("LOG_DIR", filepath.Join(dir, "applogs"))
	t.Setenv("REPORT_TZ", "UTC")
	return dir
}

func TestRun_JSONWithChartsStaysParseable(t *testing.T) {
	dir := setupEnv(t)
	charts := filepath.Join(dir, "charts")

	var stdout, stderr bytes.Buffer
	err := run(options{format: "json", chartDir: charts, timeout: time.Minute}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "some reports failed") {
		t.Fatalf("partial failure must surface as an error, got %v", err)
	}

	var reps []map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &reps); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout.String())
	}
	if len(reps) != 1 {
		t.Fatalf("want the healthy report only, got %d", len(reps))
	}
	if !strings.Contains(stderr.String(), "web.png") {
		t.Fatalf("chart progress should go to stderr: %q", stderr.String())
	}
	if _, err := os.Stat(filepath.Join(charts, "web.png")); err != nil {
		t.Fatalf("chart not written: %v", err)
	}
}

func TestRun_SingleTargetSucceeds(t *testing.T) {
	setupEnv(t)

	var stdout, stderr bytes.Buffer
	if err := run(options{format: "text", only: "web", timeout: time.Minute}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "web") {
		t.Fatalf("unexpected output %q", stdout.String())
	}
}

func TestRun_UnknownFormat(t *testing.T) {
	setupEnv(t)
	var out bytes.Buffer
	if err := run(options{format: "yaml", only: "web", timeout: time.Minute}, &out, &out); err == nil {
		t.Fatal("want error for unknown format")
	}
}
