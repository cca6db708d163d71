package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readArchive(t *testing.T, name string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(name)
	if err != nil {
		t.Fatalf("failed to open report: %v", err)
	}
	defer zr.Close()

	files := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("failed to read %s: %v", f.Name, err)
		}
		files[f.Name] = string(data)
	}
	return files
}

func TestReportClose_WritesArchive(t *testing.T) {
	tmpDir := t.TempDir()
	conf := ReporterConfig{Destination: filepath.Join(tmpDir, "report.zip")}

	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	if r.Name() != conf.Destination {
		t.Errorf("Name() = %q, want %q", r.Name(), conf.Destination)
	}

	stored := filepath.Join(tmpDir, "page.processed.html")
	if err := os.WriteFile(stored, []byte("<p>early</p>"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	r.Store("output", stored)
	r.Store("missing", filepath.Join(tmpDir, "absent.html"))
	r.Store("directory", tmpDir)
	r.StoreData("config.yaml", []byte("version: 1\n"))

	// stored files are read on close
	if err := os.WriteFile(stored, []byte("<p>final</p>"), 0644); err != nil {
		t.Fatalf("failed to rewrite test file: %v", err)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Report.Close() error: %v", err)
	}

	files := readArchive(t, conf.Destination)
	if got := files["output"]; got != "<p>final</p>" {
		t.Errorf("output = %q, want final content", got)
	}
	if got := files["config.yaml"]; got != "version: 1\n" {
		t.Errorf("config.yaml = %q", got)
	}
	if _, ok := files["missing"]; ok {
		t.Error("absent file should not be archived")
	}
	if _, ok := files["directory"]; ok {
		t.Error("directory should not be archived")
	}
	manifest := files["MANIFEST"]
	for _, name := range []string{"output", "missing", "directory", "config.yaml"} {
		if !strings.Contains(manifest, "\t"+name+"\t") {
			t.Errorf("MANIFEST does not list %s:\n%s", name, manifest)
		}
	}
}

func TestReportStore_Overwrite(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	r.Store("output", "a.html")
	// same path is fine
	r.Store("output", "a.html")

	defer func() {
		if recover() == nil {
			t.Error("expected panic when overwriting stored path")
		}
	}()
	r.Store("output", "b.html")
}

func TestReportStoreData_Overwrite(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	r.StoreData("config.yaml", []byte("a"))

	defer func() {
		if recover() == nil {
			t.Error("expected panic when overwriting stored data")
		}
	}()
	r.StoreData("config.yaml", []byte("b"))
}

func TestReportPrepare_Fallback(t *testing.T) {
	conf := ReporterConfig{Destination: filepath.Join(t.TempDir(), "no", "such", "dir", "report.zip")}

	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	defer os.Remove(r.Name())

	if r.Name() == conf.Destination {
		t.Error("expected report to be redirected to a temporary file")
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}

func TestReportClose_NilReport(t *testing.T) {
	var r *Report
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
	// nil report silently ignores everything
	r.Store("x", "y")
	r.StoreData("x", nil)
	if r.Name() != "" {
		t.Errorf("Name() on nil report = %q", r.Name())
	}
}

func TestReportClose_NilFile(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.Close(); err != nil {
		t.Errorf("Close with nil file should not error, got: %v", err)
	}
}
