package gradle

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSetPropertyCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), PropertiesFile)

	if err := SetProperty(path, "guavaVersion", "33.0.0-jre"); err != nil {
		t.Fatalf("SetProperty: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "guavaVersion=33.0.0-jre\n" {
		t.Errorf("content = %q", data)
	}
}

func TestSetPropertyAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), PropertiesFile)
	if err := os.WriteFile(path, []byte("org.gradle.jvmargs=-Xmx2g\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := SetProperty(path, "kotlinVersion", "2.0.0"); err != nil {
		t.Fatalf("SetProperty: %v", err)
	}

	data, _ := os.ReadFile(path)
	want := "org.gradle.jvmargs=-Xmx2g\nkotlinVersion=2.0.0\n"
	if string(data) != want {
		t.Errorf("content = %q, want %q", data, want)
	}
}

func TestSetPropertyReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), PropertiesFile)
	if err := os.WriteFile(path, []byte("kotlinVersion=1.9.0\nother=x\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := SetProperty(path, "kotlinVersion", "2.0.0"); err != nil {
		t.Fatalf("SetProperty: %v", err)
	}

	data, _ := os.ReadFile(path)
	want := "kotlinVersion=2.0.0\nother=x\n"
	if string(data) != want {
		t.Errorf("content = %q, want %q", data, want)
	}
}

func TestSetPropertyRewritesAllDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), PropertiesFile)
	if err := os.WriteFile(path, []byte("v=1\nv=2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := SetProperty(path, "v", "3"); err != nil {
		t.Fatalf("SetProperty: %v", err)
	}

	data, _ := os.ReadFile(path)
	want := "v=3\nv=3\n"
	if string(data) != want {
		t.Errorf("content = %q, want %q", data, want)
	}
}

func TestSetPropertyDoesNotMatchPrefixKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), PropertiesFile)
	if err := os.WriteFile(path, []byte("version=1\nversionSuffix=beta\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := SetProperty(path, "version", "2"); err != nil {
		t.Fatalf("SetProperty: %v", err)
	}

	data, _ := os.ReadFile(path)
	want := "version=2\nversionSuffix=beta\n"
	if string(data) != want {
		t.Errorf("content = %q, want %q", data, want)
	}
}

func TestSetPropertyNoTrailingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), PropertiesFile)
	if err := os.WriteFile(path, []byte("a=1"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := SetProperty(path, "b", "2"); err != nil {
		t.Fatalf("SetProperty: %v", err)
	}

	data, _ := os.ReadFile(path)
	want := "a=1\nb=2\n"
	if string(data) != want {
		t.Errorf("content = %q, want %q", data, want)
	}
}

func TestReadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, BuildScriptFile)
	if err := os.WriteFile(path, []byte("plugins { id 'java' }\n"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadConfigFile(path)
	if err != nil {
		t.Fatalf("ReadConfigFile: %v", err)
	}
	if got != "plugins { id 'java' }\n" {
		t.Errorf("content = %q", got)
	}
}

func TestReadConfigFileMissing(t *testing.T) {
	got, err := ReadConfigFile(filepath.Join(t.TempDir(), PropertiesFile))
	if err != nil {
		t.Fatalf("missing file must not be an error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty content, got %q", got)
	}
}
