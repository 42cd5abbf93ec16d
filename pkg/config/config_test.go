package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ExpandsEnvAndKeepsDefaults(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "folio")
	path := writeFile(t, "name: ${SAMPLE_NAME}\n")

	s := sample{Port: 8080}
	if err := Load(path, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "folio" || s.Port != 8080 {
		t.Errorf("got %+v", s)
	}
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	path := writeFile(t, "name: x\nprot: 1\n")
	s := sample{Port: 1}
	if err := Load(path, &s); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeFile(t, "")
	s := sample{Port: 1}
	if err := Load(path, &s); err != nil {
		t.Fatalf("empty file should keep defaults: %v", err)
	}
}

func TestLoad_RunsValidator(t *testing.T) {
	path := writeFile(t, "port: 0\n")
	s := sample{Port: 1}
	err := Load(path, &s)
	if err == nil || !strings.Contains(err.Error(), "config validation failed") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	s := sample{Port: 1}
	if err := LoadWithDefaults(missing, "", &s); err != nil {
		t.Fatalf("missing file without fallback: %v", err)
	}

	fallback := writeFile(t, "name: fallback\nport: 2\n")
	if err := LoadWithDefaults(missing, fallback, &s); err != nil {
		t.Fatal(err)
	}
	if s.Name != "fallback" || s.Port != 2 {
		t.Errorf("got %+v", s)
	}

	bad := sample{}
	if err := LoadWithDefaults(missing, "", &bad); err == nil {
		t.Error("invalid defaults should still fail validation")
	}
}
