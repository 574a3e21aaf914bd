package artifact

import (
	stdzip "archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/klauspost/compress/flate"

	"pkghub/internal/models"
)

func testArtifact(name, payload string) models.Artifact {
	return models.Artifact{
		ArtifactSummary: models.ArtifactSummary{ID: "af-" + name, Name: name},
		Payload:         []byte(payload),
	}
}

func readArchive(t *testing.T, data []byte) *stdzip.Reader {
	t.Helper()
	zr, err := stdzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	return zr
}

func TestNewArchiverLevels(t *testing.T) {
	archiver, err := NewArchiver(DefaultArchiveConfig())
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	if archiver.Level() != flate.BestCompression {
		t.Fatalf("expected best compression, got %d", archiver.Level())
	}

	for _, level := range []int{flate.HuffmanOnly - 1, flate.BestCompression + 1} {
		if _, err := NewArchiver(ArchiveConfig{CompressionLevel: level}); !InvalidInput.Has(err) {
			t.Fatalf("level %d: expected InvalidInput, got %v", level, err)
		}
	}
}

func TestBuildOrderedEntries(t *testing.T) {
	archiver, err := NewArchiver(DefaultArchiveConfig())
	if err != nil {
		t.Fatalf("new archiver: %v", err)
	}

	var buf bytes.Buffer
	artifacts := []models.Artifact{testArtifact("a.txt", "hello"), testArtifact("b.txt", "world")}
	if err := archiver.Build(context.Background(), "bundle", artifacts, &buf); err != nil {
		t.Fatalf("build: %v", err)
	}

	zr := readArchive(t, buf.Bytes())
	if len(zr.File) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(zr.File))
	}
	want := []struct{ name, content string }{{"a.txt", "hello"}, {"b.txt", "world"}}
	for i, file := range zr.File {
		if file.Name != want[i].name {
			t.Fatalf("entry %d: expected %s, got %s", i, want[i].name, file.Name)
		}
		if file.Method != stdzip.Deflate {
			t.Fatalf("entry %d: expected deflate, got method %d", i, file.Method)
		}
		rc, err := file.Open()
		if err != nil {
			t.Fatalf("open entry %d: %v", i, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read entry %d: %v", i, err)
		}
		if string(content) != want[i].content {
			t.Fatalf("entry %d: expected %q, got %q", i, want[i].content, content)
		}
	}
	if zr.Comment != "bundle" {
		t.Fatalf("expected archive comment bundle, got %q", zr.Comment)
	}
}

func TestBuildEmptyArchive(t *testing.T) {
	archiver, _ := NewArchiver(DefaultArchiveConfig())

	var buf bytes.Buffer
	if err := archiver.Build(context.Background(), "", nil, &buf); err != nil {
		t.Fatalf("build empty: %v", err)
	}
	zr := readArchive(t, buf.Bytes())
	if len(zr.File) != 0 {
		t.Fatalf("expected no entries, got %d", len(zr.File))
	}
}

func TestBuildKeepsDuplicateNames(t *testing.T) {
	archiver, _ := NewArchiver(DefaultArchiveConfig())

	var buf bytes.Buffer
	artifacts := []models.Artifact{testArtifact("same.txt", "one"), testArtifact("same.txt", "two")}
	if err := archiver.Build(context.Background(), "dups", artifacts, &buf); err != nil {
		t.Fatalf("build: %v", err)
	}
	zr := readArchive(t, buf.Bytes())
	if len(zr.File) != 2 || zr.File[0].Name != "same.txt" || zr.File[1].Name != "same.txt" {
		t.Fatalf("expected two same.txt entries, got %d", len(zr.File))
	}
}

func TestBuildRejectsEmptyPayload(t *testing.T) {
	archiver, _ := NewArchiver(DefaultArchiveConfig())

	var buf bytes.Buffer
	artifacts := []models.Artifact{testArtifact("a.txt", "hello"), testArtifact("b.txt", "")}
	err := archiver.Build(context.Background(), "bad", artifacts, &buf)
	if !InvalidInput.Has(err) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestBuildSinkFailure(t *testing.T) {
	archiver, _ := NewArchiver(ArchiveConfig{CompressionLevel: flate.NoCompression})

	err := archiver.Build(context.Background(), "bundle", []models.Artifact{testArtifact("a.txt", "hello")}, failingWriter{})
	if !StorageFailure.Has(err) {
		t.Fatalf("expected StorageFailure, got %v", err)
	}
}

func TestBuildCanceledContext(t *testing.T) {
	archiver, _ := NewArchiver(DefaultArchiveConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := archiver.Build(ctx, "bundle", []models.Artifact{testArtifact("a.txt", "hello")}, &buf)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
