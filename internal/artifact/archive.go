package artifact

import (
	"context"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"pkghub/internal/models"
)

// DefaultCompressionLevel is the deflate level used when none is configured.
const DefaultCompressionLevel = flate.BestCompression

// ArchiveConfig configures an Archiver.
type ArchiveConfig struct {
	// CompressionLevel is a flate level between flate.HuffmanOnly and
	// flate.BestCompression.
	CompressionLevel int
}

// DefaultArchiveConfig returns the best-compression configuration.
func DefaultArchiveConfig() ArchiveConfig {
	return ArchiveConfig{CompressionLevel: DefaultCompressionLevel}
}

// Archiver writes package artifacts as a zip stream. It holds no state
// between Build calls and is safe for concurrent use.
type Archiver struct {
	level int
}

// NewArchiver validates cfg and returns an Archiver.
func NewArchiver(cfg ArchiveConfig) (*Archiver, error) {
	if cfg.CompressionLevel < flate.HuffmanOnly || cfg.CompressionLevel > flate.BestCompression {
		return nil, InvalidInput.New("compression level %d out of range [%d, %d]",
			cfg.CompressionLevel, flate.HuffmanOnly, flate.BestCompression)
	}
	return &Archiver{level: cfg.CompressionLevel}, nil
}

// Level returns the configured deflate level.
func (a *Archiver) Level() int {
	return a.level
}

// Build writes one deflated entry per artifact, in the given order, to sink.
// Entry names are the artifact names; duplicates are written as they are.
// On error the zip directory is never written, so whatever reached sink is
// not a valid archive.
func (a *Archiver) Build(ctx context.Context, packageName string, artifacts []models.Artifact, sink io.Writer) error {
	if sink == nil {
		return InvalidInput.New("archive sink is required")
	}
	for i := range artifacts {
		if strings.TrimSpace(artifacts[i].Name) == "" {
			return InvalidInput.New("artifact %s has no name", artifacts[i].ID)
		}
		if len(artifacts[i].Payload) == 0 {
			return InvalidInput.New("artifact %s has no payload", artifacts[i].ID)
		}
	}

	zw := zip.NewWriter(sink)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, a.level)
	})
	if packageName != "" {
		if err := zw.SetComment(packageName); err != nil {
			return InvalidInput.Wrap(err)
		}
	}

	for _, artifact := range artifacts {
		if err := ctx.Err(); err != nil {
			return err
		}
		header := &zip.FileHeader{
			Name:   artifact.Name,
			Method: zip.Deflate,
		}
		if !artifact.CreatedAt.IsZero() {
			header.Modified = artifact.CreatedAt
		}
		entry, err := zw.CreateHeader(header)
		if err != nil {
			return StorageFailure.Wrap(err)
		}
		if _, err := entry.Write(artifact.Payload); err != nil {
			return StorageFailure.Wrap(err)
		}
	}

	if err := zw.Close(); err != nil {
		return StorageFailure.Wrap(err)
	}
	return nil
}
