package schema

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects the document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name. "yml" is accepted as YAML.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (expected json or yaml)", name)
	}
}

// Extension returns the file extension conventionally used for the format.
func (f Format) Extension() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// Serialize encodes a definition document.
// The output is deterministic: properties keep declaration order and no maps
// with random iteration order are involved.
func Serialize(def Definition, format Format) ([]byte, error) {
	if def == nil {
		return nil, fmt.Errorf("definition cannot be nil")
	}

	switch format {
	case FormatJSON, "":
		data, err := json.MarshalIndent(def, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to serialize definition: %w", err)
		}
		return data, nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(def); err != nil {
			return nil, fmt.Errorf("failed to serialize definition: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to flush yaml encoder: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// Compress compresses data using gzip compression.
func Compress(data []byte) ([]byte, error) {
	if data == nil {
		return nil, fmt.Errorf("data cannot be nil")
	}

	if len(data) == 0 {
		return []byte{}, nil
	}

	var buf bytes.Buffer

	writer, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip writer: %w", err)
	}

	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("failed to compress data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close gzip writer: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress decompresses gzip-compressed data.
func Decompress(data []byte) ([]byte, error) {
	if data == nil {
		return nil, fmt.Errorf("data cannot be nil")
	}

	if len(data) == 0 {
		return []byte{}, nil
	}

	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	decompressed, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress data: %w", err)
	}

	return decompressed, nil
}

// WriteOptions controls how WriteToFile persists a document.
type WriteOptions struct {
	Format   Format
	Compress bool
}

// WriteToFile dumps the whole document to outputPath, creating the parent
// directory if needed. When compression is requested ".gz" is appended to the
// path. The path actually written is returned.
func WriteToFile(def Definition, outputPath string, opts WriteOptions) (string, error) {
	if def == nil {
		return "", fmt.Errorf("definition cannot be nil")
	}

	if outputPath == "" {
		return "", fmt.Errorf("output path cannot be empty")
	}

	data, err := Serialize(def, opts.Format)
	if err != nil {
		return "", err
	}

	if opts.Compress {
		data, err = Compress(data)
		if err != nil {
			return "", fmt.Errorf("failed to compress definition: %w", err)
		}
		if !strings.HasSuffix(outputPath, ".gz") {
			outputPath += ".gz"
		}
	}

	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write definition to %s: %w", outputPath, err)
	}

	return outputPath, nil
}

// ReadFromFile loads a JSON document written by WriteToFile, transparently
// decompressing ".gz" files.
func ReadFromFile(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if strings.HasSuffix(path, ".gz") {
		data, err = Decompress(data)
		if err != nil {
			return nil, err
		}
	}
	return DecodeDefinition(data)
}
