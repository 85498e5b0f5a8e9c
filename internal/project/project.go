// Package project reads project payloads from disk for delivery to a bridge.
//
// The project schema belongs to the runtime; this package only turns a file
// into a value the runtime's loader can receive. Structured formats (JSON,
// YAML, TOML) are decoded into plain maps and slices, anything else is
// passed along as raw bytes.
package project

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gabriel-vasile/mimetype"
	"github.com/goccy/go-yaml"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pelletier/go-toml/v2"
)

// MaxSize bounds the decompressed size of a project file
const MaxSize = 64 << 20

var (
	ErrEmpty    = errors.New("project file is empty")
	ErrTooLarge = errors.New("project file exceeds size limit")
)

// Format identifies how a project payload was decoded
type Format string

const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatTOML   Format = "toml"
	FormatBinary Format = "binary"
)

// Project is a decoded project file
type Project struct {
	Path   string
	Format Format
	Data   interface{} // map/slice tree for structured formats, []byte otherwise
	Size   int         // decompressed size in bytes
}

// Read loads and decodes the project at path.
func Read(ctx context.Context, path string) (*Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open project: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read project: %w", err)
	}
	if len(raw) > MaxSize {
		return nil, ErrTooLarge
	}

	return Decode(path, raw)
}

// Decode decompresses and decodes raw as the project named name. The name's
// extensions select the compression and format.
func Decode(name string, raw []byte) (*Project, error) {
	data, base, err := decompress(name, raw)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}

	format := detect(base, data)
	value, err := decode(format, data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s project %s: %w", format, name, err)
	}

	return &Project{
		Path:   name,
		Format: format,
		Data:   value,
		Size:   len(data),
	}, nil
}

// decompress strips a .gz or .zst layer and returns the remaining name
func decompress(name string, raw []byte) ([]byte, string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		reader, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, "", fmt.Errorf("gzip failed: %w", err)
		}
		defer reader.Close()

		data, err := io.ReadAll(io.LimitReader(reader, MaxSize+1))
		if err != nil {
			return nil, "", fmt.Errorf("gzip failed: %w", err)
		}
		if len(data) > MaxSize {
			return nil, "", ErrTooLarge
		}
		return data, strings.TrimSuffix(name, filepath.Ext(name)), nil

	case ".zst":
		decoder, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxSize))
		if err != nil {
			return nil, "", fmt.Errorf("zstd failed: %w", err)
		}
		defer decoder.Close()

		data, err := decoder.DecodeAll(raw, nil)
		if err != nil {
			return nil, "", fmt.Errorf("zstd failed: %w", err)
		}
		return data, strings.TrimSuffix(name, filepath.Ext(name)), nil

	default:
		return raw, name, nil
	}
}

// detect picks a format from the extension, falling back to content sniffing
func detect(name string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	}

	if mimetype.Detect(data).Is("application/json") {
		return FormatJSON
	}
	return FormatBinary
}

func decode(format Format, data []byte) (interface{}, error) {
	switch format {
	case FormatJSON:
		var value interface{}
		if err := sonic.Unmarshal(data, &value); err != nil {
			return nil, err
		}
		return value, nil
	case FormatYAML:
		var value interface{}
		if err := yaml.Unmarshal(data, &value); err != nil {
			return nil, err
		}
		return value, nil
	case FormatTOML:
		var value map[string]interface{}
		if err := toml.Unmarshal(data, &value); err != nil {
			return nil, err
		}
		return value, nil
	default:
		return data, nil
	}
}
