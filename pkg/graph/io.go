package graph

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/stormgraph/pkg/errors"
)

// Encoding selects the on-disk format of a graph file.
type Encoding string

const (
	EncodingJSON Encoding = "json"
	EncodingYAML Encoding = "yaml"
)

// EncodingForPath picks an encoding from a file extension. Unknown
// extensions default to JSON.
func EncodingForPath(path string) Encoding {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return EncodingYAML
	default:
		return EncodingJSON
	}
}

// =============================================================================
// Graph Serialization API
// =============================================================================

// Marshal converts a graph to indented JSON bytes.
func Marshal(g Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(g, &buf, EncodingJSON); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Hash returns the hex SHA-256 of g's JSON encoding. Graphs with the same
// nodes and edges in the same order hash equally.
func Hash(g Graph) string {
	data, err := json.Marshal(g)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Unmarshal decodes JSON bytes into a validated graph.
func Unmarshal(data []byte) (Graph, error) {
	return Read(bytes.NewReader(data), EncodingJSON)
}

// Write encodes g to w.
func Write(g Graph, w io.Writer, enc Encoding) error {
	switch enc {
	case EncodingYAML:
		e := yaml.NewEncoder(w)
		e.SetIndent(2)
		if err := e.Encode(g); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return e.Close()
	case EncodingJSON:
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		if err := e.Encode(g); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	default:
		return errs.New(errs.ErrCodeInvalidFormat, "unknown graph encoding %q", enc)
	}
}

// Read decodes a graph from r and validates it.
func Read(r io.Reader, enc Encoding) (Graph, error) {
	var g Graph
	switch enc {
	case EncodingYAML:
		if err := yaml.NewDecoder(r).Decode(&g); err != nil && err != io.EOF {
			return Graph{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode yaml")
		}
	case EncodingJSON:
		if err := json.NewDecoder(r).Decode(&g); err != nil {
			return Graph{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode json")
		}
	default:
		return Graph{}, errs.New(errs.ErrCodeInvalidFormat, "unknown graph encoding %q", enc)
	}
	if err := g.Validate(); err != nil {
		return Graph{}, err
	}
	return g, nil
}

// ReadFile reads a JSON or YAML graph file, choosing the decoder by
// extension.
func ReadFile(path string) (Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Graph{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
		}
		return Graph{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, EncodingForPath(path))
}

// WriteFile writes g to path, choosing the encoder by extension.
// The file is created with 0644 permissions.
func WriteFile(g Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(g, f, EncodingForPath(path))
}
