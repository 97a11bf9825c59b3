package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	json "github.com/goccy/go-json"
)

// Keyer derives cache keys.
type Keyer interface {
	// GraphKey identifies a storm graph fetched from a data source.
	GraphKey(source string, opts GraphKeyOpts) string

	// ArtifactKey identifies rendered output for a graph with the given
	// content hash.
	ArtifactKey(graphHash string, opts ArtifactKeyOpts) string
}

// GraphKeyOpts holds the source settings that determine a fetched graph.
type GraphKeyOpts struct {
	Endpoint string `json:"endpoint,omitempty"` // Cluster URL, DSN, file path
	Database string `json:"database,omitempty"`
	Query    string `json:"query,omitempty"`
}

// ArtifactKeyOpts holds the render settings that determine an artifact.
type ArtifactKeyOpts struct {
	Format    string  `json:"format"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	RootID    string  `json:"root_id,omitempty"`
	Highlight string  `json:"highlight,omitempty"`
	Seed      uint64  `json:"seed,omitempty"`
}

// NewKeyer returns a keyer producing "<namespace>:<kind>:<sha256>" keys,
// or "<kind>:<sha256>" when namespace is empty. Several deployments can
// share one Redis database by using distinct namespaces.
func NewKeyer(namespace string) Keyer {
	if namespace != "" && !strings.HasSuffix(namespace, ":") {
		namespace += ":"
	}
	return keyer{namespace: namespace}
}

type keyer struct {
	namespace string
}

func (k keyer) GraphKey(source string, opts GraphKeyOpts) string {
	return k.key("graph", source, opts)
}

func (k keyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return k.key("artifact", graphHash, opts)
}

func (k keyer) key(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return k.namespace + kind + ":" + digest(data)
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// keyType extracts the kind segment of a key built by [NewKeyer].
func keyType(key string) string {
	head, _, ok := cutLast(key, ':')
	if !ok {
		return key
	}
	if _, kind, ok := cutLast(head, ':'); ok {
		return kind
	}
	return head
}

func cutLast(s string, sep byte) (before, after string, found bool) {
	if i := strings.LastIndexByte(s, sep); i >= 0 {
		return s[:i], s[i+1:], true
	}
	return s, "", false
}
