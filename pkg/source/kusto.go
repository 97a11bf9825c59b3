package source

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/matzehuels/stormgraph/pkg/buildinfo"
	"github.com/matzehuels/stormgraph/pkg/cache"
	errs "github.com/matzehuels/stormgraph/pkg/errors"
	"github.com/matzehuels/stormgraph/pkg/graph"
	"github.com/matzehuels/stormgraph/pkg/httputil"
)

// DefaultTokenEnv names the environment variable holding the Kusto
// bearer token.
const DefaultTokenEnv = "STORMGRAPH_KUSTO_TOKEN"

const kustoQueryPath = "/v1/rest/query"

// KustoOptions configures a [Kusto] source.
type KustoOptions struct {
	Cluster  string        `toml:"cluster"`
	Database string        `toml:"database"`
	Query    string        `toml:"query"`
	TokenEnv string        `toml:"token_env"`
	Timeout  time.Duration `toml:"timeout"`
}

// SetDefaults fills zero fields.
func (o *KustoOptions) SetDefaults() {
	if o.Cluster == "" {
		o.Cluster = DefaultCluster
	}
	if o.Database == "" {
		o.Database = DefaultDatabase
	}
	if o.Query == "" {
		o.Query = DefaultQuery
	}
	if o.TokenEnv == "" {
		o.TokenEnv = DefaultTokenEnv
	}
	if o.Timeout == 0 {
		o.Timeout = 30 * time.Second
	}
}

// Kusto queries an Azure Data Explorer cluster over its REST API. The
// query must return rows of (begin location, end location, count).
type Kusto struct {
	opts  KustoOptions
	http  *http.Client
	retry httputil.Backoff
}

// NewKusto creates a Kusto source. The cluster must be an http(s) URL.
func NewKusto(opts KustoOptions) (*Kusto, error) {
	opts.SetDefaults()
	if err := errs.ValidateURL(opts.Cluster); err != nil {
		return nil, err
	}
	opts.Cluster = strings.TrimRight(opts.Cluster, "/")
	return &Kusto{
		opts:  opts,
		http:  &http.Client{Timeout: opts.Timeout},
		retry: httputil.DefaultBackoff,
	}, nil
}

// Name implements Source.
func (k *Kusto) Name() string { return "kusto" }

// CacheKey implements Keyed.
func (k *Kusto) CacheKey() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{Endpoint: k.opts.Cluster, Database: k.opts.Database, Query: k.opts.Query}
}

// Options returns the effective options.
func (k *Kusto) Options() KustoOptions { return k.opts }

type kustoRequest struct {
	DB  string `json:"db"`
	CSL string `json:"csl"`
}

type kustoResponse struct {
	Tables []kustoTable `json:"Tables"`
}

type kustoTable struct {
	TableName string        `json:"TableName"`
	Columns   []kustoColumn `json:"Columns"`
	Rows      [][]any       `json:"Rows"`
}

type kustoColumn struct {
	ColumnName string `json:"ColumnName"`
	DataType   string `json:"DataType"`
}

// Fetch runs the query and builds the graph from the first result table.
// Transient failures are retried with backoff.
func (k *Kusto) Fetch(ctx context.Context) (graph.Graph, error) {
	body, err := json.Marshal(kustoRequest{DB: k.opts.Database, CSL: k.opts.Query})
	if err != nil {
		return graph.Graph{}, err
	}
	token := os.Getenv(k.opts.TokenEnv)

	var resp kustoResponse
	err = k.retry.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, k.opts.Cluster+kustoQueryPath, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", buildinfo.UserAgent())
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp = kustoResponse{}
		return httputil.DoJSON(ctx, k.http, req, &resp)
	})
	if err != nil {
		return graph.Graph{}, errs.Wrap(errs.ErrCodeFetchFailed, err, "kusto query on %s", k.opts.Cluster)
	}

	rows, err := resp.rows()
	if err != nil {
		return graph.Graph{}, errs.Wrap(errs.ErrCodeFetchFailed, err, "kusto query on %s", k.opts.Cluster)
	}
	return BuildGraph(rows), nil
}

func (r kustoResponse) rows() ([]Row, error) {
	if len(r.Tables) == 0 {
		return nil, errs.New(errs.ErrCodeInvalidFormat, "response has no tables")
	}
	t := r.Tables[0]
	if len(t.Columns) < 3 {
		return nil, errs.New(errs.ErrCodeInvalidFormat, "expected 3 columns, got %d", len(t.Columns))
	}
	rows := make([]Row, 0, len(t.Rows))
	for i, cells := range t.Rows {
		if len(cells) < 3 {
			return nil, errs.New(errs.ErrCodeInvalidFormat, "row %d has %d cells", i, len(cells))
		}
		count, err := toInt(cells[2])
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "row %d", i)
		}
		begin, _ := cells[0].(string)
		end, _ := cells[1].(string)
		rows = append(rows, Row{Begin: begin, End: end, Count: count})
	}
	return rows, nil
}

// toInt accepts the encodings Kusto uses for long values.
func toInt(v any) (int, error) {
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		return int(i), err
	case string:
		var i int
		_, err := fmt.Sscan(n, &i)
		return i, err
	case nil:
		return 0, nil
	}
	return 0, fmt.Errorf("unexpected count type %T", v)
}
