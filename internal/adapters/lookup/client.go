// Package lookup implements the external item search service client.
// The remote API has no guaranteed availability; everything here is
// best effort and callers absorb failures.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"github.com/DominusFuror/tradefury/internal/domain/identity"
	"github.com/DominusFuror/tradefury/internal/domain/model"
)

// Default jsonpath expressions matching the reference API shape:
//
//	GET /search?q=...  -> {"results": [{"id": 36906, "name": "..."}]}
//	GET /item/<id>     -> {"id": 36906, "name": "..."}
const (
	defaultResultsPath = "$.results"
	defaultIDPath      = "$.id"
	defaultNamePath    = "$.name"
	defaultTimeout     = 10 * time.Second
)

// Client talks to the item lookup API. Response fields are pulled out
// with configurable jsonpath expressions, so deployments fronting a
// differently shaped upstream only change configuration.
type Client struct {
	baseURL     string
	httpc       *http.Client
	resultsPath string
	idPath      string
	namePath    string
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpc = c
		}
	}
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.httpc.Timeout = d
		}
	}
}

// WithPaths overrides the jsonpath expressions for the result list,
// the id field and the name field. Empty strings keep the defaults.
func WithPaths(results, id, name string) Option {
	return func(cl *Client) {
		if results != "" {
			cl.resultsPath = results
		}
		if id != "" {
			cl.idPath = id
		}
		if name != "" {
			cl.namePath = name
		}
	}
}

// NewClient builds a lookup client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     baseURL,
		httpc:       &http.Client{Timeout: defaultTimeout},
		resultsPath: defaultResultsPath,
		idPath:      defaultIDPath,
		namePath:    defaultNamePath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchByName implements identity.LookupService.
func (c *Client) SearchByName(ctx context.Context, text string) ([]identity.Match, error) {
	doc, err := c.getJSON(ctx, c.baseURL+"/search?q="+url.QueryEscape(text))
	if err != nil {
		return nil, err
	}

	jval, err := jsonpath.Get(c.resultsPath, doc)
	if err != nil {
		return nil, fmt.Errorf("extract %q: %w", c.resultsPath, err)
	}
	items, ok := jval.([]any)
	if !ok {
		return nil, fmt.Errorf("search response: %q is not a list", c.resultsPath)
	}

	matches := make([]identity.Match, 0, len(items))
	for _, item := range items {
		id, err := c.extractID(item)
		if err != nil {
			continue
		}
		name, err := c.extractName(item)
		if err != nil || name == "" {
			continue
		}
		matches = append(matches, identity.Match{ID: id, Name: name})
	}
	return matches, nil
}

// FetchCanonicalName implements identity.LookupService.
func (c *Client) FetchCanonicalName(ctx context.Context, id model.ItemID) (string, error) {
	doc, err := c.getJSON(ctx, fmt.Sprintf("%s/item/%d", c.baseURL, id))
	if err != nil {
		return "", err
	}
	name, err := c.extractName(doc)
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", fmt.Errorf("item %d: %w", id, identity.ErrNotFound)
	}
	return name, nil
}

func (c *Client) getJSON(ctx context.Context, addr string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, identity.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", resp.Request.URL.Path, resp.Status)
	}

	var doc any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return doc, nil
}

func (c *Client) extractID(item any) (model.ItemID, error) {
	jval, err := jsonpath.Get(c.idPath, item)
	if err != nil {
		return 0, err
	}
	jval = first(jval)
	switch v := jval.(type) {
	case float64:
		return model.ItemID(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, err
		}
		return model.ItemID(n), nil
	default:
		return 0, fmt.Errorf("id field has type %T", jval)
	}
}

func (c *Client) extractName(item any) (string, error) {
	jval, err := jsonpath.Get(c.namePath, item)
	if err != nil {
		return "", err
	}
	name, _ := first(jval).(string)
	return name, nil
}

// first unwraps jsonpath's occasional single-element list answers.
func first(jval any) any {
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		return jlist[0]
	}
	return jval
}
