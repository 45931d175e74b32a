// Package testutil provides testing utilities for the feed generator.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
)

// ThrottleMode selects how an injected throttle is signalled.
type ThrottleMode int

const (
	// ThrottleHTTP answers with 429 Too Many Requests.
	ThrottleHTTP ThrottleMode = iota
	// ThrottleGraphQL answers 200 with a THROTTLED error entry.
	ThrottleGraphQL
)

// Translation is one translated field of a resource.
type Translation struct {
	Key   string
	Value string
}

// MockLocale is a locale enabled for a market's web presence.
type MockLocale struct {
	Tag  string
	Name string
}

// MockMarket is a market with its web presence locales.
type MockMarket struct {
	ID               string
	Name             string
	DefaultLocale    MockLocale
	AlternateLocales []MockLocale
	// NoWebPresence makes the webPresence lookup return null.
	NoWebPresence bool
}

// MockCollection is a collection with translations keyed by locale tag.
type MockCollection struct {
	ID           string
	Title        string
	Handle       string
	Translations map[string][]Translation
}

// MockOption is a selected option of a variant.
type MockOption struct {
	Name  string
	Value string
}

// MockProductOption is a product option with its values.
type MockProductOption struct {
	Name   string
	Values []string
}

// MockMetafield is a product metafield.
type MockMetafield struct {
	Namespace string
	Key       string
	Value     string
}

// MockVariant is a product variant.
type MockVariant struct {
	ID                string
	SKU               string
	Barcode           string
	DisplayName       string
	Title             string
	Price             string
	CompareAtPrice    *string
	AvailableForSale  *bool
	InventoryQuantity *int
	ImageURL          string
	SelectedOptions   []MockOption
}

// MockProduct is a product with translations keyed by locale tag.
type MockProduct struct {
	ID             string
	Title          string
	Handle         string
	Vendor         string
	ImageURL       string
	SEOTitle       string
	SEODescription string
	TotalInventory *int
	Metafields     []MockMetafield
	Options        []MockProductOption
	Tags           []string
	CreatedAt      string
	UpdatedAt      string
	PublishedAt    string
	Variants       []MockVariant
	CollectionIDs  []string
	Translations   map[string][]Translation
}

// Fixture is the shop content the mock serves.
type Fixture struct {
	PrimaryDomain string
	Markets       []MockMarket
	Collections   []MockCollection
	Products      []MockProduct
}

// RecordedRequest is one GraphQL request received by the mock.
type RecordedRequest struct {
	Path        string
	Operation   string
	Variables   map[string]any
	AccessToken string
}

// MockShopify is a configurable mock GraphQL Admin API server for testing.
type MockShopify struct {
	server *httptest.Server
	mu     sync.RWMutex

	fixture  Fixture
	pageSize int

	throttleRemaining int
	throttleMode      ThrottleMode
	failures          map[string]string
	throttleStatus    map[string]float64

	// Tracking
	RequestCount int
	Requests     []RecordedRequest
}

var operationPattern = regexp.MustCompile(`^\s*(?:query|mutation)\s+(\w+)`)

// NewMockShopify creates a new mock server serving fixture.
func NewMockShopify(fixture Fixture) *MockShopify {
	mock := &MockShopify{
		fixture:  fixture,
		failures: make(map[string]string),
		throttleStatus: map[string]float64{
			"maximumAvailable":   1000,
			"currentlyAvailable": 1000,
			"restoreRate":        50,
		},
	}
	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// URL returns the mock server URL.
func (m *MockShopify) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockShopify) Close() {
	m.server.Close()
}

// SetPageSize caps the number of edges per page below the requested first.
func (m *MockShopify) SetPageSize(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageSize = n
}

// ThrottleNext makes the next n requests fail with a throttling signal.
func (m *MockShopify) ThrottleNext(n int, mode ThrottleMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.throttleRemaining = n
	m.throttleMode = mode
}

// FailOperation makes every request for operation return a GraphQL error.
func (m *MockShopify) FailOperation(operation, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[operation] = message
}

// SetThrottleStatus sets the bucket reported in extensions.cost.
func (m *MockShopify) SetThrottleStatus(maximum, current, restoreRate float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.throttleStatus = map[string]float64{
		"maximumAvailable":   maximum,
		"currentlyAvailable": current,
		"restoreRate":        restoreRate,
	}
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockShopify) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// OperationCount returns how many requests named operation were received.
func (m *MockShopify) OperationCount(operation string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, r := range m.Requests {
		if r.Operation == operation {
			n++
		}
	}
	return n
}

// RecordedRequests returns a copy of the received requests.
func (m *MockShopify) RecordedRequests() []RecordedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]RecordedRequest(nil), m.Requests...)
}

func (m *MockShopify) handle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	operation := ""
	if match := operationPattern.FindStringSubmatch(req.Query); match != nil {
		operation = match[1]
	}

	m.mu.Lock()
	m.RequestCount++
	m.Requests = append(m.Requests, RecordedRequest{
		Path:        r.URL.Path,
		Operation:   operation,
		Variables:   req.Variables,
		AccessToken: r.Header.Get("X-Shopify-Access-Token"),
	})
	throttled := m.throttleRemaining > 0
	mode := m.throttleMode
	if throttled {
		m.throttleRemaining--
	}
	failure, failing := m.failures[operation]
	status := m.throttleStatus
	m.mu.Unlock()

	if throttled && mode == ThrottleHTTP {
		w.Header().Set("Retry-After", "2")
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	}

	if !strings.HasSuffix(r.URL.Path, "/graphql.json") {
		http.NotFound(w, r)
		return
	}

	body := map[string]any{
		"extensions": map[string]any{
			"cost": map[string]any{
				"requestedQueryCost": 10,
				"actualQueryCost":    10,
				"throttleStatus":     status,
			},
		},
	}

	switch {
	case throttled:
		body["errors"] = []map[string]any{{
			"message":    "Throttled",
			"extensions": map[string]any{"code": "THROTTLED"},
		}}
	case failing:
		body["errors"] = []map[string]any{{"message": failure}}
	default:
		data, ok := m.resolve(operation, req.Variables)
		if !ok {
			body["errors"] = []map[string]any{{"message": "unknown operation " + operation}}
		} else {
			body["data"] = data
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(body)
}

func (m *MockShopify) resolve(operation string, vars map[string]any) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	locale, _ := vars["locale"].(string)

	switch operation {
	case "Shop":
		return map[string]any{
			"shop": map[string]any{
				"primaryDomain": map[string]any{"url": m.fixture.PrimaryDomain},
			},
		}, true

	case "Markets":
		edges := make([]map[string]any, 0, len(m.fixture.Markets))
		for _, market := range m.fixture.Markets {
			edges = append(edges, map[string]any{
				"node": map[string]any{"id": market.ID, "name": market.Name},
			})
		}
		return map[string]any{
			"markets": map[string]any{
				"edges":    edges,
				"pageInfo": map[string]any{"hasNextPage": false},
			},
		}, true

	case "WebPresence":
		id, _ := vars["id"].(string)
		for _, market := range m.fixture.Markets {
			if market.ID != id {
				continue
			}
			if market.NoWebPresence {
				return map[string]any{"market": map[string]any{"webPresence": nil}}, true
			}
			alternates := make([]map[string]any, 0, len(market.AlternateLocales))
			for _, l := range market.AlternateLocales {
				alternates = append(alternates, localeNode(l))
			}
			return map[string]any{
				"market": map[string]any{
					"webPresence": map[string]any{
						"defaultLocale":    localeNode(market.DefaultLocale),
						"alternateLocales": alternates,
					},
				},
			}, true
		}
		return map[string]any{"market": nil}, true

	case "Collections":
		nodes := make([]pageNode, 0, len(m.fixture.Collections))
		for _, c := range m.fixture.Collections {
			nodes = append(nodes, pageNode{id: c.ID, node: map[string]any{
				"id":           c.ID,
				"title":        c.Title,
				"handle":       c.Handle,
				"translations": translationNodes(c.Translations[locale]),
			}})
		}
		return map[string]any{"collections": m.page(nodes, vars)}, true

	case "Products":
		nodes := make([]pageNode, 0, len(m.fixture.Products))
		for _, p := range m.fixture.Products {
			nodes = append(nodes, pageNode{id: p.ID, node: productNode(p, locale)})
		}
		return map[string]any{"products": m.page(nodes, vars)}, true
	}

	return nil, false
}

type pageNode struct {
	id   string
	node map[string]any
}

// page slices nodes after the cursor variable. Edge cursors are node ids.
func (m *MockShopify) page(nodes []pageNode, vars map[string]any) map[string]any {
	start := 0
	if cursor, ok := vars["cursor"].(string); ok && cursor != "" {
		for i, n := range nodes {
			if n.id == cursor {
				start = i + 1
				break
			}
		}
	}

	size := len(nodes)
	if first, ok := vars["first"].(float64); ok && int(first) > 0 {
		size = int(first)
	}
	if m.pageSize > 0 && m.pageSize < size {
		size = m.pageSize
	}

	end := min(start+size, len(nodes))
	edges := make([]map[string]any, 0, end-start)
	for _, n := range nodes[start:end] {
		edges = append(edges, map[string]any{"cursor": n.id, "node": n.node})
	}

	return map[string]any{
		"edges":    edges,
		"pageInfo": map[string]any{"hasNextPage": end < len(nodes)},
	}
}

func localeNode(l MockLocale) map[string]any {
	return map[string]any{"locale": l.Tag, "name": l.Name}
}

func translationNodes(ts []Translation) []map[string]any {
	out := make([]map[string]any, 0, len(ts))
	for _, t := range ts {
		out = append(out, map[string]any{"key": t.Key, "value": t.Value})
	}
	return out
}

func edgeList(nodes []map[string]any) map[string]any {
	edges := make([]map[string]any, 0, len(nodes))
	for _, n := range nodes {
		edges = append(edges, map[string]any{"node": n})
	}
	return map[string]any{"edges": edges}
}

func productNode(p MockProduct, locale string) map[string]any {
	var images []map[string]any
	if p.ImageURL != "" {
		images = append(images, map[string]any{"url": p.ImageURL})
	}

	metafields := make([]map[string]any, 0, len(p.Metafields))
	for _, mf := range p.Metafields {
		metafields = append(metafields, map[string]any{
			"namespace": mf.Namespace, "key": mf.Key, "value": mf.Value,
		})
	}

	options := make([]map[string]any, 0, len(p.Options))
	for _, o := range p.Options {
		options = append(options, map[string]any{"name": o.Name, "values": o.Values})
	}

	collections := make([]map[string]any, 0, len(p.CollectionIDs))
	for _, id := range p.CollectionIDs {
		collections = append(collections, map[string]any{"id": id})
	}

	variants := make([]map[string]any, 0, len(p.Variants))
	for _, v := range p.Variants {
		selected := make([]map[string]any, 0, len(v.SelectedOptions))
		for _, so := range v.SelectedOptions {
			selected = append(selected, map[string]any{"name": so.Name, "value": so.Value})
		}
		node := map[string]any{
			"id":                v.ID,
			"sku":               v.SKU,
			"barcode":           v.Barcode,
			"displayName":       v.DisplayName,
			"title":             v.Title,
			"price":             v.Price,
			"compareAtPrice":    v.CompareAtPrice,
			"availableForSale":  v.AvailableForSale,
			"inventoryQuantity": v.InventoryQuantity,
			"selectedOptions":   selected,
			"image":             nil,
		}
		if v.ImageURL != "" {
			node["image"] = map[string]any{"url": v.ImageURL}
		}
		variants = append(variants, node)
	}

	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	var publishedAt any
	if p.PublishedAt != "" {
		publishedAt = p.PublishedAt
	}

	return map[string]any{
		"id":             p.ID,
		"title":          p.Title,
		"handle":         p.Handle,
		"vendor":         p.Vendor,
		"totalInventory": p.TotalInventory,
		"images":         edgeList(images),
		"seo":            map[string]any{"title": p.SEOTitle, "description": p.SEODescription},
		"metafields":     edgeList(metafields),
		"options":        options,
		"tags":           tags,
		"createdAt":      p.CreatedAt,
		"updatedAt":      p.UpdatedAt,
		"publishedAt":    publishedAt,
		"collections":    edgeList(collections),
		"variants":       edgeList(variants),
		"translations":   translationNodes(p.Translations[locale]),
	}
}
