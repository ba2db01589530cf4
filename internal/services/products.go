// Product search against the CRM catalog index.
//
// The terminal filter/sort vocabulary is translated into the CRM's
// SearchCriteria shape here; the index has no "baseName" field, so name
// sorting goes through "name.keyword".
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/arredohq/arredo/internal/models"
	gocache "github.com/patrickmn/go-cache"
)

// SortField is one ordering term of a catalog search.
type SortField struct {
	Field string `json:"field"`
	Order string `json:"order"`
}

// FilterOption is one selected value within a search filter.
type FilterOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// SearchFilter narrows a catalog search on one index field.
type SearchFilter struct {
	Field   string         `json:"field"`
	Query   *string        `json:"query"`
	Min     *float64       `json:"min"`
	Max     *float64       `json:"max"`
	Options []FilterOption `json:"options"`
}

// SearchCriteria is the CRM product search request body.
type SearchCriteria struct {
	Query         string         `json:"query"`
	Page          int            `json:"page"`
	Size          int            `json:"size"`
	Sort          []SortField    `json:"sort"`
	Filters       []SearchFilter `json:"filters"`
	IncludeImages bool           `json:"includeImages"`
	GroupBy       string         `json:"groupBy,omitempty"`
}

// PageInfo describes one page of a paged response.
type PageInfo struct {
	Size          int `json:"size"`
	Number        int `json:"number"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
}

// ProductPage is the CRM's paged product search response.
type ProductPage struct {
	Content []models.Product `json:"content"`
	Page    PageInfo         `json:"page"`
}

// sortFieldMap translates display sort fields to index fields.
var sortFieldMap = map[string]string{
	"baseName": "name.keyword",
	"name":     "name.keyword",
}

// filterKeyToField translates display filter keys to index fields. The index
// only accepts lowercase keys, so unknown keys are lowered.
var filterKeyToField = map[string]string{
	"Category":    "collection",
	"SubCategory": "category",
	"Rooms":       "rooms",
	"Styles":      "styles",
	"Collection":  "collection",
}

// ParseSort converts a display sort expression like "baseName Asc" into
// index sort fields. Empty or malformed input falls back to name ascending.
func ParseSort(sortStr string) []SortField {
	if strings.TrimSpace(sortStr) == "" {
		return []SortField{{Field: "name.keyword", Order: "ASC"}}
	}

	parts := strings.Fields(sortStr)
	rawField := "baseName"
	if len(parts) > 0 {
		rawField = parts[0]
	}

	field, ok := sortFieldMap[rawField]
	if !ok {
		field = rawField
	}

	order := "ASC"
	if len(parts) > 1 && strings.EqualFold(parts[1], "desc") {
		order = "DESC"
	}

	return []SortField{{Field: field, Order: order}}
}

// FilterSelection is one filter chosen in the UI: a display key plus the
// selected values.
type FilterSelection struct {
	Key    string
	Values []string
}

// MapFilters converts UI filter selections into CRM search filters.
func MapFilters(selections []FilterSelection) []SearchFilter {
	if len(selections) == 0 {
		return []SearchFilter{}
	}

	filters := make([]SearchFilter, 0, len(selections))
	for _, sel := range selections {
		field, ok := filterKeyToField[sel.Key]
		if !ok {
			field = strings.ToLower(sel.Key)
		}

		options := make([]FilterOption, 0, len(sel.Values))
		for _, v := range sel.Values {
			options = append(options, FilterOption{Value: v, Label: v})
		}

		filters = append(filters, SearchFilter{Field: field, Options: options})
	}

	return filters
}

// NewSearchCriteria builds the default catalog search: 24 per page, grouped
// by name, images included.
func NewSearchCriteria(query string, page int, sort string, selections []FilterSelection) SearchCriteria {
	return SearchCriteria{
		Query:         query,
		Page:          page,
		Size:          24,
		Sort:          ParseSort(sort),
		Filters:       MapFilters(selections),
		IncludeImages: true,
		GroupBy:       "name",
	}
}

// ProductCache memoizes search pages so paging back through results does not
// re-hit the index.
type ProductCache struct {
	cache *gocache.Cache
}

// NewProductCache creates a cache with a default expiration time of 5
// minutes, and which purges expired items every 10 minutes.
func NewProductCache() *ProductCache {
	return &ProductCache{cache: gocache.New(5*time.Minute, 10*time.Minute)}
}

func (c *ProductCache) key(criteria SearchCriteria) string {
	data, err := json.Marshal(criteria)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get returns a cached page for the criteria, if present.
func (c *ProductCache) Get(criteria SearchCriteria) (*ProductPage, bool) {
	k := c.key(criteria)
	if k == "" {
		return nil, false
	}
	if x, found := c.cache.Get(k); found {
		return x.(*ProductPage), true
	}
	return nil, false
}

// Put stores a page for the criteria.
func (c *ProductCache) Put(criteria SearchCriteria, page *ProductPage) {
	k := c.key(criteria)
	if k == "" {
		return
	}
	c.cache.Set(k, page, gocache.DefaultExpiration)
}

// Flush drops all cached pages.
func (c *ProductCache) Flush() {
	c.cache.Flush()
}

// SearchProducts runs a catalog search, serving repeated criteria from the
// in-memory cache.
func (s *CRMService) SearchProducts(ctx context.Context, criteria SearchCriteria) (*ProductPage, error) {
	if criteria.Size == 0 {
		criteria.Size = 24
	}

	if page, ok := s.products.Get(criteria); ok {
		return page, nil
	}

	path := "/products/search"
	if criteria.IncludeImages {
		path += "?includeImages=true"
	}

	resp, err := s.api.Post(ctx, path, criteria, "")
	if err != nil {
		return nil, err
	}

	var page ProductPage
	if err := resp.Decode(&page); err != nil {
		return nil, err
	}

	s.products.Put(criteria, &page)
	return &page, nil
}

// FlushProductCache drops memoized search pages, forcing fresh results.
func (s *CRMService) FlushProductCache() {
	s.products.Flush()
}

var _ Service = (*CRMService)(nil)

// String renders criteria compactly for logs.
func (c SearchCriteria) String() string {
	return fmt.Sprintf("query=%q page=%d size=%d filters=%d", c.Query, c.Page, c.Size, len(c.Filters))
}
