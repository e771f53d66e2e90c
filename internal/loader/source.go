package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"github.com/tejusbharadwaj/clockfeed/internal/models"
)

const DefaultAPIKeyParam = "apikey"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Source describes one remote collection
type Source struct {
	Name     string
	Endpoint string
	Query    map[string]string

	// APIKey is sent as the APIKeyParam query parameter when either is set.
	// An empty key is still sent; the remote side then applies its
	// unauthenticated limits.
	APIKey      string
	APIKeyParam string

	// ItemsField names the array inside an envelope object such as
	// {"Search": [...], "totalResults": "42"}. Empty means the body is a bare array.
	ItemsField string
	TotalField string
}

// URL returns the endpoint with the query and API key applied
func (s Source) URL() (string, error) {
	u, err := url.Parse(s.Endpoint)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("endpoint %q is not an absolute URL", s.Endpoint)
	}

	q := u.Query()
	for k, v := range s.Query {
		q.Set(k, v)
	}
	if s.APIKeyParam != "" || s.APIKey != "" {
		param := s.APIKeyParam
		if param == "" {
			param = DefaultAPIKeyParam
		}
		q.Set(param, s.APIKey)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// Page is a decoded response body
type Page struct {
	Items []models.Record
	Total int
}

func decodePage(r io.Reader, src Source) (Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Page{}, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Page{}, errors.New("empty body")
	}

	// Unmarshal rejects anything after the first JSON value
	var body any
	if err := json.Unmarshal(data, &body); err != nil {
		return Page{}, err
	}

	var (
		list  []any
		total int
	)
	switch v := body.(type) {
	case []any:
		list = v
	case map[string]any:
		if src.ItemsField == "" {
			return Page{}, fmt.Errorf("expected a JSON array, got an object")
		}
		raw, ok := v[src.ItemsField]
		if !ok {
			if msg, ok := v["Error"].(string); ok {
				return Page{}, fmt.Errorf("remote error: %s", msg)
			}
			return Page{}, fmt.Errorf("field %q missing", src.ItemsField)
		}
		if list, ok = raw.([]any); !ok {
			return Page{}, fmt.Errorf("field %q is not an array", src.ItemsField)
		}
		if src.TotalField != "" {
			total = parseTotal(v[src.TotalField])
		}
	default:
		return Page{}, fmt.Errorf("expected a JSON array, got %T", body)
	}

	items := make([]models.Record, 0, len(list))
	for i, it := range list {
		rec, ok := it.(map[string]any)
		if !ok {
			return Page{}, fmt.Errorf("element %d is not an object", i)
		}
		items = append(items, models.Record(rec))
	}
	if total == 0 {
		total = len(items)
	}

	return Page{Items: items, Total: total}, nil
}

func parseTotal(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}
