// Package dashboard holds the product-management state engine behind the inventory dashboard.
package dashboard

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RawRecord is a product as decoded from the wire. Numbers are kept as json.Number.
// Any field may be missing or spelled differently, see fieldAliases.
type RawRecord map[string]any

// Product is the canonical product row. Everything the store holds has gone through Normalize.
type Product struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int64   `json:"stock"`
}

// fieldAliases lists, per canonical field, the keys probed in order. The first present non-nil value wins.
var fieldAliases = struct {
	id, name, price, stock []string
}{
	id:    []string{"id", "ID"},
	name:  []string{"name", "NAME"},
	price: []string{"price", "PRICE", "amount"},
	stock: []string{"stock", "STOCK"},
}

// Normalize maps a raw record to a Product. It never fails: missing or
// unusable numbers become 0 and a missing name becomes "".
func Normalize(raw RawRecord) Product {
	return Product{
		ID:    toInt(lookup(raw, fieldAliases.id)),
		Name:  toText(lookup(raw, fieldAliases.name)),
		Price: toFloat(lookup(raw, fieldAliases.price)),
		Stock: toInt(lookup(raw, fieldAliases.stock)),
	}
}

// NormalizeAll normalizes every record. The result is never nil.
func NormalizeAll(raws []RawRecord) []Product {
	products := make([]Product, 0, len(raws))
	for _, raw := range raws {
		products = append(products, Normalize(raw))
	}
	return products
}

// Raw renders p with canonical keys, so that Normalize(p.Raw()) == p.
func (p Product) Raw() RawRecord {
	return RawRecord{
		"id":    p.ID,
		"name":  p.Name,
		"price": p.Price,
		"stock": p.Stock,
	}
}

func lookup(raw RawRecord, keys []string) any {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func toFloat(v any) float64 {
	var f float64
	switch n := v.(type) {
	case json.Number:
		f = parseFloat(string(n))
	case string:
		f = parseFloat(n)
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case bool:
		if n {
			f = 1
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// toInt truncates toward zero. Values outside the int64 range become 0.
func toInt(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case json.Number:
		if i, err := strconv.ParseInt(strings.TrimSpace(string(n)), 10, 64); err == nil {
			return i
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
			return i
		}
	}
	f := math.Trunc(toFloat(v))
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0
	}
	return int64(f)
}

func toText(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(s)
	default:
		return ""
	}
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
