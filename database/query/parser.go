package query

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Parse extracts list parameters from a query string. Filters on fields
// outside config.AllowedFilters and unknown sort fields are ignored.
func Parse(q url.Values, config Config) Params {
	params := Params{
		Page:      intOrDefault(q.Get("page"), 1),
		PageSize:  clamp(intOrDefault(q.Get("pageSize"), DefaultPageSize), 1, MaxPageSize),
		SortOrder: normalizeSortOrder(q.Get("order")),
		Search:    strings.TrimSpace(q.Get("search")),
	}
	if sortBy := q.Get("sortBy"); slices.Contains(config.AllowedSortFields, sortBy) {
		params.SortBy = sortBy
	}
	for _, field := range config.AllowedFilters {
		if v := q.Get(field); v != "" {
			params.Conditions = append(params.Conditions, parseCondition(field, v))
		}
	}
	return params
}

// parseCondition parses "op.value". A value without a known operator
// prefix is an equality match on the whole string.
func parseCondition(field, value string) Condition {
	op, raw, found := strings.Cut(value, ".")
	if !found || !Operator(op).valid() {
		return Condition{Field: field, Operator: OpEq, Value: value}
	}
	if Operator(op) == OpIn {
		raw = strings.TrimSuffix(strings.TrimPrefix(raw, "("), ")")
		var values []string
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		return Condition{Field: field, Operator: OpIn, Values: values}
	}
	return Condition{Field: field, Operator: Operator(op), Value: raw}
}

func intOrDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}

func clamp(v, lower, upper int) int {
	return max(lower, min(v, upper))
}

func normalizeSortOrder(s string) string {
	if strings.EqualFold(s, "desc") {
		return "desc"
	}
	return "asc"
}
