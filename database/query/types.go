// Package query turns list-endpoint query strings into paginated GORM
// queries. Filters use the field=op.value form, for example
// ?role=eq.admin&is_active=eq.true&sortBy=email&order=desc&page=2.
//
// Only fields named in Config are ever interpolated into SQL; everything a
// client sends is bound as a parameter.
package query

// Operator is a filter operator.
type Operator string

const (
	OpEq    Operator = "eq"
	OpNeq   Operator = "neq"
	OpGt    Operator = "gt"
	OpGte   Operator = "gte"
	OpLt    Operator = "lt"
	OpLte   Operator = "lte"
	OpIn    Operator = "in"
	OpIlike Operator = "ilike"
)

func (o Operator) valid() bool {
	switch o {
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte, OpIn, OpIlike:
		return true
	}
	return false
}

// Condition is a single filter.
type Condition struct {
	Field    string
	Operator Operator
	Value    string
	Values   []string // in
}

// Params holds parsed list parameters.
type Params struct {
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
	Search     string
	Conditions []Condition
}

// Pagination metadata returned with every page.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Result is one page of T.
type Result[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Config declares what a list endpoint accepts. Field names are API names;
// Columns maps them to SQL columns where they differ.
type Config struct {
	SearchFields      []string
	AllowedSortFields []string
	AllowedFilters    []string
	Columns           map[string]string
	DefaultSort       string
}

// Column returns the SQL column for an API field.
func (c Config) Column(field string) string {
	if col, ok := c.Columns[field]; ok {
		return col
	}
	return field
}
