package query

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Apply runs params against db (already scoped to a model or table) and
// returns one page of results with the total match count.
func Apply[T any](db *gorm.DB, params Params, config Config) (*Result[T], error) {
	q := db.Session(&gorm.Session{})

	if params.Search != "" && len(config.SearchFields) > 0 {
		q = applySearch(q, params.Search, config)
	}
	for _, cond := range params.Conditions {
		q = applyCondition(q, cond, config)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}

	q = applySort(q, params, config)
	q = q.Offset((params.Page - 1) * params.PageSize).Limit(params.PageSize)

	data := []T{}
	if err := q.Find(&data).Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	totalPages := max(1, (int(total)+params.PageSize-1)/params.PageSize)
	return &Result[T]{
		Data: data,
		Pagination: Pagination{
			Page: params.Page, PageSize: params.PageSize,
			Total: int(total), TotalPages: totalPages,
		},
	}, nil
}

func applySearch(db *gorm.DB, search string, config Config) *gorm.DB {
	pattern := "%" + strings.ToLower(search) + "%"
	conds := make([]string, 0, len(config.SearchFields))
	args := make([]interface{}, 0, len(config.SearchFields))
	for _, f := range config.SearchFields {
		conds = append(conds, fmt.Sprintf("LOWER(%s) LIKE ?", config.Column(f)))
		args = append(args, pattern)
	}
	return db.Where(strings.Join(conds, " OR "), args...)
}

func applyCondition(db *gorm.DB, cond Condition, config Config) *gorm.DB {
	col := config.Column(cond.Field)

	switch cond.Operator {
	case OpEq:
		return db.Where(fmt.Sprintf("%s = ?", col), cond.Value)
	case OpNeq:
		return db.Where(fmt.Sprintf("%s <> ?", col), cond.Value)
	case OpGt:
		return db.Where(fmt.Sprintf("%s > ?", col), cond.Value)
	case OpGte:
		return db.Where(fmt.Sprintf("%s >= ?", col), cond.Value)
	case OpLt:
		return db.Where(fmt.Sprintf("%s < ?", col), cond.Value)
	case OpLte:
		return db.Where(fmt.Sprintf("%s <= ?", col), cond.Value)
	case OpIn:
		if len(cond.Values) == 0 {
			return db.Where("1 = 0")
		}
		return db.Where(fmt.Sprintf("%s IN ?", col), cond.Values)
	case OpIlike:
		return db.Where(fmt.Sprintf("LOWER(%s) LIKE ?", col), "%"+strings.ToLower(cond.Value)+"%")
	}
	return db
}

func applySort(db *gorm.DB, params Params, config Config) *gorm.DB {
	if params.SortBy == "" {
		if config.DefaultSort != "" {
			return db.Order(config.DefaultSort)
		}
		return db
	}
	order := config.Column(params.SortBy)
	if params.SortOrder == "desc" {
		order += " DESC"
	}
	return db.Order(order)
}
