package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/iliyamo/skycomfort-server/internal/database"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// whereClause renders f.Where as "WHERE a = ? AND b = ?" with keys in a
// stable order. Only columns in allowed may be filtered on.
func whereClause(f Filter, allowed map[string]bool) (string, []any, error) {
	if len(f.Where) == 0 {
		return "", nil, nil
	}
	cols := make([]string, 0, len(f.Where))
	for col := range f.Where {
		if !allowed[col] {
			return "", nil, fmt.Errorf("%w: %s", ErrInvalidFilter, col)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)
	conds := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		conds[i] = col + " = ?"
		args[i] = f.Where[col]
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func limitClause(f Filter) string {
	if f.Limit <= 0 {
		return ""
	}
	if f.Offset > 0 {
		return fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}
	return fmt.Sprintf(" LIMIT %d", f.Limit)
}

// setList accumulates "col = ?" pairs for partial updates.
type setList struct {
	cols []string
	args []any
}

func (s *setList) add(col string, v any) {
	s.cols = append(s.cols, col+" = ?")
	s.args = append(s.args, v)
}

func (s *setList) empty() bool { return len(s.cols) == 0 }

func (s *setList) sql() string { return strings.Join(s.cols, ", ") }

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// translate maps driver errors onto the repository sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	switch database.ClassifyError(err) {
	case database.ClassUniqueViolation:
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case database.ClassRowReferenced:
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case database.ClassMissingParent:
		return fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	return err
}
