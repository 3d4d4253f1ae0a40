package store

import (
	"database/sql"
	"strings"
	"time"

	"pvd/internal/models"
)

// prefixed rewrites a comma-separated column list so every column is
// qualified with the given table alias.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVisitor(row rowScanner) (*models.Visitor, error) {
	v := &models.Visitor{}
	var createdAt, updatedAt int64
	err := row.Scan(&v.EntityID, &v.DisplayName, &v.Handle, &v.Phone,
		&v.IsContact, &v.IsMutualContact, &v.IsPremium, &v.IsVerified,
		&v.IsScam, &v.IsFake, &v.Bio, &v.PhotoCount, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	v.CreatedAt = time.Unix(createdAt, 0)
	v.UpdatedAt = time.Unix(updatedAt, 0)
	return v, nil
}

func scanVisitorWithAggregates(rows *sql.Rows) (*models.Visitor, error) {
	v := &models.Visitor{}
	var createdAt, updatedAt, firstVisit, lastVisit int64
	err := rows.Scan(&v.EntityID, &v.DisplayName, &v.Handle, &v.Phone,
		&v.IsContact, &v.IsMutualContact, &v.IsPremium, &v.IsVerified,
		&v.IsScam, &v.IsFake, &v.Bio, &v.PhotoCount, &createdAt, &updatedAt,
		&v.VisitCount, &firstVisit, &lastVisit)
	if err != nil {
		return nil, err
	}
	v.CreatedAt = time.Unix(createdAt, 0)
	v.UpdatedAt = time.Unix(updatedAt, 0)
	v.FirstVisit = time.Unix(firstVisit, 0)
	v.LastVisit = time.Unix(lastVisit, 0)
	return v, nil
}
