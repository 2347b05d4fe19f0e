package model

import (
	"fmt"
	"strings"
)

const (
	SortCreatedAt = "createdAt"
	SortUpdatedAt = "updatedAt"
	SortTitle     = "title"
	SortPriority  = "priority"
	SortDueDate   = "dueDate"
	SortCompleted = "completed"
	SortCategory  = "category"
)

var sortFields = map[string]bool{
	SortCreatedAt: true,
	SortUpdatedAt: true,
	SortTitle:     true,
	SortPriority:  true,
	SortDueDate:   true,
	SortCompleted: true,
	SortCategory:  true,
}

// SortSpec orders a list query by a single field.
type SortSpec struct {
	Field string
	Desc  bool
}

var DefaultSort = SortSpec{Field: SortCreatedAt, Desc: true}

// ParseSort reads a sort token such as "title" or "-createdAt". A leading
// minus sorts descending. The empty token yields DefaultSort.
func ParseSort(token string) (SortSpec, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return DefaultSort, nil
	}
	spec := SortSpec{Field: token}
	if strings.HasPrefix(token, "-") {
		spec = SortSpec{Field: token[1:], Desc: true}
	}
	if !sortFields[spec.Field] {
		return SortSpec{}, fmt.Errorf("invalid sort field %q", spec.Field)
	}
	return spec, nil
}

func (s SortSpec) String() string {
	if s.Desc {
		return "-" + s.Field
	}
	return s.Field
}

func (s SortSpec) IsZero() bool {
	return s.Field == ""
}
