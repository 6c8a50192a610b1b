package repository

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gestar-hq/gestar-service/internal/domain"
	apperrors "github.com/gestar-hq/gestar-service/pkg/util"
)

// TicketFilter is the structured ticket query. Each field maps to exactly one
// allow-listed column; there is no free-form column selection.
type TicketFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	Area       *string
	AssignedTo *string
	Requester  *string
	Limit      int
	Offset     int
}

// Validate rejects unknown status or priority values before they reach a query.
func (f TicketFilter) Validate() error {
	for _, status := range f.Statuses {
		if !status.IsValid() {
			return apperrors.NewValidationError("unknown estado in filter", map[string]any{"estado": string(status)})
		}
	}
	for _, priority := range f.Priorities {
		if !priority.IsValid() {
			return apperrors.NewValidationError("unknown prioridad in filter", map[string]any{"prioridad": string(priority)})
		}
	}
	return nil
}

// CacheKey renders the filter as a stable string: fields sorted by name,
// list values joined in order. Equal filters always produce equal keys.
func (f TicketFilter) CacheKey() string {
	parts := make([]string, 0, 7)
	if len(f.Statuses) > 0 {
		values := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			values[i] = string(s)
		}
		parts = append(parts, "estado="+strings.Join(values, "|"))
	}
	if len(f.Priorities) > 0 {
		values := make([]string, len(f.Priorities))
		for i, p := range f.Priorities {
			values[i] = string(p)
		}
		parts = append(parts, "prioridad="+strings.Join(values, "|"))
	}
	if f.Area != nil {
		parts = append(parts, "area_destino="+*f.Area)
	}
	if f.AssignedTo != nil {
		parts = append(parts, "responsable_asignado="+*f.AssignedTo)
	}
	if f.Requester != nil {
		parts = append(parts, "solicitante="+*f.Requester)
	}
	if f.Limit > 0 || f.Offset > 0 {
		parts = append(parts, fmt.Sprintf("page=%d:%d", f.Limit, f.Offset))
	}
	sort.Strings(parts)
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, ";")
}
