package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestar-hq/gestar-service/internal/domain"
	apperrors "github.com/gestar-hq/gestar-service/pkg/util"
)

func TestTicketFilterValidate(t *testing.T) {
	valid := TicketFilter{
		Statuses:   []domain.TicketStatus{domain.TicketStatusNuevo, domain.TicketStatusCerrado},
		Priorities: []domain.TicketPriority{domain.TicketPriorityAlta},
	}
	require.NoError(t, valid.Validate())

	badStatus := TicketFilter{Statuses: []domain.TicketStatus{"PERDIDO"}}
	assert.True(t, apperrors.IsValidation(badStatus.Validate()))

	badPriority := TicketFilter{Priorities: []domain.TicketPriority{"Urgente"}}
	assert.True(t, apperrors.IsValidation(badPriority.Validate()))
}

func TestTicketFilterCacheKey(t *testing.T) {
	assert.Equal(t, "all", TicketFilter{}.CacheKey())

	area := "IT"
	assignee := "Juan Perez"
	filter := TicketFilter{
		Statuses:   []domain.TicketStatus{domain.TicketStatusNuevo, domain.TicketStatusAsignado},
		Area:       &area,
		AssignedTo: &assignee,
		Limit:      50,
	}

	// equal filters produce equal keys
	sameArea := "IT"
	sameAssignee := "Juan Perez"
	same := TicketFilter{
		Statuses:   []domain.TicketStatus{domain.TicketStatusNuevo, domain.TicketStatusAsignado},
		Area:       &sameArea,
		AssignedTo: &sameAssignee,
		Limit:      50,
	}
	assert.Equal(t, filter.CacheKey(), same.CacheKey())

	// any differing field produces a different key
	other := same
	requester := "Maria Garcia"
	other.Requester = &requester
	assert.NotEqual(t, filter.CacheKey(), other.CacheKey())

	paged := same
	paged.Offset = 50
	assert.NotEqual(t, filter.CacheKey(), paged.CacheKey())
}
