package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gestar-hq/gestar-service/internal/auth"
	"github.com/gestar-hq/gestar-service/internal/cache"
	"github.com/gestar-hq/gestar-service/internal/domain"
	"github.com/gestar-hq/gestar-service/internal/events"
	"github.com/gestar-hq/gestar-service/internal/repository"
	apperrors "github.com/gestar-hq/gestar-service/pkg/util"
)

const unassignedLabel = "Sin Asignar"

// LifecycleService is the core engine: it validates and applies ticket
// mutations against role/area rules, journals every detected change, and
// stamps terminal timestamps.
type LifecycleService struct {
	store      repository.Store
	cache      cache.ViewCache
	dispatcher events.Dispatcher
	now        func() time.Time
}

// LifecycleDependencies bundles collaborators for the engine.
type LifecycleDependencies struct {
	Store      repository.Store
	Cache      cache.ViewCache
	Dispatcher events.Dispatcher
	// Now supplies timestamps; defaults to UTC wall clock.
	Now func() time.Time
}

// NewLifecycleService constructs the engine.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	now := deps.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	viewCache := deps.Cache
	if viewCache == nil {
		viewCache = cache.NoopViewCache{}
	}
	return &LifecycleService{
		store:      deps.Store,
		cache:      viewCache,
		dispatcher: deps.Dispatcher,
		now:        now,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title             string
	Description       string
	Area              string
	Category          string
	Subcategory       *string
	Division          string
	Plant             string
	Priority          domain.TicketPriority
	SuggestedUrgency  *string
	SuggestedAssignee *string
	Requester         string
	CreatedBy         string
}

// CreateTicket inserts a new ticket in status NUEVO and journals its birth.
func (s *LifecycleService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" {
		return nil, apperrors.NewValidationError("titulo required", nil)
	}
	if description == "" {
		return nil, apperrors.NewValidationError("descripcion required", nil)
	}
	if strings.TrimSpace(input.Requester) == "" {
		return nil, apperrors.NewValidationError("solicitante required", nil)
	}
	if strings.TrimSpace(input.Area) == "" {
		return nil, apperrors.NewValidationError("area_destino required", nil)
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedia
	}
	if !priority.IsValid() {
		return nil, apperrors.NewValidationError("unknown prioridad", map[string]any{"prioridad": string(priority)})
	}

	if err := s.validateCategoryPair(ctx, input.Category, input.Subcategory); err != nil {
		return nil, err
	}

	createdBy := input.CreatedBy
	if createdBy == "" {
		createdBy = input.Requester
	}

	ticket := &domain.Ticket{
		Title:             title,
		Description:       description,
		Area:              input.Area,
		Category:          input.Category,
		Subcategory:       input.Subcategory,
		Division:          input.Division,
		Plant:             input.Plant,
		Priority:          priority,
		SuggestedUrgency:  input.SuggestedUrgency,
		SuggestedAssignee: input.SuggestedAssignee,
		Status:            domain.TicketStatusNuevo,
		Requester:         input.Requester,
		CreatedBy:         createdBy,
	}

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Tickets().Create(ctx, ticket); err != nil {
			return apperrors.NewStorageError(err)
		}
		entry := &domain.AuditEntry{
			TicketID:  ticket.ID,
			Author:    createdBy,
			EventType: domain.AuditEventSystem,
			Message:   "Ticket creado",
		}
		if err := tx.AuditLog().Append(ctx, entry); err != nil {
			return apperrors.NewStorageError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.PrefixTickets)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    createdBy,
		Payload: events.TicketCreatedPayload{
			Area:     ticket.Area,
			Priority: ticket.Priority,
			Title:    ticket.Title,
		},
	})
	return ticket, nil
}

// ApplyUpdate validates and applies a ticket mutation on behalf of actor.
// Each changed audited dimension produces exactly one audit entry; entering a
// terminal status stamps closed_at once. The reads, audit appends, and field
// writes share one transaction.
func (s *LifecycleService) ApplyUpdate(ctx context.Context, ticketID int64, actor *domain.User, update domain.TicketUpdate) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewAuthorizationError("acting user required")
	}
	if update.Status != nil && !update.Status.IsValid() {
		return nil, apperrors.NewValidationError("unknown estado", map[string]any{"estado": string(*update.Status)})
	}
	if update.Priority != nil && !update.Priority.IsValid() {
		return nil, apperrors.NewValidationError("unknown prioridad", map[string]any{"prioridad": string(*update.Priority)})
	}

	var (
		ticket  *domain.Ticket
		emitted []events.Event
	)
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		current, err := tx.Tickets().GetByID(ctx, ticketID)
		if err != nil {
			return notFoundOrStorage(err, "ticket")
		}

		statusChanged := update.Status != nil && *update.Status != current.Status
		assigneeChanged := update.AssignedTo != nil && normalizeAssignee(update.AssignedTo) != normalizeAssignee(current.AssignedTo)
		priorityChanged := update.Priority != nil && *update.Priority != current.Priority

		if err := s.authorizeUpdate(actor, current, update, assigneeChanged, priorityChanged); err != nil {
			return err
		}

		now := s.now()

		if statusChanged {
			entry := &domain.AuditEntry{
				TicketID:  current.ID,
				Author:    actor.Name,
				EventType: domain.AuditEventStatusChange,
				Message:   fmt.Sprintf("estado: %s -> %s", current.Status, *update.Status),
				Payload: map[string]any{
					"from": string(current.Status),
					"to":   string(*update.Status),
				},
			}
			if err := tx.AuditLog().Append(ctx, entry); err != nil {
				return apperrors.NewStorageError(err)
			}
			emitted = append(emitted, events.Event{
				Type:     events.EventTicketStatusChanged,
				TicketID: current.ID,
				Actor:    actor.Name,
				Payload: events.TicketStatusChangedPayload{
					OldStatus: current.Status,
					NewStatus: *update.Status,
				},
			})
		}
		if assigneeChanged {
			entry := &domain.AuditEntry{
				TicketID:  current.ID,
				Author:    actor.Name,
				EventType: domain.AuditEventAssignment,
				Message:   fmt.Sprintf("responsable_asignado: %s -> %s", assigneeLabel(current.AssignedTo), assigneeLabel(update.AssignedTo)),
			}
			if err := tx.AuditLog().Append(ctx, entry); err != nil {
				return apperrors.NewStorageError(err)
			}
			emitted = append(emitted, events.Event{
				Type:     events.EventTicketAssigned,
				TicketID: current.ID,
				Actor:    actor.Name,
				Payload: events.TicketAssignedPayload{
					OldAssignee: current.AssignedTo,
					NewAssignee: update.AssignedTo,
				},
			})
		}
		if priorityChanged {
			entry := &domain.AuditEntry{
				TicketID:  current.ID,
				Author:    actor.Name,
				EventType: domain.AuditEventPriorityChange,
				Message:   fmt.Sprintf("prioridad: %s -> %s", current.Priority, *update.Priority),
			}
			if err := tx.AuditLog().Append(ctx, entry); err != nil {
				return apperrors.NewStorageError(err)
			}
			emitted = append(emitted, events.Event{
				Type:     events.EventTicketPriorityChanged,
				TicketID: current.ID,
				Actor:    actor.Name,
				Payload: events.TicketPriorityChangedPayload{
					OldPriority: current.Priority,
					NewPriority: *update.Priority,
				},
			})
		}

		// closed_at fires once, the first time the ticket enters a
		// terminal status, and is never cleared afterwards.
		if update.Status != nil && update.Status.IsTerminal() && current.ClosedAt == nil {
			if err := tx.Tickets().StampClosedAt(ctx, current.ID, now); err != nil {
				return apperrors.NewStorageError(err)
			}
			closedAt := now
			current.ClosedAt = &closedAt
		}

		if err := tx.Tickets().ApplyUpdate(ctx, current.ID, update, now); err != nil {
			return notFoundOrStorage(err, "ticket")
		}

		if update.Status != nil {
			current.Status = *update.Status
		}
		if update.AssignedTo != nil {
			if *update.AssignedTo == "" {
				current.AssignedTo = nil
			} else {
				current.AssignedTo = update.AssignedTo
			}
		}
		if update.Priority != nil {
			current.Priority = *update.Priority
		}
		current.UpdatedAt = now
		ticket = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.PrefixTickets)
	for _, event := range emitted {
		s.publishEvent(ctx, event)
	}
	return ticket, nil
}

// authorizeUpdate guards the two capability-gated dimensions. Requests that
// leave a dimension unchanged need no capability for it.
func (s *LifecycleService) authorizeUpdate(actor *domain.User, ticket *domain.Ticket, update domain.TicketUpdate, assigneeChanged, priorityChanged bool) error {
	if priorityChanged && !auth.CanEditPriority(actor) {
		return apperrors.NewAuthorizationError("role may not edit prioridad")
	}
	if assigneeChanged {
		selfAssign := update.AssignedTo != nil && *update.AssignedTo == actor.Name && ticket.Status == domain.TicketStatusNuevo
		if selfAssign {
			if !auth.CanSelfAssign(actor, ticket) {
				return apperrors.NewAuthorizationError("role/area may not take this ticket")
			}
		} else if !auth.CanReassign(actor, ticket) {
			return apperrors.NewAuthorizationError("role/area may not reassign this ticket")
		}
	}
	return nil
}

// GetTicket loads one ticket.
func (s *LifecycleService) GetTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.store.Tickets().GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundOrStorage(err, "ticket")
	}
	return ticket, nil
}

// ListTickets returns tickets matching the structured filter, served from the
// read-view cache when fresh.
func (s *LifecycleService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	key := cache.PrefixTickets + filter.CacheKey()
	var cached []domain.Ticket
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}
	tickets, err := s.store.Tickets().ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	s.cache.Set(ctx, key, tickets)
	return tickets, nil
}

// ListAuditLog returns a ticket's journal in insertion order.
func (s *LifecycleService) ListAuditLog(ctx context.Context, ticketID int64) ([]domain.AuditEntry, error) {
	if _, err := s.store.Tickets().GetByID(ctx, ticketID); err != nil {
		return nil, notFoundOrStorage(err, "ticket")
	}
	entries, err := s.store.AuditLog().ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return entries, nil
}

// PostComment appends one comment entry to a ticket's journal.
func (s *LifecycleService) PostComment(ctx context.Context, ticketID int64, author, text string) (*domain.AuditEntry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("comment text required", nil)
	}
	if author == "" {
		return nil, apperrors.NewValidationError("author required", nil)
	}
	if _, err := s.store.Tickets().GetByID(ctx, ticketID); err != nil {
		return nil, notFoundOrStorage(err, "ticket")
	}
	entry := &domain.AuditEntry{
		TicketID:  ticketID,
		Author:    author,
		EventType: domain.AuditEventComment,
		Message:   text,
	}
	if err := s.store.AuditLog().Append(ctx, entry); err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventCommentPosted,
		TicketID: ticketID,
		Actor:    author,
		Payload:  events.CommentPostedPayload{Preview: stringPreview(text, 120)},
	})
	return entry, nil
}

// CreateTask inserts a task in status PENDIENTE under an existing ticket.
// Tasks are not journaled.
func (s *LifecycleService) CreateTask(ctx context.Context, ticketID int64, description, responsible string) (*domain.Task, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, apperrors.NewValidationError("descripcion required", nil)
	}
	if _, err := s.store.Tickets().GetByID(ctx, ticketID); err != nil {
		return nil, notFoundOrStorage(err, "ticket")
	}
	task := &domain.Task{
		TicketID:    ticketID,
		Description: description,
		Responsible: responsible,
		Status:      domain.TaskStatusPendiente,
	}
	if err := s.store.Tasks().Create(ctx, task); err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return task, nil
}

// SetTaskStatus flips a task's status. Direct field write, no audit entry.
func (s *LifecycleService) SetTaskStatus(ctx context.Context, taskID int64, status domain.TaskStatus) error {
	if !status.IsValid() {
		return apperrors.NewValidationError("unknown task estado", map[string]any{"estado": string(status)})
	}
	if err := s.store.Tasks().SetStatus(ctx, taskID, status); err != nil {
		return notFoundOrStorage(err, "task")
	}
	return nil
}

// ListTasks returns the tasks under a ticket.
func (s *LifecycleService) ListTasks(ctx context.Context, ticketID int64) ([]domain.Task, error) {
	tasks, err := s.store.Tasks().ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return tasks, nil
}

// ListPendingTasksByUser returns a user's open tasks joined with their
// tickets' titles.
func (s *LifecycleService) ListPendingTasksByUser(ctx context.Context, responsible string) ([]domain.TaskWithTicket, error) {
	tasks, err := s.store.Tasks().ListPendingByUser(ctx, responsible)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return tasks, nil
}

func (s *LifecycleService) validateCategoryPair(ctx context.Context, category string, subcategory *string) error {
	if category == "" || subcategory == nil || *subcategory == "" {
		return nil
	}
	catalogs := s.store.Catalogs()
	catalog, err := catalogs.GetCatalogByCode(ctx, domain.CatalogCategorias)
	if err != nil {
		return notFoundOrStorage(err, "catalog categorias")
	}
	parent, err := catalogs.FindRootItemByLabel(ctx, catalog.ID, category)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("unknown categoria", map[string]any{"categoria": category})
		}
		return apperrors.NewStorageError(err)
	}
	if _, err := catalogs.FindItem(ctx, catalog.ID, *subcategory, &parent.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("subcategoria does not belong to categoria", map[string]any{
				"categoria":    category,
				"subcategoria": *subcategory,
			})
		}
		return apperrors.NewStorageError(err)
	}
	return nil
}

func (s *LifecycleService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func normalizeAssignee(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func assigneeLabel(value *string) string {
	if value == nil || *value == "" {
		return unassignedLabel
	}
	return *value
}

func notFoundOrStorage(err error, resource string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, nil)
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return apperrors.NewStorageError(err)
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
