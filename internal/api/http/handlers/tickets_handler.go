package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gestar-hq/gestar-service/internal/api/dto"
	"github.com/gestar-hq/gestar-service/internal/auth"
	"github.com/gestar-hq/gestar-service/internal/domain"
	"github.com/gestar-hq/gestar-service/internal/repository"
	"github.com/gestar-hq/gestar-service/internal/service"
	apperrors "github.com/gestar-hq/gestar-service/pkg/util"
)

// TicketsHandler manages ticket lifecycle endpoints.
type TicketsHandler struct {
	lifecycle *service.LifecycleService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(lifecycle *service.LifecycleService) *TicketsHandler {
	return &TicketsHandler{lifecycle: lifecycle}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	requester := req.Requester
	if requester == "" {
		requester = actor.Name
	}
	input := service.TicketCreateInput{
		Title:             req.Title,
		Description:       req.Description,
		Area:              req.Area,
		Category:          req.Category,
		Subcategory:       req.Subcategory,
		Division:          req.Division,
		Plant:             req.Plant,
		Priority:          req.Priority,
		SuggestedUrgency:  req.SuggestedUrgency,
		SuggestedAssignee: req.SuggestedAssignee,
		Requester:         requester,
		CreatedBy:         actor.Name,
	}
	ticket, err := h.lifecycle.CreateTicket(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter := parseTicketFilter(c)
	tickets, err := h.lifecycle.ListTickets(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticketID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ticket, err := h.lifecycle.GetTicket(c.Context(), ticketID)
	if err != nil {
		return err
	}
	tasks, err := h.lifecycle.ListTasks(c.Context(), ticketID)
	if err != nil {
		return err
	}
	log, err := h.lifecycle.ListAuditLog(c.Context(), ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, tasks, log)})
}

// UpdateTicket PATCH /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	ticketID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	update := domain.TicketUpdate{
		Status:     req.Status,
		AssignedTo: req.AssignedTo,
		Priority:   req.Priority,
	}
	ticket, err := h.lifecycle.ApplyUpdate(c.Context(), ticketID, actor, update)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	ticketID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	entry, err := h.lifecycle.PostComment(c.Context(), ticketID, actor.Name, req.Body)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": auditEntryResponse(entry)})
}

// ListLog GET /tickets/:id/log.
func (h *TicketsHandler) ListLog(c *fiber.Ctx) error {
	ticketID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	entries, err := h.lifecycle.ListAuditLog(c.Context(), ticketID)
	if err != nil {
		return err
	}
	items := make([]dto.AuditEntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, auditEntryResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateTask POST /tickets/:id/tasks.
func (h *TicketsHandler) CreateTask(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	ticketID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	responsible := actor.Name
	if req.Responsible != nil && *req.Responsible != "" {
		responsible = *req.Responsible
	}
	task, err := h.lifecycle.CreateTask(c.Context(), ticketID, req.Description, responsible)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": taskResponse(task)})
}

// ListTasks GET /tickets/:id/tasks.
func (h *TicketsHandler) ListTasks(c *fiber.Ctx) error {
	ticketID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	tasks, err := h.lifecycle.ListTasks(c.Context(), ticketID)
	if err != nil {
		return err
	}
	items := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		items = append(items, taskResponse(&tasks[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateTaskStatus PATCH /tasks/:id/status.
func (h *TicketsHandler) UpdateTaskStatus(c *fiber.Ctx) error {
	taskID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateTaskStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.lifecycle.SetTaskStatus(c.Context(), taskID, req.Status); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": taskID, "status": req.Status}})
}

// ListPendingTasks GET /tasks/pending. Without a user query it lists the
// caller's own pending tasks.
func (h *TicketsHandler) ListPendingTasks(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	responsible := c.Query("user")
	if responsible == "" {
		responsible = actor.Name
	}
	tasks, err := h.lifecycle.ListPendingTasksByUser(c.Context(), responsible)
	if err != nil {
		return err
	}
	items := make([]dto.PendingTaskResponse, 0, len(tasks))
	for i := range tasks {
		items = append(items, dto.PendingTaskResponse{
			TaskResponse: taskResponse(&tasks[i].Task),
			TicketTitle:  tasks[i].TicketTitle,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseTicketFilter(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.TrimSpace(part)))
		}
	}
	if area := c.Query("area"); area != "" {
		filter.Area = &area
	}
	if assignee := c.Query("assigned_to"); assignee != "" {
		filter.AssignedTo = &assignee
	}
	if requester := c.Query("requester"); requester != "" {
		filter.Requester = &requester
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseID(c *fiber.Ctx, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", map[string]any{"id": c.Params(param)})
	}
	return id, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:         ticket.ID,
		Title:      ticket.Title,
		Area:       ticket.Area,
		Priority:   ticket.Priority,
		Status:     ticket.Status,
		AssignedTo: ticket.AssignedTo,
		Requester:  ticket.Requester,
		CreatedAt:  ticket.CreatedAt,
		UpdatedAt:  ticket.UpdatedAt,
		ClosedAt:   ticket.ClosedAt,
	}
}

func ticketDetail(ticket *domain.Ticket, tasks []domain.Task, log []domain.AuditEntry) dto.TicketDetailResponse {
	taskItems := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		taskItems = append(taskItems, taskResponse(&tasks[i]))
	}
	logItems := make([]dto.AuditEntryResponse, 0, len(log))
	for i := range log {
		logItems = append(logItems, auditEntryResponse(&log[i]))
	}
	return dto.TicketDetailResponse{
		ID:                ticket.ID,
		Title:             ticket.Title,
		Description:       ticket.Description,
		Area:              ticket.Area,
		Category:          ticket.Category,
		Subcategory:       ticket.Subcategory,
		Division:          ticket.Division,
		Plant:             ticket.Plant,
		Priority:          ticket.Priority,
		SuggestedUrgency:  ticket.SuggestedUrgency,
		SuggestedAssignee: ticket.SuggestedAssignee,
		AssignedTo:        ticket.AssignedTo,
		Status:            ticket.Status,
		Requester:         ticket.Requester,
		CreatedBy:         ticket.CreatedBy,
		CreatedAt:         ticket.CreatedAt,
		UpdatedAt:         ticket.UpdatedAt,
		ClosedAt:          ticket.ClosedAt,
		Tasks:             taskItems,
		Log:               logItems,
	}
}

func auditEntryResponse(entry *domain.AuditEntry) dto.AuditEntryResponse {
	return dto.AuditEntryResponse{
		ID:        entry.ID,
		TicketID:  entry.TicketID,
		Author:    entry.Author,
		EventType: entry.EventType,
		Message:   entry.Message,
		Payload:   entry.Payload,
		CreatedAt: entry.CreatedAt,
	}
}

func taskResponse(task *domain.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:          task.ID,
		TicketID:    task.TicketID,
		Description: task.Description,
		Responsible: task.Responsible,
		Status:      task.Status,
		CreatedAt:   task.CreatedAt,
	}
}
