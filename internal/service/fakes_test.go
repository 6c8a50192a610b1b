package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gestar-hq/gestar-service/internal/domain"
	"github.com/gestar-hq/gestar-service/internal/repository"
)

// fakeStore is an in-memory repository.Store. WithinTx runs the callback
// against the same store, which matches the nested-transaction contract
// closely enough for service-level tests.
type fakeStore struct {
	tickets  *fakeTicketRepo
	tasks    *fakeTaskRepo
	audit    *fakeAuditRepo
	users    *fakeUserRepo
	catalogs *fakeCatalogRepo
}

func newFakeStore() *fakeStore {
	store := &fakeStore{
		tickets:  &fakeTicketRepo{rows: map[int64]domain.Ticket{}},
		tasks:    &fakeTaskRepo{rows: map[int64]domain.Task{}},
		audit:    &fakeAuditRepo{},
		users:    &fakeUserRepo{rows: map[int64]domain.User{}},
		catalogs: &fakeCatalogRepo{catalogs: map[int64]domain.Catalog{}, items: map[int64]domain.CatalogItem{}},
	}
	store.tasks.tickets = store.tickets
	return store
}

func (s *fakeStore) Tickets() repository.TicketRepository    { return s.tickets }
func (s *fakeStore) Tasks() repository.TaskRepository        { return s.tasks }
func (s *fakeStore) AuditLog() repository.AuditLogRepository { return s.audit }
func (s *fakeStore) Users() repository.UserRepository        { return s.users }
func (s *fakeStore) Catalogs() repository.CatalogRepository  { return s.catalogs }

func (s *fakeStore) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	return fn(s)
}

type fakeTicketRepo struct {
	rows      map[int64]domain.Ticket
	nextID    int64
	listCalls int
}

func (r *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.nextID++
	ticket.ID = r.nextID
	now := time.Now().UTC()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.rows[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	row, ok := r.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := row
	return &copied, nil
}

func (r *fakeTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.listCalls++
	var result []domain.Ticket
	for _, row := range r.rows {
		if !matchesFilter(row, filter) {
			continue
		}
		result = append(result, row)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].UpdatedAt.Equal(result[j].UpdatedAt) {
			return result[i].UpdatedAt.After(result[j].UpdatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func matchesFilter(ticket domain.Ticket, filter repository.TicketFilter) bool {
	if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
		return false
	}
	if len(filter.Priorities) > 0 && !containsPriority(filter.Priorities, ticket.Priority) {
		return false
	}
	if filter.Area != nil && ticket.Area != *filter.Area {
		return false
	}
	if filter.AssignedTo != nil && (ticket.AssignedTo == nil || *ticket.AssignedTo != *filter.AssignedTo) {
		return false
	}
	if filter.Requester != nil && ticket.Requester != *filter.Requester {
		return false
	}
	return true
}

func containsStatus(list []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, candidate := range list {
		if candidate == status {
			return true
		}
	}
	return false
}

func containsPriority(list []domain.TicketPriority, priority domain.TicketPriority) bool {
	for _, candidate := range list {
		if candidate == priority {
			return true
		}
	}
	return false
}

func (r *fakeTicketRepo) ApplyUpdate(ctx context.Context, id int64, update domain.TicketUpdate, updatedAt time.Time) error {
	row, ok := r.rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if update.Status != nil {
		row.Status = *update.Status
	}
	if update.AssignedTo != nil {
		if *update.AssignedTo == "" {
			row.AssignedTo = nil
		} else {
			assignee := *update.AssignedTo
			row.AssignedTo = &assignee
		}
	}
	if update.Priority != nil {
		row.Priority = *update.Priority
	}
	row.UpdatedAt = updatedAt
	r.rows[id] = row
	return nil
}

func (r *fakeTicketRepo) StampClosedAt(ctx context.Context, id int64, closedAt time.Time) error {
	row, ok := r.rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if row.ClosedAt == nil {
		stamped := closedAt
		row.ClosedAt = &stamped
		r.rows[id] = row
	}
	return nil
}

func (r *fakeTicketRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.rows)), nil
}

type fakeTaskRepo struct {
	rows    map[int64]domain.Task
	nextID  int64
	tickets *fakeTicketRepo
}

func (r *fakeTaskRepo) Create(ctx context.Context, task *domain.Task) error {
	r.nextID++
	task.ID = r.nextID
	task.CreatedAt = time.Now().UTC()
	r.rows[task.ID] = *task
	return nil
}

func (r *fakeTaskRepo) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	row, ok := r.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := row
	return &copied, nil
}

func (r *fakeTaskRepo) SetStatus(ctx context.Context, id int64, status domain.TaskStatus) error {
	row, ok := r.rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	row.Status = status
	r.rows[id] = row
	return nil
}

func (r *fakeTaskRepo) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Task, error) {
	var result []domain.Task
	for _, row := range r.rows {
		if row.TicketID == ticketID {
			result = append(result, row)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeTaskRepo) ListPendingByUser(ctx context.Context, responsible string) ([]domain.TaskWithTicket, error) {
	var result []domain.TaskWithTicket
	for _, row := range r.rows {
		if row.Responsible != responsible || row.Status == domain.TaskStatusCompletada {
			continue
		}
		withTicket := domain.TaskWithTicket{Task: row}
		if ticket, ok := r.tickets.rows[row.TicketID]; ok {
			withTicket.TicketTitle = ticket.Title
		}
		result = append(result, withTicket)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type fakeAuditRepo struct {
	entries []domain.AuditEntry
	nextID  int64
}

func (r *fakeAuditRepo) Append(ctx context.Context, entry *domain.AuditEntry) error {
	r.nextID++
	entry.ID = r.nextID
	entry.CreatedAt = time.Now().UTC()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) ListByTicket(ctx context.Context, ticketID int64) ([]domain.AuditEntry, error) {
	var result []domain.AuditEntry
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}

type fakeUserRepo struct {
	rows   map[int64]domain.User
	nextID int64
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.nextID++
	user.ID = r.nextID
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.rows[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, id int64, update domain.UserUpdate, updatedAt time.Time) error {
	row, ok := r.rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if update.Role != nil {
		row.Role = *update.Role
	}
	if update.Area != nil {
		row.Area = *update.Area
	}
	if update.Email != nil {
		row.Email = *update.Email
	}
	if update.Active != nil {
		row.Active = *update.Active
	}
	row.UpdatedAt = updatedAt
	r.rows[id] = row
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row, ok := r.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := row
	return &copied, nil
}

func (r *fakeUserRepo) GetByName(ctx context.Context, name string) (*domain.User, error) {
	for _, row := range r.rows {
		if row.Name == name {
			copied := row
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByNameAndEmail(ctx context.Context, name, email string) (*domain.User, error) {
	for _, row := range r.rows {
		if row.Name == name && row.Email == email {
			copied := row
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(ctx context.Context, onlyActive bool) ([]domain.User, error) {
	var result []domain.User
	for _, row := range r.rows {
		if onlyActive && !row.Active {
			continue
		}
		result = append(result, row)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

type fakeCatalogRepo struct {
	catalogs      map[int64]domain.Catalog
	items         map[int64]domain.CatalogItem
	nextCatalogID int64
	nextItemID    int64
}

func (r *fakeCatalogRepo) GetCatalogByCode(ctx context.Context, code string) (*domain.Catalog, error) {
	for _, row := range r.catalogs {
		if row.Code == code {
			copied := row
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeCatalogRepo) CreateCatalog(ctx context.Context, catalog *domain.Catalog) error {
	for id, row := range r.catalogs {
		if row.Code == catalog.Code {
			row.Label = catalog.Label
			r.catalogs[id] = row
			catalog.ID = id
			catalog.CreatedAt = row.CreatedAt
			return nil
		}
	}
	r.nextCatalogID++
	catalog.ID = r.nextCatalogID
	catalog.CreatedAt = time.Now().UTC()
	r.catalogs[catalog.ID] = *catalog
	return nil
}

func (r *fakeCatalogRepo) GetItemByID(ctx context.Context, id int64) (*domain.CatalogItem, error) {
	row, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := row
	return &copied, nil
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *fakeCatalogRepo) FindItem(ctx context.Context, catalogID int64, label string, parentItemID *int64) (*domain.CatalogItem, error) {
	for _, row := range r.items {
		if row.CatalogID == catalogID && row.Label == label && sameParent(row.ParentItemID, parentItemID) {
			copied := row
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeCatalogRepo) FindRootItemByLabel(ctx context.Context, catalogID int64, label string) (*domain.CatalogItem, error) {
	return r.FindItem(ctx, catalogID, label, nil)
}

func (r *fakeCatalogRepo) InsertItem(ctx context.Context, item *domain.CatalogItem) error {
	r.nextItemID++
	item.ID = r.nextItemID
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	r.items[item.ID] = *item
	return nil
}

func (r *fakeCatalogRepo) UpdateItem(ctx context.Context, id int64, update domain.CatalogItemUpdate, updatedAt time.Time) error {
	row, ok := r.items[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if update.Label != nil {
		row.Label = strings.TrimSpace(*update.Label)
	}
	if update.SortOrder != nil {
		row.SortOrder = *update.SortOrder
	}
	if update.Active != nil {
		row.Active = *update.Active
	}
	row.UpdatedAt = updatedAt
	r.items[id] = row
	return nil
}

func (r *fakeCatalogRepo) ListRootItems(ctx context.Context, catalogID int64, includeInactive bool) ([]domain.CatalogItem, error) {
	var result []domain.CatalogItem
	for _, row := range r.items {
		if row.CatalogID != catalogID || row.ParentItemID != nil {
			continue
		}
		if !includeInactive && !row.Active {
			continue
		}
		result = append(result, row)
	}
	sortItems(result)
	return result, nil
}

func (r *fakeCatalogRepo) ListChildren(ctx context.Context, parentItemID int64, includeInactive bool) ([]domain.CatalogItem, error) {
	var result []domain.CatalogItem
	for _, row := range r.items {
		if row.ParentItemID == nil || *row.ParentItemID != parentItemID {
			continue
		}
		if !includeInactive && !row.Active {
			continue
		}
		result = append(result, row)
	}
	sortItems(result)
	return result, nil
}

func (r *fakeCatalogRepo) CategoryTree(ctx context.Context, catalogID int64, includeInactive bool) ([]repository.CategoryTreeRow, error) {
	roots, _ := r.ListRootItems(ctx, catalogID, includeInactive)
	var result []repository.CategoryTreeRow
	for _, root := range roots {
		children, _ := r.ListChildren(ctx, root.ID, includeInactive)
		if len(children) == 0 {
			result = append(result, repository.CategoryTreeRow{Category: root.Label})
			continue
		}
		for _, child := range children {
			label := child.Label
			result = append(result, repository.CategoryTreeRow{Category: root.Label, Subcategory: &label})
		}
	}
	return result, nil
}

func sortItems(items []domain.CatalogItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].SortOrder != items[j].SortOrder {
			return items[i].SortOrder < items[j].SortOrder
		}
		return items[i].Label < items[j].Label
	})
}

// memoryViewCache is a recording cache for asserting read-view behavior.
type memoryViewCache struct {
	values map[string][]byte
	hits   int
	sets   int
}

func newMemoryViewCache() *memoryViewCache {
	return &memoryViewCache{values: map[string][]byte{}}
}

func (c *memoryViewCache) Get(ctx context.Context, key string, dest any) bool {
	raw, ok := c.values[key]
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false
	}
	c.hits++
	return true
}

func (c *memoryViewCache) Set(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.values[key] = raw
	c.sets++
}

func (c *memoryViewCache) Invalidate(ctx context.Context, prefixes ...string) {
	for key := range c.values {
		for _, prefix := range prefixes {
			if strings.HasPrefix(key, prefix) {
				delete(c.values, key)
			}
		}
	}
}
