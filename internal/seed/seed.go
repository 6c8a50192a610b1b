package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gestar-hq/gestar-service/internal/domain"
	"github.com/gestar-hq/gestar-service/internal/repository"
	"github.com/gestar-hq/gestar-service/internal/service"
	apperrors "github.com/gestar-hq/gestar-service/pkg/util"
)

// Seeder provisions first-startup data: the controlled vocabularies and,
// optionally, a small sample data set for local development.
type Seeder struct {
	store     repository.Store
	catalogs  *service.CatalogService
	users     *service.UserService
	lifecycle *service.LifecycleService
	logger    *zap.Logger
}

// NewSeeder constructs a seeder.
func NewSeeder(store repository.Store, catalogs *service.CatalogService, users *service.UserService, lifecycle *service.LifecycleService, logger *zap.Logger) *Seeder {
	return &Seeder{store: store, catalogs: catalogs, users: users, lifecycle: lifecycle, logger: logger}
}

type vocabulary struct {
	code  string
	label string
	items []vocabularyItem
}

type vocabularyItem struct {
	label    string
	children []string
}

var defaultVocabularies = []vocabulary{
	{code: domain.CatalogAreas, label: "Áreas", items: []vocabularyItem{
		{label: "Mantenimiento"}, {label: "IT"}, {label: "Recursos Humanos"}, {label: "Calidad"}, {label: "Producción"},
	}},
	{code: domain.CatalogPrioridades, label: "Prioridades", items: []vocabularyItem{
		{label: "Baja"}, {label: "Media"}, {label: "Alta"}, {label: "Crítica"},
	}},
	{code: domain.CatalogCategorias, label: "Categorías", items: []vocabularyItem{
		{label: "Hardware", children: []string{"Impresoras", "Notebooks", "Periféricos"}},
		{label: "Software", children: []string{"ERP", "Ofimática", "Accesos"}},
		{label: "Infraestructura", children: []string{"Edilicia", "Climatización"}},
		{label: "Calidad", children: []string{"No Conformidad", "Auditoría"}},
	}},
	{code: domain.CatalogDivisiones, label: "Divisiones", items: []vocabularyItem{
		{label: "Administración"}, {label: "Calidad"}, {label: "RRHH"}, {label: "Producción"},
	}},
	{code: domain.CatalogPlantas, label: "Plantas", items: []vocabularyItem{
		{label: "Planta 1"}, {label: "Planta 2"},
	}},
	{code: domain.CatalogRoles, label: "Roles", items: []vocabularyItem{
		{label: "Solicitante"}, {label: "Analista"}, {label: "Jefe"}, {label: "Director"}, {label: "Administrador"},
	}},
}

// SeedCatalogs upserts the default vocabularies. Safe to run on every
// startup: items are matched on their natural key and never duplicated.
func (s *Seeder) SeedCatalogs(ctx context.Context) error {
	for _, vocab := range defaultVocabularies {
		if _, err := s.catalogs.EnsureCatalog(ctx, vocab.code, vocab.label); err != nil {
			return fmt.Errorf("ensure catalog %s: %w", vocab.code, err)
		}
		for order, item := range vocab.items {
			parent, err := s.catalogs.CreateItem(ctx, vocab.code, item.label, order, nil)
			if err != nil {
				return fmt.Errorf("seed %s/%s: %w", vocab.code, item.label, err)
			}
			for childOrder, child := range item.children {
				if _, err := s.catalogs.CreateItem(ctx, vocab.code, child, childOrder, &parent.ID); err != nil {
					return fmt.Errorf("seed %s/%s/%s: %w", vocab.code, item.label, child, err)
				}
			}
		}
	}
	s.logger.Info("catalogs seeded", zap.Int("catalogs", len(defaultVocabularies)))
	return nil
}

type sampleUser struct {
	name  string
	email string
	role  domain.UserRole
	area  string
}

var sampleUsers = []sampleUser{
	{name: "Maria Garcia", email: "maria.garcia@gestar.local", role: domain.RoleSolicitante, area: "Recursos Humanos"},
	{name: "Juan Perez", email: "juan.perez@gestar.local", role: domain.RoleAnalista, area: "IT"},
	{name: "Ana Lopez", email: "ana.lopez@gestar.local", role: domain.RoleAnalista, area: "IT"},
	{name: "Luis Gomez", email: "luis.gomez@gestar.local", role: domain.RoleAnalista, area: "Mantenimiento"},
	{name: "Carlos Ruiz", email: "carlos.ruiz@gestar.local", role: domain.RoleJefe, area: "Mantenimiento"},
	{name: "Pedro Martinez", email: "pedro.martinez@gestar.local", role: domain.RoleSolicitante, area: "Producción"},
	{name: "Juan Lopez", email: "juan.lopez@gestar.local", role: domain.RoleSolicitante, area: "Calidad"},
	{name: "Laura Fernandez", email: "laura.fernandez@gestar.local", role: domain.RoleDirector, area: "IT"},
	{name: "Admin", email: "admin@gestar.local", role: domain.RoleAdministrador, area: "IT"},
}

type sampleTicket struct {
	input    service.TicketCreateInput
	status   domain.TicketStatus
	assignee string
	seedTask bool
}

func ptr(s string) *string { return &s }

var sampleTickets = []sampleTicket{
	{
		input: service.TicketCreateInput{
			Title:             "Falla en Impresora",
			Description:       "La impresora de RRHH no conecta en red.",
			Area:              "IT",
			Category:          "Hardware",
			Division:          "Administración",
			Plant:             "Planta 1",
			Priority:          domain.TicketPriorityMedia,
			SuggestedUrgency:  ptr("Media"),
			SuggestedAssignee: ptr("Juan Perez"),
			Requester:         "Maria Garcia",
			CreatedBy:         "Maria Garcia",
		},
		status: domain.TicketStatusNuevo,
	},
	{
		input: service.TicketCreateInput{
			Title:             "Mantenimiento AA",
			Description:       "Aire acondicionado de sala de reuniones gotea.",
			Area:              "Mantenimiento",
			Category:          "Infraestructura",
			Division:          "Administración",
			Plant:             "Planta 1",
			Priority:          domain.TicketPriorityBaja,
			SuggestedUrgency:  ptr("Baja"),
			SuggestedAssignee: ptr("Luis Gomez"),
			Requester:         "Pedro Martinez",
			CreatedBy:         "Pedro Martinez",
		},
		status:   domain.TicketStatusAsignado,
		assignee: "Carlos Ruiz",
		seedTask: true,
	},
	{
		input: service.TicketCreateInput{
			Title:             "Error en validación",
			Description:       "El sistema de calidad da error 500 al guardar.",
			Area:              "IT",
			Category:          "Software",
			Division:          "Calidad",
			Plant:             "Planta 2",
			Priority:          domain.TicketPriorityAlta,
			SuggestedUrgency:  ptr("Alta"),
			SuggestedAssignee: ptr("Ana Lopez"),
			Requester:         "Juan Lopez",
			CreatedBy:         "Juan Lopez",
		},
		status: domain.TicketStatusNuevo,
	},
	{
		input: service.TicketCreateInput{
			Title:            "Solicitud de Notebook",
			Description:      "Notebook para nuevo ingreso.",
			Area:             "IT",
			Category:         "Hardware",
			Division:         "RRHH",
			Plant:            "Planta 1",
			Priority:         domain.TicketPriorityMedia,
			SuggestedUrgency: ptr("Media"),
			Requester:        "Maria Garcia",
			CreatedBy:        "Maria Garcia",
		},
		status:   domain.TicketStatusEnProceso,
		assignee: "Juan Perez",
		seedTask: true,
	},
}

// SeedSampleData loads demo users and tickets. Tickets are only loaded into
// an empty table so restarts never pile up duplicates.
func (s *Seeder) SeedSampleData(ctx context.Context) error {
	director, err := s.seedUsers(ctx)
	if err != nil {
		return err
	}

	total, err := s.store.Tickets().Count(ctx)
	if err != nil {
		return fmt.Errorf("count tickets: %w", err)
	}
	if total > 0 {
		return nil
	}

	for _, sample := range sampleTickets {
		ticket, err := s.lifecycle.CreateTicket(ctx, sample.input)
		if err != nil {
			return fmt.Errorf("seed ticket %q: %w", sample.input.Title, err)
		}
		if sample.status != domain.TicketStatusNuevo {
			update := domain.TicketUpdate{Status: &sample.status}
			if sample.assignee != "" {
				update.AssignedTo = &sample.assignee
			}
			if _, err := s.lifecycle.ApplyUpdate(ctx, ticket.ID, director, update); err != nil {
				return fmt.Errorf("seed ticket %q update: %w", sample.input.Title, err)
			}
		}
		if sample.seedTask {
			responsible := sample.assignee
			if responsible == "" {
				responsible = "Sin Asignar"
			}
			if _, err := s.lifecycle.CreateTask(ctx, ticket.ID, "Investigar "+sample.input.Title, responsible); err != nil {
				return fmt.Errorf("seed ticket %q task: %w", sample.input.Title, err)
			}
		}
	}
	s.logger.Info("sample data seeded", zap.Int("tickets", len(sampleTickets)))
	return nil
}

// seedUsers upserts the demo directory and returns the director used as the
// acting user for seeded ticket updates.
func (s *Seeder) seedUsers(ctx context.Context) (*domain.User, error) {
	var director *domain.User
	for _, sample := range sampleUsers {
		user, err := s.users.FindByDisplayName(ctx, sample.name)
		if apperrors.IsNotFound(err) {
			user, err = s.users.CreateUser(ctx, service.UserCreateInput{
				Name:  sample.name,
				Email: sample.email,
				Role:  sample.role,
				Area:  sample.area,
			})
		}
		if err != nil {
			return nil, fmt.Errorf("seed user %s: %w", sample.name, err)
		}
		if user.Role == domain.RoleDirector && director == nil {
			director = user
		}
	}
	return director, nil
}
