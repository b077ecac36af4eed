package tools

import (
	"aintranet-backend/model"
	"context"
)

const (
	maxEmployeesReturned = 20
	defaultAnnouncements = 5
	maxAnnouncements     = 50
)

type employeesArgs struct {
	SearchTerm string `json:"search_term"`
}

type documentsArgs struct {
	Category string `json:"categoria"`
}

type announcementsArgs struct {
	Limit int `json:"limit"`
}

type noArgs struct{}

func (r *Registry) registerQueries() {
	r.register(Operation{
		Name:        "get_employees_info",
		Description: "Obtiene información sobre empleados. Puede buscar por nombre o listar todos.",
		Parameters: object(map[string]Property{
			"search_term": str("Término de búsqueda (nombre, cargo, email). Opcional."),
		}),
		handler: typed(r.getEmployeesInfo),
	})
	r.register(Operation{
		Name:        "get_departments_info",
		Description: "Obtiene información sobre los departamentos de la empresa.",
		Parameters:  object(nil),
		handler:     typed(r.getDepartmentsInfo),
	})
	r.register(Operation{
		Name:        "get_documents_info",
		Description: "Consulta documentos corporativos disponibles. Puede filtrar por categoría.",
		Parameters: object(map[string]Property{
			"categoria": enum("Categoría de documentos", model.DocumentCategories, "Categoría inválida. Categorías permitidas"),
		}),
		handler: typed(r.getDocumentsInfo),
	})
	r.register(Operation{
		Name:        "get_my_vacations",
		Description: "Obtiene las solicitudes de vacaciones del usuario actual.",
		Parameters:  object(nil),
		handler:     typed(r.getMyVacations),
	})
	r.register(Operation{
		Name:        "get_my_tickets",
		Description: "Obtiene los tickets de soporte creados por el usuario actual.",
		Parameters:  object(nil),
		handler:     typed(r.getMyTickets),
	})
	r.register(Operation{
		Name:        "get_announcements",
		Description: "Obtiene los anuncios activos de la intranet.",
		Parameters: object(map[string]Property{
			"limit": integer("Número máximo de anuncios a retornar (default: 5, máximo: 50)"),
		}),
		handler: typed(r.getAnnouncements),
	})
}

func (r *Registry) getEmployeesInfo(ctx context.Context, _ Caller, args employeesArgs) Result {
	var (
		employees []model.Employee
		err       error
	)
	if args.SearchTerm != "" {
		employees, err = r.repo.SearchEmployees(ctx, args.SearchTerm)
	} else {
		employees, err = r.repo.ListEmployees(ctx)
	}
	if err != nil {
		return dataError("consultar empleados", err)
	}

	total := len(employees)
	if total > maxEmployeesReturned {
		employees = employees[:maxEmployeesReturned]
	}
	return OK(map[string]any{
		"total":     total,
		"empleados": nonNil(employees),
	})
}

func (r *Registry) getDepartmentsInfo(ctx context.Context, _ Caller, _ noArgs) Result {
	departments, err := r.repo.ListDepartments(ctx)
	if err != nil {
		return dataError("consultar departamentos", err)
	}
	return OK(map[string]any{"departamentos": nonNil(departments)})
}

func (r *Registry) getDocumentsInfo(ctx context.Context, _ Caller, args documentsArgs) Result {
	documents, err := r.repo.ListDocuments(ctx, args.Category)
	if err != nil {
		return dataError("consultar documentos", err)
	}
	return OK(map[string]any{
		"total":      len(documents),
		"documentos": nonNil(documents),
	})
}

func (r *Registry) getMyVacations(ctx context.Context, caller Caller, _ noArgs) Result {
	employee, err := r.repo.GetEmployeeByUserID(ctx, caller.UserID)
	if err != nil {
		return dataError("consultar vacaciones", err)
	}
	if employee == nil {
		return OK(map[string]any{
			"error":      "No tienes un perfil de empleado asociado",
			"vacaciones": []model.Vacation{},
		})
	}

	vacations, err := r.repo.ListVacationsByEmployee(ctx, employee.ID)
	if err != nil {
		return dataError("consultar vacaciones", err)
	}
	return OK(map[string]any{"vacaciones": nonNil(vacations)})
}

func (r *Registry) getMyTickets(ctx context.Context, caller Caller, _ noArgs) Result {
	tickets, err := r.repo.ListTicketsByRequester(ctx, caller.UserID)
	if err != nil {
		return dataError("consultar tickets", err)
	}
	return OK(map[string]any{"tickets": nonNil(tickets)})
}

func (r *Registry) getAnnouncements(ctx context.Context, _ Caller, args announcementsArgs) Result {
	limit := args.Limit
	if limit <= 0 {
		limit = defaultAnnouncements
	}
	limit = min(limit, maxAnnouncements)

	announcements, err := r.repo.ListActiveAnnouncements(ctx, limit)
	if err != nil {
		return dataError("consultar anuncios", err)
	}
	return OK(map[string]any{"anuncios": nonNil(announcements)})
}

// nonNil 保证空列表序列化为 [] 而不是 null
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
