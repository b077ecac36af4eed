package tools

import (
	"aintranet-backend/model"
	"context"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

type vacationRequestArgs struct {
	StartDate string `json:"fecha_inicio"`
	EndDate   string `json:"fecha_fin"`
	Type      string `json:"tipo"`
	Reason    string `json:"motivo"`
}

type ticketArgs struct {
	Title       string `json:"titulo"`
	Description string `json:"descripcion"`
	Category    string `json:"categoria"`
	Priority    string `json:"prioridad"`
}

func (r *Registry) registerActions() {
	r.register(Operation{
		Name:        "request_vacation",
		Description: "Solicita vacaciones o permisos para el usuario actual.",
		Parameters: object(map[string]Property{
			"fecha_inicio": str("Fecha de inicio en formato YYYY-MM-DD"),
			"fecha_fin":    str("Fecha de fin en formato YYYY-MM-DD"),
			"tipo":         enum("Tipo de solicitud", model.VacationTypes, "Tipo inválido. Tipos permitidos"),
			"motivo":       str("Motivo de la solicitud"),
		}, "fecha_inicio", "fecha_fin", "tipo"),
		handler: typed(r.requestVacation),
	})
	r.register(Operation{
		Name:        "create_ticket",
		Description: "Crea un nuevo ticket de soporte.",
		Parameters: object(map[string]Property{
			"titulo":      str("Título del ticket"),
			"descripcion": str("Descripción detallada del problema"),
			"categoria":   enum("Categoría del ticket", model.TicketCategories, "Categoría inválida. Categorías permitidas"),
			"prioridad":   enum("Prioridad del ticket", model.TicketPriorities, "Prioridad inválida. Prioridades permitidas"),
		}, "titulo", "descripcion", "categoria"),
		handler: typed(r.createTicket),
	})
}

func (r *Registry) requestVacation(ctx context.Context, caller Caller, args vacationRequestArgs) Result {
	employee, err := r.repo.GetEmployeeByUserID(ctx, caller.UserID)
	if err != nil {
		return dataError("crear la solicitud", err)
	}
	if employee == nil {
		return Failure("No tienes un perfil de empleado asociado. Contacta a RRHH para crear tu perfil.")
	}

	start, err := time.Parse(dateLayout, args.StartDate)
	if err != nil {
		return invalidDate(err)
	}
	end, err := time.Parse(dateLayout, args.EndDate)
	if err != nil {
		return invalidDate(err)
	}

	days := int(end.Sub(start).Hours()/24) + 1
	if days <= 0 {
		return Failure("La fecha de fin debe ser posterior a la fecha de inicio")
	}

	vacation := &model.Vacation{
		EmployeeID: employee.ID,
		StartDate:  start,
		EndDate:    end,
		Days:       days,
		Type:       args.Type,
		Reason:     args.Reason,
		Status:     model.VacationPending,
	}
	if err := r.repo.CreateVacation(ctx, vacation); err != nil {
		return dataError("crear la solicitud", err)
	}

	return OK(map[string]any{
		"vacation_id": vacation.ID,
		"mensaje": fmt.Sprintf("✅ Solicitud de %s creada exitosamente para %d días (del %s al %s). Estado: Pendiente de aprobación.",
			args.Type, days, args.StartDate, args.EndDate),
		"datos": map[string]any{
			"id":           vacation.ID,
			"empleado":     employee.FullName(),
			"fecha_inicio": args.StartDate,
			"fecha_fin":    args.EndDate,
			"dias":         days,
			"tipo":         args.Type,
			"estado":       model.VacationPending,
		},
	})
}

func invalidDate(err error) Result {
	return Failuref("Formato de fecha inválido. Usa el formato YYYY-MM-DD (ej: 2026-02-23). Error: %v", err)
}

func (r *Registry) createTicket(ctx context.Context, caller Caller, args ticketArgs) Result {
	if strings.TrimSpace(args.Title) == "" {
		return Failure("El título del ticket es requerido y no puede estar vacío")
	}
	if strings.TrimSpace(args.Description) == "" {
		return Failure("La descripción del ticket es requerida y no puede estar vacía")
	}
	if args.Priority == "" {
		args.Priority = "media"
	}

	ticket := &model.Ticket{
		Title:       args.Title,
		Description: args.Description,
		Category:    args.Category,
		Priority:    args.Priority,
		Status:      model.TicketOpen,
		RequesterID: caller.UserID,
	}
	if err := r.repo.CreateTicket(ctx, ticket); err != nil {
		return dataError("crear el ticket", err)
	}

	return OK(map[string]any{
		"ticket_id": ticket.ID,
		"mensaje":   fmt.Sprintf("✅ Ticket #%d creado exitosamente. Estado: Abierto. Un miembro del equipo de soporte lo atenderá pronto.", ticket.ID),
		"datos": map[string]any{
			"id":          ticket.ID,
			"titulo":      args.Title,
			"categoria":   args.Category,
			"prioridad":   args.Priority,
			"estado":      model.TicketOpen,
			"solicitante": caller.displayName(),
		},
	})
}
