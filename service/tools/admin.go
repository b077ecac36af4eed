package tools

import (
	"aintranet-backend/model"
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type vacationDecisionArgs struct {
	VacationID uint   `json:"vacation_id"`
	Comments   string `json:"comentarios"`
}

type statusFilterArgs struct {
	Status string `json:"estado"`
}

type ticketStatusArgs struct {
	TicketID uint   `json:"ticket_id"`
	Status   string `json:"estado"`
}

type assignTicketArgs struct {
	TicketID   uint `json:"ticket_id"`
	AssignedTo uint `json:"assigned_to"`
}

type createUserArgs struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	FullName string `json:"nombre_completo"`
	Role     string `json:"rol"`
}

type announcementArgs struct {
	Title    string `json:"titulo"`
	Content  string `json:"contenido"`
	Type     string `json:"tipo"`
	Priority string `json:"prioridad"`
}

const (
	msgHRApproveDenied = "No tienes permisos para aprobar vacaciones. Esta acción está reservada para RRHH y Administradores."
	msgHRRejectDenied  = "No tienes permisos para rechazar vacaciones. Esta acción está reservada para RRHH y Administradores."
	msgTicketDenied    = "No tienes permisos para actualizar tickets. Esta acción está reservada para Soporte y Administradores."
	msgAssignDenied    = "No tienes permisos para asignar tickets. Esta acción está reservada para Soporte y Administradores."
	msgUserDenied      = "Solo los administradores pueden crear usuarios"
	msgAnnounceDenied  = "Solo los administradores pueden crear anuncios"
	msgStatsDenied     = "Solo los administradores pueden ver estadísticas del sistema"
)

func (r *Registry) registerVacationAdmin() {
	r.register(Operation{
		Name:        "get_all_vacations",
		Description: "Obtiene todas las solicitudes de vacaciones (solo RRHH/Admin).",
		Parameters: object(map[string]Property{
			"estado": enum("Filtrar por estado", model.VacationStatuses, "Estado inválido. Estados permitidos"),
		}),
		Roles:   rolesHR,
		denied:  "No tienes permisos para esta acción",
		handler: typed(r.getAllVacations),
	})
	r.register(Operation{
		Name:        "approve_vacation",
		Description: "Aprueba una solicitud de vacaciones (solo RRHH/Admin).",
		Parameters: object(map[string]Property{
			"vacation_id": integer("ID de la solicitud de vacaciones"),
			"comentarios": str("Comentarios del aprobador (opcional)"),
		}, "vacation_id"),
		Roles:   rolesHR,
		denied:  msgHRApproveDenied,
		handler: typed(r.approveVacation),
	})
	r.register(Operation{
		Name:        "reject_vacation",
		Description: "Rechaza una solicitud de vacaciones (solo RRHH/Admin).",
		Parameters: object(map[string]Property{
			"vacation_id": integer("ID de la solicitud de vacaciones"),
			"comentarios": str("Motivo del rechazo"),
		}, "vacation_id", "comentarios"),
		Roles:   rolesHR,
		denied:  msgHRRejectDenied,
		handler: typed(r.rejectVacation),
	})
}

func (r *Registry) getAllVacations(ctx context.Context, caller Caller, args statusFilterArgs) Result {
	if !caller.Is(rolesHR...) {
		return Failure("No tienes permisos para esta acción")
	}
	vacations, err := r.repo.ListVacations(ctx, args.Status)
	if err != nil {
		return dataError("consultar vacaciones", err)
	}
	return OK(map[string]any{"vacaciones": nonNil(vacations)})
}

func (r *Registry) approveVacation(ctx context.Context, caller Caller, args vacationDecisionArgs) Result {
	if !caller.Is(rolesHR...) {
		return Failure(msgHRApproveDenied)
	}
	if args.VacationID == 0 {
		return Failure("Se requiere el ID de la solicitud de vacaciones")
	}

	ok, err := r.repo.RespondVacation(ctx, args.VacationID, model.VacationApproved, caller.UserID, args.Comments)
	if err != nil {
		return dataError("aprobar la solicitud", err)
	}
	if !ok {
		return Failuref("No se pudo aprobar la solicitud #%d. Verifica que el ID sea correcto y que la solicitud exista.", args.VacationID)
	}

	return OK(map[string]any{
		"mensaje": fmt.Sprintf("✅ Solicitud de vacaciones #%d aprobada exitosamente.", args.VacationID),
		"datos": map[string]any{
			"vacation_id": args.VacationID,
			"estado":      model.VacationApproved,
			"aprobador":   caller.displayName(),
			"comentarios": args.Comments,
		},
	})
}

func (r *Registry) rejectVacation(ctx context.Context, caller Caller, args vacationDecisionArgs) Result {
	if !caller.Is(rolesHR...) {
		return Failure(msgHRRejectDenied)
	}
	if args.VacationID == 0 {
		return Failure("Se requiere el ID de la solicitud de vacaciones")
	}
	if strings.TrimSpace(args.Comments) == "" {
		return Failure("Se requiere un motivo/comentario para rechazar la solicitud de vacaciones")
	}

	ok, err := r.repo.RespondVacation(ctx, args.VacationID, model.VacationRejected, caller.UserID, args.Comments)
	if err != nil {
		return dataError("rechazar la solicitud", err)
	}
	if !ok {
		return Failuref("No se pudo rechazar la solicitud #%d. Verifica que el ID sea correcto y que la solicitud exista.", args.VacationID)
	}

	return OK(map[string]any{
		"mensaje": fmt.Sprintf("✅ Solicitud de vacaciones #%d rechazada.", args.VacationID),
		"datos": map[string]any{
			"vacation_id": args.VacationID,
			"estado":      model.VacationRejected,
			"aprobador":   caller.displayName(),
			"comentarios": args.Comments,
		},
	})
}

func (r *Registry) registerTicketAdmin() {
	statusProp := enum("Nuevo estado", model.TicketStatuses, "Estado inválido. Estados permitidos")

	r.register(Operation{
		Name:        "get_all_tickets",
		Description: "Obtiene todos los tickets de soporte (solo Soporte/Admin).",
		Parameters: object(map[string]Property{
			"estado": enum("Filtrar por estado", model.TicketStatuses, "Estado inválido. Estados permitidos"),
		}),
		Roles:   rolesSupport,
		denied:  "No tienes permisos para ver todos los tickets",
		handler: typed(r.getAllTickets),
	})
	r.register(Operation{
		Name:        "update_ticket_status",
		Description: "Actualiza el estado de un ticket (solo Soporte/Admin).",
		Parameters: object(map[string]Property{
			"ticket_id": integer("ID del ticket"),
			"estado":    statusProp,
		}, "ticket_id", "estado"),
		Roles:   rolesSupport,
		denied:  msgTicketDenied,
		handler: typed(r.updateTicketStatus),
	})
	r.register(Operation{
		Name:        "assign_ticket",
		Description: "Asigna un ticket a un usuario (solo Soporte/Admin).",
		Parameters: object(map[string]Property{
			"ticket_id":   integer("ID del ticket"),
			"assigned_to": integer("ID del usuario al que se asigna"),
		}, "ticket_id", "assigned_to"),
		Roles:   rolesSupport,
		denied:  msgAssignDenied,
		handler: typed(r.assignTicket),
	})
}

func (r *Registry) getAllTickets(ctx context.Context, caller Caller, args statusFilterArgs) Result {
	if !caller.Is(rolesSupport...) {
		return Failure("No tienes permisos para ver todos los tickets")
	}
	tickets, err := r.repo.ListTickets(ctx, args.Status)
	if err != nil {
		return dataError("consultar tickets", err)
	}
	return OK(map[string]any{"tickets": nonNil(tickets)})
}

func (r *Registry) updateTicketStatus(ctx context.Context, caller Caller, args ticketStatusArgs) Result {
	if !caller.Is(rolesSupport...) {
		return Failure(msgTicketDenied)
	}
	if args.TicketID == 0 {
		return Failure("Se requiere el ID del ticket")
	}

	ticket, err := r.repo.GetTicketByID(ctx, args.TicketID)
	if err != nil {
		return dataError("actualizar el ticket", err)
	}
	if ticket == nil {
		return Failuref("El ticket #%d no existe", args.TicketID)
	}

	ok, err := r.repo.UpdateTicketStatus(ctx, args.TicketID, args.Status, nil)
	if err != nil {
		return dataError("actualizar el ticket", err)
	}
	if !ok {
		return Failuref("No se pudo actualizar el ticket #%d. Verifica que el ID sea correcto y que el ticket exista.", args.TicketID)
	}

	return OK(map[string]any{
		"mensaje": fmt.Sprintf("✅ Ticket #%d actualizado exitosamente.", args.TicketID),
		"datos": map[string]any{
			"ticket_id":       args.TicketID,
			"titulo":          ticket.Title,
			"estado_anterior": ticket.Status,
			"estado":          args.Status,
			"actualizado_por": caller.displayName(),
		},
	})
}

func (r *Registry) assignTicket(ctx context.Context, caller Caller, args assignTicketArgs) Result {
	if !caller.Is(rolesSupport...) {
		return Failure(msgAssignDenied)
	}
	if args.TicketID == 0 {
		return Failure("Se requiere el ID del ticket")
	}
	if args.AssignedTo == 0 {
		return Failure("Se requiere el ID del usuario al que se asignará el ticket")
	}

	ticket, err := r.repo.GetTicketByID(ctx, args.TicketID)
	if err != nil {
		return dataError("asignar el ticket", err)
	}
	if ticket == nil {
		return Failuref("El ticket #%d no existe", args.TicketID)
	}

	assignee, err := r.repo.GetUserByID(ctx, args.AssignedTo)
	if err != nil {
		return dataError("asignar el ticket", err)
	}
	if assignee == nil {
		return Failuref("El usuario con ID %d no existe", args.AssignedTo)
	}

	ok, err := r.repo.UpdateTicketStatus(ctx, args.TicketID, model.TicketInProgress, &assignee.ID)
	if err != nil {
		return dataError("asignar el ticket", err)
	}
	if !ok {
		return Failuref("No se pudo asignar el ticket #%d. Verifica que el ID sea correcto y que el ticket exista.", args.TicketID)
	}

	return OK(map[string]any{
		"mensaje": fmt.Sprintf("✅ Ticket #%d asignado exitosamente a %s.", args.TicketID, assignee.FullName),
		"datos": map[string]any{
			"ticket_id":    args.TicketID,
			"titulo":       ticket.Title,
			"estado":       model.TicketInProgress,
			"asignado_a":   assignee.FullName,
			"asignado_por": caller.displayName(),
		},
	})
}

func (r *Registry) registerAdmin() {
	r.register(Operation{
		Name:        "create_user",
		Description: "Crea un nuevo usuario en el sistema (solo Admin).",
		Parameters: object(map[string]Property{
			"username":        str("Nombre de usuario"),
			"password":        str("Contraseña"),
			"email":           str("Email"),
			"nombre_completo": str("Nombre completo"),
			"rol":             enum("Rol del usuario", model.UserRoles, "Rol inválido. Roles permitidos"),
		}, "username", "password", "email", "nombre_completo", "rol"),
		Roles:   rolesAdmin,
		denied:  msgUserDenied,
		handler: typed(r.createUser),
	})
	r.register(Operation{
		Name:        "create_announcement",
		Description: "Crea un nuevo anuncio en la intranet (solo Admin).",
		Parameters: object(map[string]Property{
			"titulo":    str("Título del anuncio"),
			"contenido": str("Contenido del anuncio"),
			"tipo":      enum("Tipo de anuncio", model.AnnouncementTypes, "Tipo inválido. Tipos permitidos"),
			"prioridad": enum("Prioridad", model.AnnouncementPriorities, "Prioridad inválida. Prioridades permitidas"),
		}, "titulo", "contenido", "tipo"),
		Roles:   rolesAdmin,
		denied:  msgAnnounceDenied,
		handler: typed(r.createAnnouncement),
	})
	r.register(Operation{
		Name:        "get_system_stats",
		Description: "Obtiene estadísticas generales del sistema (solo Admin).",
		Parameters:  object(nil),
		Roles:       rolesAdmin,
		denied:      msgStatsDenied,
		handler:     typed(r.getSystemStats),
	})
}

func (r *Registry) createUser(ctx context.Context, caller Caller, args createUserArgs) Result {
	if !caller.Is(rolesAdmin...) {
		return Failure(msgUserDenied)
	}

	fields := []struct{ name, value string }{
		{"username", args.Username},
		{"password", args.Password},
		{"email", args.Email},
		{"nombre_completo", args.FullName},
		{"rol", args.Role},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return Failuref("El campo \"%s\" es requerido y no puede estar vacío", f.name)
		}
	}
	if !emailPattern.MatchString(args.Email) {
		return Failure("El formato del email es inválido. Usa el formato: usuario@dominio.com")
	}
	if len(args.Username) < 3 {
		return Failure("El username debe tener al menos 3 caracteres")
	}
	if len(args.Password) < 6 {
		return Failure("La contraseña debe tener al menos 6 caracteres")
	}

	exists, err := r.repo.UserExists(ctx, args.Username, args.Email)
	if err != nil {
		return dataError("crear el usuario", err)
	}
	if exists {
		return Failure("No se pudo crear el usuario. Es posible que el username o email ya existan.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(args.Password), bcrypt.DefaultCost)
	if err != nil {
		return dataError("crear el usuario", err)
	}

	user := &model.User{
		Username:     args.Username,
		PasswordHash: string(hash),
		Email:        args.Email,
		FullName:     args.FullName,
		Role:         args.Role,
		Active:       true,
	}
	if err := r.repo.CreateUser(ctx, user); err != nil {
		return dataError("crear el usuario", err)
	}

	return OK(map[string]any{
		"user_id": user.ID,
		"mensaje": fmt.Sprintf("✅ Usuario \"%s\" creado exitosamente con rol %s.", args.Username, args.Role),
		"datos": map[string]any{
			"id":              user.ID,
			"username":        args.Username,
			"email":           args.Email,
			"nombre_completo": args.FullName,
			"rol":             args.Role,
		},
	})
}

func (r *Registry) createAnnouncement(ctx context.Context, caller Caller, args announcementArgs) Result {
	if !caller.Is(rolesAdmin...) {
		return Failure(msgAnnounceDenied)
	}
	if strings.TrimSpace(args.Title) == "" {
		return Failure("El título del anuncio es requerido y no puede estar vacío")
	}
	if strings.TrimSpace(args.Content) == "" {
		return Failure("El contenido del anuncio es requerido y no puede estar vacío")
	}
	if args.Priority == "" {
		args.Priority = "media"
	}

	announcement := &model.Announcement{
		Title:    args.Title,
		Content:  args.Content,
		Type:     args.Type,
		Priority: args.Priority,
		AuthorID: caller.UserID,
		Active:   true,
	}
	if err := r.repo.CreateAnnouncement(ctx, announcement); err != nil {
		return dataError("crear el anuncio", err)
	}

	return OK(map[string]any{
		"announcement_id": announcement.ID,
		"mensaje": fmt.Sprintf("✅ Anuncio \"%s\" creado exitosamente con tipo %s y prioridad %s.",
			args.Title, args.Type, args.Priority),
		"datos": map[string]any{
			"id":        announcement.ID,
			"titulo":    args.Title,
			"tipo":      args.Type,
			"prioridad": args.Priority,
			"autor":     caller.displayName(),
		},
	})
}

func (r *Registry) getSystemStats(ctx context.Context, caller Caller, _ noArgs) Result {
	if !caller.Is(rolesAdmin...) {
		return Failure(msgStatsDenied)
	}
	stats, err := r.repo.GetSystemStats(ctx)
	if err != nil {
		return dataError("consultar estadísticas", err)
	}
	return OK(stats)
}
