package tools

import (
	"context"
	"strings"
)

const (
	defaultMLResults  = 5
	maxMLResults      = 50
	deniedCollections = "No tienes permisos para consultar cobranzas"
)

type mlScoresArgs struct {
	ClientCode string `json:"cliente_codigo"`
	Limit      int    `json:"limit"`
}

func (r *Registry) registerCollections() {
	r.register(Operation{
		Name:        "get_collections_dashboard",
		Description: "Obtiene el resumen de cobranzas: clientes con saldo, facturas pendientes y vencidas, cartera total y vencida.",
		Parameters:  object(nil),
		Roles:       rolesBackOffice,
		denied:      deniedCollections,
		handler:     typed(r.getCollectionsDashboard),
	})
	r.register(Operation{
		Name:        "get_client_ml_scores",
		Description: "Consulta los resultados de los modelos predictivos (riesgo de pago) de un cliente.",
		Parameters: object(map[string]Property{
			"cliente_codigo": str("Código del cliente"),
			"limit":          integer("Número máximo de resultados (default: 5, máximo: 50)"),
		}, "cliente_codigo"),
		Roles:   rolesBackOffice,
		denied:  deniedCollections,
		handler: typed(r.getClientMLScores),
	})
}

func (r *Registry) getCollectionsDashboard(ctx context.Context, caller Caller, _ noArgs) Result {
	if !caller.Is(rolesBackOffice...) {
		return Failure(deniedCollections)
	}
	dashboard, err := r.repo.GetCollectionsDashboard(ctx)
	if err != nil {
		return dataError("consultar cobranzas", err)
	}
	return OK(dashboard)
}

func (r *Registry) getClientMLScores(ctx context.Context, caller Caller, args mlScoresArgs) Result {
	if !caller.Is(rolesBackOffice...) {
		return Failure(deniedCollections)
	}
	code := strings.TrimSpace(args.ClientCode)
	if code == "" {
		return Failure("Se requiere el código del cliente")
	}
	limit := args.Limit
	if limit <= 0 {
		limit = defaultMLResults
	}
	limit = min(limit, maxMLResults)

	client, err := r.repo.GetClientByCode(ctx, code)
	if err != nil {
		return dataError("consultar el cliente", err)
	}
	if client == nil {
		return Failuref("El cliente con código %s no existe", code)
	}

	results, err := r.repo.ListMLResults(ctx, code, limit)
	if err != nil {
		return dataError("consultar resultados de modelos", err)
	}

	return OK(map[string]any{
		"cliente":    client,
		"total":      len(results),
		"resultados": nonNil(results),
	})
}
