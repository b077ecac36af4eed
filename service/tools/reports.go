package tools

import (
	"aintranet-backend/service/report"
	"context"
	"errors"
	"fmt"
	"log/slog"
)

const deniedReports = "No tienes permisos para consultar reportes"

type analyzeReportArgs struct {
	ReportID uint           `json:"report_id"`
	Filters  map[string]any `json:"filters"`
}

type reportSummary struct {
	ID          uint                         `json:"id"`
	Title       string                       `json:"titulo"`
	Description string                       `json:"descripcion"`
	Category    string                       `json:"categoria"`
	Filters     map[string]report.FilterSpec `json:"filtros_disponibles"`
}

func (r *Registry) registerReports() {
	r.register(Operation{
		Name:        "list_reports",
		Description: "Lista los reportes de Power BI disponibles con sus filtros.",
		Parameters:  object(nil),
		Roles:       rolesBackOffice,
		denied:      deniedReports,
		handler:     typed(r.listReports),
	})
	r.register(Operation{
		Name: "analyze_report",
		Description: "Captura un reporte de Power BI, opcionalmente filtrado, para analizarlo visualmente. " +
			"Los filtros usan el nombre del filtro disponible como clave, por ejemplo {\"Mes\": \"Marzo\"}.",
		Parameters: object(map[string]Property{
			"report_id": integer("ID del reporte"),
			"filters": {
				Type:        "object",
				Description: "Filtros a aplicar. Clave: nombre del filtro; valor: texto, número, lista o {table, column, value, operator}.",
			},
		}, "report_id"),
		Roles:   rolesBackOffice,
		denied:  deniedReports,
		handler: typed(r.analyzeReport),
	})
}

func (r *Registry) listReports(ctx context.Context, caller Caller, _ noArgs) Result {
	if !caller.Is(rolesBackOffice...) {
		return Failure(deniedReports)
	}
	reports, err := r.repo.ListReports(ctx)
	if err != nil {
		return dataError("consultar reportes", err)
	}

	summaries := make([]reportSummary, 0, len(reports))
	for _, rep := range reports {
		summaries = append(summaries, reportSummary{
			ID:          rep.ID,
			Title:       rep.Title,
			Description: rep.Description,
			Category:    rep.Category,
			Filters:     report.ParseFilterMetadata(rep.AvailableFilters),
		})
	}
	return OK(map[string]any{
		"total":    len(summaries),
		"reportes": summaries,
	})
}

func (r *Registry) analyzeReport(ctx context.Context, caller Caller, args analyzeReportArgs) Result {
	if !caller.Is(rolesBackOffice...) {
		return Failure(deniedReports)
	}
	if args.ReportID == 0 {
		return Failure("Se requiere el ID del reporte")
	}

	rep, err := r.repo.GetReportByID(ctx, args.ReportID)
	if err != nil {
		return dataError("consultar el reporte", err)
	}
	if rep == nil {
		return Failuref("El reporte con ID %d no existe o no está activo", args.ReportID)
	}

	if r.reports == nil || !r.reports.Enabled() {
		return Failure("La captura de reportes no está configurada en este servidor")
	}

	metadata := report.ParseFilterMetadata(rep.AvailableFilters)
	url := report.BuildFilterURL(rep.EmbedURL, args.Filters, metadata)

	image, err := r.reports.Capture(ctx, url)
	if err != nil {
		slog.Error("Failed to capture report", "report_id", rep.ID, "err", err)
		if errors.Is(err, context.DeadlineExceeded) {
			return Failuref("El reporte \"%s\" tardó demasiado en cargar. Intenta de nuevo más tarde.", rep.Title)
		}
		return Failuref("No se pudo capturar el reporte \"%s\": %v", rep.Title, err)
	}

	res := OK(map[string]any{
		"report_id":           rep.ID,
		"titulo":              rep.Title,
		"descripcion":         rep.Description,
		"filtros_aplicados":   nonNilMap(args.Filters),
		"filtros_disponibles": metadata,
		"mensaje":             fmt.Sprintf("Captura del reporte \"%s\" adjunta para análisis.", rep.Title),
	})
	res.Images = []string{image}
	return res
}

func nonNilMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
