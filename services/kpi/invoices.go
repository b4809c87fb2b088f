package kpi

import (
	"fmt"
	"time"

	"erpchat/db"
	"erpchat/models"

	"github.com/samber/lo"
)

// InvoiceQuery carries the already-defaulted arguments of the invoice
// tool. DiasVencimiento bounds pending invoices to those due within the
// next N days.
type InvoiceQuery struct {
	Tipo            string
	Estado          string
	DiasVencimiento int
	ClienteIDs      []int
	Limite          int
}

type InvoiceService struct {
	repo      db.InvoiceRepository
	guardrail Guardrail
	now       func() time.Time
}

func NewInvoiceService(repo db.InvoiceRepository, guardrail Guardrail) *InvoiceService {
	return &InvoiceService{repo: repo, guardrail: guardrail, now: time.Now}
}

func (s *InvoiceService) GetInvoices(q InvoiceQuery) (models.ToolResult, error) {
	today := s.now()
	filters := models.InvoiceFilters{
		Tipo:       q.Tipo,
		Estado:     q.Estado,
		Today:      isoDate(today),
		ClienteIDs: q.ClienteIDs,
	}
	if q.Estado == "pendiente" && q.DiasVencimiento > 0 {
		filters.DueFrom = isoDate(today)
		filters.DueTo = isoDate(today.AddDate(0, 0, q.DiasVencimiento))
	}

	count, err := s.repo.CountInvoices(filters)
	if err != nil {
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}

	if s.guardrail.Exceeds(count) {
		return models.WarningResult(count, map[string]any{
			"tipo":        q.Tipo,
			"estado":      q.Estado,
			"cliente_ids": q.ClienteIDs,
		}, fmt.Sprintf(
			"Hay %d facturas de %s con estado '%s'. "+
				"Pedile al usuario que acote la busqueda por estado (pendiente, vencido, pagado), cliente, o dias de vencimiento.",
			count, q.Tipo, q.Estado)), nil
	}

	invoices, err := s.repo.SearchInvoices(filters, q.Limite)
	if err != nil {
		return nil, fmt.Errorf("failed to search invoices: %w", err)
	}

	ids := lo.Map(invoices, func(inv models.Invoice, _ int) int { return inv.ID })
	totalPendiente := lo.SumBy(invoices, func(inv models.Invoice) float64 { return inv.MontoPendiente })

	return models.ToolResult{
		"ids":             ids,
		"data":            invoices,
		"total_pendiente": totalPendiente,
		"count":           len(invoices),
		"tipo":            q.Tipo,
		"estado":          q.Estado,
		"message": fmt.Sprintf("Se encontraron %d facturas de %s con estado '%s', pendiente total $%.2f",
			len(invoices), q.Tipo, q.Estado, totalPendiente),
	}, nil
}
