package kpi

import (
	"fmt"
	"time"

	"erpchat/db"
	"erpchat/models"

	"github.com/samber/lo"
)

var groupLabels = map[string]string{
	"vendedor": "Vendedor",
	"producto": "Producto",
	"cliente":  "Cliente",
}

// SalesQuery carries the already-defaulted arguments of the sales tool.
type SalesQuery struct {
	ProductoIDs []int
	VendedorIDs []int
	ClienteIDs  []int
	AgruparPor  string
	Periodo     string
	Limite      int
	Orden       string
}

type SalesService struct {
	repo      db.SaleRepository
	guardrail Guardrail
	now       func() time.Time
}

func NewSalesService(repo db.SaleRepository, guardrail Guardrail) *SalesService {
	return &SalesService{repo: repo, guardrail: guardrail, now: time.Now}
}

func (s *SalesService) GetSales(q SalesQuery) (models.ToolResult, error) {
	start, end := PeriodRange(s.now(), q.Periodo)
	filters := models.SaleFilters{
		Start:       isoDate(start),
		End:         isoDate(end),
		ProductoIDs: q.ProductoIDs,
		VendedorIDs: q.VendedorIDs,
		ClienteIDs:  q.ClienteIDs,
	}

	// Volume pre-check with the same filters as the query itself.
	count, err := s.repo.CountOrders(filters)
	if err != nil {
		return nil, fmt.Errorf("failed to count sale orders: %w", err)
	}

	if s.guardrail.Exceeds(count) {
		result := models.WarningResult(count, map[string]any{
			"producto_ids": q.ProductoIDs,
			"vendedor_ids": q.VendedorIDs,
			"cliente_ids":  q.ClienteIDs,
		}, fmt.Sprintf(
			"Hay %d pedidos en el periodo '%s'. "+
				"Pedile al usuario que acote la busqueda por vendedor, cliente, producto, o cambie el periodo.",
			count, q.Periodo))
		result["periodo"] = q.Periodo
		return result, nil
	}

	if _, ok := groupLabels[q.AgruparPor]; ok {
		return s.groupedSales(q, filters)
	}

	orders, err := s.repo.SearchOrders(filters, q.Orden, q.Limite)
	if err != nil {
		return nil, fmt.Errorf("failed to search sale orders: %w", err)
	}

	ids := lo.Map(orders, func(o models.SaleOrder, _ int) int { return o.ID })
	totalMonto := lo.SumBy(orders, func(o models.SaleOrder) float64 { return o.Monto })

	return models.ToolResult{
		"ids":         ids,
		"data":        orders,
		"total_monto": totalMonto,
		"count":       len(orders),
		"message":     fmt.Sprintf("Se encontraron %d pedidos por $%.2f", len(orders), totalMonto),
	}, nil
}

func (s *SalesService) groupedSales(q SalesQuery, filters models.SaleFilters) (models.ToolResult, error) {
	groups, err := s.repo.GroupOrders(q.AgruparPor, filters, q.Orden, q.Limite)
	if err != nil {
		return nil, fmt.Errorf("failed to group sale orders: %w", err)
	}

	ids := make([]int, 0, len(groups))
	for _, g := range groups {
		if g.ID != 0 {
			ids = append(ids, g.ID)
		}
	}
	totalMonto := lo.SumBy(groups, func(g models.SaleGroup) float64 { return g.Monto })

	return models.ToolResult{
		"agrupado_por": q.AgruparPor,
		"ids":          ids,
		"data":         groups,
		"total_monto":  totalMonto,
		"count":        len(groups),
		"message": fmt.Sprintf("Ventas agrupadas por %s: %d grupos, total $%.2f",
			groupLabels[q.AgruparPor], len(groups), totalMonto),
	}, nil
}
