package kpi

import (
	"fmt"
	"time"

	"erpchat/db"
	"erpchat/models"
)

// CountFilters is the union of the narrowing arguments accepted by the
// counting tool. Which fields apply depends on the model being counted.
type CountFilters struct {
	Nombre          string
	PrecioMin       *float64
	PrecioMax       *float64
	Categoria       string
	ProductoIDs     []int
	VendedorIDs     []int
	ClienteIDs      []int
	Periodo         string
	Tipo            string
	Estado          string
	DiasVencimiento int
}

// CounterService answers "how many" questions without fetching rows. It
// is the pre-check the data tools run internally, exposed as a tool of
// its own, so it never warns about volume.
type CounterService struct {
	products db.ProductRepository
	sales    db.SaleRepository
	invoices db.InvoiceRepository
	now      func() time.Time
}

func NewCounterService(products db.ProductRepository, sales db.SaleRepository, invoices db.InvoiceRepository) *CounterService {
	return &CounterService{products: products, sales: sales, invoices: invoices, now: time.Now}
}

func (s *CounterService) CountRecords(modelo string, f CountFilters) (models.ToolResult, error) {
	var (
		count   int
		applied map[string]any
		err     error
	)

	switch modelo {
	case "producto":
		count, applied, err = s.countProducts(f)
	case "venta":
		count, applied, err = s.countSales(f)
	case "factura":
		count, applied, err = s.countInvoices(f)
	default:
		return models.ErrorResult(fmt.Sprintf("Modelo '%s' no soportado. Usa: producto, venta, factura.", modelo)), nil
	}
	if err != nil {
		return nil, err
	}

	return models.ToolResult{
		"modelo":            modelo,
		"cantidad":          count,
		"filtros_aplicados": applied,
		"message":           fmt.Sprintf("Hay %d registros de '%s' con los filtros aplicados.", count, modelo),
	}, nil
}

func (s *CounterService) countProducts(f CountFilters) (int, map[string]any, error) {
	filters := models.ProductFilters{
		Nombre:    f.Nombre,
		PrecioMin: f.PrecioMin,
		PrecioMax: f.PrecioMax,
		Categoria: f.Categoria,
	}

	count, err := s.products.CountProducts(filters)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to count products: %w", err)
	}

	return count, productFiltersMap(filters), nil
}

func (s *CounterService) countSales(f CountFilters) (int, map[string]any, error) {
	start, end := PeriodRange(s.now(), f.Periodo)
	filters := models.SaleFilters{
		Start:       isoDate(start),
		End:         isoDate(end),
		ProductoIDs: f.ProductoIDs,
		VendedorIDs: f.VendedorIDs,
		ClienteIDs:  f.ClienteIDs,
	}

	count, err := s.sales.CountOrders(filters)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to count sale orders: %w", err)
	}

	applied := map[string]any{"periodo": f.Periodo, "desde": filters.Start, "hasta": filters.End}
	if len(f.ProductoIDs) > 0 {
		applied["producto_ids"] = f.ProductoIDs
	}
	if len(f.VendedorIDs) > 0 {
		applied["vendedor_ids"] = f.VendedorIDs
	}
	if len(f.ClienteIDs) > 0 {
		applied["cliente_ids"] = f.ClienteIDs
	}
	return count, applied, nil
}

func (s *CounterService) countInvoices(f CountFilters) (int, map[string]any, error) {
	today := s.now()
	filters := models.InvoiceFilters{
		Tipo:       f.Tipo,
		Estado:     f.Estado,
		Today:      isoDate(today),
		ClienteIDs: f.ClienteIDs,
	}
	if f.Estado == "pendiente" && f.DiasVencimiento > 0 {
		filters.DueFrom = isoDate(today)
		filters.DueTo = isoDate(today.AddDate(0, 0, f.DiasVencimiento))
	}

	count, err := s.invoices.CountInvoices(filters)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to count invoices: %w", err)
	}

	applied := map[string]any{"tipo": f.Tipo, "estado": f.Estado}
	if len(f.ClienteIDs) > 0 {
		applied["cliente_ids"] = f.ClienteIDs
	}
	if f.DiasVencimiento > 0 {
		applied["dias_vencimiento"] = f.DiasVencimiento
	}
	return count, applied, nil
}
