package db

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"erpchat/models"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// In-memory implementations of the repositories, used by tests and local
// development without a Postgres instance. The record store holds fixture
// rows loaded at construction time; queries apply the same semantics as
// the SQL repositories.

type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[int]*models.Session
	messages map[int][]models.Message
	nextID   int
	nextMsg  int
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[int]*models.Session),
		messages: make(map[int][]models.Message),
	}
}

func (r *MemorySessionRepository) CreateSession(name string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	session := &models.Session{
		ID:        r.nextID,
		Name:      name,
		CreatedAt: time.Now(),
	}
	r.sessions[session.ID] = session
	r.messages[session.ID] = []models.Message{}
	return session, nil
}

func (r *MemorySessionRepository) GetSessionByID(id int) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session with id %d not found", id)
	}
	return session, nil
}

func (r *MemorySessionRepository) AppendMessage(msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[msg.SessionID]; !ok {
		return fmt.Errorf("session with id %d not found", msg.SessionID)
	}

	existing := r.messages[msg.SessionID]
	maxSeq := 0
	for _, m := range existing {
		if m.Sequence > maxSeq {
			maxSeq = m.Sequence
		}
	}

	r.nextMsg++
	msg.ID = r.nextMsg
	msg.Sequence = maxSeq + 1
	msg.CreatedAt = time.Now()
	r.messages[msg.SessionID] = append(existing, *msg)
	return nil
}

func (r *MemorySessionRepository) ListMessages(sessionID int) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[sessionID]; !ok {
		return nil, fmt.Errorf("session with id %d not found", sessionID)
	}

	out := make([]models.Message, len(r.messages[sessionID]))
	copy(out, r.messages[sessionID])
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

// MemorySaleLine is one order line of a fixture sale.
type MemorySaleLine struct {
	ProductID   int
	ProductName string
	Quantity    float64
	PriceTotal  float64
}

type MemorySaleOrder struct {
	ID         int
	Nombre     string
	Cliente    string
	ClienteID  int
	Vendedor   string
	VendedorID int
	Monto      float64
	Fecha      string // ISO date
	State      string
	Lines      []MemorySaleLine
}

type MemoryInvoice struct {
	models.Invoice
	MoveType string
	State    string
}

type MemoryProduct struct {
	models.Product
	SaleOk bool
}

type MemoryRecordStore struct {
	Products []MemoryProduct
	Sales    []MemorySaleOrder
	Invoices []MemoryInvoice
}

func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{}
}

// productNameMatches mirrors the ILIKE '%term%' behavior of the SQL store
// plus a typo-tolerant fallback against individual words of the product
// name.
func productNameMatches(term, nombre string) bool {
	if term == "" {
		return true
	}
	lowTerm := strings.ToLower(term)
	lowName := strings.ToLower(nombre)
	if strings.Contains(lowName, lowTerm) {
		return true
	}
	return len(fuzzy.Find(lowTerm, strings.Fields(lowName))) > 0
}

func (s *MemoryRecordStore) matchingProducts(filters models.ProductFilters) []models.Product {
	matched := make([]models.Product, 0)
	for _, p := range s.Products {
		if !p.SaleOk {
			continue
		}
		if !productNameMatches(filters.Nombre, p.Nombre) {
			continue
		}
		if filters.PrecioMin != nil && p.Precio < *filters.PrecioMin {
			continue
		}
		if filters.PrecioMax != nil && p.Precio > *filters.PrecioMax {
			continue
		}
		if filters.Categoria != "" && !strings.Contains(strings.ToLower(p.Categoria), strings.ToLower(filters.Categoria)) {
			continue
		}
		if len(filters.IDs) > 0 && !containsInt(filters.IDs, p.ID) {
			continue
		}
		matched = append(matched, p.Product)
	}
	return matched
}

func (s *MemoryRecordStore) CountProducts(filters models.ProductFilters) (int, error) {
	return len(s.matchingProducts(filters)), nil
}

func (s *MemoryRecordStore) SearchProducts(filters models.ProductFilters, orden string, limit int) ([]models.Product, error) {
	matched := s.matchingProducts(filters)

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch orden {
		case "precio_asc":
			return a.Precio < b.Precio
		case "precio_desc":
			return a.Precio > b.Precio
		case "nombre_desc":
			return a.Nombre > b.Nombre
		case "stock_asc":
			return a.Stock < b.Stock
		case "stock_desc":
			return a.Stock > b.Stock
		default:
			return a.Nombre < b.Nombre
		}
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *MemoryRecordStore) matchingSales(filters models.SaleFilters) []MemorySaleOrder {
	matched := make([]MemorySaleOrder, 0)
	for _, sale := range s.Sales {
		if sale.State != "sale" && sale.State != "done" {
			continue
		}
		if sale.Fecha < filters.Start || sale.Fecha >= filters.End {
			continue
		}
		if len(filters.VendedorIDs) > 0 && !containsInt(filters.VendedorIDs, sale.VendedorID) {
			continue
		}
		if len(filters.ClienteIDs) > 0 && !containsInt(filters.ClienteIDs, sale.ClienteID) {
			continue
		}
		if len(filters.ProductoIDs) > 0 && !saleHasProduct(sale, filters.ProductoIDs) {
			continue
		}
		matched = append(matched, sale)
	}
	return matched
}

func saleHasProduct(sale MemorySaleOrder, ids []int) bool {
	for _, line := range sale.Lines {
		if containsInt(ids, line.ProductID) {
			return true
		}
	}
	return false
}

func (s *MemoryRecordStore) CountOrders(filters models.SaleFilters) (int, error) {
	return len(s.matchingSales(filters)), nil
}

func (s *MemoryRecordStore) SearchOrders(filters models.SaleFilters, orden string, limit int) ([]models.SaleOrder, error) {
	matched := s.matchingSales(filters)

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch orden {
		case "monto_asc":
			return a.Monto < b.Monto
		case "fecha_desc":
			return a.Fecha > b.Fecha
		case "fecha_asc":
			return a.Fecha < b.Fecha
		default:
			return a.Monto > b.Monto
		}
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	orders := make([]models.SaleOrder, 0, len(matched))
	for _, sale := range matched {
		orders = append(orders, models.SaleOrder{
			ID:         sale.ID,
			Nombre:     sale.Nombre,
			Cliente:    sale.Cliente,
			ClienteID:  sale.ClienteID,
			Vendedor:   sale.Vendedor,
			VendedorID: sale.VendedorID,
			Monto:      sale.Monto,
			Fecha:      sale.Fecha,
		})
	}
	return orders, nil
}

func (s *MemoryRecordStore) GroupOrders(groupBy string, filters models.SaleFilters, orden string, limit int) ([]models.SaleGroup, error) {
	type bucketKey struct {
		id   int
		name string
	}
	keyFor := func(sale MemorySaleOrder, line MemorySaleLine) (bucketKey, bool) {
		switch groupBy {
		case "vendedor":
			return bucketKey{sale.VendedorID, sale.Vendedor}, true
		case "producto":
			return bucketKey{line.ProductID, line.ProductName}, true
		case "cliente":
			return bucketKey{sale.ClienteID, sale.Cliente}, true
		}
		return bucketKey{}, false
	}

	buckets := make(map[bucketKey]*models.SaleGroup)
	for _, sale := range s.matchingSales(filters) {
		for _, line := range sale.Lines {
			key, ok := keyFor(sale, line)
			if !ok {
				return nil, fmt.Errorf("unsupported grouping: %s", groupBy)
			}
			group, exists := buckets[key]
			if !exists {
				group = &models.SaleGroup{ID: key.id, Nombre: key.name}
				buckets[key] = group
			}
			group.Monto += line.PriceTotal
			group.Cantidad += line.Quantity
		}
	}

	groups := make([]models.SaleGroup, 0, len(buckets))
	for _, g := range buckets {
		groups = append(groups, *g)
	}

	sort.Slice(groups, func(i, j int) bool {
		if strings.Contains(orden, "cantidad") {
			return groups[i].Cantidad > groups[j].Cantidad
		}
		if strings.Contains(orden, "asc") {
			return groups[i].Monto < groups[j].Monto
		}
		return groups[i].Monto > groups[j].Monto
	})

	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}
	return groups, nil
}

func (s *MemoryRecordStore) matchingInvoices(filters models.InvoiceFilters) []models.Invoice {
	moveType := "out_invoice"
	if filters.Tipo == "proveedor" {
		moveType = "in_invoice"
	}

	matched := make([]models.Invoice, 0)
	for _, inv := range s.Invoices {
		if inv.State != "posted" || inv.MoveType != moveType {
			continue
		}
		switch filters.Estado {
		case "vencido":
			if inv.EstadoPago != "not_paid" && inv.EstadoPago != "partial" {
				continue
			}
			if inv.FechaVencimiento >= filters.Today {
				continue
			}
		case "pagado":
			if inv.EstadoPago != "paid" {
				continue
			}
		case "todos":
			// keep all payment states
		default: // pendiente
			if inv.EstadoPago != "not_paid" && inv.EstadoPago != "partial" {
				continue
			}
			if filters.DueFrom != "" && filters.DueTo != "" {
				if inv.FechaVencimiento < filters.DueFrom || inv.FechaVencimiento > filters.DueTo {
					continue
				}
			}
		}
		if len(filters.ClienteIDs) > 0 && !containsInt(filters.ClienteIDs, inv.ClienteID) {
			continue
		}
		matched = append(matched, inv.Invoice)
	}
	return matched
}

func (s *MemoryRecordStore) CountInvoices(filters models.InvoiceFilters) (int, error) {
	return len(s.matchingInvoices(filters)), nil
}

func (s *MemoryRecordStore) SearchInvoices(filters models.InvoiceFilters, limit int) ([]models.Invoice, error) {
	matched := s.matchingInvoices(filters)
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].FechaVencimiento < matched[j].FechaVencimiento
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func containsInt(values []int, target int) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
