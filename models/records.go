package models

// Record rows returned by the store. All fields are primitives so rows
// can go straight into a ToolResult (dates as ISO strings, money as
// float64).

type Product struct {
	ID        int     `json:"id"`
	Nombre    string  `json:"nombre"`
	Precio    float64 `json:"precio"`
	Stock     float64 `json:"stock"`
	Categoria string  `json:"categoria"`
}

type SaleOrder struct {
	ID         int     `json:"id"`
	Nombre     string  `json:"nombre"`
	Cliente    string  `json:"cliente"`
	ClienteID  int     `json:"cliente_id"`
	Vendedor   string  `json:"vendedor"`
	VendedorID int     `json:"vendedor_id"`
	Monto      float64 `json:"monto"`
	Fecha      string  `json:"fecha"`
}

// SaleGroup is one aggregation bucket when sales are grouped by seller,
// product or customer.
type SaleGroup struct {
	ID       int     `json:"id"`
	Nombre   string  `json:"nombre"`
	Monto    float64 `json:"monto"`
	Cantidad float64 `json:"cantidad"`
}

type Invoice struct {
	ID               int     `json:"id"`
	Numero           string  `json:"numero"`
	Cliente          string  `json:"cliente"`
	ClienteID        int     `json:"cliente_id"`
	MontoTotal       float64 `json:"monto_total"`
	MontoPendiente   float64 `json:"monto_pendiente"`
	FechaVencimiento string  `json:"fecha_vencimiento"`
	EstadoPago       string  `json:"estado_pago"`
}

// ProductFilters narrows product queries. Nil price bounds mean
// unbounded.
type ProductFilters struct {
	Nombre    string
	PrecioMin *float64
	PrecioMax *float64
	Categoria string
	IDs       []int
}

// SaleFilters narrows sale order queries. Start/End is the half-open
// [Start, End) period window in ISO date form.
type SaleFilters struct {
	Start       string
	End         string
	ProductoIDs []int
	VendedorIDs []int
	ClienteIDs  []int
}

// InvoiceFilters narrows invoice queries. Tipo is "cliente" or
// "proveedor"; Estado one of pendiente, vencido, pagado, todos. DueFrom/
// DueTo bound the due date when DiasVencimiento is set; Today anchors the
// overdue comparison.
type InvoiceFilters struct {
	Tipo       string
	Estado     string
	Today      string
	DueFrom    string
	DueTo      string
	ClienteIDs []int
}
