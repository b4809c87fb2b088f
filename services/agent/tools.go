package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"erpchat/models"
	"erpchat/services/kpi"

	"github.com/invopop/jsonschema"
)

func toolSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)

	raw, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("failed to marshal tool schema: %v", err))
	}

	var params map[string]any
	if err := json.Unmarshal(raw, &params); err != nil {
		panic(fmt.Sprintf("failed to decode tool schema: %v", err))
	}
	delete(params, "$schema")
	return params
}

// ---- contar_registros ----

type CountRecordsInput struct {
	Modelo          string   `json:"modelo" jsonschema:"required,enum=producto,enum=venta,enum=factura,description=Tipo de registro a contar"`
	Nombre          string   `json:"nombre,omitempty" jsonschema:"description=Filtro por nombre de producto (solo modelo producto)"`
	PrecioMin       *float64 `json:"precio_min,omitempty" jsonschema:"description=Precio minimo (solo modelo producto)"`
	PrecioMax       *float64 `json:"precio_max,omitempty" jsonschema:"description=Precio maximo (solo modelo producto)"`
	Categoria       string   `json:"categoria,omitempty" jsonschema:"description=Filtro por categoria (solo modelo producto)"`
	ProductoIDs     []int    `json:"producto_ids,omitempty" jsonschema:"description=IDs de productos (solo modelo venta)"`
	VendedorIDs     []int    `json:"vendedor_ids,omitempty" jsonschema:"description=IDs de vendedores (solo modelo venta)"`
	ClienteIDs      []int    `json:"cliente_ids,omitempty" jsonschema:"description=IDs de clientes (venta o factura)"`
	Periodo         string   `json:"periodo,omitempty" jsonschema:"enum=mes_actual,enum=mes_anterior,enum=trimestre,enum=anio,description=Periodo de tiempo (solo modelo venta)"`
	Tipo            string   `json:"tipo,omitempty" jsonschema:"enum=cliente,enum=proveedor,description=Tipo de factura (solo modelo factura)"`
	Estado          string   `json:"estado,omitempty" jsonschema:"enum=pendiente,enum=vencido,enum=pagado,enum=todos,description=Estado de pago (solo modelo factura)"`
	DiasVencimiento int      `json:"dias_vencimiento,omitempty" jsonschema:"description=Facturas pendientes que vencen en los proximos N dias (solo modelo factura)"`
}

type CountRecordsTool struct {
	counter *kpi.CounterService
}

func NewCountRecordsTool(counter *kpi.CounterService) CountRecordsTool {
	return CountRecordsTool{counter: counter}
}

func (t CountRecordsTool) Name() string {
	return "contar_registros"
}

func (t CountRecordsTool) Description() string {
	return "Cuenta registros de un modelo (producto, venta o factura) con filtros opcionales, sin traer los datos. " +
		"Usala antes de pedir listados grandes."
}

func (t CountRecordsTool) Parameters() map[string]any {
	return toolSchema[CountRecordsInput]()
}

func (t CountRecordsTool) Call(ctx context.Context, argsJSON string) (models.ToolResult, error) {
	var in CountRecordsInput
	if err := json.Unmarshal([]byte(argsJSON), &in); err != nil {
		return nil, fmt.Errorf("failed to parse count records input: %w", err)
	}
	if in.Periodo == "" {
		in.Periodo = kpi.PeriodCurrentMonth
	}
	if in.Tipo == "" {
		in.Tipo = "cliente"
	}
	if in.Estado == "" {
		in.Estado = "pendiente"
	}

	return t.counter.CountRecords(in.Modelo, kpi.CountFilters{
		Nombre:          in.Nombre,
		PrecioMin:       in.PrecioMin,
		PrecioMax:       in.PrecioMax,
		Categoria:       in.Categoria,
		ProductoIDs:     in.ProductoIDs,
		VendedorIDs:     in.VendedorIDs,
		ClienteIDs:      in.ClienteIDs,
		Periodo:         in.Periodo,
		Tipo:            in.Tipo,
		Estado:          in.Estado,
		DiasVencimiento: in.DiasVencimiento,
	})
}

// ---- get_productos ----

type GetProductsInput struct {
	Nombre    string   `json:"nombre,omitempty" jsonschema:"description=Busqueda por nombre de producto"`
	PrecioMin *float64 `json:"precio_min,omitempty" jsonschema:"description=Precio minimo"`
	PrecioMax *float64 `json:"precio_max,omitempty" jsonschema:"description=Precio maximo"`
	Categoria string   `json:"categoria,omitempty" jsonschema:"description=Filtro por categoria"`
	IDs       []int    `json:"ids,omitempty" jsonschema:"description=IDs exactos de productos"`
	Orden     string   `json:"orden,omitempty" jsonschema:"enum=nombre_asc,enum=nombre_desc,enum=precio_asc,enum=precio_desc,enum=stock_asc,enum=stock_desc,description=Orden del listado"`
	Limite    int      `json:"limite,omitempty" jsonschema:"description=Cantidad maxima de productos a devolver (default 10)"`
}

type GetProductsTool struct {
	products *kpi.ProductService
}

func NewGetProductsTool(products *kpi.ProductService) GetProductsTool {
	return GetProductsTool{products: products}
}

func (t GetProductsTool) Name() string {
	return "get_productos"
}

func (t GetProductsTool) Description() string {
	return "Busca productos vendibles por nombre, categoria, rango de precio o IDs. " +
		"Si hay demasiados resultados devuelve una advertencia en lugar de datos."
}

func (t GetProductsTool) Parameters() map[string]any {
	return toolSchema[GetProductsInput]()
}

func (t GetProductsTool) Call(ctx context.Context, argsJSON string) (models.ToolResult, error) {
	var in GetProductsInput
	if err := json.Unmarshal([]byte(argsJSON), &in); err != nil {
		return nil, fmt.Errorf("failed to parse get products input: %w", err)
	}
	if in.Orden == "" {
		in.Orden = "nombre_asc"
	}
	if in.Limite <= 0 {
		in.Limite = 10
	}

	return t.products.GetProducts(in.Orden, in.Limite, models.ProductFilters{
		Nombre:    in.Nombre,
		PrecioMin: in.PrecioMin,
		PrecioMax: in.PrecioMax,
		Categoria: in.Categoria,
		IDs:       in.IDs,
	})
}

// ---- get_ventas ----

type GetSalesInput struct {
	ProductoIDs []int  `json:"producto_ids,omitempty" jsonschema:"description=Filtrar pedidos que incluyan estos productos"`
	VendedorIDs []int  `json:"vendedor_ids,omitempty" jsonschema:"description=Filtrar por vendedores"`
	ClienteIDs  []int  `json:"cliente_ids,omitempty" jsonschema:"description=Filtrar por clientes"`
	AgruparPor  string `json:"agrupar_por,omitempty" jsonschema:"enum=vendedor,enum=producto,enum=cliente,description=Agrupar resultados en lugar de listar pedidos"`
	Periodo     string `json:"periodo,omitempty" jsonschema:"enum=mes_actual,enum=mes_anterior,enum=trimestre,enum=anio,description=Periodo de tiempo (default mes_actual)"`
	Orden       string `json:"orden,omitempty" jsonschema:"enum=monto_desc,enum=monto_asc,enum=fecha_desc,enum=fecha_asc,enum=cantidad_desc,description=Orden del listado"`
	Limite      int    `json:"limite,omitempty" jsonschema:"description=Cantidad maxima de resultados a devolver (default 20)"`
}

type GetSalesTool struct {
	sales *kpi.SalesService
}

func NewGetSalesTool(sales *kpi.SalesService) GetSalesTool {
	return GetSalesTool{sales: sales}
}

func (t GetSalesTool) Name() string {
	return "get_ventas"
}

func (t GetSalesTool) Description() string {
	return "Busca pedidos de venta confirmados en un periodo, opcionalmente agrupados por vendedor, producto o cliente. " +
		"Si hay demasiados pedidos devuelve una advertencia en lugar de datos."
}

func (t GetSalesTool) Parameters() map[string]any {
	return toolSchema[GetSalesInput]()
}

func (t GetSalesTool) Call(ctx context.Context, argsJSON string) (models.ToolResult, error) {
	var in GetSalesInput
	if err := json.Unmarshal([]byte(argsJSON), &in); err != nil {
		return nil, fmt.Errorf("failed to parse get sales input: %w", err)
	}
	if in.Periodo == "" {
		in.Periodo = kpi.PeriodCurrentMonth
	}
	if in.Orden == "" {
		in.Orden = "monto_desc"
	}
	if in.Limite <= 0 {
		in.Limite = 20
	}

	return t.sales.GetSales(kpi.SalesQuery{
		ProductoIDs: in.ProductoIDs,
		VendedorIDs: in.VendedorIDs,
		ClienteIDs:  in.ClienteIDs,
		AgruparPor:  in.AgruparPor,
		Periodo:     in.Periodo,
		Orden:       in.Orden,
		Limite:      in.Limite,
	})
}

// ---- get_facturas ----

type GetInvoicesInput struct {
	Tipo            string `json:"tipo,omitempty" jsonschema:"enum=cliente,enum=proveedor,description=Facturas de cliente o de proveedor (default cliente)"`
	Estado          string `json:"estado,omitempty" jsonschema:"enum=pendiente,enum=vencido,enum=pagado,enum=todos,description=Estado de pago (default pendiente)"`
	DiasVencimiento int    `json:"dias_vencimiento,omitempty" jsonschema:"description=Solo facturas pendientes que vencen en los proximos N dias"`
	ClienteIDs      []int  `json:"cliente_ids,omitempty" jsonschema:"description=Filtrar por clientes"`
	Limite          int    `json:"limite,omitempty" jsonschema:"description=Cantidad maxima de facturas a devolver (default 20)"`
}

type GetInvoicesTool struct {
	invoices *kpi.InvoiceService
}

func NewGetInvoicesTool(invoices *kpi.InvoiceService) GetInvoicesTool {
	return GetInvoicesTool{invoices: invoices}
}

func (t GetInvoicesTool) Name() string {
	return "get_facturas"
}

func (t GetInvoicesTool) Description() string {
	return "Busca facturas publicadas por tipo y estado de pago, ordenadas por fecha de vencimiento. " +
		"Si hay demasiadas facturas devuelve una advertencia en lugar de datos."
}

func (t GetInvoicesTool) Parameters() map[string]any {
	return toolSchema[GetInvoicesInput]()
}

func (t GetInvoicesTool) Call(ctx context.Context, argsJSON string) (models.ToolResult, error) {
	var in GetInvoicesInput
	if err := json.Unmarshal([]byte(argsJSON), &in); err != nil {
		return nil, fmt.Errorf("failed to parse get invoices input: %w", err)
	}
	if in.Tipo == "" {
		in.Tipo = "cliente"
	}
	if in.Estado == "" {
		in.Estado = "pendiente"
	}
	if in.Limite <= 0 {
		in.Limite = 20
	}

	return t.invoices.GetInvoices(kpi.InvoiceQuery{
		Tipo:            in.Tipo,
		Estado:          in.Estado,
		DiasVencimiento: in.DiasVencimiento,
		ClienteIDs:      in.ClienteIDs,
		Limite:          in.Limite,
	})
}
