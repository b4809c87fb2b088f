package db

import (
	"database/sql"
	"fmt"
	"strings"

	"erpchat/models"

	_ "github.com/lib/pq"
	"github.com/samber/lo"
)

var saleOrderSQL = map[string]string{
	"monto_desc":    "amount_total DESC",
	"monto_asc":     "amount_total ASC",
	"fecha_desc":    "date_order DESC",
	"fecha_asc":     "date_order ASC",
	"cantidad_desc": "amount_total DESC",
}

// Grouping targets for aggregated sales queries.
var saleGroupSQL = map[string]struct {
	idColumn   string
	nameColumn string
}{
	"vendedor": {"o.seller_id", "o.seller_name"},
	"producto": {"l.product_id", "l.product_name"},
	"cliente":  {"o.customer_id", "o.customer_name"},
}

type SaleRepository interface {
	CountOrders(filters models.SaleFilters) (int, error)
	SearchOrders(filters models.SaleFilters, orden string, limit int) ([]models.SaleOrder, error)
	GroupOrders(groupBy string, filters models.SaleFilters, orden string, limit int) ([]models.SaleGroup, error)
}

type PostgresSaleRepository struct {
	db *sql.DB
}

func NewPostgresSaleRepository(databaseURL string) (*PostgresSaleRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresSaleRepository{db: db}, nil
}

func intList(args *[]any, ids []int) string {
	placeholders := lo.Map(ids, func(id int, _ int) string {
		*args = append(*args, id)
		return fmt.Sprintf("$%d", len(*args))
	})
	return strings.Join(placeholders, ", ")
}

func saleWhere(filters models.SaleFilters) (string, []any) {
	conditions := []string{"o.state IN ('sale', 'done')"}
	args := []any{}

	args = append(args, filters.Start)
	conditions = append(conditions, fmt.Sprintf("o.date_order >= $%d", len(args)))
	args = append(args, filters.End)
	conditions = append(conditions, fmt.Sprintf("o.date_order < $%d", len(args)))

	if len(filters.VendedorIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("o.seller_id IN (%s)", intList(&args, filters.VendedorIDs)))
	}
	if len(filters.ClienteIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("o.customer_id IN (%s)", intList(&args, filters.ClienteIDs)))
	}
	if len(filters.ProductoIDs) > 0 {
		list := intList(&args, filters.ProductoIDs)
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM erpchat.sale_order_lines l WHERE l.order_id = o.id AND l.product_id IN (%s))", list))
	}

	return strings.Join(conditions, " AND "), args
}

func (r *PostgresSaleRepository) CountOrders(filters models.SaleFilters) (int, error) {
	where, args := saleWhere(filters)
	query := fmt.Sprintf("SELECT COUNT(*) FROM erpchat.sale_orders o WHERE %s", where)

	var count int
	if err := r.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sale orders: %w", err)
	}

	return count, nil
}

func (r *PostgresSaleRepository) SearchOrders(filters models.SaleFilters, orden string, limit int) ([]models.SaleOrder, error) {
	where, args := saleWhere(filters)
	orderBy, ok := saleOrderSQL[orden]
	if !ok {
		orderBy = saleOrderSQL["monto_desc"]
	}

	args = append(args, limit)
	query := fmt.Sprintf(`
		SELECT o.id, o.name, o.customer_name, o.customer_id,
		       COALESCE(o.seller_name, ''), COALESCE(o.seller_id, 0),
		       o.amount_total, o.date_order::date
		FROM erpchat.sale_orders o
		WHERE %s
		ORDER BY %s
		LIMIT $%d`, where, orderBy, len(args))

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sale orders: %w", err)
	}
	defer rows.Close()

	orders := make([]models.SaleOrder, 0)
	for rows.Next() {
		var o models.SaleOrder
		err := rows.Scan(&o.ID, &o.Nombre, &o.Cliente, &o.ClienteID, &o.Vendedor, &o.VendedorID, &o.Monto, &o.Fecha)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale order: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over sale orders: %w", err)
	}

	return orders, nil
}

func (r *PostgresSaleRepository) GroupOrders(groupBy string, filters models.SaleFilters, orden string, limit int) ([]models.SaleGroup, error) {
	target, ok := saleGroupSQL[groupBy]
	if !ok {
		return nil, fmt.Errorf("unsupported grouping: %s", groupBy)
	}

	where, args := saleWhere(filters)

	orderBy := "monto DESC"
	if strings.Contains(orden, "asc") {
		orderBy = "monto ASC"
	}
	if strings.Contains(orden, "cantidad") {
		orderBy = "cantidad DESC"
	}

	args = append(args, limit)
	query := fmt.Sprintf(`
		SELECT COALESCE(%s, 0), COALESCE(%s, ''),
		       SUM(l.price_total) AS monto, SUM(l.quantity) AS cantidad
		FROM erpchat.sale_orders o
		JOIN erpchat.sale_order_lines l ON l.order_id = o.id
		WHERE %s
		GROUP BY %s, %s
		ORDER BY %s
		LIMIT $%d`,
		target.idColumn, target.nameColumn, where, target.idColumn, target.nameColumn, orderBy, len(args))

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query grouped sales: %w", err)
	}
	defer rows.Close()

	groups := make([]models.SaleGroup, 0)
	for rows.Next() {
		var g models.SaleGroup
		if err := rows.Scan(&g.ID, &g.Nombre, &g.Monto, &g.Cantidad); err != nil {
			return nil, fmt.Errorf("failed to scan sale group: %w", err)
		}
		groups = append(groups, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over sale groups: %w", err)
	}

	return groups, nil
}

func (r *PostgresSaleRepository) Close() error {
	return r.db.Close()
}
