package db

import (
	"database/sql"
	"fmt"
	"strings"

	"erpchat/models"

	_ "github.com/lib/pq"
	"github.com/samber/lo"
)

// Sort keys accepted by SearchProducts, as exposed in the tool schema.
var productOrderSQL = map[string]string{
	"precio_asc":  "list_price ASC",
	"precio_desc": "list_price DESC",
	"nombre_asc":  "name ASC",
	"nombre_desc": "name DESC",
	"stock_asc":   "qty_available ASC",
	"stock_desc":  "qty_available DESC",
}

type ProductRepository interface {
	CountProducts(filters models.ProductFilters) (int, error)
	SearchProducts(filters models.ProductFilters, orden string, limit int) ([]models.Product, error)
}

type PostgresProductRepository struct {
	db *sql.DB
}

func NewPostgresProductRepository(databaseURL string) (*PostgresProductRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresProductRepository{db: db}, nil
}

func productWhere(filters models.ProductFilters) (string, []any) {
	conditions := []string{"sale_ok = TRUE"}
	args := []any{}

	if filters.Nombre != "" {
		args = append(args, "%"+filters.Nombre+"%")
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if filters.PrecioMin != nil {
		args = append(args, *filters.PrecioMin)
		conditions = append(conditions, fmt.Sprintf("list_price >= $%d", len(args)))
	}
	if filters.PrecioMax != nil {
		args = append(args, *filters.PrecioMax)
		conditions = append(conditions, fmt.Sprintf("list_price <= $%d", len(args)))
	}
	if filters.Categoria != "" {
		args = append(args, "%"+filters.Categoria+"%")
		conditions = append(conditions, fmt.Sprintf("category ILIKE $%d", len(args)))
	}
	if len(filters.IDs) > 0 {
		placeholders := lo.Map(filters.IDs, func(id int, _ int) string {
			args = append(args, id)
			return fmt.Sprintf("$%d", len(args))
		})
		conditions = append(conditions, fmt.Sprintf("id IN (%s)", strings.Join(placeholders, ", ")))
	}

	return strings.Join(conditions, " AND "), args
}

func (r *PostgresProductRepository) CountProducts(filters models.ProductFilters) (int, error) {
	where, args := productWhere(filters)
	query := fmt.Sprintf("SELECT COUNT(*) FROM erpchat.products WHERE %s", where)

	var count int
	if err := r.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}

	return count, nil
}

func (r *PostgresProductRepository) SearchProducts(filters models.ProductFilters, orden string, limit int) ([]models.Product, error) {
	where, args := productWhere(filters)
	orderBy, ok := productOrderSQL[orden]
	if !ok {
		orderBy = productOrderSQL["nombre_asc"]
	}

	args = append(args, limit)
	query := fmt.Sprintf(`
		SELECT id, name, list_price, qty_available, COALESCE(category, '')
		FROM erpchat.products
		WHERE %s
		ORDER BY %s
		LIMIT $%d`, where, orderBy, len(args))

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Nombre, &p.Precio, &p.Stock, &p.Categoria); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over products: %w", err)
	}

	return products, nil
}

func (r *PostgresProductRepository) Close() error {
	return r.db.Close()
}
