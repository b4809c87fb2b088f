package db

import (
	"database/sql"
	"fmt"
	"strings"

	"erpchat/models"

	_ "github.com/lib/pq"
)

type InvoiceRepository interface {
	CountInvoices(filters models.InvoiceFilters) (int, error)
	SearchInvoices(filters models.InvoiceFilters, limit int) ([]models.Invoice, error)
}

type PostgresInvoiceRepository struct {
	db *sql.DB
}

func NewPostgresInvoiceRepository(databaseURL string) (*PostgresInvoiceRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresInvoiceRepository{db: db}, nil
}

func invoiceWhere(filters models.InvoiceFilters) (string, []any) {
	moveType := "out_invoice"
	if filters.Tipo == "proveedor" {
		moveType = "in_invoice"
	}

	conditions := []string{"state = 'posted'"}
	args := []any{moveType}
	conditions = append(conditions, "move_type = $1")

	switch filters.Estado {
	case "vencido":
		conditions = append(conditions, "payment_state IN ('not_paid', 'partial')")
		args = append(args, filters.Today)
		conditions = append(conditions, fmt.Sprintf("due_date < $%d", len(args)))
	case "pagado":
		conditions = append(conditions, "payment_state = 'paid'")
	case "todos":
		// no payment filter
	default: // pendiente
		conditions = append(conditions, "payment_state IN ('not_paid', 'partial')")
		if filters.DueFrom != "" && filters.DueTo != "" {
			args = append(args, filters.DueFrom)
			conditions = append(conditions, fmt.Sprintf("due_date >= $%d", len(args)))
			args = append(args, filters.DueTo)
			conditions = append(conditions, fmt.Sprintf("due_date <= $%d", len(args)))
		}
	}

	if len(filters.ClienteIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("customer_id IN (%s)", intList(&args, filters.ClienteIDs)))
	}

	return strings.Join(conditions, " AND "), args
}

func (r *PostgresInvoiceRepository) CountInvoices(filters models.InvoiceFilters) (int, error) {
	where, args := invoiceWhere(filters)
	query := fmt.Sprintf("SELECT COUNT(*) FROM erpchat.invoices WHERE %s", where)

	var count int
	if err := r.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	return count, nil
}

func (r *PostgresInvoiceRepository) SearchInvoices(filters models.InvoiceFilters, limit int) ([]models.Invoice, error) {
	where, args := invoiceWhere(filters)

	args = append(args, limit)
	query := fmt.Sprintf(`
		SELECT id, number, customer_name, customer_id,
		       amount_total, amount_residual, COALESCE(due_date::text, ''), payment_state
		FROM erpchat.invoices
		WHERE %s
		ORDER BY due_date ASC
		LIMIT $%d`, where, len(args))

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	invoices := make([]models.Invoice, 0)
	for rows.Next() {
		var inv models.Invoice
		err := rows.Scan(&inv.ID, &inv.Numero, &inv.Cliente, &inv.ClienteID,
			&inv.MontoTotal, &inv.MontoPendiente, &inv.FechaVencimiento, &inv.EstadoPago)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over invoices: %w", err)
	}

	return invoices, nil
}

func (r *PostgresInvoiceRepository) Close() error {
	return r.db.Close()
}
