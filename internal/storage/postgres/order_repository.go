package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/overiq429/cafe-orders/internal/domain"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository
// поверх подключения к базе филиала.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

func (r *orderRepository) Create(order domain.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (
			id, employee_id, table_id, customer_id, status, total_minor, created_at, updated_at
		) VALUES ($1,$2,$3,NULLIF($4,''),$5,$6,$7,$8)
	`,
		order.ID, order.EmployeeID, order.TableID, order.CustomerID,
		string(order.Status), order.TotalMinor, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

func (r *orderRepository) Get(id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		order    domain.Order
		status   string
		customer sql.NullString
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT id, employee_id, table_id, customer_id, status, total_minor, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, id).Scan(
		&order.ID, &order.EmployeeID, &order.TableID, &customer,
		&status, &order.TotalMinor, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}
	order.Status = domain.OrderStatus(status)
	order.CustomerID = customer.String

	items, err := r.loadItems(ctx, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = items

	return order, nil
}

// List возвращает заказы, новые первыми; status="" означает все статусы.
func (r *orderRepository) List(status domain.OrderStatus, limit int) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := `
		SELECT id, employee_id, table_id, customer_id, status, total_minor, created_at, updated_at
		FROM orders
	`
	args := make([]any, 0, 2)
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, string(status))
	}
	query += " ORDER BY created_at DESC, id DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var (
			order    domain.Order
			st       string
			customer sql.NullString
		)
		if err := rows.Scan(
			&order.ID, &order.EmployeeID, &order.TableID, &customer,
			&st, &order.TotalMinor, &order.CreatedAt, &order.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		order.Status = domain.OrderStatus(st)
		order.CustomerID = customer.String

		items, err := r.loadItems(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}

func (r *orderRepository) UpdateStatus(id string, status domain.OrderStatus) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1,
		    updated_at = $2
		WHERE id = $3
	`, string(status), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}

	return nil
}

// AppendLineItem вставляет позицию и пересчитывает сумму заказа в одной
// транзакции. Сбой на любом шаге откатывает оба изменения: успешная вставка
// не может пережить неудачный пересчёт. Цена принимается как есть —
// репозиторий не ходит в каталог за актуальной.
func (r *orderRepository) AppendLineItem(orderID string, item domain.LineItem) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin tx: %v", domain.ErrWriteFailed, err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO order_line_items (id, order_id, item_id, qty, price_minor, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`,
		item.ID, orderID, item.ItemID, item.Qty, item.PriceMinor, item.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, domain.ErrOrderNotFound
		}
		return 0, fmt.Errorf("%w: insert line item: %v", domain.ErrWriteFailed, err)
	}

	var total int64
	err = tx.QueryRowContext(ctx, `
		UPDATE orders
		SET total_minor = (
			SELECT COALESCE(SUM(qty * price_minor), 0)
			FROM order_line_items
			WHERE order_id = $1
		),
		    updated_at = $2
		WHERE id = $1
		RETURNING total_minor
	`, orderID, time.Now().UTC()).Scan(&total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrOrderNotFound
		}
		return 0, fmt.Errorf("%w: recompute order total: %v", domain.ErrWriteFailed, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit append line item: %v", domain.ErrWriteFailed, err)
	}

	return total, nil
}

// RecomputeTotal перезаписывает сумму заказа суммой его позиций.
// Повторный вызов без новых вставок возвращает ту же сумму.
func (r *orderRepository) RecomputeTotal(orderID string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var total int64
	err := r.db.QueryRowContext(ctx, `
		UPDATE orders
		SET total_minor = (
			SELECT COALESCE(SUM(qty * price_minor), 0)
			FROM order_line_items
			WHERE order_id = $1
		),
		    updated_at = $2
		WHERE id = $1
		RETURNING total_minor
	`, orderID, time.Now().UTC()).Scan(&total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrOrderNotFound
		}
		return 0, fmt.Errorf("%w: recompute order total: %v", domain.ErrWriteFailed, err)
	}

	return total, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderID string) ([]domain.LineItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, item_id, qty, price_minor, created_at
		FROM order_line_items
		WHERE order_id = $1
		ORDER BY created_at ASC, id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order line items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.LineItem, 0)
	for rows.Next() {
		var item domain.LineItem
		if err := rows.Scan(&item.ID, &item.ItemID, &item.Qty, &item.PriceMinor, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate line items: %w", err)
	}

	return items, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

var _ domain.OrderRepository = (*orderRepository)(nil)
