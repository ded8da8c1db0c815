package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/antonminaichev/darkstore-dispatch/internal/storage"
	hubtype "github.com/antonminaichev/darkstore-dispatch/internal/types/hub"
	ordertype "github.com/antonminaichev/darkstore-dispatch/internal/types/order"
	partnertype "github.com/antonminaichev/darkstore-dispatch/internal/types/partner"
	user "github.com/antonminaichev/darkstore-dispatch/internal/types/user"
	usersvc "github.com/antonminaichev/darkstore-dispatch/internal/user"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

var _ storage.Storage = (*PostgresStorage)(nil)

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(dsn string) (*PostgresStorage, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &PostgresStorage{db: db}

	if err := s.db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStorage) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id UUID PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS hubs (
            id UUID PRIMARY KEY,
            name TEXT NOT NULL,
            fence JSONB NOT NULL,
            created_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS partners (
            id UUID PRIMARY KEY,
            name TEXT NOT NULL,
            is_online BOOLEAN NOT NULL DEFAULT FALSE,
            is_kyc_verified BOOLEAN NOT NULL DEFAULT FALSE,
            hub_id UUID REFERENCES hubs(id),
            created_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id UUID PRIMARY KEY,
            number TEXT UNIQUE NOT NULL,
            customer_id UUID NOT NULL REFERENCES users(id),
            hub_id UUID NOT NULL REFERENCES hubs(id),
            status TEXT NOT NULL,
            delivery_address TEXT NOT NULL,
            lat DOUBLE PRECISION NOT NULL,
            lng DOUBLE PRECISION NOT NULL,
            delivery_fee DOUBLE PRECISION NOT NULL,
            promo_discount DOUBLE PRECISION NOT NULL,
            total_amount DOUBLE PRECISION NOT NULL,
            payment_status TEXT NOT NULL,
            promise_minutes INT NOT NULL,
            delivery_partner_id UUID REFERENCES partners(id),
            created_at TIMESTAMPTZ NOT NULL,
            accepted_at TIMESTAMPTZ,
            delivered_at TIMESTAMPTZ,
            delivery_minutes INT
        )`,
		`CREATE TABLE IF NOT EXISTS order_items (
            id SERIAL PRIMARY KEY,
            order_id UUID NOT NULL REFERENCES orders(id),
            product_id TEXT NOT NULL,
            quantity INT NOT NULL CHECK (quantity >= 1),
            unit_price DOUBLE PRECISION NOT NULL CHECK (unit_price >= 0)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer_id)`,
	}
	for _, q := range stmts {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

// ---- users ----

func (s *PostgresStorage) CreateUser(ctx context.Context, u *user.User) error {
	q := `INSERT INTO users (id,login,password_hash,role,created_at) VALUES($1,$2,$3,$4,$5)`
	_, err := s.db.ExecContext(ctx, q, u.ID, u.Login, u.PasswordHash, u.Role, u.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return usersvc.ErrUserExists
	}
	return err
}

func (s *PostgresStorage) FindByLogin(ctx context.Context, login string) (*user.User, error) {
	u := &user.User{}
	q := `SELECT id,login,password_hash,role,created_at FROM users WHERE login=$1`
	if err := s.db.QueryRowContext(ctx, q, login).
		Scan(&u.ID, &u.Login, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}
	return u, nil
}

// ---- hubs ----

func (s *PostgresStorage) CreateHub(ctx context.Context, h *hubtype.Hub) error {
	fence, err := json.Marshal(h.Fence)
	if err != nil {
		return err
	}
	q := `INSERT INTO hubs (id,name,fence,created_at) VALUES($1,$2,$3,$4)`
	_, err = s.db.ExecContext(ctx, q, h.ID, h.Name, fence, h.CreatedAt)
	return err
}

func (s *PostgresStorage) FindHubByID(ctx context.Context, id string) (*hubtype.Hub, error) {
	h := &hubtype.Hub{}
	var fence []byte
	q := `SELECT id,name,fence,created_at FROM hubs WHERE id=$1`
	if err := s.db.QueryRowContext(ctx, q, id).
		Scan(&h.ID, &h.Name, &fence, &h.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(fence, &h.Fence); err != nil {
		return nil, fmt.Errorf("decode fence: %w", err)
	}
	return h, nil
}

func (s *PostgresStorage) ListHubs(ctx context.Context) ([]hubtype.Hub, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,name,fence,created_at FROM hubs ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []hubtype.Hub
	for rows.Next() {
		var h hubtype.Hub
		var fence []byte
		if err := rows.Scan(&h.ID, &h.Name, &fence, &h.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(fence, &h.Fence); err != nil {
			return nil, fmt.Errorf("decode fence: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// ---- partners ----

func (s *PostgresStorage) CreatePartner(ctx context.Context, p *partnertype.DeliveryPartner) error {
	q := `INSERT INTO partners (id,name,is_online,is_kyc_verified,hub_id,created_at) VALUES($1,$2,$3,$4,$5,$6)`
	_, err := s.db.ExecContext(ctx, q, p.ID, p.Name, p.IsOnline, p.IsKycVerified, p.HubID, p.CreatedAt)
	return err
}

func (s *PostgresStorage) FindPartnerByID(ctx context.Context, id string) (*partnertype.DeliveryPartner, error) {
	p := &partnertype.DeliveryPartner{}
	var hubID sql.NullString
	q := `SELECT id,name,is_online,is_kyc_verified,hub_id,created_at FROM partners WHERE id=$1`
	if err := s.db.QueryRowContext(ctx, q, id).
		Scan(&p.ID, &p.Name, &p.IsOnline, &p.IsKycVerified, &hubID, &p.CreatedAt); err != nil {
		return nil, err
	}
	if hubID.Valid {
		p.HubID = &hubID.String
	}
	return p, nil
}

func (s *PostgresStorage) ListPartners(ctx context.Context) ([]partnertype.DeliveryPartner, error) {
	return s.queryPartners(ctx, `SELECT id,name,is_online,is_kyc_verified,hub_id,created_at FROM partners ORDER BY created_at`)
}

func (s *PostgresStorage) ListAvailablePartners(ctx context.Context) ([]partnertype.DeliveryPartner, error) {
	return s.queryPartners(ctx, `SELECT id,name,is_online,is_kyc_verified,hub_id,created_at
        FROM partners WHERE is_online AND is_kyc_verified ORDER BY created_at`)
}

func (s *PostgresStorage) queryPartners(ctx context.Context, q string) ([]partnertype.DeliveryPartner, error) {
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []partnertype.DeliveryPartner
	for rows.Next() {
		var p partnertype.DeliveryPartner
		var hubID sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &p.IsOnline, &p.IsKycVerified, &hubID, &p.CreatedAt); err != nil {
			return nil, err
		}
		if hubID.Valid {
			p.HubID = &hubID.String
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStorage) SetPartnerOnline(ctx context.Context, id string, online bool) error {
	_, err := s.db.ExecContext(ctx, `UPDATE partners SET is_online=$2 WHERE id=$1`, id, online)
	return err
}

func (s *PostgresStorage) SetPartnerVerified(ctx context.Context, id string, verified bool) error {
	_, err := s.db.ExecContext(ctx, `UPDATE partners SET is_kyc_verified=$2 WHERE id=$1`, id, verified)
	return err
}

// ---- orders ----

const orderColumns = `id,number,customer_id,hub_id,status,delivery_address,lat,lng,
    delivery_fee,promo_discount,total_amount,payment_status,promise_minutes,
    delivery_partner_id,created_at,accepted_at,delivered_at,delivery_minutes`

func (s *PostgresStorage) CreateOrder(ctx context.Context, o *ordertype.Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	q := `INSERT INTO orders (` + orderColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`
	if _, err := tx.ExecContext(ctx, q,
		o.ID, o.Number, o.CustomerID, o.HubID, o.Status, o.DeliveryAddress, o.Lat, o.Lng,
		o.DeliveryFee, o.PromoDiscount, o.TotalAmount, o.PaymentStatus, o.PromiseMinutes,
		o.PartnerID, o.CreatedAt, o.AcceptedAt, o.DeliveredAt, o.DeliveryMinutes,
	); err != nil {
		return err
	}
	for _, it := range o.Items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id,product_id,quantity,unit_price) VALUES($1,$2,$3,$4)`,
			o.ID, it.ProductID, it.Quantity, it.UnitPrice,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *PostgresStorage) FindOrderByID(ctx context.Context, id string) (*ordertype.Order, error) {
	return s.findOrder(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
}

func (s *PostgresStorage) FindOrderByNumber(ctx context.Context, number string) (*ordertype.Order, error) {
	return s.findOrder(ctx, `SELECT `+orderColumns+` FROM orders WHERE number=$1`, number)
}

func (s *PostgresStorage) findOrder(ctx context.Context, q string, arg any) (*ordertype.Order, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		return nil, err
	}
	if err := s.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*ordertype.Order, error) {
	var o ordertype.Order
	var partnerID sql.NullString
	var acceptedAt, deliveredAt sql.NullTime
	var minutes sql.NullInt64

	if err := row.Scan(
		&o.ID, &o.Number, &o.CustomerID, &o.HubID, &o.Status, &o.DeliveryAddress, &o.Lat, &o.Lng,
		&o.DeliveryFee, &o.PromoDiscount, &o.TotalAmount, &o.PaymentStatus, &o.PromiseMinutes,
		&partnerID, &o.CreatedAt, &acceptedAt, &deliveredAt, &minutes,
	); err != nil {
		return nil, err
	}
	if partnerID.Valid {
		o.PartnerID = &partnerID.String
	}
	if acceptedAt.Valid {
		t := acceptedAt.Time
		o.AcceptedAt = &t
	}
	if deliveredAt.Valid {
		t := deliveredAt.Time
		o.DeliveredAt = &t
	}
	if minutes.Valid {
		m := int(minutes.Int64)
		o.DeliveryMinutes = &m
	}
	return &o, nil
}

func (s *PostgresStorage) loadItems(ctx context.Context, o *ordertype.Order) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT product_id,quantity,unit_price FROM order_items WHERE order_id=$1 ORDER BY id`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it ordertype.OrderItem
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.UnitPrice); err != nil {
			return err
		}
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

func (s *PostgresStorage) ListOrdersByCustomer(ctx context.Context, customerID string) ([]ordertype.Order, error) {
	return s.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE customer_id=$1 ORDER BY created_at DESC`, customerID)
}

func (s *PostgresStorage) ListOrdersByStatus(ctx context.Context, statuses ...ordertype.OrderStatus) ([]ordertype.Order, error) {
	args := make([]any, 0, len(statuses))
	for _, st := range statuses {
		args = append(args, string(st))
	}
	placeholders := ""
	for i := range args {
		if i > 0 {
			placeholders += ","
		}
		placeholders += fmt.Sprintf("$%d", i+1)
	}
	q := `SELECT ` + orderColumns + ` FROM orders WHERE status IN (` + placeholders + `) ORDER BY created_at`
	return s.queryOrders(ctx, q, args...)
}

func (s *PostgresStorage) queryOrders(ctx context.Context, q string, args ...any) ([]ordertype.Order, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ordertype.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := s.loadItems(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Conditional writes below are the compare-and-swap primitive: every one of
// them matches the status the caller observed, so a concurrent winner makes
// the loser's update match zero rows.

func (s *PostgresStorage) UpdateOrderStatus(ctx context.Context, id string, from, to ordertype.OrderStatus) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status=$3 WHERE id=$1 AND status=$2`, id, from, to)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *PostgresStorage) AssignPartner(ctx context.Context, id, partnerID string, acceptedAt time.Time, from ordertype.OrderStatus) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status=$4, delivery_partner_id=$2, accepted_at=$3
         WHERE id=$1 AND status=$5 AND delivery_partner_id IS NULL`,
		id, partnerID, acceptedAt, ordertype.StatusDispatched, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *PostgresStorage) CancelOrder(ctx context.Context, id string, from ordertype.OrderStatus) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status=$3, delivery_partner_id=NULL WHERE id=$1 AND status=$2`,
		id, from, ordertype.StatusCancelled)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *PostgresStorage) MarkDelivered(ctx context.Context, id string, deliveredAt time.Time, minutes int) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status=$2, payment_status=$3, delivered_at=$4, delivery_minutes=$5
         WHERE id=$1 AND status=$6`,
		id, ordertype.StatusDelivered, ordertype.PaymentCompleted, deliveredAt, minutes,
		ordertype.StatusOutForDelivery)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
