package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"clientschedule/internal/domain"
	"clientschedule/internal/store"
)

var _ store.Repository = (*AppointmentRepo)(nil)

type AppointmentRepo struct {
	db *bun.DB
}

func NewAppointmentRepo(db *bun.DB) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

// scheduleTx runs queries against either the pool or an open transaction.
type scheduleTx struct {
	db bun.IDB
}

func (r *AppointmentRepo) AppointmentsByCustomer(ctx context.Context, customerID int64) ([]domain.Appointment, error) {
	return scheduleTx{db: r.db}.AppointmentsByCustomer(ctx, customerID)
}

func (r *AppointmentRepo) GetAppointment(ctx context.Context, id int64) (domain.Appointment, error) {
	return scheduleTx{db: r.db}.GetAppointment(ctx, id)
}

func (r *AppointmentRepo) SaveAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	var out domain.Appointment
	err := r.InCustomerTransaction(ctx, appt.CustomerID, func(ctx context.Context, tx store.ScheduleTx) error {
		a, err := tx.SaveAppointment(ctx, appt)
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

func (r *AppointmentRepo) NextAppointmentID(ctx context.Context) (int64, error) {
	var next int64
	err := r.db.NewSelect().
		Model((*domain.Appointment)(nil)).
		ColumnExpr("COALESCE(MAX(id), 0) + 1").
		Scan(ctx, &next)
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (r *AppointmentRepo) ResolveContactID(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.NewSelect().
		Model((*domain.Contact)(nil)).
		Column("id").
		Where("name = ?", name).
		Limit(1).
		Scan(ctx, &id)
	if err != nil {
		return 0, mapError(err)
	}
	return id, nil
}

func (r *AppointmentRepo) ResolveDivisionID(ctx context.Context, country, division string) (int64, error) {
	var id int64
	err := r.db.NewSelect().
		TableExpr("first_level_divisions AS d").
		Join("JOIN countries AS c ON c.id = d.country_id").
		ColumnExpr("d.id").
		Where("c.name = ?", country).
		Where("d.name = ?", division).
		Limit(1).
		Scan(ctx, &id)
	if err != nil {
		return 0, mapError(err)
	}
	return id, nil
}

func (r *AppointmentRepo) DeleteAppointment(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().
		Model((*domain.Appointment)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(res)
}

func (r *AppointmentRepo) DeleteCustomer(ctx context.Context, id int64) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockCustomerSchedule(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.NewDelete().
			Model((*domain.Appointment)(nil)).
			Where("customer_id = ?", id).
			Exec(ctx); err != nil {
			return mapError(err)
		}
		res, err := tx.NewDelete().
			Model((*domain.Customer)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return mapError(err)
		}
		return expectAffected(res)
	})
}

func (r *AppointmentRepo) UpcomingForUser(ctx context.Context, userID int64, from, to time.Time) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := r.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		Where("start_time >= ?", from).
		Where("start_time <= ?", to).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) InCustomerTransaction(ctx context.Context, customerID int64, fn func(ctx context.Context, tx store.ScheduleTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockCustomerSchedule(ctx, tx, customerID); err != nil {
			return err
		}
		return fn(ctx, scheduleTx{db: tx})
	})
}

func lockCustomerSchedule(ctx context.Context, tx bun.Tx, customerID int64) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", lockKey(customerID)).Exec(ctx)
	return err
}

func lockKey(customerID int64) string {
	return fmt.Sprintf("customer:%d", customerID)
}

func (q scheduleTx) AppointmentsByCustomer(ctx context.Context, customerID int64) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := q.db.NewSelect().
		Model(&rows).
		Where("customer_id = ?", customerID).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (q scheduleTx) GetAppointment(ctx context.Context, id int64) (domain.Appointment, error) {
	var a domain.Appointment
	err := q.db.NewSelect().
		Model(&a).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return domain.Appointment{}, mapError(err)
	}
	return a, nil
}

func (q scheduleTx) SaveAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	m := appt
	if m.ID == 0 {
		if _, err := q.db.NewInsert().Model(&m).Returning("id").Exec(ctx); err != nil {
			return domain.Appointment{}, mapError(err)
		}
		return m, nil
	}

	res, err := q.db.NewUpdate().
		Model(&m).
		ExcludeColumn("id", "create_date", "created_by").
		WherePK().
		Exec(ctx)
	if err != nil {
		return domain.Appointment{}, mapError(err)
	}
	if err := expectAffected(res); err != nil {
		return domain.Appointment{}, err
	}
	return m, nil
}

func expectAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// mapError translates driver errors into store sentinels. Unique and exclusion
// violations become ErrConflict; a dangling reference becomes ErrNotFound.
func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "23P01":
			return fmt.Errorf("%w: %s", store.ErrConflict, pgErr.ConstraintName)
		case "23503":
			return fmt.Errorf("%w: %s", store.ErrNotFound, pgErr.ConstraintName)
		}
	}
	return err
}
