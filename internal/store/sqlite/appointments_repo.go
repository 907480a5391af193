package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"clientschedule/internal/domain"
	"clientschedule/internal/store"
)

var _ store.Repository = (*AppointmentRepo)(nil)

// AppointmentRepo is the embedded single-user store. SQLite has no advisory
// locks; the single pooled connection serializes transactions instead.
type AppointmentRepo struct {
	db *gorm.DB
}

func NewAppointmentRepo(db *gorm.DB) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

type scheduleTx struct {
	db *gorm.DB
}

func (r *AppointmentRepo) session(ctx context.Context) scheduleTx {
	return scheduleTx{db: r.db.WithContext(ctx)}
}

func (r *AppointmentRepo) AppointmentsByCustomer(ctx context.Context, customerID int64) ([]domain.Appointment, error) {
	return r.session(ctx).AppointmentsByCustomer(ctx, customerID)
}

func (r *AppointmentRepo) GetAppointment(ctx context.Context, id int64) (domain.Appointment, error) {
	return r.session(ctx).GetAppointment(ctx, id)
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
	err := r.db.WithContext(ctx).
		Model(&domain.Appointment{}).
		Select("COALESCE(MAX(id), 0) + 1").
		Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (r *AppointmentRepo) ResolveContactID(ctx context.Context, name string) (int64, error) {
	var c domain.Contact
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		Take(&c).Error
	if err != nil {
		return 0, mapError(err)
	}
	return c.ID, nil
}

func (r *AppointmentRepo) ResolveDivisionID(ctx context.Context, country, division string) (int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Table("first_level_divisions AS d").
		Joins("JOIN countries AS c ON c.id = d.country_id").
		Where("c.name = ? AND d.name = ?", country, division).
		Limit(1).
		Pluck("d.id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, store.ErrNotFound
	}
	return ids[0], nil
}

func (r *AppointmentRepo) DeleteAppointment(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.Appointment{}, id)
	if res.Error != nil {
		return mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *AppointmentRepo) DeleteCustomer(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", id).Delete(&domain.Appointment{}).Error; err != nil {
			return mapError(err)
		}
		res := tx.Delete(&domain.Customer{}, id)
		if res.Error != nil {
			return mapError(res.Error)
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

func (r *AppointmentRepo) UpcomingForUser(ctx context.Context, userID int64, from, to time.Time) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("start_time >= ? AND start_time <= ?", from.UTC(), to.UTC()).
		Order("start_time ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) InCustomerTransaction(ctx context.Context, customerID int64, fn func(ctx context.Context, tx store.ScheduleTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, scheduleTx{db: tx})
	})
}

func (q scheduleTx) AppointmentsByCustomer(ctx context.Context, customerID int64) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := q.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("start_time ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (q scheduleTx) GetAppointment(ctx context.Context, id int64) (domain.Appointment, error) {
	var a domain.Appointment
	if err := q.db.WithContext(ctx).Take(&a, id).Error; err != nil {
		return domain.Appointment{}, mapError(err)
	}
	return a, nil
}

func (q scheduleTx) SaveAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	db := q.db.WithContext(ctx)
	if err := checkReferences(db, appt); err != nil {
		return domain.Appointment{}, err
	}

	m := appt
	m.Start = m.Start.UTC()
	m.End = m.End.UTC()
	m.CreateDate = m.CreateDate.UTC()
	m.LastUpdate = m.LastUpdate.UTC()
	if m.LastUpdate.IsZero() {
		m.LastUpdate = db.NowFunc()
	}

	if m.ID == 0 {
		if m.CreateDate.IsZero() {
			m.CreateDate = m.LastUpdate
		}
		if err := db.Create(&m).Error; err != nil {
			return domain.Appointment{}, mapError(err)
		}
		return m, nil
	}

	res := db.Model(&domain.Appointment{}).
		Where("id = ?", m.ID).
		Updates(map[string]any{
			"title":           m.Title,
			"description":     m.Description,
			"location":        m.Location,
			"type":            m.Type,
			"start_time":      m.Start,
			"end_time":        m.End,
			"last_update":     m.LastUpdate,
			"last_updated_by": m.LastUpdatedBy,
			"customer_id":     m.CustomerID,
			"user_id":         m.UserID,
			"contact_id":      m.ContactID,
		})
	if res.Error != nil {
		return domain.Appointment{}, mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.Appointment{}, store.ErrNotFound
	}
	return m, nil
}

// checkReferences stands in for foreign keys, which the migrated schema lacks.
func checkReferences(db *gorm.DB, a domain.Appointment) error {
	refs := []struct {
		model any
		id    int64
		name  string
	}{
		{&domain.Customer{}, a.CustomerID, "customer"},
		{&domain.User{}, a.UserID, "user"},
		{&domain.Contact{}, a.ContactID, "contact"},
	}
	for _, ref := range refs {
		var n int64
		if err := db.Model(ref.model).Where("id = ?", ref.id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: %s %d", store.ErrNotFound, ref.name, ref.id)
		}
	}
	return nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", store.ErrConflict, err)
	}
	return err
}
