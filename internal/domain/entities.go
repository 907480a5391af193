package domain

import (
	"context"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Appointment is a scheduled meeting between a customer and a contact.
// Start and End are absolute instants; callers render them in the local zone.
type Appointment struct {
	bun.BaseModel `bun:"table:appointments" gorm:"-"`

	ID            int64     `bun:"id,pk,autoincrement" gorm:"primaryKey"`
	Title         string    `bun:"title,notnull" gorm:"not null"`
	Description   string    `bun:"description,notnull" gorm:"not null"`
	Location      string    `bun:"location,notnull" gorm:"not null"`
	Type          string    `bun:"type,notnull" gorm:"not null"`
	Start         time.Time `bun:"start_time,notnull" gorm:"column:start_time;not null;index"`
	End           time.Time `bun:"end_time,notnull" gorm:"column:end_time;not null"`
	CreateDate    time.Time `bun:"create_date,notnull" gorm:"not null"`
	CreatedBy     string    `bun:"created_by,notnull" gorm:"not null"`
	LastUpdate    time.Time `bun:"last_update,notnull" gorm:"not null"`
	LastUpdatedBy string    `bun:"last_updated_by,notnull" gorm:"not null"`
	CustomerID    int64     `bun:"customer_id,notnull" gorm:"not null;index"`
	UserID        int64     `bun:"user_id,notnull" gorm:"not null;index"`
	ContactID     int64     `bun:"contact_id,notnull" gorm:"not null"`
}

func (Appointment) TableName() string { return "appointments" }

func (a *Appointment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.CreateDate.IsZero() {
			a.CreateDate = now
		}
		if a.LastUpdate.IsZero() {
			a.LastUpdate = now
		}
	case *bun.UpdateQuery:
		if a.LastUpdate.IsZero() {
			a.LastUpdate = now
		}
	}
	return nil
}

// Duration reports End - Start.
func (a Appointment) Duration() time.Duration {
	return a.End.Sub(a.Start)
}

type Customer struct {
	bun.BaseModel `bun:"table:customers" gorm:"-"`

	ID            int64     `bun:"id,pk,autoincrement" gorm:"primaryKey"`
	Name          string    `bun:"name,notnull" gorm:"not null"`
	Address       string    `bun:"address,notnull" gorm:"not null"`
	PostalCode    string    `bun:"postal_code,notnull" gorm:"not null"`
	Phone         string    `bun:"phone,notnull" gorm:"not null"`
	DivisionID    int64     `bun:"division_id,notnull" gorm:"not null;index"`
	CreateDate    time.Time `bun:"create_date,notnull" gorm:"not null"`
	CreatedBy     string    `bun:"created_by,notnull" gorm:"not null"`
	LastUpdate    time.Time `bun:"last_update,notnull" gorm:"not null"`
	LastUpdatedBy string    `bun:"last_updated_by,notnull" gorm:"not null"`
}

func (Customer) TableName() string { return "customers" }

type Contact struct {
	bun.BaseModel `bun:"table:contacts" gorm:"-"`

	ID    int64  `bun:"id,pk,autoincrement" gorm:"primaryKey"`
	Name  string `bun:"name,notnull,unique" gorm:"not null;uniqueIndex"`
	Email string `bun:"email,notnull" gorm:"not null"`
}

func (Contact) TableName() string { return "contacts" }

type Country struct {
	bun.BaseModel `bun:"table:countries" gorm:"-"`

	ID   int64  `bun:"id,pk,autoincrement" gorm:"primaryKey"`
	Name string `bun:"name,notnull,unique" gorm:"not null;uniqueIndex"`
}

func (Country) TableName() string { return "countries" }

// Division is a first-level administrative division (state, province) of a Country.
type Division struct {
	bun.BaseModel `bun:"table:first_level_divisions" gorm:"-"`

	ID        int64  `bun:"id,pk,autoincrement" gorm:"primaryKey"`
	Name      string `bun:"name,notnull" gorm:"not null"`
	CountryID int64  `bun:"country_id,notnull" gorm:"not null;index"`
}

func (Division) TableName() string { return "first_level_divisions" }

type User struct {
	bun.BaseModel `bun:"table:users" gorm:"-"`

	ID   int64  `bun:"id,pk,autoincrement" gorm:"primaryKey"`
	Name string `bun:"name,notnull,unique" gorm:"not null;uniqueIndex"`
}

func (User) TableName() string { return "users" }

// Identity is the signed-in user on whose behalf an operation runs.
type Identity struct {
	UserID int64
	Name   string
}

func (i Identity) IsZero() bool {
	return i.UserID <= 0 || strings.TrimSpace(i.Name) == ""
}
