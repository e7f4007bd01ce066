package database

import (
	"database/sql/driver"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (e *Role) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = Role(s)
	case string:
		*e = Role(s)
	default:
		return fmt.Errorf("unsupported scan type for Role: %T", src)
	}
	return nil
}

type NullRole struct {
	Role  Role
	Valid bool // Valid is true if Role is not NULL
}

// Scan implements the Scanner interface.
func (ns *NullRole) Scan(value interface{}) error {
	if value == nil {
		ns.Role, ns.Valid = "", false
		return nil
	}
	ns.Valid = true
	return ns.Role.Scan(value)
}

// Value implements the driver Valuer interface.
func (ns NullRole) Value() (driver.Value, error) {
	if !ns.Valid {
		return nil, nil
	}
	return string(ns.Role), nil
}

type Favorite struct {
	ID        int64
	UserID    int64
	RecipeID  int64
	CreatedAt pgtype.Timestamptz
}

type Ingredient struct {
	ID              int64
	Name            string
	MeasurementUnit string
}

type Link struct {
	ID           int64
	RecipeID     int64
	ShortCode    string
	OriginalLink string
}

type Recipe struct {
	ID          int64
	AuthorID    int64
	Name        string
	Text        string
	CookingTime int32
	ImageKey    string
	CreatedAt   pgtype.Timestamptz
}

type RecipeIngredient struct {
	ID           int64
	RecipeID     int64
	IngredientID int64
	Amount       int32
	Position     int32
}

type RecipeTag struct {
	RecipeID int64
	TagID    int64
}

type ShoppingCart struct {
	ID        int64
	UserID    int64
	RecipeID  int64
	CreatedAt pgtype.Timestamptz
}

type Subscription struct {
	ID          int64
	UserID      int64
	FollowingID int64
	CreatedAt   pgtype.Timestamptz
}

type Tag struct {
	ID   int64
	Name string
	Slug string
}

type User struct {
	ID           int64
	Email        string
	Username     string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         Role
	AvatarKey    pgtype.Text
	CreatedAt    pgtype.Timestamptz
}
