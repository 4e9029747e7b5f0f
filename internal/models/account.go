package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

type AccountStatus string

const (
	AccountActive   AccountStatus = "active"
	AccountInactive AccountStatus = "inactive"
)

func (s AccountStatus) Valid() bool {
	return s == AccountActive || s == AccountInactive
}

// Account matches the document in the accounts collection.
type Account struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Email           string             `bson:"email" json:"email"` // stored lowercase
	PasswordHash    string             `bson:"passwordHash" json:"-"`
	Role            Role               `bson:"role" json:"role"`
	Status          AccountStatus      `bson:"status" json:"status"`
	FacilitiesAdded int                `bson:"facilitiesAdded" json:"facilitiesAdded"`
	RegisteredAt    time.Time          `bson:"registeredAt" json:"registeredAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (a Account) IsAdmin() bool { return a.Role == RoleAdmin }

func (a Account) Summary() AccountSummary {
	return AccountSummary{ID: a.ID, Name: a.Name, Email: a.Email}
}

// AccountSummary is the subset of an account joined into facility and proposal reads.
type AccountSummary struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

// AccountUpdate carries the fields to overwrite; nil means keep.
type AccountUpdate struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Role         *Role
	Status       *AccountStatus
}

func (u AccountUpdate) Apply(a *Account) {
	if u.Name != nil {
		a.Name = *u.Name
	}
	if u.Email != nil {
		a.Email = *u.Email
	}
	if u.PasswordHash != nil {
		a.PasswordHash = *u.PasswordHash
	}
	if u.Role != nil {
		a.Role = *u.Role
	}
	if u.Status != nil {
		a.Status = *u.Status
	}
}

// SetDocument renders the update as a $set document.
func (u AccountUpdate) SetDocument() bson.M {
	set := bson.M{}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Email != nil {
		set["email"] = *u.Email
	}
	if u.PasswordHash != nil {
		set["passwordHash"] = *u.PasswordHash
	}
	if u.Role != nil {
		set["role"] = *u.Role
	}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	return set
}
