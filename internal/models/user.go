package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account. Optional profile fields are nil until set and render as JSON null.
type User struct {
	ID                 primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Email              string             `json:"email" bson:"email"`
	Password           string             `json:"-" bson:"password"` // bcrypt hash
	FirstName          *string            `json:"firstName" bson:"firstName"`
	LastName           *string            `json:"lastName" bson:"lastName"`
	Bio                *string            `json:"bio" bson:"bio"`
	Job                *string            `json:"job" bson:"job"`
	Location           *string            `json:"location" bson:"location"`
	Gender             *string            `json:"gender" bson:"gender"`
	RelationshipStatus *string            `json:"relationshipStatus" bson:"relationshipStatus"`
	Birthdate          *string            `json:"birthdate" bson:"birthdate"`
	ProfileImage       *string            `json:"profileImage" bson:"profileImage"`
	BackgroundImage    *string            `json:"backgroundImage" bson:"backgroundImage"`
}

// UserSummary is the author projection embedded in posts and comments.
type UserSummary struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id"`
	Email        string             `json:"email,omitempty" bson:"email"`
	FirstName    *string            `json:"firstName,omitempty" bson:"firstName"`
	LastName     *string            `json:"lastName,omitempty" bson:"lastName"`
	ProfileImage *string            `json:"profileImage,omitempty" bson:"profileImage"`
}

// Profile is what GET /users/profile exposes about the requester.
type Profile struct {
	ID                 primitive.ObjectID `json:"_id"`
	Email              string             `json:"email"`
	FirstName          *string            `json:"firstName"`
	LastName           *string            `json:"lastName"`
	Bio                *string            `json:"bio"`
	Job                *string            `json:"job"`
	Location           *string            `json:"location"`
	Gender             *string            `json:"gender"`
	RelationshipStatus *string            `json:"relationshipStatus"`
	Birthdate          *string            `json:"birthdate"`
	ProfileImage       *string            `json:"profileImage"`
	BackgroundImage    *string            `json:"backgroundImage"`
}

func (u *User) ToSummary() UserSummary {
	return UserSummary{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		ProfileImage: u.ProfileImage,
	}
}

func (u *User) ToProfile() Profile {
	return Profile{
		ID:                 u.ID,
		Email:              u.Email,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Bio:                u.Bio,
		Job:                u.Job,
		Location:           u.Location,
		Gender:             u.Gender,
		RelationshipStatus: u.RelationshipStatus,
		Birthdate:          u.Birthdate,
		ProfileImage:       u.ProfileImage,
		BackgroundImage:    u.BackgroundImage,
	}
}

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// CreateUserRequest is the signup body. It binds from JSON or multipart form fields.
type CreateUserRequest struct {
	Email              string `json:"email" form:"email" validate:"required,email"`
	Password           string `json:"password" form:"password" validate:"required,min=8"`
	FirstName          string `json:"firstName" form:"firstName"`
	LastName           string `json:"lastName" form:"lastName"`
	Bio                string `json:"bio" form:"bio"`
	Job                string `json:"job" form:"job"`
	Location           string `json:"location" form:"location"`
	Gender             string `json:"gender" form:"gender"`
	RelationshipStatus string `json:"relationshipStatus" form:"relationshipStatus"`
	Birthdate          string `json:"birthdate" form:"birthdate"`
}

// LoginRequest is the body of POST /tokens.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// FirebaseLoginRequest is the body of POST /tokens/firebase.
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// OptionalString maps an empty form value to nil so unset fields stay null.
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
