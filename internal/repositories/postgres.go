package repositories

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

// Postgres rows keep ObjectID hex strings as keys so both stores accept
// the same identifiers.

type userRecord struct {
	ID                 string  `gorm:"primaryKey;size:24"`
	Email              string  `gorm:"uniqueIndex;not null"`
	Password           string  `gorm:"not null"`
	FirstName          *string
	LastName           *string
	Bio                *string
	Job                *string
	Location           *string
	Gender             *string
	RelationshipStatus *string
	Birthdate          *string
	ProfileImage       *string
	BackgroundImage    *string
	CreatedAt          time.Time
}

func (userRecord) TableName() string { return "users" }

type postRecord struct {
	ID        string `gorm:"primaryKey;size:24"`
	Message   string `gorm:"not null"`
	AuthorID  string `gorm:"size:24;index;not null"`
	Image     string
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (postRecord) TableName() string { return "posts" }

// likeRecord's composite key makes the likes of a post a set.
type likeRecord struct {
	PostID    string `gorm:"primaryKey;size:24"`
	UserID    string `gorm:"primaryKey;size:24;index"`
	CreatedAt time.Time
}

func (likeRecord) TableName() string { return "post_likes" }

type commentRecord struct {
	ID        string `gorm:"primaryKey;size:24"`
	Content   string `gorm:"not null"`
	AuthorID  string `gorm:"size:24;index;not null"`
	PostID    string `gorm:"size:24;index;not null"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (commentRecord) TableName() string { return "comments" }

type fileRecord struct {
	ID          string `gorm:"primaryKey;size:24"`
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
	CreatedAt   time.Time
}

func (fileRecord) TableName() string { return "stored_files" }

// AutoMigrate creates or updates every table used by the Postgres repositories.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userRecord{},
		&postRecord{},
		&likeRecord{},
		&commentRecord{},
		&fileRecord{},
	)
}

// oid converts a stored key back to an ObjectID. Keys are written by this
// package, so a malformed one decodes to the zero ID.
func oid(hex string) primitive.ObjectID {
	id, _ := primitive.ObjectIDFromHex(hex)
	return id
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching term anywhere, case-folded.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}
