// Package schemas defines the data structures
package schemas

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MaxPostLength is the maximum number of characters a post body may contain.
const MaxPostLength = 140

// MaxAboutMeLength is the maximum number of characters of a user biography.
const MaxAboutMeLength = 140

// User represents the data model for a user in the system.
type User struct {
	ID           uuid.UUID `json:"id"`         // Unique identifier for the user.
	Username     string    `json:"username"`   // Unique username of the user.
	Email        string    `json:"email"`      // Unique, normalized email address of the user.
	PasswordHash string    `json:"-"`          // bcrypt hash of the password, never the plaintext.
	AboutMe      string    `json:"about_me"`   // Optional short biography.
	LastSeen     time.Time `json:"last_seen"`  // Timestamp of the last authenticated request.
	CreatedAt    time.Time `json:"created_at"` // Timestamp when the user registered.
}

// Post represents the data model for a post in the system.
type Post struct {
	ID        uuid.UUID `json:"id"`         // Unique identifier for the post.
	AuthorID  uuid.UUID `json:"author_id"`  // Identifier of the user who wrote the post.
	Author    *User     `json:"author"`     // Author of the post, filled by list queries.
	Body      string    `json:"body"`       // Body of the post, at most MaxPostLength characters.
	Language  string    `json:"language"`   // Detected ISO 639-1 language code, empty when unknown.
	CreatedAt time.Time `json:"created_at"` // Timestamp when the post was submitted.
}

// SetPassword replaces the stored hash with a salted bcrypt hash of plaintext.
func (u *User) SetPassword(plaintext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether plaintext matches the stored hash.
func (u *User) CheckPassword(plaintext string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plaintext)) == nil
}

// PasswordFingerprint identifies the current password hash without revealing it.
// Reset tokens carry it so a token stops working once the password has changed.
func (u *User) PasswordFingerprint() string {
	sum := sha256.Sum256([]byte(u.PasswordHash))
	return hex.EncodeToString(sum[:8])
}

// Avatar returns the Gravatar identicon URL for the user at the given pixel size.
func (u *User) Avatar(size int) string {
	digest := md5.Sum([]byte(NormalizeEmail(u.Email)))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?d=identicon&s=%d", hex.EncodeToString(digest[:]), size)
}

// NormalizeEmail trims and lowercases an address. Registration, uniqueness checks,
// lookups and avatar hashing all go through it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
