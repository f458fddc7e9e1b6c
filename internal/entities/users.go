package entities

import (
	"strings"
	"time"
)

// Hobbies is the fixed set of choices offered by the signup form.
var Hobbies = []string{"Reading", "Sports", "Music", "Traveling", "Cooking", "Gaming"}

var hobbySet = func() map[string]bool {
	set := make(map[string]bool, len(Hobbies))
	for _, h := range Hobbies {
		set[h] = true
	}
	return set
}()

// User is a registered account. The username is stored lowercase and the
// unique index on it is what enforces uniqueness under concurrent signups.
// PasswordHash never appears in JSON output.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:100" json:"username"`
	Name         string    `gorm:"size:100" json:"name"`
	PasswordHash string    `gorm:"size:100" json:"-"`
	Hobbies      []string  `gorm:"serializer:json" json:"hobbies"`
	ProfileImage string    `gorm:"size:255" json:"profile_image,omitempty"` // bare filename under the upload dir
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FilterHobbies keeps only known, non-empty hobby values, preserving the
// submitted order and dropping duplicates.
func FilterHobbies(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || !hobbySet[v] || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
