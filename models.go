package booking

import (
	"time"

	"github.com/uptrace/bun"
)

// User is an account that can authenticate and join session rosters
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	FirstName     string     `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName      string     `bun:"last_name,notnull" json:"last_name,omitempty"`
	Admin         bool       `bun:"admin,notnull,default:false" json:"admin"`
	Phone         string     `bun:"phone_number" json:"phone_number,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Teacher leads sessions; teachers are reference data, never principals
type Teacher struct {
	bun.BaseModel `bun:"table:teachers,alias:tch"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	FirstName     string     `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName      string     `bun:"last_name,notnull" json:"last_name,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Session is a bookable class with a participant roster
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:ses"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	Date          time.Time  `bun:"date,notnull" json:"date,omitempty"`
	TeacherID     int64      `bun:"teacher_id,notnull" json:"teacher_id,omitempty"`
	Teacher       *Teacher   `bun:"rel:belongs-to,join:teacher_id=id" json:"teacher,omitempty"`
	Users         []*User    `bun:"m2m:session_users,join:Session=User" json:"users,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// SessionUser is one roster membership. The composite primary key keeps the
// participant set duplicate-free at the store, not just in service code.
type SessionUser struct {
	bun.BaseModel `bun:"table:session_users,alias:su"`
	SessionID     int64    `bun:"session_id,pk" json:"session_id"`
	Session       *Session `bun:"rel:belongs-to,join:session_id=id" json:"-"`
	UserID        int64    `bun:"user_id,pk" json:"user_id"`
	User          *User    `bun:"rel:belongs-to,join:user_id=id" json:"-"`
}

// HasParticipant reports membership of the loaded roster. It inspects the
// in-memory relation only; use the sessions repository for a store-side check.
func (s *Session) HasParticipant(userID int64) bool {
	for _, u := range s.Users {
		if u != nil && u.ID == userID {
			return true
		}
	}
	return false
}

// ParticipantIDs returns the roster as ids, preserving load order.
func (s *Session) ParticipantIDs() []int64 {
	ids := make([]int64, 0, len(s.Users))
	for _, u := range s.Users {
		if u != nil {
			ids = append(ids, u.ID)
		}
	}
	return ids
}

// FullName is the display name used by clients
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
