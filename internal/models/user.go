package models

type User struct {
	ID    int64  `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}

// UserPatch carries the optional fields of a user update. Nil leaves the stored value as is.
type UserPatch struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
}

// SameUser reports whether a and b refer to the same persisted user.
func SameUser(a, b User) bool {
	return a.ID != 0 && a.ID == b.ID
}
