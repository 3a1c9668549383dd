package models

import "time"

type ItemRequest struct {
	ID          int64     `db:"id" json:"id"`
	Description string    `db:"description" json:"description"`
	RequestorID int64     `db:"requestor_id" json:"requestor_id"`
	Created     time.Time `db:"created" json:"created"`
}

func SameRequest(a, b ItemRequest) bool {
	return a.ID != 0 && a.ID == b.ID
}
