package models

type Item struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Available   bool   `db:"available" json:"available"`
	OwnerID     int64  `db:"owner_id" json:"owner_id"`
	RequestID   *int64 `db:"request_id" json:"request_id,omitempty"`
}

// ItemPatch carries the optional fields of an item update. Nil leaves the stored value as is.
type ItemPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

func (p ItemPatch) Apply(it *Item) {
	if p.Name != nil {
		it.Name = *p.Name
	}
	if p.Description != nil {
		it.Description = *p.Description
	}
	if p.Available != nil {
		it.Available = *p.Available
	}
}

func (p ItemPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Available == nil
}

func (it Item) OwnedBy(userID int64) bool {
	return it.OwnerID == userID
}

func SameItem(a, b Item) bool {
	return a.ID != 0 && a.ID == b.ID
}
