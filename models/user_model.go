package models

type User struct {
	ID           string   `json:"id" bson:"_id"`
	Name         string   `json:"name" bson:"name"`
	Email        string   `json:"email" bson:"email"`
	PasswordHash string   `json:"-" bson:"password_hash"`
	Image        string   `json:"image" bson:"image"`
	Places       []string `json:"places" bson:"places"`
}

// HasPlace reports whether placeID is in the user's places index.
func (u *User) HasPlace(placeID string) bool {
	for _, id := range u.Places {
		if id == placeID {
			return true
		}
	}
	return false
}

// RemovePlace drops placeID from the places index, keeping order.
func (u *User) RemovePlace(placeID string) {
	kept := u.Places[:0]
	for _, id := range u.Places {
		if id != placeID {
			kept = append(kept, id)
		}
	}
	u.Places = kept
}
