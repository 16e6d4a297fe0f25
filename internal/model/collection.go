package model

// Collection groups highlights across articles. Deleting a collection
// detaches its highlights; it never deletes them.
type Collection struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UserID    string `json:"userId"`
	CreatedAt string `json:"createdAt"`
}

// NewCollection creates a Collection with generated ID and creation timestamp.
func NewCollection(name, userID string) Collection {
	return Collection{
		ID:        NewID(),
		Name:      name,
		UserID:    userID,
		CreatedAt: Now(),
	}
}
