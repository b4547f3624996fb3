package model

// Item is a small resource owned by one user
type Item struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
	OwnerID     int     `json:"owner_id"`
}

// ItemRequest is the body of POST /items and PUT /items/{id}. Id and owner
// are assigned by the server.
type ItemRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Price       float64 `json:"price" validate:"gte=0"`
}
