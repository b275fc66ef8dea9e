package models

// MenuItem is one row of the menu_items source table.
type MenuItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

// RestaurantDetail is one row of the restaurant_details source table
// (opening hours, location, policies and the like).
type RestaurantDetail struct {
	ID          int64  `json:"id"`
	Details     string `json:"details"`
	Description string `json:"description"`
}
