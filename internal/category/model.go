package category

// Category is an owner-scoped classification label for products. Deleting
// one never touches the products that reference it by name.
type Category struct {
	ID          string `json:"id"`
	OwnerID     string `json:"uid"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      bool   `json:"status"`
}

// ListParams pages through an owner's categories. Nil pointers use the
// defaults.
type ListParams struct {
	OwnerID    string
	Search     *string
	ActiveOnly bool
	Limit      *int32
	Page       *int32
}
