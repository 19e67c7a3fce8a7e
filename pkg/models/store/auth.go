package store

// AuthUser is one row from the auth admin user listing.
type AuthUser struct {
	ID      string       `json:"id"`
	Email   string       `json:"email"`
	Phone   string       `json:"phone"`
	Factors []AuthFactor `json:"factors"`
}

// AuthFactor is a single enrolled second factor. Status is "verified" once
// the user has completed setup.
type AuthFactor struct {
	ID         string `json:"id"`
	FactorType string `json:"factor_type"`
	Status     string `json:"status"`
}

const FactorStatusVerified = "verified"
