package models

// Tenant is one licensed company. Its Nome is also the name of its database.
type Tenant struct {
	ID   int64  `json:"id" db:"id"`
	Nome string `json:"nome" db:"nome"`
	CNPJ string `json:"cnpj" db:"cnpj"`
}
