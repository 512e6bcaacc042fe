package models

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Login string `json:"login"`
	Senha string `json:"senha"`
}

// PasswordColumn holds the bcrypt hash in the usuario table and never leaves the server.
const PasswordColumn = "senha"
