package model

// Admin is a back-office identity. Only enough of it exists here for
// "an authenticated identity" to be established; everything else about
// account management lives outside this service.
type Admin struct {
	Base
	Email        string `db:"email" json:"email"`
	Name         string `db:"name" json:"name"`
	PasswordHash string `db:"password_hash" json:"-"`
	Role         string `db:"role" json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Admin *Admin `json:"admin"`
}
