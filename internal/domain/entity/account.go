package entity

// Account is the login record shared by patients, doctors and administrators.
// Username is the primary key.
type Account struct {
	Username     string `json:"username" validate:"required,linesafe"`
	PasswordHash string `json:"-" validate:"required,linesafe"`
	Role         Role   `json:"role" validate:"required,oneof=patient doctor admin"`
	IsActive     bool   `json:"is_active"`
	CreatedDate  string `json:"created_date" validate:"omitempty,datefmt"`
}
