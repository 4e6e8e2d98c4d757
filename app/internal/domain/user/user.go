package user

// MinPasswordLength is the shortest password an account may be given.
const MinPasswordLength = 6

type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	RoleCode     RoleCode
	IsActive     bool
}

type ListFilter struct {
	RoleCode *RoleCode
	Search   string
}
