package api

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
	FullName string `json:"full_name" validate:"required,max=255"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangeRoleRequest is the body of PUT /admin/users/:id/role.
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,role"`
}

// userURI binds the :id path segment.
type userURI struct {
	ID string `uri:"id" json:"id" validate:"required,uuid"`
}

// CacheClearResponse reports how many keys an entity flush removed.
type CacheClearResponse struct {
	Entity  string `json:"entity"`
	Deleted int64  `json:"deleted"`
}

// StatusResponse acknowledges an admin mutation.
type StatusResponse struct {
	UserID string `json:"user_id"`
	Status string `json:"status"`
}
