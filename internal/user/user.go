package user

// Role is the account kind carried in the JWT.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleEmployee Role = "EMPLOYEE"
	RoleAdmin    Role = "ADMIN"
)

// Cargo is the sub-role of an EMPLOYEE account.
type Cargo string

const (
	CargoNone         Cargo = ""
	CargoVeterinarian Cargo = "VETERINARIAN"
	CargoCashier      Cargo = "CASHIER"
)

type User struct {
	ID        int    `json:"userId"`
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Gender    string `json:"gender"`
	Role      Role   `json:"role"`
	Cargo     Cargo  `json:"cargo,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// ValidRoleCargo reports whether cargo may be combined with role. Only
// employees carry a cargo, and they must carry one.
func ValidRoleCargo(role Role, cargo Cargo) bool {
	switch role {
	case RoleCustomer, RoleAdmin:
		return cargo == CargoNone
	case RoleEmployee:
		return cargo == CargoVeterinarian || cargo == CargoCashier
	default:
		return false
	}
}
