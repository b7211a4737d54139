package types

// Actor identifies the employee performing a billing operation. Engine
// operations take the actor explicitly; nothing is derived from ambient
// request state.
type Actor struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
}
