package users

import "time"

const (
	RoleStudent    = "STUDENT"
	RoleInstructor = "INSTRUCTOR"
	RoleAdmin      = "ADMIN"
)

const (
	InstructorStatusNone     = "NONE"
	InstructorStatusPending  = "PENDING"
	InstructorStatusApproved = "APPROVED"
	InstructorStatusRejected = "REJECTED"
)

type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	FullName         string    `json:"fullName"`
	Role             string    `json:"role"`
	InstructorStatus string    `json:"instructorStatus"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
