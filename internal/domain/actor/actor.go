package actor

import "errors"

type Role string

const (
	RoleWorker Role = "worker"
	RoleAdmin  Role = "admin"
)

var ErrUnauthenticated = errors.New("login required")

// Actor is the caller identity every use case receives explicitly.
type Actor struct {
	Role     Role   `json:"role"`
	Name     string `json:"name"`
	WorkerID string `json:"worker_id,omitempty"`
	Email    string `json:"email,omitempty"`
}

func Worker(name, workerID string) Actor {
	return Actor{Role: RoleWorker, Name: name, WorkerID: workerID}
}

func Admin(name, email string) Actor {
	return Actor{Role: RoleAdmin, Name: name, Email: email}
}

func (a Actor) IsAdmin() bool  { return a.Role == RoleAdmin }
func (a Actor) IsWorker() bool { return a.Role == RoleWorker }

// Valid reports whether a carries the identity fields its role needs.
func (a Actor) Valid() bool {
	switch a.Role {
	case RoleWorker:
		return a.Name != "" && a.WorkerID != ""
	case RoleAdmin:
		return a.Name != ""
	}
	return false
}

// Key identifies the actor in idempotency and notification keys.
func (a Actor) Key() string {
	if a.IsAdmin() {
		if a.Email != "" {
			return "admin:" + a.Email
		}
		return "admin:" + a.Name
	}
	return "worker:" + a.WorkerID + ":" + a.Name
}
