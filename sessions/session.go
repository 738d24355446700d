package sessions

import (
	"github.com/jrsteele09/go-events-client/users"
)

// Status is the coarse session state the UI routes on.
type Status string

const (
	StatusLoading         Status = "loading"         // bootstrap has not finished
	StatusUnauthenticated Status = "unauthenticated" // no usable tokens
	StatusAuthenticated   Status = "authenticated"   // tokens present and the user is known
)

// State is an immutable snapshot of the session. User is set only when authenticated.
type State struct {
	Status Status
	User   *users.User
}

func Loading() State { return State{Status: StatusLoading} }

func Unauthenticated() State { return State{Status: StatusUnauthenticated} }

func Authenticated(u *users.User) State {
	return State{Status: StatusAuthenticated, User: u}
}

func (s State) IsAuthenticated() bool { return s.Status == StatusAuthenticated }

func (s State) IsLoading() bool { return s.Status == StatusLoading }

// Listener is notified after every session state change.
type Listener func(State)
