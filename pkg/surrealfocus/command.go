package surrealfocus

// Command is one CLI operation with its own options. Main dispatches on the
// concrete type; shared settings live in [Config].
//
// Current command implementations:
//   - [RunCommand]: HTTP server with the background checker
//   - [MigrateCommand]: schema setup for both remote tables
//   - [StatusCommand]: prints the debug panel for one user
//   - [SyncCommand]: force sync for one user
//   - [SaveCommand]: saves an environment for one user
type Command interface {
	// Name returns the CLI sub-command name.
	Name() string
}

// RunCommand starts the HTTP server.
//
// The server owns one browsing context: sessions are started and ended over
// the API, and while a session is active the checker runs in the background.
//
// Example usage:
//
//	surrealfocus run
//	surrealfocus -remote postgres -port 8090 run
type RunCommand struct{}

func (c *RunCommand) Name() string { return "run" }

// MigrateCommand prepares the profile and onboarding tables. It is safe to
// run repeatedly.
//
// Example usage:
//
//	surrealfocus migrate
type MigrateCommand struct{}

func (c *MigrateCommand) Name() string { return "migrate" }

// StatusCommand prints what every store holds for a user.
//
// Example usage:
//
//	surrealfocus -user 6f1c... status
//	surrealfocus -user 6f1c... -route /dashboard status
type StatusCommand struct {
	UserID string
	// Route is the view used to decide whether the marker is read.
	Route string
}

func (c *StatusCommand) Name() string { return "status" }

// SyncCommand reconciles every store for a user, taking the value from the
// highest priority store that has one.
//
// Example usage:
//
//	surrealfocus -user 6f1c... sync
type SyncCommand struct {
	UserID string
	Route  string
}

func (c *SyncCommand) Name() string { return "sync" }

// SaveCommand commits an environment for a user.
//
// Example usage:
//
//	surrealfocus -user 6f1c... save library
type SaveCommand struct {
	UserID      string
	Route       string
	Environment string
}

func (c *SaveCommand) Name() string { return "save" }
