package fault

import (
	"github.com/pkg/errors"
)

type Severity string

const (
	Warn Severity = "warning"
	Err  Severity = "error"
)

// Diagnostic is the structured form of a fatal error, logged next to the
// console banner.
type Diagnostic struct {
	Severity     Severity `json:"severity"`
	Code         string   `json:"code"`
	Summary      string   `json:"summary"`
	Location     string   `json:"location"`
	LikelyCauses []string `json:"likely_causes,omitempty"`
}

// ErrStartup matches errors marked by Startup.
var ErrStartup = errors.New("startup failed")

type startupError struct{ err error }

func (e *startupError) Error() string        { return e.err.Error() }
func (e *startupError) Unwrap() error        { return e.err }
func (e *startupError) Is(target error) bool { return target == ErrStartup }

// Startup marks err as a failure before the scan loop is running.
func Startup(err error) error {
	if err == nil {
		return nil
	}
	return &startupError{err: err}
}

func Diagnose(err error) Diagnostic {
	d := Diagnostic{
		Severity: Err,
		Code:     "fault",
		Summary:  "firmware halted",
		Location: Location(err),
	}
	var p *Panic
	switch {
	case err == nil:
		d.Severity = Warn
		d.Code = "halt"
	case errors.As(err, &p):
		d.Code = "panic"
		d.Summary = "firmware panic"
		d.LikelyCauses = []string{"programming error"}
	case errors.Is(err, ErrStartup):
		d.Code = "startup"
		d.Summary = "firmware failed to start"
		d.LikelyCauses = []string{
			"invalid config",
			"pin already claimed by another process",
			"missing permission on the gpio device",
		}
	default:
		d.Code = "output"
		d.Summary = "output line failed"
		d.LikelyCauses = []string{"pin released by another process", "gpio device removed"}
	}
	return d
}
