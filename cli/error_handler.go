package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/grovetools/dashboard/errors"
)

// ErrorHandler turns coded errors into actionable messages.
type ErrorHandler struct {
	Verbose bool
	Out     io.Writer
}

// NewErrorHandler creates a handler writing to stderr.
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
		Out:     os.Stderr,
	}
}

// Handle prints a message for err based on its code and returns err.
func (h *ErrorHandler) Handle(err error) error {
	if err == nil {
		return nil
	}
	de, _ := errors.As(err)

	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(h.Out, "❌ Configuration not found. Create a dashboard.yml or pass --config.\n")

	case errors.ErrCodeConfigInvalid, errors.ErrCodeConfigValidation:
		fmt.Fprintf(h.Out, "❌ %s\n", de.Message)
		fmt.Fprintf(h.Out, "Run 'dashctl config' to see the effective configuration.\n")

	case errors.ErrCodeTransportFailed:
		fmt.Fprintf(h.Out, "❌ %s\n", de.Message)
		if status, ok := de.Details["status"]; ok {
			fmt.Fprintf(h.Out, "The API answered with status %v.\n", status)
		} else {
			fmt.Fprintf(h.Out, "Check that api.base_url is reachable.\n")
		}

	case errors.ErrCodeStateUnavailable:
		fmt.Fprintf(h.Out, "❌ Cannot access the shared state file %v\n", de.Details["path"])

	case errors.ErrCodeItemNotFound, errors.ErrCodeInvalidInput:
		fmt.Fprintf(h.Out, "❌ %s\n", de.Message)

	default:
		fmt.Fprintf(h.Out, "❌ Error: %v\n", err)
	}

	if h.Verbose && de != nil {
		fmt.Fprintf(h.Out, "\nError details:\n%s\n", de.ToJSON())
		if de.Cause != nil {
			fmt.Fprintf(h.Out, "Cause: %v\n", de.Cause)
		}
	}
	return err
}
