package errors_test

import (
	"fmt"

	"github.com/agentstation/fcupdater/pkg/errors"
)

// Example demonstrates telling format failures apart.
func Example() {
	err := errors.NewFormatError(errors.FormatMissing, "fuel_cost_chungcheong.xlsx", "", nil)

	switch {
	case errors.IsMissing(err):
		fmt.Println("master file is missing")
	case errors.IsUnrecognized(err):
		fmt.Println("master file is not a spreadsheet")
	case errors.IsHeaderNotFound(err):
		fmt.Println("master file has no header row")
	}

	// Output: master file is missing
}

// Example_argumentConflict shows the error returned for exclusive flags.
func Example_argumentConflict() {
	err := errors.NewArgumentConflictError("--dry-run", "--fast-save")
	fmt.Println(err)

	// Output: arguments cannot be used together: --dry-run, --fast-save
}
