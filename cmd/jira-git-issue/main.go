package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/Ilia01/jira-git-issue/internal/app"
	"github.com/Ilia01/jira-git-issue/internal/exit"
)

func main() {
	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
		}
		os.Exit(exit.CodeOf(err).Int())
	}
}
