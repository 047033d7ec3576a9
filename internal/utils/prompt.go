package utils

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
)

// Prompt writes message to out and reads one trimmed line from in.
func Prompt(in io.Reader, out io.Writer, message string) (string, error) {
	fmt.Fprintf(out, "%s: ", Bold(message))
	reader := bufio.NewReader(in)
	text, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && text != "") {
		return "", errors.Wrap(err, "read input")
	}
	return strings.TrimSpace(text), nil
}
