package userclient

import (
	"errors"
	"fmt"
	"io"
	"strconv"
)

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  help")
	fmt.Fprintln(out, "  sync")
	fmt.Fprintln(out, "  settings [minutes questions]")
	fmt.Fprintln(out, "  play")
	fmt.Fprintln(out, "  results [latest|<result_id>|limit]")
	fmt.Fprintln(out, "  report <result_id|latest> <file.pdf>")
	fmt.Fprintln(out, "  exit")
}

func parseSignedLimit(args []string, index int, defaultValue int) (int, error) {
	if len(args) <= index {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(args[index])
	if err != nil {
		return 0, errors.New("must be an integer")
	}
	return value, nil
}

func describeClientError(err error, serverURL string) error {
	if errors.Is(err, ErrServiceUnavailable) {
		return fmt.Errorf("quiz service unavailable at %s", serverURL)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.NeedsSetup() {
		return fmt.Errorf("%s (run `sync` and check `settings`)", apiErr.Message)
	}
	return err
}
