package terminal

import (
	"bufio"
	"io"
)

// ReadLines feeds each input line into the returned channel and closes it at
// EOF. The reader goroutine lives as long as in does.
func ReadLines(in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}
