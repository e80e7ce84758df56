package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"colony/internal/resolve"
)

// terminalResolver implements the resolution workflow collaborator with
// simple stdin prompts. A blank answer skips the identifier; skipped ids
// stay in the unresolved set.
type terminalResolver struct {
	in  *bufio.Reader
	out io.Writer
}

func newTerminalResolver(in io.Reader, out io.Writer) *terminalResolver {
	return &terminalResolver{in: bufio.NewReader(in), out: out}
}

const maxSuggestions = 12

func (t *terminalResolver) Resolve(req resolve.Request) ([]resolve.Choice, error) {
	kind := "commodity"
	if req.Kind == resolve.KindPinType {
		kind = "placement type"
	}
	fmt.Fprintf(t.out, "\nFound %d unknown %s id(s).\n", len(req.IDs), kind)

	if len(req.Candidates) > 0 {
		shown := req.Candidates
		if len(shown) > maxSuggestions {
			shown = shown[:maxSuggestions]
		}
		fmt.Fprintf(t.out, "Known names: %s\n", strings.Join(shown, ", "))
	}

	var choices []resolve.Choice
	for _, id := range req.IDs {
		fmt.Fprintf(t.out, "Name for id %d (blank to skip): ", id)
		line, err := t.in.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		name := strings.TrimSpace(line)
		if name != "" {
			choices = append(choices, resolve.Choice{ID: id, Name: name})
		}
		if err == io.EOF {
			break
		}
	}
	return choices, nil
}
