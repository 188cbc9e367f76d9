package main

import (
	"strings"
	"testing"

	"github.com/urfave/cli"
)

func TestCommands(t *testing.T) {
	names := map[string]bool{}

	for _, c := range []cli.Command{resolve(), reverse(), dump(), watch()} {
		c := c
		t.Run(c.Name, func(t *testing.T) {
			if names[c.Name] {
				t.Fatalf("duplicate command %s", c.Name)
			}
			names[c.Name] = true

			if c.Action == nil {
				t.Errorf("command has no action")
			}

			for _, line := range strings.Split(c.Description, "\n") {
				if strings.TrimRight(line, " \t") != line {
					t.Errorf("trailing whitespace in description line %q", line)
				}
			}
		})
	}
}
