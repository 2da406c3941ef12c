package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/hpungsan/delgists/internal/gist"
)

// MenuOption is one entry of a menu, chosen by typing Key.
type MenuOption struct {
	Key   string
	Title string
}

// MenuText formats options as "| [k] Title | [k] Title |".
func MenuText(options []MenuOption) string {
	parts := make([]string, len(options))
	for i, opt := range options {
		parts[i] = fmt.Sprintf("[%s] %s", opt.Key, opt.Title)
	}
	return "| " + strings.Join(parts, " | ") + " |"
}

// Menu shows options and reads choices until one of the keys is entered.
// Keys match case-insensitively; the returned key is lowercase.
func (c *Console) Menu(ctx context.Context, options []MenuOption) (string, error) {
	for {
		c.Banner(MenuText(options))

		choice, err := c.ReadLine(ctx, "Action: ")
		if err != nil {
			return "", err
		}
		choice = strings.ToLower(strings.TrimSpace(choice))

		for _, opt := range options {
			if choice == strings.ToLower(opt.Key) {
				c.Rule()
				return choice, nil
			}
		}
		c.Center(fmt.Sprintf("ERROR: Unknown choice: %s", choice))
	}
}

// RenderPage writes a page of gists as numbered rows under a title line.
// Row numbers are 1-based and right-aligned to two columns.
func (c *Console) RenderPage(title string, page []gist.Gist) {
	c.Rule()
	if title != "" {
		c.Center(title)
		c.Rule()
	}
	if len(page) == 0 {
		c.Center("(no gists)")
		return
	}

	width := c.Width()
	for i, g := range page {
		prefix := fmt.Sprintf("[%2d] ", i+1)
		fmt.Fprintln(c.out, prefix+Truncate(g.Label(), width-len(prefix)))
	}
}
