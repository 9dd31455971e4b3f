package command

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"elibrary/internal/viewstate"

	"github.com/spf13/cobra"
)

const browseHelp = `Type to search (results follow once you pause). Commands:
  :genre <name>   filter by genre ("All" clears it)
  :refresh        fetch again
  :delete <n>     delete the n-th book shown, then :yes or :no
  :quit           leave`

// lockedWriter serialises renders coming from the debounce timer and the input loop.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) render(s viewstate.ListState) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if s.Loading {
		return
	}
	fmt.Fprintf(l.w, "\n[genre: %s] [search: %q]\n", s.Filter.Genre, s.Filter.Search)
	if s.Err != nil {
		fmt.Fprintf(l.w, "error: %s\n", viewstate.ErrorMessage(s.Err))
	}
	if len(s.Books) == 0 {
		fmt.Fprintln(l.w, "No books found.")
	}
	for i, b := range s.Books {
		fmt.Fprintf(l.w, "%2d. %s by %s (%s, %s)\n", i+1, b.Title, b.Author, b.Genre, status(b))
	}
	if s.PendingDelete != "" {
		fmt.Fprintln(l.w, "Delete pending: :yes to confirm, :no to cancel")
	}
}

func (l *lockedWriter) println(a ...any) {
	l.mu.Lock()
	fmt.Fprintln(l.w, a...)
	l.mu.Unlock()
}

func newBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Interactively search and filter the catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a.restore(ctx)

			out := &lockedWriter{w: cmd.OutOrStdout()}
			list := viewstate.NewBookList(a.client,
				viewstate.WithSearchDelay(a.cfg.SearchDebounce),
				viewstate.WithOnChange(out.render),
			)
			defer list.Close()

			out.println(browseHelp)
			list.Refresh(ctx)

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				verb, arg, _ := strings.Cut(line, " ")
				arg = strings.TrimSpace(arg)

				switch verb {
				case ":quit", ":q":
					return nil
				case ":help":
					out.println(browseHelp)
				case ":genre":
					list.SetGenre(ctx, arg)
				case ":refresh":
					list.Refresh(ctx)
				case ":delete":
					if !a.session.IsAuthenticated() {
						out.println(errNotLoggedIn.Error())
						continue
					}
					books := list.State().Books
					n, err := strconv.Atoi(arg)
					if err != nil || n < 1 || n > len(books) {
						out.println("usage: :delete <number from the list>")
						continue
					}
					list.RequestDelete(books[n-1].ID)
				case ":yes":
					// Server failures are rendered from the list state
					if err := list.ConfirmDelete(ctx); errors.Is(err, viewstate.ErrNoPendingDelete) {
						out.println(viewstate.ErrorMessage(err))
					}
				case ":no":
					list.CancelDelete()
				default:
					list.SetSearch(ctx, line)
				}
			}
			return scanner.Err()
		},
	}
}
