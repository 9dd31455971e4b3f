package command

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"elibrary/internal/microservices/http-api/models"
	"elibrary/internal/viewstate"

	"github.com/spf13/cobra"
)

func newBookCmd(a *app) *cobra.Command {
	bookCmd := &cobra.Command{
		Use:   "book",
		Short: "Catalogue commands",
		Long:  `Browse the catalogue, add, edit and delete books, and borrow or return them.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List books, optionally filtered",
		RunE: func(cmd *cobra.Command, args []string) error {
			search, _ := cmd.Flags().GetString("search")
			genre, _ := cmd.Flags().GetString("genre")

			list := viewstate.NewBookList(a.client)
			defer list.Close()
			list.SetSearch(cmd.Context(), search)
			// SetGenre supersedes the debounced search and fetches now
			if err := list.SetGenre(cmd.Context(), genre); err != nil {
				return a.fail("failed to list books", err)
			}

			books := list.State().Books
			if len(books) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No books found.")
				return nil
			}
			printBookTable(cmd.OutOrStdout(), books)
			return nil
		},
	}
	listCmd.Flags().StringP("search", "s", "", "Match title, author or description")
	listCmd.Flags().StringP("genre", "g", models.GenreAll, "Only this genre")

	getCmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Show one book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.restore(cmd.Context())
			detail := viewstate.NewBookDetail(a.client, args[0], nil)
			if err := detail.Load(cmd.Context()); err != nil {
				return a.fail("failed to get book", err)
			}
			printBookDetail(cmd.OutOrStdout(), detail, a.session)
			return nil
		},
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book to the catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(cmd.Context()); err != nil {
				return err
			}
			form := viewstate.NewCreateForm()
			applyFormFlags(cmd, &form.Fields)

			b, err := form.Submit(cmd.Context(), a.client)
			if err != nil {
				return a.fail("failed to add book", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Added %q (ID: %s)\n", b.Title, b.ID)
			return nil
		},
	}
	addFormFlags(addCmd)

	editCmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Change some fields of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(cmd.Context()); err != nil {
				return err
			}
			b, err := a.client.GetBook(cmd.Context(), args[0])
			if err != nil {
				return a.fail("failed to get book", err)
			}

			form := viewstate.NewEditForm(*b)
			applyFormFlags(cmd, &form.Fields)
			updated, err := form.Submit(cmd.Context(), a.client)
			if errors.Is(err, viewstate.ErrNoChanges) {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to save.")
				return nil
			}
			if err != nil {
				return a.fail("failed to update book", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated %q\n", updated.Title)
			return nil
		},
	}
	addFormFlags(editCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a book after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(cmd.Context()); err != nil {
				return err
			}
			detail := viewstate.NewBookDetail(a.client, args[0], nil)
			if err := detail.Load(cmd.Context()); err != nil {
				return a.fail("failed to get book", err)
			}

			detail.RequestDelete()
			yes, _ := cmd.Flags().GetBool("yes")
			if !yes {
				ok, err := confirm(cmd, fmt.Sprintf("Delete %q?", detail.State().Book.Title))
				if err != nil {
					return err
				}
				if !ok {
					detail.CancelDelete()
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}
			if err := detail.ConfirmDelete(cmd.Context()); err != nil {
				return a.fail("failed to delete book", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Book deleted successfully")
			return nil
		},
	}
	deleteCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")

	borrowCmd := &cobra.Command{
		Use:   "borrow [id]",
		Short: "Borrow a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(cmd.Context()); err != nil {
				return err
			}
			detail := viewstate.NewBookDetail(a.client, args[0], nil)
			if err := detail.Borrow(cmd.Context()); err != nil {
				return a.fail("failed to borrow book", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Borrowed %q\n", detail.State().Book.Title)
			return nil
		},
	}

	returnCmd := &cobra.Command{
		Use:   "return [id]",
		Short: "Return a book you borrowed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(cmd.Context()); err != nil {
				return err
			}
			detail := viewstate.NewBookDetail(a.client, args[0], nil)
			if err := detail.Return(cmd.Context()); err != nil {
				return a.fail("failed to return book", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Returned %q\n", detail.State().Book.Title)
			return nil
		},
	}

	bookCmd.AddCommand(listCmd, getCmd, addCmd, editCmd, deleteCmd, borrowCmd, returnCmd)
	return bookCmd
}

func addFormFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "Title")
	cmd.Flags().String("author", "", "Author")
	cmd.Flags().String("genre", "", "Genre (see 'elibrary genres')")
	cmd.Flags().String("publish-date", "", "Publish date, YYYY-MM-DD")
	cmd.Flags().String("description", "", "Description")
	cmd.Flags().String("cover-image", "", "Cover image URL")
}

// applyFormFlags copies only the flags given on the command line.
func applyFormFlags(cmd *cobra.Command, f *viewstate.FormFields) {
	set := func(name string, dst *string) {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
		}
	}
	set("title", &f.Title)
	set("author", &f.Author)
	set("genre", &f.Genre)
	set("publish-date", &f.PublishDate)
	set("description", &f.Description)
	set("cover-image", &f.CoverImage)
}

func printBookTable(w io.Writer, books []models.Book) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tGENRE\tPUBLISHED\tSTATUS")
	for _, b := range books {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", b.ID, b.Title, b.Author, b.Genre, b.PublishDate, status(b))
	}
	tw.Flush()
}

func printBookDetail(w io.Writer, detail *viewstate.BookDetail, session *viewstate.Session) {
	b := detail.State().Book
	fmt.Fprintf(w, "ID: %s\n", b.ID)
	fmt.Fprintf(w, "Title: %s\n", b.Title)
	fmt.Fprintf(w, "Author: %s\n", b.Author)
	fmt.Fprintf(w, "Genre: %s\n", b.Genre)
	fmt.Fprintf(w, "Published: %s\n", b.PublishDate)
	fmt.Fprintf(w, "Cover: %s\n", b.CoverImage)
	if detail.CanReturn(session) {
		fmt.Fprintln(w, "Status: borrowed by you")
	} else {
		fmt.Fprintf(w, "Status: %s\n", status(*b))
	}
	fmt.Fprintln(w, strings.Repeat("-", 50))
	fmt.Fprintln(w, b.Description)
}

func status(b models.Book) string {
	if b.Available {
		return "available"
	}
	return "borrowed"
}
