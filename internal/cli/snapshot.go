package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/groupfit/pkg/canvas"
	"github.com/matzehuels/groupfit/pkg/errors"
	gfio "github.com/matzehuels/groupfit/pkg/io"
	"github.com/matzehuels/groupfit/pkg/snapshot"
)

// snapshotCommand creates the snapshot command group.
func (c *CLI) snapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshot",
		Aliases: []string{"snap"},
		Short:   "Save and restore diagram snapshots",
		Long: `Save and restore diagram snapshots.

Snapshots are kept in the store configured under [store] (file, sqlite,
redis, mongo or memory). Remote stores fall back to the file store when they
are unreachable or reject credentials.`,
	}

	cmd.AddCommand(c.snapshotSaveCommand())
	cmd.AddCommand(c.snapshotListCommand())
	cmd.AddCommand(c.snapshotShowCommand())
	cmd.AddCommand(c.snapshotRestoreCommand())
	cmd.AddCommand(c.snapshotDeleteCommand())

	return cmd
}

// snapshotSaveCommand creates the "snapshot save" subcommand.
func (c *CLI) snapshotSaveCommand() *cobra.Command {
	var name, notes string

	cmd := &cobra.Command{
		Use:   "save [diagram]",
		Short: "Save a diagram as a new snapshot",
		Long: `Save a diagram as a new snapshot.

Without --notes, an interactive dialog asks for notes when stdin is a
terminal. Notes are optional and limited to 500 characters.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			interactive := !cmd.Flags().Changed("notes") && isTerminal(os.Stdin)
			return c.runSnapshotSave(cmd.Context(), args[0], name, notes, interactive)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "snapshot name (default: diagram title)")
	cmd.Flags().StringVar(&notes, "notes", "", "notes stored with the snapshot")

	return cmd
}

func (c *CLI) runSnapshotSave(ctx context.Context, input, name, notes string, interactive bool) error {
	d, err := gfio.Import(input)
	if err != nil {
		return err
	}

	store, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	rec := &recordingStore{Store: store}
	save := snapshot.Saver(rec, func() canvas.Diagram { return d }, name)

	if interactive {
		title := name
		if title == "" {
			title = d.Title
		}
		final, err := tea.NewProgram(NewSaveDialogModel(ctx, title, save), tea.WithContext(ctx)).Run()
		if err != nil {
			return err
		}
		if m, ok := final.(SaveDialogModel); !ok || !m.Saved {
			printDetail("Nothing saved")
			return nil
		}
	} else if err := save(ctx, notes); err != nil {
		return err
	}

	s := rec.last
	printSuccess("Saved snapshot %s", StyleHighlight.Render(s.ID))
	printDetail("%s · %d nodes · %d groups", s.DiagramName, len(s.Diagram.Nodes), s.Diagram.GroupCount())
	printNewline()
	printNextStep("Restore", appName+" snapshot restore "+s.ID)
	return nil
}

// recordingStore remembers the last snapshot saved through it.
type recordingStore struct {
	snapshot.Store
	last *snapshot.Snapshot
}

func (r *recordingStore) Save(ctx context.Context, s *snapshot.Snapshot) error {
	if err := r.Store.Save(ctx, s); err != nil {
		return err
	}
	r.last = s
	return nil
}

// snapshotListCommand creates the "snapshot list" subcommand.
func (c *CLI) snapshotListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List snapshots, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			summaries, err := store.List(ctx)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				printInfo("No snapshots in %s store", store.Kind())
				return nil
			}

			rows := make([][]string, len(summaries))
			for i, s := range summaries {
				rows[i] = snapshotRow("", s)
			}
			fmt.Println(snapshotTable(rows, nil).Render())
			printDetail("%d snapshot(s) in %s store", len(summaries), store.Kind())
			return nil
		},
	}
}

// snapshotShowCommand creates the "snapshot show" subcommand.
func (c *CLI) snapshotShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show snapshot details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			s, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Println(StyleTitle.Render(s.DiagramName))
			printNewline()
			printKeyValue("ID", s.ID)
			printKeyValue("Created", s.CreatedAt.Local().Format("Jan 2, 2006 15:04"))
			if s.ParentID != "" {
				printKeyValue("Parent", s.ParentID)
			}
			printKeyValue("Nodes", StyleNumber.Render(fmt.Sprint(len(s.Diagram.Nodes))))
			printKeyValue("Groups", StyleNumber.Render(fmt.Sprint(s.Diagram.GroupCount())))
			printKeyValue("Edges", StyleNumber.Render(fmt.Sprint(len(s.Diagram.Edges))))
			if s.Notes != "" {
				printNewline()
				fmt.Println(s.Notes)
			}
			return nil
		},
	}
}

// snapshotRestoreCommand creates the "snapshot restore" subcommand.
func (c *CLI) snapshotRestoreCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "restore [id]",
		Short: "Write a snapshot's diagram to a file",
		Long: `Write a snapshot's diagram to a file.

Without an id, an interactive picker lists the stored snapshots. The diagram
is written to --output (format from its extension) or to stdout as JSON.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			var id string
			if len(args) == 1 {
				id = args[0]
			} else {
				if !isTerminal(os.Stdin) {
					return errors.New(errors.ErrCodeInvalidInput, "snapshot id required when stdin is not a terminal")
				}
				if id, err = pickSnapshot(ctx, store); err != nil || id == "" {
					return err
				}
			}

			s, err := store.Get(ctx, id)
			if err != nil {
				return err
			}
			if output == "" {
				return gfio.WriteJSON(s.Diagram, os.Stdout)
			}
			if err := gfio.Export(s.Diagram, output); err != nil {
				return err
			}
			printSuccess("Restored %s", StyleHighlight.Render(s.DiagramName))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

// pickSnapshot runs the interactive picker. An empty id means no selection.
func pickSnapshot(ctx context.Context, store snapshot.Store) (string, error) {
	summaries, err := store.List(ctx)
	if err != nil {
		return "", err
	}
	if len(summaries) == 0 {
		printInfo("No snapshots in %s store", store.Kind())
		return "", nil
	}

	final, err := tea.NewProgram(NewSnapshotPickerModel(summaries), tea.WithContext(ctx)).Run()
	if err != nil {
		return "", err
	}
	m, ok := final.(SnapshotPickerModel)
	if !ok || m.Selected == nil {
		printDetail("No selection made")
		return "", nil
	}
	return m.Selected.ID, nil
}

// snapshotDeleteCommand creates the "snapshot delete" subcommand.
func (c *CLI) snapshotDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete [id...]",
		Aliases: []string{"rm"},
		Short:   "Delete snapshots",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			for _, id := range args {
				if err := store.Delete(ctx, id); err != nil {
					return err
				}
				printSuccess("Deleted %s", id)
			}
			return nil
		},
	}
}

// isTerminal reports whether f is a character device.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
