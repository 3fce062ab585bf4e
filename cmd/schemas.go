package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"intervaltimer/internal/core/model"
	"intervaltimer/internal/core/plan"
	"intervaltimer/internal/core/session"
	"intervaltimer/internal/storage"

	"github.com/spf13/cobra"
)

func newSchemasCmd(env *environment) *cobra.Command {
	schemas := &cobra.Command{Use: "schemas", Short: "Manage training schemas"}

	schemas.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored schemas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := env.schemaStore().List()
			if err != nil {
				return err
			}
			if len(list) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no schemas")
				return nil
			}
			writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(writer, "ID\tNAME\tSETS\tSTEPS\tTOTAL")
			for _, schema := range list {
				_, _ = fmt.Fprintf(writer, "%s\t%s\t%d\t%d\t%s\n",
					shortID(schema.ID), schema.Name, len(schema.Sets), schema.TotalSteps(),
					session.FormatClock(schema.TotalDuration()))
			}
			return writer.Flush()
		},
	})

	schemas.AddCommand(&cobra.Command{
		Use:   "show <schema>",
		Short: "Show a schema and its sets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := env.schemaStore().Find(args[0])
			if err != nil {
				return err
			}
			printSchema(cmd.OutOrStdout(), schema)
			return nil
		},
	})

	schemas.AddCommand(newSchemaNewCmd(env))
	schemas.AddCommand(newSchemaImportCmd(env))
	schemas.AddCommand(newSchemaExportCmd(env))

	schemas.AddCommand(&cobra.Command{
		Use:   "delete <schema>",
		Short: "Delete a schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := env.schemaStore()
			schema, err := store.Find(args[0])
			if err != nil {
				return err
			}
			if err := store.Delete(schema.ID); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s (%s)\n", schema.Name, shortID(schema.ID))
			return nil
		},
	})
	return schemas
}

func newSchemaNewCmd(env *environment) *cobra.Command {
	var repeats, runSeconds, restSeconds int

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a schema with one run/rest set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema := model.NewSchema(args[0])
			set := &schema.Sets[0]
			set.Repeats = repeats
			set.Steps[0].Duration = runSeconds
			set.Steps[1].Duration = restSeconds
			if restSeconds == 0 {
				set.Steps = set.Steps[:1]
			}

			saved, err := env.schemaStore().Save(schema)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) %s total\n",
				saved.Name, shortID(saved.ID), session.FormatClock(saved.TotalDuration()))
			return nil
		},
	}
	cmd.Flags().IntVar(&repeats, "repeats", 1, "number of rounds")
	cmd.Flags().IntVar(&runSeconds, "run", 60, "run step seconds")
	cmd.Flags().IntVar(&restSeconds, "rest", 30, "rest step seconds, 0 for none")
	return cmd
}

func newSchemaImportCmd(env *environment) *cobra.Command {
	var freshIDs bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a schema from a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read schema file: %w", err)
			}
			schema, err := storage.DecodeSchema(data, storage.FormatForPath(args[0]))
			if err != nil {
				return err
			}
			if freshIDs {
				resetIDs(&schema)
			}

			saved, err := env.schemaStore().Save(schema)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %s (%s)\n", saved.Name, shortID(saved.ID))
			return nil
		},
	}
	cmd.Flags().BoolVar(&freshIDs, "new-id", false, "assign new ids instead of replacing a schema with the same id")
	return cmd
}

func newSchemaExportCmd(env *environment) *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "export <schema>",
		Short: "Export a schema as YAML or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := env.schemaStore().Find(args[0])
			if err != nil {
				return err
			}

			encoding := storage.Format(format)
			if format == "" {
				encoding = storage.FormatForPath(output)
			}
			data, err := storage.EncodeSchema(schema, encoding)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write schema file: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s\n", schema.Name, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, stdout when empty")
	cmd.Flags().StringVar(&format, "format", "", "yaml|json, from the file extension when empty")
	return cmd
}

func printSchema(out io.Writer, schema model.Schema) {
	_, _ = fmt.Fprintf(out, "id: %s\nname: %s\nsets: %d\nsteps: %d\ntotal: %s\n",
		schema.ID, schema.Name, len(schema.Sets), schema.TotalSteps(),
		session.FormatClock(schema.TotalDuration()))

	overview := plan.Overview(schema)
	for index, set := range schema.Sets {
		summary := overview[index]
		_, _ = fmt.Fprintf(out, "\n%s  ×%d  %s\n", summary.Name, summary.Repeats, session.FormatClock(summary.TotalDuration))
		for _, step := range set.Steps {
			_, _ = fmt.Fprintf(out, "  %-6s %s  %s\n", step.Type, session.FormatClock(step.Seconds()), step.Name)
		}
	}
}

func resetIDs(schema *model.Schema) {
	schema.ID = ""
	for setIndex := range schema.Sets {
		schema.Sets[setIndex].ID = ""
		for stepIndex := range schema.Sets[setIndex].Steps {
			schema.Sets[setIndex].Steps[stepIndex].ID = ""
		}
	}
	schema.EnsureIDs()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
