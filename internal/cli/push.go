package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/genealogy/pkg/errors"
	"github.com/matzehuels/genealogy/pkg/history"
	"github.com/matzehuels/genealogy/pkg/history/mongostore"
)

// pushCommand uploads a history file into a MongoDB collection.
func (c *CLI) pushCommand() *cobra.Command {
	var source sourceFlags

	cmd := &cobra.Command{
		Use:   "push <history> --mongo-uri URI",
		Short: "Upload birth records from a file to MongoDB",
		Long: `Upload birth records from a file to MongoDB.

Every record becomes one document {child, epoch, parents}. Documents already
in the collection are kept, so pushing the same file twice duplicates it.`,
		Example: `  genealogy push births.txt --mongo-uri mongodb://localhost:27017 --mongo-collection run42`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			m := source.mongo(cfg)
			if m == nil {
				return errors.New(errors.ErrCodeInvalidInput, "--mongo-uri is required")
			}
			s, err := history.Import(args[0], source.format)
			if err != nil {
				return err
			}
			if err := mongostore.Save(cmd.Context(), *m, s); err != nil {
				return err
			}
			printSuccess("Pushed %d records", s.Len())
			printDetail("%s.%s", m.Database, m.Collection)
			printNextStep("Render", "genealogy render --mongo-uri "+m.URI+" --mongo-collection "+m.Collection)
			return nil
		},
	}

	source.register(cmd)
	return cmd
}
