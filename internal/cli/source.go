package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/genealogy/pkg/config"
	"github.com/matzehuels/genealogy/pkg/errors"
	"github.com/matzehuels/genealogy/pkg/history"
	"github.com/matzehuels/genealogy/pkg/history/mongostore"
	"github.com/matzehuels/genealogy/pkg/pipeline"
)

// sourceFlags select where birth records come from: a file argument or a
// MongoDB collection.
type sourceFlags struct {
	format     string
	mongoURI   string
	database   string
	collection string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.format, "history-format", "", "history format: text, json, yaml (default: from extension)")
	cmd.Flags().StringVar(&f.mongoURI, "mongo-uri", "", "read births from MongoDB at this URI")
	cmd.Flags().StringVar(&f.database, "mongo-db", "", "MongoDB database (default from config)")
	cmd.Flags().StringVar(&f.collection, "mongo-collection", "", "MongoDB collection (default from config)")
}

// mongo returns the collection named by the flags, falling back to the
// config file for unset fields. It returns nil when no URI is known.
func (f *sourceFlags) mongo(cfg config.Config) *mongostore.Config {
	uri := f.mongoURI
	if uri == "" {
		return nil
	}
	m := &mongostore.Config{
		URI:        uri,
		Database:   cfg.Mongo.Database,
		Collection: cfg.Mongo.Collection,
		Timeout:    cfg.Mongo.Timeout.Duration,
	}
	if f.database != "" {
		m.Database = f.database
	}
	if f.collection != "" {
		m.Collection = f.collection
	}
	return m
}

// apply points opts at the history given by args or the mongo flags.
func (f *sourceFlags) apply(opts *pipeline.Options, cfg config.Config, args []string) error {
	if f.format != "" && !history.ValidFormats[f.format] {
		return errors.New(errors.ErrCodeInvalidFormat, "unknown history format %q (must be one of: text, json, yaml)", f.format)
	}
	opts.HistoryFormat = f.format
	if m := f.mongo(cfg); m != nil {
		if len(args) > 0 {
			return errors.New(errors.ErrCodeInvalidInput, "give either a history file or --mongo-uri, not both")
		}
		opts.Mongo = m
		return nil
	}
	if len(args) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "a history file is required (or --mongo-uri)")
	}
	opts.Source = args[0]
	return nil
}

// name returns a base name for derived output files.
func (f *sourceFlags) name(opts pipeline.Options) string {
	if opts.Mongo != nil {
		return opts.Mongo.Collection
	}
	return strings.TrimSuffix(opts.Source, filepath.Ext(opts.Source))
}
