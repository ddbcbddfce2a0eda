package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/diwise/ro-crate/pkg/rocrate/crate"
	rcerrors "github.com/diwise/ro-crate/pkg/rocrate/errors"
	"github.com/diwise/ro-crate/pkg/rocrate/graph"
	"github.com/diwise/ro-crate/pkg/rocrate/providers"
	"github.com/diwise/ro-crate/pkg/rocrate/types/entities"
	"github.com/diwise/ro-crate/pkg/rocrate/types/properties"
	"github.com/diwise/ro-crate/pkg/rocrate/validation"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/spf13/cobra"
)

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [crate]",
		Short: "Summarize the entities of a crate folder, zip or metadata file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := readCrate(cmd.Context(), crate.NewReader(), args[0])
			if err != nil && (c == nil || !errors.Is(err, rcerrors.ErrValidationFailed)) {
				return fmt.Errorf("inspect: %w", err)
			}

			return summarize(cmd.OutOrStdout(), c, err)
		},
	}
}

func validateCmd(flags FlagMap) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [crate]",
		Short: "Check a crate against the structural rules and a rego policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			v, err := newValidator(ctx, flags[policyPath])
			if err != nil {
				return fmt.Errorf("validate: %w", err)
			}

			c, err := readCrate(ctx, crate.NewReader(crate.WithValidator(v)), args[0])

			var validationErr *rcerrors.ValidationError
			if err != nil && !errors.As(err, &validationErr) {
				return fmt.Errorf("validate: %w", err)
			}

			out := cmd.OutOrStdout()

			if validationErr != nil {
				for _, violation := range validationErr.Violations {
					fmt.Fprintf(out, "violation: %s\n", violation)
				}
			}

			for _, id := range c.CheckContext() {
				fmt.Fprintf(out, "unknown terms: %s\n", id)
			}

			if validationErr != nil {
				return fmt.Errorf("validate: %d violation(s) found in %s", len(validationErr.Violations), args[0])
			}

			fmt.Fprintf(out, "%s is valid\n", args[0])
			return nil
		},
	}

	cmd.Flags().Var(flagValue(flags, policyPath), "policy", "rego policy with a rocrate.validation deny set used instead of the bundled one")

	return cmd
}

func expandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expand [crate]",
		Short: "Print the metadata graph with references replaced by the entities they point at",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := readCrate(cmd.Context(), crate.NewReader(crate.WithValidator(nil)), args[0])
			if err != nil {
				return fmt.Errorf("expand: %w", err)
			}

			metadata, err := c.MarshalJSON()
			if err != nil {
				return fmt.Errorf("expand: %w", err)
			}

			expanded, err := graph.ExpandDocument(metadata)
			if err != nil {
				return fmt.Errorf("expand: %w", err)
			}

			buf := &bytes.Buffer{}
			if err = json.Indent(buf, expanded, "", "  "); err != nil {
				return fmt.Errorf("expand: %w", err)
			}
			buf.WriteString("\n")

			_, err = buf.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
}

func enrichCmd(flags FlagMap) *cobra.Command {
	var orcids, rors []string
	var asAuthors bool

	cmd := &cobra.Command{
		Use:   "enrich [crate]",
		Short: "Add people and organizations from ORCID and ROR to a crate and write it to --out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.GetFromContext(ctx)

			out := flags[outputPath]
			if out == "" {
				return errors.New("enrich: --out is required")
			}

			c, err := readCrate(ctx, crate.NewReader(crate.WithValidator(nil)), args[0])
			if err != nil {
				return fmt.Errorf("enrich: %w", err)
			}

			lookups := []struct {
				provider    providers.Provider
				identifiers []string
			}{
				{providers.NewORCIDProvider(providers.BaseURL(flags[orcidURL])), orcids},
				{providers.NewRORProvider(providers.BaseURL(flags[rorURL])), rors},
			}

			authors := []string{}

			for _, lookup := range lookups {
				for _, identifier := range lookup.identifiers {
					e, err := lookup.provider.Fetch(ctx, identifier)
					if err != nil {
						return fmt.Errorf("enrich: %w", err)
					}

					if err = c.AddContextualEntity(e); err != nil {
						return fmt.Errorf("enrich: %w", err)
					}

					log.Info("added contextual entity", "id", e.ID(), "types", strings.Join(e.Types(), ","))
					authors = append(authors, e.ID())
				}
			}

			if asAuthors {
				for _, id := range authors {
					if err = c.AddIDProperty(c.Root().ID(), properties.Author, id); err != nil {
						return fmt.Errorf("enrich: %w", err)
					}
				}
			}

			return writeCrate(ctx, c, out)
		},
	}

	cmd.Flags().StringSliceVar(&orcids, "orcid", nil, "ORCID iD of a person to add")
	cmd.Flags().StringSliceVar(&rors, "ror", nil, "ROR id of an organization to add")
	cmd.Flags().BoolVar(&asAuthors, "authors", false, "list the added entities as authors of the root data entity")
	cmd.Flags().Var(flagValue(flags, outputPath), "out", "folder, or file ending with .zip, to write the enriched crate to")

	return cmd
}

func newValidator(ctx context.Context, policy string) (validation.Validator, error) {
	if policy == "" {
		return validation.Default(ctx)
	}

	f, err := os.Open(policy)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pv, err := validation.NewPolicyValidator(ctx, f)
	if err != nil {
		return nil, err
	}

	return validation.Chain(validation.NewStructuralValidator(), pv), nil
}

func readCrate(ctx context.Context, reader *crate.Reader, path string) (*crate.Crate, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if info.IsDir() {
		return reader.ReadFolder(ctx, path)
	}

	if strings.HasSuffix(strings.ToLower(path), ".zip") {
		return reader.ReadZip(ctx, path)
	}

	document, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return reader.ReadJSON(ctx, document)
}

func writeCrate(ctx context.Context, c *crate.Crate, out string) error {
	w := crate.NewWriter()

	if !strings.HasSuffix(strings.ToLower(out), ".zip") {
		return w.WriteFolder(ctx, c, out)
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}

	err = w.WriteZip(ctx, c, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}

	return err
}

func summarize(out io.Writer, c *crate.Crate, validationErr error) error {
	root := c.Root()

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "name:\t%s\n", root.Text(properties.Name))
	fmt.Fprintf(tw, "context:\t%s\n", strings.Join(c.Context().Sources(), ", "))
	fmt.Fprintf(tw, "data entities:\t%d\n", len(c.DataEntities()))
	fmt.Fprintf(tw, "contextual entities:\t%d\n", len(c.ContextualEntities()))
	tw.Flush()

	fmt.Fprintln(out)

	for _, e := range c.DataEntities() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.ID(), strings.Join(e.Types(), ","), contentState(e))
	}
	for _, e := range c.ContextualEntities() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.ID(), strings.Join(e.Types(), ","), "contextual")
	}
	tw.Flush()

	if untracked := c.UntrackedFiles(); len(untracked) > 0 {
		fmt.Fprintln(out)
		for _, u := range untracked {
			fmt.Fprintf(out, "untracked: %s\n", u.Path)
		}
	}

	if unknown := c.CheckContext(); len(unknown) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "entities using terms outside the context: %s\n", strings.Join(unknown, ", "))
	}

	var ve *rcerrors.ValidationError
	if errors.As(validationErr, &ve) {
		fmt.Fprintln(out)
		for _, violation := range ve.Violations {
			fmt.Fprintf(out, "violation: %s\n", violation)
		}
	}

	return nil
}

func contentState(e *entities.Entity) string {
	content := e.Content()
	switch {
	case content == nil:
		return "no content"
	case content.IsDir():
		return "directory"
	default:
		return "file"
	}
}

type flagMapValue struct {
	flags FlagMap
	key   FlagType
}

func flagValue(flags FlagMap, key FlagType) *flagMapValue {
	return &flagMapValue{flags: flags, key: key}
}

func (f *flagMapValue) String() string {
	if f.flags == nil {
		return ""
	}
	return f.flags[f.key]
}

func (f *flagMapValue) Set(value string) error {
	f.flags[f.key] = value
	return nil
}

func (f *flagMapValue) Type() string {
	return "string"
}
