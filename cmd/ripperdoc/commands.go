package main

import (
	"github.com/spf13/cobra"

	"ripperdoc/internal/core"
	"ripperdoc/pkg/domain"
)

func newCatalogCmd(opts *rootOptions) *cobra.Command {
	var category, sortKey string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the cyberware catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			items, err := a.svc.ListCyberware(domain.Category(category), sortKey)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), items)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "filter by category (neural, body, sensory, weapons)")
	cmd.Flags().StringVar(&sortKey, "sort", "name", "order by name, cost, humanity or difficulty")
	return cmd
}

type optionFlags struct {
	streetDoc, rush, clinic, noAnesthesia bool
}

func (f *optionFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.streetDoc, "street-doc", false, "use a street doc")
	cmd.Flags().BoolVar(&f.rush, "rush", false, "rush job")
	cmd.Flags().BoolVar(&f.clinic, "clinic", false, "quality clinic")
	cmd.Flags().BoolVar(&f.noAnesthesia, "no-anesthesia", false, "skip anesthesia")
}

func (f *optionFlags) options() domain.InstallationOptions {
	return domain.InstallationOptions{
		UseStreetDoc:  f.streetDoc,
		RushJob:       f.rush,
		QualityClinic: f.clinic,
		Anesthesia:    !f.noAnesthesia,
	}
}

func newEstimateCmd(opts *rootOptions) *cobra.Command {
	var flags optionFlags
	cmd := &cobra.Command{
		Use:   "estimate <cyberware-id>",
		Short: "Price an installation without performing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			quote, err := a.svc.EstimateCost(cmd.Context(), args[0], flags.options())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), quote)
		},
	}
	flags.register(cmd)
	return cmd
}

func newInstallCmd(opts *rootOptions) *cobra.Command {
	var flags optionFlags
	cmd := &cobra.Command{
		Use:   "install <character-id> <cyberware-id>",
		Short: "Install cyberware into a character",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			out, err := a.svc.PerformInstallation(cmd.Context(), args[0], args[1], flags.options())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	flags.register(cmd)
	return cmd
}

func newCharacterCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "character",
		Short: "Create and list characters",
	}

	var draft core.CharacterDraft
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a character from an archetype",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			c, err := a.svc.CreateCharacter(cmd.Context(), draft)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), c)
		},
	}
	create.Flags().StringVar(&draft.Name, "name", "", "character name")
	create.Flags().StringVar(&draft.Archetype, "archetype", "Solo", "Solo, Netrunner or Techie")
	create.Flags().StringVar(&draft.Background, "background", "", "background text")
	_ = create.MarkFlagRequired("name")

	list := &cobra.Command{
		Use:   "list",
		Short: "List characters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			return printJSON(cmd.OutOrStdout(), a.svc.ListCharacters())
		},
	}

	cmd.AddCommand(create, list)
	return cmd
}
