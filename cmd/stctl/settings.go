package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/itohio/goshot/pkg/log"
	"github.com/itohio/goshot/pkg/settings"
	"github.com/itohio/goshot/pkg/storage"
	"github.com/spf13/cobra"
)

func newSettingsCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and edit the settings file",
	}

	cmd.AddCommand(newSettingsShowCmd(root))
	cmd.AddCommand(newSettingsSetCmd(root))
	cmd.AddCommand(newSettingsEditCmd(root))
	cmd.AddCommand(newSettingsResetCmd(root))
	cmd.AddCommand(newSettingsCheckCmd(root))

	return cmd
}

type settingsShowFlags struct {
	raw bool
}

func newSettingsShowCmd(root *rootFlags) *cobra.Command {
	flags := &settingsShowFlags{}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the settings and any problems found in the file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(root)
			if err != nil {
				return err
			}
			s, report, err := loadSettings(cmd.Context(), e)
			if err != nil {
				return err
			}
			if flags.raw {
				return settings.Encode(cmd.OutOrStdout(), s)
			}
			printSettings(cmd.OutOrStdout(), s, report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&flags.raw, "raw", false, "Print in the file format")

	return cmd
}

func newSettingsSetCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "set <name=value>...",
		Short:   "Change settings and write the file",
		Example: "  stctl settings set g_delay_time=3 g_beep_vol=5",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(root)
			if err != nil {
				return err
			}
			s, _, err := loadSettings(cmd.Context(), e)
			if err != nil {
				return err
			}
			if err := applyAssignments(&s, args); err != nil {
				return err
			}
			if err := e.store.Save(cmd.Context(), s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", e.store.Path())
			return nil
		},
	}
}

func newSettingsEditCmd(root *rootFlags) *cobra.Command {
	var accessible bool

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit the settings interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(root)
			if err != nil {
				return err
			}
			s, _, err := loadSettings(cmd.Context(), e)
			if err != nil {
				return err
			}

			values := make([]string, len(settings.Fields))
			save := true
			form := buildSettingsForm(s, values, &save).WithAccessible(accessible)
			if err := form.Run(); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					return nil
				}
				return err
			}
			if !save {
				fmt.Fprintln(cmd.OutOrStdout(), "discarded")
				return nil
			}

			for i, f := range settings.Fields {
				if err := settings.Apply(&s, f.Name, values[i]); err != nil {
					return err
				}
			}
			if err := e.store.Save(cmd.Context(), s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", e.store.Path())
			return nil
		},
	}
	cmd.Flags().BoolVar(&accessible, "accessible", false, "Plain prompts for screen readers")

	return cmd
}

func newSettingsResetCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Write the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(root)
			if err != nil {
				return err
			}
			if err := e.store.Save(cmd.Context(), settings.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", e.store.Path())
			return nil
		},
	}
}

func newSettingsCheckCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report on the settings medium",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(root)
			if err != nil {
				return err
			}
			logger := log.New(log.Config{Level: "info", Output: cmd.OutOrStdout(), Console: true})
			_, err = storage.Check(e.medium, logger)
			return err
		},
	}
}

// loadSettings reads the settings file. A missing file yields the defaults.
func loadSettings(ctx context.Context, e *env) (settings.Settings, settings.Report, error) {
	s := settings.Default()
	report, err := e.store.Load(ctx, &s)
	if errors.Is(err, storage.ErrUnavailable) {
		return settings.Default(), settings.Report{}, nil
	}
	return s, report, err
}

// applyAssignments applies name=value pairs. Values outside the menu limits are rejected.
func applyAssignments(s *settings.Settings, args []string) error {
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("invalid assignment %q, want name=value", arg)
		}
		f, ok := settings.Lookup(name)
		if !ok {
			return fmt.Errorf("%q: %w", name, settings.ErrUnknownSetting)
		}
		if err := validateField(f, value); err != nil {
			return err
		}
		if err := settings.Apply(s, name, value); err != nil {
			return err
		}
	}
	return nil
}

// validateField checks value against the menu limits of f.
func validateField(f settings.Field, value string) error {
	v, err := settings.ParseValue(value)
	if err != nil {
		return fmt.Errorf("%s: %w", f.Name, err)
	}
	if v < f.Min || v > f.Max {
		return fmt.Errorf("%s must be between %d and %d: %w", f.Name, f.Min, f.Max, settings.ErrValueRange)
	}
	return nil
}

func buildSettingsForm(s settings.Settings, values []string, save *bool) *huh.Form {
	inputs := make([]huh.Field, 0, len(settings.Fields))
	for i, f := range settings.Fields {
		values[i] = strconv.Itoa(int(*f.Ptr(&s)))
		inputs = append(inputs, huh.NewInput().
			Title(f.Name).
			Description(fmt.Sprintf("%s (%d-%d)", f.Description, f.Min, f.Max)).
			Key(f.Name).
			Value(&values[i]).
			Validate(func(text string) error {
				return validateField(f, text)
			}))
	}

	return huh.NewForm(
		huh.NewGroup(inputs...),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Write the settings file?").
				Affirmative("Save").
				Negative("Discard").
				Value(save),
		),
	)
}

var (
	nameStyle    = lipgloss.NewStyle().Bold(true).Width(18)
	valueStyle   = lipgloss.NewStyle().Width(5).Align(lipgloss.Right)
	dimStyle     = lipgloss.NewStyle().Faint(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68"))
)

func printSettings(w io.Writer, s settings.Settings, report settings.Report) {
	for _, f := range settings.Fields {
		fmt.Fprintf(w, "%s%s  %s\n",
			nameStyle.Render(f.Name),
			valueStyle.Render(strconv.Itoa(int(*f.Ptr(&s)))),
			dimStyle.Render(f.Description))
	}
	for _, warning := range report.Warnings {
		fmt.Fprintln(w, warningStyle.Render("warning: "+warning.Error()))
	}
}
