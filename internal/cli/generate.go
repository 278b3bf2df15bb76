package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/kapu/player-generator-go/internal/app"
	"github.com/kapu/player-generator-go/internal/domain"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "generate <nationality> [seed]",
		Short: "Generate player profiles",
		Long:  "Generate profiles for a nationality slug. With a seed the profile is reproduced exactly; without one, --count fresh profiles are drawn.",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runGenerate,
	}
	cmd.Flags().IntP("count", "n", 1, "Number of profiles to draw when no seed is given")
	cmd.Flags().StringP("format", "f", "text", "Output format: text or json")

	RootCmd.AddCommand(cmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	count, _ := cmd.Flags().GetInt("count")
	format, _ := cmd.Flags().GetString("format")
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown format %q", format)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, "warn")
	if err != nil {
		return err
	}
	defer logger.Sync()

	container, err := app.Build(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer container.Close()

	var profiles []*domain.GeneratedProfile
	if len(args) == 2 {
		p, err := container.Profiles.BySlug(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		profiles = append(profiles, p)
	} else {
		nationality, err := container.Registry.BySlug(args[0])
		if err != nil {
			return err
		}
		for i := 0; i < count; i++ {
			p, err := container.Profiles.Generate(cmd.Context(), nationality.ID, nil)
			if err != nil {
				return err
			}
			profiles = append(profiles, p)
		}
	}

	if format == "json" {
		return writeProfilesJSON(cmd.OutOrStdout(), profiles)
	}
	return writeProfilesText(cmd.OutOrStdout(), profiles)
}

func writeProfilesJSON(w io.Writer, profiles []*domain.GeneratedProfile) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(profiles) == 1 {
		return enc.Encode(profiles[0])
	}
	return enc.Encode(profiles)
}

func writeProfilesText(w io.Writer, profiles []*domain.GeneratedProfile) error {
	var b strings.Builder
	for i, p := range profiles {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s (%s) [%s]\n", p.FullName, p.NationalityName, p.SeedCode)
		for _, line := range p.Biography {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
