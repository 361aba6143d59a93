package cmd

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/clipdeck/clipdeck/internal/models"
)

var enginesAddSet []string

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "Manage storage engine backends",
	Long: `Commands for inspecting and configuring storage backends.

Each backend is one configured instance of an engine type (localfile,
remoteftp, youtube, vimeo). Enabled backends are tried in the order shown
by "engines list" when media is ingested.`,
}

var enginesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured backends in attempt order",
	RunE:  runEnginesList,
}

var enginesTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List registered engine types",
	RunE:  runEnginesTypes,
}

var enginesAddCmd = &cobra.Command{
	Use:   "add <type>",
	Short: "Add a backend with the type's default configuration",
	Long: `Add a storage backend seeded from the engine type's defaults.

Config values are overridden with repeated --set flags:

  clipdeck engines add remoteftp --set host=ftp.example.com --set username=uploader`,
	Args: cobra.ExactArgs(1),
	RunE: runEnginesAdd,
}

var enginesEnableCmd = &cobra.Command{
	Use:   "enable <backend-id>",
	Short: "Enable a backend",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setEnabled(cmd, args[0], true) },
}

var enginesDisableCmd = &cobra.Command{
	Use:   "disable <backend-id>",
	Short: "Disable a backend",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setEnabled(cmd, args[0], false) },
}

func init() {
	enginesAddCmd.Flags().StringArrayVar(&enginesAddSet, "set", nil, "override a config key (key=value, repeatable)")
	enginesCmd.AddCommand(enginesListCmd, enginesTypesCmd, enginesAddCmd, enginesEnableCmd, enginesDisableCmd)
	rootCmd.AddCommand(enginesCmd)
}

func runEnginesList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	ordered, err := a.pipeline.EnabledEngines(ctx)
	if err != nil {
		return err
	}
	position := make(map[models.ULID]int, len(ordered))
	for i, e := range ordered {
		position[e.Backend().ID] = i + 1
	}

	all, err := a.backends.GetAll(ctx)
	if err != nil {
		return err
	}
	sort.SliceStable(all, func(i, j int) bool {
		pi, iOK := position[all[i].ID]
		pj, jOK := position[all[j].ID]
		if iOK != jOK {
			return iOK
		}
		return pi < pj
	})

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tID\tTYPE\tNAME\tENABLED")
	for _, b := range all {
		order := "-"
		if p, ok := position[b.ID]; ok {
			order = fmt.Sprintf("%d", p)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n",
			order, b.ID, b.EngineType, b.DisplayName, models.BoolVal(b.Enabled))
	}
	return w.Flush()
}

func runEnginesTypes(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tNAME\tSINGLETON")
	for _, t := range a.registry.Types() {
		d, _ := a.registry.Descriptor(t)
		fmt.Fprintf(w, "%s\t%s\t%t\n", d.Type, d.DisplayName, d.Singleton)
	}
	return w.Flush()
}

func runEnginesAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	backend, err := a.registry.DefaultBackend(args[0])
	if err != nil {
		return err
	}
	for _, kv := range enginesAddSet {
		key, value, found := strings.Cut(kv, "=")
		if !found || key == "" {
			return fmt.Errorf("invalid --set %q (want key=value)", kv)
		}
		backend.Config[key] = value
	}
	if err := a.backends.Create(ctx, backend); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "added %s backend %s\n", backend.EngineType, backend.ID)
	return nil
}

func setEnabled(cmd *cobra.Command, rawID string, enabled bool) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := models.ParseULID(rawID)
	if err != nil {
		return fmt.Errorf("invalid backend id: %w", err)
	}
	backend, err := a.backends.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if backend == nil {
		return fmt.Errorf("backend %s not found", id)
	}
	backend.Enabled = models.BoolPtr(enabled)
	if err := a.backends.Update(ctx, backend); err != nil {
		return err
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s backend %s\n", state, id)
	return nil
}
