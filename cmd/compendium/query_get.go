package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"compendium/internal/config"
)

func queryGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <category> <id>",
		Short: "Display one entry and its derived fields",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryGet(cmd, args[0], args[1])
		},
	}
	return cmd
}

func runQueryGet(cmd *cobra.Command, category, id string) error {
	ctx := context.Background()

	cfg, err := config.Load("compendium.yaml")
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	entry, err := db.GetEntry(ctx, category, id)
	if err != nil {
		return err
	}
	if entry == nil {
		fmt.Fprintf(os.Stdout, "No %s entry with id %q.\n", category, id)
		return nil
	}

	fmt.Fprintf(os.Stdout, "Name:     %s\n", entry.Name)
	fmt.Fprintf(os.Stdout, "Category: %s\n", entry.Category)
	fmt.Fprintf(os.Stdout, "ID:       %s\n", entry.ID)
	if entry.Level != nil {
		fmt.Fprintf(os.Stdout, "Level:    %d\n", *entry.Level)
	}
	if entry.Usage != "" {
		fmt.Fprintf(os.Stdout, "Usage:    %s\n", entry.Usage)
	}
	if entry.Defense != "" {
		fmt.Fprintf(os.Stdout, "Defense:  %s\n", entry.Defense)
	}
	if entry.RangeType != "" {
		rng := entry.RangeType
		if entry.RangeValue != nil {
			rng = fmt.Sprintf("%s %d", rng, *entry.RangeValue)
		}
		fmt.Fprintf(os.Stdout, "Range:    %s\n", rng)
	}
	if entry.AreaType != "" {
		area := entry.AreaType
		if entry.AreaSize != nil {
			area = fmt.Sprintf("%s %d", area, *entry.AreaSize)
		}
		fmt.Fprintf(os.Stdout, "Area:     %s\n", area)
	}
	if len(entry.Keywords) > 0 {
		fmt.Fprintf(os.Stdout, "Keywords: %s\n", strings.Join(entry.Keywords, ", "))
	}
	if len(entry.DamageTypes) > 0 {
		fmt.Fprintf(os.Stdout, "Damage:   %s\n", strings.Join(entry.DamageTypes, ", "))
	}
	if len(entry.Conditions) > 0 {
		fmt.Fprintf(os.Stdout, "Inflicts: %s\n", strings.Join(entry.Conditions, ", "))
	}

	if len(entry.Fields) == 0 {
		return nil
	}

	keys := make([]string, 0, len(entry.Fields))
	for key := range entry.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Fprintln(os.Stdout, "Fields:")
	for _, key := range keys {
		fmt.Fprintf(os.Stdout, "  %s: %s\n", key, entry.Fields[key])
	}
	return nil
}
