package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-kit/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/astroprop/internal/config"
	"github.com/san-kum/astroprop/internal/constants"
	"github.com/san-kum/astroprop/internal/ephemeris"
)

func listBodies(cmd *cobra.Command, args []string) error {
	consts := constants.Default(logger)

	t := newTable("BODY", "MU (km³/s²)", "RADIUS (km)", "DENSITY (kg/m³)")
	for _, id := range consts.Supported() {
		t.Row(id,
			fmt.Sprintf("%.6e", consts.Lookup(id)),
			fmt.Sprintf("%.1f", consts.Radius(id)),
			fmt.Sprintf("%.0f", consts.Density(id)),
		)
	}

	fmt.Println(t.Render())
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	t := newTable("PRESET", "BODIES", "DT", "SPAN")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		t.Row(name,
			strings.Join(p.Bodies, ", "),
			fmt.Sprintf("%gs", p.StepSize),
			fmt.Sprintf("%.1fd", p.RunTime/constants.SecondsPerDay),
		)
	}

	fmt.Println(t.Render())
	return nil
}

// convertHorizons reads saved Horizons vector tables, one per body named
// after the file stem, and writes them as a single ephemeris document.
func convertHorizons(cmd *cobra.Command, args []string) error {
	samples := make(ephemeris.Samples, len(args))
	for _, path := range args {
		id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		list, err := ephemeris.ParseVectorTable(f, log.With(logger, "body", id))
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		samples[id] = list
	}

	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := ephemeris.EncodeDocument(w, "", samples); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}
