// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Command fwpolicy flattens and queries FortiGate firewall
// configurations (SPEC_FULL.md §4.9). Every subcommand accepts an
// optional -settings file to load the flatten/lookup defaults and
// server listener from, grounded on the teacher's flywall-sim
// flag.Parse()-then-subcommand dispatch (cmd/flywall-sim/main.go).
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"grimm.is/fwpolicy/internal/api"
	"grimm.is/fwpolicy/internal/auth"
	"grimm.is/fwpolicy/internal/config"
	"grimm.is/fwpolicy/internal/csvout"
	"grimm.is/fwpolicy/internal/fgconfig"
	"grimm.is/fwpolicy/internal/logging"
	"grimm.is/fwpolicy/internal/pipeline"
	"grimm.is/fwpolicy/internal/store"
	"grimm.is/fwpolicy/internal/validation"
)

func main() {
	settingsPath := flag.String("settings", "", "Path to an HCL settings file")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	settings, err := loadSettings(*settingsPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logging.Default()

	var cmdErr error
	switch args[0] {
	case "flatten":
		cmdErr = runFlatten(settings, args[1:])
	case "lookup":
		cmdErr = runLookup(settings, args[1:])
	case "listings":
		cmdErr = runListings(args[1:])
	case "init-settings":
		cmdErr = runInitSettings(args[1:])
	case "serve":
		cmdErr = runServe(log, settings)
	default:
		usage()
		os.Exit(2)
	}

	if cmdErr != nil {
		fmt.Fprintln(os.Stderr, cmdErr)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: fwpolicy [-settings file.hcl] <command> [args]

commands:
  flatten <config-file>               render flattened policy CSV
  lookup <config-file> <list-file>    render lookup CSV (all, without-ineffectual)
  listings <config-file>              render address/service listings CSV
  init-settings <file.hcl>            write a default settings file
  serve                                start the HTTP API (server.listen from settings)`)
}

func loadSettings(path string) (*config.Settings, error) {
	if path == "" {
		return config.Default(), nil
	}
	if err := validation.ValidatePath(path, nil); err != nil {
		return nil, err
	}
	f, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := f.Settings.Validate(); err != nil {
		return nil, err
	}
	return f.Settings, nil
}

func runFlatten(settings *config.Settings, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: fwpolicy flatten <config-file>")
	}
	configText, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	run := pipeline.New(logging.Default())
	run.MakeList(pipeline.MakeListRequest{ConfigText: string(configText)})
	resp := run.Flatten(pipeline.FlattenRequest{
		FlattenAddresses: settings.FlattenAddresses,
		FlattenServices:  settings.FlattenServices,
	})
	fmt.Println(resp.Text)
	return nil
}

func runLookup(settings *config.Settings, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: fwpolicy lookup <config-file> <list-file>")
	}
	configText, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	listText, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}

	run := pipeline.New(logging.Default())
	run.MakeList(pipeline.MakeListRequest{ConfigText: string(configText)})
	run.Flatten(pipeline.FlattenRequest{
		FlattenAddresses: settings.FlattenAddresses,
		FlattenServices:  settings.FlattenServices,
	})
	resp := run.Lookup(pipeline.LookupRequest{
		ListText:        string(listText),
		FQDNGeoMatchAll: settings.FQDNGeoMatchAll,
	})

	fmt.Println("# all matches")
	fmt.Println(resp.AllText)
	fmt.Println("# without ineffectual")
	fmt.Println(resp.WithoutIneffectualText)
	return nil
}

func runListings(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: fwpolicy listings <config-file>")
	}
	configText, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	st := store.New()
	fgconfig.Parse(string(configText), st)
	for _, name := range st.DomainNames() {
		fmt.Println(csvout.FormatListings(st.Domains[name]))
	}
	return nil
}

func runInitSettings(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: fwpolicy init-settings <file.hcl>")
	}
	return config.WriteDefault(args[0])
}

func runServe(log *logging.Logger, settings *config.Settings) error {
	if settings.Server == nil {
		return fmt.Errorf("settings has no server block")
	}

	var tokens *auth.Store
	if settings.Server.TokenStore != "" {
		var err error
		tokens, err = auth.NewStore(settings.Server.TokenStore)
		if err != nil {
			return err
		}
	}

	registry := prometheus.NewRegistry()
	metrics := api.NewMetrics(registry)
	a := api.New(log, tokens, settings.Server.RequireAuth, metrics)

	router := mux.NewRouter()
	a.RegisterRoutes(router)

	log.Info("fwpolicy API starting", "listen", settings.Server.Listen)
	return http.ListenAndServe(settings.Server.Listen, router)
}
