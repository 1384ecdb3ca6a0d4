package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/LucasGeos/GKG/internal/document"
	"github.com/LucasGeos/GKG/internal/journey"
	"github.com/LucasGeos/GKG/internal/logging"
	"github.com/LucasGeos/GKG/internal/selectservice"
)

func selectCommand() *cli.Command {
	return &cli.Command{
		Name:  "select",
		Usage: "Compute one selection from files, without the cache",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "job", Aliases: []string{"j"}, Usage: "Job document (subgraph and result)"},
			&cli.StringFlag{Name: "subgraph", Usage: "Subgraph document, used with --routing"},
			&cli.StringFlag{Name: "routing", Usage: "Routing result document, used with --subgraph"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output file (stdout when empty)"},
			&cli.StringFlag{Name: "format", Value: "json", Usage: "Output format: json or geojson"},
			&cli.IntFlag{Name: "scale", Value: 4, Usage: "Conceptual scale for geojson output"},
			&cli.BoolFlag{Name: "indent", Usage: "Indent the output"},
		},
		Action: runSelect,
	}
}

func readJob(cmd *cli.Command) (*document.Job, error) {
	if p := cmd.String("job"); p != "" {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		return document.DecodeJob(p, data)
	}

	subPath, routePath := cmd.String("subgraph"), cmd.String("routing")
	if subPath == "" || routePath == "" {
		return nil, fmt.Errorf("either --job or both --subgraph and --routing are required")
	}
	data, err := os.ReadFile(subPath)
	if err != nil {
		return nil, err
	}
	sub, err := document.DecodeSubgraph(subPath, data)
	if err != nil {
		return nil, err
	}
	if data, err = os.ReadFile(routePath); err != nil {
		return nil, err
	}
	routing, err := document.DecodeRouting(routePath, data)
	if err != nil {
		return nil, err
	}
	return &document.Job{Name: document.Stem(subPath), Subgraph: *sub, Result: *routing}, nil
}

func runSelect(_ context.Context, cmd *cli.Command) error {
	logger := logging.New(slog.LevelInfo, logging.FormatText, os.Stderr)

	job, err := readJob(cmd)
	if err != nil {
		return err
	}
	res, err := selectservice.Select(job)
	if err != nil {
		return err
	}
	for _, u := range res.Unmapped {
		logger.Warn(u.Error())
	}
	logger.Info("selection computed",
		slog.String("name", job.Name),
		slog.Int("variables", res.Variables),
		slog.Int("arcs", res.Arcs),
		slog.Int("roots", res.Stats.Roots),
		slog.Int("missing_roots", len(res.Stats.MissingRoots)),
		slog.Any("selected", res.Payload.Selected()))

	var out []byte
	switch cmd.String("format") {
	case "json":
		out, err = json.Marshal(res.Payload)
	case "geojson":
		fc, gerr := res.Payload.GeoJSON(int(cmd.Int("scale")))
		if gerr != nil {
			return gerr
		}
		out, err = fc.MarshalJSON()
	default:
		return fmt.Errorf("unknown format %q (json or geojson)", cmd.String("format"))
	}
	if err != nil {
		return err
	}
	if cmd.Bool("indent") {
		var buf bytes.Buffer
		if err := json.Indent(&buf, out, "", "  "); err != nil {
			return err
		}
		out = buf.Bytes()
	}
	out = append(out, '\n')

	if p := cmd.String("out"); p != "" {
		return os.WriteFile(p, out, 0o644)
	}
	_, err = stdout(cmd).Write(out)
	return err
}

func schemesCommand() *cli.Command {
	return &cli.Command{
		Name:  "schemes",
		Usage: "Print the propagation templates and the node table",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Value: "yaml", Usage: "Output format: yaml or json"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			table := struct {
				Templates map[journey.Template]journey.Matrix `json:"templates" yaml:"templates"`
				Mappings  []journey.Mapping                   `json:"mappings" yaml:"mappings"`
			}{
				Templates: make(map[journey.Template]journey.Matrix),
				Mappings:  journey.Mappings(),
			}
			for _, t := range journey.Templates() {
				table.Templates[t] = *journey.Scheme(t)
			}

			w := stdout(cmd)
			switch cmd.String("format") {
			case "yaml":
				enc := yaml.NewEncoder(w)
				enc.SetIndent(2)
				if err := enc.Encode(table); err != nil {
					return err
				}
				return enc.Close()
			case "json":
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(table)
			default:
				return fmt.Errorf("unknown format %q (yaml or json)", cmd.String("format"))
			}
		},
	}
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}
