package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/encoding/prototext"

	"github.com/pointfusion/detconfig/config"
	"github.com/pointfusion/detconfig/protos"
)

type validationResult struct {
	file string
	err  error
}

// ValidateAction parses and validates every file argument, in parallel,
// and renders one result row per file.
func ValidateAction(c *cli.Context) error {
	files := c.Args().Slice()
	if len(files) == 0 {
		return errors.New("no config files given")
	}
	results := make([]validationResult, len(files))
	var group errgroup.Group
	for i, file := range files {
		i, file := i, file
		group.Go(func() error {
			var err error
			if c.Bool("dataset") {
				_, err = config.ReadDatasetConfig(file, logger)
			} else {
				_, err = config.Read(file, logger)
			}
			results[i] = validationResult{file: file, err: err}
			return nil
		})
	}
	//nolint:errcheck // the goroutines only record results
	group.Wait()

	tw := table.NewWriter()
	tw.SetOutputMirror(c.App.Writer)
	tw.AppendHeader(table.Row{"FILE", "STATUS", "DETAIL"})
	var failed int
	for _, res := range results {
		if res.err != nil {
			failed++
			tw.AppendRow(table.Row{res.file, color.RedString("FAIL"), res.err.Error()})
			continue
		}
		tw.AppendRow(table.Row{res.file, color.GreenString("OK"), ""})
	}
	tw.Render()
	if failed != 0 {
		return errors.Errorf("%d of %d configs failed validation", failed, len(results))
	}
	return nil
}

// ShowAction prints a single config, either as normalized config text
// or, with --json, as the typed form with schema defaults resolved.
func ShowAction(c *cli.Context) error {
	file := c.Args().First()
	if file == "" {
		return errors.New("no config file given")
	}
	if c.Bool("json") {
		cfg, err := config.Read(file, logger)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, string(data))
		return nil
	}
	msg, err := config.ReadMessage(file)
	if err != nil {
		return err
	}
	out, err := prototext.MarshalOptions{Multiline: true, Indent: "    ", AllowPartial: true}.Marshal(msg)
	if err != nil {
		return err
	}
	fmt.Fprint(c.App.Writer, string(out))
	return nil
}

// DiffAction compares two config files and prints the changed sections
// along with a pretty text diff.
func DiffAction(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return errors.New("diff takes exactly two config files")
	}
	left, err := config.Read(c.Args().Get(0), logger)
	if err != nil {
		return err
	}
	right, err := config.Read(c.Args().Get(1), logger)
	if err != nil {
		return err
	}
	diff, err := config.DiffConfigs(left, right)
	if err != nil {
		return err
	}
	if diff.Equal {
		fmt.Fprintln(c.App.Writer, "configs are identical")
		return nil
	}
	fmt.Fprintf(c.App.Writer, "changed sections: %v\n\n", diff.ChangedSections)
	fmt.Fprint(c.App.Writer, diff.PrettyDiff)
	return nil
}

// SchemaAction prints the schema: the section list by default, a
// section's JSON Schema when named, or the schema sources with --proto.
func SchemaAction(c *cli.Context) error {
	if c.Bool("proto") {
		srcs, err := protos.Files()
		if err != nil {
			return err
		}
		names, err := protos.MessageNames()
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "// %d messages: %v\n", len(names), names)
		for _, name := range sortedKeys(srcs) {
			fmt.Fprintf(c.App.Writer, "\n// %s\n%s", name, srcs[name])
		}
		return nil
	}
	if section := c.Args().First(); section != "" {
		schema, ok := config.RegisteredSectionSchemas[section]
		if !ok {
			return errors.Errorf("unknown section %q, known sections: %v", section, config.SectionNames())
		}
		data, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, string(data))
		return nil
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(c.App.Writer)
	tw.AppendHeader(table.Row{"SECTION"})
	for _, name := range config.SectionNames() {
		tw.AppendRow(table.Row{name})
	}
	tw.Render()
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
