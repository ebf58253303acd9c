package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/gravitrone/sprayctl/internal/api"
	"github.com/gravitrone/sprayctl/internal/config"
	"github.com/gravitrone/sprayctl/internal/spray"
)

// SprayClient is the subset of the ESP client the spray commands use.
type SprayClient interface {
	spray.Submitter
	DropZoneFiles(ctx context.Context, netAddress, dir string) (*api.DropZoneListing, error)
	FileList(ctx context.Context, zone api.DropZone, dir, mask string) ([]api.PhysicalFile, error)
	GetDFUWorkunit(ctx context.Context, wuid string) (*api.DFUWorkunit, error)
}

type sprayJSONOptions struct {
	group         string
	queue         string
	prefix        string
	format        string
	maxRecordSize string
	expireDays    string
	rowPath       string
	targets       []string

	sourceIP string
	zone     string
	dir      string
	match    string

	overwrite          bool
	replicate          bool
	noSplit            bool
	noCommon           bool
	compress           bool
	failIfNoSourceFile bool

	wait         bool
	pollInterval time.Duration
	quiet        bool
}

// SprayCmd returns the `sprayctl spray` command group.
func SprayCmd() *cobra.Command {
	var conn Connection
	cmd := &cobra.Command{
		Use:   "spray",
		Short: "Spray landing-zone files into logical files",
	}
	conn.AddFlags(cmd)
	cmd.AddCommand(sprayJSONCmd(&conn))
	return cmd
}

func sprayJSONCmd(conn *Connection) *cobra.Command {
	opts := sprayJSONOptions{}
	cmd := &cobra.Command{
		Use:   "json [source-path...]",
		Short: "Import JSON files, one spray workunit per file",
		Long: `Import JSON files from a landing zone. Each file becomes one SprayVariable
request. Files are given as full paths together with --source-ip, or picked
from a landing zone with --dropzone and --match.`,
		Example: `  sprayctl spray json --source-ip 10.0.0.5 --group mythor --queue dfuserver_queue /var/lib/HPCCSystems/mydropzone/people.json
  sprayctl spray json --dropzone mydropzone --match "**/*.json" --prefix imports --group mythor --queue dfuserver_queue`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, client, err := conn.session(cmd)
			if err != nil {
				return err
			}
			if opts.group == "" {
				opts.group = cfg.DefaultGroup
			}
			if opts.queue == "" {
				opts.queue = cfg.DefaultQueue
			}
			return runSprayJSON(cmd.Context(), opts, args, client, cfg, log, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&opts.group, "group", "g", "", "target group (default from config)")
	fs.StringVarP(&opts.queue, "queue", "q", "", "DFU server queue (default from config)")
	fs.StringVarP(&opts.prefix, "prefix", "p", "", "target scope, e.g. imports::2024")
	fs.StringVarP(&opts.format, "format", "f", spray.FormatASCII.String(), "source encoding name or key (1-9)")
	fs.StringVar(&opts.maxRecordSize, "max-record-size", "", "maximum record length in bytes")
	fs.StringVar(&opts.expireDays, "expire-days", "", "expire the logical file after this many days")
	fs.StringVar(&opts.rowPath, "row-path", spray.DefaultRowPath, "JSON row path applied to every file")
	fs.StringArrayVarP(&opts.targets, "target", "t", nil, "override a target name: FILE=NAME or INDEX=NAME (repeatable)")
	fs.StringVar(&opts.sourceIP, "source-ip", "", "landing-zone host for positional source paths")
	fs.StringVar(&opts.zone, "dropzone", "", "pick files from this landing zone (name or address)")
	fs.StringVar(&opts.dir, "dir", "", "directory inside the landing zone")
	fs.StringVar(&opts.match, "match", "*.json", "glob for --dropzone file selection (supports **)")
	fs.BoolVar(&opts.overwrite, "overwrite", false, "overwrite existing logical files")
	fs.BoolVar(&opts.replicate, "replicate", false, "replicate the logical file")
	fs.BoolVar(&opts.noSplit, "nosplit", false, "do not split the file across nodes")
	fs.BoolVar(&opts.noCommon, "no-common", true, "disable common-directory optimisation")
	fs.BoolVar(&opts.compress, "compress", false, "compress the logical file")
	fs.BoolVar(&opts.failIfNoSourceFile, "fail-if-no-source", false, "fail when a source file is missing")
	fs.BoolVarP(&opts.wait, "wait", "w", false, "poll each workunit until it finishes")
	fs.DurationVar(&opts.pollInterval, "poll-interval", 2*time.Second, "workunit poll interval with --wait")
	fs.BoolVar(&opts.quiet, "quiet", false, "no progress bar")
	return cmd
}

func runSprayJSON(ctx context.Context, opts sprayJSONOptions, args []string, client SprayClient, cfg *config.Config, log zerolog.Logger, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	selection, err := collectSelection(ctx, opts, args, client)
	if err != nil {
		return err
	}
	if len(selection) == 0 {
		return spray.ErrNoFiles
	}

	form, err := spray.NewForm(selection)
	if err != nil {
		return err
	}
	if err := applySprayOptions(form, opts); err != nil {
		return err
	}

	d := spray.NewDispatcher(client, nil, log)
	batch, err := d.Submit(ctx, form)
	if err != nil {
		var verr *spray.ValidationError
		if errors.As(err, &verr) {
			for _, f := range verr.Fields {
				fmt.Fprintf(errOut, "  %s: %s\n", f.Field, f.Message)
			}
		}
		return err
	}

	var bar *progressbar.ProgressBar
	if !opts.quiet {
		bar = progressbar.NewOptions(batch.Len(),
			progressbar.OptionSetDescription("spraying"),
			progressbar.OptionSetWriter(errOut),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionClearOnFinish(),
		)
	}
	for {
		if _, ok := batch.Next(); !ok {
			break
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	failed := 0
	for _, o := range batch.Wait() {
		switch {
		case o.Err != nil:
			failed++
			fmt.Fprintf(out, "FAIL %s -> %s: %v\n", o.Request.SourcePath, o.Request.DestLogicalName, o.Err)
		case o.WUID == "":
			fmt.Fprintf(out, "OK   %s -> %s (no workunit returned)\n", o.Request.SourcePath, o.Request.DestLogicalName)
		default:
			fmt.Fprintf(out, "OK   %s -> %s %s %s\n", o.Request.SourcePath, o.Request.DestLogicalName, o.WUID, spray.WorkunitURL(cfg.ESPURL, o.WUID))
			if opts.wait {
				wu, err := waitWorkunit(ctx, client, o.WUID, opts.pollInterval)
				if err != nil {
					failed++
					fmt.Fprintf(out, "     %s: %v\n", o.WUID, err)
					continue
				}
				fmt.Fprintf(out, "     %s %s\n", o.WUID, describeWorkunit(wu))
				if !strings.EqualFold(wu.StateMessage, "finished") {
					failed++
				}
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d sprays failed", failed, batch.Len())
	}
	return nil
}

func applySprayOptions(form *spray.Form, opts sprayJSONOptions) error {
	format, err := spray.ParseSourceFormat(opts.format)
	if err != nil {
		return err
	}
	form.SetDestGroup(opts.group)
	form.SetQueue(opts.queue)
	form.SetNamePrefix(opts.prefix)
	form.SetSourceFormat(format)
	form.SetMaxRecordSize(opts.maxRecordSize)
	form.SetExpireDays(opts.expireDays)

	flags := map[string]bool{
		spray.FlagOverwrite:          opts.overwrite,
		spray.FlagReplicate:          opts.replicate,
		spray.FlagNoSplit:            opts.noSplit,
		spray.FlagNoCommon:           opts.noCommon,
		spray.FlagCompress:           opts.compress,
		spray.FlagFailIfNoSourceFile: opts.failIfNoSourceFile,
	}
	for name, on := range flags {
		if err := form.SetFlag(name, on); err != nil {
			return err
		}
	}

	values := form.Values()
	for i := range values.SelectedFiles {
		if err := form.SetRowPath(i, opts.rowPath); err != nil {
			return err
		}
	}
	for _, t := range opts.targets {
		key, name, ok := strings.Cut(t, "=")
		if !ok {
			return fmt.Errorf("--target %q: want FILE=NAME or INDEX=NAME", t)
		}
		idx := targetIndex(values.SelectedFiles, key)
		if idx < 0 {
			return fmt.Errorf("--target %q: no selected file matches %q", t, key)
		}
		if err := form.SetTargetName(idx, name); err != nil {
			return err
		}
	}
	return nil
}

func targetIndex(rows []spray.SelectedFileRow, key string) int {
	if n, err := strconv.Atoi(key); err == nil {
		if n >= 0 && n < len(rows) {
			return n
		}
		return -1
	}
	for i, r := range rows {
		if r.SourceFile == key || path.Base(r.SourceFile) == key || r.TargetName == key {
			return i
		}
	}
	return -1
}

// collectSelection builds the file selection from positional paths or from a
// landing-zone listing filtered by --match.
func collectSelection(ctx context.Context, opts sprayJSONOptions, args []string, client SprayClient) ([]spray.LandingZoneFile, error) {
	if opts.zone == "" {
		if len(args) > 0 && opts.sourceIP == "" {
			return nil, fmt.Errorf("--source-ip is required with positional source paths")
		}
		selection := make([]spray.LandingZoneFile, 0, len(args))
		for _, p := range args {
			selection = append(selection, spray.LandingZoneFile{
				Name:       baseName(p),
				FullPath:   p,
				NetAddress: opts.sourceIP,
			})
		}
		return selection, spray.ValidateSelection(selection)
	}
	if len(args) > 0 {
		return nil, fmt.Errorf("positional source paths cannot be combined with --dropzone")
	}

	if !doublestar.ValidatePattern(opts.match) {
		return nil, fmt.Errorf("invalid --match pattern %q", opts.match)
	}
	zone, err := findZone(ctx, client, opts.zone)
	if err != nil {
		return nil, err
	}
	files, err := walkZone(ctx, client, zone, opts.dir, globDescends(opts.match))
	if err != nil {
		return nil, err
	}

	var selection []spray.LandingZoneFile
	for _, f := range files {
		ok, err := doublestar.Match(opts.match, f.rel)
		if err != nil {
			return nil, fmt.Errorf("match %s: %w", f.rel, err)
		}
		if ok {
			selection = append(selection, spray.FileFromListing(zone, f.dir, f.file))
		}
	}
	return selection, nil
}

func baseName(p string) string {
	p = strings.TrimRight(p, `/\`)
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}

func findZone(ctx context.Context, client SprayClient, nameOrAddr string) (api.DropZone, error) {
	listing, err := client.DropZoneFiles(ctx, "", "")
	if err != nil {
		return api.DropZone{}, fmt.Errorf("list landing zones: %w", err)
	}
	for _, z := range listing.DropZones {
		if strings.EqualFold(z.Name, nameOrAddr) || z.NetAddress == nameOrAddr {
			return z, nil
		}
	}
	names := make([]string, 0, len(listing.DropZones))
	for _, z := range listing.DropZones {
		names = append(names, z.Name)
	}
	sort.Strings(names)
	return api.DropZone{}, fmt.Errorf("landing zone %q not found (have: %s)", nameOrAddr, strings.Join(names, ", "))
}

type zoneEntry struct {
	dir  string
	rel  string
	file api.PhysicalFile
}

// walkZone lists dir inside zone and descends into the subdirectories that
// descend accepts. rel paths are relative to dir and use forward slashes.
func walkZone(ctx context.Context, client SprayClient, zone api.DropZone, dir string, descend func(rel string) bool) ([]zoneEntry, error) {
	sep := zone.PathSeparator()
	root := strings.Trim(strings.ReplaceAll(dir, `\`, "/"), "/")
	var out []zoneEntry
	queue := []string{""}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		zoneRel := path.Join(root, cur)
		if zoneRel == "." {
			zoneRel = ""
		}
		full := strings.TrimSuffix(zone.Path, sep) + sep
		if zoneRel != "" {
			full += strings.ReplaceAll(zoneRel, "/", sep) + sep
		}
		files, err := client.FileList(ctx, zone, full, "")
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", full, err)
		}
		for _, f := range files {
			rel := f.Name
			if cur != "" {
				rel = cur + "/" + f.Name
			}
			if f.IsDir {
				if descend != nil && descend(rel) {
					queue = append(queue, rel)
				}
				continue
			}
			out = append(out, zoneEntry{dir: strings.ReplaceAll(zoneRel, "/", sep), rel: rel, file: f})
		}
	}
	return out, nil
}

// globDescends returns a walk filter that only enters directories able to
// hold a match for pattern.
func globDescends(pattern string) func(rel string) bool {
	return func(rel string) bool {
		if pattern == "" {
			return false
		}
		if strings.Contains(pattern, "**") || strings.Contains(pattern, "{") {
			return true
		}
		segs := strings.Split(pattern, "/")
		parts := strings.Split(rel, "/")
		if len(parts) >= len(segs) {
			return false
		}
		ok, err := doublestar.Match(strings.Join(segs[:len(parts)], "/"), rel)
		return err == nil && ok
	}
}

func waitWorkunit(ctx context.Context, client SprayClient, wuid string, every time.Duration) (*api.DFUWorkunit, error) {
	if every <= 0 {
		every = 2 * time.Second
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		wu, err := client.GetDFUWorkunit(ctx, wuid)
		if err != nil {
			return nil, err
		}
		if wu.Finished() {
			return wu, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func describeWorkunit(wu *api.DFUWorkunit) string {
	parts := []string{wu.StateMessage}
	if wu.PercentDone > 0 && !strings.EqualFold(wu.StateMessage, "finished") {
		parts = append(parts, fmt.Sprintf("%d%%", wu.PercentDone))
	}
	if wu.SummaryMessage != "" {
		parts = append(parts, wu.SummaryMessage)
	} else if wu.ProgressMessage != "" {
		parts = append(parts, wu.ProgressMessage)
	}
	return strings.Join(parts, " ")
}
