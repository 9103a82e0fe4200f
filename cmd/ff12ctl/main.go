package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"

	"github.com/CerulanLumina/ff12tza-utils/internal/battlepack"
	"github.com/CerulanLumina/ff12tza-utils/internal/common"
	"github.com/CerulanLumina/ff12tza-utils/internal/gamedata"
	"github.com/CerulanLumina/ff12tza-utils/internal/report"
	"github.com/CerulanLumina/ff12tza-utils/internal/treasure"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// Exit codes, one per failure class, so scripted callers can tell a missing
// input from a bad pack from a failed write.
const (
	exitUsage        = 1
	exitOpenOrParse  = 2
	exitCreateOutput = 3
	exitWrite        = 4
	exitDataFiles    = 5
	exitNoSignature  = 7
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	cmd := os.Args[1]
	switch cmd {
	case "unpack":
		unpackCmd(os.Args[2:])
	case "repack":
		repackCmd(os.Args[2:])
	case "patch-flying-flag":
		patchFlyingFlagCmd(os.Args[2:])
	case "undo":
		undoCmd(os.Args[2:])
	case "treasure":
		treasureCmd(os.Args[2:])
	case "version":
		fmt.Printf("ff12ctl %s (built %s)\n", version, buildDate)
	default:
		usage()
	}
}

func usage() {
	fmt.Printf(`ff12ctl %s (built %s) <command> [options]

Commands:
  unpack    --in <battle_pack.bin> [--out <dir>] [--progress] [--metrics]
  repack    --in <dir> --out <battle_pack.bin> [--progress] [--metrics]
  patch-flying-flag --in <file> [--audit <audit.jsonl>] [--no-audit]
  undo      --in <patched file> --audit <audit.jsonl> --out <restored file>
  treasure  --in <dir> [--out <dir>] [--maps] [--pdf <report.pdf>] [--json <report.json>] [--src-pack <file>] [--treasure-data <file>] [--item-data <file>]

Most commands also accept --config <config.yaml>.
`, version, buildDate)
}

type logConfig struct {
	Directory  string `yaml:"directory"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	MaxBackups int    `yaml:"maxBackups"`
	Compress   bool   `yaml:"compress"`
}

type config struct {
	TreasureData string    `yaml:"treasureData"`
	ItemData     string    `yaml:"itemData"`
	Logs         logConfig `yaml:"logs"`
}

func loadConfig(path string) (config, error) {
	var cfg config
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	baseDir := filepath.Dir(path)
	resolvePath := func(p string) string {
		p = strings.TrimSpace(p)
		if p == "" {
			return ""
		}
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		candidate := filepath.Clean(filepath.Join(baseDir, p))
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		return filepath.Clean(p)
	}
	cfg.TreasureData = resolvePath(cfg.TreasureData)
	cfg.ItemData = resolvePath(cfg.ItemData)
	cfg.Logs.Directory = resolvePath(cfg.Logs.Directory)
	if cfg.Logs.MaxSizeMB <= 0 {
		cfg.Logs.MaxSizeMB = 25
	}
	if cfg.Logs.MaxAgeDays <= 0 {
		cfg.Logs.MaxAgeDays = 7
	}
	if cfg.Logs.MaxBackups <= 0 {
		cfg.Logs.MaxBackups = 5
	}
	return cfg, nil
}

func setupLogging(cfg config) error {
	if cfg.Logs.Directory == "" {
		return nil
	}
	if err := os.MkdirAll(cfg.Logs.Directory, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Logs.Directory, "ff12ctl.log"),
		MaxSize:    cfg.Logs.MaxSizeMB,
		MaxAge:     cfg.Logs.MaxAgeDays,
		MaxBackups: cfg.Logs.MaxBackups,
		Compress:   cfg.Logs.Compress,
	}
	common.SetLogOutput(io.MultiWriter(os.Stderr, rotator))
	return nil
}

// applyConfig loads the optional YAML config and wires up log rotation.
// Errors here are fatal: a config the operator pointed at must parse.
func applyConfig(path string) config {
	if strings.TrimSpace(path) == "" {
		return config{}
	}
	cfg, err := loadConfig(path)
	if err != nil {
		fmt.Println("load config:", err)
		os.Exit(exitUsage)
	}
	if err := setupLogging(cfg); err != nil {
		fmt.Println("setup logging:", err)
		os.Exit(exitUsage)
	}
	return cfg
}

func unpackCmd(args []string) {
	fs := flag.NewFlagSet("unpack", flag.ExitOnError)
	in := fs.String("in", "", "battle pack to unpack")
	out := fs.String("out", "", "output directory (default: <in>.unpacked)")
	configPath := fs.String("config", "", "path to configuration file")
	metricsFlag := fs.Bool("metrics", false, "print throughput metrics")
	progressFlag := fs.Bool("progress", false, "display progress updates")
	fs.Parse(args)
	applyConfig(*configPath)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(exitUsage)
	}
	outDir := *out
	if outDir == "" {
		outDir = *in + ".unpacked"
	}

	r, err := battlepack.NewReader(*in)
	if err != nil {
		fmt.Println("open pack:", err)
		os.Exit(exitOpenOrParse)
	}
	defer r.Close()

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Println("create output dir:", err)
		os.Exit(exitCreateOutput)
	}

	var metrics *common.Metrics
	if *metricsFlag || *progressFlag {
		metrics = common.NewMetrics()
		if info, err := os.Stat(*in); err == nil {
			metrics.SetTotalBytes(info.Size())
		}
		metrics.Start()
	}
	var stopProgress func()
	if metrics != nil && *progressFlag {
		stopProgress = common.StartProgressPrinter(os.Stderr, metrics, 500*time.Millisecond)
	}

	for i := 0; i < r.SectionCount(); i++ {
		size, err := r.SectionSize(i)
		if err != nil {
			fmt.Println("section size:", err)
			os.Exit(exitOpenOrParse)
		}
		fmt.Printf("Exporting section %d, %d bytes.\n", i, size)
		dst := filepath.Join(outDir, sectionFileName(i))
		f, err := os.Create(dst)
		if err != nil {
			fmt.Println("create section file:", err)
			os.Exit(exitCreateOutput)
		}
		n, err := r.ExtractSection(i, f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			fmt.Println("write section:", err)
			os.Exit(exitWrite)
		}
		if metrics != nil {
			metrics.AddSection(n)
		}
	}

	if stopProgress != nil {
		stopProgress()
	}
	if metrics != nil {
		metrics.Stop()
	}
	fmt.Printf("Unpacked %d section(s) to %s\n", r.SectionCount(), outDir)
	if metrics != nil && *metricsFlag {
		printMetrics(metrics.Snapshot())
	}
}

func repackCmd(args []string) {
	fs := flag.NewFlagSet("repack", flag.ExitOnError)
	in := fs.String("in", "", "directory of section_NN.bin files")
	out := fs.String("out", "", "battle pack to write")
	configPath := fs.String("config", "", "path to configuration file")
	metricsFlag := fs.Bool("metrics", false, "print throughput metrics")
	progressFlag := fs.Bool("progress", false, "display progress updates")
	fs.Parse(args)
	applyConfig(*configPath)

	if *in == "" || *out == "" {
		fmt.Println("required: --in, --out")
		os.Exit(exitUsage)
	}

	sections, err := collectSectionFiles(*in)
	if err != nil {
		fmt.Println("scan input dir:", err)
		os.Exit(exitUsage)
	}
	if len(sections) == 0 {
		fmt.Println("no section_NN.bin files found in", *in)
		os.Exit(exitUsage)
	}

	dst, err := os.Create(*out)
	if err != nil {
		fmt.Println("create output:", err)
		os.Exit(exitCreateOutput)
	}
	defer dst.Close()

	var metrics *common.Metrics
	if *metricsFlag || *progressFlag {
		metrics = common.NewMetrics()
		metrics.Start()
	}
	var stopProgress func()
	if metrics != nil && *progressFlag {
		stopProgress = common.StartProgressPrinter(os.Stderr, metrics, 500*time.Millisecond)
	}

	w, err := battlepack.NewWriter(dst, len(sections))
	if err != nil {
		fmt.Println("start pack:", err)
		os.Exit(exitWrite)
	}
	for _, path := range sections {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Println("read section:", err)
			os.Exit(exitOpenOrParse)
		}
		if err := w.WriteSection(data); err != nil {
			fmt.Println("write section:", err)
			os.Exit(exitWrite)
		}
		if metrics != nil {
			metrics.AddSection(int64(len(data)))
		}
	}
	if err := w.Close(); err != nil {
		fmt.Println("finalize pack:", err)
		os.Exit(exitWrite)
	}
	if err := dst.Sync(); err != nil {
		fmt.Println("sync output:", err)
		os.Exit(exitWrite)
	}

	if stopProgress != nil {
		stopProgress()
	}
	if metrics != nil {
		metrics.Stop()
	}
	fmt.Printf("Packed %d section(s) into %s\n", len(sections), *out)
	if metrics != nil && *metricsFlag {
		printMetrics(metrics.Snapshot())
	}
}

func patchFlyingFlagCmd(args []string) {
	fs := flag.NewFlagSet("patch-flying-flag", flag.ExitOnError)
	in := fs.String("in", "", "battle pack or unpacked section file to patch")
	auditPath := fs.String("audit", "", "audit log output (jsonl, default: <in>.audit.jsonl)")
	noAudit := fs.Bool("no-audit", false, "skip writing the audit log")
	configPath := fs.String("config", "", "path to configuration file")
	fs.Parse(args)
	applyConfig(*configPath)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(exitUsage)
	}

	var audit *common.PatchLog
	if !*noAudit {
		path := *auditPath
		if path == "" {
			path = *in + ".audit.jsonl"
		}
		audit = common.NewPatchLog(path)
	}

	changed, err := battlepack.AllowAllFlying(*in, audit)
	switch {
	case errors.Is(err, battlepack.ErrSignatureNotFound):
		fmt.Println("equipment signature not found; file left untouched")
		os.Exit(exitNoSignature)
	case errors.Is(err, os.ErrNotExist):
		fmt.Println("open input:", err)
		os.Exit(exitOpenOrParse)
	case err != nil:
		fmt.Println("patch:", err)
		os.Exit(exitWrite)
	}

	fmt.Println("Located appropriate section.")
	fmt.Println("Made all weapons in battle pack able to hit flying enemies.")
	fmt.Printf("%d record(s) changed.\n", changed)
	if audit != nil {
		fmt.Printf("Audit log: %s\n", audit.Path())
	}
}

func undoCmd(args []string) {
	fs := flag.NewFlagSet("undo", flag.ExitOnError)
	in := fs.String("in", "", "patched file")
	audit := fs.String("audit", "", "audit log (jsonl)")
	out := fs.String("out", "", "restored output file")
	configPath := fs.String("config", "", "path to configuration file")
	fs.Parse(args)
	applyConfig(*configPath)

	if *in == "" || *audit == "" || *out == "" {
		fmt.Println("required: --in, --audit, --out")
		os.Exit(exitUsage)
	}

	entries, err := common.ReadPatchLog(*audit)
	if err != nil {
		fmt.Println("read audit:", err)
		os.Exit(exitOpenOrParse)
	}
	if len(entries) == 0 {
		fmt.Println("audit log is empty")
		os.Exit(exitUsage)
	}

	patchedHash, _, err := common.Sha256OfFile(*in)
	if err != nil {
		fmt.Println("hash input:", err)
		os.Exit(exitOpenOrParse)
	}

	if err := common.CopyFile(*in, *out); err != nil {
		fmt.Println("copy input:", err)
		os.Exit(exitCreateOutput)
	}

	f, err := os.OpenFile(*out, os.O_RDWR, 0)
	if err != nil {
		fmt.Println("open output:", err)
		os.Exit(exitCreateOutput)
	}
	defer f.Close()

	mismatches := 0
	applied := 0
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		before, err := entry.BeforeBytes()
		if err != nil {
			fmt.Printf("skip entry %d: decode beforeHex failed: %v\n", i, err)
			continue
		}
		after, err := entry.AfterBytes()
		if err != nil {
			fmt.Printf("skip entry %d: decode afterHex failed: %v\n", i, err)
			continue
		}
		if entry.Offset < 0 {
			fmt.Printf("skip entry %d: invalid offset %d\n", i, entry.Offset)
			continue
		}
		mismatch := false
		if len(after) != len(before) {
			mismatch = true
		}
		if len(after) > 0 {
			buf := make([]byte, len(after))
			if _, err := f.ReadAt(buf, entry.Offset); err != nil || !bytes.Equal(buf, after) {
				mismatch = true
			}
		}
		if len(before) > 0 {
			if _, err := f.WriteAt(before, entry.Offset); err != nil {
				fmt.Println("write patch:", err)
				os.Exit(exitWrite)
			}
		}
		if mismatch {
			mismatches++
		}
		applied++
	}

	if err := f.Sync(); err != nil {
		fmt.Println("sync output:", err)
		os.Exit(exitWrite)
	}

	restoredHash, _, err := common.Sha256OfFile(*out)
	if err != nil {
		fmt.Println("hash restored:", err)
		os.Exit(exitOpenOrParse)
	}

	fmt.Printf("Restored %d patch(es) to %s\n", applied, *out)
	fmt.Printf("Patched SHA256: %s\n", patchedHash)
	fmt.Printf("Restored SHA256: %s\n", restoredHash)
	if mismatches > 0 {
		fmt.Printf("Warning: %d patch(es) did not match expected patched bytes; original bytes reapplied regardless.\n", mismatches)
	}
}

func treasureCmd(args []string) {
	fs := flag.NewFlagSet("treasure", flag.ExitOnError)
	in := fs.String("in", "", "directory of .ebp zone files")
	out := fs.String("out", "", "report output directory (default: stdout)")
	maps := fs.Bool("maps", false, "write an SVG chest map per zone")
	pdfOut := fs.String("pdf", "", "write a summary PDF report")
	jsonOut := fs.String("json", "", "write a summary JSON report")
	srcPack := fs.String("src-pack", "", "source archive to fingerprint in the report")
	treasureData := fs.String("treasure-data", "", "treasure reference JSON (default: $TREASURE_DATA)")
	itemData := fs.String("item-data", "", "item name JSON (default: $ITEM_DATA)")
	configPath := fs.String("config", "", "path to configuration file")
	fs.Parse(args)
	cfg := applyConfig(*configPath)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(exitUsage)
	}
	if *maps && *out == "" {
		fmt.Println("--maps requires --out")
		os.Exit(exitUsage)
	}

	treasurePath := firstNonEmpty(*treasureData, cfg.TreasureData, os.Getenv("TREASURE_DATA"))
	itemPath := firstNonEmpty(*itemData, cfg.ItemData, os.Getenv("ITEM_DATA"))

	zones, err := gamedata.EnsureTreasureTable(treasurePath)
	if err != nil {
		fmt.Println("treasure data:", err)
		os.Exit(exitDataFiles)
	}
	items, err := gamedata.EnsureItemTable(itemPath)
	if err != nil {
		fmt.Println("item data:", err)
		os.Exit(exitDataFiles)
	}

	dumps, err := treasure.Dump(treasure.DumpOptions{
		InputDir:  *in,
		OutputDir: *out,
		Treasure:  zones,
		Items:     items,
		Maps:      *maps,
	})
	if err != nil {
		fmt.Println("dump:", err)
		os.Exit(exitUsage)
	}
	fmt.Printf("Dumped %d zone(s).\n", len(dumps))

	if *pdfOut == "" && *jsonOut == "" {
		return
	}
	rep := buildTreasureReport(*in, *srcPack, dumps)
	if *jsonOut != "" {
		if err := report.SaveTreasureJSON(rep, *jsonOut); err != nil {
			fmt.Println("write json report:", err)
			os.Exit(exitWrite)
		}
	}
	if *pdfOut != "" {
		if err := report.SaveTreasurePDF(rep, *pdfOut); err != nil {
			fmt.Println("write pdf report:", err)
			os.Exit(exitWrite)
		}
	}
}

func buildTreasureReport(inputDir, srcPack string, dumps []treasure.ZoneDump) report.TreasureReport {
	rep := report.TreasureReport{
		SourceDir:   inputDir,
		GeneratedAt: time.Now().UTC(),
	}
	if srcPack != "" {
		hash, _, err := common.Sha256OfFile(srcPack)
		if err != nil {
			common.Logf("hash source pack: %v", err)
		} else {
			rep.SourceHash = hash
		}
	}
	for _, dump := range dumps {
		respawning := 0
		for _, record := range dump.Records {
			if record.RespawnSlot != 0xFF {
				respawning++
			}
		}
		rep.Zones = append(rep.Zones, report.ZoneSummary{
			Group:      dump.Group,
			Zone:       dump.Zone.Name,
			Chests:     len(dump.Records),
			Respawning: respawning,
		})
	}
	sort.Slice(rep.Zones, func(i, j int) bool {
		if rep.Zones[i].Group != rep.Zones[j].Group {
			return rep.Zones[i].Group < rep.Zones[j].Group
		}
		return rep.Zones[i].Zone < rep.Zones[j].Zone
	})
	return rep
}

func sectionFileName(index int) string {
	return fmt.Sprintf("section_%02d.bin", index)
}

// collectSectionFiles returns the section_NN.bin files of dir sorted by
// their numeric index. Anything else in the directory is ignored.
func collectSectionFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	type indexed struct {
		index int
		path  string
	}
	var found []indexed
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if len(name) != len("section_00.bin") ||
			!strings.HasPrefix(name, "section_") ||
			!strings.HasSuffix(name, ".bin") {
			continue
		}
		// Both index characters must be digits; ParseUint rejects signs,
		// so a name like section_-5.bin cannot slip in as an index.
		index, err := strconv.ParseUint(name[len("section_"):len("section_")+2], 10, 8)
		if err != nil {
			continue
		}
		found = append(found, indexed{index: int(index), path: filepath.Join(dir, name)})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].index < found[j].index })
	paths := make([]string, len(found))
	for i, f := range found {
		paths[i] = f.path
	}
	return paths, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func printMetrics(snap common.MetricsSnapshot) {
	throughputBps := snap.ThroughputBytesPerSecond()
	mbPerSec := throughputBps / 1_000_000
	fmt.Printf("Metrics: duration=%s sections=%d processed=%s throughput=%.2f MB/s\n",
		snap.Duration.Round(10*time.Millisecond),
		snap.Sections,
		common.FormatBytes(snap.Bytes),
		mbPerSec,
	)
}
