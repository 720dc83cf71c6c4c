// paktool is a CLI utility for working with .pk3 and .dpk package archives.
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/Faultbox/chameleon/pkg/formats"
	"github.com/Faultbox/chameleon/pkg/pak"
	"github.com/Faultbox/chameleon/pkg/texture"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "list", "ls":
		cmdList(args)
	case "extract", "x":
		cmdExtract(args)
	case "search", "find":
		cmdSearch(args)
	case "shaders":
		cmdShaders(args)
	case "pack":
		cmdPack(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`paktool - package archive utility (.pk3, .dpk)

Usage:
  paktool <command> [options]

Commands:
  info <file.pk3>                    Show archive information
  list <file.pk3> [pattern]          List files (optional glob pattern)
  extract <file.pk3> <path> [output] Extract file(s) to directory
  search <file.pk3> <pattern>        Search files by name pattern
  shaders <file.pk3>                 List shaders declared in scripts/
  pack <dir> <file.pk3>              Pack a directory (e.g. a .pk3dir)

Examples:
  paktool info res-textures_0.52.dpk
  paktool list pak0.pk3 "*.shader"
  paktool extract pak0.pk3 "*.tga" ./output
  paktool shaders res-textures_0.52.dpk
  paktool pack mymap.pk3dir mymap.pk3`)
}

func openArchive(path string) *pak.Archive {
	archive, err := pak.Open(path)
	if err != nil {
		fail("Error: %v", err)
	}
	return archive
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fail("Usage: paktool info <file.pk3>")
	}

	archive := openArchive(args[0])
	defer archive.Close()

	entries := archive.Entries()

	// Count by extension
	extCount := make(map[string]int)
	var totalSize, packedSize uint64
	var textures, scripts int
	for _, e := range entries {
		ext := pak.Ext(e.Name)
		if ext == "" {
			ext = "(no ext)"
		}
		extCount[ext]++
		totalSize += e.UncompressedSize
		packedSize += e.CompressedSize

		switch {
		case strings.HasPrefix(e.Name, formats.TexturePrefix) && texture.IsTexture(pak.Ext(e.Name)):
			textures++
		case strings.HasPrefix(e.Name, "scripts/") && strings.HasSuffix(e.Name, ".shader"):
			scripts++
		}
	}

	fmt.Printf("Archive:  %s\n", args[0])
	fmt.Printf("Files:    %d\n", len(entries))
	fmt.Printf("Size:     %.2f MB (%.2f MB packed)\n",
		float64(totalSize)/(1024*1024), float64(packedSize)/(1024*1024))
	fmt.Printf("Textures: %d\n", textures)
	fmt.Printf("Scripts:  %d\n", scripts)
	fmt.Println()
	fmt.Println("Files by type:")

	// Sort by count
	type extStat struct {
		ext   string
		count int
	}
	var stats []extStat
	for ext, count := range extCount {
		stats = append(stats, extStat{ext, count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].count != stats[j].count {
			return stats[i].count > stats[j].count
		}
		return stats[i].ext < stats[j].ext
	})

	for _, s := range stats {
		fmt.Printf("  %-10s %d\n", s.ext, s.count)
	}
}

// matches reports whether name matches a glob on its base name or contains
// pattern as a substring. pattern must be lowercase.
func matches(name, pattern string) bool {
	lower := strings.ToLower(name)
	matched, _ := filepath.Match(pattern, filepath.Base(lower))
	return matched || strings.Contains(lower, pattern)
}

func cmdList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	limit := fs.Int("n", 0, "Limit output to N files (0 = all)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fail("Usage: paktool list <file.pk3> [pattern]")
	}

	archive := openArchive(fs.Arg(0))
	defer archive.Close()

	files := archive.List()
	sort.Strings(files)

	pattern := ""
	if fs.NArg() > 1 {
		pattern = strings.ToLower(fs.Arg(1))
	}

	count := 0
	for _, f := range files {
		if pattern != "" && !matches(f, pattern) {
			continue
		}
		fmt.Println(f)
		count++
		if *limit > 0 && count >= *limit {
			break
		}
	}

	if pattern != "" {
		fmt.Fprintf(os.Stderr, "\n(%d files matched)\n", count)
	}
}

func cmdExtract(args []string) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 2 {
		fail("Usage: paktool extract <file.pk3> <path> [output_dir]")
	}

	filePath := fs.Arg(1)
	outputDir := "."
	if fs.NArg() > 2 {
		outputDir = fs.Arg(2)
	}

	archive := openArchive(fs.Arg(0))
	defer archive.Close()

	// Check if it's a pattern
	if strings.Contains(filePath, "*") {
		extracted, err := extractPattern(archive, filePath, outputDir)
		if err != nil {
			fail("Error: %v", err)
		}
		fmt.Fprintf(os.Stderr, "\nExtracted %d files\n", extracted)
		return
	}

	// Single file extraction
	if !archive.Contains(filePath) {
		fail("File not found: %s", filePath)
	}

	data, err := archive.Read(filePath)
	if err != nil {
		fail("Error reading file: %v", err)
	}

	outputPath := filepath.Join(outputDir, filepath.Base(filePath))
	if err := writeOutput(outputPath, data); err != nil {
		fail("Error: %v", err)
	}
	fmt.Printf("Extracted: %s (%d bytes)\n", outputPath, len(data))
}

func extractPattern(archive *pak.Archive, pattern, outputDir string) (int, error) {
	pattern = strings.ToLower(pattern)

	extracted := 0
	err := archive.Walk(func(name string, read func() ([]byte, error)) error {
		matched, _ := filepath.Match(pattern, strings.ToLower(filepath.Base(name)))
		if !matched {
			return nil
		}

		// Preserve directory structure
		outputPath, ok := memberPath(outputDir, name)
		if !ok {
			fmt.Fprintf(os.Stderr, "Skipping %s: outside output directory\n", name)
			return nil
		}

		data, err := read()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", name, err)
			return nil
		}

		if err := writeOutput(outputPath, data); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return nil
		}

		fmt.Printf("Extracted: %s\n", outputPath)
		extracted++
		return nil
	})
	return extracted, err
}

// memberPath maps an archive member below outputDir. Members that would
// land outside it ("../" components) are rejected.
func memberPath(outputDir, name string) (string, bool) {
	outputPath := filepath.Join(outputDir, filepath.FromSlash(name))
	rel, err := filepath.Rel(outputDir, outputPath)
	if err != nil || filepath.IsAbs(rel) || rel == ".." ||
		strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return outputPath, true
}

func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "creating directory")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

func cmdSearch(args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	limit := fs.Int("n", 50, "Limit results (0 = all)")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fail("Usage: paktool search <file.pk3> <pattern>")
	}

	archive := openArchive(fs.Arg(0))
	defer archive.Close()

	pattern := strings.ToLower(fs.Arg(1))
	var results []pak.Entry
	for _, e := range archive.Entries() {
		if matches(e.Name, pattern) {
			results = append(results, e)
		}
	}

	for i, e := range results {
		if *limit > 0 && i >= *limit {
			fmt.Printf("... and %d more\n", len(results)-*limit)
			break
		}
		fmt.Printf("%-60s %10d\n", e.Name, e.UncompressedSize)
	}
	fmt.Fprintf(os.Stderr, "\n(%d files matched)\n", len(results))
}

func cmdShaders(args []string) {
	fs := flag.NewFlagSet("shaders", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fail("Usage: paktool shaders <file.pk3>")
	}

	archive := openArchive(fs.Arg(0))
	defer archive.Close()

	total := 0
	err := archive.Walk(func(name string, read func() ([]byte, error)) error {
		if !strings.HasPrefix(name, "scripts/") || !strings.HasSuffix(name, ".shader") {
			return nil
		}
		data, err := read()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", name, err)
			return nil
		}
		content, err := formats.DecodeASCII(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skipping %s: %v\n", name, err)
			return nil
		}

		decls, err := formats.ParseShaderScript(content)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skipping %s: %v\n", name, err)
			return nil
		}
		fmt.Printf("%s (%d)\n", name, len(decls))
		for _, d := range decls {
			fmt.Printf("  %-48s -> %s\n", d.Name, d.PreviewSource)
		}
		total += len(decls)
		return nil
	})
	if err != nil {
		fail("Error: %v", err)
	}

	fmt.Fprintf(os.Stderr, "\n(%d shaders with previews)\n", total)
}

func cmdPack(args []string) {
	flags := flag.NewFlagSet("pack", flag.ExitOnError)
	flags.Parse(args)

	if flags.NArg() < 2 {
		fail("Usage: paktool pack <dir> <file.pk3>")
	}
	root, output := flags.Arg(0), flags.Arg(1)

	files := make(map[string][]byte)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = data
		return nil
	})
	if err != nil {
		fail("Error: %v", err)
	}

	if err := pak.Write(output, files); err != nil {
		fail("Error: %v", err)
	}
	fmt.Printf("Packed %d files into %s\n", len(files), output)
}
