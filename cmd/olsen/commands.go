package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	bar "github.com/schollz/progressbar/v3"

	"github.com/adewale/olsen/internal/orchestrator"
	"github.com/adewale/olsen/internal/pack"
	"github.com/adewale/olsen/internal/vault"
)

func openVault(dbPath string) *vault.Vault {
	v, err := vault.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open catalog %s: %v\n", dbPath, err)
		os.Exit(1)
	}
	return v
}

func handleAddSource() {
	fs := flag.NewFlagSet("add-source", flag.ExitOnError)
	db := dbFlag(fs)
	fs.Usage = func() {
		fmt.Println("Usage: olsen add-source <directory> [options]")
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}

	v := openVault(*db)
	defer v.Close()

	if err := v.AddSource(fs.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Added source %s\n", fs.Arg(0))
}

func handleRemoveSource() {
	fs := flag.NewFlagSet("remove-source", flag.ExitOnError)
	db := dbFlag(fs)
	fs.Usage = func() {
		fmt.Println("Usage: olsen remove-source <directory> [options]")
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}

	v := openVault(*db)
	defer v.Close()

	if err := v.RemoveSource(fs.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Removed source %s\n", fs.Arg(0))
}

func handleScan() {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	db := dbFlag(fs)
	workers := fs.Int("w", 4, "Number of worker goroutines for hashing")
	fs.Usage = func() {
		fmt.Println("Usage: olsen scan [options]")
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[2:])

	orchestrator.WorkerCount = *workers

	v := openVault(*db)
	defer v.Close()

	var progress *bar.ProgressBar
	sink := orchestrator.ProgressSink{
		ScanStarted: func(total int) {
			progress = bar.Default(int64(total), "Hashing photos")
		},
		FileHashed: func(n int) {
			if progress != nil {
				progress.Set(n)
			}
		},
		ScanDone: func() {
			if progress != nil {
				progress.Finish()
			}
			fmt.Println("Scan complete.")
		},
	}

	if err := v.Scan(sink); err != nil {
		fmt.Fprintf(os.Stderr, "Error: scan failed: %v\n", err)
		os.Exit(1)
	}
}

func handleGroups() {
	fs := flag.NewFlagSet("groups", flag.ExitOnError)
	db := dbFlag(fs)
	fs.Usage = func() {
		fmt.Println("Usage: olsen groups [options]")
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[2:])

	v := openVault(*db)
	defer v.Close()

	groups, err := v.ListGroups()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, g := range groups {
		fmt.Printf("group %d  confidence=%s  members=%d  sot=%d\n", g.ID, g.Confidence, len(g.Members), g.SourceOfTruth)
	}
	fmt.Printf("\n%d duplicate groups\n", len(groups))
}

func handlePhotos() {
	fs := flag.NewFlagSet("photos", flag.ExitOnError)
	db := dbFlag(fs)
	sourceID := fs.Int64("source", 0, "Filter by source id")
	groupID := fs.Int64("group", 0, "Filter by group id")
	fs.Usage = func() {
		fmt.Println("Usage: olsen photos [options]")
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[2:])

	v := openVault(*db)
	defer v.Close()

	photos, err := v.ListPhotos(vault.PhotoFilter{SourceID: *sourceID, GroupID: *groupID})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, p := range photos {
		fmt.Printf("%-60s %-6s %10s\n", p.Path, p.Format, humanize.Bytes(uint64(p.Size)))
	}
	fmt.Printf("\n%d photos\n", len(photos))
}

func handleSetPackPath() {
	fs := flag.NewFlagSet("set-pack-path", flag.ExitOnError)
	db := dbFlag(fs)
	fs.Usage = func() {
		fmt.Println("Usage: olsen set-pack-path <directory> [options]")
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}

	v := openVault(*db)
	defer v.Close()

	if err := v.SetPackPath(fs.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Pack path set to %s\n", fs.Arg(0))
}

func handlePack() {
	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	db := dbFlag(fs)
	fs.Usage = func() {
		fmt.Println("Usage: olsen pack [options]")
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[2:])

	v := openVault(*db)
	defer v.Close()

	var progress *bar.ProgressBar
	sink := pack.ProgressSink{
		PackStarted: func(total int) {
			progress = bar.Default(int64(total), "Packing photos")
		},
		FilePacked: func(n int) {
			if progress != nil {
				progress.Set(n)
			}
		},
		PackDone: func() {
			if progress != nil {
				progress.Finish()
			}
			fmt.Println("Pack complete.")
		},
	}

	if err := v.Pack(sink); err != nil {
		fmt.Fprintf(os.Stderr, "Error: pack failed: %v\n", err)
		os.Exit(1)
	}
}
