package main

import (
	"flag"
	"fmt"
	"os"
)

const version = "0.2.0-dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	command := os.Args[1]

	switch command {
	case "version", "--version", "-v":
		fmt.Printf("olsen version %s\n", version)
		fmt.Println("Photo deduplication vault")
		os.Exit(0)
	case "help", "--help", "-h":
		printUsage()
		os.Exit(0)
	case "add-source":
		handleAddSource()
	case "remove-source":
		handleRemoveSource()
	case "scan":
		handleScan()
	case "groups":
		handleGroups()
	case "photos":
		handlePhotos()
	case "set-pack-path":
		handleSetPackPath()
	case "pack":
		handlePack()
	default:
		fmt.Fprintf(os.Stderr, "Error: Unknown command '%s'\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Olsen - Photo Deduplication Vault")
	fmt.Println("")
	fmt.Println("Usage:")
	fmt.Println("  olsen <command> [options]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  add-source       Register a directory as a scan source")
	fmt.Println("  remove-source    Unregister a source and its photos")
	fmt.Println("  scan             Run an incremental scan and rebuild duplicate groups")
	fmt.Println("  groups           List duplicate groups")
	fmt.Println("  photos           List cataloged photos")
	fmt.Println("  set-pack-path    Set the content-addressable pack directory")
	fmt.Println("  pack             Materialize the pack from current groups")
	fmt.Println("  version          Show version information")
	fmt.Println("  help             Show this help message")
	fmt.Println("")
	fmt.Println("Run 'olsen <command> --help' for more information on a command.")
}

func dbFlag(fs *flag.FlagSet) *string {
	return fs.String("db", "olsen.db", "Catalog database file path")
}
