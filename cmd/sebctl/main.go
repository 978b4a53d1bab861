package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/stemsi/exstem-seb/internal/config"
	"github.com/stemsi/exstem-seb/internal/kiosk"
	"github.com/stemsi/exstem-seb/internal/seb"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "inspect":
		err = runInspect(os.Args[2:])
	case "build":
		err = runBuild(os.Args[2:])
	case "key":
		err = runKey(os.Args[2:])
	case "hash-password":
		err = runHashPassword()
	default:
		printUsage()
		os.Exit(2)
	}

	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: sebctl <command> [flags]")
	fmt.Println("Commands:")
	fmt.Println("  inspect <file.seb>                         Show what the kiosk would launch")
	fmt.Println("  build -exam <id> | -url <url> [-out file]  Write a locked browser config")
	fmt.Println("  key [-seed text]                           Print a fresh browser key")
	fmt.Println("  hash-password                              Hash a kiosk quit password")
}

// ─── inspect ──────────────────────────────────────────────────────────

func runInspect(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("inspect requires a .seb file")
	}
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	startURL, err := kiosk.ParseSEBFile(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	format := "plist"
	if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		format = "json"
	}
	examID := kiosk.LockedExamID(startURL)
	launch := "normal"
	if examID != "" {
		launch = "locked"
	}

	color.Cyan("\n=== %s ===", path)
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Field", "Value"})
	table.Append([]string{"Format", format})
	table.Append([]string{"Start URL", startURL})
	table.Append([]string{"Locked exam", dash(examID)})
	table.Append([]string{"Launch", launch})
	table.Render()

	if examID == "" {
		color.Yellow("Start URL does not point at /seb-exam/{id}; the kiosk will launch normally.")
	}
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// ─── build ────────────────────────────────────────────────────────────

func runBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	examID := fs.String("exam", "", "Exam ID (start URL derived from WEB_BASE_URL)")
	startURL := fs.String("url", "", "Explicit start URL")
	platform := fs.String("platform", "", "Target platform: mac, win or ios")
	out := fs.String("out", "", "Output file (default exam-<id>.seb or stdout)")
	_ = fs.Parse(args)

	switch {
	case *startURL == "" && *examID == "":
		return fmt.Errorf("build requires -exam or -url")
	case *startURL == "":
		base := strings.TrimRight(config.GetEnv("WEB_BASE_URL", "http://localhost:5173"), "/")
		*startURL = seb.ExamStartURL(base, *examID)
	}
	if *out == "" && *examID != "" {
		*out = "exam-" + *examID + ".seb"
	}

	doc := seb.BuildLockedBrowserConfig(seb.ConfigOptions{StartURL: *startURL, Platform: *platform})
	if *out == "" {
		_, err := os.Stdout.Write(doc)
		return err
	}
	if err := os.WriteFile(*out, doc, 0o644); err != nil {
		return err
	}
	color.Green("Wrote %s (start URL %s)", *out, *startURL)
	return nil
}

// ─── key ──────────────────────────────────────────────────────────────

func runKey(args []string) error {
	fs := flag.NewFlagSet("key", flag.ExitOnError)
	seed := fs.String("seed", "", "Seed mixed into the key")
	_ = fs.Parse(args)

	fmt.Println(seb.GenerateBrowserKey(*seed))
	return nil
}

// ─── hash-password ────────────────────────────────────────────────────

func runHashPassword() error {
	fmt.Print("Enter quit password: ")
	first, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	if len(first) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}

	fmt.Print("Repeat quit password: ")
	second, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	if string(first) != string(second) {
		return fmt.Errorf("passwords do not match")
	}

	hash, err := bcrypt.GenerateFromPassword(first, bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	color.Green("Set this in the kiosk environment:")
	// Single quotes stop godotenv from expanding the $ segments.
	fmt.Printf("KIOSK_QUIT_PASSWORD_HASH='%s'\n", hash)
	return nil
}
