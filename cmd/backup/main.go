package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"wordplay/internal/config"
	"wordplay/internal/database"
	"wordplay/internal/logger"
	"wordplay/internal/profile"
	"wordplay/internal/repository"
	"wordplay/internal/service"
)

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)

	exportOutput := exportCmd.String("output", "", "Output file path (default: wordplay_backup_YYYYMMDD_HHMMSS.json)")

	importInput := importCmd.String("input", "", "Input file path (required)")
	importReplace := importCmd.Bool("replace", false, "Replace all existing users (WARNING: destructive)")
	importYes := importCmd.Bool("yes", false, "Do not ask for confirmation")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logg, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logg.Sync()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		logg.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	store := profile.NewStore(repository.NewStateRepository(db), logg)
	if err := store.Load(); err != nil {
		var storageErr *profile.StorageError
		if !errors.As(err, &storageErr) {
			logg.Fatal("failed to load profiles", zap.Error(err))
		}
	}

	backupService := service.NewBackupService(store, logg)

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		handleExport(logg, backupService, *exportOutput)

	case "import":
		importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		handleImport(logg, backupService, *importInput, *importReplace, *importYes)

	default:
		printUsage()
		os.Exit(1)
	}
}

func handleExport(logg *zap.Logger, backupService *service.BackupService, outputPath string) {
	if outputPath == "" {
		outputPath = fmt.Sprintf("wordplay_backup_%s.json", time.Now().Format("20060102_150405"))
	}

	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logg.Fatal("failed to create output directory", zap.Error(err))
		}
	}

	n, err := backupService.Export(outputPath)
	if err != nil {
		logg.Fatal("export failed", zap.Error(err))
	}

	fmt.Printf("Exported %d users to %s\n", n, outputPath)
}

func handleImport(logg *zap.Logger, backupService *service.BackupService, inputPath string, replace, yes bool) {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		logg.Fatal("input file does not exist", zap.String("path", inputPath))
	}

	if replace && !yes {
		fmt.Print("WARNING: This will delete all existing users. Type 'yes' to confirm: ")
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.TrimSpace(line) != "yes" {
			fmt.Println("Import cancelled")
			return
		}
	}

	added, err := backupService.Import(inputPath, replace)
	if err != nil {
		logg.Fatal("import failed", zap.Error(err))
	}

	fmt.Printf("Imported %d users from %s\n", added, inputPath)
}

func printUsage() {
	fmt.Println("Wordplay Backup Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  backup export [options]    Export all users to a JSON file")
	fmt.Println("  backup import [options]    Import users from a JSON file")
	fmt.Println()
	fmt.Println("Export Options:")
	fmt.Println("  -output <file>    Output file path (default: wordplay_backup_YYYYMMDD_HHMMSS.json)")
	fmt.Println()
	fmt.Println("Import Options:")
	fmt.Println("  -input <file>     Input file path (required)")
	fmt.Println("  -replace          Replace all existing users (WARNING: destructive)")
	fmt.Println("  -yes              Skip the confirmation prompt")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  backup export -output mybackup.json")
	fmt.Println("  backup import -input mybackup.json")
	fmt.Println("  backup import -input mybackup.json -replace")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DATABASE_TYPE    Database type: sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  DB_PATH          SQLite database path (default: ./wordplay.db)")
	fmt.Println("  DATABASE_URL     PostgreSQL or MySQL connection URL")
}
