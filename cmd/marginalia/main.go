package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/nikbrunner/marginalia/internal/exporter"
	"github.com/nikbrunner/marginalia/internal/extract"
	"github.com/nikbrunner/marginalia/internal/importer"
	"github.com/nikbrunner/marginalia/internal/model"
	"github.com/nikbrunner/marginalia/internal/picker"
	"github.com/nikbrunner/marginalia/internal/recommend"
	"github.com/nikbrunner/marginalia/internal/search"
	"github.com/nikbrunner/marginalia/internal/storage"
	"github.com/nikbrunner/marginalia/internal/sync"
	"github.com/nikbrunner/marginalia/internal/tui"
)

func main() {
	_ = godotenv.Load()
	initLogger()

	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "help", "--help", "-h":
			printHelp()
			return
		case "add":
			if len(os.Args) < 3 {
				fmt.Fprintf(os.Stderr, "Usage: marginalia add <url> [tag ...]\n")
				os.Exit(1)
			}
			runAdd(os.Args[2], os.Args[3:])
			return
		case "list":
			runList()
			return
		case "stats":
			runStats()
			return
		case "import-kindle":
			if len(os.Args) < 3 {
				fmt.Fprintf(os.Stderr, "Usage: marginalia import-kindle <clippings.txt>\n")
				os.Exit(1)
			}
			runImportKindle(os.Args[2])
			return
		case "import-backup":
			if len(os.Args) < 3 {
				fmt.Fprintf(os.Stderr, "Usage: marginalia import-backup <backup.json>\n")
				os.Exit(1)
			}
			runImportBackup(os.Args[2])
			return
		case "export-backup":
			var outputPath string
			if len(os.Args) >= 3 {
				outputPath = os.Args[2]
			}
			runExportBackup(outputPath)
			return
		case "export-md":
			var outputPath string
			if len(os.Args) >= 3 {
				outputPath = os.Args[2]
			}
			runExportMarkdown(outputPath)
			return
		default:
			// Treat as search query (join all remaining args)
			query := strings.Join(os.Args[1:], " ")
			runQuickSearch(query)
			return
		}
	}

	// No args - run full TUI
	runTUI()
}

func printHelp() {
	help := `marginalia - read-it-later article manager

Usage:
  marginalia                       Open interactive TUI
  marginalia <query>               Quick search → select → open in browser
  marginalia add <url> [tag ...]   Fetch, extract and save an article
  marginalia list                  Print the library
  marginalia stats                 Print reading statistics
  marginalia import-kindle <file>  Import a Kindle "My Clippings.txt"
  marginalia import-backup <file>  Restore a JSON backup (additive)
  marginalia export-backup [path]  Write a full JSON backup
  marginalia export-md [path]      Write all highlights as Markdown
  marginalia help                  Show this help

TUI Keybindings:
  j/k         Move down/up
  Enter       Read article (tracks reading time)
  Esc         Back to the list
  Tab         Cycle filter (all/unread/favorites/archived)
  f           Toggle favorite
  a           Toggle archive
  r           Mark as read
  Y           Copy URL to clipboard
  q           Quit

Data Storage:
  ~/.config/marginalia/marginalia.db
  ~/.config/marginalia/config.json

Sync:
  Set syncUrl/syncToken/userId in config.json (or SYNC_URL,
  SYNC_TOKEN, USER_ID in the environment) to sync across devices.
`
	fmt.Print(help)
}

func initLogger() {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// openEnv loads config and opens the store. Every subcommand starts here.
func openEnv() (*storage.Store, *storage.Config) {
	configPath, err := storage.DefaultConfigFilePath()
	if err != nil {
		fatalf("Error getting config path: %v", err)
	}
	cfg, err := storage.LoadConfig(configPath)
	if err != nil {
		fatalf("Error loading config: %v", err)
	}

	dbPath, err := storage.DefaultPath()
	if err != nil {
		fatalf("Error getting data path: %v", err)
	}
	store, err := storage.Open(dbPath)
	if err != nil {
		fatalf("Error opening store: %v", err)
	}
	return store, cfg
}

// startSync wires the sync engine when a sync server is configured.
// Returns a stop function; sync being down never blocks local use.
func startSync(store *storage.Store, cfg *storage.Config) func() {
	if cfg.SyncURL == "" {
		return func() {}
	}

	engine := sync.New(store, sync.NewHTTPReplica(cfg.SyncURL, cfg.SyncToken), slog.Default())
	if err := engine.Start(context.Background(), cfg.UserID); err != nil {
		slog.Warn("sync unavailable, continuing offline", "error", err)
		return func() {}
	}
	return engine.Stop
}

func runTUI() {
	store, cfg := openEnv()
	defer store.Close()

	stopSync := startSync(store, cfg)
	defer stopSync()

	app := tui.NewApp(tui.AppParams{Store: store, UserID: cfg.UserID})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fatalf("Error running app: %v", err)
	}
}

func runAdd(url string, tags []string) {
	store, cfg := openEnv()
	defer store.Close()

	stopSync := startSync(store, cfg)
	defer stopSync()

	parsed, err := extract.NewClient(cfg.WordsPerMin).Fetch(context.Background(), url)
	if err != nil {
		fatalf("%v", err)
	}

	article, err := store.CreateArticle(model.NewArticleParams{
		URL:         url,
		Title:       parsed.Title,
		Content:     parsed.Content,
		Excerpt:     parsed.Excerpt,
		Thumbnail:   parsed.Thumbnail,
		SiteName:    parsed.SiteName,
		ReadingTime: parsed.ReadingTime,
		Tags:        tags,
		UserID:      cfg.UserID,
	})
	if err != nil {
		fatalf("%v", err)
	}

	fmt.Printf("Saved: %s (%s, %dm)\n", article.Title, article.SiteName, article.ReadingTime)
}

func runList() {
	store, cfg := openEnv()
	defer store.Close()

	articles, err := store.ListArticles(storage.ArticleQuery{UserID: cfg.UserID})
	if err != nil {
		fatalf("Error listing articles: %v", err)
	}

	for _, a := range articles {
		marker := " "
		if a.IsFavorite {
			marker = "*"
		}
		status := " "
		if a.IsRead {
			status = "✓"
		}
		fmt.Printf("%s%s %-50.50s  %4dm  %s\n", marker, status, a.Title, a.ReadingTime, a.URL)
	}
}

func runStats() {
	store, cfg := openEnv()
	defer store.Close()

	stats, err := recommend.ComputeStats(store, cfg.UserID, time.Now())
	if err != nil {
		fatalf("Error computing stats: %v", err)
	}

	fmt.Printf("Articles:    %d (%d read)\n", stats.TotalArticles, stats.ReadArticles)
	fmt.Printf("Read time:   %s total, %s avg session\n",
		stats.TotalReadTime.Round(time.Second), stats.AvgReadTime.Round(time.Second))
	fmt.Printf("This week:   %d read\n", stats.ReadThisWeek)
	fmt.Printf("This month:  %d read\n", stats.ReadThisMonth)
	fmt.Printf("Streak:      %d day(s)\n", stats.Streak)
	fmt.Printf("Highlights:  %d\n", stats.HighlightCount)
	if len(stats.TopTags) > 0 {
		parts := make([]string, 0, len(stats.TopTags))
		for _, tc := range stats.TopTags {
			parts = append(parts, fmt.Sprintf("%s (%d)", tc.Tag, tc.Count))
		}
		fmt.Printf("Top tags:    %s\n", strings.Join(parts, ", "))
	}
}

func runQuickSearch(query string) {
	store, cfg := openEnv()
	defer store.Close()

	articles, err := store.AllArticles(cfg.UserID)
	if err != nil {
		fatalf("Error loading articles: %v", err)
	}
	results := search.FuzzyArticles(articles, query)

	if len(results) == 0 {
		fmt.Printf("No articles found for '%s'\n", query)
		return
	}

	var selected *model.Article
	if len(results) == 1 {
		selected = results[0].Article
		fmt.Printf("Opening: %s\n", selected.Title)
	} else {
		p := picker.New(results, query)
		program := tea.NewProgram(p)
		finalModel, err := program.Run()
		if err != nil {
			fatalf("Error running picker: %v", err)
		}
		finalPicker := finalModel.(picker.Picker)
		if finalPicker.Cancelled() {
			return
		}
		selected = finalPicker.SelectedArticle()
	}

	if selected == nil {
		return
	}
	openURL(selected.URL)
}

// openURL opens a URL in the default browser.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	}
	if cmd != nil {
		_ = cmd.Start()
	}
}

func runImportKindle(filePath string) {
	store, cfg := openEnv()
	defer store.Close()

	file, err := os.Open(filePath)
	if err != nil {
		fatalf("Error opening file: %v", err)
	}
	defer file.Close()

	result, err := importer.ImportKindle(store, file, cfg.UserID)
	if err != nil {
		fatalf("Error importing clippings: %v", err)
	}

	fmt.Printf("Imported %d highlights into %d books", result.HighlightsAdded, result.ArticlesCreated)
	if result.HighlightsSkipped > 0 {
		fmt.Printf(" (%d duplicates skipped)", result.HighlightsSkipped)
	}
	fmt.Println()
}

func runImportBackup(filePath string) {
	store, _ := openEnv()
	defer store.Close()

	file, err := os.Open(filePath)
	if err != nil {
		fatalf("Error opening file: %v", err)
	}
	defer file.Close()

	result, err := importer.ImportBackup(store, file)
	if err != nil {
		fatalf("Error importing backup: %v", err)
	}

	fmt.Printf("Imported %d articles, %d highlights, %d folders, %d sessions",
		result.Articles, result.Highlights, result.Folders, result.Sessions)
	if result.Skipped > 0 {
		fmt.Printf(" (%d already present)", result.Skipped)
	}
	fmt.Println()
}

func runExportBackup(outputPath string) {
	store, cfg := openEnv()
	defer store.Close()

	if outputPath == "" {
		outputPath = "marginalia-backup.json"
	}

	file, err := os.Create(outputPath)
	if err != nil {
		fatalf("Error creating file: %v", err)
	}
	defer file.Close()

	if err := exporter.WriteBackup(store, cfg.UserID, file); err != nil {
		fatalf("Error writing backup: %v", err)
	}
	fmt.Printf("Exported backup to %s\n", outputPath)
}

func runExportMarkdown(outputPath string) {
	store, cfg := openEnv()
	defer store.Close()

	if outputPath == "" {
		outputPath = "marginalia-highlights.md"
	}

	md, err := exporter.AllHighlightsMarkdown(store, cfg.UserID, model.Now())
	if err != nil {
		fatalf("Error exporting highlights: %v", err)
	}
	if err := os.WriteFile(outputPath, []byte(md), 0644); err != nil {
		fatalf("Error writing file: %v", err)
	}
	fmt.Printf("Exported highlights to %s\n", outputPath)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
