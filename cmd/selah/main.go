// Package main provides the CLI entrypoint for selah.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/selahreader/selah/internal/config"
	"github.com/selahreader/selah/internal/corpus"
	"github.com/selahreader/selah/internal/model"
	"github.com/selahreader/selah/internal/music"
	"github.com/selahreader/selah/internal/session"
	"github.com/selahreader/selah/internal/stats"
	"github.com/selahreader/selah/internal/statsui"
	"github.com/selahreader/selah/internal/store"
	"github.com/selahreader/selah/internal/tui"
)

const defaultSearchLimit = 20

var (
	readDataDir     string
	readTranslation string
	readMode        string
	readSpeed       float64
	readFontSize    int
	readNight       bool
	readFullscreen  bool
	readMusicFolder string
	readMusicVolume float64
	readMusicOn     bool
	readPlayer      string

	statsPlain bool
	statsAll   bool
	statsReset bool

	searchLimit int
	searchCase  bool

	favNote      string
	favClearNote bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "selah",
		Short:         "Paced Bible reader for the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runReadCmd,
	}

	rootCmd.Flags().StringVar(&readDataDir, "data-dir", "", "directory with bible JSON files")
	rootCmd.Flags().StringVar(&readTranslation, "translation", "", "bible translation (acf, nvi)")
	rootCmd.Flags().StringVar(&readMode, "mode", "", "reading mode (chunks, word)")
	rootCmd.Flags().Float64Var(&readSpeed, "speed", 0, "seconds per word")
	rootCmd.Flags().IntVar(&readFontSize, "font-size", 0, "verse column size")
	rootCmd.Flags().BoolVar(&readNight, "night", false, "night color palette")
	rootCmd.Flags().BoolVar(&readFullscreen, "fullscreen", false, "start with chrome hidden")
	rootCmd.Flags().StringVar(&readMusicFolder, "music-folder", "", "folder with background music")
	rootCmd.Flags().Float64Var(&readMusicVolume, "music-volume", 0, "music volume (0-1)")
	rootCmd.Flags().BoolVar(&readMusicOn, "music", true, "enable background music")
	rootCmd.Flags().StringVar(&readPlayer, "player", "", "preferred audio backend (mpv, ffplay)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionsCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newFavoritesCmd())

	return rootCmd
}

func runReadCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	settings, err := st.LoadSettings(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	applySettingsOverrides(cmd, fileCfg, &settings)
	if err := validateSettings(settings); err != nil {
		return err
	}

	dataDir := config.DefaultCorpusDir()
	applyStringOverride(cmd, "data-dir", &dataDir, fileCfg.Reader.DataDir, readDataDir)
	playerPref := ""
	applyStringOverride(cmd, "player", &playerPref, fileCfg.Music.Player, readPlayer)

	c, err := corpus.Load(dataDir, settings.Translation)
	if err != nil {
		return corpusLoadError(settings.Translation, dataDir, err)
	}

	player := music.NewPlayer(settings.MusicVolume, playerPref)
	if settings.MusicFolder != "" {
		if ok := player.SetFolder(settings.MusicFolder); !ok && player.Available() {
			logErrf("no playable files in %s\n", settings.MusicFolder)
		}
	}

	engine := session.New(c, settings.Reading, settings.LastPosition)
	m := tui.NewModel(engine, c, st, player, settings)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// applySettingsOverrides layers the TOML config and then changed CLI flags
// over the persisted settings record.
func applySettingsOverrides(cmd *cobra.Command, fileCfg config.FileConfig, settings *model.Settings) {
	applyStringOverride(cmd, "translation", &settings.Translation, fileCfg.Reader.Translation, readTranslation)

	mode := string(settings.Reading.Mode)
	applyStringOverride(cmd, "mode", &mode, fileCfg.Reader.Mode, readMode)
	settings.Reading.Mode = model.ParseMode(mode)

	applyFloatOverride(cmd, "speed", &settings.Reading.WordSpeed, fileCfg.Reader.WordSpeed, readSpeed)
	applyIntOverride(cmd, "font-size", &settings.Reading.FontSize, fileCfg.Reader.FontSize, readFontSize)
	applyBoolOverride(cmd, "night", &settings.Reading.NightMode, fileCfg.Reader.NightMode, readNight)
	if cmd.Flags().Changed("fullscreen") {
		settings.Reading.Fullscreen = readFullscreen
	}

	applyStringOverride(cmd, "music-folder", &settings.MusicFolder, fileCfg.Music.Folder, readMusicFolder)
	applyFloatOverride(cmd, "music-volume", &settings.MusicVolume, fileCfg.Music.Volume, readMusicVolume)
	applyBoolOverride(cmd, "music", &settings.MusicEnabled, fileCfg.Music.Enabled, readMusicOn)
}

func applyStringOverride(cmd *cobra.Command, name string, target, fileVal *string, flagVal string) {
	if fileVal != nil {
		*target = *fileVal
	}
	if cmd.Flags().Changed(name) {
		*target = flagVal
	}
}

func applyIntOverride(cmd *cobra.Command, name string, target, fileVal *int, flagVal int) {
	if fileVal != nil {
		*target = *fileVal
	}
	if cmd.Flags().Changed(name) {
		*target = flagVal
	}
}

func applyFloatOverride(cmd *cobra.Command, name string, target, fileVal *float64, flagVal float64) {
	if fileVal != nil {
		*target = *fileVal
	}
	if cmd.Flags().Changed(name) {
		*target = flagVal
	}
}

func applyBoolOverride(cmd *cobra.Command, name string, target, fileVal *bool, flagVal bool) {
	if fileVal != nil {
		*target = *fileVal
	}
	if cmd.Flags().Changed(name) {
		*target = flagVal
	}
}

func validateSettings(settings model.Settings) error {
	found := false
	for _, tr := range corpus.Translations {
		if settings.Translation == tr {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("unknown translation %q (available: %s)", settings.Translation, strings.Join(corpus.Translations, ", "))
	}
	if settings.Reading.WordSpeed < model.MinWordSpeed || settings.Reading.WordSpeed > model.MaxWordSpeed {
		return fmt.Errorf("--speed must be between %.1f and %.1f", model.MinWordSpeed, model.MaxWordSpeed)
	}
	if settings.Reading.FontSize < model.MinFontSize || settings.Reading.FontSize > model.MaxFontSize {
		return fmt.Errorf("--font-size must be between %d and %d", model.MinFontSize, model.MaxFontSize)
	}
	if settings.MusicVolume < 0 || settings.MusicVolume > 1 {
		return fmt.Errorf("--music-volume must be between 0 and 1")
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newVersionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List available bible translations",
		Args:  cobra.NoArgs,
		RunE:  runVersionsCmd,
	}
	cmd.Flags().StringVar(&readDataDir, "data-dir", "", "directory with bible JSON files")
	return cmd
}

func runVersionsCmd(cmd *cobra.Command, _ []string) error {
	dataDir, err := resolveDataDir(cmd)
	if err != nil {
		return err
	}
	found, err := corpus.ListAvailable(dataDir)
	if err != nil {
		return fmt.Errorf("failed to list translations: %w", err)
	}
	if len(found) == 0 {
		logErrf("No bible files found in %s\n", dataDir)
		logErrf("Place acf.json or nvi.json there to get started.\n")
		return fmt.Errorf("no translations found")
	}
	for _, tr := range found {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), tr); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show reading progress",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print stats to stdout instead of the dashboard")
	cmd.Flags().BoolVar(&statsAll, "all", false, "include books with no chapters read")
	cmd.Flags().BoolVar(&statsReset, "reset", false, "erase reading history and counters")
	cmd.Flags().StringVar(&readDataDir, "data-dir", "", "directory with bible JSON files")
	cmd.Flags().StringVar(&readTranslation, "translation", "", "bible translation (acf, nvi)")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	st, c, err := openStoreAndCorpus(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if statsReset {
		return resetHistory(cmd, st)
	}

	if statsPlain {
		report, err := stats.BuildReport(context.Background(), st, c)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		out := cmd.OutOrStdout()
		if err := stats.RenderSummary(out, report); err != nil {
			return fmt.Errorf("failed to render summary: %w", err)
		}
		if _, err := fmt.Fprintln(out); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if err := stats.RenderBooks(out, report, statsAll); err != nil {
			return fmt.Errorf("failed to render books: %w", err)
		}
		return nil
	}

	m := statsui.NewModel(st, c)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

// resetHistory erases chapter marks and counters after a confirmation.
// Settings and favorites are untouched.
func resetHistory(cmd *cobra.Command, st *store.Store) error {
	if _, err := fmt.Fprint(cmd.OutOrStdout(), "Erase all reading history? [y/N] "); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	reader := bufio.NewReader(cmd.InOrStdin())
	answer, err := reader.ReadString('\n')
	if err != nil && answer == "" {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer != "y" && answer != "yes" {
		logErrf("Aborted.\n")
		return nil
	}
	if err := st.ClearHistory(context.Background()); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), "Reading history cleared.")
	return err
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search verses by text or reference",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearchCmd,
	}
	cmd.Flags().IntVar(&searchLimit, "limit", defaultSearchLimit, "maximum number of results")
	cmd.Flags().BoolVar(&searchCase, "case-sensitive", false, "match case exactly")
	cmd.Flags().StringVar(&readDataDir, "data-dir", "", "directory with bible JSON files")
	cmd.Flags().StringVar(&readTranslation, "translation", "", "bible translation (acf, nvi)")
	return cmd
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	if searchLimit <= 0 {
		return fmt.Errorf("--limit must be greater than 0")
	}
	st, c, err := openStoreAndCorpus(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	query := strings.Join(args, " ")
	out := cmd.OutOrStdout()

	if pos, ok := c.SearchReference(query); ok {
		text, err := c.Verse(pos)
		if err != nil {
			return fmt.Errorf("failed to load verse: %w", err)
		}
		if _, err := fmt.Fprintf(out, "%s\n  %s\n", c.Reference(pos), text); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	results := c.Search(query, searchLimit, searchCase)
	if len(results) == 0 {
		return fmt.Errorf("no verses match %q", query)
	}
	for _, res := range results {
		if _, err := fmt.Fprintf(out, "%s\n  %s\n", res.Reference, res.Highlight); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newFavoritesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites [reference]",
		Short: "List favorite verses, or annotate one",
		Args:  cobra.ArbitraryArgs,
		RunE:  runFavoritesCmd,
	}
	cmd.Flags().StringVar(&favNote, "note", "", "set a note on the referenced favorite")
	cmd.Flags().BoolVar(&favClearNote, "clear-note", false, "remove the note from the referenced favorite")
	cmd.Flags().StringVar(&readDataDir, "data-dir", "", "directory with bible JSON files")
	cmd.Flags().StringVar(&readTranslation, "translation", "", "bible translation (acf, nvi)")
	return cmd
}

func runFavoritesCmd(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return annotateFavorite(cmd, strings.Join(args, " "))
	}
	if favNote != "" || favClearNote {
		return fmt.Errorf("--note and --clear-note need a verse reference")
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	favorites, err := st.ListFavorites(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list favorites: %w", err)
	}
	if len(favorites) == 0 {
		logErrf("No favorites yet. Press 'v' while reading to save one.\n")
		return nil
	}
	out := cmd.OutOrStdout()
	for _, fav := range favorites {
		if _, err := fmt.Fprintf(out, "%s (%s)\n  %s\n", fav.Reference, fav.CreatedAt.Format("2006-01-02"), fav.Text); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if fav.Note != "" {
			if _, err := fmt.Fprintf(out, "  # %s\n", fav.Note); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
	}
	return nil
}

func annotateFavorite(cmd *cobra.Command, reference string) error {
	if favClearNote && favNote != "" {
		return fmt.Errorf("--note and --clear-note are mutually exclusive")
	}
	if !favClearNote && favNote == "" {
		return fmt.Errorf("pass --note or --clear-note with a reference")
	}

	st, c, err := openStoreAndCorpus(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	pos, ok := c.SearchReference(reference)
	if !ok {
		return fmt.Errorf("unknown reference %q", reference)
	}
	note := favNote
	if favClearNote {
		note = ""
	}
	updated, err := st.UpdateFavoriteNote(context.Background(), pos, note)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	if !updated {
		return fmt.Errorf("%s is not a favorite", c.Reference(pos))
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Updated note on %s\n", c.Reference(pos))
	return err
}

func resolveDataDir(cmd *cobra.Command) (string, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	dataDir := config.DefaultCorpusDir()
	applyStringOverride(cmd, "data-dir", &dataDir, fileCfg.Reader.DataDir, readDataDir)
	return dataDir, nil
}

func openStoreAndCorpus(cmd *cobra.Command) (*store.Store, *corpus.Corpus, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	dataDir := config.DefaultCorpusDir()
	applyStringOverride(cmd, "data-dir", &dataDir, fileCfg.Reader.DataDir, readDataDir)

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	settings, err := st.LoadSettings(context.Background())
	if err != nil {
		_ = st.Close()
		return nil, nil, fmt.Errorf("failed to load settings: %w", err)
	}
	translation := settings.Translation
	applyStringOverride(cmd, "translation", &translation, fileCfg.Reader.Translation, readTranslation)

	c, err := corpus.Load(dataDir, translation)
	if err != nil {
		_ = st.Close()
		return nil, nil, corpusLoadError(translation, dataDir, err)
	}
	return st, c, nil
}

func corpusLoadError(translation, dir string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load bible: %v", err),
		fmt.Sprintf("expected file at: %s", filepath.Join(dir, translation+".json")),
		"List available: selah versions",
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func defaultConfigTemplate() string {
	return `# selah configuration
# Uncomment a value to enable it. CLI flags override config values.

[reader]
# data-dir = ""           # Directory with bible JSON files
# translation = "nvi"     # Bible translation (acf, nvi)
# mode = "chunks"         # Reading mode (chunks, word)
# word-speed = 1.0        # Seconds per word
# font-size = 32          # Verse column size
# night-mode = false      # Night color palette

[music]
# folder = ""             # Folder with background music
# volume = 0.5            # Music volume (0-1)
# enabled = true          # Enable background music
# player = "mpv"          # Preferred audio backend (mpv, ffplay)
`
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
