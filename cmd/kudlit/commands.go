package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/kudlit/internal/api"
	"github.com/verte-zerg/kudlit/internal/backend"
	"github.com/verte-zerg/kudlit/internal/config"
	"github.com/verte-zerg/kudlit/internal/model"
	"github.com/verte-zerg/kudlit/internal/quest"
	"github.com/verte-zerg/kudlit/internal/report"
	"github.com/verte-zerg/kudlit/internal/rewards"
	"github.com/verte-zerg/kudlit/internal/script"
)

const defaultLeaderboardLimit = 10

var (
	decodeRaw      bool
	decodeRecord   bool
	encodeRecord   bool
	profileName    string
	leaderboardMax int
	serveListen    string
)

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [text]",
		Short: "Transliterate Baybayin to Latin (reads stdin without arguments)",
		RunE:  runDecodeCmd,
	}
	cmd.Flags().BoolVar(&decodeRaw, "raw", false, "skip normalization")
	cmd.Flags().BoolVar(&decodeRecord, "record", false, "count the transliteration toward quests")
	return cmd
}

func runDecodeCmd(cmd *cobra.Command, args []string) error {
	text, err := inputText(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	var warnings []string
	if !decodeRaw {
		text, warnings = script.Normalize(text, script.ToLatin)
	}
	res := script.DecodeDetailed(text)
	if err := report.WriteDecode(cmd.OutOrStdout(), res, warnings); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if decodeRecord && !res.Empty() {
		return recordTransliteration(cmd)
	}
	return nil
}

func newEncodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode [text]",
		Short: "Transliterate Latin to Baybayin through the backend",
		RunE:  runEncodeCmd,
	}
	cmd.Flags().BoolVar(&encodeRecord, "record", false, "count the transliteration toward quests")
	return cmd
}

func runEncodeCmd(cmd *cobra.Command, args []string) error {
	text, err := inputText(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	normalized, warnings := script.Normalize(text, script.ToBaybayin)
	client := backend.New(settings.BackendURL, settings.BackendTimeout)
	resp, err := client.ToBaybayin(cmd.Context(), normalized)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintln(out, resp.Text); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	for _, w := range append(warnings, resp.Warnings...) {
		logErrf("warning: %s\n", w)
	}
	if encodeRecord {
		return recordTransliteration(cmd)
	}
	return nil
}

func recordTransliteration(cmd *cobra.Command) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	if _, err := a.rewards.Transliterated(cmd.Context(), a.settings.User); err != nil {
		return fmt.Errorf("failed to record transliteration: %w", err)
	}
	return nil
}

func newTableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "table",
		Short: "Show the Baybayin glyph table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return report.WriteGlyphTable(cmd.OutOrStdout(), report.GlyphRows(script.Table()))
		},
	}
}

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Record today's login and show quests",
		Args:  cobra.NoArgs,
		RunE:  runLoginCmd,
	}
}

func runLoginCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.rewards.Login(cmd.Context(), a.settings.User)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if out.FirstToday {
		fmt.Fprintf(w, "Logged in. Streak: %d day(s)\n\n", out.Record.LoginStreak)
	} else {
		fmt.Fprintf(w, "Already logged in today. Streak: %d day(s)\n\n", out.Record.LoginStreak)
	}
	return report.WriteQuests(w, out.Quests, report.ShouldUseColor(w, globalColor))
}

func newQuestsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quests",
		Short: "Show daily and weekly quests",
		Args:  cobra.NoArgs,
		RunE:  runQuestsCmd,
	}
}

func runQuestsCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	statuses, err := a.rewards.Quests(cmd.Context(), a.settings.User)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	return report.WriteQuests(w, statuses, report.ShouldUseColor(w, globalColor))
}

func newClaimCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "claim <quest>",
		Short: "Claim the reward of a completed quest",
		Args:  cobra.ExactArgs(1),
		RunE:  runClaimCmd,
	}
}

func runClaimCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	questID := strings.TrimSpace(args[0])
	out, err := a.rewards.Claim(cmd.Context(), a.settings.User, questID)
	switch {
	case errors.Is(err, rewards.ErrUnknownQuest):
		ids := make([]string, 0)
		for _, def := range a.rewards.Catalog() {
			ids = append(ids, def.ID)
		}
		return fmt.Errorf("unknown quest %q (available: %s)", questID, strings.Join(ids, ", "))
	case errors.Is(err, rewards.ErrQuestNotCompleted):
		return fmt.Errorf("quest %s is not completed yet (%d/%d)", questID, out.Quest.Progress, out.Quest.Quest.Target)
	case err != nil:
		return err
	}
	w := cmd.OutOrStdout()
	if !out.Claimed {
		_, err = fmt.Fprintf(w, "%s was already claimed this %s\n", questID, periodNoun(out.Quest.Quest.Period))
		return err
	}
	_, err = fmt.Fprintf(w, "Claimed %s: +%d points (total %d)\n", questID, out.Points, out.TotalScore)
	return err
}

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show score, streak and rank",
		Args:  cobra.NoArgs,
		RunE:  runProfileCmd,
	}
	cmd.Flags().StringVar(&profileName, "name", "", "set the display name shown on the leaderboard")
	return cmd
}

func runProfileCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	uid := a.settings.User
	if cmd.Flags().Changed("name") {
		if _, err := a.rewards.SetDisplayName(ctx, uid, profileName); err != nil {
			return err
		}
	}

	var (
		board   rewards.Board
		entries []model.LeaderboardEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		board, err = a.rewards.NewBoardLoader().Load(gctx, uid)
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = a.rewards.Leaderboard(gctx, 0)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if err := report.WriteProfile(w, board.Snapshot); err != nil {
		return err
	}
	for _, e := range entries {
		if e.UserID == uid {
			fmt.Fprintf(w, "Rank:          %d of %d\n", e.Rank, len(entries))
			break
		}
	}
	claimable := 0
	for _, st := range board.Quests {
		if st.State == quest.Completed {
			claimable++
		}
	}
	if claimable > 0 {
		fmt.Fprintf(w, "Claimable:     %d quest(s), run: kudlit quests\n", claimable)
	}
	return nil
}

func newLeaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show top users by score",
		Args:  cobra.NoArgs,
		RunE:  runLeaderboardCmd,
	}
	cmd.Flags().IntVar(&leaderboardMax, "limit", defaultLeaderboardLimit, "number of users to show (0 for all)")
	return cmd
}

func runLeaderboardCmd(cmd *cobra.Command, _ []string) error {
	if leaderboardMax < 0 {
		return fmt.Errorf("--limit must be >= 0")
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	entries, err := a.rewards.Leaderboard(cmd.Context(), leaderboardMax)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	return report.WriteLeaderboard(w, entries, a.settings.User, report.ShouldUseColor(w, globalColor))
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveListen, "listen", config.DefaultListen, "listen address")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	applyStringFlag(cmd, "listen", &a.settings.Listen, serveListen)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := api.NewServer(a.settings.Listen, api.Options{
		Rewards:      a.rewards,
		Backend:      a.backend(),
		Logger:       a.logger,
		AllowOrigins: a.settings.AllowOrigins,
	})
	return srv.ListenAndServe(ctx)
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
		logErrf("Wrote %s\n", path)
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

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# kudlit configuration
# Uncomment a value to enable it. KUDLIT_* environment variables override
# this file, and CLI flags override both.

[profile]
# user = %q               # User id for progress tracking
# display-name = ""        # Name shown on the leaderboard

[store]
# db = %q
# read-timeout = %q        # Timeout for progress store reads

[backend]
# url = "http://localhost:8000"   # Latin to Baybayin transliteration backend
# timeout = %q

[server]
# listen = %q
# allow-origins = ["http://localhost:8100"]

[log]
# level = %q              # debug, info, warn, error
# format = %q             # text or json
`,
		config.DefaultUser,
		config.DefaultDBPath(),
		config.DefaultReadTimeout.String(),
		config.DefaultBackendTimeout.String(),
		config.DefaultListen,
		config.DefaultLogLevel,
		config.DefaultLogFormat,
	)
}

func inputText(stdin io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	var b strings.Builder
	scanner := bufio.NewScanner(stdin)
	first := true
	for scanner.Scan() {
		if !first {
			b.WriteByte('\n')
		}
		b.WriteString(scanner.Text())
		first = false
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	if strings.TrimSpace(b.String()) == "" {
		logErrln("No text provided. Pass text as arguments or on stdin.")
		return "", fmt.Errorf("no text provided")
	}
	return b.String(), nil
}

func periodNoun(p model.Period) string {
	if p == model.PeriodWeekly {
		return "week"
	}
	return "day"
}
