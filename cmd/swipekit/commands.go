package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/rushteam/swipekit/core"
	"github.com/rushteam/swipekit/filter"
	"github.com/rushteam/swipekit/selector"
)

var (
	recommendCount   int
	recommendExplain bool
	swipeAt          string
	blockUser        string
	strictTags       bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend USER_ID",
	Short: "Get the next batch of items for a user",
	Example: `  swipekit recommend u42 --count 10
  swipekit recommend u42 --explain --json`,
	Args: cobra.ExactArgs(1),
	RunE: runRecommend,
}

var swipeCmd = &cobra.Command{
	Use:   "swipe USER_ID ITEM_ID accept|reject",
	Short: "Record a swipe decision",
	Long: `Record a swipe decision and print the updated session state.

Decisions are case-insensitive; like/right and dislike/left/skip are accepted
as aliases.`,
	Args: cobra.ExactArgs(3),
	RunE: runSwipe,
}

var ackBreakCmd = &cobra.Command{
	Use:   "ack-break USER_ID",
	Short: "Acknowledge a break suggestion and return the session to normal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine()
		if err != nil {
			return err
		}
		defer e.Close()
		st, err := e.service.AcknowledgeBreak(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printState(cmd.OutOrStdout(), st)
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset USER_ID",
	Short: "Start a new session for a user (keeps lifetime swipe count)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine()
		if err != nil {
			return err
		}
		defer e.Close()
		st, err := e.service.ResetSession(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printState(cmd.OutOrStdout(), st)
	},
}

var importItemsCmd = &cobra.Command{
	Use:   "import-items FILE",
	Short: "Import a YAML item catalog into the sqlite store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEngine()
		if err != nil {
			return err
		}
		defer e.Close()
		var vocab *core.TagVocabulary
		if strictTags {
			vocab = core.NewTagVocabulary(e.cfg.ExtraTags...)
		}
		n, err := e.backend.importItems(cmd.Context(), args[0], vocab)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d items.\n", n)
		return nil
	},
}

var blockCmd = &cobra.Command{
	Use:   "block ITEM_ID...",
	Short: "Replace the global (or --user) item blocklist",
	Long: `Replace the item blocklist stored in the KV backend. Blocked items are
never recommended. Pass no item ids to clear the list.`,
	RunE: runBlock,
}

func init() {
	recommendCmd.Flags().IntVarP(&recommendCount, "count", "n", 10, "Number of items to return")
	recommendCmd.Flags().BoolVar(&recommendExplain, "explain", false, "Show score components for each item")
	swipeCmd.Flags().StringVar(&swipeAt, "at", "", "Swipe time (RFC3339, default now)")
	blockCmd.Flags().StringVar(&blockUser, "user", "", "Set the blocklist of a single user")
	importItemsCmd.Flags().BoolVar(&strictTags, "strict-tags", false, "Reject the import if any item carries a tag outside the vocabulary")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	e, err := openEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	res, err := e.service.GetRecommendations(cmd.Context(), args[0], recommendCount)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if outputJSON {
		payload := map[string]any{"items": res.Items, "suggest_break": res.SuggestBreak}
		if recommendExplain {
			payload["explain"] = explainRows(res.Scored)
		}
		return writeJSON(out, payload)
	}

	if len(res.Items) == 0 {
		fmt.Fprintln(out, "No items available.")
	}
	for i, it := range res.Scored {
		fmt.Fprintf(out, "%2d. %s", i+1, it.ID)
		if recommendExplain {
			fmt.Fprintf(out, "  score=%.2f %s", it.Score, formatFeatures(it.Features))
		}
		fmt.Fprintln(out)
	}
	if res.SuggestBreak {
		fmt.Fprintln(out, "Suggest a break: several items in a row were rejected.")
	}
	return nil
}

func runSwipe(cmd *cobra.Command, args []string) error {
	decision, err := core.ParseDecision(args[2])
	if err != nil {
		return err
	}
	var at time.Time
	if swipeAt != "" {
		if at, err = time.Parse(time.RFC3339, swipeAt); err != nil {
			return fmt.Errorf("parse --at: %w", err)
		}
	}

	e, err := openEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	st, err := e.service.RecordSwipe(cmd.Context(), args[0], args[1], decision, at)
	if err != nil && st == nil {
		return err
	}
	if perr := printState(cmd.OutOrStdout(), st); perr != nil {
		return perr
	}
	return err
}

func runBlock(cmd *cobra.Command, args []string) error {
	e, err := openEngine()
	if err != nil {
		return err
	}
	defer e.Close()
	if e.backend.kv == nil {
		return core.ErrStoreNotSupported.Wrap(fmt.Errorf("blocklists need the memory or redis backend"))
	}

	key := selector.BlocklistKey
	if blockUser != "" {
		key = selector.UserBlocklistPrefix + ":" + blockUser
	}
	if err := filter.NewStoreAdapter(e.backend.kv).SetBlocklist(cmd.Context(), key, args); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Blocked %d items (%s).\n", len(args), key)
	return nil
}

func printState(w io.Writer, st *core.SessionState) error {
	if outputJSON {
		return writeJSON(w, st)
	}
	fmt.Fprintf(w, "status: %s\n", st.Status)
	fmt.Fprintf(w, "consecutive_rejections: %d\n", st.ConsecutiveRejections)
	if st.LastDecisionCategory != "" {
		fmt.Fprintf(w, "last_category: %s\n", st.LastDecisionCategory)
	}
	fmt.Fprintf(w, "shown: %d\n", len(st.ShownItemIDs))
	fmt.Fprintf(w, "lifetime_swipes: %d\n", st.TotalLifetimeSwipes)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func explainRows(items []*core.Item) []map[string]any {
	rows := make([]map[string]any, 0, len(items))
	for _, it := range items {
		labels := make(map[string]string, len(it.Labels))
		for k, l := range it.Labels {
			labels[k] = l.Value
		}
		rows = append(rows, map[string]any{
			"item_id":  it.ID,
			"score":    it.Score,
			"features": it.Features,
			"labels":   labels,
		})
	}
	return rows
}

func formatFeatures(f map[string]float64) string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%.3f", k, f[k]))
	}
	return strings.Join(parts, " ")
}
