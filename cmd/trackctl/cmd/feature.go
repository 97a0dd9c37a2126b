package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/feattrack/internal/accounting"
	"github.com/good-yellow-bee/feattrack/internal/models"
	"github.com/good-yellow-bee/feattrack/internal/tree"
)

var (
	featureProject  string
	featureID       string
	featureTitle    string
	featureDesc     string
	featureParent   string
	featureStatus   string
	featureQuery    string
	featureForce    bool
	featureComplete bool
)

// featureCmd represents the feature command group
var featureCmd = &cobra.Command{
	Use:   "feature",
	Short: "Feature management commands",
	Long: `Commands for managing features inside a project.

Features form a tree: each feature can have child features, and deleting a
feature deletes its whole subtree.

Examples:
  # Show a project's feature tree
  trackctl feature tree --project my-project

  # Create a root feature
  trackctl feature create --project my-project --title "Payments"

  # Create a child feature
  trackctl feature create --project my-project --title "Refunds" --parent <id>

  # Mark a feature completed
  trackctl feature complete --id <id>

  # Delete a feature and its subtree
  trackctl feature delete --id <id>`,
}

// featureTreeCmd renders the project's feature hierarchy
var featureTreeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show a project's feature tree",
	Long: `Render the feature hierarchy of a project.

The tree can be filtered by status; ancestors of matching features are kept
so matches stay reachable. With --search, matching features are printed as a
flat list instead.

Status filters: all, completed, not-completed, with-accounting,
without-accounting, accounting-done.

Examples:
  trackctl feature tree --project my-project
  trackctl feature tree --project my-project --status completed
  trackctl feature tree --project my-project --search oauth`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openDB()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		project, err := resolveProject(ctx, store.Projects(), featureProject, "")
		if err != nil {
			return err
		}

		status, err := tree.ParseStatus(featureStatus)
		if err != nil {
			return err
		}

		features, err := store.Features().ListByProject(ctx, project.ID)
		if err != nil {
			return fmt.Errorf("list features: %w", err)
		}

		nodes := tree.Assemble(features)
		nodes = tree.FilterByStatus(nodes, status)

		if featureQuery != "" {
			matches := tree.Search(nodes, featureQuery)
			if len(matches) == 0 {
				fmt.Println("No matching features.")
				return nil
			}
			fmt.Printf("\n%d match(es) in project '%s':\n\n", len(matches), project.Name)
			for _, n := range matches {
				fmt.Printf("  %s %s  (%s)\n", featureMarker(n.Feature), n.Title, n.ID)
			}
			return nil
		}

		if len(nodes) == 0 {
			fmt.Println("No features found.")
			return nil
		}

		fmt.Printf("\n%s\n", project.Name)
		printTree(nodes, "")
		return nil
	},
}

// printTree renders nodes with box-drawing connectors, one node per line.
func printTree(nodes []*tree.Node, prefix string) {
	for i, n := range nodes {
		connector := "├── "
		childPrefix := prefix + "│   "
		if i == len(nodes)-1 {
			connector = "└── "
			childPrefix = prefix + "    "
		}
		fmt.Printf("%s%s%s %s  (%s)\n", prefix, connector, featureMarker(n.Feature), n.Title, n.ID)
		printTree(n.Children, childPrefix)
	}
}

// featureMarker returns the status glyphs for a feature.
func featureMarker(f *models.Feature) string {
	marker := "[ ]"
	if f.IsCompleted {
		marker = "[x]"
	}
	if f.HasAccounting {
		if f.IsAccountingDone {
			marker += " $✓"
		} else {
			marker += " $…"
		}
	}
	return marker
}

// featureCreateCmd creates a feature
var featureCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new feature",
	Long: `Create a feature in a project, optionally under a parent feature.

Examples:
  trackctl feature create --project my-project --title "Payments"
  trackctl feature create --project my-project --title "Refunds" --parent <id>`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if featureTitle == "" {
			return fmt.Errorf("--title is required")
		}

		store, err := openDB()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		project, err := resolveProject(ctx, store.Projects(), featureProject, "")
		if err != nil {
			return err
		}

		if featureParent != "" {
			parent, err := store.Features().GetByID(ctx, featureParent)
			if err != nil {
				return fmt.Errorf("get parent: %w", err)
			}
			if parent == nil {
				return fmt.Errorf("parent feature not found: %s", featureParent)
			}
			if parent.ProjectID != project.ID {
				return fmt.Errorf("parent feature belongs to a different project")
			}
		}

		feature := models.NewFeature(project.ID, strings.TrimSpace(featureTitle))
		feature.Description = strings.TrimSpace(featureDesc)
		feature.ParentID = featureParent

		if err := store.Features().Create(ctx, feature); err != nil {
			return fmt.Errorf("create feature: %w", err)
		}

		fmt.Printf("\nFeature created successfully:\n")
		fmt.Printf("  ID:      %s\n", feature.ID)
		fmt.Printf("  Title:   %s\n", feature.Title)
		fmt.Printf("  Project: %s\n", project.Name)
		if feature.ParentID != "" {
			fmt.Printf("  Parent:  %s\n", feature.ParentID)
		}

		return nil
	},
}

// featureShowCmd shows feature details
var featureShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show feature details",
	Long: `Show detailed information about a single feature.

Example:
  trackctl feature show --id 550e8400-e29b-41d4-a716-446655440000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if featureID == "" {
			return fmt.Errorf("--id is required")
		}

		store, err := openDB()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		feature, err := store.Features().GetByID(ctx, featureID)
		if err != nil {
			return fmt.Errorf("get feature: %w", err)
		}
		if feature == nil {
			return fmt.Errorf("feature not found: %s", featureID)
		}

		children, err := store.Features().ListByParent(ctx, feature.ID)
		if err != nil {
			return fmt.Errorf("list children: %w", err)
		}

		fmt.Println("\nFeature Details:")
		fmt.Printf("  ID:          %s\n", feature.ID)
		fmt.Printf("  Title:       %s\n", feature.Title)
		fmt.Printf("  Description: %s\n", feature.Description)
		fmt.Printf("  Project:     %s\n", feature.ProjectID)
		if feature.ParentID != "" {
			fmt.Printf("  Parent:      %s\n", feature.ParentID)
		}
		fmt.Printf("  Order:       %d\n", feature.Order)
		fmt.Printf("  Completed:   %v\n", feature.IsCompleted)
		fmt.Printf("  Accounting:  required=%v done=%v\n", feature.HasAccounting, feature.IsAccountingDone)
		fmt.Printf("  Images:      %d\n", len(feature.Images))
		fmt.Printf("  Children:    %d\n", len(children))
		fmt.Printf("  Created:     %s\n", feature.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("  Updated:     %s\n", feature.UpdatedAt.Format("2006-01-02 15:04:05"))

		return nil
	},
}

// featureCompleteCmd toggles the completion flag
var featureCompleteCmd = &cobra.Command{
	Use:   "complete",
	Short: "Mark a feature completed or not completed",
	Long: `Set the completion flag on a feature.

Examples:
  trackctl feature complete --id <id>
  trackctl feature complete --id <id> --done=false`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if featureID == "" {
			return fmt.Errorf("--id is required")
		}

		store, err := openDB()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		feature, err := store.Features().GetByID(ctx, featureID)
		if err != nil {
			return fmt.Errorf("get feature: %w", err)
		}
		if feature == nil {
			return fmt.Errorf("feature not found: %s", featureID)
		}

		feature.IsCompleted = featureComplete
		feature.UpdatedAt = time.Now()

		if err := store.Features().Update(ctx, feature); err != nil {
			return fmt.Errorf("update feature: %w", err)
		}

		state := "completed"
		if !featureComplete {
			state = "not completed"
		}
		fmt.Printf("Feature '%s' marked %s\n", feature.Title, state)
		return nil
	},
}

// featureAccountingCmd manages the accounting flags
var featureAccountingCmd = &cobra.Command{
	Use:   "accounting",
	Short: "Set a feature's accounting flags",
	Long: `Set the accounting workflow flags on a feature.

A feature can require an accounting step and, once it does, that step can be
marked done. Marking accounting done on a feature that does not require it is
rejected; switching the requirement off also clears the done flag.

Examples:
  trackctl feature accounting --id <id> --required
  trackctl feature accounting --id <id> --required --done
  trackctl feature accounting --id <id> --required=false`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if featureID == "" {
			return fmt.Errorf("--id is required")
		}

		store, err := openDB()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		feature, err := store.Features().GetByID(ctx, featureID)
		if err != nil {
			return fmt.Errorf("get feature: %w", err)
		}
		if feature == nil {
			return fmt.Errorf("feature not found: %s", featureID)
		}

		change := accounting.Change{}
		if cmd.Flags().Changed("required") {
			v, _ := cmd.Flags().GetBool("required")
			change.HasAccounting = &v
		}
		if cmd.Flags().Changed("done") {
			v, _ := cmd.Flags().GetBool("done")
			change.AccountingDone = &v
		}

		state, err := accounting.Resolve(
			accounting.State{HasAccounting: feature.HasAccounting, AccountingDone: feature.IsAccountingDone},
			change,
		)
		if err != nil {
			return err
		}

		feature.HasAccounting = state.HasAccounting
		feature.IsAccountingDone = state.AccountingDone
		feature.UpdatedAt = time.Now()

		if err := store.Features().Update(ctx, feature); err != nil {
			return fmt.Errorf("update feature: %w", err)
		}

		fmt.Printf("Feature '%s': accounting required=%v done=%v\n",
			feature.Title, feature.HasAccounting, feature.IsAccountingDone)
		return nil
	},
}

// featureMoveCmd re-parents a feature
var featureMoveCmd = &cobra.Command{
	Use:   "move",
	Short: "Move a feature under a new parent",
	Long: `Re-parent a feature. An empty --parent makes it a root feature.

Moving a feature under itself or one of its descendants is rejected.

Examples:
  trackctl feature move --id <id> --parent <other-id>
  trackctl feature move --id <id> --parent ""`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if featureID == "" {
			return fmt.Errorf("--id is required")
		}

		store, err := openDB()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		feature, err := store.Features().GetByID(ctx, featureID)
		if err != nil {
			return fmt.Errorf("get feature: %w", err)
		}
		if feature == nil {
			return fmt.Errorf("feature not found: %s", featureID)
		}

		if featureParent != "" {
			parent, err := store.Features().GetByID(ctx, featureParent)
			if err != nil {
				return fmt.Errorf("get parent: %w", err)
			}
			if parent == nil {
				return fmt.Errorf("parent feature not found: %s", featureParent)
			}
		}

		cycle, err := tree.WouldCreateCycle(ctx, store.Features().GetByID, feature.ID, featureParent)
		if err != nil {
			return fmt.Errorf("cycle check: %w", err)
		}
		if cycle {
			return fmt.Errorf("cannot move a feature under its own descendant")
		}

		feature.ParentID = featureParent
		feature.UpdatedAt = time.Now()

		if err := store.Features().Update(ctx, feature); err != nil {
			return fmt.Errorf("update feature: %w", err)
		}

		if featureParent == "" {
			fmt.Printf("Feature '%s' is now a root feature\n", feature.Title)
		} else {
			fmt.Printf("Feature '%s' moved under %s\n", feature.Title, featureParent)
		}
		return nil
	},
}

// featureDeleteCmd deletes a feature subtree
var featureDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a feature and its subtree",
	Long: `Delete a feature and every descendant feature.

Examples:
  trackctl feature delete --id <id>
  trackctl feature delete --id <id> --force  # skip confirmation`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if featureID == "" {
			return fmt.Errorf("--id is required")
		}

		store, err := openDB()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		feature, err := store.Features().GetByID(ctx, featureID)
		if err != nil {
			return fmt.Errorf("get feature: %w", err)
		}
		if feature == nil {
			return fmt.Errorf("feature not found: %s", featureID)
		}

		if !featureForce {
			fmt.Printf("Delete feature '%s' and all its descendants? [y/N]: ", feature.Title)
			var confirm string
			fmt.Scanln(&confirm)
			if !strings.EqualFold(confirm, "y") {
				fmt.Println("Canceled.")
				return nil
			}
		}

		deleted, err := store.Features().DeleteSubtree(ctx, feature.ID)
		if err != nil {
			return fmt.Errorf("delete feature: %w", err)
		}

		fmt.Printf("Feature deleted: %s (%d features removed)\n", feature.Title, deleted)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(featureCmd)
	featureCmd.AddCommand(featureTreeCmd)
	featureCmd.AddCommand(featureCreateCmd)
	featureCmd.AddCommand(featureShowCmd)
	featureCmd.AddCommand(featureCompleteCmd)
	featureCmd.AddCommand(featureAccountingCmd)
	featureCmd.AddCommand(featureMoveCmd)
	featureCmd.AddCommand(featureDeleteCmd)

	allCmds := []*cobra.Command{
		featureTreeCmd, featureCreateCmd, featureShowCmd,
		featureCompleteCmd, featureAccountingCmd, featureMoveCmd, featureDeleteCmd,
	}
	for _, cmd := range allCmds {
		cmd.Flags().StringVar(&dbPath, "db", defaultDBPath, "path to SQLite database file")
	}

	// Tree flags
	featureTreeCmd.Flags().StringVar(&featureProject, "project", "", "project name (required)")
	featureTreeCmd.Flags().StringVar(&featureStatus, "status", "", "status filter")
	featureTreeCmd.Flags().StringVar(&featureQuery, "search", "", "search title and description")
	featureTreeCmd.MarkFlagRequired("project")

	// Create flags
	featureCreateCmd.Flags().StringVar(&featureProject, "project", "", "project name (required)")
	featureCreateCmd.Flags().StringVar(&featureTitle, "title", "", "feature title (required)")
	featureCreateCmd.Flags().StringVar(&featureDesc, "description", "", "feature description")
	featureCreateCmd.Flags().StringVar(&featureParent, "parent", "", "parent feature ID")
	featureCreateCmd.MarkFlagRequired("project")
	featureCreateCmd.MarkFlagRequired("title")

	// Show flags
	featureShowCmd.Flags().StringVar(&featureID, "id", "", "feature ID (required)")
	featureShowCmd.MarkFlagRequired("id")

	// Complete flags
	featureCompleteCmd.Flags().StringVar(&featureID, "id", "", "feature ID (required)")
	featureCompleteCmd.Flags().BoolVar(&featureComplete, "done", true, "completion state")
	featureCompleteCmd.MarkFlagRequired("id")

	// Accounting flags
	featureAccountingCmd.Flags().StringVar(&featureID, "id", "", "feature ID (required)")
	featureAccountingCmd.Flags().Bool("required", false, "whether the feature requires accounting")
	featureAccountingCmd.Flags().Bool("done", false, "whether the accounting step is done")
	featureAccountingCmd.MarkFlagRequired("id")

	// Move flags
	featureMoveCmd.Flags().StringVar(&featureID, "id", "", "feature ID (required)")
	featureMoveCmd.Flags().StringVar(&featureParent, "parent", "", "new parent feature ID (empty makes it a root)")
	featureMoveCmd.MarkFlagRequired("id")

	// Delete flags
	featureDeleteCmd.Flags().StringVar(&featureID, "id", "", "feature ID (required)")
	featureDeleteCmd.Flags().BoolVar(&featureForce, "force", false, "skip confirmation prompt")
	featureDeleteCmd.MarkFlagRequired("id")
}
