package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/feattrack/internal/models"
	"github.com/good-yellow-bee/feattrack/internal/storage"
)

// defaultDBPath is the default database path, can be overridden via FEATTRACK_DB_PATH env var
var defaultDBPath = "data/feattrack.db"

func init() {
	if envPath := os.Getenv("FEATTRACK_DB_PATH"); envPath != "" {
		defaultDBPath = envPath
	}
}

var (
	dbPath         string
	projectName    string
	projectID      string
	projectDesc    string
	projectNewName string
	projectForce   bool
)

// projectCmd represents the project command group
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project management commands",
	Long: `Commands for managing FeatTrack projects.

A project owns a tree of features; deleting a project deletes all of them.
These commands operate directly on the database file.

Examples:
  # List all projects
  trackctl project list

  # Create a new project
  trackctl project create --name my-project --description "My project"

  # Show project details
  trackctl project show --name my-project

  # Delete a project and its features
  trackctl project delete --name my-project`,
}

// projectListCmd lists all projects
var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all projects",
	Long: `List all projects in the database.

Displays project ID, name, description, feature count, and creation date.

Example:
  trackctl project list`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openDB()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		projects, err := store.Projects().List(ctx)
		if err != nil {
			return fmt.Errorf("list projects: %w", err)
		}

		if len(projects) == 0 {
			fmt.Println("No projects found.")
			return nil
		}

		// Print header
		fmt.Printf("\n%-36s  %-20s  %-30s  %-8s  %s\n",
			"ID", "NAME", "DESCRIPTION", "FEATURES", "CREATED")
		fmt.Println(strings.Repeat("-", 110))

		for _, p := range projects {
			features, err := store.Features().ListByProject(ctx, p.ID)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not fetch features for %s: %v\n", p.Name, err)
			}
			desc := p.Description
			if len(desc) > 28 {
				desc = desc[:28] + ".."
			}
			fmt.Printf("%-36s  %-20s  %-30s  %-8d  %s\n",
				p.ID,
				truncate(p.Name, 20),
				desc,
				len(features),
				p.CreatedAt.Format("2006-01-02 15:04"),
			)
		}
		fmt.Printf("\nTotal: %d project(s)\n", len(projects))

		return nil
	},
}

// projectCreateCmd creates a new project
var projectCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new project",
	Long: `Create a new project in the database.

Example:
  trackctl project create --name my-project --description "My project description"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if projectName == "" {
			return fmt.Errorf("--name is required")
		}

		store, err := openDB()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()

		// Check name uniqueness
		existing, err := store.Projects().GetByName(ctx, strings.TrimSpace(projectName))
		if err != nil {
			return fmt.Errorf("check existing project: %w", err)
		}
		if existing != nil {
			return fmt.Errorf("project name already exists: %s", projectName)
		}

		project := models.NewProject(strings.TrimSpace(projectName), strings.TrimSpace(projectDesc))

		if err := store.Projects().Create(ctx, project); err != nil {
			return fmt.Errorf("create project: %w", err)
		}

		fmt.Printf("\nProject created successfully:\n")
		fmt.Printf("  ID:          %s\n", project.ID)
		fmt.Printf("  Name:        %s\n", project.Name)
		fmt.Printf("  Description: %s\n", project.Description)

		return nil
	},
}

// projectShowCmd shows project details
var projectShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show project details",
	Long: `Show detailed information about a project.

You can identify the project by either --name or --id.

Examples:
  trackctl project show --name my-project
  trackctl project show --id 550e8400-e29b-41d4-a716-446655440000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openDB()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		project, err := resolveProject(ctx, store.Projects(), projectName, projectID)
		if err != nil {
			return err
		}

		features, err := store.Features().ListByProject(ctx, project.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not fetch features: %v\n", err)
		}

		completed := 0
		for _, f := range features {
			if f.IsCompleted {
				completed++
			}
		}

		fmt.Println("\nProject Details:")
		fmt.Printf("  ID:          %s\n", project.ID)
		fmt.Printf("  Name:        %s\n", project.Name)
		fmt.Printf("  Description: %s\n", project.Description)
		fmt.Printf("  Features:    %d (%d completed)\n", len(features), completed)
		fmt.Printf("  Created:     %s\n", project.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("  Updated:     %s\n", project.UpdatedAt.Format("2006-01-02 15:04:05"))

		return nil
	},
}

// projectUpdateCmd updates a project
var projectUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update project name or description",
	Long: `Update an existing project's name or description.

Examples:
  trackctl project update --name my-project --new-name new-name
  trackctl project update --name my-project --description "New description"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openDB()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		project, err := resolveProject(ctx, store.Projects(), projectName, projectID)
		if err != nil {
			return err
		}

		// Check if any update is requested
		if projectNewName == "" && !cmd.Flags().Changed("description") {
			return fmt.Errorf("specify --new-name or --description to update")
		}

		if projectNewName != "" {
			// Check uniqueness of new name
			existing, err := store.Projects().GetByName(ctx, strings.TrimSpace(projectNewName))
			if err != nil {
				return fmt.Errorf("check existing project: %w", err)
			}
			if existing != nil && existing.ID != project.ID {
				return fmt.Errorf("project name already exists: %s", projectNewName)
			}
			project.Name = strings.TrimSpace(projectNewName)
		}

		if cmd.Flags().Changed("description") {
			project.Description = strings.TrimSpace(projectDesc)
		}

		project.UpdatedAt = time.Now()

		if err := store.Projects().Update(ctx, project); err != nil {
			return fmt.Errorf("update project: %w", err)
		}

		fmt.Printf("Project updated: %s\n", project.Name)
		return nil
	},
}

// projectDeleteCmd deletes a project
var projectDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a project and all its features",
	Long: `Delete a project from the database.

Every feature in the project is deleted with it.

Examples:
  trackctl project delete --name my-project
  trackctl project delete --name my-project --force  # skip confirmation`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openDB()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		project, err := resolveProject(ctx, store.Projects(), projectName, projectID)
		if err != nil {
			return err
		}

		if !projectForce {
			fmt.Printf("Delete project '%s' and all its features? [y/N]: ", project.Name)
			var confirm string
			fmt.Scanln(&confirm)
			if !strings.EqualFold(confirm, "y") {
				fmt.Println("Canceled.")
				return nil
			}
		}

		deleted, err := store.Features().DeleteByProject(ctx, project.ID)
		if err != nil {
			return fmt.Errorf("delete features: %w", err)
		}

		if err := store.Projects().Delete(ctx, project.ID); err != nil {
			return fmt.Errorf("delete project: %w", err)
		}

		fmt.Printf("Project deleted: %s (%d features removed)\n", project.Name, deleted)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectUpdateCmd)
	projectCmd.AddCommand(projectDeleteCmd)

	// DB flag for all commands (optional, defaults to ./data/feattrack.db)
	allCmds := []*cobra.Command{
		projectListCmd, projectCreateCmd, projectShowCmd,
		projectUpdateCmd, projectDeleteCmd,
	}
	for _, cmd := range allCmds {
		cmd.Flags().StringVar(&dbPath, "db", defaultDBPath, "path to SQLite database file")
	}

	// Create flags
	projectCreateCmd.Flags().StringVar(&projectName, "name", "", "project name (required)")
	projectCreateCmd.Flags().StringVar(&projectDesc, "description", "", "project description")
	projectCreateCmd.MarkFlagRequired("name")

	// Show flags
	projectShowCmd.Flags().StringVar(&projectName, "name", "", "project name")
	projectShowCmd.Flags().StringVar(&projectID, "id", "", "project ID")

	// Update flags
	projectUpdateCmd.Flags().StringVar(&projectName, "name", "", "project name")
	projectUpdateCmd.Flags().StringVar(&projectID, "id", "", "project ID")
	projectUpdateCmd.Flags().StringVar(&projectNewName, "new-name", "", "new project name")
	projectUpdateCmd.Flags().StringVar(&projectDesc, "description", "", "new project description")

	// Delete flags
	projectDeleteCmd.Flags().StringVar(&projectName, "name", "", "project name")
	projectDeleteCmd.Flags().StringVar(&projectID, "id", "", "project ID")
	projectDeleteCmd.Flags().BoolVar(&projectForce, "force", false, "skip confirmation prompt")
}

// openDB opens the SQLite database at the configured path.
func openDB() (*storage.SQLiteStorage, error) {
	store := storage.NewSQLiteStorage(dbPath)
	if err := store.Open(); err != nil {
		return nil, fmt.Errorf("open database at %s: %w", dbPath, err)
	}
	return store, nil
}

// resolveProject finds a project by name or ID (ID takes precedence).
func resolveProject(ctx context.Context, repo storage.ProjectRepository, name, id string) (*models.Project, error) {
	if id == "" && name == "" {
		return nil, fmt.Errorf("specify --name or --id")
	}
	if id != "" {
		p, err := repo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get project: %w", err)
		}
		if p == nil {
			return nil, fmt.Errorf("project not found: %s", id)
		}
		return p, nil
	}
	p, err := repo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("project not found: %s", name)
	}
	return p, nil
}

// truncate truncates a string to the given length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-2] + ".."
}
