package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bexmcp/internal/bexio"
	"bexmcp/internal/completion"
	"bexmcp/internal/tools"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools this server exposes",
	Long:  `List every tool the MCP server exposes, with required arguments highlighted.`,
	Run: func(cmd *cobra.Command, args []string) {
		// definitions need no token or network
		client := bexio.New(bexio.Options{Token: "-"})
		engine := completion.NewEngine(completion.NewBexioLookup(client, nil))
		registry := tools.NewBexioRegistry(client, engine)

		printToolList(registry.List())
	},
}

func printToolList(defs []tools.ToolDefinition) {
	heading := color.New(color.FgCyan, color.Bold)
	name := color.New(color.FgGreen)
	required := color.New(color.FgYellow)

	groups := make(map[string][]tools.ToolDefinition)
	for _, def := range defs {
		groups[toolGroup(def.Name)] = append(groups[toolGroup(def.Name)], def)
	}

	groupNames := make([]string, 0, len(groups))
	for g := range groups {
		groupNames = append(groupNames, g)
	}
	sort.Strings(groupNames)

	fmt.Printf("%d tools\n", len(defs))
	for _, g := range groupNames {
		heading.Printf("\n%s\n", g)
		for _, def := range groups[g] {
			fmt.Printf("  %s", name.Sprint(def.Name))
			if def.InputSchema != nil && len(def.InputSchema.Required) > 0 {
				fmt.Printf("  %s", required.Sprintf("(requires %s)", strings.Join(def.InputSchema.Required, ", ")))
			}
			fmt.Printf("\n      %s\n", def.Description)
		}
	}
}

// toolGroup buckets a tool name by the resource it operates on.
func toolGroup(name string) string {
	switch {
	case strings.Contains(name, "contact"):
		return "Contacts"
	case strings.Contains(name, "invoice"):
		return "Invoices"
	case strings.Contains(name, "quote"):
		return "Quotes"
	case strings.Contains(name, "project"):
		return "Projects"
	case strings.Contains(name, "item"):
		return "Items"
	case strings.Contains(name, "timesheet"):
		return "Time tracking"
	case strings.Contains(name, "client_service"), strings.Contains(name, "business_activity"), strings.Contains(name, "business_activities"):
		return "Services"
	default:
		return "Accounting"
	}
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}
