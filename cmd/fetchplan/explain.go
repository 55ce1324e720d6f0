package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/fetchplan"
	"github.com/conduit-lang/fetchplan/path"
	"github.com/conduit-lang/fetchplan/plan"
	"github.com/conduit-lang/fetchplan/schema"
)

var schemaFile string

var explainCmd = &cobra.Command{
	Use:   "explain [entity:path ...]",
	Short: "Compile paths and print the merged directive tree",
	Long: `Explain parses each path in the textual grammar against the schema
file, merges them, and prints the resulting directive tree.

  fetchplan explain --schema shop.json \
      "Order:Items.where($recent).orderBy($name).each().Product" \
      "Order:Items.each().Discounts"

All paths must share one root entity.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExplain,
}

func init() {
	explainCmd.Flags().StringVarP(&schemaFile, "schema", "s", "", "JSON schema file (required)")
	explainCmd.MarkFlagRequired("schema")
}

// entityDef is the schema file's shape for one entity
type entityDef struct {
	Name   string            `json:"name"`
	Fields map[string]string `json:"fields"`
	Edges  []struct {
		Name       string `json:"name"`
		Kind       string `json:"kind"` // "reference" or "collection"
		Target     string `json:"target"`
		Nullable   bool   `json:"nullable"`
		ForeignKey string `json:"foreignKey"`
	} `json:"edges"`
}

func loadRegistry(file string) (*schema.Registry, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	var defs []entityDef
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("failed to parse schema file: %w", err)
	}

	registry := schema.NewRegistry()
	for _, def := range defs {
		entity := schema.NewEntitySchema(def.Name)
		for name, typ := range def.Fields {
			entity.AddField(name, typ)
		}
		for _, edge := range def.Edges {
			switch edge.Kind {
			case "collection":
				entity.AddCollection(edge.Name, edge.Target)
			case "reference", "":
				entity.AddReference(edge.Name, edge.Target, edge.Nullable)
			default:
				return nil, fmt.Errorf("entity %s: edge %s has unknown kind %q", def.Name, edge.Name, edge.Kind)
			}
			if edge.ForeignKey != "" {
				entity.Edges[edge.Name].ForeignKey = edge.ForeignKey
			}
		}
		if err := registry.Register(entity); err != nil {
			return nil, err
		}
	}

	if err := registry.ValidateAll(); err != nil {
		return nil, err
	}
	return registry, nil
}

func runExplain(cmd *cobra.Command, args []string) error {
	registry, err := loadRegistry(schemaFile)
	if err != nil {
		return err
	}

	compiler := fetchplan.New(registry)

	var paths []*path.Path
	for _, arg := range args {
		entity, desc, ok := strings.Cut(arg, ":")
		if !ok {
			return fmt.Errorf("path %q: expected entity:path", arg)
		}
		p, err := path.ParseString(entity, desc)
		if err != nil {
			return err
		}
		paths = append(paths, p)
	}

	tree, err := compiler.Compile(paths...)
	if err != nil {
		return err
	}

	printTree(tree)
	return nil
}

func printTree(tree *plan.Node) {
	rootColor := color.New(color.Bold)
	refColor := color.New(color.FgGreen)
	colColor := color.New(color.FgCyan)
	decorColor := color.New(color.FgYellow)

	rootColor.Println(tree.Entity)
	tree.Walk(func(node *plan.Node, depth int) {
		indent := strings.Repeat("  ", depth+1)
		switch node.Kind {
		case plan.SegmentCollection:
			fmt.Printf("%s%s", indent, colColor.Sprintf("%s []%s", node.Member, node.Entity))
			if !node.Filter.IsZero() {
				fmt.Printf(" %s", decorColor.Sprintf("where($%s)", node.Filter.Name()))
			}
			for _, order := range node.Orders {
				fmt.Printf(" %s", decorColor.Sprintf("orderBy($%s %s)", order.Key.Name(), order.Dir))
			}
			fmt.Println()
		default:
			target := node.Entity
			if target == "" {
				target = "scalar"
			}
			fmt.Printf("%s%s\n", indent, refColor.Sprintf("%s %s", node.Member, target))
		}
	})
}
