// Package main implements the oap-plan inspection tool. It plans a scan
// against a cataloged table and prints the resulting plan tree, task
// layout, and planning statistics, so operators can see which reader the
// selector picked and how files were packed without running a query.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/tgm2018/OAP/internal/catalog"
	"github.com/tgm2018/OAP/internal/config"
	"github.com/tgm2018/OAP/internal/expr"
	"github.com/tgm2018/OAP/internal/format"
	"github.com/tgm2018/OAP/internal/planner"
	"github.com/tgm2018/OAP/internal/storage"
	"github.com/tgm2018/OAP/pkg/types"
)

type cliConfig struct {
	CatalogPath string
	StoragePath string
	Table       string
	Projection  string
	ConfigPath  string
	EnvPath     string
	FromStorage bool
	Filters     []string
}

func main() {
	cli := parseFlags()

	if err := config.LoadDotEnv(cli.EnvPath); err != nil {
		log.Fatalf("Failed to load env file: %v", err)
	}

	cfg := config.DefaultPlanningConfig()
	if cli.ConfigPath != "" {
		loaded, err := config.LoadFromFile(cli.ConfigPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	config.LoadFromEnv(&cfg)

	store, err := storage.NewLocalStorage(cli.StoragePath)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	cat, err := catalog.NewCatalog(cli.CatalogPath)
	if err != nil {
		log.Fatalf("Failed to open catalog: %v", err)
	}
	defer cat.Close()

	ctx := context.Background()

	table, err := cat.GetTable(ctx, cli.Table)
	if err != nil {
		log.Fatalf("Failed to load table %q: %v", cli.Table, err)
	}

	filters, err := parseFilters(cli.Filters, table.Output())
	if err != nil {
		log.Fatalf("Failed to parse filters: %v", err)
	}

	var projection []string
	if cli.Projection != "" {
		for _, name := range strings.Split(cli.Projection, ",") {
			projection = append(projection, strings.TrimSpace(name))
		}
	}

	var lister catalog.FileLister
	if cli.FromStorage {
		lister = catalog.NewStorageLister(store, table)
	} else {
		lister = catalog.NewCatalogLister(cat, table)
	}

	req := planner.ScanRequest{
		Table:      table,
		Reader:     baseReader(table, store),
		Lister:     lister,
		Storage:    store,
		Filters:    filters,
		Projection: projection,
		Options:    table.Options,
		Config:     cfg,
	}

	plan, err := planner.Plan(ctx, req)
	if err != nil {
		log.Fatalf("Planning failed: %v", err)
	}
	if plan == nil {
		log.Fatalf("Table %q is not plannable", cli.Table)
	}

	fmt.Printf("Plan %s\n\n", plan.PlanID)
	fmt.Print(plan.Explain())

	fmt.Printf("\nTasks (%d):\n", len(plan.Scan.Tasks))
	for _, task := range plan.Scan.Tasks {
		fmt.Printf("  [%d] %d bytes\n", task.Index, task.SizeBytes())
		for _, chunk := range task.Chunks {
			fmt.Printf("      %s\n", chunk)
		}
	}

	st := plan.Stats
	fmt.Printf("\nStats: files=%d bytes=%d chunks=%d tasks=%d filters(partition=%d data=%d residual=%d) format=%s substituted=%v\n",
		st.CandidateFiles, st.SelectedBytes, st.SplitChunks, st.Tasks,
		st.PartitionFilters, st.DataFilters, st.ResidualFilters,
		st.FinalFormat, st.ReaderSubstituted)
}

func parseFlags() cliConfig {
	cli := cliConfig{}

	flag.StringVar(&cli.CatalogPath, "catalog", "./data/catalog.db", "Path to the catalog database")
	flag.StringVar(&cli.StoragePath, "storage", "./data/storage", "Path to the object storage directory")
	flag.StringVar(&cli.Table, "table", "", "Table to plan (required)")
	flag.StringVar(&cli.Projection, "project", "", "Comma-separated output columns (default: all)")
	flag.StringVar(&cli.ConfigPath, "config", "", "Planning config file (YAML or JSON)")
	flag.StringVar(&cli.EnvPath, "env", "", "Optional .env file")
	flag.BoolVar(&cli.FromStorage, "from-storage", false, "List files from storage instead of the catalog")
	flag.Func("filter", "Predicate like \"col >= 10\" (repeatable)", func(v string) error {
		cli.Filters = append(cli.Filters, v)
		return nil
	})

	flag.Parse()

	if cli.Table == "" {
		flag.Usage()
		os.Exit(2)
	}
	return cli
}

// baseReader returns the capability matching the table's cataloged
// format. Tables already migrated to an optimized format get the
// optimized capability directly, which the selector will re-initialize.
func baseReader(table *catalog.TableDescriptor, store storage.ObjectStorage) format.ReaderCapability {
	switch table.Format {
	case format.KindOptimizedParquet:
		return format.NewOptimizedParquet(store, table.Root)
	case format.KindOptimizedOrc:
		return format.NewOptimizedOrc(store, table.Root)
	default:
		return format.BaseReader(table.Format)
	}
}

var comparisonOps = []string{"<=", ">=", "<>", "!=", "=", "<", ">"}

// parseFilters parses the CLI's comparison predicates. The syntax is
// deliberately tiny: one comparison per flag, column on the left.
func parseFilters(raw []string, output types.Schema) ([]expr.Expression, error) {
	var filters []expr.Expression
	for _, s := range raw {
		f, err := parseComparison(s, output)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

func parseComparison(s string, output types.Schema) (expr.Expression, error) {
	for _, op := range comparisonOps {
		idx := strings.Index(s, op)
		if idx <= 0 {
			continue
		}
		name := strings.TrimSpace(s[:idx])
		rhs := strings.TrimSpace(s[idx+len(op):])
		if name == "" || rhs == "" {
			break
		}

		col, ok := output.Resolve(name)
		if !ok {
			return nil, fmt.Errorf("unknown column %q in filter %q", name, s)
		}

		normalized := expr.CompareOp(op)
		if op == "!=" {
			normalized = expr.OpNe
		}
		return expr.NewComparison(normalized, expr.NewColumnRef(col), parseLiteral(rhs)), nil
	}
	return nil, fmt.Errorf("cannot parse filter %q: expected <column> <op> <literal>", s)
}

// parseLiteral infers the literal type from the token: bool, int, float,
// then quoted or bare string.
func parseLiteral(tok string) *expr.Literal {
	if b, err := strconv.ParseBool(tok); err == nil && (tok == "true" || tok == "false") {
		return expr.NewLiteral(b, types.TypeBoolean)
	}
	if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return expr.NewLiteral(n, types.TypeInt64)
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return expr.NewLiteral(f, types.TypeFloat64)
	}
	tok = strings.Trim(tok, "'\"")
	return expr.NewLiteral(tok, types.TypeString)
}
