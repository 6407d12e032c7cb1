// Command pipelinectl is a reference CLI over the transformation engine:
// it resolves a calendar/period/resolver set into locations, runs a
// pipeline's operations against an in-memory (or, with -db, BadgerDB-backed)
// catalog, and renders diagnostics as colorized tables. It plays the role
// the teacher's cmd/datalog does for the query engine: a demo-data seeder
// plus a single-shot runner, not a production entrypoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"

	"github.com/bocacorazon/dobonomodo-sub001/internal/catalogfile"
	"github.com/bocacorazon/dobonomodo-sub001/internal/dsl"
	"github.com/bocacorazon/dobonomodo-sub001/internal/exec"
	"github.com/bocacorazon/dobonomodo-sub001/internal/frame"
	"github.com/bocacorazon/dobonomodo-sub001/internal/model"
	"github.com/bocacorazon/dobonomodo-sub001/internal/refimpl"
	"github.com/bocacorazon/dobonomodo-sub001/internal/refimpl/badgerstore"
	"github.com/bocacorazon/dobonomodo-sub001/internal/resolver"
)

func main() {
	var dbPath string
	var catalogPath string
	var help bool
	var periodIdentifier string

	flag.StringVar(&dbPath, "db", "", "badger database path (default: in-memory catalog)")
	flag.StringVar(&catalogPath, "catalog", "", "YAML catalog file to load in place of the built-in demo catalog")
	flag.BoolVar(&help, "h", false, "show help")
	flag.StringVar(&periodIdentifier, "period", "2026-01", "period identifier to resolve and run against")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Resolves and runs a demo pipeline against a calendar/dataset catalog.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                      # Run the demo against an in-memory catalog\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -db ./pipelinectl.db # Persist the catalog to a BadgerDB directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -period 2026-Q1      # Resolve and run against a different period\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -catalog ledger.yaml # Load the catalog from a YAML file instead of the demo\n", os.Args[0])
	}
	flag.Parse()

	if help {
		flag.Usage()
		os.Exit(0)
	}

	ctx := context.Background()

	store, closeStore, err := openStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open catalog: %v\n", err)
		os.Exit(1)
	}
	defer closeStore()

	var demo demoCatalog
	if catalogPath != "" {
		demo, err = loadCatalogFromFile(store, catalogPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load catalog %s: %v\n", catalogPath, err)
			os.Exit(1)
		}
	} else {
		demo = seedDemo(store)
	}

	loader := refimpl.NewMemoryDataLoader()
	loader.Seed(periodIdentifier, []map[string]any{
		{"region": "us-east", "amount": 100.0, "_period": periodIdentifier},
		{"region": "us-west", "amount": 250.0, "_period": periodIdentifier},
		{"region": "us-east", "amount": -40.0, "_period": periodIdentifier},
	})
	writer := refimpl.NewMemoryOutputWriter()
	tracer := refimpl.NewMemoryTraceWriter()

	period, found := findPeriodByIdentifier(demo.periods, periodIdentifier)
	if !found {
		fmt.Fprintf(os.Stderr, "no period with identifier %q in demo calendar\n", periodIdentifier)
		os.Exit(1)
	}

	engine := resolver.NewResolverEngine(&demo.calendar, demo.periods)
	locations, diag, outcome, err := engine.Resolve(&demo.resolver, period)
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolution failed: %v\n", err)
		os.Exit(1)
	}

	printResolution(locations, diag, outcome)

	if len(locations) == 0 {
		fmt.Println("no location resolved, nothing to run")
		return
	}

	plan := exec.ExecutionPlan{
		SourceLocation: locations[0],
		Schema:         demo.schema,
		PeriodID:       periodIdentifier,
		AsOf:           periodIdentifier,
	}

	run := &model.Run{
		ID:         uuid.New(),
		ProjectID:  demo.project.ID,
		DatasetID:  demo.dataset.ID,
		PeriodID:   period.ID,
		Status:     model.RunRunning,
		Trigger:    model.TriggerManual,
		Operations: demo.operations,
	}

	pipeline := exec.NewPipeline(store, loader, writer, tracer)
	if err := pipeline.Execute(ctx, run, plan); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("run failed:"), err)
		printTrace(tracer.Events(run.ID.String()))
		os.Exit(1)
	}

	fmt.Println(color.GreenString("run succeeded"))
	printTrace(tracer.Events(run.ID.String()))

	written := writer.Written(demo.outputResolverID)
	for i, f := range written {
		fmt.Printf("\noutput frame %d:\n", i)
		printFrame(f)
	}
}

type storeCloser func()

func openStore(dbPath string) (exec.MetadataStore, storeCloser, error) {
	if dbPath == "" {
		return refimpl.NewMemoryMetadataStore(), func() {}, nil
	}
	bs, err := badgerstore.Open(dbPath)
	if err != nil {
		return nil, nil, err
	}
	return bs, func() { _ = bs.Close() }, nil
}

// demoCatalog is the seed data wired into either catalog implementation:
// one calendar (Year > Quarter > Month), one resolver with a single
// path-strategy rule at the Month level, and one dataset with a three
// column schema (region, amount, _period).
type demoCatalog struct {
	calendar         model.Calendar
	periods          []model.Period
	resolver         model.Resolver
	project          model.Project
	dataset          model.Dataset
	schema           frame.Schema
	operations       []model.OperationInstance
	outputResolverID string
}

func seedDemo(store exec.MetadataStore) demoCatalog {
	calendarID := uuid.New()
	calendar := model.Calendar{
		ID:        calendarID,
		Name:      "fiscal",
		Status:    model.CalendarActive,
		IsDefault: true,
		Levels: []model.Level{
			{Name: "Year", Sequence: 0, Pattern: `^\d{4}$`},
			{Name: "Quarter", Sequence: 1, Pattern: `^\d{4}-Q[1-4]$`},
			{Name: "Month", Sequence: 2, Pattern: `^\d{4}-\d{2}$`},
		},
	}

	year := model.Period{ID: uuid.New(), CalendarID: calendarID, Name: "2026", Identifier: "2026", Sequence: 0, StartDate: "2026-01-01", EndDate: "2026-12-31"}
	quarter := model.Period{ID: uuid.New(), CalendarID: calendarID, Name: "2026 Q1", Identifier: "2026-Q1", ParentID: &year.ID, Sequence: 0, StartDate: "2026-01-01", EndDate: "2026-03-31"}
	month := model.Period{ID: uuid.New(), CalendarID: calendarID, Name: "2026-01", Identifier: "2026-01", ParentID: &quarter.ID, Sequence: 0, StartDate: "2026-01-01", EndDate: "2026-01-31"}
	periods := []model.Period{year, quarter, month}

	outputResolverID := "ledger-out"
	res := model.Resolver{
		ID:   "ledger",
		Name: "ledger resolver",
		Rules: []model.ResolutionRule{
			{
				ID:         uuid.New(),
				ResolverID: "ledger",
				Level:      "Month",
				Condition:  "level == 'Month'",
				Priority:   0,
				Strategy:   model.PathStrategy{Template: "ledger/{identifier}.parquet"},
			},
		},
	}

	project := model.Project{ID: uuid.New(), Name: "ledger-demo"}

	schema := frame.Schema{
		{Name: "region", Type: dsl.TypeString},
		{Name: "amount", Type: dsl.TypeNumber},
		{Name: "_period", Type: dsl.TypeString},
	}

	dataset := model.Dataset{
		ID:        uuid.New(),
		ProjectID: project.ID,
		Name:      "ledger",
		Version:   1,
		Status:    model.DatasetActive,
		MainTable: model.MainTable{
			ResolverID: "ledger",
			Schema: []model.ColumnDef{
				{Name: "region", Type: "string"},
				{Name: "amount", Type: "number"},
				{Name: "_period", Type: "string"},
			},
		},
		CalendarID: calendarID,
	}

	operations := buildOperations(outputResolverID)

	switch s := store.(type) {
	case *refimpl.MemoryMetadataStore:
		s.PutCalendar(&calendar)
		for i := range periods {
			s.PutPeriod(&periods[i])
		}
		s.PutResolver(&res)
		s.PutProject(&project)
		s.PutDataset(&dataset)
	case *badgerstore.Store:
		ctx := context.Background()
		_ = s.PutCalendar(ctx, &calendar)
		for i := range periods {
			_ = s.PutPeriod(ctx, &periods[i])
		}
		_ = s.PutResolver(ctx, &res)
		_ = s.PutProject(ctx, &project)
		_ = s.PutDataset(ctx, &dataset)
	}

	return demoCatalog{
		calendar:         calendar,
		periods:          periods,
		resolver:         res,
		project:          project,
		dataset:          dataset,
		schema:           schema,
		operations:       operations,
		outputResolverID: outputResolverID,
	}
}

// buildOperations returns the fixed delete-negatives-then-output pipeline
// both the built-in demo and a loaded catalog file run: the catalog file
// supplies calendar/resolver/dataset configuration, not pipeline steps.
func buildOperations(outputResolverID string) []model.OperationInstance {
	return []model.OperationInstance{
		{
			Order: 0,
			Kind:  model.OperationDelete,
			Params: model.DeleteOperationParams{
				Condition: "amount < 0",
				Mode:      model.TemporalPeriod,
			},
		},
		{
			Order: 1,
			Kind:  model.OperationOutput,
			Params: model.OutputOperationParams{
				Destination: model.OutputDestination{ResolverID: outputResolverID},
				Mode:        model.TemporalPeriod,
			},
		},
	}
}

// columnDefSchema converts a dataset's on-disk column declarations into the
// frame.Schema the DSL/exec layers operate on, adding the "_period" system
// column the TemporalPeriod filter requires if the catalog file didn't
// already declare it.
func columnDefSchema(cols []model.ColumnDef) frame.Schema {
	schema := make(frame.Schema, 0, len(cols)+1)
	hasPeriod := false
	for _, c := range cols {
		var t dsl.ExprType
		switch c.Type {
		case "number":
			t = dsl.TypeNumber
		case "boolean":
			t = dsl.TypeBoolean
		case "date":
			t = dsl.TypeDate
		case "string":
			t = dsl.TypeString
		default:
			t = dsl.TypeAny
		}
		if c.Name == "_period" {
			hasPeriod = true
		}
		schema = append(schema, frame.ColumnInfo{Name: c.Name, Type: t})
	}
	if !hasPeriod {
		schema = append(schema, frame.ColumnInfo{Name: "_period", Type: dsl.TypeString})
	}
	return schema
}

// loadCatalogFromFile reads a YAML catalog document from path and persists
// its calendar/periods/resolver/project/dataset into store, the -catalog
// counterpart to seedDemo.
func loadCatalogFromFile(store exec.MetadataStore, path string) (demoCatalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return demoCatalog{}, err
	}
	defer f.Close()

	doc, rules, err := catalogfile.Load(f)
	if err != nil {
		return demoCatalog{}, err
	}

	res := doc.BuildResolver(rules)
	outputResolverID := doc.Dataset.MainTable.ResolverID
	operations := buildOperations(outputResolverID)

	switch s := store.(type) {
	case *refimpl.MemoryMetadataStore:
		s.PutCalendar(&doc.Calendar)
		for i := range doc.Periods {
			s.PutPeriod(&doc.Periods[i])
		}
		s.PutResolver(&res)
		s.PutProject(&doc.Project)
		s.PutDataset(&doc.Dataset)
	case *badgerstore.Store:
		ctx := context.Background()
		_ = s.PutCalendar(ctx, &doc.Calendar)
		for i := range doc.Periods {
			_ = s.PutPeriod(ctx, &doc.Periods[i])
		}
		_ = s.PutResolver(ctx, &res)
		_ = s.PutProject(ctx, &doc.Project)
		_ = s.PutDataset(ctx, &doc.Dataset)
	}

	return demoCatalog{
		calendar:         doc.Calendar,
		periods:          doc.Periods,
		resolver:         res,
		project:          doc.Project,
		dataset:          doc.Dataset,
		schema:           columnDefSchema(doc.Dataset.MainTable.Schema),
		operations:       operations,
		outputResolverID: outputResolverID,
	}, nil
}

func findPeriodByIdentifier(periods []model.Period, identifier string) (model.Period, bool) {
	for _, p := range periods {
		if p.Identifier == identifier {
			return p, true
		}
	}
	return model.Period{}, false
}

func printResolution(locations []model.ResolvedLocation, diag *resolver.ResolutionDiagnostic, outcome resolver.DiagnosticOutcome) {
	fmt.Printf("resolution outcome: %s\n", color.CyanString(outcome.String()))

	table := tablewriter.NewTable(os.Stdout)
	table.Header([]string{"Period", "Location", "Rule"})
	for _, loc := range locations {
		table.Append([]string{loc.Identifier, loc.Location, loc.RuleID.String()})
	}
	table.Render()

	if diag == nil || len(diag.Rules) == 0 {
		return
	}
	fmt.Println("\ndiagnostics:")
	for _, r := range diag.Rules {
		status := color.GreenString("matched")
		if !r.Matched {
			status = color.YellowString("skipped")
		}
		fmt.Printf("  rule %s: %s (%s)\n", r.RuleID, status, r.Reason)
	}
}

func printTrace(events []model.TraceEvent) {
	if len(events) == 0 {
		return
	}
	fmt.Println("\ntrace:")
	for _, e := range events {
		level := strings.ToUpper(e.Level)
		switch e.Level {
		case "error":
			level = color.RedString(level)
		default:
			level = color.GreenString(level)
		}
		fmt.Printf("  [op %d] %s %s\n", e.OperationOrder, level, e.Message)
	}
}

func printFrame(f *frame.Frame) {
	if f == nil || f.NumRows() == 0 {
		fmt.Println("_empty frame_")
		return
	}
	headers := make([]string, len(f.Schema))
	for i, c := range f.Schema {
		headers[i] = c.Name
	}

	table := tablewriter.NewTable(os.Stdout)
	table.Header(headers)
	for i := 0; i < f.NumRows(); i++ {
		row := f.Row(i)
		cells := make([]string, len(headers))
		for j, h := range headers {
			cells[j] = fmt.Sprintf("%v", row[h])
		}
		table.Append(cells)
	}
	table.Render()
}
