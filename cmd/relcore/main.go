// Command relcore is a demo driver for the execution core: since SQL
// parsing and logical planning are external collaborators this repo
// doesn't own (spec §1), there is no query text to type. Instead the REPL
// accepts a small set of named commands, each of which builds a plan.Node
// tree by hand and runs it through compiler.Compile/Program.Run.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"relcore/catalog"
	"relcore/compiler"
	"relcore/plan"
	"relcore/storage/block"
	"relcore/storage/mvcc"
	"relcore/storage/table"
	"relcore/types"
	"relcore/vm"
)

var (
	errColor = color.New(color.FgRed, color.Bold)
	okColor  = color.New(color.FgGreen)
	hdrColor = color.New(color.FgCyan, color.Bold)
)

const employeesDDL = "id int, name varchar, dept varchar, salary int"

func main() {
	cache, err := block.NewCache(64)
	if err != nil {
		errColor.Fprintln(os.Stderr, "relcore: block cache:", err)
		os.Exit(1)
	}
	defer cache.Close()

	cat := catalog.New()
	mgr := mvcc.NewManager()
	pool := vm.NewThreadPool(4)

	entry, err := cat.CreateTable("employees", []types.ColumnDef{
		{ID: 1, Name: "id", Type: types.Integer, IsPrimaryKey: true},
		{ID: 2, Name: "name", Type: types.Varchar},
		{ID: 3, Name: "dept", Type: types.Varchar},
		{ID: 4, Name: "salary", Type: types.Integer},
	}, cache, mgr)
	if err != nil {
		errColor.Fprintln(os.Stderr, "relcore: create table:", err)
		os.Exit(1)
	}
	seed(entry, mgr)

	hdrColor.Printf("relcore demo — table employees(%s)\n", employeesDDL)
	fmt.Println("commands: scan, agg, orderby, insert <name> <dept> <salary>, quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("relcore> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		root, err := buildCommand(line, entry.Schema.OID)
		if err != nil {
			errColor.Println("relcore:", err)
			continue
		}
		runAndPrint(cat, mgr, pool, root)
	}
}

func seed(entry *catalog.TableEntry, mgr *mvcc.Manager) {
	rows := []struct {
		id     int32
		name   string
		dept   string
		salary int32
	}{
		{1, "alice", "eng", 100},
		{2, "bob", "eng", 200},
		{3, "carol", "sales", 150},
		{4, "dave", "sales", 50},
	}
	cols := []types.ColumnID{1, 2, 3, 4}
	txn := mgr.Begin()
	for _, r := range rows {
		pr := table.NewProjectedRow(cols)
		pr.Values = []types.Value{types.IntValue(r.id), types.VarcharValue(r.name), types.VarcharValue(r.dept), types.IntValue(r.salary)}
		if _, err := entry.Table.Insert(txn, pr); err != nil {
			errColor.Fprintln(os.Stderr, "relcore: seed insert:", err)
			return
		}
	}
	if err := mgr.Commit(txn); err != nil {
		errColor.Fprintln(os.Stderr, "relcore: seed commit:", err)
	}
}

func buildCommand(line string, tableOID types.TableID) (plan.Node, error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "scan":
		scan := &plan.SeqScan{
			Base: plan.Base{Cols: []plan.OutputColumn{
				{Name: "id", Type: types.Integer}, {Name: "name", Type: types.Varchar},
				{Name: "dept", Type: types.Varchar}, {Name: "salary", Type: types.Integer},
			}},
			Table:   tableOID,
			Columns: []types.ColumnID{1, 2, 3, 4},
		}
		return &plan.Output{Base: plan.Base{Cols: scan.Cols}, Input: scan}, nil

	case "agg":
		scan := &plan.SeqScan{
			Base:    plan.Base{Cols: []plan.OutputColumn{{Name: "dept", Type: types.Varchar}, {Name: "salary", Type: types.Integer}}},
			Table:   tableOID,
			Columns: []types.ColumnID{3, 4},
		}
		agg := &plan.Aggregate{
			Base:    plan.Base{Cols: []plan.OutputColumn{{Name: "dept", Type: types.Varchar}, {Name: "total", Type: types.BigInt}}},
			Input:   scan,
			GroupBy: []plan.Expr{&plan.ColumnRef{Name: "dept", ColIdx: 0, ColType: types.Varchar}},
			Aggs: []*plan.AggCall{
				{AggKind: plan.AggSum, Arg: &plan.ColumnRef{Name: "salary", ColIdx: 1, ColType: types.Integer}, Type: types.BigInt},
			},
		}
		return &plan.Output{Base: plan.Base{Cols: agg.Cols}, Input: agg}, nil

	case "orderby":
		scan := &plan.SeqScan{
			Base:    plan.Base{Cols: []plan.OutputColumn{{Name: "name", Type: types.Varchar}, {Name: "salary", Type: types.Integer}}},
			Table:   tableOID,
			Columns: []types.ColumnID{2, 4},
		}
		ob := &plan.OrderBy{
			Base:       plan.Base{Cols: scan.Cols},
			Input:      scan,
			Keys:       []plan.Expr{&plan.ColumnRef{Name: "salary", ColIdx: 1, ColType: types.Integer}},
			Descending: []bool{true},
		}
		return &plan.Output{Base: plan.Base{Cols: ob.Cols}, Input: ob}, nil

	case "insert":
		if len(fields) != 4 {
			return nil, fmt.Errorf("usage: insert <name> <dept> <salary>")
		}
		return nil, fmt.Errorf("insert command needs a values source: not wired in this demo (%s)", strings.Join(fields[1:], " "))

	default:
		return nil, fmt.Errorf("unknown command %q", fields[0])
	}
}

func runAndPrint(cat *catalog.Catalog, mgr *mvcc.Manager, pool *vm.ThreadPool, root plan.Node) {
	prog, err := compiler.Compile(root, cat)
	if err != nil {
		errColor.Println("relcore:", err)
		return
	}
	txn := mgr.Begin()
	rows, stats, err := prog.Run(txn, pool)
	if err != nil {
		mgr.Abort(txn)
		errColor.Println("relcore:", err)
		return
	}
	if err := mgr.Commit(txn); err != nil {
		errColor.Println("relcore:", err)
		return
	}
	for _, r := range rows {
		parts := make([]string, len(r.Values))
		for i, v := range r.Values {
			parts[i] = v.String()
		}
		fmt.Println(strings.Join(parts, " | "))
	}
	okColor.Printf("(%d rows, %s produced)\n", len(rows), humanize.Comma(int64(stats.RowsProduced)))
}
