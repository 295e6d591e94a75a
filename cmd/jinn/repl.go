package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jinndb/jinn/pkg/jinn"
	"github.com/peterh/liner"
)

// REPL is the interactive command loop over an open database, grounded on
// the same liner-based line-editing shape as the teacher's slotcache REPL.
type REPL struct {
	db    *jinn.DB
	liner *liner.State
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".jinn_history")
}

// Run starts the REPL loop. It returns nil on a clean exit (exit/quit/q or EOF).
func (r *REPL) Run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(r.completer)

	if f, err := os.Open(historyFile()); err == nil {
		_, _ = r.liner.ReadHistory(f)
		_ = f.Close()
	}

	fmt.Printf("jinn - document store CLI (%s)\n", r.db.Path())
	fmt.Println("Type 'help' for available commands.")
	fmt.Println()

	for {
		line, err := r.liner.Prompt("jinn> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Println("\nBye!")

				return nil
			}

			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.liner.AppendHistory(line)

		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch strings.ToLower(cmd) {
		case "exit", "quit", "q":
			fmt.Println("Bye!")
			r.saveHistory()

			return nil
		case "help", "?":
			r.printHelp()
		case "insert":
			r.cmdInsert(rest)
		case "find":
			r.cmdFind(rest)
		case "update":
			r.cmdUpdate(rest)
		case "remove":
			r.cmdRemove(rest)
		case "iterate", "scan":
			r.cmdIterate(rest)
		case "resize":
			r.cmdResize(rest)
		case "stats", "info":
			r.cmdStats()
		default:
			fmt.Printf("unknown command %q (try 'help')\n", cmd)
		}
	}
}

func (r *REPL) saveHistory() {
	path := historyFile()
	if path == "" {
		return
	}

	if f, err := os.Create(path); err == nil {
		_, _ = r.liner.WriteHistory(f)
		_ = f.Close()
	}
}

func (r *REPL) completer(line string) []string {
	commands := []string{
		"insert", "find", "update", "remove",
		"iterate", "scan", "resize", "stats", "info",
		"help", "exit", "quit", "q",
	}

	var out []string

	lower := strings.ToLower(line)

	for _, c := range commands {
		if strings.HasPrefix(c, lower) {
			out = append(out, c)
		}
	}

	return out
}

func (r *REPL) printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  insert <json-record>                 Insert a record; prints its _id")
	fmt.Println("  find [json-query] [--limit N]         Find matching records (default: all)")
	fmt.Println("  update <json-query> <json-update>      Apply an update directive to matches")
	fmt.Println("  remove <json-query>                    Remove matching records")
	fmt.Println("  iterate [limit]                        Walk every live record")
	fmt.Println("  resize <blockSize>                     Change the on-disk block size")
	fmt.Println("  stats                                  Show the database file path")
	fmt.Println("  help                                   Show this help")
	fmt.Println("  exit / quit / q                        Exit")
	fmt.Println()
	fmt.Println("json-query/json-record/json-update are JSON objects, e.g.:")
	fmt.Println(`  insert {"name":"apple","color":"red"}`)
	fmt.Println(`  find {"color":"red"}`)
	fmt.Println(`  update {"color":"red"} {"$set":{"ripe":true}}`)
}

func (r *REPL) cmdInsert(args string) {
	if args == "" {
		fmt.Println("usage: insert <json-record>")

		return
	}

	var record jinn.Record

	if err := json.Unmarshal([]byte(args), &record); err != nil {
		fmt.Printf("invalid json: %v\n", err)

		return
	}

	id, err := r.db.Insert(record)
	if err != nil {
		fmt.Printf("error: %v\n", err)

		return
	}

	fmt.Println(id)
}

func (r *REPL) cmdFind(args string) {
	query, limit, err := parseQueryAndLimit(args)
	if err != nil {
		fmt.Printf("invalid query: %v\n", err)

		return
	}

	records, err := r.db.Find(query, jinn.FindOptions{Limit: limit})
	if err != nil {
		fmt.Printf("error: %v\n", err)

		return
	}

	for _, rec := range records {
		printRecord(rec)
	}

	fmt.Printf("(%d record(s))\n", len(records))
}

func (r *REPL) cmdUpdate(args string) {
	queryJSON, updateJSON, ok := splitTwoJSONObjects(args)
	if !ok {
		fmt.Println("usage: update <json-query> <json-update>")

		return
	}

	var query jinn.Query

	if err := json.Unmarshal([]byte(queryJSON), &query); err != nil {
		fmt.Printf("invalid query: %v\n", err)

		return
	}

	var update jinn.Update

	if err := json.Unmarshal([]byte(updateJSON), &update); err != nil {
		fmt.Printf("invalid update: %v\n", err)

		return
	}

	count, err := r.db.Update(query, update, jinn.UpdateOptions{})
	if err != nil {
		fmt.Printf("error: %v\n", err)

		return
	}

	fmt.Printf("%d record(s) updated\n", count)
}

func (r *REPL) cmdRemove(args string) {
	query, _, err := parseQueryAndLimit(args)
	if err != nil {
		fmt.Printf("invalid query: %v\n", err)

		return
	}

	count, err := r.db.Remove(query, jinn.RemoveOptions{})
	if err != nil {
		fmt.Printf("error: %v\n", err)

		return
	}

	fmt.Printf("%d record(s) removed\n", count)
}

func (r *REPL) cmdIterate(args string) {
	limit := 0

	if args != "" {
		n, err := strconv.Atoi(args)
		if err != nil {
			fmt.Println("usage: iterate [limit]")

			return
		}

		limit = n
	}

	count := 0

	_, err := r.db.Iterate(func(rec jinn.Record) (jinn.ScanAction, error) {
		printRecord(rec)

		count++
		if limit > 0 && count >= limit {
			return jinn.ScanStop, nil
		}

		return jinn.ScanContinue, nil
	})
	if err != nil {
		fmt.Printf("error: %v\n", err)

		return
	}

	fmt.Printf("(%d record(s))\n", count)
}

func (r *REPL) cmdResize(args string) {
	size, err := strconv.ParseUint(strings.TrimSpace(args), 10, 64)
	if err != nil {
		fmt.Println("usage: resize <blockSize>")

		return
	}

	if err := r.db.Resize(size, jinn.ResizeOptions{}); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

func (r *REPL) cmdStats() {
	fmt.Printf("path: %s\n", r.db.Path())
}

func printRecord(rec jinn.Record) {
	data, err := json.Marshal(rec)
	if err != nil {
		fmt.Printf("<unencodable record: %v>\n", err)

		return
	}

	fmt.Println(string(data))
}

// parseQueryAndLimit extracts a trailing "--limit N" and parses the
// remainder as a JSON query object, defaulting to an empty (match-all)
// query.
func parseQueryAndLimit(args string) (jinn.Query, int, error) {
	limit := 0

	if idx := strings.Index(args, "--limit"); idx >= 0 {
		rest := strings.TrimSpace(args[idx+len("--limit"):])
		fields := strings.Fields(rest)

		if len(fields) > 0 {
			n, err := strconv.Atoi(fields[0])
			if err == nil {
				limit = n
			}
		}

		args = strings.TrimSpace(args[:idx])
	}

	if args == "" {
		return jinn.Query{}, limit, nil
	}

	var query jinn.Query

	if err := json.Unmarshal([]byte(args), &query); err != nil {
		return nil, 0, err
	}

	return query, limit, nil
}

// splitTwoJSONObjects splits s into its first two brace-balanced JSON
// objects, tolerating whitespace between them.
func splitTwoJSONObjects(s string) (first, second string, ok bool) {
	s = strings.TrimSpace(s)

	end := findBalancedObject(s)
	if end < 0 {
		return "", "", false
	}

	first = s[:end]
	rest := strings.TrimSpace(s[end:])

	end2 := findBalancedObject(rest)
	if end2 < 0 {
		return "", "", false
	}

	second = rest[:end2]

	return first, second, true
}

func findBalancedObject(s string) int {
	depth := 0

	for i, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}

	return -1
}
