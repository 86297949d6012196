package store

import (
	"fmt"
	"strconv"
	"strings"

	"mahstore/pkg/query"
	"mahstore/pkg/relation"
	"mahstore/pkg/repl"
	"mahstore/pkg/tuple"
)

// Repl builds the REPL exposing a Store's CLI surface: create, insert,
// select, stats, and backup.
func Repl(s *Store) *repl.REPL {
	r := repl.NewRepl()

	r.AddCommand("create", func(payload string, _ *repl.REPLConfig) (string, error) {
		return handleCreate(s, payload)
	}, "Create a relation. usage: create <name> <nattrs> <npages> <depth> <cv>")

	r.AddCommand("insert", func(payload string, _ *repl.REPLConfig) (string, error) {
		return "", handleInsert(s, payload)
	}, "Insert a tuple. usage: insert <name> <tuple>")

	r.AddCommand("select", func(payload string, _ *repl.REPLConfig) (string, error) {
		return handleSelect(s, payload)
	}, "Query a relation. usage: select <name> <pattern>")

	r.AddCommand("stats", func(payload string, _ *repl.REPLConfig) (string, error) {
		return handleStats(s, payload)
	}, "Print a relation's bucket chains. usage: stats <name>")

	r.AddCommand("backup", func(payload string, _ *repl.REPLConfig) (string, error) {
		return "", handleBackup(s, payload)
	}, "Copy a relation's files elsewhere. usage: backup <name> <destdir>")

	return r
}

func handleCreate(s *Store, payload string) (string, error) {
	fields := strings.Fields(payload)
	if len(fields) != 6 {
		return "", relation.NewError(relation.ParseError, "create", fmt.Errorf("usage: create <name> <nattrs> <npages> <depth> <cv>"))
	}
	name := fields[1]
	nattrs, err := strconv.Atoi(fields[2])
	if err != nil {
		return "", relation.NewError(relation.ParseError, "create", err)
	}
	npages, err := strconv.Atoi(fields[3])
	if err != nil {
		return "", relation.NewError(relation.ParseError, "create", err)
	}
	depth, err := strconv.Atoi(fields[4])
	if err != nil {
		return "", relation.NewError(relation.ParseError, "create", err)
	}
	cv := fields[5]
	if _, err := s.Create(name, nattrs, npages, depth, cv); err != nil {
		return "", err
	}
	return fmt.Sprintf("created relation %q", name), nil
}

func handleInsert(s *Store, payload string) error {
	fields := strings.Fields(payload)
	if len(fields) != 3 {
		return relation.NewError(relation.ParseError, "insert", fmt.Errorf("usage: insert <name> <tuple>"))
	}
	name, raw := fields[1], fields[2]
	r, err := s.Relation(name)
	if err != nil {
		return err
	}
	t, err := tuple.Parse(raw, int(r.NAttrs()))
	if err != nil {
		return relation.NewError(relation.ParseError, "insert", err)
	}
	_, err = r.Insert(t)
	return err
}

func handleSelect(s *Store, payload string) (string, error) {
	fields := strings.Fields(payload)
	if len(fields) != 3 {
		return "", relation.NewError(relation.ParseError, "select", fmt.Errorf("usage: select <name> <pattern>"))
	}
	name, pattern := fields[1], fields[2]
	r, err := s.Relation(name)
	if err != nil {
		return "", err
	}
	q, err := query.Start(r, pattern)
	if err != nil {
		return "", err
	}
	defer q.Close()

	var sb strings.Builder
	for q.Next() {
		t, err := q.Value()
		if err != nil {
			return "", err
		}
		sb.WriteString(t.String())
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

func handleStats(s *Store, payload string) (string, error) {
	fields := strings.Fields(payload)
	if len(fields) != 2 {
		return "", relation.NewError(relation.ParseError, "stats", fmt.Errorf("usage: stats <name>"))
	}
	r, err := s.Relation(fields[1])
	if err != nil {
		return "", err
	}
	return r.Stats()
}

func handleBackup(s *Store, payload string) error {
	fields := strings.Fields(payload)
	if len(fields) != 3 {
		return relation.NewError(relation.ParseError, "backup", fmt.Errorf("usage: backup <name> <destdir>"))
	}
	name, destDir := fields[1], fields[2]
	if _, err := s.Relation(name); err != nil {
		return err
	}
	return relation.BackupRelation(s.Dir(), name, destDir)
}
