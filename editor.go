package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"strings"
	"time"
)

const defaultEditor = "nano"

// Backslashes and line breaks in notes are escaped so every entry stays on
// one line of the edit file.
var (
	noteEscaper   = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`)
	noteUnescaper = strings.NewReplacer(`\\`, `\`, `\n`, "\n", `\r`, "\r")
)

// FormatTSV writes one tab separated line per entry: date, time, action, note.
func FormatTSV(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		if _, err := fmt.Fprintf(bw, "%s\t%s\t%s\t%s\n", e.Date, e.Time, e.Action, noteEscaper.Replace(e.Note)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ParseTSV reads lines written by FormatTSV. Blank lines are skipped; any
// other line that is not a valid entry rejects the whole input. With a
// non-empty partition every entry must also be dated inside that month.
func ParseTSV(r io.Reader, partition string) ([]Entry, error) {
	var month time.Month
	var year int
	if partition != "" {
		var err error
		if month, year, err = ParsePartitionName(partition); err != nil {
			return nil, err
		}
	}

	entries := []Entry{}
	scanner := bufio.NewScanner(r)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		e, err := parseTSVLine(line)
		if err == nil && partition != "" {
			day, _ := ParseDate(e.Date)
			if day.Month() != month || day.Year() != year {
				err = fmt.Errorf("date is outside %s", partitionTitle(partition))
			}
		}
		if err != nil {
			return nil, &MalformedLineError{Line: lineNum, Text: line, Err: err}
		}
		entries = append(entries, e)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read edited entries: %w", err)
	}

	return entries, nil
}

func parseTSVLine(line string) (Entry, error) {
	fields := strings.SplitN(line, "\t", 4)
	if len(fields) != 4 {
		return Entry{}, fmt.Errorf("expected 4 tab separated fields, got %d", len(fields))
	}

	date := strings.TrimSpace(fields[0])
	clock := strings.TrimSpace(fields[1])
	if _, err := ParseDate(date); err != nil {
		return Entry{}, err
	}
	if _, err := ParseClock(clock); err != nil {
		return Entry{}, err
	}
	action, err := ParseAction(fields[2])
	if err != nil {
		return Entry{}, err
	}

	return Entry{Date: date, Time: clock, Action: action, Note: noteUnescaper.Replace(fields[3])}, nil
}

// BulkEditor hands a whole partition to an external editor and writes the
// result back in a single transaction.
type BulkEditor struct {
	repo   *Repo
	log    *Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func NewBulkEditor(repo *Repo, logger *Logger, stdin io.Reader, stdout, stderr io.Writer) *BulkEditor {
	return &BulkEditor{
		repo:   repo,
		log:    logger.WithComponent("editor"),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}
}

// Edit returns the number of rows the partition holds afterwards. Nothing is
// written unless every edited line is a valid entry of that month.
func (b *BulkEditor) Edit(ctx context.Context, partition, editor string) (int, error) {
	if _, _, err := ParsePartitionName(partition); err != nil {
		return 0, err
	}

	entries, err := b.repo.ReadAllRows(ctx, partition)
	if err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp("", partition+"-*.tsv")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := FormatTSV(tmp, entries); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := b.runEditor(ctx, editor, tmp.Name()); err != nil {
		return 0, err
	}

	f, err := os.Open(tmp.Name())
	if err != nil {
		return 0, fmt.Errorf("failed to open edited file: %w", err)
	}
	defer f.Close()

	edited, err := ParseTSV(f, partition)
	if err != nil {
		return 0, err
	}

	if err := b.repo.ReplacePartition(ctx, partition, edited); err != nil {
		return 0, err
	}

	b.log.Debug("partition edited", "partition", partition, "before", len(entries), "after", len(edited))
	return len(edited), nil
}

func (b *BulkEditor) runEditor(ctx context.Context, editor, path string) error {
	fields := strings.Fields(editor)
	if len(fields) == 0 {
		fields = []string{defaultEditor}
	}

	name, args := fields[0], fields[1:]
	if name == "code" && !slices.Contains(args, "--wait") {
		args = append(args, "--wait")
	}
	args = append(args, path)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = b.stdin
	cmd.Stdout = b.stdout
	cmd.Stderr = b.stderr

	b.log.Debug("launching editor", "editor", name, "file", path)
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("editor %s exited with status %d", name, exitErr.ExitCode())
		}
		return fmt.Errorf("failed to run editor %s: %w", name, err)
	}

	return nil
}
