package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatTSV(&buf, sampleEntries))

	assert.Equal(t,
		"2024-03-01\t09:00\tin\tProject X\n"+
			"2024-03-01\t12:30\tout\tProject X\n"+
			"2024-03-02\t10:15\ttask\tReview\n",
		buf.String())
}

func TestParseTSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatTSV(&buf, sampleEntries))

	got, err := ParseTSV(&buf, "data_2024_03")
	require.NoError(t, err)
	assert.Equal(t, sampleEntries, got)
}

func TestTSVEscapesNotes(t *testing.T) {
	entries := []Entry{
		entry("2024-03-01", "09:00", ActionIn, "line one\nline two"),
		entry("2024-03-01", "10:00", ActionTask, `C:\temp\new`),
		entry("2024-03-01", "11:00", ActionOut, "crlf\r\nend"),
	}

	var buf bytes.Buffer
	require.NoError(t, FormatTSV(&buf, entries))
	assert.Equal(t, 3, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), `line one\nline two`)
	assert.Contains(t, buf.String(), `C:\\temp\\new`)

	got, err := ParseTSV(&buf, "data_2024_03")
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestParseTSVTolerance(t *testing.T) {
	input := "\n2024-03-01\t09:00\tin\tnote with\ttab\r\n   \n2024-03-01\t10:00\ttask\t\n"

	got, err := ParseTSV(strings.NewReader(input), "")
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		entry("2024-03-01", "09:00", ActionIn, "note with\ttab"),
		entry("2024-03-01", "10:00", ActionTask, ""),
	}, got)
}

func TestParseTSVRejectsWholeBatch(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		partition string
		line      int
	}{
		{"too few fields", "2024-03-01\t09:00\tin\tok\n2024-03-01 10:00 out x\n", "", 2},
		{"bad date", "2024-3-1\t09:00\tin\tx\n", "", 1},
		{"bad time", "2024-03-01\t9\tin\tx\n", "", 1},
		{"bad action", "2024-03-01\t09:00\tlunch\tx\n", "", 1},
		{"outside month", "2024-03-01\t09:00\tin\tx\n\n2024-04-01\t09:00\tout\tx\n", "data_2024_03", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTSV(strings.NewReader(tt.input), tt.partition)
			assert.Nil(t, got)

			var lineErr *MalformedLineError
			require.ErrorAs(t, err, &lineErr)
			assert.Equal(t, tt.line, lineErr.Line)
		})
	}
}

// writeEditor creates an executable shell script usable as an editor.
func writeEditor(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "editor.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func newTestEditor(t *testing.T, repo *Repo) *BulkEditor {
	t.Helper()
	var out bytes.Buffer
	return NewBulkEditor(repo, DiscardLogger(), strings.NewReader(""), &out, &out)
}

func seedPartition(t *testing.T, repo *Repo, partition string, entries []Entry) {
	t.Helper()
	ctx := context.Background()
	_, err := repo.CreatePartition(ctx, partition)
	require.NoError(t, err)
	for _, e := range entries {
		require.NoError(t, repo.AppendRow(ctx, partition, e))
	}
}

func TestBulkEditReplacesPartition(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	seedPartition(t, repo, "data_2024_03", sampleEntries)

	// drop the task line and append a new one
	editor := writeEditor(t, `grep -v task "$1" > "$1.new"
printf '2024-03-03\t08:00\tin\tEdited\n' >> "$1.new"
mv "$1.new" "$1"`)

	n, err := newTestEditor(t, repo).Edit(ctx, "data_2024_03", editor)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	rows, err := repo.ReadAllRows(ctx, "data_2024_03")
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		entry("2024-03-01", "09:00", ActionIn, "Project X"),
		entry("2024-03-01", "12:30", ActionOut, "Project X"),
		entry("2024-03-03", "08:00", ActionIn, "Edited"),
	}, stripIDs(rows))
}

func TestBulkEditMalformedLeavesPartition(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	seedPartition(t, repo, "data_2024_03", sampleEntries)

	editor := writeEditor(t, `printf '2024-03-01\t09:00\tin\tok\ngarbage\n' > "$1"`)

	_, err := newTestEditor(t, repo).Edit(ctx, "data_2024_03", editor)
	var lineErr *MalformedLineError
	require.ErrorAs(t, err, &lineErr)
	assert.Equal(t, 2, lineErr.Line)

	rows, err := repo.ReadAllRows(ctx, "data_2024_03")
	require.NoError(t, err)
	assert.Equal(t, sampleEntries, stripIDs(rows))
}

func TestBulkEditEditorFailure(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	seedPartition(t, repo, "data_2024_03", sampleEntries)

	editor := writeEditor(t, `: > "$1"
exit 3`)

	_, err := newTestEditor(t, repo).Edit(ctx, "data_2024_03", editor)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exited with status 3")

	rows, err := repo.ReadAllRows(ctx, "data_2024_03")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestBulkEditMissingPartition(t *testing.T) {
	repo := newTestRepo(t)

	_, err := newTestEditor(t, repo).Edit(context.Background(), "data_2019_01", "true")
	assert.ErrorIs(t, err, ErrPartitionNotFound)
}

func TestBulkEditEmptyFileClearsPartition(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	seedPartition(t, repo, "data_2024_03", sampleEntries)

	editor := writeEditor(t, `: > "$1"`)

	n, err := newTestEditor(t, repo).Edit(ctx, "data_2024_03", editor)
	require.NoError(t, err)
	assert.Zero(t, n)

	rows, err := repo.ReadAllRows(ctx, "data_2024_03")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestBulkEditKeepsMultilineNotes(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	stored := []Entry{
		entry("2024-03-01", "09:00", ActionIn, "line one\nline two"),
		entry("2024-03-01", "17:00", ActionOut, "line one\nline two"),
	}
	seedPartition(t, repo, "data_2024_03", stored)

	n, err := newTestEditor(t, repo).Edit(ctx, "data_2024_03", "true")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := repo.ReadAllRows(ctx, "data_2024_03")
	require.NoError(t, err)
	assert.Equal(t, stored, stripIDs(rows))
}
