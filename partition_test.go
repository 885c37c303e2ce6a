package main

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionName(t *testing.T) {
	assert.Equal(t, "data_2024_03", PartitionName(time.March, 2024))
	assert.Equal(t, "data_2024_12", PartitionName(time.December, 2024))
	assert.Equal(t, "data_1999_01", PartitionName(time.January, 1999))

	// repeated calls agree
	assert.Equal(t, PartitionName(time.May, 2025), PartitionName(time.May, 2025))
}

func TestPartitionNameInjective(t *testing.T) {
	seen := make(map[string]string)
	for year := 1998; year <= 2030; year++ {
		for m := time.January; m <= time.December; m++ {
			name := PartitionName(m, year)
			key := fmt.Sprintf("%s %d", m, year)
			if prev, ok := seen[name]; ok {
				t.Fatalf("%s and %s both map to %s", prev, key, name)
			}
			seen[name] = key
		}
	}
}

func TestParsePartitionNameRoundTrip(t *testing.T) {
	for year := 2000; year <= 2030; year += 3 {
		for m := time.January; m <= time.December; m++ {
			gotMonth, gotYear, err := ParsePartitionName(PartitionName(m, year))
			require.NoError(t, err)
			assert.Equal(t, m, gotMonth)
			assert.Equal(t, year, gotYear)
		}
	}
}

func TestParsePartitionNameRejects(t *testing.T) {
	bad := []string{
		"",
		"data_2024_3",
		"data_2024_13",
		"data_2024_00",
		"data_24_03",
		"data_2024_03; DROP TABLE x",
		"sqlite_sequence",
		"DATA_2024_03",
		"data_0999_03",
	}
	for _, name := range bad {
		t.Run(name, func(t *testing.T) {
			_, _, err := ParsePartitionName(name)
			assert.ErrorIs(t, err, ErrInvalidPartitionName)
		})
	}
}

func TestPartitionForDate(t *testing.T) {
	d := time.Date(2024, time.February, 29, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "data_2024_02", PartitionForDate(d))
}

func TestPartitionTitle(t *testing.T) {
	assert.Equal(t, "March 2024", partitionTitle("data_2024_03"))
	assert.Equal(t, "bogus", partitionTitle("bogus"))
}
