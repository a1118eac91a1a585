package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCell(t *testing.T) {
	cases := []struct {
		in   string
		kind Kind
		str  string
	}{
		{"", KindMissing, ""},
		{"   ", KindMissing, ""},
		{"NaN", KindMissing, ""},
		{"n/a", KindMissing, ""},
		{"#N/A", KindMissing, ""},
		{"42", KindNumber, "42"},
		{" 3.50 ", KindNumber, "3.5"},
		{"-1e3", KindNumber, "-1000"},
		{"Yes", KindText, "Yes"},
		{"Research & Development", KindText, "Research & Development"},
		{"inf", KindText, "inf"},
	}
	for _, tc := range cases {
		v := ParseCell(tc.in)
		assert.Equal(t, tc.kind, v.Kind, "kind of %q", tc.in)
		assert.Equal(t, tc.str, v.String(), "string of %q", tc.in)
	}
}

func TestFromRecordsNormalizesHeaderAndPadsRows(t *testing.T) {
	header := []string{"\ufeffEmployeeNumber", " Age ", "", "Age", "Age"}
	records := [][]string{
		{"1", "34", "x", "a"},
		{"2", "41", "y", "b", "c", "overflow"},
	}
	d, err := FromRecords(header, records)
	require.NoError(t, err)

	assert.Equal(t, []string{"EmployeeNumber", "Age", "Unnamed: 2", "Age.1", "Age.2"}, d.Columns())
	assert.Equal(t, 2, d.Rows())
	assert.Equal(t, 5, d.Width())
	assert.True(t, d.Value(0, "Age.2").IsMissing(), "short row is padded")
	assert.Equal(t, "c", d.Value(1, "Age.2").String())

	age, ok := d.Column("Age")
	require.True(t, ok)
	f, ok := age[1].Float()
	require.True(t, ok)
	assert.Equal(t, 41.0, f)
}

func TestFromRecordsRepeatedSuffixDoesNotCollide(t *testing.T) {
	d, err := FromRecords([]string{"A", "A.1", "A"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "A.1", "A.2"}, d.Columns())
}

func TestNewRejectsRaggedColumns(t *testing.T) {
	_, err := New(
		Column{Name: "a", Values: []Value{Number(1), Number(2)}},
		Column{Name: "b", Values: []Value{Number(1)}},
	)
	require.Error(t, err)
}

func TestSubsetAndHead(t *testing.T) {
	d, err := FromRecords([]string{"k", "v"}, [][]string{{"a", "1"}, {"b", "2"}, {"c", "3"}})
	require.NoError(t, err)

	sub := d.Subset([]int{2, 0})
	assert.Equal(t, 2, sub.Rows())
	assert.Equal(t, "c", sub.Value(0, "k").String())
	assert.Equal(t, "a", sub.Value(1, "k").String())
	assert.Equal(t, 3, d.Rows(), "source is untouched")

	assert.Equal(t, 2, d.Head(2).Rows())
	assert.Equal(t, 3, d.Head(20).Rows())
	assert.Equal(t, 0, d.Subset(nil).Rows())
	assert.True(t, d.Subset(nil).Has("k"))
}

func TestProfiles(t *testing.T) {
	d, err := FromRecords(
		[]string{"num", "cat", "mixed", "empty"},
		[][]string{{"1", "x", "1", ""}, {"", "y", "z", "NA"}},
	)
	require.NoError(t, err)
	got := d.Profiles()
	require.Len(t, got, 4)
	assert.Equal(t, Profile{Name: "num", Kind: "numeric", NonNull: 1, Missing: 1}, got[0])
	assert.Equal(t, "categorical", got[1].Kind)
	assert.Equal(t, "mixed", got[2].Kind)
	assert.Equal(t, "empty", got[3].Kind)
}
