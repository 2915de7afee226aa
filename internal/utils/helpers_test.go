package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir_Creates(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	result, err := EnsureDir(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, result)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestEnsureDir_ExistingDir(t *testing.T) {
	dir := t.TempDir()
	result, err := EnsureDir(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, result)
}

func TestGetDataPath(t *testing.T) {
	assert.True(t, strings.HasSuffix(GetDataPath(), ".virtualco"))
}

func TestExpandHome(t *testing.T) {
	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, "x", "y"), ExpandHome("~/x/y"))
	assert.Equal(t, "/abs/path", ExpandHome("/abs/path"))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "hello", TruncateString("hello", 10, "..."))
	assert.Equal(t, "hello", TruncateString("hello", 5, "..."))
	assert.Equal(t, "he...", TruncateString("hello world", 5, "..."))
	assert.Equal(t, "hel…", TruncateString("hello world", 6, "…")) // "…" is 3 bytes UTF-8
}

func TestTruncateString_EmptySuffix(t *testing.T) {
	assert.Equal(t, "he...", TruncateString("hello world", 5, ""))
}

func TestRoleCategory(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"Backend Dev 1", "Backend Dev"},
		{"DevOps Engineer 2", "DevOps Engineer"},
		{"Security Engineer 10", "Security Engineer"},
		{"Engineering Manager (Backend)", "Engineering Manager (Backend)"},
		{"CTO", "CTO"},
		{"Senior PM - Growth", "Senior PM - Growth"},
		{"Team 2b", "Team 2b"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, RoleCategory(tt.input))
		})
	}
}

func TestTimestamp(t *testing.T) {
	ts := Timestamp()
	assert.NotEmpty(t, ts)
	assert.Contains(t, ts, "T") // ISO 8601 has T separator
}

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"CTO", "CTO"},
		{"Backend Dev 1", "Backend_Dev_1"},
		{"Engineering Manager (Backend)", "Engineering_Manager__Backend"},
		{`a<b>c:d"e`, "a_b_c_d_e"},
		{"a|b?c*d", "a_b_c_d"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeFilename(tt.input))
		})
	}
}
