package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestRead(t *testing.T) {
	// Create a temporary log file
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	// Write 10 lines of content
	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{
			name:     "read all (0)",
			maxLines: 0,
			expected: expectedAll,
		},
		{
			name:     "read all (negative)",
			maxLines: -1,
			expected: expectedAll,
		},
		{
			name:     "read partial (5)",
			maxLines: 5,
			expected: expectedAll[5:],
		},
		{
			name:     "read exactly all (10)",
			maxLines: 10,
			expected: expectedAll,
		},
		{
			name:     "read more than exists (20)",
			maxLines: 20,
			expected: expectedAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "absent.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read(missing) = %v, %v; want nil, nil", got, err)
	}
}

func TestParseAndFormat(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 5, 0, time.UTC)
	line := fmt.Sprintf(`{"level":"warn","id":"q-1","url":"https://api.example.com/a b","attempt":2,"time":%q,"message":"failed to sync request"}`, ts.Format(time.RFC3339))

	e := Parse(line)
	if e.Level != "warn" || e.Message != "failed to sync request" || !e.Time.Equal(ts) {
		t.Fatalf("Parse = %+v", e)
	}
	if e.Fields["id"] != "q-1" || e.Fields["attempt"] != "2" {
		t.Fatalf("Fields = %v", e.Fields)
	}

	want := ts.Local().Format("15:04:05") + ` WARN  failed to sync request attempt=2 id=q-1 url="https://api.example.com/a b"`
	if got := Format(e); got != want {
		t.Fatalf("Format = %q, want %q", got, want)
	}
}

func TestParse_NonJSONPassesThrough(t *testing.T) {
	for _, line := range []string{"", "plain text", "{not json"} {
		e := Parse(line)
		if got := Format(e); got != line {
			t.Fatalf("Format(Parse(%q)) = %q", line, got)
		}
	}
}
