package workspace

import (
	"os"
	"testing"
)

// testChdir mirrors (*testing.T).Chdir from newer Go releases: it changes
// into dir and restores the previous working directory when the test ends.
func testChdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
