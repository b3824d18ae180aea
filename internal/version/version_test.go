package version

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Version
	}{
		{"v1.2.3", Version{1, 2, 3, ""}},
		{"1.2.3", Version{1, 2, 3, ""}},
		{"v0.0.1", Version{0, 0, 1, ""}},
		{"v1.2.3-a1b2c3d", Version{1, 2, 3, "a1b2c3d"}},
		{"v10.20.30-rc.1", Version{10, 20, 30, "rc.1"}},
		{"  v1.2.3  ", Version{1, 2, 3, ""}},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Parse(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestParse_Rejects(t *testing.T) {
	bad := []string{"", "v1.2", "1", "v1.2.3.4", "va.b.c", "v-1.2.3", "v1.2.3-", "version"}
	for _, in := range bad {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", in)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, in := range []string{"v1.2.3", "v0.1.47", "v1.2.3-a1b2c3d", "v2.0.0-beta.2"} {
		v, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", in, err)
		}
		if v.String() != in {
			t.Errorf("round trip of %q produced %q", in, v.String())
		}
		again, err := Parse(v.String())
		if err != nil {
			t.Fatalf("reparse of %q failed: %v", v.String(), err)
		}
		if again != v {
			t.Errorf("reparse of %q = %+v, want %+v", v.String(), again, v)
		}
	}
}

func TestBump(t *testing.T) {
	base := Version{1, 2, 3, "a1b2c3d"}

	if got := base.Bump(LevelMajor); got != (Version{2, 0, 0, ""}) {
		t.Errorf("major bump = %v", got)
	}
	if got := base.Bump(LevelMinor); got != (Version{1, 3, 0, ""}) {
		t.Errorf("minor bump = %v", got)
	}
	if got := base.Bump(LevelPatch); got != (Version{1, 2, 4, ""}) {
		t.Errorf("patch bump = %v", got)
	}
}

func TestParseLevel(t *testing.T) {
	if _, err := ParseLevel("Major"); err != nil {
		t.Errorf("ParseLevel(Major) failed: %v", err)
	}
	if _, err := ParseLevel("mini"); err == nil {
		t.Error("ParseLevel(mini) succeeded, want error")
	}
}

func TestCompare(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"v1.0.0", "v1.0.0", 0},
		{"v1.0.0", "v1.0.1", -1},
		{"v1.1.0", "v1.0.9", 1},
		{"v2.0.0", "v1.9.9", 1},
		// Suffix is a pre-release: sorts before the bare version.
		{"v1.0.0-a1b2c3d", "v1.0.0", -1},
		{"v1.0.0", "v1.0.0-a1b2c3d", 1},
		{"v1.0.0-aaa", "v1.0.0-bbb", -1},
	}
	for _, tc := range cases {
		a, _ := Parse(tc.a)
		b, _ := Parse(tc.b)
		if got := Compare(a, b); got != tc.want {
			t.Errorf("Compare(%s, %s) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestIsDevMark(t *testing.T) {
	v, _ := Parse("v1.2.3-a1b2c3d")
	if !v.IsDevMark() {
		t.Error("expected 7-hex suffix to be a dev mark")
	}
	v, _ = Parse("v1.2.3-rc.1")
	if v.IsDevMark() {
		t.Error("rc.1 should not be a dev mark")
	}
	v, _ = Parse("v1.2.3")
	if v.IsDevMark() {
		t.Error("bare version should not be a dev mark")
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "__init__.py")

	content := "from pathlib import Path\n\n__version__: v0.1.47\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	v, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if v != (Version{0, 1, 47, ""}) {
		t.Errorf("ReadFile = %+v", v)
	}
}

func TestReadFile_CRLFAndQuotes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "version.txt")

	if err := os.WriteFile(path, []byte("__version__: \"v1.0.0-abc1234\"\r\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	v, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if v.String() != "v1.0.0-abc1234" {
		t.Errorf("ReadFile = %s", v)
	}
}

func TestReadFile_FirstMarkerWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "version.txt")

	content := "__version__: v1.0.0\n__version__: v9.9.9\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	v, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "v1.0.0" {
		t.Errorf("expected first marker, got %s", v)
	}
}

func TestReadFile_NoMarker(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(path, []byte("nothing here\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ReadFile(path)
	if err == nil {
		t.Fatal("expected error for file without marker")
	}
}

func TestWriteFile_PreservesOtherLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "__init__.py")

	content := "# header\n__version__: v0.1.0\ntrailer = True\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := WriteFile(path, Version{0, 2, 0, ""}); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "# header\n__version__: v0.2.0\ntrailer = True\n"
	if string(data) != want {
		t.Errorf("file after write:\n%q\nwant:\n%q", data, want)
	}
}

func TestWriteFile_CreatesMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "version.txt")

	if err := WriteFile(path, Version{1, 0, 0, ""}); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	v, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "v1.0.0" {
		t.Errorf("ReadFile after create = %s", v)
	}
}
