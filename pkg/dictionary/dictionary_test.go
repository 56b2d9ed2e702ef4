package dictionary

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bastiangx/wordlook/pkg/codec"
	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

// makeDict returns a dictionary with an entry per term.
func makeDict(name string, terms ...string) *codec.Dictionary {
	d := codec.NewDictionary(name)
	for _, term := range terms {
		d.Add(codec.Entry{
			Term: term,
			Etymologies: []codec.Etymology{{
				Senses: []codec.Sense{{
					POS:         "n",
					Definitions: []codec.Definition{{Value: "definition of " + term}},
				}},
			}},
		})
	}
	return d
}

// writeDict writes d to dir/file and returns the path. A nil version writes
// the current format version.
func writeDict(t *testing.T, dir, file string, d *codec.Dictionary, v *codec.Version) string {
	t.Helper()
	path := filepath.Join(dir, file)
	if err := codec.WriteFile(path, d, &codec.WriteOptions{Version: v}); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestIsCompatible(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		v    codec.Version
		want bool
	}{
		{codec.Version{Major: 2, Minor: 8, Patch: 0}, true},
		{codec.Version{Major: 2, Minor: 8, Patch: 1}, true},
		{codec.Version{Major: 2, Minor: 9, Patch: 0}, true},
		{codec.Version{Major: 3, Minor: 0, Patch: 0}, true},
		{codec.Version{Major: 2, Minor: 7, Patch: 9}, false},
		{codec.Version{Major: 1, Minor: 9, Patch: 9}, false},
		{codec.Version{}, false},
	}
	for _, tc := range testCases {
		if got := IsCompatible(tc.v); got != tc.want {
			t.Errorf("IsCompatible(%s) = %v, want %v", tc.v, got, tc.want)
		}
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	d := makeDict("animals", "cat", "car", "dog")
	ix := Build(d)

	if diff := cmp.Diff([]string{"car", "cat"}, ix.Search("ca")); diff != "" {
		t.Errorf("Search(\"ca\") (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{}, ix.Search("z")); diff != "" {
		t.Errorf("Search(\"z\") (-want, +got):\n%s", diff)
	}
	// the prefix index holds exactly the key set
	if diff := cmp.Diff([]string{"car", "cat", "dog"}, ix.Search("")); diff != "" {
		t.Errorf("Search(\"\") (-want, +got):\n%s", diff)
	}
	if got, want := ix.Len(), 3; got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}
	if got, want := ix.Name(), "animals"; got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}

	var walked []string
	ix.Walk(func(term string) bool {
		walked = append(walked, term)
		return len(walked) < 2
	})
	if diff := cmp.Diff([]string{"car", "cat"}, walked); diff != "" {
		t.Errorf("Walk stopped after two (-want, +got):\n%s", diff)
	}
}

func TestBuildEmpty(t *testing.T) {
	t.Parallel()

	ix := Build(&codec.Dictionary{})
	if got := ix.Search(""); len(got) != 0 {
		t.Errorf("Search(\"\") = %v, want empty", got)
	}
	if _, ok := ix.Lookup("anything"); ok {
		t.Error("Lookup on empty index found an entry")
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	ix := Build(makeDict("", "Cat", "cat"))
	testCases := []struct {
		term   string
		wantOK bool
	}{
		{"cat", true},
		{"Cat", true},
		{"CAT", false},
		{" cat", false},
		{"ca", false},
	}
	for _, tc := range testCases {
		e, ok := ix.Lookup(tc.term)
		if ok != tc.wantOK {
			t.Errorf("Lookup(%q) ok = %v, want %v", tc.term, ok, tc.wantOK)
			continue
		}
		if ok && e.Term != tc.term {
			t.Errorf("Lookup(%q).Term = %q", tc.term, e.Term)
		}
	}
}

func TestLoadFromPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	want := makeDict("animals", "cat", "car", "dog")
	path := writeDict(t, dir, "animals.wld", want, nil)

	ix, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if diff := cmp.Diff(want, ix.Dictionary()); diff != "" {
		t.Errorf("Dictionary (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"car", "cat"}, ix.Search("ca")); diff != "" {
		t.Errorf("Search(\"ca\") (-want, +got):\n%s", diff)
	}
}

func TestLoadFromPathVersions(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		version codec.Version
		wantErr bool
	}{
		{"minimum", codec.Version{Major: 2, Minor: 8, Patch: 0}, false},
		{"newer patch", codec.Version{Major: 2, Minor: 8, Patch: 3}, false},
		{"newer major", codec.Version{Major: 3, Minor: 0, Patch: 0}, false},
		{"older patch", codec.Version{Major: 2, Minor: 7, Patch: 9}, true},
		{"older major", codec.Version{Major: 1, Minor: 0, Patch: 0}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			v := tc.version
			path := writeDict(t, t.TempDir(), "v.wld", makeDict("v", "a"), &v)

			_, err := LoadFromPath(path)
			if !tc.wantErr {
				if err != nil {
					t.Fatalf("LoadFromPath: %v", err)
				}
				return
			}

			var verr *VersionError
			if !errors.As(err, &verr) {
				t.Fatalf("LoadFromPath() error = %v, want *VersionError", err)
			}
			if diff := cmp.Diff(tc.version, verr.Declared); diff != "" {
				t.Errorf("Declared (-want, +got):\n%s", diff)
			}
			if diff := cmp.Diff(MinVersion, verr.Minimum); diff != "" {
				t.Errorf("Minimum (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestLoadFromPathFormatErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.wld")
	if err := os.WriteFile(garbage, []byte("this is not a dictionary"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{garbage, filepath.Join(dir, "missing.wld")} {
		_, err := LoadFromPath(path)
		var ferr *FormatError
		if !errors.As(err, &ferr) {
			t.Errorf("LoadFromPath(%s) error = %v, want *FormatError", path, err)
			continue
		}
		if ferr.Path != path {
			t.Errorf("FormatError.Path = %q, want %q", ferr.Path, path)
		}
	}
}

func TestLazyLifecycle(t *testing.T) {
	t.Parallel()

	path := writeDict(t, t.TempDir(), "file-stem.wld", makeDict("Declared", "cat", "car", "dog"), nil)
	l := NewLazy(path)

	if got := l.State(); got != Unloaded {
		t.Fatalf("State() = %s, want %s", got, Unloaded)
	}
	if _, err := l.Search("ca"); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Search() before load error = %v, want ErrNotLoaded", err)
	}
	if got, want := l.DisplayName(), "file-stem"; got != want {
		t.Errorf("DisplayName() = %q, want %q", got, want)
	}

	task := l.RequestLoad()
	if task == nil {
		t.Fatal("RequestLoad() = nil, want task")
	}
	if got := l.State(); got != Loading {
		t.Fatalf("State() = %s, want %s", got, Loading)
	}
	if dup := l.RequestLoad(); dup != nil {
		t.Error("second RequestLoad() while loading returned a task")
	}
	if _, err := l.Lookup("cat"); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Lookup() while loading error = %v, want ErrNotLoaded", err)
	}

	if !l.CompleteLoad(task()) {
		t.Fatal("CompleteLoad() = false")
	}
	if got := l.State(); got != Loaded {
		t.Fatalf("State() = %s, want %s", got, Loaded)
	}

	got, err := l.Search("ca")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if diff := cmp.Diff([]string{"car", "cat"}, got); diff != "" {
		t.Errorf("Search(\"ca\") (-want, +got):\n%s", diff)
	}
	e, err := l.Lookup("dog")
	if err != nil || e == nil || e.Term != "dog" {
		t.Errorf("Lookup(\"dog\") = %v, %v", e, err)
	}
	e, err = l.Lookup("cow")
	if err != nil || e != nil {
		t.Errorf("Lookup(\"cow\") = %v, %v, want nil, nil", e, err)
	}
	if got, want := l.DisplayName(), "Declared"; got != want {
		t.Errorf("DisplayName() = %q, want %q", got, want)
	}

	// a late duplicate result is ignored
	if l.CompleteLoad(LoadResult{Err: errors.New("late")}) {
		t.Error("CompleteLoad() on loaded dictionary = true")
	}
	if got := l.State(); got != Loaded {
		t.Errorf("State() = %s, want %s", got, Loaded)
	}

	// reloading drops the index until the new result arrives
	if l.RequestLoad() == nil {
		t.Fatal("RequestLoad() on loaded dictionary = nil")
	}
	if l.Index() != nil {
		t.Error("Index() kept across reload")
	}
}

func TestLazyFailedLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	v := codec.Version{Major: 2, Minor: 7, Patch: 9}
	path := writeDict(t, dir, "old.wld", makeDict("old", "a"), &v)

	l := NewLazy(path)
	l.CompleteLoad(l.RequestLoad()())

	if got := l.State(); got != Failed {
		t.Fatalf("State() = %s, want %s", got, Failed)
	}
	var verr *VersionError
	if !errors.As(l.Err(), &verr) {
		t.Errorf("Err() = %v, want *VersionError", l.Err())
	}
	if _, err := l.Search(""); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Search() after failure error = %v, want ErrNotLoaded", err)
	}

	// fix the file and retry
	writeDict(t, dir, "old.wld", makeDict("old", "a"), nil)
	task := l.RequestLoad()
	if task == nil {
		t.Fatal("RequestLoad() after failure = nil")
	}
	l.CompleteLoad(task())
	if got := l.State(); got != Loaded {
		t.Errorf("State() after retry = %s, want %s (err %v)", got, Loaded, l.Err())
	}
}

func TestLazyAbortLoad(t *testing.T) {
	t.Parallel()

	path := writeDict(t, t.TempDir(), "a.wld", makeDict("a", "apple"), nil)
	l := NewLazy(path)

	if l.AbortLoad() {
		t.Error("AbortLoad() without a load in flight = true")
	}
	if l.RequestLoad() == nil {
		t.Fatal("RequestLoad() = nil")
	}
	if !l.AbortLoad() {
		t.Fatal("AbortLoad() while loading = false")
	}
	if got := l.State(); got != Unloaded {
		t.Fatalf("State() = %s, want %s", got, Unloaded)
	}
	if l.Err() != nil {
		t.Errorf("Err() = %v, want nil", l.Err())
	}

	// the next request starts a fresh load
	task := l.RequestLoad()
	if task == nil {
		t.Fatal("RequestLoad() after abort = nil")
	}
	l.CompleteLoad(task())
	if got := l.State(); got != Loaded {
		t.Errorf("State() = %s, want %s", got, Loaded)
	}
	if l.AbortLoad() {
		t.Error("AbortLoad() on loaded dictionary = true")
	}
}

func TestLazyDisplayNameUnnamed(t *testing.T) {
	t.Parallel()

	l := NewLoaded("/data/plain.wld", Build(makeDict("", "x")))
	if got, want := l.DisplayName(), "plain"; got != want {
		t.Errorf("DisplayName() = %q, want %q", got, want)
	}
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"b.wld", "a.wld", "notes.txt", "C.WLD"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "dir.wld"), 0o755); err != nil {
		t.Fatal(err)
	}

	dicts, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	var got []string
	for _, d := range dicts {
		if d.State() != Unloaded {
			t.Errorf("%s: State() = %s, want %s", d.Path(), d.State(), Unloaded)
		}
		got = append(got, filepath.Base(d.Path()))
	}
	if diff := cmp.Diff([]string{"C.WLD", "a.wld", "b.wld"}, got); diff != "" {
		t.Errorf("Discover (-want, +got):\n%s", diff)
	}

	dicts, err = Discover(filepath.Join(dir, "missing"))
	if err != nil || len(dicts) != 0 {
		t.Errorf("Discover(missing) = %v, %v, want none", dicts, err)
	}
}

func TestProbe(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	v := codec.Version{Major: 2, Minor: 7, Patch: 0}
	path := writeDict(t, dir, "probe.wld", makeDict("probe", "a", "b"), &v)

	info, err := Probe(path)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if info.Compatible {
		t.Error("Compatible = true for 2.7.0")
	}
	if diff := cmp.Diff(v, info.Version); diff != "" {
		t.Errorf("Version (-want, +got):\n%s", diff)
	}

	short := filepath.Join(dir, "short.wld")
	if err := os.WriteFile(short, []byte("WL"), 0o644); err != nil {
		t.Fatal(err)
	}
	var ferr *FormatError
	if _, err := Probe(short); !errors.As(err, &ferr) {
		t.Errorf("Probe(short) error = %v, want *FormatError", err)
	}
}
