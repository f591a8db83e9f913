package audit

import "testing"

func TestListPagesFindsHTMLFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeSiteFile(t, root, "index.html", "<html></html>")
	writeSiteFile(t, root, "about.html", "<html></html>")
	writeSiteFile(t, root, "blog/index.html", "<html></html>")
	writeSiteFile(t, root, "blog/post.html", "<html></html>")
	writeSiteFile(t, root, "notes.txt", "plain text")

	pages, err := listPages(root, nil)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	want := []string{"about.html", "blog/index.html", "blog/post.html", "index.html"}
	assertPages(t, pages, want)
}

func TestListPagesSkipsToolingAndHiddenPaths(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeSiteFile(t, root, "index.html", "<html></html>")
	writeSiteFile(t, root, ".git/objects/blob.html", "<html></html>")
	writeSiteFile(t, root, "_site/generated.html", "<html></html>")
	writeSiteFile(t, root, "node_modules/pkg/index.html", "<html></html>")
	writeSiteFile(t, root, ".hidden.html", "<html></html>")
	writeSiteFile(t, root, "_draft.html", "<html></html>")

	pages, err := listPages(root, nil)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	assertPages(t, pages, []string{"index.html"})
}

func TestListPagesHonorsSkipSet(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeSiteFile(t, root, "index.html", "<html></html>")
	writeSiteFile(t, root, "dashboard.html", "<html></html>")
	writeSiteFile(t, root, "blog/dashboard.html", "<html></html>")
	writeSiteFile(t, root, "blog/post.html", "<html></html>")

	// Skip files match by base name wherever they appear.
	skip := map[string]struct{}{"dashboard.html": {}}
	pages, err := listPages(root, skip)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	assertPages(t, pages, []string{"blog/post.html", "index.html"})
}

func assertPages(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("unexpected pages: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("page %d: got %q want %q", i, got[i], want[i])
		}
	}
}
