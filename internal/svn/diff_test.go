package svn

import (
	"errors"
	"testing"

	"github.com/svnscope/svnscope-go/internal/reconcile"
)

func TestCountDiffLines(t *testing.T) {
	diff := `Index: src/main.c
===================================================================
--- src/main.c	(revision 4)
+++ src/main.c	(revision 5)
@@ -1,5 +1,6 @@
 #include <stdio.h>
-int main() {
+int main(void) {
+	puts("hello");
 	return 0;
 }
`
	added, removed, err := countDiffLines([]byte(diff))
	if err != nil {
		t.Fatalf("countDiffLines failed: %v", err)
	}
	if added != 2 {
		t.Errorf("expected 2 added, got %d", added)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}
}

func TestCountDiffLinesEmptyDiff(t *testing.T) {
	added, removed, err := countDiffLines(nil)
	if err != nil {
		t.Fatalf("countDiffLines failed: %v", err)
	}
	if added != 0 || removed != 0 {
		t.Errorf("expected 0/0, got %d/%d", added, removed)
	}
}

func TestCountDiffLinesBinaryMarker(t *testing.T) {
	diff := `Index: img/logo.png
===================================================================
Cannot display: file marked as a binary type.
svn:mime-type = application/octet-stream
`
	_, _, err := countDiffLines([]byte(diff))
	if !errors.Is(err, reconcile.ErrBinaryFile) {
		t.Fatalf("expected ErrBinaryFile, got %v", err)
	}
}

func TestCountDiffLinesIgnoresHeaders(t *testing.T) {
	diff := `--- a	(revision 1)
+++ a	(revision 2)
+one
`
	added, removed, err := countDiffLines([]byte(diff))
	if err != nil {
		t.Fatalf("countDiffLines failed: %v", err)
	}
	if added != 1 || removed != 0 {
		t.Errorf("headers must not count: got %d/%d", added, removed)
	}
}
