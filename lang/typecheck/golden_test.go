package typecheck

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/theta/internal/filetest"
	"github.com/mna/theta/lang/parser"
)

var update = flag.Bool("test.update-golden-tests", false, "update the typecheck golden files")

// TestGoldenValidPrograms checks every testdata/*.theta program against its
// golden .err file: an empty (missing) golden file asserts the program
// type-checks cleanly, exactly like fib.theta, arithmetic.theta and
// loop.theta here, each already exercised end to end in lang/machine's VM
// tests.
func TestGoldenValidPrograms(t *testing.T) {
	dir := "testdata"
	for _, fi := range filetest.SourceFiles(t, dir, ".theta") {
		fi := fi
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(dir, fi.Name()))
			if err != nil {
				t.Fatal(err)
			}
			fs, prog, err := parser.ParseFile(fi.Name(), src)
			if err != nil {
				t.Fatal(err)
			}
			checkErr := Check(fs.Files()[0], prog)
			var errOutput string
			if checkErr != nil {
				errOutput = checkErr.Error()
			}
			filetest.DiffErrors(t, fi, errOutput, dir, update)
		})
	}
}
