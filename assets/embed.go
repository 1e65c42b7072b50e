// assets/embed.go
//
// Files compiled into the binaries:
//   - nouns.txt: default dictionary and solution pool (German nouns, 5 letters).
//   - sql/*.sql: migrations for the optional SQLite dictionary.

package assets

import (
	"bufio"
	"embed"
	"io/fs"
	"strings"
)

//go:embed nouns.txt
var words embed.FS

//go:embed sql/*.sql
var migrations embed.FS

// Migrations exposes the SQL migration files rooted at "sql".
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "sql")
	if err != nil {
		// fs.Sub only fails for invalid paths; "sql" is a constant.
		panic(err)
	}
	return sub
}

func readLines(name string) ([]string, error) {
	f, err := words.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// Nouns returns the embedded noun list in file order, as written.
func Nouns() ([]string, error) {
	return readLines("nouns.txt")
}
