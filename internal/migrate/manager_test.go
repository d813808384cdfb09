package migrate

import (
	"testing"
	"testing/fstest"
)

func TestCollectSQLOrdersByName(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_second.up.sql":   {Data: []byte("select 2;")},
		"0001_first.up.sql":    {Data: []byte("select 1;")},
		"0001_first.down.sql":  {Data: []byte("select -1;")},
		"0003_third.up.sql":    {Data: []byte("select 3;")},
		"notes/readme.txt":     {Data: []byte("not sql")},
		"nested/0000_zero.sql": {Data: []byte("select 0;")},
	}

	files, err := collectSQL(fsys, ".up.sql")
	if err != nil {
		t.Fatalf("collectSQL: %v", err)
	}
	want := []string{"0001_first.up.sql", "0002_second.up.sql", "0003_third.up.sql"}
	if len(files) != len(want) {
		t.Fatalf("got %d files, want %d", len(files), len(want))
	}
	for i, f := range files {
		if f.Base != want[i] {
			t.Fatalf("position %d: got %s, want %s", i, f.Base, want[i])
		}
	}
}

func TestCollectSQLNilFS(t *testing.T) {
	files, err := collectSQL(nil, ".sql")
	if err != nil || files != nil {
		t.Fatalf("nil fs: %v %v", files, err)
	}
}

func TestFindFileWalksSubdirectories(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/0001_init.down.sql": {Data: []byte("drop table x;")},
	}
	path, err := findFile(fsys, "0001_init.down.sql")
	if err != nil {
		t.Fatalf("findFile: %v", err)
	}
	if path != "sql/0001_init.down.sql" {
		t.Fatalf("unexpected path: %s", path)
	}
	if _, err := findFile(fsys, "0002_other.down.sql"); err == nil {
		t.Fatal("expected miss for absent file")
	}
}

func TestSplitStatementsRespectsStrings(t *testing.T) {
	sql := `insert into t(name) values ('a;b');
create table x (id text);`
	stmts := splitStatements(sql)
	if len(stmts) != 2 {
		t.Fatalf("got %d statements: %q", len(stmts), stmts)
	}
	if stmts[0] != "insert into t(name) values ('a;b');" {
		t.Fatalf("semicolon in string split wrongly: %q", stmts[0])
	}
}
