package diagnostic

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	d := New()
	d.Errorf(3, 10, "unbound variable '%s'", "x")
	d.WarningWithHint(5, 1, "let binding 'z' is never used", "remove it")
	d.ErrorfInFile("lib.fun", 1, 2, "unexpected %s", "';'")

	want := "error[main.fun:3:10]: unbound variable 'x'\n" +
		"warning[main.fun:5:1]: let binding 'z' is never used\n" +
		"  hint: remove it\n" +
		"error[lib.fun:1:2]: unexpected ';'"
	if got := d.Format("main.fun"); got != want {
		t.Errorf("format mismatch:\n--- want\n%s\n--- got\n%s", want, got)
	}
	if d.ErrorCount() != 2 || d.WarningCount() != 1 || d.Count() != 3 {
		t.Errorf("unexpected counts %d/%d/%d", d.ErrorCount(), d.WarningCount(), d.Count())
	}
}

func TestEmptyFormat(t *testing.T) {
	if got := New().Format("x.fun"); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestMergeStampsFile(t *testing.T) {
	inner := New()
	inner.Errorf(1, 1, "first")
	inner.ErrorfInFile("other.fun", 2, 2, "second")

	outer := New()
	outer.Merge(inner, "dep.fun")
	outer.Merge(nil, "ignored.fun")

	all := outer.All()
	if len(all) != 2 || all[0].File != "dep.fun" || all[1].File != "other.fun" {
		t.Errorf("unexpected files: %+v", all)
	}
}

func TestSort(t *testing.T) {
	d := New()
	d.Warningf(4, 1, "c")
	d.Warningf(2, 7, "b")
	d.Warningf(2, 3, "a")
	d.Warningf(2, 3, "a2")
	d.Sort()

	var got string
	for _, item := range d.All() {
		got += item.Message + " "
	}
	if got != "a a2 b c " {
		t.Errorf("unexpected order %q", got)
	}
}

func TestErr(t *testing.T) {
	d := New()
	d.Warningf(1, 1, "just a warning")
	if err := d.Err("f.fun"); err != nil {
		t.Fatalf("warnings must not produce an error, got %v", err)
	}

	d.Errorf(2, 4, "broken")
	err := d.Err("f.fun")
	var list *ListError
	if !errors.As(err, &list) {
		t.Fatalf("expected *ListError, got %T", err)
	}
	if err.Error() != "error[f.fun:2:4]: broken" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
