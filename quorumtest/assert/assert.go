// Package assert provides the minimal set of test assertions used across
// quorum packages. All helpers fail fast.
package assert

import (
	"reflect"
	"testing"

	"github.com/iov-one/quorum/errors"
)

// Tester is the minimal subset of testing.TB needed to run most assert commands
type Tester interface {
	Helper()
	Fatal(...interface{})
	Fatalf(string, ...interface{})
}

// Nil fails the test if given value is not nil.
func Nil(t Tester, value interface{}) {
	t.Helper()
	if !isNil(value) {
		// %+v prints the full stack trace of errors that carry one.
		t.Fatalf("want a nil value, got %+v", value)
	}
}

// NotNil fails the test if given value is nil.
func NotNil(t Tester, value interface{}) {
	t.Helper()
	if isNil(value) {
		t.Fatal("want a non nil value")
	}
}

func isNil(value interface{}) (isnil bool) {
	if value == nil {
		return true
	}
	defer func() {
		// IsNil panics for kinds that cannot be nil.
		if recover() != nil {
			isnil = false
		}
	}()
	return reflect.ValueOf(value).IsNil()
}

// Equal fails the test if two values are not equal.
func Equal(t Tester, want, got interface{}) {
	t.Helper()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("values not equal \nwant %T %v\n got %T %v", want, want, got, got)
	}
}

// Panics will run given function and recover any panic. It will fail the test
// if given function call did not panic.
func Panics(t Tester, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("panic expected")
		}
	}()
	fn()
}

// FieldError ensures that given error contains exactly one error for the
// given field and that it is of the wanted kind. Use nil as the wanted
// kind to ensure that the field has no error.
func FieldError(t testing.TB, err error, fieldName string, want *errors.Error) {
	t.Helper()

	errs := errors.FieldErrors(err, fieldName)
	if want == nil {
		if len(errs) != 0 {
			logErrors(t, errs)
			t.Fatalf("expected no %q field error, got %d", fieldName, len(errs))
		}
		return
	}

	switch len(errs) {
	case 0:
		t.Fatalf("no %q field error found", fieldName)
	case 1:
		if !want.Is(errs[0]) {
			t.Fatalf("unexpected %q field error found: %q", fieldName, errs[0])
		}
	default:
		logErrors(t, errs)
		t.Errorf("want one %q field error, got %d", fieldName, len(errs))
	}
}

func logErrors(t testing.TB, errs []error) {
	for i, e := range errs {
		t.Logf("\terror %d: %q", i+1, e)
	}
}

// IsErr is a convenient helper that checks if the errors are a match
// and prints out the difference if not as well as failing the assertion.
func IsErr(t testing.TB, want, got error) {
	t.Helper()

	if want == got {
		return
	}

	type comparator interface {
		Is(error) bool
	}
	if want, ok := want.(comparator); ok && want.Is(got) {
		return
	}

	t.Fatalf("want %q, got %+v", want, got)
}
