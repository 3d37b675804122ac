package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If given error implements unpacker interface, it is flattened. All
// errors returned by Unpack method are directly added to the result. This
// makes the result a flat collection of errors.
func Append(errs ...error) error {
	var res multiErr
	for _, e := range errs {
		if isNilErr(e) {
			continue
		}
		if u, ok := e.(unpacker); ok {
			res = append(res, u.Unpack()...)
		} else {
			res = append(res, e)
		}
	}

	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	default:
		return res
	}
}

// unpacker is implemented by errors that are a collection of errors.
type unpacker interface {
	Unpack() []error
}

// multiErr is a default implementation of a collection of errors. It does
// not provide a Cause method, because there is no single cause. Use the Is
// method of a root error to test membership instead.
type multiErr []error

var _ unpacker = (multiErr)(nil)

func (errs multiErr) Unpack() []error {
	return errs
}

func (errs multiErr) Error() string {
	points := make([]string, len(errs))
	for i, err := range errs {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf(
		"%d errors occurred:\n\t%s\n",
		len(errs), strings.Join(points, "\n\t"))
}

// ABCICode returns the code of the first error. A collection of errors is
// always created in the order of appearance, so this is consistent with a
// fail-fast approach.
func (errs multiErr) ABCICode() uint32 {
	return abciCode(errs[0])
}
