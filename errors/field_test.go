package errors

import (
	"reflect"
	"testing"
)

func TestFieldErrors(t *testing.T) {
	// Declared upfront so that results can be compared with DeepEqual.
	var (
		emptyMembers   = Field("Members", ErrEmpty, "no members")
		duplicatedKey  = Field("Members.1.Key", ErrDuplicate, "duplicated key")
		invalidKey     = Field("Members.1.Key", ErrInput, "short key")
		zeroThreshold  = Field("Threshold", ErrInput, "zero")
		argsMultiErr   = Field("Args", Append(duplicatedKey, Append(zeroThreshold, ErrState)), "invalid args")
		wrappedMembers = Field("Members", emptyMembers, "outer")
	)

	cases := map[string]struct {
		err   error
		field string
		want  []error
	}{
		"single error": {
			err:   emptyMembers,
			field: "Members",
			want:  []error{emptyMembers},
		},
		"two errors of the same field": {
			err:   Append(duplicatedKey, invalidKey),
			field: "Members.1.Key",
			want:  []error{duplicatedKey, invalidKey},
		},
		"field holding a collection": {
			err:   argsMultiErr,
			field: "Args",
			want:  []error{argsMultiErr},
		},
		"field found inside a collection": {
			err:   argsMultiErr,
			field: "Threshold",
			want:  []error{zeroThreshold},
		},
		"wrapped collection": {
			err:   Wrap(Wrap(argsMultiErr, "inner"), "outer"),
			field: "Members.1.Key",
			want:  []error{duplicatedKey},
		},
		"field name is matched exactly": {
			err:   duplicatedKey,
			field: "Members",
			want:  nil,
		},
		"nested fields return the innermost match": {
			err:   Field("Msg", Field("Args", zeroThreshold, "args"), "msg"),
			field: "Threshold",
			want:  []error{zeroThreshold},
		},
		"same field nested returns the outermost": {
			err:   wrappedMembers,
			field: "Members",
			want:  []error{wrappedMembers},
		},
		"not a field error": {
			err:   ErrUnauthorized,
			field: "Members",
			want:  nil,
		},
		"nil error": {
			err:   nil,
			field: "Members",
			want:  nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got := FieldErrors(tc.err, tc.field)
			if !reflect.DeepEqual(tc.want, got) {
				t.Fatalf("want %#v, got %#v", tc.want, got)
			}
		})
	}
}

func TestFieldNilError(t *testing.T) {
	if err := Field("Treasury", nil, "ignored"); err != nil {
		t.Fatalf("want nil, got %+v", err)
	}
	if err := AppendField(nil, "Treasury", nil); err != nil {
		t.Fatalf("want nil, got %+v", err)
	}
	err := AppendField(nil, "Treasury", ErrInput)
	if !ErrInput.Is(err) || len(FieldErrors(err, "Treasury")) != 1 {
		t.Fatalf("unexpected error: %+v", err)
	}
}
