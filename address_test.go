package quorum_test

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressPrinting(t *testing.T) {
	Convey("test hexadecimal address printing", t, func() {
		addr := quorum.NewAddress([]byte("ABCD123456LHB"))

		So(addr.String(), ShouldEqual, fmt.Sprintf("%X", []byte(addr)))
		So(quorum.Address(nil).String(), ShouldEqual, "(nil)")
	})

	Convey("test hexadecimal condition printing", t, func() {
		cond := quorum.NewCondition("sigs", "ed25519", []byte("ABCD123456LHB"))

		So(cond.String(), ShouldNotEqual, fmt.Sprintf("%X", []byte(cond)))
		So(cond.String(), ShouldStartWith, "sigs/ed25519/")
	})

	Convey("test zero address", t, func() {
		So(quorum.ZeroAddress().IsZero(), ShouldBeTrue)
		So(quorum.ZeroAddress().Validate(), ShouldBeNil)
		So(quorum.NewAddress([]byte("x")).IsZero(), ShouldBeFalse)
	})
}

func TestAddressOrdering(t *testing.T) {
	a := quorum.Address(bytes.Repeat([]byte{1}, quorum.AddressLength))
	b := quorum.Address(bytes.Repeat([]byte{2}, quorum.AddressLength))
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a.Clone()))
	assert.True(t, a.Equals(a.Clone()))

	c := a.Clone()
	c[0] = 9
	assert.NotEqual(t, a[0], c[0])
}

func TestAddressUnmarshalJSON(t *testing.T) {
	raw := bytes.Repeat([]byte("hex-addr"), 4)
	hexAddr := hex.EncodeToString(raw)

	cases := map[string]struct {
		json     string
		wantErr  *errors.Error
		wantAddr quorum.Address
	}{
		"default decoding": {
			json:     fmt.Sprintf(`"%s"`, hexAddr),
			wantAddr: quorum.Address(raw),
		},
		"hex decoding": {
			json:     fmt.Sprintf(`"hex:%s"`, hexAddr),
			wantAddr: quorum.Address(raw),
		},
		"base58 decoding": {
			json:     fmt.Sprintf(`"base58:%s"`, quorum.Address(raw).Base58()),
			wantAddr: quorum.Address(raw),
		},
		"cond decoding": {
			json:     `"cond:foo/bar/636f6e646974696f6e64617461"`,
			wantAddr: quorum.NewCondition("foo", "bar", []byte("conditiondata")).Address(),
		},
		"short hex address": {
			json:    `"6865782d61646472"`,
			wantErr: errors.ErrInput,
		},
		"invalid condition format": {
			json:    `"cond:foo/636f6e646974696f6e64617461"`,
			wantErr: errors.ErrInput,
		},
		"invalid condition data": {
			json:    `"cond:foo/bar/zzzzz"`,
			wantErr: errors.ErrInput,
		},
		"invalid base58": {
			json:    `"base58:0OIl"`,
			wantErr: errors.ErrInput,
		},
		"unknown format": {
			json:    `"foobar:xxx"`,
			wantErr: errors.ErrType,
		},
		"zero address": {
			json:     `""`,
			wantAddr: nil,
		},
		"zero hex address": {
			json:     `"hex:"`,
			wantAddr: nil,
		},
		"zero cond address": {
			json:     `"cond:"`,
			wantAddr: nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var a quorum.Address
			err := json.Unmarshal([]byte(tc.json), &a)
			if !tc.wantErr.Is(err) {
				t.Fatalf("got error: %+v", err)
			}
			if err == nil && !reflect.DeepEqual(a, tc.wantAddr) {
				t.Fatalf("got address: %q", a)
			}
		})
	}
}

func TestAddressBech32(t *testing.T) {
	addr := quorum.NewAddress([]byte("bech32 test"))
	enc, err := addr.Bech32("msig")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(enc, "msig1"))

	got, err := quorum.ParseAddress("bech32:" + enc)
	require.NoError(t, err)
	assert.Equal(t, addr, got)
}

func TestAddressMarshalJSON(t *testing.T) {
	addr := quorum.NewAddress([]byte("marshal"))
	raw, err := json.Marshal(addr)
	require.NoError(t, err)

	var got quorum.Address
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, addr, got)
}

func TestConditionUnmarshalJSON(t *testing.T) {
	cases := map[string]struct {
		json          string
		wantErr       *errors.Error
		wantCondition quorum.Condition
	}{
		"default decoding": {
			json:          `"foo/bar/636f6e646974696f6e64617461"`,
			wantCondition: quorum.NewCondition("foo", "bar", []byte("conditiondata")),
		},
		"invalid condition format": {
			json:    `"foo/636f6e646974696f6e64617461"`,
			wantErr: errors.ErrInput,
		},
		"invalid condition data": {
			json:    `"foo/bar/zzzzz"`,
			wantErr: errors.ErrInput,
		},
		"zero address": {
			json:          `""`,
			wantCondition: nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got quorum.Condition
			err := json.Unmarshal([]byte(tc.json), &got)
			if !tc.wantErr.Is(err) {
				t.Fatalf("got error: %+v", err)
			}
			if err == nil && !got.Equals(tc.wantCondition) {
				t.Fatalf("expected %q but got condition: %q", tc.wantCondition, got)
			}
		})
	}
}

func TestConditionMarshalJSON(t *testing.T) {
	cases := map[string]struct {
		source   quorum.Condition
		wantJson string
	}{
		"cond encoding": {
			source:   quorum.NewCondition("foo", "bar", []byte("conditiondata")),
			wantJson: `"foo/bar/636F6E646974696F6E64617461"`,
		},
		"nil encoding": {
			source:   nil,
			wantJson: `""`,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := json.Marshal(tc.source)
			require.NoError(t, err)
			assert.Equal(t, tc.wantJson, string(got))
		})
	}
}

func TestOptionsReading(t *testing.T) {
	opts := quorum.Options{
		"good": json.RawMessage(`{"name": "bob"}`),
		"bad":  json.RawMessage(`{"name": `),
	}
	var dest struct {
		Name string `json:"name"`
	}
	require.NoError(t, opts.ReadOptions("missing", &dest))
	assert.Equal(t, "", dest.Name)
	require.NoError(t, opts.ReadOptions("good", &dest))
	assert.Equal(t, "bob", dest.Name)
	err := opts.ReadOptions("bad", &dest)
	assert.True(t, errors.ErrInput.Is(err))
}
