package coin

import (
	"testing"

	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest/assert"
)

// mustCombineCoins has one return value for tests...
func mustCombineCoins(cs ...Coin) Coins {
	s, err := CombineCoins(cs...)
	if err != nil {
		panic(err)
	}
	return s
}

func TestMakeCoins(t *testing.T) {
	cases := map[string]struct {
		inputs   []Coin
		isEmpty  bool
		has      []Coin
		dontHave []Coin
	}{
		"empty": {
			inputs:   nil,
			isEmpty:  true,
			dontHave: []Coin{NewCoin(1, 0, "FOO")},
		},
		"ignore 0": {
			inputs:   []Coin{NewCoin(0, 0, "FOO")},
			isEmpty:  true,
			dontHave: []Coin{NewCoin(0, 1, "FOO")},
		},
		"simple": {
			inputs:   []Coin{NewCoin(40, 0, "FUD")},
			has:      []Coin{NewCoin(10, 0, "FUD"), NewCoin(40, 0, "FUD")},
			dontHave: []Coin{NewCoin(40, 1, "FUD"), NewCoin(40, 0, "FUN")},
		},
		"out of order": {
			inputs:   []Coin{NewCoin(20, 3, "FIN"), NewCoin(40, 5, "BON")},
			has:      []Coin{NewCoin(40, 4, "BON"), NewCoin(20, 0, "FIN")},
			dontHave: []Coin{NewCoin(40, 6, "BON"), NewCoin(21, 0, "FIN")},
		},
		"combine duplicates": {
			inputs:   []Coin{NewCoin(1, 0, "SOL"), NewCoin(2, 7, "SOL")},
			has:      []Coin{NewCoin(3, 7, "SOL")},
			dontHave: []Coin{NewCoin(3, 8, "SOL")},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			s, err := CombineCoins(tc.inputs...)
			assert.Nil(t, err)
			assert.Nil(t, s.Validate())
			assert.Equal(t, tc.isEmpty, s.IsEmpty())
			for _, h := range tc.has {
				if !s.Contains(h) {
					t.Errorf("expected %s in %v", h, s)
				}
			}
			for _, d := range tc.dontHave {
				if s.Contains(d) {
					t.Errorf("did not expect %s in %v", d, s)
				}
			}
		})
	}
}

func TestCoinsSubtract(t *testing.T) {
	base := mustCombineCoins(NewCoin(10, 0, "SOL"), NewCoin(5, 0, "IOV"))

	res, err := base.Subtract(NewCoin(1, 0, "SOL"))
	assert.Nil(t, err)
	assert.Equal(t, NewCoin(9, 0, "SOL"), res.Get("SOL"))
	// The receiver must not be modified.
	assert.Equal(t, NewCoin(10, 0, "SOL"), base.Get("SOL"))

	res, err = base.Subtract(NewCoin(5, 0, "IOV"))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(res))
	assert.Equal(t, Coin{Ticker: "IOV"}, res.Get("IOV"))

	_, err = base.Subtract(NewCoin(11, 0, "SOL"))
	assert.IsErr(t, errors.ErrAmount, err)

	_, err = base.Subtract(NewCoin(1, 0, "ETH"))
	assert.IsErr(t, errors.ErrAmount, err)
}

func TestCombine(t *testing.T) {
	a := mustCombineCoins(NewCoin(1, 0, "ABC"), NewCoin(2, 0, "FOO"))
	b := mustCombineCoins(NewCoin(3, 0, "BAR"), NewCoin(4, 0, "FOO"))

	got, err := a.Combine(b)
	assert.Nil(t, err)
	want := mustCombineCoins(NewCoin(1, 0, "ABC"), NewCoin(3, 0, "BAR"), NewCoin(6, 0, "FOO"))
	if !want.Equals(got) {
		t.Fatalf("want %v, got %v", want, got)
	}
	assert.Nil(t, got.Validate())
}

func TestCoinsNormalize(t *testing.T) {
	got, err := NormalizeCoins(Coins{
		NewCoin(1, 0, "FOO"),
		{Ticker: "BAR"},
		NewCoin(2, 0, "ABC"),
		NewCoin(3, 0, "FOO"),
	})
	assert.Nil(t, err)
	want := Coins{NewCoin(2, 0, "ABC"), NewCoin(4, 0, "FOO")}
	if !want.Equals(got) {
		t.Fatalf("want %v, got %v", want, got)
	}

	got, err = NormalizeCoins(nil)
	assert.Nil(t, err)
	assert.Equal(t, true, got.IsEmpty())
}

func TestCoinsValidate(t *testing.T) {
	cases := map[string]struct {
		coins   Coins
		wantErr *errors.Error
	}{
		"empty":      {coins: nil},
		"normalized": {coins: Coins{NewCoin(1, 0, "ABC"), NewCoin(1, 0, "DEF")}},
		"unsorted":   {coins: Coins{NewCoin(1, 0, "DEF"), NewCoin(1, 0, "ABC")}, wantErr: errors.ErrState},
		"duplicate":  {coins: Coins{NewCoin(1, 0, "ABC"), NewCoin(1, 0, "ABC")}, wantErr: errors.ErrState},
		"zero":       {coins: Coins{{Ticker: "ABC"}}, wantErr: errors.ErrState},
		"bad ticker": {coins: Coins{NewCoin(1, 0, "abc")}, wantErr: errors.ErrCurrency},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if err := tc.coins.Validate(); !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}

func TestCoinsMarshal(t *testing.T) {
	cs := mustCombineCoins(NewCoin(1, 0, "ABC"), NewCoin(0, 9, "SOL"))
	raw, err := cs.Marshal()
	assert.Nil(t, err)

	var got Coins
	assert.Nil(t, got.Unmarshal(raw))
	if !cs.Equals(got) {
		t.Fatalf("want %v, got %v", cs, got)
	}
}
