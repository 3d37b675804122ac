package coin

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/iov-one/quorum/errors"
)

// IsCC is the RegExp to ensure valid currency codes
var IsCC = regexp.MustCompile(`^[A-Z]{3,4}$`).MatchString

const (
	// FracUnit is the number of base units in one whole unit of any
	// currency (10^9, like lamports in a SOL).
	FracUnit uint64 = 1000000000

	// MaxAmount is the largest amount in base units we accept. It keeps
	// the sum of any two valid coins from overflowing.
	MaxAmount uint64 = math.MaxUint64 / 2
)

// Coin is an amount of a single currency, expressed in indivisible base
// units.
type Coin struct {
	Ticker string
	Amount uint64
}

// NewCoin creates a new coin object from whole and fractional parts. The
// fractional part is in base units and must be smaller than FracUnit.
func NewCoin(whole, fractional uint64, ticker string) Coin {
	return Coin{
		Ticker: ticker,
		Amount: whole*FracUnit + fractional,
	}
}

// NewCoinp returns a pointer to a new coin.
func NewCoinp(whole, fractional uint64, ticker string) *Coin {
	c := NewCoin(whole, fractional, ticker)
	return &c
}

// Whole returns the integer part of the amount.
func (c Coin) Whole() uint64 {
	return c.Amount / FracUnit
}

// Fractional returns the part of the amount below one whole unit, in base
// units.
func (c Coin) Fractional() uint64 {
	return c.Amount % FracUnit
}

// ID returns a unique identifier of the currency.
func (c Coin) ID() string {
	return c.Ticker
}

// Add combines two coins. Returns error if they are of different currencies
// or if the result does not fit the valid range.
func (c Coin) Add(o Coin) (Coin, error) {
	if !c.SameType(o) {
		return Coin{}, errors.Wrapf(errors.ErrCurrency, "adding %s to %s", o.Ticker, c.Ticker)
	}
	sum := c.Amount + o.Amount
	if sum < c.Amount || sum > MaxAmount {
		return Coin{}, errors.ErrOverflow
	}
	c.Amount = sum
	return c, nil
}

// Subtract given amount. Amounts never go below zero, subtracting more than
// is held fails with ErrAmount.
func (c Coin) Subtract(o Coin) (Coin, error) {
	if !c.SameType(o) {
		return Coin{}, errors.Wrapf(errors.ErrCurrency, "subtracting %s from %s", o.Ticker, c.Ticker)
	}
	if o.Amount > c.Amount {
		return Coin{}, errors.Wrapf(errors.ErrAmount, "insufficient: %s < %s", c, o)
	}
	c.Amount -= o.Amount
	return c, nil
}

// Multiply returns the coin multiplied by given factor.
func (c Coin) Multiply(times uint64) (Coin, error) {
	if times != 0 && c.Amount > MaxAmount/times {
		return Coin{}, errors.ErrOverflow
	}
	c.Amount *= times
	return c, nil
}

// Compare will check values of two coins, without inspecting the currency
// code. It is up to the caller to determine if they want to check this.
//
// Returns 1 if c is larger, -1 if o is larger, 0 if equal
func (c Coin) Compare(o Coin) int {
	switch {
	case c.Amount > o.Amount:
		return 1
	case c.Amount < o.Amount:
		return -1
	default:
		return 0
	}
}

// Equals returns true if all fields are identical
func (c Coin) Equals(o Coin) bool {
	return c.Ticker == o.Ticker && c.Amount == o.Amount
}

// IsEmpty returns true on null or zero amount
func IsEmpty(c *Coin) bool {
	return c == nil || c.IsZero()
}

// IsZero returns true amounts are 0
func (c Coin) IsZero() bool {
	return c.Amount == 0
}

// IsPositive returns true if the value is greater than 0
func (c Coin) IsPositive() bool {
	return c.Amount > 0
}

// IsGTE returns true if c is same type and at least as large as o.
func (c Coin) IsGTE(o Coin) bool {
	return c.SameType(o) && c.Amount >= o.Amount
}

// SameType returns true if they have the same currency
func (c Coin) SameType(o Coin) bool {
	return c.Ticker == o.Ticker
}

// Clone provides an independent copy of a coin pointer
func (c *Coin) Clone() *Coin {
	if c == nil {
		return nil
	}
	cpy := *c
	return &cpy
}

// Validate ensures that the coin is in the valid range and valid currency
// code.
func (c Coin) Validate() error {
	var err error
	if !IsCC(c.Ticker) {
		err = errors.Append(err, errors.Wrapf(errors.ErrCurrency, "invalid currency: %s", c.Ticker))
	}
	if c.Amount > MaxAmount {
		err = errors.Append(err, errors.ErrOverflow)
	}
	return err
}

// Marshal returns the borsh encoding of the coin.
func (c Coin) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := bin.NewBorshEncoder(&buf).Encode(c); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return buf.Bytes(), nil
}

// Unmarshal loads the coin from its borsh encoding.
func (c *Coin) Unmarshal(raw []byte) error {
	var res Coin
	if err := bin.NewBorshDecoder(raw).Decode(&res); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	*c = res
	return nil
}

func (c *Coin) UnmarshalJSON(raw []byte) error {
	// Prioritize human readable format that is a string in format
	// "<whole>[.<fractional>] <ticker>"
	var human string
	if err := json.Unmarshal(raw, &human); err == nil {
		parsed, err := ParseHumanFormat(human)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	// Because UnmarshalJSON method is provided, we can no longer use Coin
	// type for the fallback.
	var coin struct {
		Ticker string
		Amount uint64
	}
	if err := json.Unmarshal(raw, &coin); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	c.Ticker = coin.Ticker
	c.Amount = coin.Amount
	return nil
}

// String provides a human readable representation of the coin. For a valid
// coin the result can be parsed back using ParseHumanFormat.
func (c Coin) String() string {
	var b bytes.Buffer

	io.WriteString(&b, strconv.FormatUint(c.Whole(), 10))

	if f := c.Fractional(); f != 0 {
		s := strconv.FormatUint(f, 10)
		// Add leading zeros to convert it to a decimal number.
		s = "." + strings.Repeat("0", 9-len(s)) + s
		// Remove trailing zeros as they provide no information.
		s = strings.TrimRight(s, "0")
		io.WriteString(&b, s)
	}

	if c.Ticker != "" {
		io.WriteString(&b, " "+c.Ticker)
	}
	return b.String()
}

// ParseHumanFormat parse a human readable coin representation. Accepted format
// is a string:
//
//	"<whole>[.<fractional>] <ticker>"
func ParseHumanFormat(h string) (Coin, error) {
	var c Coin
	m := humanCoinFormatRx.FindStringSubmatch(h)
	if m == nil {
		return c, errors.Wrapf(errors.ErrInput, "invalid coin format %q", h)
	}

	whole, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return c, errors.Wrapf(errors.ErrInput, "invalid whole value: %s", err)
	}

	var fract uint64
	if m[2] != "" {
		digits := m[2][1:]
		if len(digits) > 9 {
			return c, errors.Wrap(errors.ErrInput, "fractional part exceeds 9 digits")
		}
		digits += strings.Repeat("0", 9-len(digits))
		if fract, err = strconv.ParseUint(digits, 10, 64); err != nil {
			return c, errors.Wrapf(errors.ErrInput, "invalid fractional value: %s", err)
		}
	}

	if whole > MaxAmount/FracUnit {
		return c, errors.ErrOverflow
	}
	return NewCoin(whole, fract, m[3]), nil
}

var humanCoinFormatRx = regexp.MustCompile(`^\s*(\d+)(\.\d+)?\s*([A-Z]{3,4})$`)

// Set updates this coin value to what is provided. This method implements
// flag.Value interface.
func (c *Coin) Set(raw string) error {
	val, err := ParseHumanFormat(raw)
	if err != nil {
		return err
	}
	*c = val
	return nil
}
