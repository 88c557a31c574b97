package order

import (
	"strconv"
	"strings"

	"github.com/juju/errors"
	"github.com/temoto/vender-kiosk/currency"
)

// EmptyMarker is text form of "no coins returned".
const EmptyMarker = "0"

const coinSeparator = ";"

// FormatCoinValues "10;20;50", empty string for no coins.
func FormatCoinValues(ns []currency.Nominal) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.FormatUint(uint64(n), 10)
	}
	return strings.Join(parts, coinSeparator)
}

// ParseCoinValues is reverse of FormatCoinValues, also accepts EmptyMarker.
func ParseCoinValues(s string) ([]currency.Nominal, error) {
	if s == "" || s == EmptyMarker {
		return nil, nil
	}
	parts := strings.Split(s, coinSeparator)
	ns := make([]currency.Nominal, 0, len(parts))
	for _, part := range parts {
		n, err := ParseCoin(part)
		if err != nil {
			return nil, errors.Annotatef(err, "coin values=%s", s)
		}
		if n == 0 {
			return nil, errors.NotValidf("zero coin in values=%s", s)
		}
		ns = append(ns, n)
	}
	return ns, nil
}

// ParseCoin reads coin value from sensor or operator input.
// Negative value is rejected, a coin validator never reports one.
func ParseCoin(s string) (currency.Nominal, error) {
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, errors.NewNotValid(err, "coin="+s)
	}
	return CoinFromInt(i)
}

func CoinFromInt(i int64) (currency.Nominal, error) {
	if i < 0 {
		return 0, errors.Annotatef(ErrCoinNegative, "coin=%d", i)
	}
	if i > int64(^uint32(0)) {
		return 0, errors.NotValidf("coin=%d", i)
	}
	return currency.Nominal(i), nil
}
